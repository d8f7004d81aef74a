package rules

import (
	"errors"

	"github.com/goliatone/go-waflow/pkg/flow"
)

// Check runs the envelope schema over raw, parses it and validates the
// document against rs. doc is nil when raw does not parse; the parse error
// is then reported as a SchemaViolation unless the schema already produced
// a finding.
func Check(raw []byte, rs *Ruleset) (*flow.Document, []Finding) {
	findings := CheckRaw(raw)

	doc, err := flow.Parse(raw)
	if err != nil {
		if len(findings) == 0 {
			path := ""
			var parseErr *flow.ParseError
			if errors.As(err, &parseErr) {
				path = parseErr.Path
			}
			findings = append(findings, schemaFinding(path, err.Error()))
		}
		return nil, findings
	}
	return doc, append(findings, ValidateWith(doc, rs)...)
}

package rules

import (
	_ "embed"
	"strconv"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/flow.schema.json
var flowSchema []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(flowSchema))
	})
	return schema, schemaErr
}

// CheckRaw validates raw document text against the embedded JSON Schema of
// the flow envelope. Every violation becomes a SchemaViolation error. Text
// that is not JSON yields a single finding.
func CheckRaw(raw []byte) []Finding {
	compiled, err := compiledSchema()
	if err != nil {
		return []Finding{schemaFinding("", "rules: load flow schema: "+err.Error())}
	}
	result, err := compiled.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return []Finding{schemaFinding("", "document is not valid JSON: "+err.Error())}
	}
	if result.Valid() {
		return nil
	}
	findings := make([]Finding, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		findings = append(findings, schemaFinding(schemaPath(desc.Field()), desc.Description()))
	}
	return findings
}

func schemaFinding(path, message string) Finding {
	return Finding{
		Severity: SeverityError,
		Code:     CodeSchemaViolation,
		Message:  message,
		Path:     path,
	}
}

// schemaPath converts the validator's dotted field (`screens.0.layout`) into
// the finding path style (`screens[0].layout`).
func schemaPath(field string) string {
	if field == "" || field == "(root)" {
		return ""
	}
	var b strings.Builder
	for idx, part := range strings.Split(field, ".") {
		if _, err := strconv.Atoi(part); err == nil {
			b.WriteString("[" + part + "]")
			continue
		}
		if idx > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

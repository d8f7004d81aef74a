package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/goliatone/go-waflow/pkg/rules"
)

// Report is the JSON shape of a validation run.
type Report struct {
	Source   string          `json:"source,omitempty"`
	Valid    bool            `json:"valid"`
	Errors   int             `json:"errors"`
	Warnings int             `json:"warnings"`
	Findings []rules.Finding `json:"findings"`
}

// NewReport summarises findings.
func NewReport(source string, findings []rules.Finding) Report {
	errs, warnings := rules.Count(findings)
	if findings == nil {
		findings = []rules.Finding{}
	}
	return Report{
		Source:   source,
		Valid:    errs == 0,
		Errors:   errs,
		Warnings: warnings,
		Findings: findings,
	}
}

// FormatReport renders a report in the requested format.
func FormatReport(format Format, report Report) (string, error) {
	if format == FormatJSON {
		return encodeJSON(report)
	}
	return FindingsTable(report), nil
}

// FindingsTable renders findings as a rounded table with a count footer.
// A clean report renders as a single line.
func FindingsTable(report Report) string {
	title := report.Source
	if len(report.Findings) == 0 {
		if title == "" {
			return "no findings"
		}
		return title + ": no findings"
	}

	t := newTable(title)
	t.AppendHeader(table.Row{"Severity", "Code", "Path", "Screen", "Message"})
	for _, finding := range report.Findings {
		path := finding.Path
		if path == "" {
			path = "-"
		}
		t.AppendRow(table.Row{
			string(finding.Severity),
			string(finding.Code),
			path,
			finding.ScreenID,
			finding.Message,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("%d error(s), %d warning(s)", report.Errors, report.Warnings)})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, WidthMax: 72, WidthMaxEnforcer: text.WrapSoft},
	})
	return t.Render()
}

// FormatReports renders several reports as one JSON array.
func FormatReports(reports []Report) (string, error) {
	if reports == nil {
		reports = []Report{}
	}
	return encodeJSON(reports)
}

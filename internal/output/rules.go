package output

import (
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/goliatone/go-waflow/pkg/rules"
)

type ruleRow struct {
	Code     rules.Code     `json:"code"`
	Severity rules.Severity `json:"severity"`
	Level    string         `json:"level"`
	Active   bool           `json:"active"`
}

type rulesetReport struct {
	Name               string    `json:"name"`
	Version            string    `json:"version,omitempty"`
	Level              string    `json:"level"`
	ScreenIDPattern    string    `json:"screen_id_pattern,omitempty"`
	StandardComponents []string  `json:"standard_components"`
	Rules              []ruleRow `json:"rules"`
}

// FormatRuleset describes rs and every rule it configures.
func FormatRuleset(format Format, rs *rules.Ruleset) (string, error) {
	report := rulesetReport{
		Name:               rs.Name,
		Version:            rs.Version,
		Level:              rs.Level.String(),
		StandardComponents: make([]string, 0, len(rs.StandardComponents)),
	}
	if rs.ScreenIDPattern != nil {
		report.ScreenIDPattern = rs.ScreenIDPattern.String()
	}
	for tag := range rs.StandardComponents {
		report.StandardComponents = append(report.StandardComponents, tag)
	}
	sort.Strings(report.StandardComponents)
	for _, code := range rules.Codes() {
		rule := rs.Rules[code]
		_, active := rs.Active(code)
		report.Rules = append(report.Rules, ruleRow{
			Code:     code,
			Severity: rule.Severity,
			Level:    rule.Level.String(),
			Active:   active,
		})
	}

	if format == FormatJSON {
		return encodeJSON(report)
	}

	title := report.Name + " at " + report.Level
	if report.Version != "" {
		title += " (version " + report.Version + ")"
	}
	t := newTable(title)
	t.AppendHeader(table.Row{"Code", "Severity", "From level", "Active"})
	for _, row := range report.Rules {
		active := "yes"
		if !row.Active {
			active = "no"
		}
		t.AppendRow(table.Row{string(row.Code), string(row.Severity), row.Level, active})
	}
	components := "any recognised component"
	if len(report.StandardComponents) > 0 {
		components = strings.Join(report.StandardComponents, ", ")
	}
	return t.Render() + "\nstandard components: " + components, nil
}

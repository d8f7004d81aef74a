package rules

import "fmt"

// Severity of a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Code identifies a rule.
type Code string

const (
	CodeVersionMismatch        Code = "VersionMismatch"
	CodeInvalidScreenID        Code = "InvalidScreenId"
	CodeUnknownScreenReference Code = "UnknownScreenReference"
	CodeMissingDataSourceTitle Code = "MissingDataSourceTitle"
	CodeInputOutsideForm       Code = "InputOutsideForm"
	CodeFooterNotLast          Code = "FooterNotLast"
	CodeMultipleMediaPickers   Code = "MultipleMediaPickers"
	CodeInvalidMediaBounds     Code = "InvalidMediaBounds"
	CodeMediaInNavigatePayload Code = "MediaInNavigatePayload"
	CodeNestedMediaPayload     Code = "NestedMediaPayload"
	CodeUnknownComponentType   Code = "UnknownComponentType"
	CodeDuplicateScreenID      Code = "DuplicateScreenId"
	CodeDanglingActionID       Code = "DanglingActionId"
	CodeDuplicateFormName      Code = "DuplicateFormName"
	CodeNestedForm             Code = "NestedForm"
	CodeDuplicateDataSourceID  Code = "DuplicateDataSourceId"
	CodeMissingFieldName       Code = "MissingFieldName"
	CodeNoTerminalScreen       Code = "NoTerminalScreen"
	CodeMissingRoutingModel    Code = "MissingRoutingModel"
	CodeNonStandardComponent   Code = "NonStandardComponent"
	CodeEmptyScreens           Code = "EmptyScreens"
	CodeMissingScreenID        Code = "MissingScreenId"
	CodeSchemaViolation        Code = "SchemaViolation"
)

// Finding is one diagnostic. Path is dotted from the document root
// (`screens[1].layout.children[0]`); ScreenID is set when the finding belongs
// to a screen.
type Finding struct {
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	Message  string   `json:"message"`
	Path     string   `json:"path,omitempty"`
	ScreenID string   `json:"screen_id,omitempty"`
}

func (f Finding) String() string {
	loc := f.Path
	if loc == "" {
		loc = "document"
	}
	return fmt.Sprintf("%s %s at %s: %s", f.Severity, f.Code, loc, f.Message)
}

// HasErrors reports whether any finding is an error.
func HasErrors(findings []Finding) bool {
	for _, finding := range findings {
		if finding.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Filter returns the findings with the given severity.
func Filter(findings []Finding, severity Severity) []Finding {
	var out []Finding
	for _, finding := range findings {
		if finding.Severity == severity {
			out = append(out, finding)
		}
	}
	return out
}

// Count returns the number of findings per severity.
func Count(findings []Finding) (errs, warnings int) {
	for _, finding := range findings {
		switch finding.Severity {
		case SeverityError:
			errs++
		case SeverityWarning:
			warnings++
		}
	}
	return errs, warnings
}

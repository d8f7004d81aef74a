package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/goliatone/go-waflow/pkg/flow"
	"github.com/goliatone/go-waflow/pkg/simulator"
)

type transcriptEntry struct {
	Step        int                `json:"step"`
	Description string             `json:"description"`
	ScreenID    string             `json:"screen_id"`
	Action      flow.ActionKind    `json:"action,omitempty"`
	Outcome     *simulator.Outcome `json:"outcome,omitempty"`
	Error       string             `json:"error,omitempty"`
	ErrorCode   string             `json:"error_code,omitempty"`
}

type transcriptReport struct {
	Script  string            `json:"script,omitempty"`
	Failed  int               `json:"failed"`
	Entries []transcriptEntry `json:"entries"`
	Final   simulator.State   `json:"final"`
}

// FormatTranscript renders a script run in the requested format.
func FormatTranscript(format Format, name string, transcript simulator.Transcript) (string, error) {
	if format == FormatJSON {
		report := transcriptReport{
			Script:  name,
			Failed:  len(transcript.Failed()),
			Entries: make([]transcriptEntry, 0, len(transcript.Entries)),
			Final:   transcript.Final,
		}
		for _, entry := range transcript.Entries {
			item := transcriptEntry{
				Step:        entry.Step,
				Description: entry.Description,
				ScreenID:    entry.ScreenID,
			}
			if entry.Err != nil {
				item.Error = entry.Err.Error()
				if code, ok := simulator.CodeOf(entry.Err); ok {
					item.ErrorCode = string(code)
				}
			} else {
				outcome := entry.Outcome
				item.Outcome = &outcome
				if outcome.Action != nil {
					item.Action = outcome.Action.Kind
				}
			}
			report.Entries = append(report.Entries, item)
		}
		return encodeJSON(report)
	}
	return TranscriptTable(name, transcript), nil
}

// TranscriptTable renders one row per step followed by the final state.
func TranscriptTable(name string, transcript simulator.Transcript) string {
	t := newTable(name)
	t.AppendHeader(table.Row{"#", "Screen", "Step", "Result"})
	for _, entry := range transcript.Entries {
		t.AppendRow(table.Row{entry.Step, entry.ScreenID, entry.Description, resultOf(entry)})
	}

	final := transcript.Final
	status := "open on " + final.ActiveScreenID
	if final.Closed {
		status = "closed on " + final.ActiveScreenID
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d failed", len(transcript.Failed())), status})
	return t.Render()
}

func resultOf(entry simulator.Entry) string {
	if entry.Err != nil {
		if code, ok := simulator.CodeOf(entry.Err); ok {
			return "error " + string(code)
		}
		return "error: " + entry.Err.Error()
	}

	outcome := entry.Outcome
	var parts []string
	switch {
	case outcome.Transitioned:
		parts = append(parts, "-> "+outcome.State.ActiveScreenID)
	case outcome.Action != nil:
		parts = append(parts, string(outcome.Action.Kind))
	default:
		parts = append(parts, "ok")
	}
	if outcome.Action != nil && outcome.Action.Kind != flow.ActionNavigate {
		parts = append(parts, payloadSummary(outcome.Payload))
	}
	if outcome.Closed {
		parts = append(parts, "(closed)")
	}
	for _, warning := range outcome.Warnings {
		parts = append(parts, "warning "+warning.Path)
	}
	return strings.Join(parts, " ")
}

func payloadSummary(payload map[string]any) string {
	if len(payload) == 0 {
		return "{}"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%v", payload)
	}
	return string(data)
}

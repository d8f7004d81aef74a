package simulator

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-waflow/pkg/flow"
)

// Script is a recorded sequence of interactions.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one interaction. Exactly one field is set.
type Step struct {
	Field        *FieldStep      `yaml:"field,omitempty"`
	Button       string          `yaml:"button,omitempty"`
	Footer       *FooterRef      `yaml:"footer,omitempty"`
	Back         bool            `yaml:"back,omitempty"`
	Complete     *map[string]any `yaml:"complete,omitempty"`
	DataExchange *map[string]any `yaml:"data_exchange,omitempty"`
}

// FieldStep sets one form value.
type FieldStep struct {
	Form  string `yaml:"form"`
	Name  string `yaml:"name"`
	Value any    `yaml:"value"`
}

// FooterRef selects a clickable component of the active screen by label or
// by position.
type FooterRef struct {
	Label string
	Index int
	ByIdx bool
}

// UnmarshalYAML accepts an integer index or a label.
func (r *FooterRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("simulator: footer must be a label or an index")
	}
	if node.Tag == "!!int" {
		idx, err := strconv.Atoi(node.Value)
		if err != nil {
			return fmt.Errorf("simulator: footer index %q: %w", node.Value, err)
		}
		*r = FooterRef{Index: idx, ByIdx: true}
		return nil
	}
	*r = FooterRef{Label: node.Value}
	return nil
}

func (r FooterRef) String() string {
	if r.ByIdx {
		return "#" + strconv.Itoa(r.Index)
	}
	return strconv.Quote(r.Label)
}

// ParseScript decodes a script. The document may be a bare step list or an
// object with name and steps.
func ParseScript(r io.Reader) (*Script, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("simulator: read script: %w", err)
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("simulator: decode script: %w", err)
	}

	script := &Script{}
	if len(root.Content) > 0 {
		doc := root.Content[0]
		switch doc.Kind {
		case yaml.SequenceNode:
			err = doc.Decode(&script.Steps)
		case yaml.MappingNode:
			err = doc.Decode(script)
		default:
			err = fmt.Errorf("expected a list of steps")
		}
		if err != nil {
			return nil, fmt.Errorf("simulator: decode script: %w", err)
		}
	}
	for idx, step := range script.Steps {
		if n := step.count(); n != 1 {
			return nil, fmt.Errorf("simulator: script step %d must set exactly one action, found %d", idx+1, n)
		}
		if step.Field != nil && (step.Field.Form == "" || step.Field.Name == "") {
			return nil, fmt.Errorf("simulator: script step %d: field needs form and name", idx+1)
		}
	}
	return script, nil
}

func (s Step) count() int {
	n := 0
	for _, set := range []bool{
		s.Field != nil, s.Button != "", s.Footer != nil, s.Back, s.Complete != nil, s.DataExchange != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// Describe returns a one-line summary of the step.
func (s Step) Describe() string {
	switch {
	case s.Field != nil:
		return fmt.Sprintf("set %s.%s = %v", s.Field.Form, s.Field.Name, s.Field.Value)
	case s.Button != "":
		return "button " + s.Button
	case s.Footer != nil:
		return "footer " + s.Footer.String()
	case s.Back:
		return "back"
	case s.Complete != nil:
		return "complete"
	case s.DataExchange != nil:
		return "data_exchange"
	default:
		return "noop"
	}
}

// Entry records one executed step.
type Entry struct {
	Step        int
	Description string
	ScreenID    string
	Outcome     Outcome
	Err         error
}

// Transcript is the record of a script run.
type Transcript struct {
	Entries []Entry
	Final   State
}

// Failed returns the entries that produced an error.
func (t Transcript) Failed() []Entry {
	var out []Entry
	for _, entry := range t.Entries {
		if entry.Err != nil {
			out = append(out, entry)
		}
	}
	return out
}

// RunScript replays script against session. Errors are recorded and the run
// continues with the next step.
func RunScript(session *Session, script *Script) Transcript {
	var transcript Transcript
	if script == nil {
		transcript.Final = session.State()
		return transcript
	}
	for idx, step := range script.Steps {
		entry := Entry{
			Step:        idx + 1,
			Description: step.Describe(),
			ScreenID:    session.State().ActiveScreenID,
		}
		entry.Outcome, entry.Err = runStep(session, step)
		transcript.Entries = append(transcript.Entries, entry)
	}
	transcript.Final = session.State()
	return transcript
}

func runStep(session *Session, step Step) (Outcome, error) {
	switch {
	case step.Field != nil:
		return session.SetField(step.Field.Form, step.Field.Name, step.Field.Value)
	case step.Button != "":
		return session.ClickButton(step.Button)
	case step.Footer != nil:
		component, err := FindClickable(session, *step.Footer)
		if err != nil {
			return Outcome{}, err
		}
		return session.ClickFooter(component)
	case step.Back:
		return session.Back()
	case step.Complete != nil:
		return session.Complete(*step.Complete)
	case step.DataExchange != nil:
		return session.DataExchange(*step.DataExchange)
	default:
		return Outcome{}, newError(CodeNoAction, session.State().ActiveScreenID, "empty step")
	}
}

// FindClickable resolves ref against the footers and buttons of the active
// screen. Labels match case-insensitively.
func FindClickable(session *Session, ref FooterRef) (flow.Component, error) {
	if session.State().Closed {
		return flow.Component{}, newError(CodeSessionClosed, session.State().ActiveScreenID, "the flow has already completed")
	}
	screen := session.ActiveScreen()
	clickables := screen.Clickables()
	if ref.ByIdx {
		if ref.Index < 0 || ref.Index >= len(clickables) {
			return flow.Component{}, newError(CodeNoAction, screen.ID,
				"no clickable #%d (screen has %d)", ref.Index, len(clickables))
		}
		return clickables[ref.Index].Component, nil
	}
	for _, visit := range clickables {
		if strings.EqualFold(visit.Component.DisplayText(), strings.TrimSpace(ref.Label)) {
			return visit.Component, nil
		}
	}
	return flow.Component{}, newError(CodeNoAction, screen.ID, "no clickable labelled %q", ref.Label)
}

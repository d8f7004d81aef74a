package simulator

import (
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-waflow/pkg/binding"
	"github.com/goliatone/go-waflow/pkg/flow"
)

// Outcome is the result of an applied event.
type Outcome struct {
	// State is a snapshot taken after the event.
	State State `json:"state"`
	// Transitioned is true when the active screen changed.
	Transitioned bool `json:"transitioned"`
	// Action is the action the event executed, if any.
	Action *flow.Action `json:"-"`
	// Payload is the resolved payload of the executed action.
	Payload map[string]any `json:"payload,omitempty"`
	// Warnings lists unresolved references found while resolving Payload.
	Warnings []binding.Warning `json:"warnings,omitempty"`
	// Closed is true when the event ended the flow.
	Closed bool `json:"closed"`
	// OnSuccess and OnError are the continuations of a data_exchange action.
	// They are reported, never executed.
	OnSuccess *flow.Action `json:"-"`
	OnError   *flow.Action `json:"-"`
}

// Session simulates one user walking through a document.
type Session struct {
	doc    *flow.Document
	state  State
	logger *zap.Logger
}

// NewSession starts a session on the entry screen of a snapshot of doc.
func NewSession(doc *flow.Document, opts ...Option) (*Session, error) {
	if doc == nil || len(doc.Screens) == 0 {
		return nil, newError(CodeEmptyDocument, "", "document has no screens")
	}
	s := &Session{
		doc:    doc.Clone(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.Reset()
	return s, nil
}

// Reset discards all state and returns to the entry screen.
func (s *Session) Reset() {
	entry, _ := s.doc.EntryScreen()
	s.state = State{ActiveScreenID: entry.ID, FormValues: binding.Values{}}
	s.logger.Debug("session reset", zap.String("screen", entry.ID))
}

// Document returns the session's document snapshot. Callers must not modify
// it.
func (s *Session) Document() *flow.Document {
	return s.doc
}

// State returns a copy of the current state.
func (s *Session) State() State {
	return s.state.Clone()
}

// ActiveScreen returns the screen the session is on.
func (s *Session) ActiveScreen() flow.Screen {
	screen, _ := s.doc.Screen(s.state.ActiveScreenID)
	return screen
}

// Handle applies ev. On error the state is unchanged.
func (s *Session) Handle(ev Event) (Outcome, error) {
	if s.state.Closed {
		return Outcome{}, newError(CodeSessionClosed, s.state.ActiveScreenID, "the flow has already completed")
	}
	switch e := ev.(type) {
	case ButtonClicked:
		return s.clickButton(e.ActionID)
	case FooterClicked:
		return s.clickFooter(e.Component)
	case FieldChanged:
		s.state.FormValues.Set(e.Form, e.Field, flow.CloneValue(e.Value))
		s.logger.Debug("field changed", zap.String("form", e.Form), zap.String("field", e.Field))
		return s.outcome(), nil
	case GoBack:
		return s.back(), nil
	case Complete:
		return s.submit(flow.ActionComplete, e.Payload, nil), nil
	case DataExchange:
		return s.submit(flow.ActionDataExchange, e.Payload, nil), nil
	default:
		return Outcome{}, newError(CodeUnsupportedAction, s.state.ActiveScreenID, "unsupported event %T", ev)
	}
}

// ClickButton presses a Button addressing the actions table.
func (s *Session) ClickButton(actionID string) (Outcome, error) {
	return s.Handle(ButtonClicked{ActionID: actionID})
}

// ClickFooter presses a component with an inline action.
func (s *Session) ClickFooter(component flow.Component) (Outcome, error) {
	return s.Handle(FooterClicked{Component: component})
}

// SetField records a form value.
func (s *Session) SetField(form, field string, value any) (Outcome, error) {
	return s.Handle(FieldChanged{Form: form, Field: field, Value: value})
}

// Back returns to the previous screen; on the entry screen it does nothing.
func (s *Session) Back() (Outcome, error) {
	return s.Handle(GoBack{})
}

// Complete submits payload.
func (s *Session) Complete(payload map[string]any) (Outcome, error) {
	return s.Handle(Complete{Payload: payload})
}

// DataExchange submits payload to the data endpoint.
func (s *Session) DataExchange(payload map[string]any) (Outcome, error) {
	return s.Handle(DataExchange{Payload: payload})
}

func (s *Session) clickButton(actionID string) (Outcome, error) {
	id := strings.TrimSpace(actionID)
	if id == "" {
		return Outcome{}, newError(CodeNoAction, s.state.ActiveScreenID, "button has no action_id")
	}
	action, ok := s.doc.Action(id)
	if !ok {
		return Outcome{}, newError(CodeDanglingActionID, s.state.ActiveScreenID,
			"action_id %q does not match any entry of the actions table", id)
	}
	return s.execute(action)
}

func (s *Session) clickFooter(component flow.Component) (Outcome, error) {
	if component.OnClickAction == nil {
		if component.ActionID != "" {
			return s.clickButton(component.ActionID)
		}
		return Outcome{}, newError(CodeNoAction, s.state.ActiveScreenID,
			"%s %q carries no action", component.Type, component.DisplayText())
	}
	return s.execute(*component.OnClickAction)
}

func (s *Session) execute(action flow.Action) (Outcome, error) {
	switch action.Kind {
	case flow.ActionNavigate:
		return s.navigate(action)
	case flow.ActionComplete, flow.ActionDataExchange:
		return s.submit(action.Kind, action.Payload, &action), nil
	default:
		return Outcome{}, newError(CodeUnsupportedAction, s.state.ActiveScreenID,
			"action %q cannot be simulated", action.Kind)
	}
}

func (s *Session) navigate(action flow.Action) (Outcome, error) {
	target := strings.TrimSpace(action.Target)
	if target == "" {
		return Outcome{}, newError(CodeNavigationTargetMissing, s.state.ActiveScreenID, "navigate action has no target screen")
	}
	if s.doc.ScreenIndex(target) < 0 {
		return Outcome{}, newError(CodeNavigationTargetMissing, s.state.ActiveScreenID,
			"navigate target %q is not a screen of this document", target)
	}

	payload, warnings := binding.ResolvePayload(action.Payload, s.state.FormValues)
	from := s.state.ActiveScreenID
	s.state.push(target)
	s.logger.Debug("navigate",
		zap.String("from", from),
		zap.String("to", target),
		zap.Int("depth", len(s.state.History)),
		zap.Int("unresolved", len(warnings)),
	)

	out := s.outcome()
	out.Transitioned = true
	out.Action = action.Clone()
	out.Payload = payload
	out.Warnings = warnings
	return out, nil
}

func (s *Session) back() Outcome {
	from := s.state.ActiveScreenID
	if !s.state.pop() {
		s.logger.Debug("back ignored on entry screen", zap.String("screen", from))
		return s.outcome()
	}
	s.logger.Debug("back", zap.String("from", from), zap.String("to", s.state.ActiveScreenID))
	out := s.outcome()
	out.Transitioned = true
	return out
}

func (s *Session) submit(kind flow.ActionKind, payload map[string]any, action *flow.Action) Outcome {
	resolved, warnings := binding.ResolvePayload(payload, s.state.FormValues)
	if resolved == nil {
		resolved = map[string]any{}
	}
	screen := s.ActiveScreen()
	if screen.Terminal {
		s.state.Closed = true
	}
	s.logger.Debug("submit",
		zap.String("kind", string(kind)),
		zap.String("screen", screen.ID),
		zap.Bool("closed", s.state.Closed),
		zap.Int("unresolved", len(warnings)),
	)

	out := s.outcome()
	out.Payload = resolved
	out.Warnings = warnings
	out.Closed = s.state.Closed
	if action != nil {
		out.Action = action.Clone()
		if kind == flow.ActionDataExchange {
			out.OnSuccess = action.Success.Clone()
			out.OnError = action.Error.Clone()
		}
	}
	return out
}

func (s *Session) outcome() Outcome {
	return Outcome{State: s.state.Clone(), Closed: s.state.Closed}
}

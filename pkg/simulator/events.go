package simulator

import "github.com/goliatone/go-waflow/pkg/flow"

// Event is a user interaction the session consumes. The set is closed.
type Event interface {
	isEvent()
}

// ButtonClicked presses a Button addressing the document's actions table.
type ButtonClicked struct {
	ActionID string
}

// FooterClicked presses a component carrying an inline on-click-action.
type FooterClicked struct {
	Component flow.Component
}

// FieldChanged records a form value.
type FieldChanged struct {
	Form  string
	Field string
	Value any
}

// GoBack returns to the previous screen.
type GoBack struct{}

// Complete submits payload, ending the flow on a terminal screen.
type Complete struct {
	Payload map[string]any
}

// DataExchange submits payload to the (external) endpoint.
type DataExchange struct {
	Payload map[string]any
}

func (ButtonClicked) isEvent() {}
func (FooterClicked) isEvent() {}
func (FieldChanged) isEvent()  {}
func (GoBack) isEvent()        {}
func (Complete) isEvent()      {}
func (DataExchange) isEvent()  {}

// Package simulator runs a flow document as a state machine.
//
// A Session starts on the entry screen and consumes discrete events
// (footer and button clicks, field edits, back, complete, data exchange).
// Every event returns an Outcome or a *SimulationError; on error the session
// stays on its last good state. Payloads of complete and data_exchange
// actions are resolved against the collected form values with the binding
// package.
//
// Sessions own their state and a private snapshot of the document, so a
// document reload never disturbs a running session. A Session is not safe
// for concurrent use.
//
// Scripts (YAML step lists) replay interactions non-interactively:
//
//	- field: {form: profile, name: full_name, value: Ada}
//	- footer: Continue
//	- back: true
//	- footer: 0
//	- complete: {}
package simulator

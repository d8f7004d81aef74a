package simulator

import (
	"encoding/json"

	"github.com/goliatone/go-waflow/pkg/binding"
)

// State is the navigation state of a session.
type State struct {
	ActiveScreenID string `json:"active_screen_id"`
	// History is a stack of previously active screen ids, oldest first.
	History    []string       `json:"history"`
	FormValues binding.Values `json:"-"`
	Closed     bool           `json:"closed"`
}

// Clone returns an independent copy.
func (s State) Clone() State {
	out := s
	out.History = append([]string{}, s.History...)
	out.FormValues = s.FormValues.Clone()
	return out
}

// Values returns the form values nested as form -> field -> value.
func (s State) Values() map[string]any {
	return s.FormValues.Nested()
}

// MarshalJSON writes the form values nested by form.
func (s State) MarshalJSON() ([]byte, error) {
	history := s.History
	if history == nil {
		history = []string{}
	}
	return json.Marshal(struct {
		ActiveScreenID string         `json:"active_screen_id"`
		History        []string       `json:"history"`
		FormValues     map[string]any `json:"form_values"`
		Closed         bool           `json:"closed"`
	}{s.ActiveScreenID, history, s.Values(), s.Closed})
}

func (s *State) push(screenID string) {
	s.History = append(s.History, s.ActiveScreenID)
	s.ActiveScreenID = screenID
}

func (s *State) pop() bool {
	if len(s.History) == 0 {
		return false
	}
	last := len(s.History) - 1
	s.ActiveScreenID = s.History[last]
	s.History = s.History[:last]
	return true
}

package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrStepLimit is returned when a run exceeds the configured number of
	// menu selections.
	ErrStepLimit = errors.New("tui: step limit reached")
)

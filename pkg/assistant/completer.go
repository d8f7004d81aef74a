package assistant

import (
	"context"
	"errors"
)

var (
	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("assistant: empty response")
	// ErrUnparseable wraps the parse error of model output that is not a
	// flow document.
	ErrUnparseable = errors.New("assistant: response is not a flow document")
	// ErrMissingAPIKey is returned when no API key is configured.
	ErrMissingAPIKey = errors.New("assistant: api key not set")
)

// Image is an attachment sent with a request.
type Image struct {
	// MediaType is the MIME type, e.g. image/png.
	MediaType string
	Data      []byte
}

// Request is one completion request.
type Request struct {
	System string
	Prompt string
	Image  *Image
}

// Completer sends a request to a model and returns its text.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

package tui

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-waflow/pkg/preview"
)

// Option configures the Runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver used by the runner.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithRenderer overrides the screen renderer.
func WithRenderer(renderer *preview.Renderer) Option {
	return func(r *Runner) {
		if renderer != nil {
			r.renderer = renderer
		}
	}
}

// WithLogger routes runner logs to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMaxSteps bounds the number of menu selections of one run. Zero means
// no limit.
func WithMaxSteps(n int) Option {
	return func(r *Runner) {
		if n >= 0 {
			r.maxSteps = n
		}
	}
}

package simulator

import "go.uber.org/zap"

// Option configures a Session.
type Option func(*Session)

// WithLogger routes transition logs to logger. The default discards them.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

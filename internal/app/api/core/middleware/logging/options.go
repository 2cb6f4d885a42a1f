package logging

import "log/slog"

// options contains the configuration of the logging middleware.
// It uses the functional options pattern.
type options struct {
	level slog.Level
}

type Option func(*options)

// WithLevel sets the log level for request log lines.
// The default value is slog.LevelInfo.
func WithLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

func newOptions(opts ...Option) options {
	o := options{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

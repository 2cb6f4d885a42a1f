package recovery

// options contains the configuration of the recovery middleware.
// It uses the functional options pattern.
type options struct {
	exposeStackTrace bool
}

type Option func(*options)

// WithExposeStackTrace includes the stack trace in the error response body.
// This should only be enabled for debugging purposes.
// The default value is false.
func WithExposeStackTrace(expose bool) Option {
	return func(o *options) {
		o.exposeStackTrace = expose
	}
}

func newOptions(opts ...Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

package store

import "time"

// Option configures a record store backend.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used to decide whether a record is live.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

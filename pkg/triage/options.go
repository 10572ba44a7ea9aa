package triage

import "log/slog"

type options struct {
	threshold float64
	logger    *slog.Logger
}

// Option configures a Classifier.
type Option func(*options)

// WithThreshold sets the probability a category must exceed to be
// assigned. Default: 0.5, the threshold the forests vote with.
func WithThreshold(t float64) Option {
	return func(o *options) {
		o.threshold = t
	}
}

// WithLogger sets the logger used while loading. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func defaultOptions() options {
	return options{threshold: 0.5}
}

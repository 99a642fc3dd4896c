// Copyright 2023 Peter Hebert. Licensed under the MIT license.

package toktrie

import "github.com/sirupsen/logrus"

// Option configures a Builder or Load call, such as WithLogger.
type Option func(*buildOptions)

// buildOptions collects data from our functional options.
type buildOptions struct {
	logger *logrus.Entry
}

func newOptions(opts []Option) buildOptions {
	o := buildOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger is a functional option for NewBuilder and Load that attaches a
// logrus.Entry used for build/load diagnostics (build summaries,
// duplicate-token discovery, load summaries). If omitted, no logging is
// performed.
func WithLogger(log *logrus.Entry) Option {
	return func(o *buildOptions) {
		o.logger = log
	}
}

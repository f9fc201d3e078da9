// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize is the input size limit used unless WithMaxFileSize
// overrides it.
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

type (
	parseOptions struct {
		maxFileSize int64
		concrete    bool
		filename    string
		jsonc       bool
	}

	// Option configures ExtractJSON and Validate.
	Option func(*parseOptions)
)

func collectOptions(opts []Option) parseOptions {
	o := parseOptions{maxFileSize: DefaultMaxFileSize, concrete: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.filename == "" {
		o.filename = "<input>"
	}
	return o
}

// WithMaxFileSize sets the input size limit. Values <= 0 keep the default.
func WithMaxFileSize(size int64) Option {
	return func(o *parseOptions) {
		if size > 0 {
			o.maxFileSize = size
		}
	}
}

// WithConcrete controls whether Validate requires every value to be
// concrete. It defaults to true.
func WithConcrete(concrete bool) Option {
	return func(o *parseOptions) {
		o.concrete = concrete
	}
}

// WithFilename names the input in errors and source positions.
func WithFilename(name string) Option {
	return func(o *parseOptions) {
		o.filename = name
	}
}

// WithJSONC makes ExtractJSON accept // and /* */ comments and trailing
// commas, as found in deno.jsonc files. Anything else that is not JSON is
// still rejected.
func WithJSONC() Option {
	return func(o *parseOptions) {
		o.jsonc = true
	}
}

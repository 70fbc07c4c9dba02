package secp256k1

import (
	"crypto/rand"
	"io"
	"math/big"
	"runtime"

	"github.com/kochabx/ecckit/log"
)

const (
	// DefaultMaxAttempts bounds key generation and signing retries.
	DefaultMaxAttempts = 100
)

// Options is the per-call configuration shared by the engine packages.
type Options struct {
	// Logger receives retry warnings. Defaults to a no-op logger.
	Logger *log.Logger
	// Rand is the entropy source. Defaults to crypto/rand.Reader.
	Rand io.Reader
	// MaxAttempts bounds retry loops.
	MaxAttempts int
	// Concurrency sizes worker pools for batch operations.
	Concurrency int
}

// Option configures Options.
type Option func(*Options)

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithRand sets the entropy source.
func WithRand(r io.Reader) Option {
	return func(o *Options) {
		o.Rand = r
	}
}

// WithMaxAttempts sets the retry budget. Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxAttempts = n
		}
	}
}

// WithConcurrency sets the worker count for batch operations. Values below 1
// are ignored.
func WithConcurrency(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Concurrency = n
		}
	}
}

// NewOptions applies opts over the defaults.
func NewOptions(opts ...Option) Options {
	o := Options{
		MaxAttempts: DefaultMaxAttempts,
		Concurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = log.Nop()
	}
	if o.Rand == nil {
		o.Rand = rand.Reader
	}
	return o
}

// RandomScalar draws a scalar in (0, N) using o's entropy source and retry
// budget.
func (o Options) RandomScalar() (*big.Int, error) {
	return generateScalar(o)
}

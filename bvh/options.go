package bvh

import (
	"errors"

	"github.com/achilleasa/hitmiss/log"
)

var (
	// Build was invoked with an empty element list.
	ErrNoElements = errors.New("bvh: no elements to partition")

	// Build was invoked without a bounding provider.
	ErrNoBoundingProvider = errors.New("bvh: nil bounding provider")
)

// Options control hierarchy construction.
type Options struct {
	// The margin added to each side of interior node boxes.
	Epsilon float32

	// The logger used for reporting build statistics.
	Logger log.Logger
}

// An Option mutates the build options.
type Option func(*Options)

// Override the box widening margin. Negative values shrink boxes and are the
// caller's responsibility.
func WithEpsilon(epsilon float32) Option {
	return func(o *Options) {
		o.Epsilon = epsilon
	}
}

// Override the logger used by the builder.
func WithLogger(logger log.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func defaultOptions() Options {
	return Options{
		Epsilon: DefaultEpsilon,
		Logger:  log.New("bvh"),
	}
}

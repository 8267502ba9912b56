package poolmatch

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/poolmatch/pkg/errors"
	"github.com/agentstation/poolmatch/pkg/scoring"
)

// config holds the reconciler configuration.
type config struct {
	floor            int
	parallelism      int
	promoteUnmatched bool
	logger           *zerolog.Logger
}

// defaultConfig returns a config with default values.
func defaultConfig() *config {
	return &config{
		floor:       scoring.DefaultFloor,
		parallelism: 1,
	}
}

// Option is a function that modifies the reconciler configuration.
type Option func(*config) error

// WithFloor sets the minimum total score a candidate must reach before a
// match is accepted. Values below 1 are rejected; raising the floor
// trades recall for precision.
func WithFloor(floor int) Option {
	return func(c *config) error {
		if floor < 1 {
			return errors.NewValidationError("floor", floor, "must be at least 1")
		}
		c.floor = floor
		return nil
	}
}

// WithParallelism sets the number of worker goroutines used for a match
// pass. The default of 1 runs queries sequentially.
func WithParallelism(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return errors.NewValidationError("parallelism", n, "must be at least 1")
		}
		c.parallelism = n
		return nil
	}
}

// WithPromotion controls whether Apply promotes unmatched query records
// into new canonical entities. Disabled by default so a match pass can
// be reviewed before the pool grows.
func WithPromotion(enabled bool) Option {
	return func(c *config) error {
		c.promoteUnmatched = enabled
		return nil
	}
}

// WithLogger sets the logger used by the reconciler.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return errors.NewValidationError("logger", nil, "cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

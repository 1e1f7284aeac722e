package txtimez

import (
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

// Option configures a Registry.
type Option func(*config)

type config struct {
	clock            clockz.Clock
	logger           *zap.Logger
	panicHook        func(handlerID uint64, r interface{})
	shards           int
	globalCollection bool
}

func defaultConfig() config {
	return config{
		clock:  clockz.RealClock,
		logger: zap.NewNop(),
		shards: DefaultShards,
	}
}

// WithClock sets the clock used to timestamp measurements.
// Enables clock injection for deterministic testing.
func WithClock(clock clockz.Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the logger used to report listener failures and rejected handles.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithShards sets the shard count of every collector the registry creates.
func WithShards(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.shards = n
		}
	}
}

// WithPanicHook sets a function to be called when a listener panics.
func WithPanicHook(hook func(handlerID uint64, r interface{})) Option {
	return func(c *config) {
		c.panicHook = hook
	}
}

// WithGlobalCollection sets the initial propagation policy.
func WithGlobalCollection(enabled bool) Option {
	return func(c *config) {
		c.globalCollection = enabled
	}
}

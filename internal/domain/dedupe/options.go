package dedupe

const defaultMaxSize = 10_000

// Option applies a configuration option to the in-memory cache.
type Option func(*config)

type config struct {
	maxSize int
}

// WithMaxSize sets the maximum number of ids kept in memory.
// If maxSize > 0 the oldest id is evicted when full.
// If maxSize <= 0 the cache is unbounded.
func WithMaxSize(maxSize int) Option {
	return func(c *config) {
		c.maxSize = maxSize
	}
}

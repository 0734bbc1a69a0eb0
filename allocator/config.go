package allocator

// Config configures one allocation domain, following the functional options
// shape the sqlite loader uses for its own DbOptions.
type Config struct {
	// Path is the backing file path. Empty means heap-backed.
	Path string
	// Debug enables debug-level logging. New applies it to the logger
	// shared by every domain in the process.
	Debug bool
}

// Option mutates a Config.
type Option func(*Config)

// WithPath configures a disk-backed domain at path.
func WithPath(path string) Option {
	return func(c *Config) { c.Path = path }
}

// WithDebug sets Config.Debug.
func WithDebug(debug bool) Option {
	return func(c *Config) { c.Debug = debug }
}

func newConfig(opts ...Option) Config {
	var c Config
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

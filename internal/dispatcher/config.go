package dispatcher

// DefaultMethod is the method directory used when a descriptor has none.
const DefaultMethod = "mods"

// DefaultLibRoot is the fixed root all code units resolve below.
const DefaultLibRoot = "data/lib"

// Config holds dispatcher configuration options.
type Config struct {
	// LibRoot is the directory all locations resolve below.
	LibRoot string

	// EnableMetrics enables dispatch timing and statistics collection.
	EnableMetrics bool

	// RecoverFromPanic wraps loading and running in panic recovery.
	RecoverFromPanic bool
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LibRoot:          DefaultLibRoot,
		EnableMetrics:    false,
		RecoverFromPanic: true,
	}
}

// WithLibRoot returns a copy of the config with the lib root set.
func (c Config) WithLibRoot(root string) Config {
	if root != "" {
		c.LibRoot = root
	}
	return c
}

// WithMetrics returns a copy of the config with metrics enabled.
func (c Config) WithMetrics() Config {
	c.EnableMetrics = true
	return c
}

// WithPanicRecovery returns a copy of the config with panic recovery set.
func (c Config) WithPanicRecovery(recover bool) Config {
	c.RecoverFromPanic = recover
	return c
}

package config

import (
	"sync"

	"github.com/spf13/viper"

	"github.com/kochabx/ecckit/core/validator"
	"github.com/kochabx/ecckit/log"
)

const (
	defaultFile = "config.yaml"
)

// Config manages application configuration
type Config struct {
	mu        sync.RWMutex // guards target during reloads
	viper     *viper.Viper
	validate  validator.Validator
	target    any
	loader    Loader
	watch     bool
	file      string
	paths     []string
	envPrefix string
	optional  bool
	onChange  []func()
	logger    *log.Logger
}

// New creates a Config for target. Without WithLoader a FileLoader reading
// config.yaml from the working directory is used.
func New(target any, opts ...Option) *Config {
	c := &Config{
		viper:    viper.New(),
		validate: validator.Validate,
		target:   target,
		file:     defaultFile,
		paths:    []string{"."},
		logger:   log.G(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.loader == nil {
		var fopts []FileLoaderOption
		if c.envPrefix != "" {
			fopts = append(fopts, FileEnvPrefix(c.envPrefix))
		}
		if c.optional {
			fopts = append(fopts, FileOptional())
		}
		c.loader = NewFileLoader(c.file, c.paths, c.viper, c.validate, fopts...)
	}

	return c
}

// Load reads the configuration using the configured loader, then starts
// watching when WithWatch(true) was given.
func (c *Config) Load() error {
	if err := c.Reload(); err != nil {
		return err
	}
	if c.watch {
		return c.Watch()
	}
	return nil
}

// Reload reloads the configuration from the loader
func (c *Config) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loader.Load(c.target)
}

// Watch reloads the target on every change of the source. A failed reload
// is logged and may leave the target partially updated.
func (c *Config) Watch() error {
	return c.loader.Watch(func() {
		c.logger.Info().Msg("config change detected")

		if err := c.Reload(); err != nil {
			c.logger.Error().Err(err).Msg("failed to reload config after change")
			return
		}

		c.logger.Info().Msg("config reloaded successfully")
		for _, fn := range c.onChange {
			fn()
		}
	})
}

// Read runs fn while holding the read lock, so fn never sees a half
// applied reload.
func (c *Config) Read(fn func()) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn()
}

// GetViper returns the underlying viper instance.
func (c *Config) GetViper() *viper.Viper {
	return c.viper
}

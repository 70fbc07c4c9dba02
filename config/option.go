package config

import (
	"github.com/spf13/viper"

	"github.com/kochabx/ecckit/core/validator"
	"github.com/kochabx/ecckit/log"
)

// Option is a function that configures a Config
type Option func(*Config)

// WithViper sets a custom viper instance
func WithViper(v *viper.Viper) Option {
	return func(c *Config) {
		c.viper = v
	}
}

// WithValidator sets a custom validator. A nil validator disables validation.
func WithValidator(v validator.Validator) Option {
	return func(c *Config) {
		c.validate = v
	}
}

// WithLoader sets the configuration loader
func WithLoader(loader Loader) Option {
	return func(c *Config) {
		c.loader = loader
	}
}

// WithWatch makes Load start watching the source.
func WithWatch(enable bool) Option {
	return func(c *Config) {
		c.watch = enable
	}
}

// WithFile sets the file name and search paths of the default FileLoader.
func WithFile(name string, paths ...string) Option {
	return func(c *Config) {
		c.file = name
		if len(paths) > 0 {
			c.paths = paths
		}
	}
}

// WithEnvPrefix sets the environment prefix, e.g. "ECCD" maps server.addr
// to ECCD_SERVER_ADDR.
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// WithOptionalFile lets Load succeed on defaults and environment alone
// when no file is found.
func WithOptionalFile() Option {
	return func(c *Config) {
		c.optional = true
	}
}

// WithOnChange registers fn to run after every successful reload.
func WithOnChange(fn func()) Option {
	return func(c *Config) {
		c.onChange = append(c.onChange, fn)
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}

package config

import (
	stderrors "errors"
	"path"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/kochabx/ecckit/core/validator"
	"github.com/kochabx/ecckit/errors"
)

// FileLoader loads configuration from a file, environment variables and the
// target's defaults, in increasing order of precedence: defaults, file, env.
type FileLoader struct {
	viper    *viper.Viper
	validate validator.Validator
	name     string
	paths    []string
	optional bool
}

// FileLoaderOption configures a FileLoader.
type FileLoaderOption func(*FileLoader)

// FileOptional tolerates a missing file.
func FileOptional() FileLoaderOption {
	return func(l *FileLoader) {
		l.optional = true
	}
}

// FileEnvPrefix sets the environment variable prefix.
func FileEnvPrefix(prefix string) FileLoaderOption {
	return func(l *FileLoader) {
		l.viper.SetEnvPrefix(prefix)
	}
}

// NewFileLoader creates a file loader. The config type is taken from the
// extension of name.
func NewFileLoader(name string, paths []string, v *viper.Viper, validate validator.Validator, opts ...FileLoaderOption) *FileLoader {
	for _, configPath := range paths {
		v.AddConfigPath(configPath)
	}

	v.SetConfigName(strings.TrimSuffix(name, path.Ext(name)))
	v.SetConfigType(strings.TrimPrefix(path.Ext(name), "."))

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	l := &FileLoader{
		viper:    v,
		validate: validate,
		name:     name,
		paths:    paths,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load implements Loader interface
func (l *FileLoader) Load(target any) error {
	if d, ok := target.(Defaulter); ok {
		d.SetDefaults(l.viper)
	}

	if err := l.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) || !l.optional {
			return errors.Wrap(err, 404, "config file %s not found in %v", l.name, l.paths)
		}
	}

	if err := l.viper.Unmarshal(target); err != nil {
		return errors.Wrap(err, 500, "config parse error")
	}

	if l.validate != nil {
		if err := validator.ToError(l.validate.Struct(target)); err != nil {
			return err
		}
	}

	return nil
}

// Watch implements Loader interface. A missing file is not watched.
func (l *FileLoader) Watch(callback func()) error {
	if l.viper.ConfigFileUsed() == "" {
		return nil
	}

	l.viper.OnConfigChange(func(e fsnotify.Event) {
		if callback != nil && e.Op != fsnotify.Chmod {
			callback()
		}
	})

	l.viper.WatchConfig()
	return nil
}

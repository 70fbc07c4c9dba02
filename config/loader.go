package config

import "github.com/spf13/viper"

// Loader loads configuration into a target struct.
type Loader interface {
	// Load loads the configuration into the target
	Load(target any) error

	// Watch invokes callback after each detected change of the source.
	Watch(callback func()) error
}

// Defaulter is implemented by targets that register their own defaults.
// SetDefaults runs before the source is read, so every key it sets can also
// be overridden from the environment.
type Defaulter interface {
	SetDefaults(v *viper.Viper)
}

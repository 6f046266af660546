// Package config loads the repository's ambient settings from the
// environment only. The storage core itself needs no configuration
// (page size and column widths are compile-time constants, per design);
// this covers the host's logging knobs.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Settings holds the environment-driven configuration for the flatbase
// host binary.
type Settings struct {
	// LogLevel is one of logrus's level names: trace, debug, info, warn,
	// error, fatal, panic.
	LogLevel string

	// LogFormat is "text" (colorized) or "json".
	LogFormat string
}

// Load reads FLATBASE_* environment variables, defaulting to an info
// level, colorized text logger. No config file is read or required.
func Load() Settings {
	v := viper.New()
	v.SetEnvPrefix("flatbase")
	v.AutomaticEnv()
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	return Settings{
		LogLevel:  strings.ToLower(v.GetString("log_level")),
		LogFormat: strings.ToLower(v.GetString("log_format")),
	}
}

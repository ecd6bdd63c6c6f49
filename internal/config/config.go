// Package config creates the shared logger of the commands.
package config

import (
	"github.com/retroenv/nanddecode/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger for the logging flags. Debug takes precedence over quiet.
func CreateLogger(flags options.Flags) *log.Logger {
	cfg := log.DefaultConfig()
	switch {
	case flags.Debug:
		cfg.Level = log.DebugLevel
	case flags.Quiet:
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

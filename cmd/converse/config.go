package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/fwojciec/converse"
	convyaml "github.com/fwojciec/converse/yaml"
)

const defaultConfigPath = ".converse/config.yaml"

type flags struct {
	config    string
	backend   string
	transport string
	history   string
	logFile   string
	logLevel  string
}

// resolveConfig layers defaults, the config file, the backend env value and
// flags, in that order, and validates the result. A missing file at the
// default path is tolerated; any other read failure is not.
func resolveConfig(f flags, envBackend string) (converse.Config, error) {
	cfg := converse.DefaultConfig()
	if f.config != "" {
		loaded, err := convyaml.Load(f.config, cfg)
		switch {
		case err == nil:
			cfg = loaded
		case errors.Is(err, fs.ErrNotExist) && f.config == defaultConfigPath:
			// No config file; keep defaults.
		default:
			return converse.Config{}, err
		}
	}

	if envBackend != "" {
		cfg.BackendURL = envBackend
	}
	if f.backend != "" {
		cfg.BackendURL = f.backend
	}
	if f.transport != "" {
		cfg.Transport = f.transport
	}
	if f.history != "" {
		cfg.HistoryPath = f.history
	}
	if f.logFile != "" {
		cfg.Logging.File = f.logFile
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return converse.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

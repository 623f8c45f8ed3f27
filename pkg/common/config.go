package common

import (
	"errors"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// DefaultExtractFormat is the format tag used when extracting payloads as-is.
const DefaultExtractFormat = "wem"

// Config holds the settings shared by all bank commands.
type Config struct {
	// Workers bounds the number of concurrent per-asset tasks.
	Workers int `yaml:"workers"`
	// HistoryLimit caps the undo history. Zero keeps every entry.
	HistoryLimit int `yaml:"history_limit"`
	// Backup stores a compressed copy of a bank before it is overwritten.
	Backup bool `yaml:"backup"`
	// ExtractFormat is the format tag handed to the audio codec on extraction.
	ExtractFormat string `yaml:"extract_format"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Workers:       runtime.NumCPU(),
		HistoryLimit:  0,
		Backup:        true,
		ExtractFormat: DefaultExtractFormat,
	}
}

// LoadConfig reads a YAML configuration file on top of the defaults.
// An empty path or a missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			LogDebug("Config file %s not found, using defaults", path)
			return cfg, nil
		}
		return nil, FormatError(ErrFailedToReadConfig, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, FormatError(ErrFailedToParseConfig, err)
	}

	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.HistoryLimit < 0 {
		cfg.HistoryLimit = 0
	}
	if cfg.ExtractFormat == "" {
		cfg.ExtractFormat = DefaultExtractFormat
	}

	return cfg, nil
}

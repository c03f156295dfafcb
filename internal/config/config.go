// Package config loads merge-pgn settings from an optional YAML file and
// MERGE_PGN_* environment variables. Command-line flags are applied last by
// the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MERGE_PGN_"

// Config holds merge-pgn settings.
type Config struct {
	Output         string `yaml:"output,omitempty"`
	LogLevel       string `yaml:"logLevel,omitempty"`
	DedupeComments bool   `yaml:"dedupeComments,omitempty"`
	NoSplit        bool   `yaml:"noSplit,omitempty"`
	Concurrency    int    `yaml:"concurrency,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{LogLevel: "warn"}
}

// Load returns the defaults overlaid with a config file and then with the
// environment. An explicit path must exist; otherwise merge-pgn.yml or
// merge-pgn.yaml in dir is used when present.
func Load(dir, path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			return Config{}, err
		}
	} else {
		for _, name := range []string{"merge-pgn.yml", "merge-pgn.yaml"} {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				return Config{}, fmt.Errorf("stat config: %w", err)
			}
			if err := readFile(p, &cfg); err != nil {
				return Config{}, err
			}
			break
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from MERGE_PGN_OUTPUT, MERGE_PGN_LOG_LEVEL,
// MERGE_PGN_DEDUPE_COMMENTS, MERGE_PGN_NO_SPLIT and MERGE_PGN_CONCURRENCY.
// Empty values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return v, ok && v != ""
	}

	if v, ok := get("OUTPUT"); ok {
		c.Output = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := get("DEDUPE_COMMENTS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sDEDUPE_COMMENTS: %w", EnvPrefix, err)
		}
		c.DedupeComments = b
	}
	if v, ok := get("NO_SPLIT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sNO_SPLIT: %w", EnvPrefix, err)
		}
		c.NoSplit = b
	}
	if v, ok := get("CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sCONCURRENCY: %w", EnvPrefix, err)
		}
		c.Concurrency = n
	}
	return nil
}

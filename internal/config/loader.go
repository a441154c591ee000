package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "EVENTMGR_"

// Load builds a configuration from defaults, the file at path and the
// process environment, then validates it.
// An empty path or a missing file yields the defaults plus environment.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LookupFunc looks up an environment variable.
type LookupFunc func(key string) (string, bool)

// LoadWithEnv is Load with a custom environment lookup.
func LoadWithEnv(path string, lookup LookupFunc) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile decodes path over cfg. Fields absent from the file keep their
// current values.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		return parseTOML(path, data, cfg)
	case ".yaml", ".yml":
		return parseYAML(path, data, cfg)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func parseTOML(path string, data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		perr := &ParseError{Path: path, Message: err.Error(), Err: err}

		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return perr
	}
	return nil
}

func parseYAML(path string, data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	return nil
}

// applyEnv overrides cfg with EVENTMGR_* variables.
func applyEnv(cfg *Config, lookup LookupFunc) error {
	if lookup == nil {
		return nil
	}

	if v, ok := lookup(EnvPrefix + "LOG_LEVEL"); ok {
		cfg.Logging.Level = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvPrefix + "LOG_FORMAT"); ok {
		cfg.Logging.Format = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvPrefix + "DEMO_TARGET"); ok {
		cfg.Demo.Target = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"ASYNC_WORKERS", &cfg.Event.AsyncWorkers},
		{"ASYNC_QUEUE_SIZE", &cfg.Event.AsyncQueueSize},
	}
	for _, e := range ints {
		v, ok := lookup(EnvPrefix + e.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, e.key, err)
		}
		*e.dst = n
	}

	if v, ok := lookup(EnvPrefix + "DEMO_CLEAR_INCLUDES_GLOBAL"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sDEMO_CLEAR_INCLUDES_GLOBAL: %w", EnvPrefix, err)
		}
		cfg.Demo.ClearIncludesGlobal = b
	}

	return nil
}

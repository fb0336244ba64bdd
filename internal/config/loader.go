package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrUnknownConfigField classifies strict YAML parse failures caused by
// unknown keys.
var ErrUnknownConfigField = errors.New("unknown config field")

// Loader handles configuration loading with precedence
// defaults < file < environment.
type Loader struct {
	configPath string
	// explicit is set when the path was given by the user; a missing file
	// is then an error instead of being skipped.
	explicit bool
	env      func(string) (string, bool)
}

// NewLoader creates a loader. An empty path falls back to DefaultPath when
// that file exists.
func NewLoader(configPath string) *Loader {
	l := &Loader{configPath: configPath, explicit: configPath != "", env: os.LookupEnv}
	if !l.explicit {
		l.configPath = DefaultPath
	}
	return l
}

// Load reads .env (if present), the YAML file and the environment, then
// validates the result.
func (l *Loader) Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := Defaults()
	if err := l.mergeFile(&cfg); err != nil {
		return Config{}, err
	}
	if err := l.mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Path returns the config file path in use.
func (l *Loader) Path() string { return l.configPath }

func (l *Loader) mergeFile(cfg *Config) error {
	data, err := os.ReadFile(filepath.Clean(l.configPath))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !l.explicit {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "not found in type") {
			return fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("parse config %s: %w", l.configPath, err)
	}
	return nil
}

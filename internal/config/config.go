// Package config loads linguist settings from defaults, an optional YAML
// file and LINGUIST_* environment variables, in that order of precedence.
package config

import (
	"time"

	"linguist/internal/lint"
)

const DefaultPath = "linguist.yaml"

type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Lint      LintConfig      `yaml:"lint"`
	Translate TranslateConfig `yaml:"translate"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | console
}

type LintConfig struct {
	SourceRoot  string            `yaml:"source_root"`
	Disabled    []string          `yaml:"disabled"`
	Severity    map[string]string `yaml:"severity"`
	Concurrency int               `yaml:"concurrency"`
	Strict      bool              `yaml:"strict"`
}

type TranslateConfig struct {
	ProviderID int64         `yaml:"provider_id"`
	Model      string        `yaml:"model"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Database: DatabaseConfig{Path: "data/linguist.db"},
		Log:      LogConfig{Level: "info", Format: "console"},
		Lint:     LintConfig{Severity: map[string]string{}},
		Translate: TranslateConfig{
			Timeout: 60 * time.Second,
		},
	}
}

// LintOptions converts the lint section into linter options. The config
// must have passed Validate.
func (c Config) LintOptions() lint.Options {
	opts := lint.Options{
		SourceRoot:  c.Lint.SourceRoot,
		Concurrency: c.Lint.Concurrency,
		Severity:    map[lint.Rule]lint.Severity{},
	}
	for _, r := range c.Lint.Disabled {
		opts.Disabled = append(opts.Disabled, lint.Rule(r))
	}
	for r, s := range c.Lint.Severity {
		if sev, err := lint.ParseSeverity(s); err == nil {
			opts.Severity[lint.Rule(r)] = sev
		}
	}
	return opts
}

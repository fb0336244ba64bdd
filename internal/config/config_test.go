package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linguist/internal/lint"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "linguist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func loaderWithEnv(path string, env map[string]string) *Loader {
	l := NewLoader(path)
	l.env = func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	return l
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := loaderWithEnv("", nil).Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /var/lib/linguist.db
log:
  level: debug
lint:
  source_root: ../src
  disabled: [unfinished]
  severity:
    newline-mismatch: error
translate:
  model: llama3
  timeout: 30s
`)
	cfg, err := loaderWithEnv(path, map[string]string{
		"LINGUIST_LOG_LEVEL":     "warn",
		"LINGUIST_LINT_DISABLED": "unfinished, numerus-forms",
		"LINGUIST_PROVIDER_ID":   "3",
		"LINGUIST_MODEL":         "",
	}).Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/linguist.db", cfg.Database.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, []string{"unfinished", "numerus-forms"}, cfg.Lint.Disabled)
	assert.Equal(t, int64(3), cfg.Translate.ProviderID)
	assert.Equal(t, "llama3", cfg.Translate.Model)
	assert.Equal(t, 30*time.Second, cfg.Translate.Timeout)

	opts := cfg.LintOptions()
	assert.Equal(t, "../src", opts.SourceRoot)
	assert.Equal(t, lint.SeverityError, opts.Severity[lint.RuleNewlineMismatch])
	assert.Equal(t, []lint.Rule{lint.RuleUnfinished, lint.RuleNumerusForms}, opts.Disabled)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "database:\n  file: x.db\n")
	_, err := loaderWithEnv(path, nil).Load()
	assert.ErrorIs(t, err, ErrUnknownConfigField)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := loaderWithEnv(filepath.Join(t.TempDir(), "nope.yaml"), nil).Load()
	assert.ErrorContains(t, err, "read config")
}

func TestLoadBadEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := loaderWithEnv("", map[string]string{"LINGUIST_LINT_STRICT": "maybe"}).Load()
	assert.ErrorContains(t, err, "LINGUIST_LINT_STRICT")
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Database.Path = ""
	cfg.Log.Format = "xml"
	cfg.Lint.Disabled = []string{"xml-syntax", "bogus"}
	cfg.Lint.Severity = map[string]string{"unfinished": "fatal"}
	cfg.Lint.Concurrency = -1

	err := Validate(cfg)
	require.Error(t, err)
	for _, want := range []string{
		"database.path",
		"log.format",
		"xml-syntax cannot be disabled",
		`unknown rule "bogus"`,
		"lint.severity.unfinished",
		"lint.concurrency",
	} {
		assert.ErrorContains(t, err, want)
	}
	assert.NoError(t, Validate(Defaults()))
}

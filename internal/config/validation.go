package config

import (
	"errors"
	"fmt"

	"linguist/internal/lint"
)

// Validate checks a merged configuration and reports every problem found.
func Validate(cfg Config) error {
	var errs []error
	if cfg.Database.Path == "" {
		errs = append(errs, errors.New("database.path must not be empty"))
	}
	switch cfg.Log.Format {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: want json or console", cfg.Log.Format))
	}
	for _, r := range cfg.Lint.Disabled {
		if !lint.KnownRule(lint.Rule(r)) {
			errs = append(errs, fmt.Errorf("lint.disabled: unknown rule %q", r))
		}
		if lint.Rule(r) == lint.RuleXMLSyntax {
			errs = append(errs, fmt.Errorf("lint.disabled: %s cannot be disabled", r))
		}
	}
	for r, s := range cfg.Lint.Severity {
		if !lint.KnownRule(lint.Rule(r)) {
			errs = append(errs, fmt.Errorf("lint.severity: unknown rule %q", r))
		}
		if _, err := lint.ParseSeverity(s); err != nil {
			errs = append(errs, fmt.Errorf("lint.severity.%s: %w", r, err))
		}
	}
	if cfg.Lint.Concurrency < 0 {
		errs = append(errs, errors.New("lint.concurrency must not be negative"))
	}
	if cfg.Translate.Timeout < 0 {
		errs = append(errs, errors.New("translate.timeout must not be negative"))
	}
	return errors.Join(errs...)
}

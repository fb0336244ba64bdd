package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	xlog "linguist/internal/log"
)

const envPrefix = "LINGUIST_"

func (l *Loader) lookup(name string) (string, bool) {
	v, ok := l.env(envPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	logger := xlog.WithComponent("config")
	lower := strings.ToLower(name)
	if strings.Contains(lower, "key") || strings.Contains(lower, "token") {
		logger.Debug().Str("key", envPrefix+name).Bool("sensitive", true).Msg("using environment variable")
	} else {
		logger.Debug().Str("key", envPrefix+name).Str("value", v).Msg("using environment variable")
	}
	return v, true
}

func (l *Loader) mergeEnv(cfg *Config) error {
	if v, ok := l.lookup("DB"); ok {
		cfg.Database.Path = v
	}
	if v, ok := l.lookup("LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := l.lookup("LOG_FORMAT"); ok {
		cfg.Log.Format = v
	}
	if v, ok := l.lookup("SOURCE_ROOT"); ok {
		cfg.Lint.SourceRoot = v
	}
	if v, ok := l.lookup("LINT_DISABLED"); ok {
		cfg.Lint.Disabled = splitList(v)
	}
	if v, ok := l.lookup("LINT_CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sLINT_CONCURRENCY: %w", envPrefix, err)
		}
		cfg.Lint.Concurrency = n
	}
	if v, ok := l.lookup("LINT_STRICT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sLINT_STRICT: %w", envPrefix, err)
		}
		cfg.Lint.Strict = b
	}
	if v, ok := l.lookup("PROVIDER_ID"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sPROVIDER_ID: %w", envPrefix, err)
		}
		cfg.Translate.ProviderID = n
	}
	if v, ok := l.lookup("MODEL"); ok {
		cfg.Translate.Model = v
	}
	if v, ok := l.lookup("TRANSLATE_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTRANSLATE_TIMEOUT: %w", envPrefix, err)
		}
		cfg.Translate.Timeout = d
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/language"

	"linguist/internal/domain"
	xlog "linguist/internal/log"
	"linguist/internal/plurals"
)

// Set holds one catalog per locale and picks the best one for a list of
// preferred locales.
type Set struct {
	mu      sync.RWMutex
	tags    []language.Tag
	cats    []*Catalog
	matcher language.Matcher
}

func NewSet(cats ...*Catalog) *Set {
	s := &Set{}
	for _, c := range cats {
		s.Add(c)
	}
	return s
}

// Add registers c, replacing a catalog of the same locale. Catalogs
// without a parseable language are ignored.
func (s *Set) Add(c *Catalog) {
	if c == nil || c.lang == language.Und {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tags {
		if t == c.lang {
			s.cats[i] = c
			return
		}
	}
	s.tags = append(s.tags, c.lang)
	s.cats = append(s.cats, c)
	s.matcher = language.NewMatcher(s.tags)
}

// Match returns the catalog that best serves the preferred locales, in
// order of preference. Unparseable entries are skipped. When nothing
// matches, an empty catalog is returned so lookups fall back to the source
// text.
func (s *Set) Match(preferred ...string) *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.matcher == nil {
		return Empty()
	}
	var want []language.Tag
	for _, p := range preferred {
		if t, err := plurals.Parse(p); err == nil {
			want = append(want, t)
		}
	}
	if len(want) == 0 {
		return Empty()
	}
	_, idx, conf := s.matcher.Match(want...)
	if conf == language.No {
		return Empty()
	}
	return s.cats[idx]
}

// Locales lists the registered locales.
func (s *Set) Locales() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.cats))
	for _, c := range s.cats {
		out = append(out, c.locale)
	}
	sort.Strings(out)
	return out
}

// LoadDir loads every .ts file in dir into a new set. A catalog without a
// language attribute is keyed by its file name, <prefix>_<locale>.ts, the
// way QTranslator finds catalogs. Files that still have no locale are
// skipped with a warning.
func LoadDir(dir string, opts Options) (*Set, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.ts"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("catalog dir: %w", err)
		}
	}
	logger := xlog.WithComponent("catalog")
	s := NewSet()
	for _, p := range paths {
		c, err := Load(p, opts)
		if err != nil {
			return nil, err
		}
		if c.lang == language.Und {
			loc := LocaleFromFilename(p)
			tag, err := plurals.Parse(loc)
			if loc == "" || err != nil {
				logger.Warn().Str("event", "catalog.no_locale").Str("file", p).Msg("catalog has no language, skipped")
				continue
			}
			c.lang = tag
			c.locale = domain.NormalizeLocale(loc)
		}
		s.Add(c)
	}
	return s, nil
}

// LocaleFromFilename returns the locale suffix of a Qt catalog name such
// as nomacs_sr.ts or nomacs_pt_BR.ts, or "" when there is none.
func LocaleFromFilename(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parts := strings.Split(name, "_")
	n := len(parts)
	if n < 2 {
		return ""
	}
	loc := parts[n-1]
	if n >= 3 && isRegionOrScript(parts[n-1]) {
		loc = parts[n-2] + "_" + parts[n-1]
	}
	if _, err := plurals.Parse(loc); err != nil {
		return ""
	}
	return loc
}

func isRegionOrScript(s string) bool {
	switch len(s) {
	case 2:
		return unicode.IsUpper(rune(s[0])) && unicode.IsUpper(rune(s[1]))
	case 3:
		return strings.Trim(s, "0123456789") == ""
	case 4:
		return unicode.IsUpper(rune(s[0])) && strings.ToLower(s[1:]) == s[1:]
	}
	return false
}

// Package plurals derives the numerus forms a language uses from the CLDR
// cardinal plural rules shipped with golang.org/x/text.
package plurals

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
)

// sampleLimit is the highest integer probed when collecting categories.
// Every integer plural rule in CLDR repeats within the first thousand.
const sampleLimit = 1000

var cache sync.Map // language.Tag -> []plural.Form

// Forms returns the plural categories used by integers in tag, ordered
// zero, one, two, few, many, other. That is the order Qt Linguist uses for
// numerus forms.
func Forms(tag language.Tag) []plural.Form {
	if tag == language.Und {
		return nil
	}
	if v, ok := cache.Load(tag); ok {
		return v.([]plural.Form)
	}
	seen := map[plural.Form]struct{}{}
	for n := 0; n <= sampleLimit; n++ {
		seen[Match(tag, n)] = struct{}{}
	}
	out := make([]plural.Form, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return rank(out[i]) < rank(out[j]) })
	cache.Store(tag, out)
	return out
}

// Count is len(Forms(tag)), or 0 when the language is unknown.
func Count(tag language.Tag) int { return len(Forms(tag)) }

// Match returns the plural category of the integer n.
func Match(tag language.Tag, n int) plural.Form {
	if n < 0 {
		n = -n
	}
	return plural.Cardinal.MatchPlural(tag, n, 0, 0, 0, 0)
}

// Index returns the position of n's category within Forms(tag).
func Index(tag language.Tag, n int) int {
	f := Match(tag, n)
	for i, g := range Forms(tag) {
		if g == f {
			return i
		}
	}
	return 0
}

// Parse accepts both BCP 47 (sr-RS) and Qt (sr_RS) locale names.
func Parse(locale string) (language.Tag, error) {
	return language.Parse(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
}

// Name returns the CLDR keyword of a category.
func Name(f plural.Form) string {
	switch f {
	case plural.Zero:
		return "zero"
	case plural.One:
		return "one"
	case plural.Two:
		return "two"
	case plural.Few:
		return "few"
	case plural.Many:
		return "many"
	default:
		return "other"
	}
}

func rank(f plural.Form) int {
	if f == plural.Other {
		return 5
	}
	return int(f) - 1
}

package translator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var (
	// Qt QString::arg markers and the numerus count marker.
	qtPlaceholderRE = regexp.MustCompile(`%L?(?:[1-9][0-9]?|n)`)
	// Brace style placeholders used by the key/value formats.
	bracePlaceholderRE = regexp.MustCompile(`\{[^}]+\}`)
	// Rich text markup and Valve style tags.
	tagRE = regexp.MustCompile(`<[^<>]+>`)
)

func extractPlaceholders(s string) []string {
	return uniqueSorted(append(qtPlaceholderRE.FindAllString(s, -1), bracePlaceholderRE.FindAllString(s, -1)...))
}

func extractTags(s string) []string {
	return uniqueSorted(tagRE.FindAllString(s, -1))
}

func isCountMarker(p string) bool { return p == "%n" || p == "%Ln" }

// uniqueSorted orders longer tokens first so that %10 is masked before %1.
func uniqueSorted(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

// maskTokens swaps placeholders and tags for opaque tokens models leave
// alone. unmask reverses it.
func maskTokens(s string, placeholders, tags []string) (string, func(string) string) {
	type repl struct{ from, to string }
	var repls []repl
	masked := s
	for i, tg := range tags {
		token := fmt.Sprintf("__TAG_%d__", i)
		masked = strings.ReplaceAll(masked, tg, token)
		repls = append(repls, repl{from: token, to: tg})
	}
	for i, ph := range placeholders {
		token := fmt.Sprintf("__PH_%d__", i)
		masked = strings.ReplaceAll(masked, ph, token)
		repls = append(repls, repl{from: token, to: ph})
	}
	// Models drop edge whitespace; the source's is restored verbatim.
	lead := s[:len(s)-len(strings.TrimLeftFunc(s, unicode.IsSpace))]
	trail := s[len(strings.TrimRightFunc(s, unicode.IsSpace)):]
	if strings.TrimSpace(s) == "" {
		trail = ""
	}
	unmask := func(in string) string {
		out := strings.TrimSpace(in)
		for i := len(repls) - 1; i >= 0; i-- {
			out = strings.ReplaceAll(out, repls[i].from, repls[i].to)
		}
		return lead + out + trail
	}
	return masked, unmask
}

package lint

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"linguist/internal/domain"
	"linguist/internal/plurals"
)

// placeholderRE matches QString::arg markers (%1, %L2) and the numerus
// marker (%n, %Ln).
var placeholderRE = regexp.MustCompile(`%L?(?:[1-9][0-9]?|n)`)

func (l *Linter) checkLanguage(rep *Report, doc *domain.Document) {
	if doc.Language == "" {
		l.add(rep, Issue{Rule: RuleMissingLanguage, Message: "TS element has no language attribute"})
		return
	}
	if _, err := plurals.Parse(doc.Language); err != nil {
		l.add(rep, Issue{Rule: RuleMissingLanguage, Message: "language " + doc.Language + " is not a valid locale: " + err.Error()})
	}
}

type identity struct{ context, source, comment string }

// checkDuplicates reports messages sharing context, source and comment.
// Texts are compared after NFC normalisation so that composed and
// decomposed spellings count as the same phrase.
func (l *Linter) checkDuplicates(rep *Report, msgs []*domain.Message) {
	first := map[identity]*domain.Message{}
	for _, m := range msgs {
		if !m.Active() {
			continue
		}
		id := identity{m.Context, norm.NFC.String(m.Source), norm.NFC.String(m.Comment)}
		prev, ok := first[id]
		if !ok {
			first[id] = m
			continue
		}
		if translationText(prev) != translationText(m) {
			l.addFor(rep, m, RuleConflictingDuplicate,
				"duplicate of message at line %d with a different translation", prev.Line)
			continue
		}
		l.addFor(rep, m, RuleDuplicateMessage, "duplicate of message at line %d", prev.Line)
	}
}

func translationText(m *domain.Message) string {
	if m.Numerus {
		return norm.NFC.String(strings.Join(m.Translation.Forms, "\x00"))
	}
	return norm.NFC.String(m.Translation.Text)
}

func (l *Linter) checkMessage(rep *Report, doc *domain.Document, m *domain.Message) {
	// Whitespace is a legitimate source, e.g. a spacer label.
	if m.Source == "" {
		l.addFor(rep, m, RuleEmptySource, "message has an empty source text")
	}
	if !m.Active() {
		return
	}
	if m.Translation.Type == domain.TypeUnfinished || !m.Translated() {
		l.addFor(rep, m, RuleUnfinished, "translation is unfinished")
	}
	if !m.Translated() {
		return
	}
	texts := []string{m.Translation.Text}
	if m.Numerus {
		texts = m.Translation.Forms
		l.checkNumerus(rep, doc, m)
	}
	for _, t := range texts {
		if t == "" {
			continue
		}
		if missing, extra := diffPlaceholders(m.Source, t, m.Numerus); len(missing)+len(extra) > 0 {
			l.addFor(rep, m, RulePlaceholderMismatch, "placeholders differ: missing %v, unexpected %v", missing, extra)
		}
		if msg := newlineMismatch(m.Source, t); msg != "" {
			l.addFor(rep, m, RuleNewlineMismatch, "%s", msg)
		}
	}
}

func (l *Linter) checkNumerus(rep *Report, doc *domain.Document, m *domain.Message) {
	tag, err := plurals.Parse(doc.Language)
	if err != nil {
		return
	}
	want := plurals.Count(tag)
	if want == 0 {
		return
	}
	if got := len(m.Translation.Forms); got != want {
		l.addFor(rep, m, RuleNumerusForms, "%d numerus forms, language %s uses %d", got, doc.Language, want)
	}
}

func (l *Linter) checkLocations(rep *Report, m *domain.Message) {
	for _, loc := range m.Locations {
		if loc.File == "" {
			continue
		}
		path := loc.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(l.opts.SourceRoot, path)
		}
		n := l.lineCount(path)
		switch {
		case n < 0:
			l.addFor(rep, m, RuleLocationUnresolved, "location %s does not exist", loc.File)
		case loc.Line > n:
			l.addFor(rep, m, RuleLocationUnresolved, "location %s:%d is past the end of the file (%d lines)", loc.File, loc.Line, n)
		}
	}
}

// diffPlaceholders compares the marker sets of source and translation.
// In numerus messages %n may be dropped from a form, as in "one file".
func diffPlaceholders(source, translation string, numerus bool) (missing, extra []string) {
	src := placeholderSet(source)
	dst := placeholderSet(translation)
	for p := range src {
		if _, ok := dst[p]; !ok {
			if numerus && isCountMarker(p) {
				continue
			}
			missing = append(missing, p)
		}
	}
	for p := range dst {
		if _, ok := src[p]; !ok {
			if numerus && isCountMarker(p) {
				continue
			}
			extra = append(extra, p)
		}
	}
	sort.Strings(missing)
	sort.Strings(extra)
	return missing, extra
}

func placeholderSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, p := range placeholderRE.FindAllString(s, -1) {
		// %L1 and %1 refer to the same argument.
		out[strings.Replace(p, "%L", "%", 1)] = struct{}{}
	}
	return out
}

func isCountMarker(p string) bool { return p == "%n" }

func newlineMismatch(source, translation string) string {
	switch {
	case strings.HasSuffix(source, "\n") && !strings.HasSuffix(translation, "\n"):
		return "source ends with a newline, translation does not"
	case !strings.HasSuffix(source, "\n") && strings.HasSuffix(translation, "\n"):
		return "translation ends with a newline, source does not"
	case strings.HasPrefix(source, "\n") != strings.HasPrefix(translation, "\n"):
		return "leading newline differs between source and translation"
	}
	return ""
}

// Package catalog serves translations from parsed .ts documents at
// runtime. A lookup never fails: anything that is not translated comes
// back as the source phrase.
package catalog

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	qtparser "linguist/internal/adapters/parser/qtts"
	"linguist/internal/domain"
	"linguist/internal/plurals"
)

type Options struct {
	// SkipUnfinished ignores translations marked unfinished, the same as
	// lrelease -nounfinished.
	SkipUnfinished bool
}

type entry struct {
	text  string
	forms []string
}

type key struct{ context, source, comment string }

// Catalog is an immutable lookup table for one locale.
type Catalog struct {
	lang    language.Tag
	locale  string
	entries map[key]entry
}

// Load reads a .ts file into a catalog.
func Load(path string, opts Options) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	doc, err := qtparser.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return FromDocument(doc, opts), nil
}

// FromDocument builds a catalog from every usable translation in doc. When
// a message appears more than once the first usable translation wins.
func FromDocument(doc *domain.Document, opts Options) *Catalog {
	c := &Catalog{
		locale:  domain.NormalizeLocale(doc.Language),
		entries: map[key]entry{},
	}
	if tag, err := plurals.Parse(doc.Language); err == nil {
		c.lang = tag
	}
	for _, m := range doc.Messages() {
		if !m.Active() || !m.Translated() {
			continue
		}
		if opts.SkipUnfinished && m.Translation.Type == domain.TypeUnfinished {
			continue
		}
		k := key{m.Context, m.Source, m.Comment}
		if _, dup := c.entries[k]; dup {
			continue
		}
		e := entry{text: m.Translation.Text}
		if m.Numerus {
			e.forms = m.Translation.Forms
			e.text = m.Text()
		}
		c.entries[k] = e
	}
	return c
}

// Empty returns a catalog that translates nothing.
func Empty() *Catalog { return &Catalog{entries: map[key]entry{}} }

// Locale returns the catalog language in BCP 47 form.
func (c *Catalog) Locale() string { return c.locale }

// Tag returns the parsed catalog language, language.Und when unknown.
func (c *Catalog) Tag() language.Tag { return c.lang }

// Len returns the number of usable translations.
func (c *Catalog) Len() int { return len(c.entries) }

func (c *Catalog) lookup(context, source, comment string) (entry, bool) {
	if e, ok := c.entries[key{context, source, comment}]; ok {
		return e, true
	}
	if comment != "" {
		if e, ok := c.entries[key{context, source, ""}]; ok {
			return e, true
		}
	}
	return entry{}, false
}

// Translate returns the translation of source in context, disambiguated by
// comment, or source itself when there is none.
func (c *Catalog) Translate(context, source, comment string) string {
	e, ok := c.lookup(context, source, comment)
	if !ok || e.text == "" {
		return source
	}
	return e.text
}

// Has reports whether a usable translation exists.
func (c *Catalog) Has(context, source, comment string) bool {
	e, ok := c.lookup(context, source, comment)
	return ok && (e.text != "" || len(e.forms) > 0)
}

// TranslateN picks the numerus form for n and replaces every %n (and %Ln)
// with n. Without a translation the source is used.
func (c *Catalog) TranslateN(context, source, comment string, n int) string {
	text := source
	if e, ok := c.lookup(context, source, comment); ok {
		switch {
		case len(e.forms) > 0:
			text = e.forms[c.formIndex(n, len(e.forms))]
			if text == "" {
				text = source
			}
		case e.text != "":
			text = e.text
		}
	}
	return substituteCount(text, n)
}

func (c *Catalog) formIndex(n, available int) int {
	if c.lang == language.Und {
		return 0
	}
	i := plurals.Index(c.lang, n)
	if i >= available {
		i = available - 1
	}
	return i
}

func substituteCount(s string, n int) string {
	if !strings.Contains(s, "%") {
		return s
	}
	num := strconv.Itoa(n)
	return strings.NewReplacer("%Ln", num, "%n", num).Replace(s)
}

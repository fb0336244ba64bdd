// Package qtts writes Qt Linguist translation sources (.ts) in the layout
// lupdate produces.
package qtts

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"linguist/internal/domain"
)

const defaultVersion = "2.1"

// Encode writes doc as a .ts document.
func Encode(w io.Writer, doc *domain.Document) error {
	bw := bufio.NewWriter(w)
	e := &encoder{w: bw}
	e.document(doc)
	if e.err != nil {
		return e.err
	}
	return bw.Flush()
}

type encoder struct {
	w   *bufio.Writer
	err error
}

func (e *encoder) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *encoder) document(doc *domain.Document) {
	version := doc.Version
	if version == "" {
		version = defaultVersion
	}
	e.printf("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<!DOCTYPE TS>\n")
	e.printf("<TS version=\"%s\"", protect(version))
	if doc.Language != "" {
		e.printf(" language=\"%s\"", protect(doc.Language))
	}
	if doc.SourceLanguage != "" {
		e.printf(" sourcelanguage=\"%s\"", protect(doc.SourceLanguage))
	}
	e.printf(">\n")
	for _, c := range doc.Contexts {
		e.context(c)
	}
	e.printf("</TS>\n")
}

func (e *encoder) context(c *domain.Context) {
	e.printf("<context>\n")
	e.printf("    <name>%s</name>\n", protect(c.Name))
	if c.Comment != "" {
		e.printf("    <comment>%s</comment>\n", protect(c.Comment))
	}
	for _, m := range c.Messages {
		e.message(m)
	}
	e.printf("</context>\n")
}

func (e *encoder) message(m *domain.Message) {
	e.printf("    <message")
	if m.ID != "" {
		e.printf(" id=\"%s\"", protect(m.ID))
	}
	if m.Numerus {
		e.printf(" numerus=\"yes\"")
	}
	e.printf(">\n")
	for _, l := range m.Locations {
		e.printf("        <location filename=\"%s\"", protect(l.File))
		if l.Line > 0 {
			e.printf(" line=\"%s\"", strconv.Itoa(l.Line))
		}
		e.printf("/>\n")
	}
	e.printf("        <source>%s</source>\n", protect(m.Source))
	if m.OldSource != "" {
		e.printf("        <oldsource>%s</oldsource>\n", protect(m.OldSource))
	}
	if m.Comment != "" {
		e.printf("        <comment>%s</comment>\n", protect(m.Comment))
	}
	if m.OldComment != "" {
		e.printf("        <oldcomment>%s</oldcomment>\n", protect(m.OldComment))
	}
	if m.ExtraComment != "" {
		e.printf("        <extracomment>%s</extracomment>\n", protect(m.ExtraComment))
	}
	if m.TranslatorComment != "" {
		e.printf("        <translatorcomment>%s</translatorcomment>\n", protect(m.TranslatorComment))
	}
	e.printf("        <translation")
	if m.Translation.Type != domain.TypeFinished {
		e.printf(" type=\"%s\"", string(m.Translation.Type))
	}
	if m.Numerus {
		e.printf(">\n")
		for _, f := range m.Translation.Forms {
			e.printf("            <numerusform>%s</numerusform>\n", protect(f))
		}
		e.printf("        </translation>\n")
	} else {
		e.printf(">%s</translation>\n", protect(m.Translation.Text))
	}
	e.printf("    </message>\n")
}

// protect escapes text the way lupdate does. Control characters other
// than tab and newline are not representable in XML 1.0 and become
// <byte value="xN"/> elements.
func protect(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&apos;")
		default:
			if r < 0x20 && r != '\n' && r != '\t' {
				fmt.Fprintf(&b, "<byte value=\"x%x\"/>", r)
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Package qtts reads Qt Linguist translation sources (.ts).
package qtts

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"linguist/internal/domain"
)

// maxDocumentSize bounds how much of a single .ts file is read.
const maxDocumentSize = 64 * 1024 * 1024

// SyntaxError reports a document that is not well-formed XML or is not a
// .ts document at all.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

// Decode parses a .ts document; a leading UTF-8 BOM is ignored. Locations
// with relative line numbers ("+3") are resolved against the previous
// location of the same file.
func Decode(r io.Reader) (*domain.Document, error) {
	br := bufio.NewReader(io.LimitReader(r, maxDocumentSize))
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	dec := xml.NewDecoder(br)
	dec.Strict = true
	dec.Entity = map[string]string{}
	d := &decoder{dec: dec, lastLine: map[string]int{}}
	return d.document()
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(data []byte) (*domain.Document, error) {
	return Decode(bytes.NewReader(data))
}

type decoder struct {
	dec      *xml.Decoder
	lastFile string
	lastLine map[string]int
}

func (d *decoder) line() int {
	l, _ := d.dec.InputPos()
	return l
}

func (d *decoder) token() (xml.Token, error) {
	tok, err := d.dec.Token()
	if err == nil {
		return tok, nil
	}
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		return nil, &SyntaxError{Line: se.Line, Msg: se.Msg}
	}
	if errors.Is(err, io.EOF) {
		return nil, &SyntaxError{Line: d.line(), Msg: "unexpected end of document"}
	}
	return nil, err
}

func (d *decoder) document() (*domain.Document, error) {
	for {
		tok, err := d.dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, &SyntaxError{Msg: "missing TS root element"}
		}
		if err != nil {
			var se *xml.SyntaxError
			if errors.As(err, &se) {
				return nil, &SyntaxError{Line: se.Line, Msg: se.Msg}
			}
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "TS" {
				return nil, &SyntaxError{Line: d.line(), Msg: fmt.Sprintf("root element is <%s>, want <TS>", t.Name.Local)}
			}
			doc, err := d.ts(t)
			if err != nil {
				return nil, err
			}
			if err := d.trailer(); err != nil {
				return nil, err
			}
			return doc, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return nil, &SyntaxError{Line: d.line(), Msg: "text before root element"}
			}
		}
	}
}

// trailer makes sure nothing but whitespace, comments and processing
// instructions follow the root element.
func (d *decoder) trailer() error {
	for {
		tok, err := d.dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var se *xml.SyntaxError
			if errors.As(err, &se) {
				return &SyntaxError{Line: se.Line, Msg: se.Msg}
			}
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return &SyntaxError{Line: d.line(), Msg: fmt.Sprintf("unexpected element <%s> after root", t.Name.Local)}
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return &SyntaxError{Line: d.line(), Msg: "text after root element"}
			}
		}
	}
}

func (d *decoder) ts(start xml.StartElement) (*domain.Document, error) {
	doc := &domain.Document{
		Version:        attr(start, "version"),
		Language:       attr(start, "language"),
		SourceLanguage: attr(start, "sourcelanguage"),
	}
	for {
		tok, err := d.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "context" {
				c, err := d.context(t)
				if err != nil {
					return nil, err
				}
				doc.Contexts = append(doc.Contexts, c)
				continue
			}
			if err := d.skip(); err != nil {
				return nil, err
			}
		case xml.EndElement:
			return doc, nil
		}
	}
}

func (d *decoder) context(start xml.StartElement) (*domain.Context, error) {
	c := &domain.Context{Line: d.line()}
	var pending []*domain.Message
	for {
		tok, err := d.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "name":
				if c.Name, err = d.text(); err != nil {
					return nil, err
				}
			case "comment":
				if c.Comment, err = d.text(); err != nil {
					return nil, err
				}
			case "message":
				m, err := d.message(t)
				if err != nil {
					return nil, err
				}
				pending = append(pending, m)
			default:
				if err := d.skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			// <name> is allowed to follow messages, so the context name is
			// assigned once the element is closed.
			for _, m := range pending {
				m.Context = c.Name
			}
			c.Messages = pending
			return c, nil
		}
	}
}

func (d *decoder) message(start xml.StartElement) (*domain.Message, error) {
	m := &domain.Message{
		ID:      attr(start, "id"),
		Numerus: attr(start, "numerus") == "yes",
		Line:    d.line(),
	}
	for {
		tok, err := d.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "location":
				m.Locations = append(m.Locations, d.location(t))
				if err := d.skip(); err != nil {
					return nil, err
				}
			case "source":
				m.Source, err = d.text()
			case "oldsource":
				m.OldSource, err = d.text()
			case "comment":
				m.Comment, err = d.text()
			case "oldcomment":
				m.OldComment, err = d.text()
			case "extracomment":
				m.ExtraComment, err = d.text()
			case "translatorcomment":
				m.TranslatorComment, err = d.text()
			case "translation":
				m.Translation, err = d.translation(t)
			default:
				err = d.skip()
			}
			if err != nil {
				return nil, err
			}
		case xml.EndElement:
			return m, nil
		}
	}
}

func (d *decoder) location(start xml.StartElement) domain.Location {
	file := attr(start, "filename")
	if file == "" {
		file = d.lastFile
	}
	d.lastFile = file
	raw := strings.TrimSpace(attr(start, "line"))
	var line int
	switch {
	case raw == "":
	case strings.HasPrefix(raw, "+") || strings.HasPrefix(raw, "-"):
		delta, err := strconv.Atoi(raw)
		if err == nil {
			line = d.lastLine[file] + delta
		}
	default:
		line, _ = strconv.Atoi(raw)
	}
	if line < 0 {
		line = 0
	}
	if line > 0 {
		d.lastLine[file] = line
	}
	return domain.Location{File: file, Line: line}
}

func (d *decoder) translation(start xml.StartElement) (domain.MessageTranslation, error) {
	tr := domain.MessageTranslation{
		Type:     domain.MessageType(attr(start, "type")),
		Variants: attr(start, "variants") == "yes",
	}
	var text strings.Builder
	variant, hasVariant := "", false
	for {
		tok, err := d.token()
		if err != nil {
			return tr, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			switch t.Name.Local {
			case "numerusform":
				f, err := d.text()
				if err != nil {
					return tr, err
				}
				tr.Forms = append(tr.Forms, f)
			case "lengthvariant":
				v, err := d.text()
				if err != nil {
					return tr, err
				}
				if !hasVariant {
					variant, hasVariant = v, true
				}
			case "byte":
				text.WriteString(byteValue(t))
				if err := d.skip(); err != nil {
					return tr, err
				}
			default:
				if err := d.skip(); err != nil {
					return tr, err
				}
			}
		case xml.EndElement:
			switch {
			case hasVariant:
				tr.Text = variant
			case len(tr.Forms) > 0:
				tr.Text = tr.Forms[0]
			default:
				tr.Text = text.String()
			}
			return tr, nil
		}
	}
}

// text collects character data up to the end of the current element. Qt
// encodes control characters as <byte value="x1"/>. A <lengthvariant> child
// replaces the text with the first variant.
func (d *decoder) text() (string, error) {
	var b strings.Builder
	variant, hasVariant := "", false
	for {
		tok, err := d.token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			switch t.Name.Local {
			case "byte":
				b.WriteString(byteValue(t))
				if err := d.skip(); err != nil {
					return "", err
				}
			case "lengthvariant":
				v, err := d.text()
				if err != nil {
					return "", err
				}
				if !hasVariant {
					variant, hasVariant = v, true
				}
			default:
				if err := d.skip(); err != nil {
					return "", err
				}
			}
		case xml.EndElement:
			if hasVariant {
				return variant, nil
			}
			return b.String(), nil
		}
	}
}

func (d *decoder) skip() error {
	if err := d.dec.Skip(); err != nil {
		var se *xml.SyntaxError
		if errors.As(err, &se) {
			return &SyntaxError{Line: se.Line, Msg: se.Msg}
		}
		if errors.Is(err, io.EOF) {
			return &SyntaxError{Line: d.line(), Msg: "unexpected end of document"}
		}
		return err
	}
	return nil
}

func byteValue(se xml.StartElement) string {
	v := strings.TrimSpace(attr(se, "value"))
	var n int64
	var err error
	if strings.HasPrefix(v, "x") {
		n, err = strconv.ParseInt(v[1:], 16, 32)
	} else {
		n, err = strconv.ParseInt(v, 10, 32)
	}
	if err != nil || n < 0 {
		return ""
	}
	return string(rune(n))
}

func attr(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

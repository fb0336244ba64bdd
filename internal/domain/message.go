package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// MessageType is the value of the .ts translation "type" attribute. The
// finished type is written as no attribute at all.
type MessageType string

const (
	TypeFinished   MessageType = ""
	TypeUnfinished MessageType = "unfinished"
	TypeObsolete   MessageType = "obsolete"
	TypeVanished   MessageType = "vanished"
)

// Location points at the source line that displays a message. It is
// advisory: nothing requires it to resolve.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line,omitempty"`
}

type MessageTranslation struct {
	Text     string
	Forms    []string
	Type     MessageType
	Variants bool
}

// Message is one translation entry as it appears in a .ts document.
type Message struct {
	ID                string
	Context           string
	Source            string
	OldSource         string
	Comment           string
	OldComment        string
	ExtraComment      string
	TranslatorComment string
	Numerus           bool
	Locations         []Location
	Translation       MessageTranslation
	// Line is where the <message> element starts, 0 when unknown.
	Line int
}

// Key returns the storage identity of the message.
func (m *Message) Key() string { return MessageKey(m.Context, m.Source, m.Comment) }

// Active reports whether the message is still referenced by the sources.
func (m *Message) Active() bool {
	return m.Translation.Type != TypeObsolete && m.Translation.Type != TypeVanished
}

// Text returns the singular translation text.
func (m *Message) Text() string {
	if m.Numerus && len(m.Translation.Forms) > 0 {
		return m.Translation.Forms[0]
	}
	return m.Translation.Text
}

// Translated reports whether any translation text is present.
func (m *Message) Translated() bool {
	if m.Numerus {
		for _, f := range m.Translation.Forms {
			if f != "" {
				return true
			}
		}
		return false
	}
	return m.Translation.Text != ""
}

type Context struct {
	Name     string
	Comment  string
	Messages []*Message
	Line     int
}

// Document is a parsed .ts file.
type Document struct {
	Version        string
	Language       string
	SourceLanguage string
	Contexts       []*Context
}

// Messages returns every message of every context in document order.
func (d *Document) Messages() []*Message {
	n := 0
	for _, c := range d.Contexts {
		n += len(c.Messages)
	}
	out := make([]*Message, 0, n)
	for _, c := range d.Contexts {
		out = append(out, c.Messages...)
	}
	return out
}

// Context returns the named context, creating it at the end when absent.
func (d *Document) Context(name string) *Context {
	for _, c := range d.Contexts {
		if c.Name == name {
			return c
		}
	}
	c := &Context{Name: name}
	d.Contexts = append(d.Contexts, c)
	return c
}

// MessageKey derives a stable key from a message identity. Qt identifies a
// message by context, source text and disambiguation comment.
func MessageKey(context, source, comment string) string {
	h := sha256.Sum256([]byte(context + "\x00" + source + "\x00" + comment))
	return "k" + hex.EncodeToString(h[:8])
}

// NormalizeLocale turns Qt style locale names (sr_RS) into BCP 47 form
// (sr-RS). It does not validate.
func NormalizeLocale(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "_", "-")
}

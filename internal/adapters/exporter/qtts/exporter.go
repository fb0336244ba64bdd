package qtts

import (
	"bytes"
	"strings"

	"linguist/internal/domain"
	"linguist/internal/ports"
)

type Exporter struct{}

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Format() string { return "ts" }

func (e *Exporter) Export(meta ports.ExportMeta, items []ports.ExportItem) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, ToDocument(meta, items)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToDocument groups items by context in first-seen order. Items without a
// translation are written as unfinished.
func ToDocument(meta ports.ExportMeta, items []ports.ExportItem) *domain.Document {
	doc := &domain.Document{
		Language:       qtLocale(meta.Language),
		SourceLanguage: qtLocale(meta.SourceLanguage),
	}
	for _, it := range items {
		c := doc.Context(it.Context)
		if c.Comment == "" {
			c.Comment = it.Metadata.ContextComment
		}
		m := &domain.Message{
			ID:                it.Metadata.ID,
			Context:           it.Context,
			Source:            it.SourceText,
			OldSource:         it.Metadata.OldSource,
			Comment:           it.Comment,
			OldComment:        it.Metadata.OldComment,
			ExtraComment:      it.Metadata.ExtraComment,
			TranslatorComment: it.Metadata.TranslatorComment,
			Numerus:           it.Numerus,
			Locations:         it.Metadata.Locations,
			Translation: domain.MessageTranslation{
				Text: it.Translation,
				Type: domain.TranslationType(it.Status),
			},
		}
		if it.Numerus {
			m.Translation.Forms = it.Forms
			if len(m.Translation.Forms) == 0 && it.Translation != "" {
				m.Translation.Forms = []string{it.Translation}
			}
		}
		if it.Status == "" && !m.Translated() {
			m.Translation.Type = domain.TypeUnfinished
		}
		c.Messages = append(c.Messages, m)
	}
	return doc
}

func qtLocale(tag string) string {
	return strings.ReplaceAll(tag, "-", "_")
}

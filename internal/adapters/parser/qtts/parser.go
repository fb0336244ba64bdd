package qtts

import (
	"linguist/internal/domain"
	"linguist/internal/ports"
)

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) Format() string { return "ts" }

func (p *Parser) Parse(data []byte) (ports.ParseResult, error) {
	doc, err := DecodeBytes(data)
	if err != nil {
		return ports.ParseResult{}, err
	}
	return FromDocument(doc), nil
}

// FromDocument flattens a document into storable units and the
// translations it carries for its own language. A message seen twice keeps
// its first occurrence.
func FromDocument(doc *domain.Document) ports.ParseResult {
	res := ports.ParseResult{
		Locale:       domain.NormalizeLocale(doc.Language),
		SourceLocale: domain.NormalizeLocale(doc.SourceLanguage),
		Translations: map[string]*domain.Translation{},
	}
	seen := map[string]struct{}{}
	for _, c := range doc.Contexts {
		for _, m := range c.Messages {
			key := m.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			u := &domain.Unit{
				Key:        key,
				Context:    m.Context,
				SourceText: m.Source,
				Comment:    m.Comment,
				Numerus:    m.Numerus,
			}
			u.SetMetadata(domain.UnitMetadata{
				ID:                m.ID,
				Locations:         m.Locations,
				ExtraComment:      m.ExtraComment,
				TranslatorComment: m.TranslatorComment,
				OldSource:         m.OldSource,
				OldComment:        m.OldComment,
				ContextComment:    c.Comment,
			})
			res.Units = append(res.Units, u)
			if !m.Translated() && m.Translation.Type != domain.TypeObsolete && m.Translation.Type != domain.TypeVanished {
				continue
			}
			t := &domain.Translation{
				Locale: res.Locale,
				Text:   m.Text(),
				Status: domain.StatusFromType(m.Translation.Type),
			}
			if m.Numerus {
				t.Forms = append([]string(nil), m.Translation.Forms...)
			}
			res.Translations[key] = t
		}
	}
	return res
}

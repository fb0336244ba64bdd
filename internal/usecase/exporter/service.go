package exporter

import (
	"context"
	"fmt"

	exreg "linguist/internal/adapters/exporter/registry"
	"linguist/internal/domain"
	"linguist/internal/ports"
)

type Service struct {
	Files    ports.FileRepository
	Units    ports.UnitRepository
	Trans    ports.TranslationRepository
	Projects ports.ProjectRepository
	Reg      *exreg.Registry
}

func New(files ports.FileRepository, units ports.UnitRepository, trans ports.TranslationRepository, projects ports.ProjectRepository, reg *exreg.Registry) *Service {
	return &Service{Files: files, Units: units, Trans: trans, Projects: projects, Reg: reg}
}

type ExportArgs struct {
	FileID int64
	Locale string
	// Fallback fills untranslated entries with the source text.
	Fallback       bool
	OverrideFormat string
	// LanguageName replaces the locale in headers, e.g. "serbian" for VDF.
	LanguageName string
}

type ExportResult struct {
	Filename string
	Format   string
	Content  []byte
	Items    int
}

func (s *Service) ExportFile(ctx context.Context, a ExportArgs) (ExportResult, error) {
	f, err := s.Files.Get(ctx, a.FileID)
	if err != nil {
		return ExportResult{}, fmt.Errorf("file %d: %w", a.FileID, err)
	}
	format := f.Format
	if a.OverrideFormat != "" {
		format = a.OverrideFormat
	}
	exp, ok := s.Reg.Get(format)
	if !ok {
		return ExportResult{}, fmt.Errorf("%s: %w", format, domain.ErrUnsupportedFormat)
	}
	locale := domain.NormalizeLocale(a.Locale)
	if locale == "" {
		locale = f.Locale
	}
	units, err := s.Units.ListByFile(ctx, f.ID)
	if err != nil {
		return ExportResult{}, err
	}
	trList, err := s.Trans.ListByFileLocale(ctx, f.ID, locale)
	if err != nil {
		return ExportResult{}, err
	}
	trByUnit := make(map[int64]*domain.Translation, len(trList))
	for _, t := range trList {
		trByUnit[t.UnitID] = t
	}
	items := make([]ports.ExportItem, 0, len(units))
	for _, u := range units {
		it := ports.ExportItem{
			Key:        u.Key,
			Context:    u.Context,
			SourceText: u.SourceText,
			Comment:    u.Comment,
			Numerus:    u.Numerus,
			Metadata:   u.Metadata(),
		}
		if t, ok := trByUnit[u.ID]; ok {
			it.Translation = t.Text
			it.Forms = t.Forms
			it.Status = t.Status
		}
		if a.Fallback && it.Translation == "" && len(it.Forms) == 0 {
			it.Translation = u.SourceText
			if it.Status == "" {
				it.Status = domain.StatusUnfinished
			}
		}
		items = append(items, it)
	}
	meta := ports.ExportMeta{Language: locale}
	if a.LanguageName != "" {
		meta.Language = a.LanguageName
	}
	if s.Projects != nil {
		if p, err := s.Projects.Get(ctx, f.ProjectID); err == nil {
			meta.SourceLanguage = p.SourceLang
		}
	}
	content, err := exp.Export(meta, items)
	if err != nil {
		return ExportResult{}, fmt.Errorf("export %s: %w", format, err)
	}
	return ExportResult{Filename: f.Path, Format: format, Content: content, Items: len(items)}, nil
}

// ItemsFromParse turns a parse result straight into export items, for
// converting between formats without a database.
func ItemsFromParse(pr ports.ParseResult) []ports.ExportItem {
	items := make([]ports.ExportItem, 0, len(pr.Units))
	for _, u := range pr.Units {
		it := ports.ExportItem{
			Key:        u.Key,
			Context:    u.Context,
			SourceText: u.SourceText,
			Comment:    u.Comment,
			Numerus:    u.Numerus,
			Metadata:   u.Metadata(),
		}
		if t, ok := pr.Translations[u.Key]; ok {
			it.Translation = t.Text
			it.Forms = t.Forms
			it.Status = t.Status
		}
		items = append(items, it)
	}
	return items
}

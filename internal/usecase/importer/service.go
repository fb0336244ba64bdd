package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	parreg "linguist/internal/adapters/parser/registry"
	"linguist/internal/domain"
	xlog "linguist/internal/log"
	"linguist/internal/ports"
)

type Service struct {
	Files          ports.FileRepository
	Units          ports.UnitRepository
	Translations   ports.TranslationRepository
	Projects       ports.ProjectRepository
	ParserRegistry *parreg.Registry
}

func New(files ports.FileRepository, units ports.UnitRepository, trans ports.TranslationRepository, projects ports.ProjectRepository, reg *parreg.Registry) *Service {
	return &Service{Files: files, Units: units, Translations: trans, Projects: projects, ParserRegistry: reg}
}

type ImportArgs struct {
	ProjectID int64
	Filename  string
	// Format defaults to detection by file extension.
	Format string
	// Locale overrides the language declared by the file.
	Locale  string
	Content []byte
}

type ImportResult struct {
	FileID       int64
	Units        int
	Translations int
	Locale       string
	Unchanged    bool
}

// Import stores a catalog. Importing the same path again updates the
// existing file instead of adding a new one.
func (s *Service) Import(ctx context.Context, in ImportArgs) (ImportResult, error) {
	logger := xlog.FromContext(ctx).With().Str("component", "importer").Str("file", in.Filename).Logger()
	format := in.Format
	if format == "" {
		var ok bool
		if format, ok = parreg.Detect(in.Filename); !ok {
			return ImportResult{}, fmt.Errorf("%s: %w", in.Filename, domain.ErrUnsupportedFormat)
		}
	}
	parser, ok := s.ParserRegistry.Get(format)
	if !ok {
		return ImportResult{}, fmt.Errorf("%s: %w", format, domain.ErrUnsupportedFormat)
	}
	pr, err := parser.Parse(in.Content)
	if err != nil {
		return ImportResult{}, fmt.Errorf("parse %s: %w", in.Filename, err)
	}
	locale := domain.NormalizeLocale(in.Locale)
	if locale == "" {
		locale = pr.Locale
	}
	sum := sha256.Sum256(in.Content)
	hash := hex.EncodeToString(sum[:])

	f, err := s.Files.FindByPath(ctx, in.ProjectID, in.Filename)
	if err != nil {
		return ImportResult{}, err
	}
	res := ImportResult{Locale: locale}
	if f == nil {
		f = &domain.File{ProjectID: in.ProjectID, Path: in.Filename, Format: format, Locale: locale, Hash: hash}
		if err := s.Files.Create(ctx, f); err != nil {
			return ImportResult{}, fmt.Errorf("create file: %w", err)
		}
	} else {
		res.Unchanged = f.Hash == hash
		if err := s.Files.UpdateHash(ctx, f.ID, hash, locale); err != nil {
			return ImportResult{}, fmt.Errorf("update file: %w", err)
		}
	}
	res.FileID = f.ID

	for _, u := range pr.Units {
		u.FileID = f.ID
	}
	if err := s.Units.UpsertBatch(ctx, pr.Units); err != nil {
		return ImportResult{}, fmt.Errorf("store units: %w", err)
	}
	res.Units = len(pr.Units)

	if len(pr.Translations) > 0 {
		if locale == "" {
			logger.Warn().Str("event", "import.no_locale").Int("translations", len(pr.Translations)).Msg("file carries translations but no locale; skipping them")
		} else if s.Translations != nil {
			n, err := s.storeTranslations(ctx, f.ID, locale, pr.Translations)
			if err != nil {
				return ImportResult{}, err
			}
			res.Translations = n
		}
	}
	if locale != "" && s.Projects != nil {
		if err := s.Projects.AddLocale(ctx, &domain.ProjectLocale{ProjectID: in.ProjectID, Locale: locale}); err != nil {
			return ImportResult{}, fmt.Errorf("add project locale: %w", err)
		}
	}
	logger.Info().
		Str("event", "import.done").
		Int64("file_id", res.FileID).
		Int("units", res.Units).
		Int("translations", res.Translations).
		Bool("unchanged", res.Unchanged).
		Msg("catalog imported")
	return res, nil
}

func (s *Service) storeTranslations(ctx context.Context, fileID int64, locale string, byKey map[string]*domain.Translation) (int, error) {
	units, err := s.Units.ListByFile(ctx, fileID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, u := range units {
		t, ok := byKey[u.Key]
		if !ok {
			continue
		}
		t.UnitID = u.ID
		t.Locale = locale
		if err := s.Translations.Upsert(ctx, t); err != nil {
			return n, fmt.Errorf("store translation %s: %w", u.Key, err)
		}
		n++
	}
	return n, nil
}

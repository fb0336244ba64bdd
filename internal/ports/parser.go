package ports

import (
	"linguist/internal/domain"
)

type ParseResult struct {
	Units []*domain.Unit
	// Translations holds texts carried by the file, keyed by unit key.
	Translations map[string]*domain.Translation
	Locale       string // optional, if detected from file
	SourceLocale string // optional
}

type Parser interface {
	Format() string
	Parse(data []byte) (ParseResult, error)
}

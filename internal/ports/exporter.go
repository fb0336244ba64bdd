package ports

import "linguist/internal/domain"

type ExportItem struct {
	Key         string
	Context     string
	SourceText  string
	Comment     string
	Numerus     bool
	Translation string
	Forms       []string
	Status      string
	Metadata    domain.UnitMetadata
}

// ExportMeta describes the catalog as a whole.
type ExportMeta struct {
	Language       string
	SourceLanguage string
}

type Exporter interface {
	Format() string
	Export(meta ExportMeta, items []ExportItem) ([]byte, error)
}

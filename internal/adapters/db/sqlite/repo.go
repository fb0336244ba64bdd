package sqlite

import (
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Repo provides a base for Squirrel-based repositories.
type Repo struct {
	DB *sql.DB
	SQ sq.StatementBuilderType
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db, SQ: sq.StatementBuilder}
}

// Repos bundles every repository over one database handle.
type Repos struct {
	Projects     *ProjectRepo
	Files        *FileRepo
	Units        *UnitRepo
	Translations *TranslationRepo
	Providers    *ProviderRepo
	Templates    *TemplateRepo
	Cache        *CacheRepo
	Settings     *SettingsRepo
	Jobs         *JobRepo
}

func NewRepos(db *sql.DB) *Repos {
	return &Repos{
		Projects:     NewProjectRepo(db),
		Files:        NewFileRepo(db),
		Units:        NewUnitRepo(db),
		Translations: NewTranslationRepo(db),
		Providers:    NewProviderRepo(db),
		Templates:    NewTemplateRepo(db),
		Cache:        NewCacheRepo(db),
		Settings:     NewSettingsRepo(db),
		Jobs:         NewJobRepo(db),
	}
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

package ports

import (
	"context"

	"linguist/internal/domain"
)

// Lookups by id return domain.ErrNotFound for a missing row. Lookups by
// natural key (path, unit and locale, cache identity) return nil, nil.

// ProjectRepository stores projects and the locales their catalogs target.
type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	Get(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	// Delete removes the project with its files, units and translations.
	Delete(ctx context.Context, id int64) error
	// AddLocale is a no-op when the locale is already recorded.
	AddLocale(ctx context.Context, pl *domain.ProjectLocale) error
	ListLocales(ctx context.Context, projectID int64) ([]*domain.ProjectLocale, error)
}

// FileRepository stores imported catalogs.
type FileRepository interface {
	Create(ctx context.Context, f *domain.File) error
	Get(ctx context.Context, id int64) (*domain.File, error)
	FindByPath(ctx context.Context, projectID int64, path string) (*domain.File, error)
	UpdateHash(ctx context.Context, id int64, hash, locale string) error
	ListByProject(ctx context.Context, projectID int64) ([]*domain.File, error)
	Delete(ctx context.Context, id int64) error
}

// UnitRepository stores the source side of messages, unique per file and
// key.
type UnitRepository interface {
	// UpsertBatch keeps the id of units that already exist.
	UpsertBatch(ctx context.Context, units []*domain.Unit) error
	// ListByFile returns units in import order.
	ListByFile(ctx context.Context, fileID int64) ([]*domain.Unit, error)
	Get(ctx context.Context, id int64) (*domain.Unit, error)
}

// TranslationRepository stores one translation per unit and locale.
type TranslationRepository interface {
	Upsert(ctx context.Context, t *domain.Translation) error
	Get(ctx context.Context, unitID int64, locale string) (*domain.Translation, error)
	ListByFileLocale(ctx context.Context, fileID int64, locale string) ([]*domain.Translation, error)
}

type ProviderRepository interface {
	Create(ctx context.Context, p *domain.Provider) error
	Update(ctx context.Context, p *domain.Provider) error
	Get(ctx context.Context, id int64) (*domain.Provider, error)
	List(ctx context.Context) ([]*domain.Provider, error)
	Delete(ctx context.Context, id int64) error
	// SaveModelCache replaces the cached model list of a provider.
	SaveModelCache(ctx context.Context, providerID int64, names []string) error
	ListModelCache(ctx context.Context, providerID int64) ([]*domain.ProviderModel, error)
}

// JobRepository records translation jobs, their items and log lines.
type JobRepository interface {
	Create(ctx context.Context, j *domain.Job) (int64, error)
	UpdateProgress(ctx context.Context, jobID int64, done, total int, status string) error
	AddItem(ctx context.Context, ji *domain.JobItem) (int64, error)
	UpdateItem(ctx context.Context, itemID int64, status, errMsg string) error
	AddLog(ctx context.Context, jl *domain.JobLog) error
	Get(ctx context.Context, jobID int64) (*domain.Job, error)
	// List returns the newest jobs first.
	List(ctx context.Context, limit int) ([]*domain.Job, error)
	ListItems(ctx context.Context, jobID int64) ([]*domain.JobItem, error)
	ListLogs(ctx context.Context, jobID int64, limit int) ([]*domain.JobLog, error)
	Delete(ctx context.Context, jobID int64) error
}

// TemplateRepository stores prompt template overrides.
type TemplateRepository interface {
	// GetEffective falls back from the scoped template to the global one
	// and returns nil when neither is stored.
	GetEffective(ctx context.Context, scope string, refID *int64, typ, role string) (*domain.Template, error)
	Upsert(ctx context.Context, t *domain.Template) error
}

// CacheRepository memoises provider output.
type CacheRepository interface {
	Get(ctx context.Context, src, srcLang, tgtLang, provider, model string) (*domain.CacheEntry, error)
	Put(ctx context.Context, entry *domain.CacheEntry) error
}

// SettingsRepository is a string key/value store; Get returns
// domain.ErrNotFound for an unset key.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"linguist/internal/domain"
)

// CacheRepo remembers provider output. An entry is identified by the
// masked source text (with its numerus marker), the language pair, the
// provider type and the model, so switching any of them misses.
type CacheRepo struct{ *Repo }

func NewCacheRepo(db *sql.DB) *CacheRepo { return &CacheRepo{NewRepo(db)} }

var cacheColumns = []string{"id", "source_text", "src_lang", "tgt_lang", "provider", "model", "translation", "created_at"}

func cacheIdentity(src, srcLang, tgtLang, provider, model string) sq.Eq {
	return sq.Eq{"source_text": src, "src_lang": srcLang, "tgt_lang": tgtLang, "provider": provider, "model": model}
}

// Get returns nil without error on a miss.
func (r *CacheRepo) Get(ctx context.Context, src, srcLang, tgtLang, provider, model string) (*domain.CacheEntry, error) {
	sqlStr, args, _ := r.SQ.Select(cacheColumns...).From("cache").
		Where(cacheIdentity(src, srcLang, tgtLang, provider, model)).
		Limit(1).ToSql()
	var (
		e       domain.CacheEntry
		created string
	)
	err := r.DB.QueryRowContext(ctx, sqlStr, args...).
		Scan(&e.ID, &e.SourceText, &e.SrcLang, &e.TgtLang, &e.Provider, &e.Model, &e.Translation, &created)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, err
	}
	e.CreatedAt = parseTime(created)
	return &e, nil
}

// Put stores or refreshes an entry.
func (r *CacheRepo) Put(ctx context.Context, e *domain.CacheEntry) error {
	sqlStr, args, _ := r.SQ.Insert("cache").
		Columns(cacheColumns[1:]...).
		Values(e.SourceText, e.SrcLang, e.TgtLang, e.Provider, e.Model, e.Translation, now()).
		Suffix("ON CONFLICT(source_text, src_lang, tgt_lang, provider, model) DO UPDATE SET translation = excluded.translation, created_at = excluded.created_at").
		ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

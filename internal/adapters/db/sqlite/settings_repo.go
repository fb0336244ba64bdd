package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"linguist/internal/domain"

	sq "github.com/Masterminds/squirrel"
)

type SettingsRepo struct{ *Repo }

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{NewRepo(db)} }

// Get returns domain.ErrNotFound for a key that was never set.
func (r *SettingsRepo) Get(ctx context.Context, key string) (string, error) {
	sqlStr, args, _ := r.SQ.Select("value").From("settings").Where(sq.Eq{"key": key}).ToSql()
	var v string
	err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	return v, err
}

func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	q := r.SQ.Insert("settings").Columns("key", "value").Values(key, value).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value")
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"linguist/internal/domain"

	sq "github.com/Masterminds/squirrel"
)

type TemplateRepo struct{ *Repo }

func NewTemplateRepo(db *sql.DB) *TemplateRepo { return &TemplateRepo{NewRepo(db)} }

// GetEffective returns the most specific stored template: the given
// provider or project scope first, then global. It returns nil when the
// caller should fall back to the builtin body.
func (r *TemplateRepo) GetEffective(ctx context.Context, scope string, refID *int64, typ, role string) (*domain.Template, error) {
	if (scope == domain.ScopeProvider || scope == domain.ScopeProject) && refID != nil {
		t, err := r.getOne(ctx, scope, refID, typ, role)
		if err != nil || t != nil {
			return t, err
		}
	}
	return r.getOne(ctx, domain.ScopeGlobal, nil, typ, role)
}

func (r *TemplateRepo) getOne(ctx context.Context, scope string, refID *int64, typ, role string) (*domain.Template, error) {
	b := r.SQ.Select("id", "scope", "ref_id", "type", "role", "body", "is_default", "updated_at").From("templates").
		Where(sq.Eq{"scope": scope, "type": typ, "role": role}).
		OrderBy("id DESC").Limit(1)
	if refID != nil {
		b = b.Where(sq.Eq{"ref_id": *refID})
	} else {
		b = b.Where("ref_id IS NULL")
	}
	sqlStr, args, _ := b.ToSql()
	var t domain.Template
	var ref sql.NullInt64
	var updated string
	err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&t.ID, &t.Scope, &ref, &t.Type, &t.Role, &t.Body, &t.IsDefault, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if ref.Valid {
		v := ref.Int64
		t.RefID = &v
	}
	t.UpdatedAt = parseTime(updated)
	return &t, nil
}

// Upsert stores a new revision; GetEffective always reads the latest one.
func (r *TemplateRepo) Upsert(ctx context.Context, t *domain.Template) error {
	ts := now()
	q := r.SQ.Insert("templates").Columns("scope", "ref_id", "type", "role", "body", "is_default", "updated_at").
		Values(t.Scope, t.RefID, t.Type, t.Role, t.Body, t.IsDefault, ts)
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	t.ID, _ = res.LastInsertId()
	t.UpdatedAt = parseTime(ts)
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"linguist/internal/domain"

	sq "github.com/Masterminds/squirrel"
)

type ProjectRepo struct{ *Repo }

func NewProjectRepo(db *sql.DB) *ProjectRepo { return &ProjectRepo{NewRepo(db)} }

var projectColumns = []string{"id", "name", "source_lang", "created_at", "updated_at"}

func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	ts := now()
	q := r.SQ.Insert("projects").Columns("name", "source_lang", "created_at", "updated_at").
		Values(p.Name, p.SourceLang, ts, ts)
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	p.ID, _ = res.LastInsertId()
	p.CreatedAt = parseTime(ts)
	p.UpdatedAt = p.CreatedAt
	return nil
}

func scanProject(row interface{ Scan(...any) error }) (*domain.Project, error) {
	var p domain.Project
	var created, updated string
	if err := row.Scan(&p.ID, &p.Name, &p.SourceLang, &created, &updated); err != nil {
		return nil, err
	}
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	return &p, nil
}

func (r *ProjectRepo) Get(ctx context.Context, id int64) (*domain.Project, error) {
	q := r.SQ.Select(projectColumns...).From("projects").Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	p, err := scanProject(r.DB.QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

func (r *ProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	q := r.SQ.Select(projectColumns...).From("projects").OrderBy("id DESC")
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	ts := now()
	q := r.SQ.Update("projects").Set("name", p.Name).Set("source_lang", p.SourceLang).Set("updated_at", ts).
		Where(sq.Eq{"id": p.ID})
	sqlStr, args, _ := q.ToSql()
	if _, err := r.DB.ExecContext(ctx, sqlStr, args...); err != nil {
		return err
	}
	p.UpdatedAt = parseTime(ts)
	return nil
}

func (r *ProjectRepo) Delete(ctx context.Context, id int64) error {
	q := r.SQ.Delete("projects").Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

// AddLocale registers a target locale; adding it twice is a no-op.
func (r *ProjectRepo) AddLocale(ctx context.Context, pl *domain.ProjectLocale) error {
	ts := now()
	q := r.SQ.Insert("project_locales").Columns("project_id", "locale", "created_at").
		Values(pl.ProjectID, pl.Locale, ts).
		Suffix("ON CONFLICT(project_id, locale) DO NOTHING")
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	pl.ID, _ = res.LastInsertId()
	pl.CreatedAt = parseTime(ts)
	return nil
}

func (r *ProjectRepo) ListLocales(ctx context.Context, projectID int64) ([]*domain.ProjectLocale, error) {
	q := r.SQ.Select("id", "project_id", "locale", "created_at").From("project_locales").
		Where(sq.Eq{"project_id": projectID}).OrderBy("locale")
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.ProjectLocale
	for rows.Next() {
		var pl domain.ProjectLocale
		var created string
		if err := rows.Scan(&pl.ID, &pl.ProjectID, &pl.Locale, &created); err != nil {
			return nil, err
		}
		pl.CreatedAt = parseTime(created)
		out = append(out, &pl)
	}
	return out, rows.Err()
}

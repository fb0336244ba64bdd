package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"linguist/internal/domain"

	sq "github.com/Masterminds/squirrel"
)

// unitBatchSize keeps multi-row inserts well below SQLite's bound
// parameter limit.
const unitBatchSize = 200

type FileRepo struct{ *Repo }
type UnitRepo struct{ *Repo }

func NewFileRepo(db *sql.DB) *FileRepo { return &FileRepo{NewRepo(db)} }
func NewUnitRepo(db *sql.DB) *UnitRepo { return &UnitRepo{NewRepo(db)} }

var fileColumns = []string{"id", "project_id", "path", "format", "locale", "hash", "created_at"}

func (r *FileRepo) Create(ctx context.Context, f *domain.File) error {
	ts := now()
	q := r.SQ.Insert("files").Columns("project_id", "path", "format", "locale", "hash", "created_at").
		Values(f.ProjectID, f.Path, f.Format, f.Locale, f.Hash, ts)
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	f.ID, _ = res.LastInsertId()
	f.CreatedAt = parseTime(ts)
	return nil
}

func (r *FileRepo) scan(row interface{ Scan(...any) error }) (*domain.File, error) {
	var f domain.File
	var created string
	if err := row.Scan(&f.ID, &f.ProjectID, &f.Path, &f.Format, &f.Locale, &f.Hash, &created); err != nil {
		return nil, err
	}
	f.CreatedAt = parseTime(created)
	return &f, nil
}

func (r *FileRepo) Get(ctx context.Context, id int64) (*domain.File, error) {
	q := r.SQ.Select(fileColumns...).From("files").Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	f, err := r.scan(r.DB.QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return f, err
}

// FindByPath returns the file imported from path into the project, or nil.
func (r *FileRepo) FindByPath(ctx context.Context, projectID int64, path string) (*domain.File, error) {
	q := r.SQ.Select(fileColumns...).From("files").Where(sq.Eq{"project_id": projectID, "path": path}).Limit(1)
	sqlStr, args, _ := q.ToSql()
	f, err := r.scan(r.DB.QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

func (r *FileRepo) UpdateHash(ctx context.Context, id int64, hash, locale string) error {
	q := r.SQ.Update("files").Set("hash", hash).Set("locale", locale).Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *FileRepo) ListByProject(ctx context.Context, projectID int64) ([]*domain.File, error) {
	q := r.SQ.Select(fileColumns...).From("files").Where(sq.Eq{"project_id": projectID}).OrderBy("id DESC")
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.File
	for rows.Next() {
		f, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *FileRepo) Delete(ctx context.Context, id int64) error {
	q := r.SQ.Delete("files").Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

var unitColumns = []string{"id", "file_id", "key", "context", "source_text", "comment", "numerus", "metadata_json", "created_at"}

// UpsertBatch inserts units in chunks; existing (file_id, key) rows keep
// their id and get the new source side.
func (r *UnitRepo) UpsertBatch(ctx context.Context, units []*domain.Unit) error {
	for start := 0; start < len(units); start += unitBatchSize {
		end := start + unitBatchSize
		if end > len(units) {
			end = len(units)
		}
		ib := r.SQ.Insert("units").Columns("file_id", "key", "context", "source_text", "comment", "numerus", "metadata_json")
		for _, u := range units[start:end] {
			ib = ib.Values(u.FileID, u.Key, u.Context, u.SourceText, u.Comment, u.Numerus, u.MetadataRaw)
		}
		sqlStr, args, _ := ib.Suffix("ON CONFLICT(file_id, key) DO UPDATE SET context=excluded.context, source_text=excluded.source_text, comment=excluded.comment, numerus=excluded.numerus, metadata_json=excluded.metadata_json").ToSql()
		if _, err := r.DB.ExecContext(ctx, sqlStr, args...); err != nil {
			return err
		}
	}
	return nil
}

func (r *UnitRepo) scan(row interface{ Scan(...any) error }) (*domain.Unit, error) {
	var u domain.Unit
	var created string
	if err := row.Scan(&u.ID, &u.FileID, &u.Key, &u.Context, &u.SourceText, &u.Comment, &u.Numerus, &u.MetadataRaw, &created); err != nil {
		return nil, err
	}
	u.CreatedAt = parseTime(created)
	return &u, nil
}

// ListByFile returns the units of a file in import order.
func (r *UnitRepo) ListByFile(ctx context.Context, fileID int64) ([]*domain.Unit, error) {
	q := r.SQ.Select(unitColumns...).From("units").Where(sq.Eq{"file_id": fileID}).OrderBy("id")
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Unit
	for rows.Next() {
		u, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UnitRepo) Get(ctx context.Context, id int64) (*domain.Unit, error) {
	q := r.SQ.Select(unitColumns...).From("units").Where(sq.Eq{"id": id}).Limit(1)
	sqlStr, args, _ := q.ToSql()
	u, err := r.scan(r.DB.QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return u, err
}

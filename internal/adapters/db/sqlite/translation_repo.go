package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"linguist/internal/domain"

	sq "github.com/Masterminds/squirrel"
)

type TranslationRepo struct{ *Repo }

func NewTranslationRepo(db *sql.DB) *TranslationRepo { return &TranslationRepo{NewRepo(db)} }

func (r *TranslationRepo) Upsert(ctx context.Context, t *domain.Translation) error {
	ts := now()
	forms := ""
	if len(t.Forms) > 0 {
		b, err := json.Marshal(t.Forms)
		if err != nil {
			return err
		}
		forms = string(b)
	}
	status := t.Status
	if status == "" {
		status = domain.StatusFinished
	}
	q := r.SQ.Insert("translations").Columns("unit_id", "locale", "text", "forms_json", "status", "provider_id", "confidence", "created_at", "updated_at").
		Values(t.UnitID, t.Locale, t.Text, forms, status, t.ProviderID, t.Confidence, ts, ts).
		Suffix("ON CONFLICT(unit_id, locale) DO UPDATE SET text=excluded.text, forms_json=excluded.forms_json, status=excluded.status, provider_id=excluded.provider_id, confidence=excluded.confidence, updated_at=excluded.updated_at")
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func scanTranslation(row interface{ Scan(...any) error }) (*domain.Translation, error) {
	var t domain.Translation
	var created, updated, forms string
	var prov sql.NullInt64
	var conf sql.NullFloat64
	if err := row.Scan(&t.ID, &t.UnitID, &t.Locale, &t.Text, &forms, &t.Status, &prov, &conf, &created, &updated); err != nil {
		return nil, err
	}
	if forms != "" {
		if err := json.Unmarshal([]byte(forms), &t.Forms); err != nil {
			return nil, err
		}
	}
	if prov.Valid {
		v := prov.Int64
		t.ProviderID = &v
	}
	if conf.Valid {
		v := conf.Float64
		t.Confidence = &v
	}
	t.CreatedAt = parseTime(created)
	t.UpdatedAt = parseTime(updated)
	return &t, nil
}

// Get returns the translation of a unit, or nil when there is none.
func (r *TranslationRepo) Get(ctx context.Context, unitID int64, locale string) (*domain.Translation, error) {
	q := r.SQ.Select("id", "unit_id", "locale", "text", "forms_json", "status", "provider_id", "confidence", "created_at", "updated_at").From("translations").
		Where(sq.Eq{"unit_id": unitID, "locale": locale}).Limit(1)
	sqlStr, args, _ := q.ToSql()
	t, err := scanTranslation(r.DB.QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

func (r *TranslationRepo) ListByFileLocale(ctx context.Context, fileID int64, locale string) ([]*domain.Translation, error) {
	q := r.SQ.Select("t.id", "t.unit_id", "t.locale", "t.text", "t.forms_json", "t.status", "t.provider_id", "t.confidence", "t.created_at", "t.updated_at").
		From("translations t").Join("units u ON u.id = t.unit_id").Where(sq.Eq{"u.file_id": fileID, "t.locale": locale}).OrderBy("u.id")
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Translation
	for rows.Next() {
		t, err := scanTranslation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

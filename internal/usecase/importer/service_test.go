package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linguist/internal/adapters/db/sqlite"
	parcsv "linguist/internal/adapters/parser/csv"
	parts "linguist/internal/adapters/parser/qtts"
	parreg "linguist/internal/adapters/parser/registry"
	"linguist/internal/domain"
)

func newService(t *testing.T) (*Service, *sqlite.Repos, int64) {
	t.Helper()
	db, err := sqlite.Init(filepath.Join(t.TempDir(), "linguist.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	r := sqlite.NewRepos(db)
	p := &domain.Project{Name: "nomacs", SourceLang: "en"}
	require.NoError(t, r.Projects.Create(context.Background(), p))
	reg := parreg.New()
	reg.Register(parts.New())
	reg.Register(parcsv.New())
	return New(r.Files, r.Units, r.Translations, r.Projects, reg), r, p.ID
}

func TestImportQtCatalog(t *testing.T) {
	ctx := context.Background()
	svc, r, projectID := newService(t)
	data, err := os.ReadFile("../../adapters/parser/qtts/testdata/viewer_sr.ts")
	require.NoError(t, err)

	res, err := svc.Import(ctx, ImportArgs{ProjectID: projectID, Filename: "translations/nomacs_sr.ts", Content: data})
	require.NoError(t, err)
	assert.Equal(t, "sr-RS", res.Locale)
	assert.Equal(t, 5, res.Units)
	assert.Equal(t, 5, res.Translations)
	assert.False(t, res.Unchanged)

	f, err := r.Files.Get(ctx, res.FileID)
	require.NoError(t, err)
	assert.Equal(t, "ts", f.Format)
	assert.Equal(t, "sr-RS", f.Locale)

	units, err := r.Units.ListByFile(ctx, res.FileID)
	require.NoError(t, err)
	require.Len(t, units, 5)
	assert.Equal(t, "DkNoMacsClass", units[0].Context)
	assert.True(t, units[2].Numerus)
	meta := units[1].Metadata()
	require.Len(t, meta.Locations, 2)
	assert.Equal(t, 700, meta.Locations[1].Line)

	tr, err := r.Translations.Get(ctx, units[2].ID, "sr-RS")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnfinished, tr.Status)
	assert.Len(t, tr.Forms, 3)

	tr, err = r.Translations.Get(ctx, units[4].ID, "sr-RS")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVanished, tr.Status)

	locales, err := r.Projects.ListLocales(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, locales, 1)
	assert.Equal(t, "sr-RS", locales[0].Locale)
}

func TestImportAgainIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, r, projectID := newService(t)
	data, err := os.ReadFile("../../adapters/parser/qtts/testdata/viewer_sr.ts")
	require.NoError(t, err)
	args := ImportArgs{ProjectID: projectID, Filename: "nomacs_sr.ts", Content: data}

	first, err := svc.Import(ctx, args)
	require.NoError(t, err)
	second, err := svc.Import(ctx, args)
	require.NoError(t, err)
	assert.Equal(t, first.FileID, second.FileID)
	assert.True(t, second.Unchanged)

	units, err := r.Units.ListByFile(ctx, first.FileID)
	require.NoError(t, err)
	assert.Len(t, units, 5)
	files, err := r.Files.ListByProject(ctx, projectID)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestImportLocaleOverride(t *testing.T) {
	svc, _, projectID := newService(t)
	res, err := svc.Import(context.Background(), ImportArgs{
		ProjectID: projectID,
		Filename:  "strings.csv",
		Locale:    "de_DE",
		Content:   []byte("key,source,translation\nhello,Hello,Hallo\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "de-DE", res.Locale)
	assert.Equal(t, 1, res.Units)
}

func TestImportErrors(t *testing.T) {
	svc, _, projectID := newService(t)
	ctx := context.Background()

	_, err := svc.Import(ctx, ImportArgs{ProjectID: projectID, Filename: "notes.md", Content: []byte("x")})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	_, err = svc.Import(ctx, ImportArgs{ProjectID: projectID, Filename: "x.bin", Format: "po", Content: []byte("x")})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	_, err = svc.Import(ctx, ImportArgs{ProjectID: projectID, Filename: "broken.ts", Content: []byte("<TS><context>")})
	var se *parts.SyntaxError
	assert.ErrorAs(t, err, &se)
}

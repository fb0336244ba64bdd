package jobs

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linguist/internal/adapters/db/sqlite"
	"linguist/internal/adapters/prompt"
	"linguist/internal/domain"
	"linguist/internal/ports"
	"linguist/internal/usecase/translator"
)

// echoProvider prefixes the segment text. Texts starting with "Fail" get
// a transport error. With block set every call waits for cancellation.
type echoProvider struct {
	block   bool
	started chan struct{}
	once    sync.Once
}

func (p *echoProvider) Translate(ctx context.Context, seg ports.Segment, params ports.TranslateParams) (ports.TranslateResult, error) {
	if p.block {
		p.once.Do(func() { close(p.started) })
		<-ctx.Done()
		return ports.TranslateResult{}, ctx.Err()
	}
	if strings.HasPrefix(seg.Text, "Fail") {
		return ports.TranslateResult{}, errors.New("connection refused")
	}
	if params.PluralForms > 0 {
		forms := make([]string, params.PluralForms)
		for i := range forms {
			forms[i] = "sr:" + seg.Text
		}
		return ports.TranslateResult{Forms: forms}, nil
	}
	return ports.TranslateResult{Translation: "sr:" + seg.Text}, nil
}

func (p *echoProvider) ListModels(context.Context) ([]ports.ModelInfo, error) {
	return []ports.ModelInfo{{Name: "meta-llama/llama-3-8b", Description: "Meta: Llama 3 (8B)"}}, nil
}
func (p *echoProvider) Test(context.Context) error { return nil }

type recorder struct {
	mu    sync.Mutex
	names []string
}

func (r *recorder) Emit(name string, _ any) {
	r.mu.Lock()
	r.names = append(r.names, name)
	r.mu.Unlock()
}

type env struct {
	runner    *Runner
	repos     *sqlite.Repos
	projectID int64
	provider  *domain.Provider
	fileID    int64
	units     []*domain.Unit
}

func newEnv(t *testing.T, fake *echoProvider, sources ...string) env {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Init(filepath.Join(t.TempDir(), "linguist.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	r := sqlite.NewRepos(db)

	p := &domain.Project{Name: "nomacs", SourceLang: "en"}
	require.NoError(t, r.Projects.Create(ctx, p))
	prov := &domain.Provider{Type: domain.ProviderOllama, Name: "local", Model: "llama3"}
	require.NoError(t, r.Providers.Create(ctx, prov))
	f := &domain.File{ProjectID: p.ID, Path: "nomacs_sr.ts", Format: "ts", Locale: "sr-RS"}
	require.NoError(t, r.Files.Create(ctx, f))

	var in []*domain.Unit
	for _, src := range sources {
		u := &domain.Unit{FileID: f.ID, Context: "nmc::DkViewPort", SourceText: src, Numerus: strings.Contains(src, "%n")}
		u.Key = domain.MessageKey(u.Context, u.SourceText, u.Comment)
		in = append(in, u)
	}
	require.NoError(t, r.Units.UpsertBatch(ctx, in))
	units, err := r.Units.ListByFile(ctx, f.ID)
	require.NoError(t, err)

	build := func(*domain.Provider) (ports.Provider, error) { return fake, nil }
	trans := translator.New(translator.Deps{
		Providers:     r.Providers,
		Templates:     r.Templates,
		Cache:         r.Cache,
		Translations:  r.Translations,
		Prompt:        prompt.New(r.Templates),
		BuildProvider: build,
	})
	runner := NewRunner(Deps{
		Jobs:          r.Jobs,
		Files:         r.Files,
		Units:         r.Units,
		Projects:      r.Projects,
		Providers:     r.Providers,
		Translations:  r.Translations,
		BuildProvider: build,
	}, trans)
	return env{runner: runner, repos: r, projectID: p.ID, provider: prov, fileID: f.ID, units: units}
}

func TestNeedsTranslation(t *testing.T) {
	tests := []struct {
		name string
		tr   *domain.Translation
		want bool
	}{
		{"missing", nil, true},
		{"empty", &domain.Translation{Status: domain.StatusFinished}, true},
		{"unfinished", &domain.Translation{Text: "Отвори", Status: domain.StatusUnfinished}, true},
		{"finished", &domain.Translation{Text: "Отвори", Status: domain.StatusFinished}, false},
		{"machine", &domain.Translation{Text: "Отвори", Status: domain.StatusMachine}, false},
		{"vanished", &domain.Translation{Status: domain.StatusVanished}, false},
		{"forms", &domain.Translation{Forms: []string{"", "фајла"}, Status: domain.StatusFinished}, false},
		{"blank forms", &domain.Translation{Forms: []string{" ", ""}, Status: domain.StatusFinished}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsTranslation(tt.tr))
		})
	}
}

func TestTranslateFileJob(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, &echoProvider{}, "Open", "%n file(s) deleted", "Close")
	require.NoError(t, e.repos.Translations.Upsert(ctx, &domain.Translation{UnitID: e.units[2].ID, Locale: "sr-RS", Text: "Затвори", Status: domain.StatusFinished}))
	rec := &recorder{}
	e.runner.SetEmitter(rec)

	id, err := e.runner.StartTranslateFile(ctx, e.projectID, e.provider.ID, TranslateFileParams{FileID: e.fileID, TargetLocales: []string{"sr_RS"}})
	require.NoError(t, err)
	job, err := e.runner.Wait(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.JobDone, job.Status)
	assert.Equal(t, 2, job.Total)
	assert.Equal(t, 2, job.Progress)
	assert.Contains(t, job.ParamsRaw, `"model":"llama3"`)

	tr, err := e.repos.Translations.Get(ctx, e.units[0].ID, "sr-RS")
	require.NoError(t, err)
	assert.Equal(t, "sr:Open", tr.Text)
	assert.Equal(t, domain.StatusMachine, tr.Status)

	tr, err = e.repos.Translations.Get(ctx, e.units[1].ID, "sr-RS")
	require.NoError(t, err)
	assert.Len(t, tr.Forms, 3)
	assert.Equal(t, "sr:%n file(s) deleted", tr.Forms[2])

	tr, err = e.repos.Translations.Get(ctx, e.units[2].ID, "sr-RS")
	require.NoError(t, err)
	assert.Equal(t, "Затвори", tr.Text, "finished work is kept")

	items, err := e.repos.Jobs.ListItems(ctx, id)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, it := range items {
		assert.Equal(t, domain.JobDone, it.Status)
	}
	assert.Contains(t, rec.names, "job.started")
	assert.Contains(t, rec.names, "job.item.done")
}

func TestTranslateJobAllFailed(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, &echoProvider{}, "Failing one")
	id, err := e.runner.StartTranslateUnit(ctx, e.projectID, e.provider.ID, e.units[0].ID, []string{"de"}, "")
	require.NoError(t, err)
	job, err := e.runner.Wait(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.JobFailed, job.Status)

	items, err := e.repos.Jobs.ListItems(ctx, id)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Contains(t, items[0].Error, "connection refused")
	logs, err := e.repos.Jobs.ListLogs(ctx, id, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, logs)
}

func TestCancelJob(t *testing.T) {
	ctx := context.Background()
	fake := &echoProvider{block: true, started: make(chan struct{})}
	e := newEnv(t, fake, "Open", "Close")
	id, err := e.runner.StartTranslateFile(ctx, e.projectID, e.provider.ID, TranslateFileParams{FileID: e.fileID, TargetLocales: []string{"sr-RS"}})
	require.NoError(t, err)

	select {
	case <-fake.started:
	case <-time.After(5 * time.Second):
		t.Fatal("provider was never called")
	}
	assert.True(t, e.runner.Cancel(id))
	job, err := e.runner.Wait(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.JobCanceled, job.Status)
	assert.False(t, e.runner.Cancel(id), "finished jobs leave the runner")
}

func TestEmptyJobFinishes(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, &echoProvider{})
	id, err := e.runner.StartTranslateFile(ctx, e.projectID, e.provider.ID, TranslateFileParams{FileID: e.fileID, TargetLocales: []string{"sr-RS"}})
	require.NoError(t, err)
	job, err := e.runner.Wait(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.JobDone, job.Status)
	assert.Zero(t, job.Total)
}

func TestResolveModel(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, &echoProvider{})
	assert.Equal(t, "llama3", e.runner.resolveModel(ctx, e.provider.ID, ""))
	assert.Equal(t, "mistral", e.runner.resolveModel(ctx, e.provider.ID, "mistral"))

	router := &domain.Provider{Type: domain.ProviderOpenRouter, Name: "router", APIKey: "k"}
	require.NoError(t, e.repos.Providers.Create(ctx, router))
	assert.Equal(t, "meta-llama/llama-3-8b", e.runner.resolveModel(ctx, router.ID, "Meta: Llama 3 (8B)"))
	assert.Equal(t, "some/model", e.runner.resolveModel(ctx, router.ID, "some/model"))
}

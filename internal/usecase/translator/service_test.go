package translator

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linguist/internal/adapters/db/sqlite"
	"linguist/internal/adapters/prompt"
	"linguist/internal/domain"
	"linguist/internal/ports"
)

// scriptedProvider answers Translate calls from a queue of replies.
type scriptedProvider struct {
	mu      sync.Mutex
	replies []func(ports.Segment, ports.TranslateParams) (ports.TranslateResult, error)
	calls   []ports.TranslateParams
	texts   []string
}

func (p *scriptedProvider) Translate(_ context.Context, seg ports.Segment, params ports.TranslateParams) (ports.TranslateResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, params)
	p.texts = append(p.texts, seg.Text)
	if len(p.replies) == 0 {
		return ports.TranslateResult{}, errors.New("no reply scripted")
	}
	next := p.replies[0]
	p.replies = p.replies[1:]
	return next(seg, params)
}

func (p *scriptedProvider) ListModels(context.Context) ([]ports.ModelInfo, error) { return nil, nil }
func (p *scriptedProvider) Test(context.Context) error                         { return nil }

func reply(text string) func(ports.Segment, ports.TranslateParams) (ports.TranslateResult, error) {
	return func(ports.Segment, ports.TranslateParams) (ports.TranslateResult, error) {
		return ports.TranslateResult{Translation: text}, nil
	}
}

func setup(t *testing.T, fake *scriptedProvider) (*Service, *domain.Provider) {
	t.Helper()
	db, err := sqlite.Init(filepath.Join(t.TempDir(), "linguist.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	r := sqlite.NewRepos(db)
	prov := &domain.Provider{Type: domain.ProviderOllama, Name: "local", Model: "llama3"}
	require.NoError(t, r.Providers.Create(context.Background(), prov))
	svc := New(Deps{
		Providers:     r.Providers,
		Templates:     r.Templates,
		Cache:         r.Cache,
		Translations:  r.Translations,
		Prompt:        prompt.New(r.Templates),
		BuildProvider: func(*domain.Provider) (ports.Provider, error) { return fake, nil },
	})
	return svc, prov
}

func TestTranslateOneMasksAndCaches(t *testing.T) {
	fake := &scriptedProvider{replies: []func(ports.Segment, ports.TranslateParams) (ports.TranslateResult, error){
		reply("  Извини, слика је превелика: __PH_0__  "),
	}}
	svc, prov := setup(t, fake)
	unit := &domain.Unit{Key: "k1", Context: "nmc::DkBasicLoader", SourceText: "Sorry, the image is too large: %1\n"}
	args := TranslateArgs{ProviderID: prov.ID, Unit: unit, SourceLang: "en", TargetLang: "sr-RS"}

	out, err := svc.TranslateOne(context.Background(), args)
	require.NoError(t, err)
	assert.Equal(t, "Извини, слика је превелика: %1\n", out.Text)
	require.Len(t, fake.calls, 1)
	assert.Equal(t, "Sorry, the image is too large: __PH_0__\n", fake.texts[0])
	assert.Equal(t, "llama3", fake.calls[0].Model)
	assert.Zero(t, fake.calls[0].PluralForms)
	assert.Contains(t, fake.calls[0].UserPrompt, "context: nmc::DkBasicLoader")
	assert.Contains(t, fake.calls[0].SystemPrompt, "from en to sr-RS")

	again, err := svc.TranslateOne(context.Background(), args)
	require.NoError(t, err)
	assert.Equal(t, out, again)
	assert.Len(t, fake.calls, 1, "second call is served from cache")
}

func TestTranslateOneNumerus(t *testing.T) {
	fake := &scriptedProvider{replies: []func(ports.Segment, ports.TranslateParams) (ports.TranslateResult, error){
		func(_ ports.Segment, p ports.TranslateParams) (ports.TranslateResult, error) {
			return ports.TranslateResult{Forms: []string{"један фајл", "__PH_0__ фајла", "__PH_0__ фајлова"}}, nil
		},
	}}
	svc, prov := setup(t, fake)
	unit := &domain.Unit{Key: "k2", SourceText: "%n file(s)", Numerus: true}

	out, err := svc.TranslateOne(context.Background(), TranslateArgs{ProviderID: prov.ID, Unit: unit, SourceLang: "en", TargetLang: "sr_RS"})
	require.NoError(t, err)
	assert.Equal(t, []string{"један фајл", "%n фајла", "%n фајлова"}, out.Forms)
	assert.Equal(t, "један фајл", out.Text)
	require.Len(t, fake.calls, 1)
	assert.Equal(t, 3, fake.calls[0].PluralForms)
	assert.Contains(t, fake.calls[0].SystemPrompt, "3 plural forms")
}

func TestTranslateOneRejectsLostPlaceholder(t *testing.T) {
	fake := &scriptedProvider{replies: []func(ports.Segment, ports.TranslateParams) (ports.TranslateResult, error){
		reply("Копирај у"),
	}}
	svc, prov := setup(t, fake)
	unit := &domain.Unit{Key: "k3", SourceText: "Copy <b>%1</b> to %2"}

	_, err := svc.TranslateOne(context.Background(), TranslateArgs{ProviderID: prov.ID, Unit: unit, TargetLang: "sr"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "missing in translation"))
}

func TestTranslateOneRetriesMalformedReplies(t *testing.T) {
	fake := &scriptedProvider{replies: []func(ports.Segment, ports.TranslateParams) (ports.TranslateResult, error){
		func(ports.Segment, ports.TranslateParams) (ports.TranslateResult, error) {
			return ports.TranslateResult{}, errors.New("failed to parse translation json: eof")
		},
		reply("Отвори"),
	}}
	svc, prov := setup(t, fake)

	out, err := svc.TranslateOne(context.Background(), TranslateArgs{
		ProviderID: prov.ID, Unit: &domain.Unit{Key: "k4", SourceText: "Open"}, TargetLang: "sr", BypassCache: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Отвори", out.Text)
	assert.Len(t, fake.calls, 2)
}

func TestTranslateOneDoesNotRetryTransportErrors(t *testing.T) {
	fake := &scriptedProvider{replies: []func(ports.Segment, ports.TranslateParams) (ports.TranslateResult, error){
		func(ports.Segment, ports.TranslateParams) (ports.TranslateResult, error) {
			return ports.TranslateResult{}, errors.New("connection refused")
		},
	}}
	svc, prov := setup(t, fake)

	_, err := svc.TranslateOne(context.Background(), TranslateArgs{ProviderID: prov.ID, Unit: &domain.Unit{Key: "k5", SourceText: "Open"}, TargetLang: "sr"})
	assert.ErrorContains(t, err, "connection refused")
	assert.Len(t, fake.calls, 1)
}

func TestTranslateOneUnknownProvider(t *testing.T) {
	svc, _ := setup(t, &scriptedProvider{})
	_, err := svc.TranslateOne(context.Background(), TranslateArgs{ProviderID: 999, Unit: &domain.Unit{SourceText: "x"}})
	assert.ErrorContains(t, err, "load provider 999")
}

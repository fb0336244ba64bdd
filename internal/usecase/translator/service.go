package translator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"linguist/internal/domain"
	xlog "linguist/internal/log"
	"linguist/internal/plurals"
	"linguist/internal/ports"
)

type Deps struct {
	Providers    ports.ProviderRepository
	Templates    ports.TemplateRepository
	Cache        ports.CacheRepository
	Translations ports.TranslationRepository
	Prompt       ports.PromptRenderer
	// BuildProvider returns the adapter for a provider record.
	BuildProvider func(*domain.Provider) (ports.Provider, error)
}

type Service struct{ d Deps }

func New(d Deps) *Service { return &Service{d: d} }

type TranslateArgs struct {
	ProviderID     int64
	Unit           *domain.Unit
	SourceLang     string
	TargetLang     string
	Model          string
	SystemOverride string
	UserOverride   string
	BypassCache    bool
}

// Output is a machine translation. Forms is set for numerus units.
type Output struct {
	Text  string
	Forms []string
}

const maxAttempts = 3

func (s *Service) TranslateOne(ctx context.Context, a TranslateArgs) (Output, error) {
	if a.Unit == nil {
		return Output{}, errors.New("unit is required")
	}
	prov, err := s.d.Providers.Get(ctx, a.ProviderID)
	if err != nil {
		return Output{}, fmt.Errorf("load provider %d: %w", a.ProviderID, err)
	}
	model := a.Model
	if model == "" {
		model = prov.Model
	}
	logger := xlog.FromContext(ctx).With().Str("component", "translator").Str("key", a.Unit.Key).Str("locale", a.TargetLang).Logger()

	placeholders := extractPlaceholders(a.Unit.SourceText)
	tags := extractTags(a.Unit.SourceText)
	masked, unmask := maskTokens(a.Unit.SourceText, placeholders, tags)

	forms := 0
	typ := domain.TemplateTranslateSingle
	if a.Unit.Numerus {
		typ = domain.TemplateTranslatePlural
		forms = 2
		if tag, err := plurals.Parse(a.TargetLang); err == nil {
			if n := plurals.Count(tag); n > 0 {
				forms = n
			}
		}
	}
	meta := a.Unit.Metadata()
	data := ports.PromptData{
		SrcLang:      a.SourceLang,
		TgtLang:      a.TargetLang,
		Key:          a.Unit.Key,
		Text:         masked,
		Context:      a.Unit.Context,
		Comment:      a.Unit.Comment,
		ExtraComment: meta.ExtraComment,
		Placeholders: placeholders,
		Tags:         tags,
		PluralForms:  forms,
	}

	system := a.SystemOverride
	user := a.UserOverride
	if system == "" {
		if system, err = s.d.Prompt.Render(ctx, domain.ScopeProvider, &prov.ID, typ, domain.RoleSystem, data); err != nil {
			return Output{}, err
		}
	}
	if user == "" {
		if user, err = s.d.Prompt.Render(ctx, domain.ScopeProvider, &prov.ID, typ, domain.RoleUser, data); err != nil {
			return Output{}, err
		}
	}
	segment := ports.Segment{Key: a.Unit.Key, Text: masked, Context: a.Unit.Context, Placeholders: placeholders, Tags: tags}

	// Cached entries are keyed by the masked text and store unmasked output.
	cacheKey := masked
	if forms > 0 {
		cacheKey = fmt.Sprintf("%s\x00forms=%d", masked, forms)
	}
	if !a.BypassCache && s.d.Cache != nil {
		if ce, _ := s.d.Cache.Get(ctx, cacheKey, a.SourceLang, a.TargetLang, prov.Type, model); ce != nil {
			if out, ok := decodeCached(ce.Translation, forms); ok {
				logger.Debug().Str("event", "translate.cache_hit").Msg("served from cache")
				return out, nil
			}
		}
	}

	if s.d.BuildProvider == nil {
		return Output{}, errors.New("translator: provider builder missing")
	}
	adapter, err := s.d.BuildProvider(prov)
	if err != nil {
		return Output{}, err
	}
	var res ports.TranslateResult
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res, err = adapter.Translate(ctx, segment, ports.TranslateParams{
			SourceLang:   a.SourceLang,
			TargetLang:   a.TargetLang,
			Model:        model,
			SystemPrompt: system,
			UserPrompt:   user,
			PluralForms:  forms,
		})
		if err == nil {
			break
		}
		if !isRetryableTranslateError(err) || attempt == maxAttempts {
			return Output{}, err
		}
		logger.Debug().Err(err).Int("attempt", attempt).Str("event", "translate.retry").Msg("retrying malformed reply")
		select {
		case <-ctx.Done():
			return Output{}, ctx.Err()
		case <-time.After(time.Duration(200*attempt) * time.Millisecond):
		}
	}

	var out Output
	if forms > 0 {
		out.Forms = make([]string, len(res.Forms))
		for i, f := range res.Forms {
			out.Forms[i] = unmask(f)
		}
		if len(out.Forms) > 0 {
			out.Text = out.Forms[0]
		}
	} else {
		out.Text = unmask(res.Translation)
	}
	texts := out.Forms
	if forms == 0 {
		texts = []string{out.Text}
	}
	for _, t := range texts {
		if err := verifyTokens(t, placeholders, tags, a.Unit.Numerus); err != nil {
			return Output{}, err
		}
	}
	if s.d.Cache != nil {
		_ = s.d.Cache.Put(ctx, &domain.CacheEntry{
			SourceText:  cacheKey,
			SrcLang:     a.SourceLang,
			TgtLang:     a.TargetLang,
			Provider:    prov.Type,
			Model:       model,
			Translation: encodeCached(out),
		})
	}
	return out, nil
}

func verifyTokens(translated string, placeholders, tags []string, numerus bool) error {
	for _, ph := range placeholders {
		// A plural form may spell the count out, as in "one file".
		if numerus && isCountMarker(ph) {
			continue
		}
		if !strings.Contains(translated, ph) {
			return fmt.Errorf("placeholder missing in translation: %s", ph)
		}
	}
	for _, tg := range tags {
		if !strings.Contains(translated, tg) {
			return fmt.Errorf("tag missing in translation: %s", tg)
		}
	}
	return nil
}

func encodeCached(o Output) string {
	if len(o.Forms) == 0 {
		return o.Text
	}
	b, _ := json.Marshal(o.Forms)
	return string(b)
}

func decodeCached(s string, forms int) (Output, bool) {
	if forms == 0 {
		return Output{Text: s}, s != ""
	}
	var fs []string
	if err := json.Unmarshal([]byte(s), &fs); err != nil || len(fs) != forms {
		return Output{}, false
	}
	return Output{Text: fs[0], Forms: fs}, true
}

// isRetryableTranslateError reports output format problems that models
// often get right on a second try.
func isRetryableTranslateError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"failed to parse translation json", "no choices returned", "unexpected end of", "invalid character"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

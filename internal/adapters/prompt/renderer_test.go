package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linguist/internal/domain"
	"linguist/internal/ports"
)

type memTemplates struct {
	byKey map[string]*domain.Template
	err   error
}

func (m *memTemplates) GetEffective(_ context.Context, scope string, refID *int64, typ, role string) (*domain.Template, error) {
	if m.err != nil {
		return nil, m.err
	}
	if refID != nil {
		if t, ok := m.byKey[scope+"/"+typ+"/"+role]; ok {
			return t, nil
		}
	}
	return m.byKey[domain.ScopeGlobal+"/"+typ+"/"+role], nil
}

func (m *memTemplates) Upsert(context.Context, *domain.Template) error { return nil }

func TestRenderBuiltin(t *testing.T) {
	r := New(nil)
	data := ports.PromptData{SrcLang: "en", TgtLang: "sr-RS", Context: "nmc::DkViewPort", Text: "Rotate __PH_0__", ExtraComment: "menu entry", PluralForms: 3}

	sys, err := r.Render(context.Background(), domain.ScopeProvider, nil, domain.TemplateTranslateSingle, domain.RoleSystem, data)
	require.NoError(t, err)
	assert.Contains(t, sys, "from en to sr-RS")
	assert.Contains(t, sys, `{"translation":"..."}`)

	user, err := r.Render(context.Background(), domain.ScopeProvider, nil, domain.TemplateTranslateSingle, domain.RoleUser, data)
	require.NoError(t, err)
	assert.Equal(t, "context: nmc::DkViewPort\ndeveloper note: menu entry\nsource: Rotate __PH_0__", user)

	sys, err = r.Render(context.Background(), domain.ScopeProvider, nil, domain.TemplateTranslatePlural, domain.RoleSystem, data)
	require.NoError(t, err)
	assert.Contains(t, sys, "sr-RS uses 3 plural forms")
	assert.Contains(t, sys, "exactly 3 entries")
}

func TestRenderStoredOverride(t *testing.T) {
	id := int64(7)
	repo := &memTemplates{byKey: map[string]*domain.Template{
		"global/translate_single/user":   {Body: "global {{.Text}}"},
		"provider/translate_single/user": {Body: "provider {{.Text}} -> {{.TgtLang}}"},
	}}
	r := New(repo)
	data := ports.PromptData{TgtLang: "de", Text: "Open"}

	out, err := r.Render(context.Background(), domain.ScopeProvider, &id, domain.TemplateTranslateSingle, domain.RoleUser, data)
	require.NoError(t, err)
	assert.Equal(t, "provider Open -> de", out)

	out, err = r.Render(context.Background(), domain.ScopeProvider, nil, domain.TemplateTranslateSingle, domain.RoleUser, data)
	require.NoError(t, err)
	assert.Equal(t, "global Open", out)
}

func TestRenderErrors(t *testing.T) {
	_, err := New(nil).Render(context.Background(), domain.ScopeGlobal, nil, "glossary", domain.RoleUser, ports.PromptData{})
	assert.ErrorContains(t, err, "no template for glossary/user")

	_, err = New(&memTemplates{err: errors.New("disk I/O error")}).Render(context.Background(), domain.ScopeGlobal, nil, domain.TemplateTranslateSingle, domain.RoleUser, ports.PromptData{})
	assert.ErrorContains(t, err, "disk I/O error")

	bad := &memTemplates{byKey: map[string]*domain.Template{"global/translate_single/user": {Body: "{{.Text"}}}
	_, err = New(bad).Render(context.Background(), domain.ScopeGlobal, nil, domain.TemplateTranslateSingle, domain.RoleUser, ports.PromptData{})
	assert.Error(t, err)
}

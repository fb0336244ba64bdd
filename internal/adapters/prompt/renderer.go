package prompt

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"linguist/internal/domain"
	"linguist/internal/ports"
)

type Renderer struct {
	Templates ports.TemplateRepository
}

func New(templates ports.TemplateRepository) *Renderer { return &Renderer{Templates: templates} }

// Render executes the effective template for typ and role. A stored
// template overrides the builtin body.
func (r *Renderer) Render(ctx context.Context, scope string, refID *int64, typ, role string, data ports.PromptData) (string, error) {
	body := builtinTemplate(typ, role)
	if r.Templates != nil {
		t, err := r.Templates.GetEffective(ctx, scope, refID, typ, role)
		if err != nil {
			return "", fmt.Errorf("load template %s/%s: %w", typ, role, err)
		}
		if t != nil && t.Body != "" {
			body = t.Body
		}
	}
	if body == "" {
		return "", fmt.Errorf("no template for %s/%s", typ, role)
	}
	tpl, err := template.New(typ + "." + role).Parse(body)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const systemCommon = "You are a professional software localization translator working on a Qt application. " +
	"Translate UI text from {{.SrcLang}} to {{.TgtLang}}. " +
	"Keep every masked token such as __PH_0__ or __TAG_0__ exactly as written; they stand for %1, %n and markup. " +
	"Keep leading and trailing whitespace and newlines. Keep keyboard accelerators marked with & when the source has one. "

func builtinTemplate(typ, role string) string {
	switch {
	case typ == domain.TemplateTranslateSingle && role == domain.RoleSystem:
		return systemCommon + `Return only JSON: {"translation":"..."}.`
	case typ == domain.TemplateTranslateSingle && role == domain.RoleUser:
		return "context: {{.Context}}\n" +
			"{{if .Comment}}disambiguation: {{.Comment}}\n{{end}}" +
			"{{if .ExtraComment}}developer note: {{.ExtraComment}}\n{{end}}" +
			"source: {{.Text}}"
	case typ == domain.TemplateTranslatePlural && role == domain.RoleSystem:
		return systemCommon + "The text is a plural message; __PH_ tokens standing for %n receive the count. " +
			`{{.TgtLang}} uses {{.PluralForms}} plural forms in CLDR order (zero, one, two, few, many, other; only those the language uses). ` +
			`Return only JSON: {"forms":["...", ...]} with exactly {{.PluralForms}} entries.`
	case typ == domain.TemplateTranslatePlural && role == domain.RoleUser:
		return "context: {{.Context}}\n" +
			"{{if .Comment}}disambiguation: {{.Comment}}\n{{end}}" +
			"{{if .ExtraComment}}developer note: {{.ExtraComment}}\n{{end}}" +
			"source: {{.Text}}"
	}
	return ""
}

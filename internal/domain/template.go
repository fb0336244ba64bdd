package domain

import "time"

const (
	ScopeGlobal   = "global"
	ScopeProject  = "project"
	ScopeProvider = "provider"

	TemplateTranslateSingle = "translate_single"
	TemplateTranslatePlural = "translate_plural"

	RoleSystem = "system"
	RoleUser   = "user"
)

type Template struct {
	ID        int64     `json:"id"`
	Scope     string    `json:"scope"`
	RefID     *int64    `json:"ref_id"`
	Type      string    `json:"type"`
	Role      string    `json:"role"`
	Body      string    `json:"body"`
	IsDefault bool      `json:"is_default"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SettingDefaultProvider holds the provider id used when none is given.
const SettingDefaultProvider = "translate.default_provider"

type CacheEntry struct {
	ID          int64     `json:"id"`
	SourceText  string    `json:"source_text"`
	SrcLang     string    `json:"src_lang"`
	TgtLang     string    `json:"tgt_lang"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model"`
	Translation string    `json:"translation"`
	CreatedAt   time.Time `json:"created_at"`
}

package domain

import (
	"encoding/json"
	"time"
)

// Project groups the catalogs of one application. SourceLang is the
// language of the source texts, usually "en".
type Project struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	SourceLang string    `json:"source_lang"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ProjectLocale records that some imported catalog targets Locale.
type ProjectLocale struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Locale    string    `json:"locale"`
	CreatedAt time.Time `json:"created_at"`
}

// File is one imported catalog. Path identifies it within the project and
// Hash is the SHA-256 of the bytes last imported.
type File struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Path      string    `json:"path"`
	Format    string    `json:"format"`
	Locale    string    `json:"locale"`
	Hash      string    `json:"hash"`
	CreatedAt time.Time `json:"created_at"`
}

// Unit is the stored source side of one message entry.
type Unit struct {
	ID          int64     `json:"id"`
	FileID      int64     `json:"file_id"`
	Key         string    `json:"key"`
	Context     string    `json:"context"`
	SourceText  string    `json:"source_text"`
	Comment     string    `json:"comment"`
	Numerus     bool      `json:"numerus"`
	MetadataRaw string    `json:"metadata_json"`
	CreatedAt   time.Time `json:"created_at"`
}

// UnitMetadata carries the advisory fields of a message that do not take
// part in its identity.
type UnitMetadata struct {
	ID                string     `json:"id,omitempty"`
	Locations         []Location `json:"locations,omitempty"`
	ExtraComment      string     `json:"extra_comment,omitempty"`
	TranslatorComment string     `json:"translator_comment,omitempty"`
	OldSource         string     `json:"old_source,omitempty"`
	OldComment        string     `json:"old_comment,omitempty"`
	ContextComment    string     `json:"context_comment,omitempty"`
}

func (u *Unit) Metadata() UnitMetadata {
	var m UnitMetadata
	if u.MetadataRaw == "" {
		return m
	}
	_ = json.Unmarshal([]byte(u.MetadataRaw), &m)
	return m
}

func (u *Unit) SetMetadata(m UnitMetadata) {
	b, err := json.Marshal(m)
	if err != nil || string(b) == "{}" {
		u.MetadataRaw = ""
		return
	}
	u.MetadataRaw = string(b)
}

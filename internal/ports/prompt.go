package ports

import "context"

type PromptData struct {
	SrcLang      string
	TgtLang      string
	Key          string
	Text         string
	FilePath     string
	Project      string
	Context      string
	Comment      string
	ExtraComment string
	Placeholders []string
	Tags         []string
	PluralForms  int
}

type PromptRenderer interface {
	Render(ctx context.Context, scope string, refID *int64, typ, role string, data PromptData) (string, error)
}

package paraglidejson

import (
	"encoding/json"

	"linguist/internal/plurals"
	"linguist/internal/ports"
)

type Exporter struct{}

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Format() string { return "paraglidejson" }

// Export writes one key per item, falling back to the source text when
// an item has no translation. Numerus items become an object keyed by the
// CLDR categories of meta.Language, or an array when the form count does
// not match the language.
func (e *Exporter) Export(meta ports.ExportMeta, items []ports.ExportItem) ([]byte, error) {
	out := make(map[string]any, len(items)+1)
	if meta.Language != "" {
		out["$language"] = meta.Language
	}
	names := categories(meta.Language)
	for _, it := range items {
		if it.Numerus && len(it.Forms) > 0 {
			out[it.Key] = pluralValue(names, it.Forms)
			continue
		}
		v := it.Translation
		if v == "" {
			v = it.SourceText
		}
		out[it.Key] = v
	}
	return json.MarshalIndent(out, "", "  ")
}

func pluralValue(names, forms []string) any {
	if len(names) != len(forms) {
		return forms
	}
	m := make(map[string]string, len(forms))
	for i, f := range forms {
		m[names[i]] = f
	}
	return m
}

func categories(locale string) []string {
	if locale == "" {
		return nil
	}
	tag, err := plurals.Parse(locale)
	if err != nil {
		return nil
	}
	forms := plurals.Forms(tag)
	names := make([]string, len(forms))
	for i, f := range forms {
		names[i] = plurals.Name(f)
	}
	return names
}

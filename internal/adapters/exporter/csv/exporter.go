package csv

import (
	"bytes"
	"encoding/csv"
	"strings"

	"linguist/internal/ports"
)

type Exporter struct {
	// Comma overrides the field separator; zero means ','.
	Comma rune
}

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Format() string { return "csv" }

func (e *Exporter) Export(meta ports.ExportMeta, items []ports.ExportItem) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if e.Comma != 0 {
		w.Comma = e.Comma
	}
	if err := w.Write([]string{"key", "context", "source", "comment", "translation", "status"}); err != nil {
		return nil, err
	}
	for _, it := range items {
		tr := it.Translation
		if it.Numerus && len(it.Forms) > 1 {
			tr = strings.Join(it.Forms, "|")
		}
		if err := w.Write([]string{it.Key, it.Context, it.SourceText, it.Comment, tr, it.Status}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// SeparatorFromName maps "comma", "semicolon" and "tab" onto a rune.
func SeparatorFromName(name string) rune {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "semicolon":
		return ';'
	case "tab":
		return '\t'
	default:
		return ','
	}
}

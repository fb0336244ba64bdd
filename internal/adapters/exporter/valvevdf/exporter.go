package valvevdf

import (
	"bytes"
	"fmt"
	"linguist/internal/ports"
)

type Exporter struct{}

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Format() string { return "valvevdf" }

func (e *Exporter) Export(meta ports.ExportMeta, items []ports.ExportItem) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("\"lang\"\n{")
	b.WriteString("\n\t\"language\" \"")
	b.WriteString(escapeVDF(meta.Language))
	b.WriteString("\"\n\t\"tokens\"\n\t{\n")
	for _, it := range items {
		v := it.Translation
		if v == "" {
			v = it.SourceText
		}
		fmt.Fprintf(&b, "\t\t\"%s\"\t\t\"%s\"\n", escapeVDF(it.Key), escapeVDF(v))
	}
	b.WriteString("\t}\n}\n")
	return b.Bytes(), nil
}

func escapeVDF(s string) string {
	b := []byte(s)
	b = bytes.ReplaceAll(b, []byte("\\"), []byte("\\\\"))
	b = bytes.ReplaceAll(b, []byte("\""), []byte("\\\""))
	b = bytes.ReplaceAll(b, []byte("\n"), []byte("\\n"))
	return string(b)
}

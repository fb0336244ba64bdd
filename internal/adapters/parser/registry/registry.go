package registry

import (
	"path/filepath"
	"sort"
	"strings"

	"linguist/internal/ports"
)

type Registry struct {
	byFormat map[string]ports.Parser
}

func New() *Registry { return &Registry{byFormat: map[string]ports.Parser{}} }

func (r *Registry) Register(p ports.Parser) { r.byFormat[p.Format()] = p }

func (r *Registry) Get(format string) (ports.Parser, bool) {
	p, ok := r.byFormat[format]
	return p, ok
}

// Formats lists the registered format names.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.byFormat))
	for f := range r.byFormat {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Detect maps a file name onto a format name by extension.
func Detect(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts":
		return "ts", true
	case ".csv":
		return "csv", true
	case ".json":
		return "paraglidejson", true
	case ".vdf", ".txt":
		return "valvevdf", true
	}
	return "", false
}

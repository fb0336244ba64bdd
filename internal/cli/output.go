package cli

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/fvbommel/sortorder"

	"linguist/internal/lint"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold).SprintFunc()
	warningColor = color.New(color.FgYellow).SprintFunc()
	infoColor    = color.New(color.FgCyan).SprintFunc()
	okColor      = color.New(color.FgGreen).SprintFunc()
	dimColor     = color.New(color.Faint).SprintFunc()
)

func severityLabel(s lint.Severity) string {
	switch s {
	case lint.SeverityError:
		return errorColor(string(s))
	case lint.SeverityWarning:
		return warningColor(string(s))
	default:
		return infoColor(string(s))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 4, 2, 2, ' ', 0)
}

// expandCatalogs replaces directory arguments with the .ts files below
// them, in natural order. File arguments are kept as given.
func expandCatalogs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			out = append(out, arg)
			continue
		}
		var found []string
		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".ts") {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Sort(sortorder.Natural(found))
		out = append(out, found...)
	}
	return out, nil
}


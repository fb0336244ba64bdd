package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	urfave "github.com/urfave/cli/v2"

	"linguist/internal/domain"
)

func (a *App) filesCommand() *urfave.Command {
	return &urfave.Command{
		Name:  "files",
		Usage: "manage imported files",
		Subcommands: []*urfave.Command{
			{
				Name:   "list",
				Usage:  "list the files of a project",
				Flags:  []urfave.Flag{&urfave.Int64Flag{Name: "project", Required: true}},
				Action: a.runFilesList,
			},
			{
				Name:      "rm",
				Usage:     "delete a file with its units and translations",
				ArgsUsage: "ID",
				Action:    a.runFilesRemove,
			},
		},
	}
}

func (a *App) runFilesList(c *urfave.Context) error {
	r, err := a.store()
	if err != nil {
		return err
	}
	files, err := r.Files.ListByProject(c.Context, c.Int64("project"))
	if err != nil {
		return err
	}
	tw := newTable(a.Stdout)
	fmt.Fprintln(tw, "ID\tPATH\tFORMAT\tLOCALE\tIMPORTED")
	for _, f := range files {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", f.ID, f.Path, f.Format, f.Locale, humanize.Time(f.CreatedAt))
	}
	return tw.Flush()
}

func (a *App) runFilesRemove(c *urfave.Context) error {
	r, err := a.store()
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return urfave.Exit("file ID expected", 2)
	}
	f, err := r.Files.Get(c.Context, id)
	if err != nil {
		return fmt.Errorf("file %d: %w", id, err)
	}
	if err := r.Files.Delete(c.Context, id); err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "deleted %s\n", f.Path)
	return nil
}

// unitText is one row of the units listing.
type unitText struct {
	UnitID      int64    `json:"unit_id"`
	Context     string   `json:"context"`
	Source      string   `json:"source"`
	Translation string   `json:"translation"`
	Forms       []string `json:"forms,omitempty"`
	Status      string   `json:"status"`
}

func (a *App) unitsCommand() *urfave.Command {
	return &urfave.Command{
		Name:  "units",
		Usage: "list the messages of a stored file with their translations",
		Flags: []urfave.Flag{
			&urfave.Int64Flag{Name: "file-id", Required: true},
			&urfave.StringFlag{Name: "locale", Required: true},
			&urfave.BoolFlag{Name: "pending", Usage: "only messages that still need a translation"},
			&urfave.StringFlag{Name: "format", Value: "text", Usage: "text or json"},
		},
		Action: a.runUnits,
	}
}

func (a *App) runUnits(c *urfave.Context) error {
	r, err := a.store()
	if err != nil {
		return err
	}
	fileID, locale := c.Int64("file-id"), domain.NormalizeLocale(c.String("locale"))
	units, err := r.Units.ListByFile(c.Context, fileID)
	if err != nil {
		return err
	}
	trs, err := r.Translations.ListByFileLocale(c.Context, fileID, locale)
	if err != nil {
		return err
	}
	byUnit := make(map[int64]*domain.Translation, len(trs))
	for _, t := range trs {
		byUnit[t.UnitID] = t
	}
	rows := make([]unitText, 0, len(units))
	for _, u := range units {
		t := byUnit[u.ID]
		if c.Bool("pending") && !needsWork(t) {
			continue
		}
		row := unitText{UnitID: u.ID, Context: u.Context, Source: u.SourceText}
		if t != nil {
			row.Translation, row.Forms, row.Status = t.Text, t.Forms, t.Status
		}
		rows = append(rows, row)
	}
	if c.String("format") == "json" {
		return writeJSON(a.Stdout, rows)
	}
	tw := newTable(a.Stdout)
	fmt.Fprintln(tw, "ID\tCONTEXT\tSOURCE\tTRANSLATION\tSTATUS")
	for _, row := range rows {
		text := row.Translation
		if len(row.Forms) > 0 {
			text = strings.Join(row.Forms, " | ")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", row.UnitID, row.Context, oneLine(row.Source), oneLine(text), row.Status)
	}
	return tw.Flush()
}

func needsWork(t *domain.Translation) bool {
	return t == nil || t.Status == domain.StatusUnfinished || t.Status == domain.StatusMachine ||
		(t.Text == "" && len(t.Forms) == 0)
}

func oneLine(s string) string {
	return strings.NewReplacer("\n", `\n`, "\t", `\t`).Replace(s)
}

func (a *App) setCommand() *urfave.Command {
	return &urfave.Command{
		Name:  "set",
		Usage: "store a reviewed translation for one message",
		Flags: []urfave.Flag{
			&urfave.Int64Flag{Name: "unit-id", Required: true},
			&urfave.StringFlag{Name: "locale", Required: true},
			&urfave.StringFlag{Name: "text"},
			&urfave.StringSliceFlag{Name: "form", Usage: "numerus form, in plural category order (repeatable)"},
			&urfave.StringFlag{Name: "status", Value: domain.StatusFinished, Usage: "finished or unfinished"},
		},
		Action: a.runSet,
	}
}

func (a *App) runSet(c *urfave.Context) error {
	r, err := a.store()
	if err != nil {
		return err
	}
	status := c.String("status")
	if status != domain.StatusFinished && status != domain.StatusUnfinished {
		return urfave.Exit(fmt.Sprintf("status must be %s or %s", domain.StatusFinished, domain.StatusUnfinished), 2)
	}
	u, err := r.Units.Get(c.Context, c.Int64("unit-id"))
	if err != nil {
		return fmt.Errorf("unit %d: %w", c.Int64("unit-id"), err)
	}
	t := &domain.Translation{UnitID: u.ID, Locale: domain.NormalizeLocale(c.String("locale")), Status: status}
	if u.Numerus {
		t.Forms = c.StringSlice("form")
		if len(t.Forms) == 0 {
			return urfave.Exit("numerus message: pass every form with --form", 2)
		}
	} else {
		if c.IsSet("form") {
			return urfave.Exit("--form only applies to numerus messages", 2)
		}
		t.Text = c.String("text")
	}
	if err := r.Translations.Upsert(c.Context, t); err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "unit %d %s: %s\n", u.ID, t.Locale, status)
	return nil
}

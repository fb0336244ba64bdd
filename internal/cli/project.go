package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	urfave "github.com/urfave/cli/v2"

	"linguist/internal/domain"
	"linguist/internal/fsutil"
	exporterusecase "linguist/internal/usecase/exporter"
	"linguist/internal/usecase/importer"
)

func (a *App) projectCommand() *urfave.Command {
	return &urfave.Command{
		Name:  "project",
		Usage: "manage projects in the database",
		Subcommands: []*urfave.Command{
			{
				Name:  "create",
				Usage: "create a project",
				Flags: []urfave.Flag{
					&urfave.StringFlag{Name: "name", Required: true},
					&urfave.StringFlag{Name: "source-lang", Value: "en"},
				},
				Action: a.runProjectCreate,
			},
			{
				Name:   "list",
				Usage:  "list projects with their locales and files",
				Action: a.runProjectList,
			},
		},
	}
}

func (a *App) runProjectCreate(c *urfave.Context) error {
	r, err := a.store()
	if err != nil {
		return err
	}
	p := &domain.Project{Name: c.String("name"), SourceLang: domain.NormalizeLocale(c.String("source-lang"))}
	if err := r.Projects.Create(c.Context, p); err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "project %d created\n", p.ID)
	return nil
}

func (a *App) runProjectList(c *urfave.Context) error {
	r, err := a.store()
	if err != nil {
		return err
	}
	projects, err := r.Projects.List(c.Context)
	if err != nil {
		return err
	}
	tw := newTable(a.Stdout)
	fmt.Fprintln(tw, "ID\tNAME\tSOURCE\tLOCALES\tFILES\tCREATED")
	for _, p := range projects {
		locales, err := r.Projects.ListLocales(c.Context, p.ID)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(locales))
		for _, l := range locales {
			names = append(names, l.Locale)
		}
		files, err := r.Files.ListByProject(c.Context, p.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n", p.ID, p.Name, p.SourceLang, strings.Join(names, ","), len(files), humanize.Time(p.CreatedAt))
	}
	return tw.Flush()
}

func (a *App) importCommand() *urfave.Command {
	return &urfave.Command{
		Name:      "import",
		Usage:     "store catalogs in a project",
		ArgsUsage: "FILE...",
		Flags: []urfave.Flag{
			&urfave.Int64Flag{Name: "project", Required: true, Usage: "project id"},
			&urfave.StringFlag{Name: "format", Usage: "input format (default: by extension)"},
			&urfave.StringFlag{Name: "locale", Usage: "override the catalog language"},
		},
		Action: a.runImport,
	}
}

func (a *App) runImport(c *urfave.Context) error {
	if c.NArg() == 0 {
		return urfave.Exit("import: no files given", 2)
	}
	r, err := a.store()
	if err != nil {
		return err
	}
	if _, err := r.Projects.Get(c.Context, c.Int64("project")); err != nil {
		return fmt.Errorf("project %d: %w", c.Int64("project"), err)
	}
	svc := a.importer(r)
	for _, path := range c.Args().Slice() {
		data, err := a.readInput(path)
		if err != nil {
			return err
		}
		res, err := svc.Import(c.Context, importer.ImportArgs{
			ProjectID: c.Int64("project"),
			Filename:  filepath.ToSlash(path),
			Format:    c.String("format"),
			Locale:    c.String("locale"),
			Content:   data,
		})
		if err != nil {
			return err
		}
		note := ""
		if res.Unchanged {
			note = " (unchanged)"
		}
		fmt.Fprintf(a.Stdout, "%s: file %d, %s, %s%s\n", path, res.FileID, english.Plural(res.Units, "unit", ""), english.Plural(res.Translations, "translation", ""), note)
	}
	return nil
}

func (a *App) exportCommand() *urfave.Command {
	return &urfave.Command{
		Name:      "export",
		Usage:     "write a stored file in a locale",
		ArgsUsage: "OUT",
		Flags: []urfave.Flag{
			&urfave.Int64Flag{Name: "file-id", Required: true},
			&urfave.StringFlag{Name: "locale", Usage: "target locale (default: the file's)"},
			&urfave.StringFlag{Name: "format", Usage: "output format (default: the file's)"},
			&urfave.BoolFlag{Name: "fallback", Usage: "fill untranslated entries with the source"},
			&urfave.StringFlag{Name: "language-name", Usage: "language written into headers"},
		},
		Action: a.runExport,
	}
}

func (a *App) runExport(c *urfave.Context) error {
	if c.NArg() != 1 {
		return urfave.Exit("export: OUT expected", 2)
	}
	r, err := a.store()
	if err != nil {
		return err
	}
	res, err := a.exporter(r).ExportFile(c.Context, exporterusecase.ExportArgs{
		FileID:         c.Int64("file-id"),
		Locale:         c.String("locale"),
		Fallback:       c.Bool("fallback"),
		OverrideFormat: c.String("format"),
		LanguageName:   c.String("language-name"),
	})
	if err != nil {
		return err
	}
	out := c.Args().First()
	if out == "-" {
		_, err = a.Stdout.Write(res.Content)
		return err
	}
	if err := fsutil.WriteFileAtomic(c.Context, out, res.Content); err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "%s: %s as %s (%s)\n", out, english.Plural(res.Items, "entry", ""), res.Format, humanize.Bytes(uint64(len(res.Content))))
	return nil
}

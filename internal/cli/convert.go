package cli

import (
	"fmt"
	"time"

	urfave "github.com/urfave/cli/v2"

	expcsv "linguist/internal/adapters/exporter/csv"
	parreg "linguist/internal/adapters/parser/registry"
	"linguist/internal/domain"
	"linguist/internal/fsutil"
	xlog "linguist/internal/log"
	"linguist/internal/ports"
	exporterusecase "linguist/internal/usecase/exporter"
)

func (a *App) convertCommand() *urfave.Command {
	return &urfave.Command{
		Name:      "convert",
		Usage:     "convert a catalog between ts, csv, paraglidejson and valvevdf",
		ArgsUsage: "IN OUT",
		Flags: []urfave.Flag{
			&urfave.StringFlag{Name: "from", Usage: "input format (default: by extension)"},
			&urfave.StringFlag{Name: "to", Usage: "output format (default: by extension)"},
			&urfave.StringFlag{Name: "locale", Usage: "override the catalog language"},
			&urfave.StringFlag{Name: "separator", Value: "comma", Usage: "csv separator: comma, semicolon or tab"},
		},
		Action: a.runConvert,
	}
}

func (a *App) runConvert(c *urfave.Context) error {
	if c.NArg() != 2 {
		return urfave.Exit("convert: IN and OUT expected", 2)
	}
	in, out := c.Args().Get(0), c.Args().Get(1)
	from, err := formatFor(c.String("from"), in)
	if err != nil {
		return err
	}
	to, err := formatFor(c.String("to"), out)
	if err != nil {
		return err
	}
	parser, ok := a.parsers.Get(from)
	if !ok {
		return fmt.Errorf("%s: %w", from, domain.ErrUnsupportedFormat)
	}
	exp, ok := a.exporters.Get(to)
	if !ok {
		return fmt.Errorf("%s: %w", to, domain.ErrUnsupportedFormat)
	}
	if _, isCSV := exp.(*expcsv.Exporter); isCSV {
		exp = &expcsv.Exporter{Comma: expcsv.SeparatorFromName(c.String("separator"))}
	}

	start := time.Now()
	data, err := a.readInput(in)
	if err != nil {
		return err
	}
	pr, err := parser.Parse(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", in, err)
	}
	meta := ports.ExportMeta{Language: pr.Locale, SourceLanguage: pr.SourceLocale}
	if l := c.String("locale"); l != "" {
		meta.Language = domain.NormalizeLocale(l)
	}
	body, err := exp.Export(meta, exporterusecase.ItemsFromParse(pr))
	if err != nil {
		return err
	}
	if out == "-" {
		_, err = a.Stdout.Write(body)
		return err
	}
	if err := fsutil.WriteFileAtomic(c.Context, out, body); err != nil {
		return err
	}
	logger := xlog.WithComponent("convert")
	logger.Info().
		Str("event", "convert.done").
		Str("from", from).
		Str("to", to).
		Int("units", len(pr.Units)).
		Str("took", since(start)).
		Msg("catalog converted")
	return nil
}

func formatFor(explicit, path string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if f, ok := parreg.Detect(path); ok {
		return f, nil
	}
	return "", fmt.Errorf("cannot tell the format of %s; use --from/--to", path)
}

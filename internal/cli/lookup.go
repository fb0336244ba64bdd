package cli

import (
	"fmt"

	urfave "github.com/urfave/cli/v2"

	"linguist/internal/catalog"
)

func (a *App) lookupCommand() *urfave.Command {
	return &urfave.Command{
		Name:      "lookup",
		Usage:     "translate a source phrase the way the application would",
		ArgsUsage: "SOURCE",
		Flags: []urfave.Flag{
			&urfave.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "catalog to use"},
			&urfave.StringFlag{Name: "dir", Usage: "directory of catalogs; pick one with --locale"},
			&urfave.StringSliceFlag{Name: "locale", Aliases: []string{"l"}, Usage: "preferred locale (repeatable, best first)"},
			&urfave.StringFlag{Name: "context", Required: true, Usage: "context name, e.g. nmc::DkNoMacs"},
			&urfave.StringFlag{Name: "comment", Usage: "disambiguation comment"},
			&urfave.IntFlag{Name: "n", Value: -1, Usage: "count for numerus messages"},
			&urfave.StringSliceFlag{Name: "arg", Usage: "value for %1, %2, ... (repeatable)"},
			&urfave.BoolFlag{Name: "skip-unfinished", Usage: "ignore unfinished translations"},
		},
		Action: a.runLookup,
	}
}

func (a *App) runLookup(c *urfave.Context) error {
	if c.NArg() != 1 {
		return urfave.Exit("lookup: exactly one SOURCE expected", 2)
	}
	opts := catalog.Options{SkipUnfinished: c.Bool("skip-unfinished")}
	var cat *catalog.Catalog
	switch {
	case c.String("file") != "":
		var err error
		if cat, err = catalog.Load(c.String("file"), opts); err != nil {
			return err
		}
	case c.String("dir") != "":
		set, err := catalog.LoadDir(c.String("dir"), opts)
		if err != nil {
			return err
		}
		cat = set.Match(c.StringSlice("locale")...)
	default:
		return urfave.Exit("lookup: --file or --dir is required", 2)
	}
	source := c.Args().First()
	var out string
	if n := c.Int("n"); n >= 0 {
		out = cat.TranslateN(c.String("context"), source, c.String("comment"), n)
	} else {
		out = cat.Translate(c.String("context"), source, c.String("comment"))
	}
	if args := c.StringSlice("arg"); len(args) > 0 {
		out = catalog.Arg(out, args...)
	}
	fmt.Fprintln(a.Stdout, out)
	return nil
}

package cli

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize/english"
	urfave "github.com/urfave/cli/v2"

	"linguist/internal/lint"
)

func (a *App) lintCommand() *urfave.Command {
	return &urfave.Command{
		Name:      "lint",
		Usage:     "check catalogs for structural and translation problems",
		ArgsUsage: "FILE|DIR...",
		Flags: []urfave.Flag{
			&urfave.BoolFlag{Name: "strict", Usage: "fail on warnings too"},
			&urfave.StringFlag{Name: "source-root", Usage: "resolve <location> paths against DIR"},
			&urfave.StringSliceFlag{Name: "disable", Usage: "disable a rule (repeatable)"},
			&urfave.StringFlag{Name: "format", Value: "text", Usage: "text or json"},
			&urfave.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only print files with issues"},
		},
		Action: a.runLint,
	}
}

func (a *App) lintOptions(c *urfave.Context) (lint.Options, error) {
	opts := a.cfg.LintOptions()
	if c.IsSet("source-root") {
		opts.SourceRoot = c.String("source-root")
	}
	for _, r := range c.StringSlice("disable") {
		rule := lint.Rule(r)
		if !lint.KnownRule(rule) {
			return opts, fmt.Errorf("unknown rule %q", r)
		}
		opts.Disabled = append(opts.Disabled, rule)
	}
	return opts, nil
}

func (a *App) runLint(c *urfave.Context) error {
	if c.NArg() == 0 {
		return urfave.Exit("lint: no catalogs given", 2)
	}
	opts, err := a.lintOptions(c)
	if err != nil {
		return urfave.Exit(err.Error(), 2)
	}
	paths, err := expandCatalogs(c.Args().Slice())
	if err != nil {
		return err
	}
	reports, err := lint.New(opts).LintAll(c.Context, paths)
	if err != nil {
		return err
	}
	strict := c.Bool("strict") || a.cfg.Lint.Strict
	if c.String("format") == "json" {
		if err := writeJSON(a.Stdout, reports); err != nil {
			return err
		}
	} else {
		for _, rep := range reports {
			printReport(a.Stdout, rep, c.Bool("quiet"))
		}
	}
	failed := 0
	for _, rep := range reports {
		if rep.Failed(strict) {
			failed++
		}
	}
	if failed > 0 {
		return urfave.Exit(fmt.Sprintf("%s of %d failed", english.Plural(failed, "catalog", ""), len(reports)), 1)
	}
	return nil
}

func printReport(w io.Writer, rep lint.Report, quiet bool) {
	if quiet && len(rep.Issues) == 0 {
		return
	}
	for _, is := range rep.Issues {
		loc := rep.File
		if is.Line > 0 {
			loc = fmt.Sprintf("%s:%d", rep.File, is.Line)
		}
		fmt.Fprintf(w, "%s: %s %s: %s", loc, severityLabel(is.Severity), dimColor(string(is.Rule)), is.Message)
		if is.Context != "" {
			fmt.Fprintf(w, " %s", dimColor("["+is.Context+"]"))
		}
		fmt.Fprintln(w)
	}
	status := okColor("ok")
	if !rep.Valid() {
		status = errorColor("invalid")
	}
	fmt.Fprintf(w, "%s: %s, %s, %s, %s (%s)\n",
		rep.File,
		english.Plural(rep.Messages, "message", ""),
		english.Plural(rep.Count(lint.SeverityError), "error", ""),
		english.Plural(rep.Count(lint.SeverityWarning), "warning", ""),
		english.Plural(rep.Count(lint.SeverityInfo), "note", ""),
		status)
}

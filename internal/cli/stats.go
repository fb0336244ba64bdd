package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	urfave "github.com/urfave/cli/v2"

	"linguist/internal/adapters/parser/qtts"
	"linguist/internal/usecase/stats"
)

type fileStats struct {
	File  string `json:"file"`
	Bytes int64  `json:"bytes"`
	stats.Summary
}

func (a *App) statsCommand() *urfave.Command {
	return &urfave.Command{
		Name:      "stats",
		Usage:     "show translation progress per context",
		ArgsUsage: "FILE|DIR...",
		Flags: []urfave.Flag{
			&urfave.StringFlag{Name: "format", Value: "text", Usage: "text or json"},
			&urfave.BoolFlag{Name: "contexts", Value: true, Usage: "list every context"},
		},
		Action: a.runStats,
	}
}

func (a *App) runStats(c *urfave.Context) error {
	if c.NArg() == 0 {
		return urfave.Exit("stats: no catalogs given", 2)
	}
	paths, err := expandCatalogs(c.Args().Slice())
	if err != nil {
		return err
	}
	var all []fileStats
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		doc, err := qtts.DecodeBytes(data)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		all = append(all, fileStats{File: p, Bytes: int64(len(data)), Summary: stats.Summarize(doc)})
	}
	if c.String("format") == "json" {
		return writeJSON(a.Stdout, all)
	}
	for i, fs := range all {
		if i > 0 {
			fmt.Fprintln(a.Stdout)
		}
		fmt.Fprintf(a.Stdout, "%s (%s, %s, %s)\n", fs.File, fs.Language, humanize.Bytes(uint64(fs.Bytes)), english.Plural(fs.Total, "message", ""))
		tw := newTable(a.Stdout)
		fmt.Fprintln(tw, "CONTEXT\tTOTAL\tFINISHED\tUNFINISHED\tEMPTY\tOBSOLETE\tDONE")
		if c.Bool("contexts") {
			for _, cs := range fs.Contexts {
				writeCounts(tw, cs.Name, cs.Counts)
			}
		}
		writeCounts(tw, "(all)", fs.Counts)
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func writeCounts(w interface{ Write([]byte) (int, error) }, name string, c stats.Counts) {
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%.1f%%\n",
		name,
		humanize.Comma(int64(c.Total)),
		humanize.Comma(int64(c.Finished)),
		humanize.Comma(int64(c.Unfinished)),
		humanize.Comma(int64(c.Empty)),
		humanize.Comma(int64(c.Obsolete+c.Vanished)),
		c.Completion()*100)
}

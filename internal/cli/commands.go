package cli

import (
	"io"

	urfave "github.com/urfave/cli/v2"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// New builds the command tree. Exit codes are carried by the returned
// error as urfave.ExitCoder; the caller decides how to exit.
func New(stdout, stderr io.Writer) *urfave.App {
	a := newApp(stdout, stderr)
	return &urfave.App{
		Name:      "linguist",
		Usage:     "lint, query and manage Qt Linguist translation catalogs",
		Version:   Version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []urfave.Flag{
			&urfave.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config file (default linguist.yaml when present)", EnvVars: []string{"LINGUIST_CONFIG"}},
			&urfave.StringFlag{Name: "db", Usage: "project database path"},
			&urfave.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		},
		Before:                 a.setup,
		After:                  func(*urfave.Context) error { return a.close() },
		ExitErrHandler:         func(*urfave.Context, error) {},
		EnableBashCompletion:   true,
		UseShortOptionHandling: true,
		Commands: []*urfave.Command{
			a.lintCommand(),
			a.watchCommand(),
			a.statsCommand(),
			a.lookupCommand(),
			a.convertCommand(),
			a.projectCommand(),
			a.importCommand(),
			a.exportCommand(),
			a.filesCommand(),
			a.unitsCommand(),
			a.setCommand(),
			a.providerCommand(),
			a.translateCommand(),
			a.jobsCommand(),
		},
	}
}

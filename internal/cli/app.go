// Package cli implements the linguist command line. Commands that only
// read catalogs never touch the project database; the store commands open
// it lazily.
package cli

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	urfave "github.com/urfave/cli/v2"

	"linguist/internal/adapters/db/sqlite"
	expcsv "linguist/internal/adapters/exporter/csv"
	expjson "linguist/internal/adapters/exporter/paraglidejson"
	expts "linguist/internal/adapters/exporter/qtts"
	exreg "linguist/internal/adapters/exporter/registry"
	expvdf "linguist/internal/adapters/exporter/valvevdf"
	llmfactory "linguist/internal/adapters/llm/factory"
	csvparser "linguist/internal/adapters/parser/csv"
	parjson "linguist/internal/adapters/parser/paraglidejson"
	parts "linguist/internal/adapters/parser/qtts"
	parreg "linguist/internal/adapters/parser/registry"
	parvdf "linguist/internal/adapters/parser/valvevdf"
	"linguist/internal/adapters/prompt"
	"linguist/internal/config"
	"linguist/internal/domain"
	xlog "linguist/internal/log"
	"linguist/internal/ports"
	exporterusecase "linguist/internal/usecase/exporter"
	"linguist/internal/usecase/importer"
	jobsusecase "linguist/internal/usecase/jobs"
	translatorusecase "linguist/internal/usecase/translator"
)

// App holds configuration and lazily built services shared by commands.
type App struct {
	Stdout io.Writer
	Stderr io.Writer

	cfg       config.Config
	db        *sql.DB
	repos     *sqlite.Repos
	parsers   *parreg.Registry
	exporters *exreg.Registry
}

func newApp(stdout, stderr io.Writer) *App {
	return &App{
		Stdout:    stdout,
		Stderr:    stderr,
		parsers:   NewParserRegistry(),
		exporters: NewExporterRegistry(),
	}
}

// NewParserRegistry registers every supported input format.
func NewParserRegistry() *parreg.Registry {
	r := parreg.New()
	r.Register(parts.New())
	r.Register(csvparser.New())
	r.Register(parjson.New())
	r.Register(parvdf.New())
	return r
}

// NewExporterRegistry registers every supported output format.
func NewExporterRegistry() *exreg.Registry {
	r := exreg.New()
	r.Register(expts.New())
	r.Register(expcsv.New())
	r.Register(expjson.New())
	r.Register(expvdf.New())
	return r
}

// setup loads configuration, applies global flag overrides and configures
// logging. It runs before every command.
func (a *App) setup(c *urfave.Context) error {
	cfg, err := config.NewLoader(c.String("config")).Load()
	if err != nil {
		return err
	}
	if v := c.String("db"); v != "" {
		cfg.Database.Path = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.Log.Level = v
	}
	a.cfg = cfg
	xlog.Configure(xlog.Config{
		Level:   cfg.Log.Level,
		Output:  a.Stderr,
		Console: cfg.Log.Format != "json",
	})
	return nil
}

// store opens the project database on first use.
func (a *App) store() (*sqlite.Repos, error) {
	if a.repos != nil {
		return a.repos, nil
	}
	db, err := sqlite.Init(a.cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", a.cfg.Database.Path, err)
	}
	a.db = db
	a.repos = sqlite.NewRepos(db)
	logger := xlog.WithComponent("cli")
	logger.Debug().Str("event", "store.opened").Str("path", a.cfg.Database.Path).Msg("database ready")
	return a.repos, nil
}

func (a *App) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db, a.repos = nil, nil
	return err
}

func (a *App) buildProvider(p *domain.Provider) (ports.Provider, error) {
	return llmfactory.FromProvider(p, a.cfg.Translate.Timeout)
}

func (a *App) importer(r *sqlite.Repos) *importer.Service {
	return importer.New(r.Files, r.Units, r.Translations, r.Projects, a.parsers)
}

func (a *App) exporter(r *sqlite.Repos) *exporterusecase.Service {
	return exporterusecase.New(r.Files, r.Units, r.Translations, r.Projects, a.exporters)
}

func (a *App) translator(r *sqlite.Repos) *translatorusecase.Service {
	return translatorusecase.New(translatorusecase.Deps{
		Providers:     r.Providers,
		Templates:     r.Templates,
		Cache:         r.Cache,
		Translations:  r.Translations,
		Prompt:        prompt.New(r.Templates),
		BuildProvider: a.buildProvider,
	})
}

func (a *App) runner(r *sqlite.Repos) *jobsusecase.Runner {
	run := jobsusecase.NewRunner(jobsusecase.Deps{
		Jobs:          r.Jobs,
		Files:         r.Files,
		Units:         r.Units,
		Projects:      r.Projects,
		Providers:     r.Providers,
		Translations:  r.Translations,
		BuildProvider: a.buildProvider,
	}, a.translator(r))
	if a.cfg.Translate.Timeout > 0 {
		run.ItemTimeout = a.cfg.Translate.Timeout
	}
	run.SetEmitter(jobsusecase.LogEmitter{Logger: xlog.WithComponent("jobs")})
	return run
}

// readInput reads a file argument; "-" is stdin.
func (a *App) readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func since(t time.Time) string { return time.Since(t).Round(time.Millisecond).String() }

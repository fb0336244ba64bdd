package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize/english"
	urfave "github.com/urfave/cli/v2"

	llmregistry "linguist/internal/adapters/llm/registry"
	"linguist/internal/adapters/db/sqlite"
	"linguist/internal/domain"
	"linguist/internal/ports"
)

func (a *App) providerCommand() *urfave.Command {
	return &urfave.Command{
		Name:  "provider",
		Usage: "configure machine translation providers",
		Subcommands: []*urfave.Command{
			{
				Name:  "add",
				Usage: "register a provider",
				Flags: []urfave.Flag{
					&urfave.StringFlag{Name: "type", Required: true, Usage: "ollama or openrouter"},
					&urfave.StringFlag{Name: "name", Required: true},
					&urfave.StringFlag{Name: "base-url"},
					&urfave.StringFlag{Name: "model"},
					&urfave.StringFlag{Name: "api-key", EnvVars: []string{"OPENROUTER_API_KEY"}},
					&urfave.BoolFlag{Name: "default", Usage: "make it the default provider"},
				},
				Action: a.runProviderAdd,
			},
			{Name: "list", Usage: "list providers", Action: a.runProviderList},
			{Name: "models", Usage: "list the models a provider offers", ArgsUsage: "ID", Action: a.runProviderModels},
			{Name: "test", Usage: "check connectivity (all providers without ID)", ArgsUsage: "[ID]", Action: a.runProviderTest},
			{Name: "use", Usage: "set the default provider", ArgsUsage: "ID", Action: a.runProviderUse},
		},
	}
}

func (a *App) runProviderAdd(c *urfave.Context) error {
	if !domain.SupportedProvider(c.String("type")) {
		return urfave.Exit(fmt.Sprintf("provider add: unknown type %q", c.String("type")), 2)
	}
	r, err := a.store()
	if err != nil {
		return err
	}
	p := &domain.Provider{
		Type:    strings.ToLower(c.String("type")),
		Name:    c.String("name"),
		BaseURL: c.String("base-url"),
		Model:   c.String("model"),
		APIKey:  c.String("api-key"),
	}
	// Rejects missing credentials before anything is stored.
	if _, err := a.buildProvider(p); err != nil {
		return err
	}
	if err := r.Providers.Create(c.Context, p); err != nil {
		return err
	}
	if c.Bool("default") {
		if err := r.Settings.Set(c.Context, domain.SettingDefaultProvider, strconv.FormatInt(p.ID, 10)); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.Stdout, "provider %d added\n", p.ID)
	return nil
}

func (a *App) runProviderList(c *urfave.Context) error {
	r, err := a.store()
	if err != nil {
		return err
	}
	list, err := r.Providers.List(c.Context)
	if err != nil {
		return err
	}
	def, _ := a.defaultProviderID(c.Context, r)
	tw := newTable(a.Stdout)
	fmt.Fprintln(tw, "ID\tTYPE\tNAME\tMODEL\tBASE URL\tAPI KEY\t")
	for _, p := range list {
		mark := ""
		if p.ID == def {
			mark = "default"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.Type, p.Name, p.Model, p.BaseURL, p.MaskedKey(), mark)
	}
	return tw.Flush()
}

func (a *App) providerArg(c *urfave.Context, r *sqlite.Repos) (*domain.Provider, error) {
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return nil, urfave.Exit("provider ID expected", 2)
	}
	return r.Providers.Get(c.Context, id)
}

func (a *App) runProviderModels(c *urfave.Context) error {
	r, err := a.store()
	if err != nil {
		return err
	}
	p, err := a.providerArg(c, r)
	if err != nil {
		return err
	}
	adapter, err := a.buildProvider(p)
	if err != nil {
		return err
	}
	models, err := adapter.ListModels(c.Context)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(models))
	for _, m := range models {
		names = append(names, m.Name)
	}
	if err := r.Providers.SaveModelCache(c.Context, p.ID, names); err != nil {
		return err
	}
	tw := newTable(a.Stdout)
	fmt.Fprintln(tw, "MODEL\tDESCRIPTION\tCONTEXT")
	for _, m := range models {
		ctxTokens := "-"
		if m.ContextTokens > 0 {
			ctxTokens = strconv.Itoa(m.ContextTokens)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Name, m.Description, ctxTokens)
	}
	return tw.Flush()
}

func (a *App) runProviderTest(c *urfave.Context) error {
	r, err := a.store()
	if err != nil {
		return err
	}
	var list []*domain.Provider
	if c.NArg() > 0 {
		p, err := a.providerArg(c, r)
		if err != nil {
			return err
		}
		list = []*domain.Provider{p}
	} else if list, err = r.Providers.List(c.Context); err != nil {
		return err
	}
	reg := llmregistry.New()
	for _, p := range list {
		var adapter ports.Provider
		if adapter, err = a.buildProvider(p); err != nil {
			adapter = brokenProvider{err}
		}
		reg.Register(p.Label(), adapter)
	}
	failed := 0
	results := reg.HealthCheck(c.Context)
	for _, name := range reg.Names() {
		if err := results[name]; err != nil {
			failed++
			fmt.Fprintf(a.Stdout, "%s: %s %v\n", name, errorColor("fail"), err)
			continue
		}
		fmt.Fprintf(a.Stdout, "%s: %s\n", name, okColor("ok"))
	}
	if failed > 0 {
		return urfave.Exit(fmt.Sprintf("%s failed", english.Plural(failed, "provider", "")), 1)
	}
	return nil
}

func (a *App) runProviderUse(c *urfave.Context) error {
	r, err := a.store()
	if err != nil {
		return err
	}
	p, err := a.providerArg(c, r)
	if err != nil {
		return err
	}
	if err := r.Settings.Set(c.Context, domain.SettingDefaultProvider, strconv.FormatInt(p.ID, 10)); err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "default provider: %s\n", p.Label())
	return nil
}

// defaultProviderID resolves config first, then the stored setting.
func (a *App) defaultProviderID(ctx context.Context, r *sqlite.Repos) (int64, error) {
	if a.cfg.Translate.ProviderID > 0 {
		return a.cfg.Translate.ProviderID, nil
	}
	v, err := r.Settings.Get(ctx, domain.SettingDefaultProvider)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, errors.New("no provider given and no default set; use --provider or `linguist provider use ID`")
		}
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

// brokenProvider reports a construction error through the health check.
type brokenProvider struct{ err error }

func (b brokenProvider) Translate(context.Context, ports.Segment, ports.TranslateParams) (ports.TranslateResult, error) {
	return ports.TranslateResult{}, b.err
}

func (b brokenProvider) ListModels(context.Context) ([]ports.ModelInfo, error) { return nil, b.err }

func (b brokenProvider) Test(context.Context) error { return b.err }

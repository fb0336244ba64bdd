package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	urfave "github.com/urfave/cli/v2"

	"linguist/internal/adapters/db/sqlite"
	"linguist/internal/domain"
	jobsusecase "linguist/internal/usecase/jobs"
)

func (a *App) translateCommand() *urfave.Command {
	return &urfave.Command{
		Name:  "translate",
		Usage: "pre-fill missing translations of a stored file with a provider",
		Flags: []urfave.Flag{
			&urfave.Int64Flag{Name: "file-id", Required: true},
			&urfave.StringSliceFlag{Name: "locale", Required: true, Usage: "target locale (repeatable)"},
			&urfave.Int64Flag{Name: "provider", Usage: "provider id (default: configured default)"},
			&urfave.StringFlag{Name: "model", Usage: "model (default: the provider's)"},
		},
		Action: a.runTranslate,
	}
}

func (a *App) runTranslate(c *urfave.Context) error {
	r, err := a.store()
	if err != nil {
		return err
	}
	f, err := r.Files.Get(c.Context, c.Int64("file-id"))
	if err != nil {
		return fmt.Errorf("file %d: %w", c.Int64("file-id"), err)
	}
	providerID := c.Int64("provider")
	if providerID == 0 {
		if providerID, err = a.defaultProviderID(c.Context, r); err != nil {
			return err
		}
	}
	model := c.String("model")
	if model == "" {
		model = a.cfg.Translate.Model
	}
	runner := a.runner(r)
	start := time.Now()
	id, err := runner.StartTranslateFile(c.Context, f.ProjectID, providerID, jobsusecase.TranslateFileParams{
		FileID:        f.ID,
		TargetLocales: c.StringSlice("locale"),
		Model:         model,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "job %d started\n", id)
	job, err := runner.Wait(c.Context, id)
	if err != nil {
		// Interrupted: let the runner record the cancellation before exiting.
		runner.Cancel(id)
		if job, err = runner.Wait(context.WithoutCancel(c.Context), id); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.Stdout, "job %d %s: %d/%d in %s\n", job.ID, statusLabel(job.Status), job.Progress, job.Total, since(start))
	if job.Status == domain.JobFailed {
		return urfave.Exit("every item failed; see `linguist jobs show "+strconv.FormatInt(job.ID, 10)+"`", 1)
	}
	return nil
}

func (a *App) jobsCommand() *urfave.Command {
	return &urfave.Command{
		Name:  "jobs",
		Usage: "inspect translation jobs",
		Subcommands: []*urfave.Command{
			{
				Name:  "list",
				Usage: "list recent jobs",
				Flags: []urfave.Flag{
					&urfave.IntFlag{Name: "limit", Value: 20},
				},
				Action: a.runJobsList,
			},
			{
				Name:      "show",
				Usage:     "show the items and log of a job",
				ArgsUsage: "ID",
				Flags: []urfave.Flag{
					&urfave.IntFlag{Name: "log-lines", Value: 50},
					&urfave.StringFlag{Name: "format", Value: "text", Usage: "text or json"},
				},
				Action: a.runJobsShow,
			},
			{
				Name:      "cancel",
				Usage:     "mark an unfinished job as canceled",
				ArgsUsage: "ID",
				Action:    a.runJobsCancel,
			},
		},
	}
}

func (a *App) runJobsList(c *urfave.Context) error {
	r, err := a.store()
	if err != nil {
		return err
	}
	list, err := r.Jobs.List(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}
	tw := newTable(a.Stdout)
	fmt.Fprintln(tw, "ID\tTYPE\tSTATUS\tPROGRESS\tUPDATED")
	for _, j := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d/%d\t%s\n", j.ID, j.Type, statusLabel(j.Status), j.Progress, j.Total, humanize.Time(j.UpdatedAt))
	}
	return tw.Flush()
}

func jobArg(c *urfave.Context, r *sqlite.Repos) (*domain.Job, error) {
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return nil, urfave.Exit("job ID expected", 2)
	}
	return r.Jobs.Get(c.Context, id)
}

func (a *App) runJobsShow(c *urfave.Context) error {
	r, err := a.store()
	if err != nil {
		return err
	}
	job, err := jobArg(c, r)
	if err != nil {
		return err
	}
	items, err := r.Jobs.ListItems(c.Context, job.ID)
	if err != nil {
		return err
	}
	logs, err := r.Jobs.ListLogs(c.Context, job.ID, c.Int("log-lines"))
	if err != nil {
		return err
	}
	if c.String("format") == "json" {
		return writeJSON(a.Stdout, map[string]any{"job": job, "items": items, "logs": logs})
	}
	fmt.Fprintf(a.Stdout, "job %d (%s) %s %d/%d, created %s\n", job.ID, job.Type, statusLabel(job.Status),
		job.Progress, job.Total, humanize.Time(job.CreatedAt))
	if len(items) > 0 {
		fmt.Fprintln(a.Stdout)
		tw := newTable(a.Stdout)
		fmt.Fprintln(tw, "UNIT\tLOCALE\tSTATUS\tERROR")
		for _, it := range items {
			unit, loc := "-", "-"
			if it.UnitID != nil {
				unit = strconv.FormatInt(*it.UnitID, 10)
			}
			if it.Locale != nil {
				loc = *it.Locale
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", unit, loc, statusLabel(it.Status), it.Error)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	if len(logs) > 0 {
		fmt.Fprintln(a.Stdout)
		for _, l := range logs {
			fmt.Fprintf(a.Stdout, "%s %-5s %s\n", dimColor(l.Time.Local().Format(time.DateTime)), l.Level, l.Message)
		}
	}
	return nil
}

// runJobsCancel closes out a job whose process went away. Jobs started by
// this process are canceled through the runner instead.
func (a *App) runJobsCancel(c *urfave.Context) error {
	r, err := a.store()
	if err != nil {
		return err
	}
	job, err := jobArg(c, r)
	if err != nil {
		return err
	}
	if job.Finished() {
		fmt.Fprintf(a.Stdout, "job %d already %s\n", job.ID, job.Status)
		return nil
	}
	if err := r.Jobs.UpdateProgress(c.Context, job.ID, job.Progress, job.Total, domain.JobCanceled); err != nil {
		return err
	}
	_ = r.Jobs.AddLog(c.Context, &domain.JobLog{JobID: job.ID, Level: "warn", Message: "job canceled from the command line"})
	fmt.Fprintf(a.Stdout, "job %d canceled\n", job.ID)
	return nil
}

func statusLabel(s string) string {
	switch s {
	case domain.JobDone:
		return okColor(s)
	case domain.JobFailed:
		return errorColor(s)
	case domain.JobCanceled:
		return warningColor(s)
	default:
		return s
	}
}

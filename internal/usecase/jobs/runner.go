// Package jobs runs machine translation jobs in the background and records
// their progress in the job tables.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"linguist/internal/domain"
	xlog "linguist/internal/log"
	"linguist/internal/ports"
	"linguist/internal/usecase/translator"
)

// DefaultItemTimeout bounds a single provider call.
const DefaultItemTimeout = 60 * time.Second

type Deps struct {
	Jobs         ports.JobRepository
	Files        ports.FileRepository
	Units        ports.UnitRepository
	Projects     ports.ProjectRepository
	Providers    ports.ProviderRepository
	Translations ports.TranslationRepository
	// BuildProvider is used to resolve model labels into model IDs.
	BuildProvider func(*domain.Provider) (ports.Provider, error)
}

type EventEmitter interface {
	Emit(name string, payload any)
}

type Runner struct {
	d           Deps
	trans       *translator.Service
	em          EventEmitter
	ItemTimeout time.Duration

	mu     sync.Mutex
	active map[int64]*running
}

type running struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRunner(d Deps, trans *translator.Service) *Runner {
	return &Runner{d: d, trans: trans, ItemTimeout: DefaultItemTimeout, active: map[int64]*running{}}
}

func (r *Runner) SetEmitter(em EventEmitter) { r.em = em }

type TranslateFileParams struct {
	FileID        int64    `json:"file_id"`
	TargetLocales []string `json:"target_locales"`
	Model         string   `json:"model"`
}

type TranslateUnitsParams struct {
	UnitIDs []int64  `json:"unit_ids"`
	Locales []string `json:"locales"`
	Model   string   `json:"model"`
}

// work is one unit/locale pair awaiting a translation.
type work struct {
	unit   *domain.Unit
	locale string
}

// StartTranslateFile queues every message of a file that lacks a usable
// translation in the target locales.
func (r *Runner) StartTranslateFile(ctx context.Context, projectID, providerID int64, p TranslateFileParams) (int64, error) {
	units, err := r.d.Units.ListByFile(ctx, p.FileID)
	if err != nil {
		return 0, fmt.Errorf("list units: %w", err)
	}
	items, err := r.pending(ctx, units, p.TargetLocales)
	if err != nil {
		return 0, err
	}
	p.Model = r.resolveModel(ctx, providerID, p.Model)
	return r.start(ctx, domain.JobTranslateFile, projectID, providerID, p, p.Model, items)
}

// StartTranslateUnits queues specific units.
func (r *Runner) StartTranslateUnits(ctx context.Context, projectID, providerID int64, p TranslateUnitsParams) (int64, error) {
	units := make([]*domain.Unit, 0, len(p.UnitIDs))
	for _, id := range p.UnitIDs {
		u, err := r.d.Units.Get(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("unit %d: %w", id, err)
		}
		units = append(units, u)
	}
	items, err := r.pending(ctx, units, p.Locales)
	if err != nil {
		return 0, err
	}
	p.Model = r.resolveModel(ctx, providerID, p.Model)
	return r.start(ctx, domain.JobTranslateUnits, projectID, providerID, p, p.Model, items)
}

// StartTranslateUnit is StartTranslateUnits for one unit.
func (r *Runner) StartTranslateUnit(ctx context.Context, projectID, providerID, unitID int64, locales []string, model string) (int64, error) {
	return r.StartTranslateUnits(ctx, projectID, providerID, TranslateUnitsParams{UnitIDs: []int64{unitID}, Locales: locales, Model: model})
}

// NeedsTranslation reports whether a stored translation should be
// (re)generated. Finished and reviewed work is never overwritten.
func NeedsTranslation(t *domain.Translation) bool {
	if t == nil {
		return true
	}
	if !t.Active() || t.Status == domain.StatusMachine {
		return false
	}
	empty := strings.TrimSpace(t.Text) == ""
	for _, f := range t.Forms {
		if strings.TrimSpace(f) != "" {
			empty = false
		}
	}
	return empty || t.Status == domain.StatusUnfinished
}

func (r *Runner) pending(ctx context.Context, units []*domain.Unit, locales []string) ([]work, error) {
	var out []work
	for _, loc := range locales {
		loc = domain.NormalizeLocale(loc)
		for _, u := range units {
			t, err := r.d.Translations.Get(ctx, u.ID, loc)
			if err != nil {
				return nil, fmt.Errorf("translation %d/%s: %w", u.ID, loc, err)
			}
			if NeedsTranslation(t) {
				out = append(out, work{unit: u, locale: loc})
			}
		}
	}
	return out, nil
}

func (r *Runner) start(ctx context.Context, typ string, projectID, providerID int64, params any, model string, items []work) (int64, error) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return 0, err
	}
	job := &domain.Job{
		Type:       typ,
		Status:     domain.JobQueued,
		ProjectID:  &projectID,
		ProviderID: &providerID,
		ParamsRaw:  string(paramsJSON),
		Total:      len(items),
	}
	id, err := r.d.Jobs.Create(ctx, job)
	if err != nil {
		return 0, fmt.Errorf("create job: %w", err)
	}
	srcLang := ""
	if p, err := r.d.Projects.Get(ctx, projectID); err == nil {
		srcLang = p.SourceLang
	}

	cctx, cancel := context.WithCancel(xlog.ContextWithJobID(context.Background(), id))
	run := &running{cancel: cancel, done: make(chan struct{})}
	r.mu.Lock()
	r.active[id] = run
	r.mu.Unlock()

	_ = r.d.Jobs.UpdateProgress(ctx, id, 0, len(items), domain.JobRunning)
	r.emit("job.started", map[string]any{"job_id": id, "total": len(items), "model": model, "provider_id": providerID})
	r.log(ctx, id, "info", fmt.Sprintf("job started: provider=%d model=%s items=%d", providerID, model, len(items)))
	go func() {
		defer close(run.done)
		defer r.finish(id)
		r.run(cctx, id, providerID, srcLang, model, items)
	}()
	return id, nil
}

func (r *Runner) run(ctx context.Context, jobID, providerID int64, srcLang, model string, items []work) {
	// Bookkeeping must survive cancellation of the work context.
	bg := context.WithoutCancel(ctx)
	total := len(items)
	done, failed := 0, 0
	canceled := func() {
		_ = r.d.Jobs.UpdateProgress(bg, jobID, done, total, domain.JobCanceled)
		r.emit("job.progress", map[string]any{"job_id": jobID, "done": done, "total": total, "status": domain.JobCanceled})
		r.log(bg, jobID, "warn", "job canceled")
	}
	for _, it := range items {
		if ctx.Err() != nil {
			canceled()
			return
		}
		u, loc := it.unit, it.locale
		itemID, _ := r.d.Jobs.AddItem(bg, &domain.JobItem{JobID: jobID, UnitID: &u.ID, Locale: &loc, Status: domain.JobRunning})
		r.emit("job.item.start", map[string]any{"job_id": jobID, "unit_id": u.ID, "key": u.Key, "locale": loc, "model": model})

		timeout := r.ItemTimeout
		if timeout <= 0 {
			timeout = DefaultItemTimeout
		}
		ictx, cancel := context.WithTimeout(ctx, timeout)
		out, err := r.trans.TranslateOne(ictx, translator.TranslateArgs{ProviderID: providerID, Unit: u, SourceLang: srcLang, TargetLang: loc, Model: model})
		cancel()
		if err == nil {
			tr := &domain.Translation{UnitID: u.ID, Locale: loc, Text: out.Text, Forms: out.Forms, Status: domain.StatusMachine, ProviderID: &providerID}
			err = r.d.Translations.Upsert(bg, tr)
		}
		if err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				_ = r.d.Jobs.UpdateItem(bg, itemID, domain.JobCanceled, "")
				continue
			}
			failed++
			_ = r.d.Jobs.UpdateItem(bg, itemID, domain.JobFailed, err.Error())
			r.log(bg, jobID, "error", fmt.Sprintf("%s -> %s: %v", u.Key, loc, err))
			r.emit("job.item.done", map[string]any{"job_id": jobID, "unit_id": u.ID, "key": u.Key, "locale": loc, "error": err.Error()})
		} else {
			_ = r.d.Jobs.UpdateItem(bg, itemID, domain.JobDone, "")
			r.emit("job.item.done", map[string]any{"job_id": jobID, "unit_id": u.ID, "key": u.Key, "locale": loc, "text": out.Text})
		}
		done++
		_ = r.d.Jobs.UpdateProgress(bg, jobID, done, total, domain.JobRunning)
		r.emit("job.progress", map[string]any{"job_id": jobID, "done": done, "total": total, "status": domain.JobRunning})
	}
	if ctx.Err() != nil {
		canceled()
		return
	}
	status := domain.JobDone
	if total > 0 && failed == total {
		status = domain.JobFailed
	}
	_ = r.d.Jobs.UpdateProgress(bg, jobID, done, total, status)
	r.emit("job.progress", map[string]any{"job_id": jobID, "done": done, "total": total, "failed": failed, "status": status})
	r.log(bg, jobID, "info", fmt.Sprintf("job finished: status=%s done=%d failed=%d", status, done, failed))
}

func (r *Runner) finish(jobID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if run, ok := r.active[jobID]; ok {
		run.cancel()
		delete(r.active, jobID)
	}
}

// Cancel stops a running job. It reports false when the job is not active.
func (r *Runner) Cancel(jobID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.active[jobID]
	if ok {
		run.cancel()
	}
	return ok
}

// Wait blocks until the job leaves the runner or ctx ends, then returns
// the stored job.
func (r *Runner) Wait(ctx context.Context, jobID int64) (*domain.Job, error) {
	r.mu.Lock()
	run, ok := r.active[jobID]
	r.mu.Unlock()
	if ok {
		select {
		case <-run.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.d.Jobs.Get(ctx, jobID)
}

// resolveModel falls back to the provider default and maps human readable
// OpenRouter labels onto model IDs.
func (r *Runner) resolveModel(ctx context.Context, providerID int64, model string) string {
	prov, err := r.d.Providers.Get(ctx, providerID)
	if err != nil {
		return model
	}
	if strings.TrimSpace(model) == "" {
		return prov.Model
	}
	if strings.ToLower(prov.Type) != domain.ProviderOpenRouter || r.d.BuildProvider == nil {
		return model
	}
	// Labels carry spaces or parentheses; IDs never do.
	if !strings.ContainsAny(model, " ()") {
		return model
	}
	adapter, err := r.d.BuildProvider(prov)
	if err != nil {
		return model
	}
	list, err := adapter.ListModels(ctx)
	if err != nil {
		return model
	}
	for _, mi := range list {
		if strings.EqualFold(mi.Name, model) || strings.EqualFold(mi.Description, model) {
			return mi.Name
		}
	}
	return model
}

func (r *Runner) log(ctx context.Context, jobID int64, level, message string) {
	_ = r.d.Jobs.AddLog(ctx, &domain.JobLog{JobID: jobID, Level: level, Message: message})
	r.emit("job.log", map[string]any{"job_id": jobID, "level": level, "message": message, "ts": time.Now().UTC().Format(time.RFC3339)})
}

func (r *Runner) emit(name string, payload any) {
	if r.em != nil {
		r.em.Emit(name, payload)
	}
}

package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	urfave "github.com/urfave/cli/v2"

	"linguist/internal/lint"
	xlog "linguist/internal/log"
)

const watchDebounce = 300 * time.Millisecond

func (a *App) watchCommand() *urfave.Command {
	return &urfave.Command{
		Name:      "watch",
		Usage:     "re-lint catalogs whenever they change",
		ArgsUsage: "FILE|DIR...",
		Flags: []urfave.Flag{
			&urfave.StringFlag{Name: "source-root", Usage: "resolve <location> paths against DIR"},
			&urfave.StringSliceFlag{Name: "disable", Usage: "disable a rule (repeatable)"},
		},
		Action: a.runWatch,
	}
}

func (a *App) runWatch(c *urfave.Context) error {
	if c.NArg() == 0 {
		return urfave.Exit("watch: no catalogs given", 2)
	}
	opts, err := a.lintOptions(c)
	if err != nil {
		return urfave.Exit(err.Error(), 2)
	}
	w, err := newCatalogWatcher(c.Args().Slice())
	if err != nil {
		return err
	}
	defer w.Close()

	linter := lint.New(opts)
	logger := xlog.WithComponent("watch")
	lintOne := func(path string) {
		rep, err := linter.LintFile(c.Context, path)
		if err != nil {
			logger.Warn().Err(err).Str("file", path).Msg("lint failed")
			return
		}
		printReport(a.Stdout, rep, false)
	}
	initial, err := expandCatalogs(c.Args().Slice())
	if err != nil {
		return err
	}
	for _, p := range initial {
		lintOne(p)
	}
	return w.Run(c.Context, lintOne)
}

// catalogWatcher reports changed .ts files, coalescing bursts of events
// per file (editors often write, chmod and rename in quick succession).
// Directory arguments are watched together with the subdirectories that
// exist when the watcher starts, matching what expandCatalogs lints.
type catalogWatcher struct {
	fs    *fsnotify.Watcher
	files map[string]bool // explicit file arguments
	dirs  map[string]bool // directory arguments and their subdirectories
}

func newCatalogWatcher(args []string) (*catalogWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &catalogWatcher{fs: fw, files: map[string]bool{}, dirs: map[string]bool{}}
	watch := map[string]bool{}
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			fw.Close()
			return nil, err
		}
		abs, err := filepath.Abs(arg)
		if err != nil {
			fw.Close()
			return nil, err
		}
		if st.IsDir() {
			err := filepath.WalkDir(abs, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					w.dirs[path] = true
					watch[path] = true
				}
				return nil
			})
			if err != nil {
				fw.Close()
				return nil, err
			}
			continue
		}
		w.files[abs] = true
		watch[filepath.Dir(abs)] = true
	}
	for d := range watch {
		if err := fw.Add(d); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *catalogWatcher) Close() error { return w.fs.Close() }

func (w *catalogWatcher) wants(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), ".ts") {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return w.files[abs] || w.dirs[filepath.Dir(abs)]
}

// Run calls fn once per changed file after the debounce window, until ctx
// ends. Calls to fn never overlap.
func (w *catalogWatcher) Run(ctx context.Context, fn func(path string)) error {
	logger := xlog.WithComponent("watch")
	var (
		mu   sync.Mutex
		fnMu sync.Mutex
	)
	timers := map[string]*time.Timer{}
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watch error")
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !w.wants(ev.Name) {
				continue
			}
			path := ev.Name
			logger.Debug().Str("event", "watch.change").Str("file", path).Str("op", ev.Op.String()).Msg("catalog changed")
			mu.Lock()
			if t, ok := timers[path]; ok {
				t.Reset(watchDebounce)
			} else {
				timers[path] = time.AfterFunc(watchDebounce, func() {
					mu.Lock()
					delete(timers, path)
					mu.Unlock()
					if _, err := os.Stat(path); err == nil {
						fnMu.Lock()
						fn(path)
						fnMu.Unlock()
					}
				})
			}
			mu.Unlock()
		}
	}
}

package lint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	qtparser "linguist/internal/adapters/parser/qtts"
	"linguist/internal/domain"
	xlog "linguist/internal/log"
)

type Issue struct {
	Rule     Rule     `json:"rule"`
	Severity Severity `json:"severity"`
	Line     int      `json:"line,omitempty"`
	Context  string   `json:"context,omitempty"`
	Source   string   `json:"source,omitempty"`
	Message  string   `json:"message"`
}

type Report struct {
	File     string  `json:"file"`
	Language string  `json:"language,omitempty"`
	Messages int     `json:"messages"`
	Issues   []Issue `json:"issues"`
}

// Valid reports whether the catalog has no error-level issue.
func (r Report) Valid() bool { return r.Count(SeverityError) == 0 }

// Failed reports whether the report should fail a run. In strict mode
// warnings fail as well.
func (r Report) Failed(strict bool) bool {
	if !r.Valid() {
		return true
	}
	return strict && r.Count(SeverityWarning) > 0
}

func (r Report) Count(s Severity) int {
	n := 0
	for _, is := range r.Issues {
		if is.Severity == s {
			n++
		}
	}
	return n
}

type Options struct {
	// SourceRoot enables the location check; location paths are resolved
	// against it.
	SourceRoot  string
	Disabled    []Rule
	Severity    map[Rule]Severity
	Concurrency int
}

type Linter struct {
	opts     Options
	disabled map[Rule]bool
	logger   zerolog.Logger

	mu    sync.Mutex
	lines map[string]int // resolved source path -> line count, -1 when missing
}

func New(opts Options) *Linter {
	l := &Linter{
		opts:     opts,
		disabled: map[Rule]bool{},
		logger:   xlog.WithComponent("lint"),
		lines:    map[string]int{},
	}
	for _, r := range opts.Disabled {
		l.disabled[r] = true
	}
	return l
}

func (l *Linter) severity(r Rule) Severity {
	if r == RuleXMLSyntax {
		return SeverityError
	}
	s, ok := l.opts.Severity[r]
	if !ok {
		s = DefaultSeverity(r)
	}
	// Locations are advisory metadata; they never invalidate a catalog.
	if r == RuleLocationUnresolved && s == SeverityError {
		s = SeverityWarning
	}
	return s
}

// LintFile reads and lints one catalog. Only I/O failures are returned as
// errors; malformed content is reported as an issue.
func (l *Linter) LintFile(ctx context.Context, path string) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{File: path}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{File: path}, fmt.Errorf("read %s: %w", path, err)
	}
	return l.LintBytes(path, data), nil
}

// LintBytes lints an in-memory catalog named name.
func (l *Linter) LintBytes(name string, data []byte) Report {
	doc, err := qtparser.DecodeBytes(data)
	if err != nil {
		rep := Report{File: name}
		var se *qtparser.SyntaxError
		line := 0
		if errors.As(err, &se) {
			line = se.Line
		}
		l.add(&rep, Issue{Rule: RuleXMLSyntax, Line: line, Message: err.Error()})
		return rep
	}
	return l.LintDocument(name, doc)
}

// LintDocument runs every enabled rule over a parsed document.
func (l *Linter) LintDocument(name string, doc *domain.Document) Report {
	rep := Report{File: name, Language: doc.Language}
	msgs := doc.Messages()
	rep.Messages = len(msgs)

	l.checkLanguage(&rep, doc)
	l.checkDuplicates(&rep, msgs)
	for _, m := range msgs {
		l.checkMessage(&rep, doc, m)
		if l.opts.SourceRoot != "" {
			l.checkLocations(&rep, m)
		}
	}
	sort.SliceStable(rep.Issues, func(i, j int) bool {
		return rep.Issues[i].Line < rep.Issues[j].Line
	})
	l.logger.Debug().
		Str("event", "lint.done").
		Str("file", name).
		Int("messages", rep.Messages).
		Int("issues", len(rep.Issues)).
		Msg("catalog linted")
	return rep
}

// LintAll lints files concurrently. Reports come back in input order; the
// first I/O error cancels the remaining work.
func (l *Linter) LintAll(ctx context.Context, paths []string) ([]Report, error) {
	reports := make([]Report, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	limit := l.opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			rep, err := l.LintFile(gctx, p)
			if err != nil {
				return err
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (l *Linter) add(rep *Report, is Issue) {
	if l.disabled[is.Rule] && is.Rule != RuleXMLSyntax {
		return
	}
	is.Severity = l.severity(is.Rule)
	rep.Issues = append(rep.Issues, is)
}

func (l *Linter) addFor(rep *Report, m *domain.Message, r Rule, format string, args ...any) {
	l.add(rep, Issue{
		Rule:    r,
		Line:    m.Line,
		Context: m.Context,
		Source:  m.Source,
		Message: fmt.Sprintf(format, args...),
	})
}

// lineCount returns the number of lines in path, or -1 when it cannot be
// read. Results are cached for the lifetime of the linter.
func (l *Linter) lineCount(path string) int {
	l.mu.Lock()
	n, ok := l.lines[path]
	l.mu.Unlock()
	if ok {
		return n
	}
	n = -1
	if data, err := os.ReadFile(filepath.Clean(path)); err == nil {
		n = 0
		for _, b := range data {
			if b == '\n' {
				n++
			}
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			n++
		}
	}
	l.mu.Lock()
	l.lines[path] = n
	l.mu.Unlock()
	return n
}

package jobs

import (
	"sort"

	"github.com/rs/zerolog"
)

// LogEmitter writes runner events as structured log lines.
type LogEmitter struct {
	Logger zerolog.Logger
}

func (e LogEmitter) Emit(name string, payload any) {
	level := zerolog.DebugLevel
	switch name {
	case "job.started":
		level = zerolog.InfoLevel
	case "job.progress":
		if m, ok := payload.(map[string]any); ok && m["status"] != "running" {
			level = zerolog.InfoLevel
		}
	}
	ev := e.Logger.WithLevel(level).Str("event", name)
	if m, ok := payload.(map[string]any); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			ev = ev.Interface(k, m[k])
		}
	} else {
		ev = ev.Interface("payload", payload)
	}
	ev.Msg(name)
}

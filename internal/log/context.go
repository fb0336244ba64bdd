package log

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey string

const jobIDKey ctxKey = "job_id"

// ContextWithJobID stores the provided job ID in the context.
func ContextWithJobID(ctx context.Context, id int64) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, jobIDKey, id)
}

// JobIDFromContext extracts the job ID from context if present.
func JobIDFromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	v, ok := ctx.Value(jobIDKey).(int64)
	return v, ok
}

// FromContext returns the base logger enriched with identifiers carried by ctx.
func FromContext(ctx context.Context) *zerolog.Logger {
	l := Base()
	if id, ok := JobIDFromContext(ctx); ok {
		l = l.With().Int64("job_id", id).Logger()
	}
	return &l
}

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureAndContext(t *testing.T) {
	prevLevel := zerolog.GlobalLevel()
	prevBase := Base()
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prevLevel)
		mu.Lock()
		base = prevBase
		mu.Unlock()
	})

	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "linguist-test"})
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	ctx := ContextWithJobID(context.Background(), 42)
	id, ok := JobIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	FromContext(ctx).Debug().Str("event", "test").Msg("hello")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "linguist-test", line["service"])
	assert.Equal(t, float64(42), line["job_id"])
	assert.Equal(t, "hello", line["message"])

	buf.Reset()
	lintLogger := WithComponent("lint")
	lintLogger.Info().Msg("x")
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "lint", line["component"])
}

func TestJobIDMissing(t *testing.T) {
	_, ok := JobIDFromContext(context.Background())
	assert.False(t, ok)
}

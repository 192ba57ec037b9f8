package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHonoursLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, New(Config{Level: "warn"}).GetLevel())
	assert.Equal(t, zerolog.ErrorLevel, New(Config{Level: "ERROR"}).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New(Config{Level: "gibberish"}).GetLevel())
}

func TestCtxFallsBackToGlobal(t *testing.T) {
	l := Ctx(context.Background())
	assert.Equal(t, L().GetLevel(), l.GetLevel())
}

func TestWithLoggerRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), zerolog.New(&buf))

	l := Ctx(ctx)
	l.Info().Msg("viewer joined")

	assert.Contains(t, buf.String(), "viewer joined")
}

func TestWithStreamStampsStreamID(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), zerolog.New(&buf))
	ctx = WithStream(ctx, "stream-42")

	l := Ctx(ctx)
	l.Info().Msg("count updated")
	l.Warn().Msg("room gone")

	out := buf.String()
	require.Contains(t, out, `"stream_id":"stream-42"`)
	assert.Contains(t, out, "count updated")
	assert.Contains(t, out, "room gone")
}

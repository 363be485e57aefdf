package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	ctx := WithContext(context.Background(), l)
	log := FromContext(ctx)
	log.Info().Str("month", "2026-10").Msg("closed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "closed", entry["message"])
	assert.Equal(t, "2026-10", entry["month"])
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	var buf bytes.Buffer
	prev := base
	t.Cleanup(func() { SetDefault(prev) })

	SetDefault(NewWithWriter(&buf))
	log := FromContext(context.Background())
	log.Warn().Msg("fallback")
	assert.Contains(t, buf.String(), "fallback")
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := WithFields(NewWithWriter(&buf), map[string]interface{}{"user_id": "u1"})
	l.Info().Msg("hello")
	assert.Contains(t, buf.String(), `"user_id":"u1"`)
}

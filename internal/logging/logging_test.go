package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONOutsideDev(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, "prod", "info")

	logger.Info().Str("component", "test").Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "test", line["component"])
	assert.Contains(t, line, "time")
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, "prod", "warn")

	logger.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn().Msg("kept")
	assert.NotZero(t, buf.Len())
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	logger := newWithWriter(&bytes.Buffer{}, "prod", "chatty")
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("info"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("bogus"))
}

func TestNewLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(Config{Level: "info"}, &buf)

	log.Debug().Msg("hidden")
	assert.Zero(t, buf.Len(), "debug line should be filtered at info level")

	log.Info().Str("component", "ledger").Msg("portfolio created")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "ledger", line["component"])
	assert.Equal(t, "portfolio created", line["message"])
	assert.Contains(t, line, "time")
	assert.Contains(t, line, "caller")
}

func TestNewLogger_Pretty(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(Config{Level: "debug", Pretty: true}, &buf)

	log.Debug().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())), "pretty output should not be JSON")
}

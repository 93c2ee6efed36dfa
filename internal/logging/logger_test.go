package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	require.Equal(t, zerolog.WarnLevel, parseLevel("warning"))
	require.Equal(t, zerolog.Disabled, parseLevel("off"))
	require.Equal(t, zerolog.InfoLevel, parseLevel("bogus"))
}

func TestComponentJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	log := WithFile("store", "/tmp/home.txt")
	log.Info().Int("row", 3).Msg("rewritten")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "store", entry["component"])
	require.Equal(t, "/tmp/home.txt", entry["file"])
	require.Equal(t, "rewritten", entry["message"])
	require.EqualValues(t, 3, entry["row"])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Logger.Info().Msg("hidden")
	require.Empty(t, buf.String())
	Logger.Warn().Msg("shown")
	require.Contains(t, buf.String(), "shown")
}

func TestCallerField(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf, EnableCaller: true})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Debug().Msg("traced")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Contains(t, entry["caller"], "logger_test.go")
}

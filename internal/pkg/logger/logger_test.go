package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureJSON(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "warn", Format: "json", Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: "info", Format: "console"}) })

	Info().Msg("dropped")
	community := Component("community")
	community.Warn().Str("communityId", "c1").Msg("append skipped")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "community", entry["component"])
	assert.Equal(t, "c1", entry["communityId"])
	assert.Equal(t, "append skipped", entry["message"])
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	Configure(Config{Level: "chatty", Format: "json", Output: &bytes.Buffer{}})
	t.Cleanup(func() { Configure(Config{Level: "info", Format: "console"}) })

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

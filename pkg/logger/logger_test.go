package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	Initialize(Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() {
		Initialize(Config{Level: "info", Format: "console"})
	})

	WithContext(map[string]interface{}{"request_id": "abc"}).
		Error("upstream failed", errors.New("boom"), map[string]interface{}{"product_id": 5})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "upstream failed", entry["message"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "abc", entry["request_id"])
	assert.Equal(t, float64(5), entry["product_id"])
	assert.True(t, strings.Contains(entry["caller"].(string), "logger_test.go"))
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Initialize(Config{Level: "warn", Format: "json", Output: &buf})
	t.Cleanup(func() {
		Initialize(Config{Level: "info", Format: "console"})
	})

	Debug("hidden")
	Info("hidden")
	Warn("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 1)
	assert.Contains(t, lines[0], "shown")
}

package telemetry

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraconstructs/sandaran/internal/config"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, config.LogConfig{Level: "warn", Format: "json"}, false)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.WithField("project", "p1").Warn("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "p1", entry["project"])
}

func TestNewLogger_DebugFlagRaisesLevel(t *testing.T) {
	logger, err := newLogger(&bytes.Buffer{}, config.LogConfig{Level: "info"}, true)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	_, err = newLogger(&bytes.Buffer{}, config.LogConfig{Level: "loud"}, false)
	assert.Error(t, err)
}

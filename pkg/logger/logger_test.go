package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("warn", &buf)

	log.Info("skipped")
	log.WithField("report_id", "r-1").Warn("Transition rejected")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Transition rejected", entry["msg"])
	assert.Equal(t, "r-1", entry["report_id"])
	assert.Equal(t, "warning", entry["level"])
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	log := NewWithOutput("verbose", &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

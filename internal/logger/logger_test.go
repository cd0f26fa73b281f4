package logger

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// capture redirects output to a buffer and restores defaults afterwards.
func capture(t *testing.T, isVerbose bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(isVerbose)
	t.Cleanup(func() {
		SetVerbose(false)
		SetTimestamps(false)
		SetOutput(os.Stderr)
		now = time.Now
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestLevels_WhenVerbose(t *testing.T) {
	buf := capture(t, true)

	Debug("loaded %d records", 3)
	Info("indexed %s", "p1")
	Warn("skipped %d", 1)
	Error("failed: %v", "boom")

	assert.Equal(t, "[DEBUG] loaded 3 records\n[INFO] indexed p1\n[WARN] skipped 1\n[ERROR] failed: boom\n", buf.String())
}

func TestLevels_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)

	Debug("hidden")
	Info("hidden")
	Warn("hidden")
	Section("hidden")

	assert.Empty(t, buf.String())
}

func TestError_AlwaysPrints(t *testing.T) {
	buf := capture(t, false)

	Error("store unavailable")

	assert.Equal(t, "[ERROR] store unavailable\n", buf.String())
}

func TestSection(t *testing.T) {
	buf := capture(t, true)

	Section("Retrieve")

	assert.Equal(t, "\n=== Retrieve ===\n", buf.String())
}

func TestSetTimestamps(t *testing.T) {
	buf := capture(t, true)
	now = func() time.Time { return time.Date(2025, 3, 9, 14, 5, 7, 0, time.Local) }
	SetTimestamps(true)

	Info("serving")

	assert.Equal(t, "[2025-03-09 14:05:07] [INFO] serving\n", buf.String())
}

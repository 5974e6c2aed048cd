package observability

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLogger_WritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orchestrator.log")
	logger, closer := newLogger(LogOptions{File: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1})
	require.NotNil(t, closer)

	logger.Info("checkout completed", "appointment.id", "apt_1")
	require.NoError(t, closer.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), `"msg":"checkout completed"`)
	require.Contains(t, string(content), `"appointment.id":"apt_1"`)
}

func TestNewLogger_StdoutOnlyWithoutFile(t *testing.T) {
	logger, closer := newLogger(LogOptions{})
	require.NotNil(t, logger)
	require.Nil(t, closer)
}

func TestInstruments_NilSafe(t *testing.T) {
	var instruments *Instruments
	require.NotNil(t, instruments.Tracer("x"))
	require.NotNil(t, instruments.Meter("x"))
	require.Equal(t, "local", environment(" "))
}

func TestNewLogger_DebugOnlyLocally(t *testing.T) {
	local, _ := newLogger(LogOptions{})
	require.True(t, local.Enabled(context.Background(), slog.LevelDebug))

	prod, _ := newLogger(LogOptions{Environment: "production"})
	require.False(t, prod.Enabled(context.Background(), slog.LevelDebug))
}

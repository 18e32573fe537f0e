package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"ERROR", LogLevelError},
		{"warn", LogLevelWarn},
		{"Warning", LogLevelWarn},
		{"", LogLevelInfo},
		{"bogus", LogLevelInfo},
		{"debug", LogLevelDebug},
		{" TRACE ", LogLevelTrace},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogLevel(tt.in))
		})
	}
}

func TestLoggerWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger := NewLoggerWithFile(LogLevelInfo, LogFileOptions{Path: path})

	logger.Info("statistics computed for %s", "statistics:None:None")
	logger.Debug("suppressed at info level")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "statistics computed for statistics:None:None")
	assert.NotContains(t, string(data), "suppressed at info level")
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.Error("nothing %d", 1)
	assert.Equal(t, LogLevelError, logger.With("k", "v").GetLevel())
}

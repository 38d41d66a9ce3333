package log

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	apexlog "github.com/apex/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerWithPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	InitLoggerWithPath(path)
	apexlog.Info("hello from test")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "INFO - hello from test")
}

func TestFileHandlerFormat(t *testing.T) {
	var buf bytes.Buffer

	logger := &apexlog.Logger{
		Handler: &FileHandler{Out: &buf},
		Level:   apexlog.InfoLevel,
	}

	logger.Warn("careful")

	assert.Contains(t, buf.String(), "WARN - careful")
}

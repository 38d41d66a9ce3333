// Package log configures the process-wide apex logger.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
)

// DefaultLogFile is where log output is appended unless overridden.
const DefaultLogFile = "acme-disk-use.log"

// InitLogger sets up apex with a file-backed handler and a log level from
// the ACME_DISK_USE_LOG env variable (default INFO).
func InitLogger() {
	InitLoggerWithPath(DefaultLogFile)
}

// InitLoggerWithPath is InitLogger with an explicit log file location.
// The file is opened for appending and created if missing; if it cannot
// be opened, output falls back to stderr rather than failing startup.
func InitLoggerWithPath(path string) {
	level := strings.ToUpper(os.Getenv("ACME_DISK_USE_LOG"))
	if level == "" {
		level = "INFO"
	}

	var out io.Writer = os.Stderr
	if file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
		out = file
	}

	log.SetHandler(&FileHandler{Out: out})
	log.SetLevelFromString(level)
}

// FileHandler formats log messages and writes them to a single output.
type FileHandler struct {
	Out io.Writer
}

// HandleLog implements the log.Handler interface.
func (h *FileHandler) HandleLog(e *log.Entry) error {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	level := strings.ToUpper(e.Level.String())

	_, err := fmt.Fprintf(h.Out, "[%s] %s - %s\n", timestamp, level, e.Message)

	return err
}

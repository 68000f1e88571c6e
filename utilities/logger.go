package utilities

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	Level:           log.InfoLevel,
	ReportTimestamp: true,
	TimeFormat:      time.DateTime,
	Prefix:          "todo",
})

// InitLogger configures the process logger. level is one of debug, info,
// warn, error; format is one of text, json, logfmt.
func InitLogger(w io.Writer, level, format string) {
	logger = log.NewWithOptions(w, log.Options{
		Level:           ParseLogLevel(level),
		Formatter:       ParseLogFormatter(format),
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "todo",
	})
}

// Logger returns the process logger.
func Logger() *log.Logger {
	return logger
}

// ParseLogLevel parses a level name, defaulting to info.
func ParseLogLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ParseLogFormatter parses a formatter name, defaulting to text.
func ParseLogFormatter(format string) log.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// LogRequest records one served HTTP request.
func LogRequest(method, path, remoteAddr, requestID string, status int, duration time.Duration) {
	logger.Info("request",
		"method", method,
		"path", path,
		"remote", remoteAddr,
		"request_id", requestID,
		"status", status,
		"duration", duration,
	)
}

// LogError records err together with a short description of the operation.
func LogError(err error, context string) {
	logger.Error(context, "err", err)
}

func LogDebug(format string, v ...interface{}) {
	logger.Debug(fmt.Sprintf(format, v...))
}

func LogInfo(format string, v ...interface{}) {
	logger.Info(fmt.Sprintf(format, v...))
}

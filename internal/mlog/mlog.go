// Package mlog configures the process-wide structured logger.
package mlog

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	once   sync.Once
	logger = logrus.New()
)

// Log returns the process-wide logger, initializing it from
// MOUNTAINEER_LOG_LEVEL on first call. Re-entrant calls are no-ops.
func Log() *logrus.Logger {
	once.Do(initLogger)
	return logger
}

func initLogger() {
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	raw := os.Getenv("MOUNTAINEER_LOG_LEVEL")
	level, err := parseLevel(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mountaineer: invalid MOUNTAINEER_LOG_LEVEL %q, defaulting to WARN\n", raw)
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)
}

func parseLevel(raw string) (logrus.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "":
		return logrus.WarnLevel, nil
	case "TRACE":
		return logrus.TraceLevel, nil
	case "DEBUG":
		return logrus.DebugLevel, nil
	case "INFO":
		return logrus.InfoLevel, nil
	case "WARN", "WARNING":
		return logrus.WarnLevel, nil
	case "ERROR":
		return logrus.ErrorLevel, nil
	default:
		return logrus.WarnLevel, fmt.Errorf("unknown log level %q", raw)
	}
}

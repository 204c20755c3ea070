// Package logging provides component-scoped logrus loggers for hookcfg.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// LevelEnvVar selects the log level (trace, debug, info, warn, error).
const LevelEnvVar = "HOOKCFG_LOG_LEVEL"

var (
	base     *logrus.Logger
	baseOnce sync.Once

	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
)

func root() *logrus.Logger {
	baseOnce.Do(func() {
		base = logrus.New()
		base.SetOutput(os.Stderr)
		base.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
			DisableQuote:     true,
		})
		base.SetLevel(levelFromEnv())
	})
	return base
}

func levelFromEnv() logrus.Level {
	levelStr := os.Getenv(LevelEnvVar)
	if levelStr == "" {
		return logrus.WarnLevel
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		return logrus.WarnLevel
	}
	return level
}

// NewLogger returns the logger for a component. Loggers are cached per component.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logger := root().WithField("component", component)
	loggers[component] = logger
	return logger
}

// SetOutput redirects every component logger.
func SetOutput(w io.Writer) {
	root().SetOutput(w)
}

// SetLevel overrides the level taken from the environment.
func SetLevel(level logrus.Level) {
	root().SetLevel(level)
}

// Timing logs how long a phase took at debug level.
//
//	defer logging.Timing(log, "hook collection", time.Now())
func Timing(logger *logrus.Entry, phase string, start time.Time) {
	if logger.Logger.IsLevelEnabled(logrus.DebugLevel) {
		logger.WithField("elapsed", time.Since(start)).Debugf("%s finished", phase)
	}
}

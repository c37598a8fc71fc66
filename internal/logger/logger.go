package logger

import (
	"sync"
)

// Levels accepted in configs/config.yml under logger.level.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	globalLogger *Logger
	once         sync.Once
)

// Get returns the process-wide logger. The level argument only takes
// effect on the first call; everything after that shares the instance,
// so the serial engine, services and HTTP layer log through one sink.
func Get(level string) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(level)
	})
	return globalLogger
}

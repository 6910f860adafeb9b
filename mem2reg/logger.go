package mem2reg

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the pass's default logger instance.
// It uses a no-op logger unless SetLogger was called first.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger installs a logger for all subsequent runs that do not supply
// one through WithLogger. Call before the first Promote.
func SetLogger(l *zap.Logger) {
	logger = l
}

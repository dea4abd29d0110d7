package unique

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once

	failureHook atomic.Pointer[func(error)]
)

// Logger returns the unique package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the unique package's logger.
// This must be called before any handle is destroyed.
func SetLogger(l *zap.Logger) {
	logger = l
}

// OnDestroyFailure installs fn to receive every destruction failure.
// A nil fn removes the hook.
func OnDestroyFailure(fn func(error)) {
	if fn == nil {
		failureHook.Store(nil)
		return
	}
	failureHook.Store(&fn)
}

func reportFailure(err error) {
	if fn := failureHook.Load(); fn != nil {
		(*fn)(err)
	}
}

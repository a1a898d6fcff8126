package gensrv

import (
	"sync"

	"go.uber.org/zap"
)

// ILogger is the minimal surface gensrv needs from a logger: the
// structured key/value style rather than a Printf-only one, so the
// host application's own structured logger can be plugged in as-is.
type ILogger interface {
	Debugw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

func (l *zapLogger) Debugw(msg string, keysAndValues ...any) { l.sugar.Debugw(msg, keysAndValues...) }
func (l *zapLogger) Errorw(msg string, keysAndValues ...any) { l.sugar.Errorw(msg, keysAndValues...) }

var defaultLogger = func() ILogger {
	z, err := zap.NewProduction()
	if err != nil {
		z = zap.NewNop()
	}
	return &zapLogger{sugar: z.Sugar()}
}()

var (
	logMu  sync.RWMutex
	Logger = defaultLogger
)

// SetLogger replaces the package-wide logger. Intended to be called
// once at process startup, e.g. with a zap.SugaredLogger wired to the
// host application's logging config.
func SetLogger(l ILogger) {
	logMu.Lock()
	defer logMu.Unlock()
	Logger = l
}

func currentLogger() ILogger {
	logMu.RLock()
	defer logMu.RUnlock()
	return Logger
}

var debugLogEnabled bool
var debugLogMu sync.RWMutex

// SetDebugLog toggles the debug-level logging a Server emits (server
// stops, unhandled casts, failed async-call reply deliveries).
// Off by default, so a host application need not configure its logger
// just to silence it.
func SetDebugLog(v bool) {
	debugLogMu.Lock()
	defer debugLogMu.Unlock()
	debugLogEnabled = v
}

func debugLogOn() bool {
	debugLogMu.RLock()
	defer debugLogMu.RUnlock()
	return debugLogEnabled
}

func debugw(msg string, keysAndValues ...any) {
	if debugLogOn() {
		currentLogger().Debugw(msg, keysAndValues...)
	}
}

// errorw always logs, unlike debugw: it's for events worth a host
// application's attention regardless of whether debug tracing is on
// (handler panics, a mailbox rejecting work because it's full).
func errorw(msg string, keysAndValues ...any) {
	currentLogger().Errorw(msg, keysAndValues...)
}

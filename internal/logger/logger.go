// Package logger provides process-wide leveled logging backed by zap.
// Init selects the level and encoder; the printf helpers log through the sugared logger.
package logger

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu    sync.RWMutex
	base  = zap.NewNop()
	sugar = base.Sugar()
)

// ParseLevel maps debug, info, warn and error to zap levels. Anything else is info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Init initializes the default logger with the specified level and format.
// Format "text" uses the console encoder, anything else JSON.
func Init(level string, format string) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if strings.ToLower(format) == "text" {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), ParseLevel(level))
	SetLogger(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)))
}

// SetLogger replaces the default logger. Tests use it to capture output.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	base = l
	sugar = l.Sugar()
	mu.Unlock()
}

// L returns the structured logger
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// With returns a sugared logger carrying key/value context such as a session id
func With(keysAndValues ...interface{}) *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return base.WithOptions(zap.AddCallerSkip(-1)).Sugar().With(keysAndValues...)
}

// Sync flushes buffered entries
func Sync() {
	_ = L().Sync()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// Debug logs a message at DebugLevel
func Debug(format string, args ...interface{}) {
	current().Debugf(format, args...)
}

// Info logs a message at InfoLevel
func Info(format string, args ...interface{}) {
	current().Infof(format, args...)
}

// Warn logs a message at WarnLevel
func Warn(format string, args ...interface{}) {
	current().Warnf(format, args...)
}

// Error logs a message at ErrorLevel
func Error(format string, args ...interface{}) {
	current().Errorf(format, args...)
}

// Fatal logs a message at FatalLevel and exits
func Fatal(format string, args ...interface{}) {
	current().Fatalf(format, args...)
	os.Exit(1)
}

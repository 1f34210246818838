package logutil

import (
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
	"go.uber.org/zap"
)

// NewSlogBridge exposes a zap logger as a slog logger for libraries that
// only speak slog (the quartz scheduler). Levels follow the zap logger.
func NewSlogBridge(logger *zap.Logger) *slog.Logger {
	stdOutLogger := zap.NewStdLog(logger)

	var slogLevel slog.Level = slog.LevelInfo

	switch logger.Level() {
	case zap.DebugLevel:
		slogLevel = slog.LevelDebug
	case zap.InfoLevel:
		slogLevel = slog.LevelInfo
	case zap.WarnLevel:
		slogLevel = slog.LevelWarn
	case zap.ErrorLevel:
		slogLevel = slog.LevelError
	case zap.PanicLevel:
		slogLevel = slog.LevelError
	}

	return slog.New(tint.NewHandler(stdOutLogger.Writer(), &tint.Options{
		Level:      slogLevel,
		TimeFormat: time.DateTime,
	}))
}

// ComponentLogger tags a logger with the component name.
func ComponentLogger(component string, logger *zap.Logger) *zap.Logger {
	return logger.With(zap.String("component", component))
}

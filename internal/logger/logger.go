package logger

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log atomic.Pointer[zap.Logger]

// Init builds the global logger. Production emits JSON, anything else a
// colored console encoder.
func Init(env string) {
	log.Store(build(env))
}

func build(env string) *zap.Logger {
	var cfg zap.Config

	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "json"
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.MessageKey = "message"
		cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.OutputPaths = []string{"stdout"}
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := cfg.Build(zap.AddCaller())
	if err != nil {
		panic(err)
	}
	return l.With(zap.String("service", "fulfillment"))
}

// L returns the global logger, initializing it from APP_ENV on first use.
// Safe for concurrent use; only one lazily built logger is ever installed.
func L() *zap.Logger {
	if l := log.Load(); l != nil {
		return l
	}
	l := build(os.Getenv("APP_ENV"))
	if log.CompareAndSwap(nil, l) {
		return l
	}
	return log.Load()
}

// Replace swaps the global logger and returns a func restoring the previous one.
func Replace(l *zap.Logger) func() {
	prev := log.Swap(l)
	return func() { log.Store(prev) }
}

func Sync() {
	if l := log.Load(); l != nil {
		_ = l.Sync()
	}
}

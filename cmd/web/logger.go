package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger adapts a zap sugared logger to the printf-style Logger interface
// the session and client packages expect.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

func newLogger(debug bool) (*zapLogger, func()) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	base, err := cfg.Build()
	if err != nil {
		base = zap.NewNop()
	}

	logger := &zapLogger{sugar: base.Sugar()}
	return logger, func() { base.Sync() }
}

func (l *zapLogger) named(name string) *zapLogger {
	return &zapLogger{sugar: l.sugar.Named(name)}
}

func (l *zapLogger) Debug(format string, args ...any) {
	l.sugar.Debugf(format, args...)
}

func (l *zapLogger) Info(format string, args ...any) {
	l.sugar.Infof(format, args...)
}

func (l *zapLogger) Error(format string, args ...any) {
	l.sugar.Errorf(format, args...)
}

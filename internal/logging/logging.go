// Package logging builds the zap loggers used by every w3reg component.
// Logs go to stderr so command output on stdout stays clean.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const timeLayout = "2006-01-02T15:04:05"

// New returns a sugared logger at level ("debug", "info", "warn", "error")
// writing console or JSON lines to stderr.
func New(level string, isJSON bool) (*zap.SugaredLogger, error) {
	return NewWithWriter(level, isJSON, os.Stderr)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(level string, isJSON bool, w io.Writer) (*zap.SugaredLogger, error) {
	if level == "" {
		level = "info"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)

	var encoder zapcore.Encoder
	if isJSON {
		encoderCfg = zap.NewProductionEncoderConfig()
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), lvl)
	return zap.New(core, zap.AddStacktrace(zap.ErrorLevel)).Sugar(), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return Nop()
	}
	return l
}

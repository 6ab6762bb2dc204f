package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the console logger shared by the whole gateway.
// An empty file keeps output on stdout only.
func NewLogger(level, file string) *zap.Logger {
	atomic := zap.NewAtomicLevelAt(zap.InfoLevel)
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		atomic.SetLevel(lvl)
	}

	outputs := []string{"stdout"}
	if file != "" {
		outputs = append(outputs, file)
	}

	cfg := zap.Config{
		Encoding:         "console",
		Level:            atomic,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    zap.NewProductionEncoderConfig(),
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}

	return logger
}

// Package logging builds the zap logger used for diagnostics. Command
// output never goes through it.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config defines logger configuration.
type Config struct {
	Level      string // debug, info, warn, error
	OutputPath string // stderr, stdout, or a file path
}

// DefaultConfig logs warnings and errors to stderr.
func DefaultConfig() Config {
	return Config{
		Level:      "warn",
		OutputPath: "stderr",
	}
}

// New creates a console logger. An unknown level falls back to warn.
func New(cfg Config) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		level = zapcore.WarnLevel
	}

	output := cfg.OutputPath
	if output == "" {
		output = "stderr"
	}

	zapCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Encoding:          "console",
		EncoderConfig:     encoderConfig(),
		OutputPaths:       []string{output},
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     true,
		DisableStacktrace: true,
	}
	return zapCfg.Build()
}

// NewNop returns a logger that discards everything.
func NewNop() *zap.Logger {
	return zap.NewNop()
}

func parseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return zapcore.WarnLevel, err
	}
	return l, nil
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "N",
		MessageKey:     "M",
		StacktraceKey:  "S",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

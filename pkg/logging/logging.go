// Package logging builds the harness logger: leveled, timestamped output
// to the console plus a size-rotated log file, per the logging section of
// the configuration.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"dev/bravebird/e2e-harness-go/pkg/config"
)

// Options control logger construction. The zero value is a console-only
// info-level logger.
type Options struct {
	Level   string
	File    string
	Console bool

	// Rotation settings for the file sink.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// FromConfig reads the logging section of cfg into Options.
func FromConfig(cfg *config.Config) Options {
	return Options{
		Level:      cfg.GetString("logging.level", "info"),
		File:       cfg.GetString("logging.file", ""),
		Console:    cfg.GetBool("logging.console", true),
		MaxSizeMB:  cfg.GetInt("logging.max_size_mb", 100),
		MaxBackups: cfg.GetInt("logging.max_backups", 10),
		MaxAgeDays: cfg.GetInt("logging.max_age_days", 30),
	}
}

// New builds a zap logger from the given options. When a file is
// configured its parent directory is created and writes rotate via
// lumberjack; console output uses the human-readable encoder.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.Set(opts.Level); err != nil {
			return nil, err
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var cores []zapcore.Core
	if opts.Console {
		consoleEnc := zap.NewDevelopmentEncoderConfig()
		consoleEnc.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleEnc),
			zapcore.Lock(os.Stdout),
			level,
		))
	}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, err
		}
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 100),
			MaxBackups: orDefault(opts.MaxBackups, 10),
			MaxAge:     orDefault(opts.MaxAgeDays, 30),
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encCfg),
			zapcore.AddSync(rotating),
			level,
		))
	}
	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(zapcore.NewTee(cores...)), nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Package logging builds the zap logger shared by the CLI and the server.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config mirrors the log.* configuration keys.
type Config struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"maxSizeMB"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAgeDays"`
}

func (c *Config) setDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = 10
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = 3
	}
	if c.MaxAgeDays <= 0 {
		c.MaxAgeDays = 28
	}
}

// New returns a logger writing human-readable lines to stderr and, when
// File is set, JSON lines to a rotating file.
func New(c Config) (*zap.Logger, error) {
	return newLogger(c, os.Stderr)
}

func newLogger(c Config, console io.Writer) (*zap.Logger, error) {
	c.setDefaults()
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	consoleEncoderCfg := zap.NewProductionEncoderConfig()
	consoleEncoderCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	consoleEncoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if f, ok := console.(*os.File); !ok || f != os.Stderr {
		consoleEncoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleEncoderCfg),
		zapcore.Lock(zapcore.AddSync(console)),
		level,
	)

	if c.File != "" {
		fileEncoderCfg := zap.NewProductionEncoderConfig()
		fileEncoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		fileEncoderCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
		fileWriteSyncer := zapcore.AddSync(&lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    c.MaxSizeMB, // megabytes
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAgeDays, // days
		})
		core = zapcore.NewTee(core, zapcore.NewCore(
			zapcore.NewJSONEncoder(fileEncoderCfg),
			fileWriteSyncer,
			level,
		))
	}
	return zap.New(core), nil
}

// Package logger builds the zap loggers and the transport adapters (echo, gRPC, GORM) that feed them.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config describes how the process logger is built.
type Config struct {
	// Level is one of debug, info, warn, error, dpanic, panic, fatal.
	Level string `yaml:"level"`
	// Format is json or console.
	Format string `yaml:"format"`
	// Output is stdout, stderr or file.
	Output string `yaml:"output"`
	// FilePath is used when Output is file.
	FilePath string `yaml:"file_path"`
	// Development enables colored levels and caller annotations.
	Development bool `yaml:"development"`
}

// NewZapLogger builds a zap logger from config.
func NewZapLogger(config Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(parseLevel(config.Level))

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "@timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.LevelKey = "log.level"
	encoderConfig.MessageKey = "message"
	encoderConfig.CallerKey = "caller"
	if config.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var encoder zapcore.Encoder
	if config.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	writeSyncer, err := openOutput(config)
	if err != nil {
		return nil, err
	}

	opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if config.Development {
		opts = append(opts, zap.AddCaller())
	}

	return zap.New(zapcore.NewCore(encoder, writeSyncer, level), opts...), nil
}

// DefaultZapLogger returns an info-level JSON logger on stdout.
func DefaultZapLogger() *zap.Logger {
	logger, err := NewZapLogger(Config{Level: "info", Format: "json", Output: "stdout"})
	if err != nil {
		return zap.NewExample()
	}
	return logger
}

func parseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

func openOutput(config Config) (zapcore.WriteSyncer, error) {
	switch config.Output {
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil
	case "file":
		if config.FilePath == "" {
			return zapcore.AddSync(os.Stdout), nil
		}
		file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		return zapcore.AddSync(file), nil
	default:
		return zapcore.AddSync(os.Stdout), nil
	}
}

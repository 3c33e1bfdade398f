package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/bodegaapp/bodega-api/internal/config"
)

var level = zap.NewAtomicLevelAt(zap.InfoLevel)

// Init replaces the global zap logger. Production environments log JSON,
// everything else uses the development console encoder. When conf.Filename is
// set, records are also written as JSON to a lumberjack rotated file.
func Init(environment string, conf *config.LoggerConfig) error {
	if conf != nil && conf.Level != "" {
		if err := SetLevel(conf.Level); err != nil {
			return err
		}
	}

	var encoder zapcore.Encoder
	if environment == "production" {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level),
	}

	if conf != nil && conf.Filename != "" {
		rotator := &lumberjack.Logger{
			Filename:   conf.Filename,
			MaxSize:    conf.MaxSizeMB,
			MaxBackups: conf.MaxBackups,
			MaxAge:     conf.MaxAgeDays,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(rotator),
			level,
		))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	zap.ReplaceGlobals(logger)

	return nil
}

// SetLevel changes the level of the global logger at runtime.
func SetLevel(lvl string) error {
	parsed, err := zapcore.ParseLevel(lvl)
	if err != nil {
		return fmt.Errorf("zapcore.ParseLevel -> %w", err)
	}
	level.SetLevel(parsed)

	return nil
}

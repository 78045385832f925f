// Package logging configures the zap logger for the process.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dense-analysis/tradewarp/internal/config"
)

// New builds the process logger. With a filename configured, output is
// JSON with lumberjack rotation; otherwise console output on stderr.
func New(settings *config.Log) *zap.SugaredLogger {
	level := zapcore.InfoLevel

	if settings.Debug {
		level = zapcore.DebugLevel
	}

	var core zapcore.Core

	if settings.Filename != "" {
		writer := zapcore.AddSync(&lumberjack.Logger{
			Filename:   settings.Filename,
			MaxSize:    settings.MaxSize,
			MaxBackups: settings.MaxBackups,
			MaxAge:     settings.MaxAge,
		})
		core = zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			writer,
			level,
		)
	} else {
		core = zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(os.Stderr),
			level,
		)
	}

	return zap.New(core).Sugar()
}

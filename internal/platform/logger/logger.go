package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var sugar *zap.SugaredLogger

func init() {
	l, err := zap.NewDevelopmentConfig().Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		l = zap.NewNop()
	}
	sugar = l.Sugar()
}

// Setup replaces the default development logger. mode "production" switches to the JSON
// encoder; a non-empty filename adds a rotated file sink next to stdout.
func Setup(mode, filename string) {
	level := zap.NewAtomicLevelAt(zap.DebugLevel)
	encCfg := zap.NewDevelopmentEncoderConfig()
	if mode == "production" {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
		encCfg = zap.NewProductionEncoderConfig()
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(os.Stdout), level),
	}
	if filename != "" {
		rotated := &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(rotated),
			level,
		))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	zap.ReplaceGlobals(l)
	sugar = l.Sugar()
}

func Sync() {
	_ = sugar.Sync()
}

func Info(msg string, v ...interface{}) {
	sugar.Infof(msg, v...)
}

func Warn(msg string, v ...interface{}) {
	sugar.Warnf(msg, v...)
}

// Error logs msg with err appended. Trailing v values that are not format arguments
// (nil, or extra context maps) are attached as a "context" field.
func Error(msg string, err error, v ...interface{}) {
	args := make([]interface{}, 0, len(v))
	for _, a := range v {
		if a != nil {
			args = append(args, a)
		}
	}
	if len(args) > 0 {
		msg = fmt.Sprintf("%s %v", msg, args)
	}
	if err != nil {
		sugar.Errorw(msg, "error", err)
		return
	}
	sugar.Error(msg)
}

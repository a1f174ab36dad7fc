package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// structured logger shared by the CLI and the server
type Logger struct {
	*zap.SugaredLogger
}

// console logger on stderr, debug level when verbose
func NewLogger(verbose bool) *Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if !verbose {
		encCfg.CallerKey = ""
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)

	opts := []zap.Option{}
	if verbose {
		opts = append(opts, zap.AddCaller())
	}

	return &Logger{SugaredLogger: zap.New(core, opts...).Sugar()}
}

// logger that discards everything, for tests and library defaults
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// child logger carrying a component field
func (l *Logger) Named(component string) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With("component", component)}
}

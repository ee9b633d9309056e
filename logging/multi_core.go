package logging

import (
	"os"

	"go.uber.org/zap/zapcore"
)

// NewMultiCore builds a tee of a console core and a JSON file core.
// The console encoder depends on the mode: colored, human-readable output
// in development and structured JSON in production. The file core always
// writes JSON through the rotating writer. If logFilePath is empty, only
// the console core is used.
func NewMultiCore(level zapcore.Level, logFilePath string, isDevelopment bool) zapcore.Core {
	var consoleEncoder zapcore.Encoder
	if isDevelopment {
		consoleEncoder = zapcore.NewConsoleEncoder(NewConsoleEncoderConfig())
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(NewEncoderConfig())
	}
	consoleCore := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), level)

	if logFilePath == "" {
		return consoleCore
	}

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(NewEncoderConfig()),
		NewFileWriter(logFilePath),
		level,
	)
	return zapcore.NewTee(consoleCore, fileCore)
}

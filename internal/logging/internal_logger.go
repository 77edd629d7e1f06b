package logging

import (
	"fmt"

	"github.com/rs/zerolog"
)

// InternalLogger is the logging interface handed to components like the claim orchestrator
// and the scheduled tasks, so they don't depend on the global zerolog logger.
type InternalLogger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

var zerologLevels = map[Level]zerolog.Level{
	LevelDebug: zerolog.DebugLevel,
	LevelInfo:  zerolog.InfoLevel,
	LevelWarn:  zerolog.WarnLevel,
	LevelError: zerolog.ErrorLevel,
}

// FuncLogger formats every line and hands it to the function.
type FuncLogger func(level Level, msg string)

var _ InternalLogger = FuncLogger(nil)

func (fn FuncLogger) Debug(format string, args ...any) {
	fn(LevelDebug, fmt.Sprintf(format, args...))
}

func (fn FuncLogger) Info(format string, args ...any) {
	fn(LevelInfo, fmt.Sprintf(format, args...))
}

func (fn FuncLogger) Warn(format string, args ...any) {
	fn(LevelWarn, fmt.Sprintf(format, args...))
}

func (fn FuncLogger) Error(format string, args ...any) {
	fn(LevelError, fmt.Sprintf(format, args...))
}

// Zerolog writes to zlog. Lines below the level of zlog are dropped.
func Zerolog(zlog zerolog.Logger) FuncLogger {
	return func(level Level, msg string) {
		zlog.WithLevel(zerologLevels[level]).Msg(msg)
	}
}

// Tee writes every line to all loggers.
func Tee(loggers ...InternalLogger) FuncLogger {
	return func(level Level, msg string) {
		for _, l := range loggers {
			switch level {
			case LevelDebug:
				l.Debug("%s", msg)
			case LevelInfo:
				l.Info("%s", msg)
			case LevelWarn:
				l.Warn("%s", msg)
			default:
				l.Error("%s", msg)
			}
		}
	}
}

// Nop discards everything. Used when claim warnings are silenced with --quiet.
type Nop struct{}

var _ InternalLogger = Nop{}

func (Nop) Debug(string, ...any) {}
func (Nop) Info(string, ...any)  {}
func (Nop) Warn(string, ...any)  {}
func (Nop) Error(string, ...any) {}

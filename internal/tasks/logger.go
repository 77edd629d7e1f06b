package tasks

import (
	"github.com/rs/zerolog"

	"github.com/darmiel/doipv/internal/logging"
)

// runLogger logs to zerolog and keeps every line with the task, so it can be read through the API.
func runLogger(task *Task, zlog zerolog.Logger) logging.InternalLogger {
	return logging.Tee(
		logging.Zerolog(zlog),
		logging.FuncLogger(func(level logging.Level, msg string) {
			task.appendLog(string(level), msg)
		}),
	)
}

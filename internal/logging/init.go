package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options controls how the global logger is set up.
type Options struct {
	Level   string // debug, info, warn, error
	Format  string // console, json
	NoColor bool
	Output  io.Writer
}

// InitDefault sets up a console logger on stderr before flags are parsed.
func InitDefault() {
	Init(Options{Level: "info", Format: "console"})
}

// Init (re-)configures the global zerolog logger.
func Init(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if strings.EqualFold(opts.Format, "json") {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
		return
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.TimeOnly,
		NoColor:    opts.NoColor,
	}).With().Timestamp().Logger()
}

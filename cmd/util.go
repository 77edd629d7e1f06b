package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/doipv/pkg/client"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()
)

func greenCheck() string { return color.GreenString("✔") }
func redCross() string   { return color.RedString("✖") }

// logError logs the correlation ID of a failed remote call before returning err.
func logError(err error, correlation, msg string) error {
	var apiErr client.APIError
	if errors.As(err, &apiErr) && correlation == "" {
		correlation = apiErr.CorrelationID
	}
	if correlation != "" {
		log.Error().Str("correlation_id", correlation).Msg(msg)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func applyTableFormat(t table.Writer) {
	s := table.StyleRounded
	s.Format.Header = text.FormatDefault
	t.SetStyle(s)
}

// readArgOrStdin returns arg, or the trimmed content of stdin if arg is "-".
func readArgOrStdin(arg string, stdin io.Reader) (string, error) {
	if arg != "-" {
		return strings.TrimSpace(arg), nil
	}
	log.Debug().Msg("Reading from stdin")
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading from stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func stdout() io.Writer {
	return os.Stdout
}

// Package render prints verification results for humans and machines.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/darmiel/doipv/internal/core"
	"github.com/darmiel/doipv/internal/openpgp"
)

type Format string

const (
	FormatText       Format = "text"
	FormatJSON       Format = "json"
	FormatJSONPretty Format = "json-pretty"
	FormatTable      Format = "table"
)

var formats = []Format{FormatText, FormatJSON, FormatJSONPretty, FormatTable}

// Formats lists the names of all output formats.
func Formats() []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		out = append(out, string(f))
	}
	return out
}

func ParseFormat(s string) (Format, error) {
	for _, f := range formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format '%s', use one of: %s", s, strings.Join(Formats(), ", "))
}

// Profile writes a verified ASPE profile.
func Profile(w io.Writer, p *core.VerifiedProfile, f Format) error {
	switch f {
	case FormatJSON, FormatJSONPretty:
		return writeJSON(w, p, f == FormatJSONPretty)
	case FormatTable:
		return profileTable(w, p)
	default:
		return profileText(w, p)
	}
}

// KeyProfile writes a verified OpenPGP key profile.
func KeyProfile(w io.Writer, p *openpgp.KeyProfile, f Format) error {
	switch f {
	case FormatJSON, FormatJSONPretty:
		return writeJSON(w, p, f == FormatJSONPretty)
	case FormatTable:
		return keyProfileTable(w, p)
	default:
		return keyProfileText(w, p)
	}
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// providerLabel is the short description of who confirmed a claim.
func providerLabel(o core.ClaimOutcome) string {
	if o.Result == nil || o.Result.ServiceProvider == nil {
		return ""
	}
	return o.Result.ServiceProvider.Name
}

package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/darmiel/doipv/internal/core"
	"github.com/darmiel/doipv/internal/openpgp"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
)

func checkmark(verified bool) string {
	if verified {
		return green("✔")
	}
	return red("✖")
}

func profileText(w io.Writer, p *core.VerifiedProfile) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s\n", bold("ASPE Profile:"), p.URI())
	if fp := p.Fingerprint(); fp != "" {
		fmt.Fprintf(&sb, "  Fingerprint: %s\n", faint(fp))
	}
	if name, ok := p.Name(); ok {
		fmt.Fprintf(&sb, "  Name: %s\n", profileColor(p).Sprint(name))
	}
	if desc, ok := p.Description(); ok {
		fmt.Fprintf(&sb, "  Description: %s\n", desc)
	}
	if version, ok := p.Version(); ok {
		fmt.Fprintf(&sb, "  Version: %d\n", version)
	}
	if c, ok := p.Color(); ok {
		fmt.Fprintf(&sb, "  Color: %s\n", c)
	}

	claims := p.Claims()
	if len(claims) == 0 {
		sb.WriteString("  Claims: " + faint("(none)") + "\n")
	} else {
		fmt.Fprintf(&sb, "  Claims (%d/%d verified):\n", p.VerifiedCount(), len(claims))
		writeOutcomes(&sb, claims, "    ")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func keyProfileText(w io.Writer, p *openpgp.KeyProfile) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s\n", bold("OpenPGP Key Fingerprint:"), p.Fingerprint)
	if len(p.UserIDProofs) == 0 {
		sb.WriteString("  User IDs: " + faint("(none)") + "\n")
	}
	for _, u := range p.UserIDProofs {
		fmt.Fprintf(&sb, "  UserID: %s\n", bold(u.UserID))
		if len(u.Proofs) == 0 {
			sb.WriteString("    " + faint("(none)") + "\n")
			continue
		}
		writeOutcomes(&sb, u.Proofs, "    ")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeOutcomes(sb *strings.Builder, outcomes []core.ClaimOutcome, indent string) {
	for _, o := range outcomes {
		fmt.Fprintf(sb, "%s%s %s", indent, checkmark(o.Verified()), o.URI)
		if label := providerLabel(o); label != "" {
			fmt.Fprintf(sb, " %s", faint("("+label+")"))
		}
		if o.Result != nil && o.Result.ProxyUsed != "" {
			fmt.Fprintf(sb, " %s", faint("via "+o.Result.ProxyUsed))
		}
		sb.WriteString("\n")
	}
}

// profileColor returns the display color of the profile, or bold if it has none or it is unreadable.
func profileColor(p *core.VerifiedProfile) *color.Color {
	hex, ok := p.Color()
	if !ok {
		return color.New(color.Bold)
	}
	r, g, b, ok := parseHexColor(hex)
	if !ok {
		return color.New(color.Bold)
	}
	return color.RGB(r, g, b).Add(color.Bold)
}

// parseHexColor reads "#rrggbb" or "#rgb".
func parseHexColor(s string) (r, g, b int, ok bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}

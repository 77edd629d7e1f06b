package render

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/darmiel/doipv/internal/core"
	"github.com/darmiel/doipv/internal/doip"
	"github.com/darmiel/doipv/internal/openpgp"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	s := table.StyleRounded
	s.Format.Header = text.FormatDefault
	t.SetStyle(s)
	return t
}

func outcomeRow(o core.ClaimOutcome) table.Row {
	proxy := ""
	if o.Result != nil {
		proxy = o.Result.ProxyUsed
	}
	return table.Row{checkmark(o.Verified()), o.URI, providerLabel(o), proxy}
}

func profileTable(w io.Writer, p *core.VerifiedProfile) error {
	t := newTable(w)

	title := p.URI()
	if name, ok := p.Name(); ok {
		title = name + " (" + title + ")"
	}
	t.SetTitle(title)
	t.AppendHeader(table.Row{"", "Claim", "Provider", "Proxy"})

	claims := p.Claims()
	if len(claims) == 0 {
		t.AppendRow(table.Row{"", faint("(none)"), "", ""})
	}
	for _, o := range claims {
		t.AppendRow(outcomeRow(o))
	}
	t.AppendFooter(table.Row{"", "Fingerprint: " + p.Fingerprint(), "", ""})
	t.Render()
	return nil
}

func keyProfileTable(w io.Writer, p *openpgp.KeyProfile) error {
	t := newTable(w)
	t.SetTitle("OpenPGP " + p.Fingerprint)
	t.AppendHeader(table.Row{"User ID", "", "Proof", "Provider", "Proxy"})

	for _, u := range p.UserIDProofs {
		if len(u.Proofs) == 0 {
			t.AppendRow(table.Row{u.UserID, "", faint("(none)"), "", ""})
			continue
		}
		for _, o := range u.Proofs {
			t.AppendRow(append(table.Row{u.UserID}, outcomeRow(o)...))
		}
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
	})
	t.Render()
	return nil
}

// Providers writes the known service providers as a table.
func Providers(w io.Writer, providers []*doip.Provider) error {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Protocol", "Match", "Check"})
	for _, p := range providers {
		check := p.CheckExpr()
		if check == "" {
			check = faint("(contains subject)")
		}
		proto := p.Proof.Protocol + "/" + p.Proof.Format
		if p.Proof.UseProxy {
			proto += " (proxy)"
		}
		t.AppendRow(table.Row{bold(p.Info.ID), p.Info.Name, proto, p.Pattern(), check})
	}
	t.Render()
	return nil
}

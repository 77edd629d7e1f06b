package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/darmiel/doipv/internal/core"
	"github.com/darmiel/doipv/internal/render"
)

var providersJSON bool

var providersCmd = &cobra.Command{
	Use:     "providers",
	Aliases: []string{"ls-providers"},
	Short:   "List the service providers claims are verified against",
	Long: `Lists the built-in service providers and those loaded from the providers file
(--providers or claims.providers_file). With --server, the providers of the server are listed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if f.Remote() {
			return providersRemote(cmd)
		}

		cfg, err := f.Config()
		if err != nil {
			return err
		}
		registry, err := f.Registry(cfg)
		if err != nil {
			return err
		}
		if providersJSON {
			infos := make([]core.ServiceProviderInfo, 0, len(registry.Providers()))
			for _, p := range registry.Providers() {
				infos = append(infos, p.Info)
			}
			return writeIndentedJSON(cmd, infos)
		}
		return render.Providers(cmd.OutOrStdout(), registry.Providers())
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)

	providersCmd.Flags().BoolVar(&providersJSON, "json", false, "Output the providers as JSON")
}

func providersRemote(cmd *cobra.Command) error {
	cli, err := f.GetClient()
	if err != nil {
		return err
	}
	providers, err := cli.Providers(cmd.Context())
	if err != nil {
		return logError(err, "", "failed to list providers of server")
	}
	if providersJSON {
		return writeIndentedJSON(cmd, providers)
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"ID", "Name", "Homepage"})
	for _, p := range providers {
		t.AppendRow(table.Row{bold(p.ID), p.Name, p.Homepage})
	}
	applyTableFormat(t)
	t.Render()
	return nil
}

func writeIndentedJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

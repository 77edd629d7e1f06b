package cmd

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/doipv/internal/buildinfo"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show information about the doipv installation",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !f.Remote() {
			return infoLocally(cmd, args)
		}
		return infoRemote(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func infoRemote(cmd *cobra.Command, _ []string) error {
	cli, err := f.GetClient()
	if err != nil {
		return err
	}
	log.Info().Msg("Fetching build info from server...")
	info, correlation, err := cli.Info(cmd.Context())
	if err != nil {
		return logError(err, correlation, "failed to get info from server")
	}
	printInfo(cmd.OutOrStdout(), info)
	return nil
}

func infoLocally(cmd *cobra.Command, _ []string) error {
	log.Info().Msg("Showing local build info...")
	info := buildinfo.GetBuildInfo()
	printInfo(cmd.OutOrStdout(), &info)
	return nil
}

func printInfo(w io.Writer, info *buildinfo.Info) {
	_, _ = fmt.Fprintln(w, bold("\n── doipv Build Information ──"))
	_, _ = fmt.Fprintf(w, "  %s:    %s\n", faint("Version"), info.Version)
	_, _ = fmt.Fprintf(w, "  %s:     %s\n", faint("Commit"), info.CommitHash)
	if info.GoVersion != "" {
		_, _ = fmt.Fprintf(w, "  %s:         %s\n", faint("Go"), info.GoVersion)
	}
	if info.About != "" {
		_, _ = fmt.Fprintf(w, "  %s:      %s\n", faint("About"), info.About)
	}
}

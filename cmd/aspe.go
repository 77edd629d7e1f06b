package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/doipv/internal/core"
	"github.com/darmiel/doipv/internal/render"
)

var aspeFormat string

var aspeCmd = &cobra.Command{
	Use:   "aspe URI",
	Short: "Fetch and verify an ASPE profile",
	Long: `Fetches the ASPE profile token from the domain of the given URI, verifies its signature
against the embedded key and verifies all identity claims of the profile.

Claims that cannot be verified are reported as unverified; they do not fail the command.`,
	Example: `  # Verify a profile and print the result as text
  doipv aspe aspe:keyoxide.org:TOICV3SYXNJP7E4P5AOK5DHW44

  # Print the verified profile as JSON
  doipv aspe -o json aspe:keyoxide.org:TOICV3SYXNJP7E4P5AOK5DHW44

  # Verify through a running doipv server
  doipv --server http://localhost:8080 aspe aspe:keyoxide.org:TOICV3SYXNJP7E4P5AOK5DHW44`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := render.ParseFormat(aspeFormat)
		if err != nil {
			return err
		}

		var profile *core.VerifiedProfile
		if f.Remote() {
			profile, err = verifyASPERemote(cmd, args[0])
		} else {
			profile, err = verifyASPELocally(cmd, args[0])
		}
		if err != nil {
			return err
		}
		return render.Profile(stdout(), profile, format)
	},
}

func init() {
	rootCmd.AddCommand(aspeCmd)

	aspeCmd.Flags().StringVarP(&aspeFormat, "format", "o", string(render.FormatText),
		fmt.Sprintf("Output format (one of: %v)", render.Formats()))
}

func verifyASPELocally(cmd *cobra.Command, uri string) (*core.VerifiedProfile, error) {
	svc, err := f.GetLocalService()
	if err != nil {
		return nil, err
	}
	log.Debug().Msgf("Verifying profile %s...", uri)
	res, err := svc.VerifyASPE(cmd.Context(), uri)
	if err != nil {
		return nil, fmt.Errorf("verifying profile: %w", err)
	}
	return res.Profile, nil
}

func verifyASPERemote(cmd *cobra.Command, uri string) (*core.VerifiedProfile, error) {
	cli, err := f.GetClient()
	if err != nil {
		return nil, err
	}
	log.Debug().Msgf("Verifying profile %s on server...", uri)
	res, err := cli.VerifyASPE(cmd.Context(), uri)
	if err != nil {
		return nil, logError(err, "", "failed to verify profile on server")
	}
	log.Debug().
		Bool("cached", res.Cached).
		Str("correlation_id", res.CorrelationID).
		Msg("profile verified on server")
	return res.Profile, nil
}

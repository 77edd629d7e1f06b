package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/doipv/internal/openpgp"
	"github.com/darmiel/doipv/internal/render"
)

var keysFormat string

var keysCmd = &cobra.Command{
	Use:   "keys FILE",
	Short: "Verify the identity proofs of an OpenPGP key",
	Long: `Verifies the proofs of an OpenPGP key given as proof mapping.
The mapping is a YAML or JSON file with the key fingerprint and the proof URIs of each user ID:

  fingerprint: 3637202523E7C1309AB79E99EF2DC5827B445F4B
  user_ids:
    - name: Alice
      email: alice@example.org
      proofs:
        - dns:example.org
        - https://gist.github.com/alice/0123456789abcdef

Use "-" to read the mapping from stdin.`,
	Example: `  # Verify the proofs of a key
  doipv keys alice.yaml

  # Read the mapping from stdin and print a table
  cat alice.yaml | doipv keys -o table -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := render.ParseFormat(keysFormat)
		if err != nil {
			return err
		}

		mapping, err := openpgp.LoadMapping(args[0])
		if err != nil {
			return err
		}

		var profile *openpgp.KeyProfile
		if f.Remote() {
			cli, err := f.GetClient()
			if err != nil {
				return err
			}
			var correlation string
			profile, correlation, err = cli.VerifyKeys(cmd.Context(), mapping)
			if err != nil {
				return logError(err, correlation, "failed to verify key on server")
			}
		} else {
			svc, err := f.GetLocalService()
			if err != nil {
				return err
			}
			log.Debug().Msgf("Verifying proofs of %s...", mapping.Fingerprint)
			if profile, err = svc.VerifyKeys(cmd.Context(), mapping); err != nil {
				return fmt.Errorf("verifying key: %w", err)
			}
		}
		return render.KeyProfile(stdout(), profile, format)
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)

	keysCmd.Flags().StringVarP(&keysFormat, "format", "o", string(render.FormatText),
		fmt.Sprintf("Output format (one of: %v)", render.Formats()))
}

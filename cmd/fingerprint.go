package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/darmiel/doipv/internal/aspe"
)

var fingerprintRaw bool

var fingerprintCmd = &cobra.Command{
	Use:     "fingerprint TOKEN",
	Aliases: []string{"fp"},
	Short:   "Calculate the fingerprint of the key embedded in a profile token",
	Long: `Calculates the ASPE fingerprint of the public key in the "jwk" header of a profile token:
the first 16 bytes of the SHA-512 JWK thumbprint, base32 encoded.

The token signature is NOT verified.`,
	Example: `  # Calculate the fingerprint of a token
  doipv fingerprint eyJ0eXAiOiJKV1QiLCJhbGciOiJFZERTQSIsImp3ayI6...

  # Calculate the fingerprint of a fetched token
  curl -s https://keyoxide.org/.well-known/aspe/id/TOICV3SYXNJP7E4P5AOK5DHW44 | doipv fp -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := readArgOrStdin(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}
		if token == "" {
			return fmt.Errorf("token cannot be empty")
		}

		fp, err := aspe.TokenFingerprint(token)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if fingerprintRaw {
			_, _ = fmt.Fprintln(out, fp)
		} else {
			_, _ = fmt.Fprintln(out, "Fingerprint:", fp)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fingerprintCmd)

	fingerprintCmd.Flags().BoolVarP(&fingerprintRaw, "raw", "r", false,
		"Output only the fingerprint value without additional text")
}

package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file and the service provider definitions",
	Long: `Loads the configuration file (--config or the default search path) with all env and flag
overrides applied, and compiles the built-in and configured service provider definitions.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := f.Config()
		if err != nil {
			log.Error().Err(err).Msg("Configuration is invalid.")
			return err
		}
		registry, err := f.Registry(cfg)
		if err != nil {
			log.Error().Err(err).Msg("Service provider definitions are invalid.")
			return err
		}

		source := viper.ConfigFileUsed()
		if source == "" {
			source = "(defaults)"
		}
		log.Info().
			Str("config", source).
			Int("providers", len(registry.Providers())).
			Msg("Configuration is valid.")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}

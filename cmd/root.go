package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/darmiel/doipv/internal/buildinfo"
	"github.com/darmiel/doipv/internal/logging"
)

// global flags
var (
	cfgFile    string
	serverAddr string
)

const (
	LogLevelKey   = "log.level"
	LogFormatKey  = "log.format"
	LogNoColorKey = "log.no_color"
	QuietKey      = "quiet"

	ServerAddrKey = "server"

	HTTPTimeoutKey       = "http.timeout"
	HTTPProxyKey         = "http.proxy"
	HTTPSkipVerifyKey    = "http.skip_verify_ssl"
	ClaimsConcurrencyKey = "claims.concurrency"
	ProvidersFileKey     = "claims.providers_file"
	StrictFingerprintKey = "profile.strict_fingerprint"
)

var f = NewFactory()

var rootCmd = &cobra.Command{
	Use:   "doipv",
	Short: fmt.Sprintf("Decentralized online identity proof verifier (version: %s, commit: %s)", buildinfo.Version, buildinfo.CommitHash),
	Long: `doipv verifies ASPE identity profiles and the online identity claims they contain.

A profile is fetched from the domain in its URI, its signature is checked against the
key embedded in the token, and every claim is verified concurrently against its service provider.`,
	Version: buildinfo.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, configErr := initConfig()
		noColor := viper.GetBool(LogNoColorKey)
		if noColor {
			color.NoColor = true
		}
		logging.Init(logging.Options{
			Level:   viper.GetString(LogLevelKey),
			Format:  viper.GetString(LogFormatKey),
			NoColor: noColor,
		})
		cmd.SetContext(log.Logger.WithContext(cmd.Context()))
		if configErr != nil { // handle error after logging is initialized
			return configErr
		}
		if configPath != "" {
			log.Debug().Msgf("using config file: %s", configPath)
		}
		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		log.Error().Err(err).Msg("execution failed")
		stop()
		os.Exit(1)
	}
}

func init() {
	// setup pre-flag logger
	logging.InitDefault()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Configuration file (default is ./.doipv.yaml, $HOME/.doipv.yaml or $XDG_CONFIG_HOME/doipv/.doipv.yaml)")

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = viper.BindPFlag(LogLevelKey, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("log-format", "console", "Log format (console, json)")
	_ = viper.BindPFlag(LogFormatKey, rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.PersistentFlags().Bool("no-color", false, "Disable color output")
	_ = viper.BindPFlag(LogNoColorKey, rootCmd.PersistentFlags().Lookup("no-color"))

	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Do not log failed claim verifications")
	_ = viper.BindPFlag(QuietKey, rootCmd.PersistentFlags().Lookup("quiet"))

	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "",
		"Address of a remote doipv server; verification commands run there instead of locally")
	_ = viper.BindPFlag(ServerAddrKey, rootCmd.PersistentFlags().Lookup("server"))

	f.bindConfigFlags(rootCmd.PersistentFlags())

	viper.SetEnvPrefix("DOIPV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))

	viper.AutomaticEnv()

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

func initConfig() (string, error) {
	// reads in config file and ENV variables if set.
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// search order: current dir, $HOME, XDG config
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}

		config, err := os.UserConfigDir()
		if err == nil {
			viper.AddConfigPath(config + "/doipv")
		}

		viper.SetConfigType("yaml")
		viper.SetConfigName(".doipv")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundError) {
			return "", err
		}
	} else {
		return viper.ConfigFileUsed(), nil
	}

	return "", nil
}

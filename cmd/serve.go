package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/darmiel/doipv/internal/api"
	"github.com/darmiel/doipv/internal/logging"
	"github.com/darmiel/doipv/internal/service"
	"github.com/darmiel/doipv/internal/store"
	"github.com/darmiel/doipv/internal/tasks"
)

const (
	ServerListenKey   = "server.addr"
	ServerCacheTTLKey = "server.cache_ttl"

	purgeCacheTask = "purge-profile-cache"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the doipv verification server",
	Long: `Runs an HTTP server that verifies ASPE profiles and OpenPGP key proofs on request.

Verified ASPE profiles are cached for server.cache_ttl; expired entries are purged
by the background task "` + purgeCacheTask + `".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := f.Components()
		if err != nil {
			return err
		}
		cfg := c.Config
		if viper.IsSet(ServerListenKey) {
			cfg.Server.Addr = viper.GetString(ServerListenKey)
		}
		if viper.IsSet(ServerCacheTTLKey) {
			cfg.Server.CacheTTL = viper.GetDuration(ServerCacheTTLKey)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log.Info().Msgf("Loaded %d service providers", len(c.Registry.Providers()))

		var cache *store.ProfileCache
		if cfg.Server.CacheTTL > 0 {
			cache = store.NewProfileCache(cfg.Server.CacheTTL)
		}
		var profileCache service.ProfileCache
		if cache != nil {
			profileCache = cache
		}
		svc := service.NewVerificationService(c.Verifier, c.Orchestrator, profileCache)

		taskManager := tasks.NewManager()
		if cache != nil {
			taskManager.Register(purgeCacheTask, cfg.Server.PurgeInterval, time.Minute,
				func(ctx context.Context, logger logging.InternalLogger) error {
					n, err := cache.DeleteExpired(ctx)
					if err != nil {
						return fmt.Errorf("purging profile cache: %w", err)
					}
					logger.Info("purged %d expired profiles, %d remaining", n, cache.Len())
					return nil
				})
		}
		taskManager.Start(ctx)

		srv := api.NewServer(svc, taskManager, c.Registry)
		server := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           srv.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext: func(_ net.Listener) context.Context {
				return log.Logger.WithContext(context.Background())
			},
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info().Msgf("Starting server on %s...", cfg.Server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				stop()
				taskManager.Wait()
				return fmt.Errorf("server crashed: %w", err)
			}
		case <-ctx.Done():
		}
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		taskManager.Wait()

		log.Info().Msg("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Address to listen on (default from config, :8080)")
	_ = viper.BindPFlag(ServerListenKey, serveCmd.Flags().Lookup("addr"))

	serveCmd.Flags().Duration("cache-ttl", 0, "How long verified profiles are cached (0 disables the cache)")
	_ = viper.BindPFlag(ServerCacheTTLKey, serveCmd.Flags().Lookup("cache-ttl"))
}

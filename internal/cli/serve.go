package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/textcipher-go/internal/config"
	"github.com/textcipher-go/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the cipher API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			log.Info().Str("version", config.Version).Msg("Starting textcipher")
			log.Info().
				Str("http_addr", cfg.GetHTTPAddr()).
				Bool("h2c", cfg.Server.EnableH2C).
				Bool("auth", cfg.IsAuthEnabled()).
				Int("chunk_size", cfg.Stream.ChunkSize).
				Msg("Configuration loaded")

			srv, err := server.New(cfg)
			if err != nil {
				return err
			}

			// Graceful shutdown
			go func() {
				sigChan := make(chan os.Signal, 1)
				signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
				<-sigChan

				log.Info().Msg("Received shutdown signal")
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := srv.Shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error during shutdown")
				}
			}()

			return srv.Start()
		},
	}
}

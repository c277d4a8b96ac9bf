package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/artwork-table/internal/config"
	"github.com/Sternrassler/artwork-table/internal/server"
	"github.com/Sternrassler/artwork-table/internal/supervisor"
	"github.com/Sternrassler/artwork-table/pkg/client"
	"github.com/Sternrassler/artwork-table/pkg/logging"
)

func newServeCmd() *cobra.Command {
	var (
		addr       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the artwork table web server",
		Long: `Starts the artwork table on the configured address.

Configuration is read from built-in defaults, a YAML file (config.yaml,
CONFIG_PATH or --config), a .env file and the environment, in that order.
Flags override everything else.`,
		Example: `  # Start server on the default address :8080
  artwork-table serve

  # Start server on a custom address with a config file
  artwork-table serve --addr 127.0.0.1:3000 --config ./config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			logger := logging.Setup(logging.Config{
				Level:  logging.ParseLevel(cfg.Logging.Level),
				Pretty: cfg.Logging.Pretty,
				Caller: cfg.Logging.Caller,
				Output: os.Stderr,
			})

			artic, err := client.New(client.Config{
				BaseURL:   cfg.Artic.BaseURL,
				UserAgent: cfg.Artic.UserAgent,
				PageSize:  cfg.Artic.PageSize,
			})
			if err != nil {
				return fmt.Errorf("create listing client: %w", err)
			}
			defer artic.Close()

			srv, err := server.New(artic, server.Options{
				PageSize:        cfg.Artic.PageSize,
				BulkRateLimit:   cfg.Server.BulkRateLimit,
				ViewIdleTimeout: cfg.Server.ViewIdleTimeout,
			})
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}

			httpServer := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
			}
			httpService := supervisor.NewHTTPService(httpServer, cfg.Server.ShutdownTimeout)

			tree := supervisor.NewTree("artwork-table", supervisor.Config{
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
			})
			tree.Add(httpService)
			tree.Add(srv.Sweeper())

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go func() {
				select {
				case <-httpService.Failed():
					cancel()
				case <-ctx.Done():
				}
			}()

			logger.Info().
				Str("addr", cfg.Server.Addr).
				Str("upstream", cfg.Artic.BaseURL).
				Int("page_size", cfg.Artic.PageSize).
				Msg("Artwork table available")

			err = tree.Serve(ctx)
			if httpErr := httpService.Err(); httpErr != nil {
				return fmt.Errorf("http server: %w", httpErr)
			}
			if err != nil {
				return err
			}

			logger.Info().Msg("Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Address to listen on")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")

	return cmd
}

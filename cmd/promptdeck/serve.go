package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/config"
	"github.com/promptdeck/promptdeck/internal/server"
)

var (
	serveHost  string
	servePort  int
	serveStore string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Promptdeck server",
	Long: `Start the Promptdeck HTTP server.

The server opens the SQLite store and serves the API until interrupted
(Ctrl+C or SIGTERM). In-flight test runs settle into a terminal state
before shutdown completes.

Examples:
  promptdeck serve                      # Start on default port 8991
  promptdeck serve --port 3000          # Start on custom port
  promptdeck serve --store data.db      # Custom database file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Set up logger
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		configMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		configMgr.WatchConfig()

		cfg := configMgr.Get()
		host := cfg.Server.Host
		port := cfg.Server.Port
		storePath := cfg.Store.Path
		if cmd.Flags().Changed("host") {
			host = serveHost
		}
		if cmd.Flags().Changed("port") {
			port = servePort
		}
		if cmd.Flags().Changed("store") {
			storePath = serveStore
		}

		srv, err := server.New(server.Config{
			Host:          host,
			Port:          port,
			StorePath:     storePath,
			ConfigManager: configMgr,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().IntVar(&servePort, "port", 8991, "Port to listen on")
	serveCmd.Flags().StringVar(&serveStore, "store", "promptdeck.db", "SQLite database file")

	rootCmd.AddCommand(serveCmd)
}

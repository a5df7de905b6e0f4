package main

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/weavescan/services/scanner/gateway"
	"github.com/AleutianAI/weavescan/services/scanner/handlers"
	"github.com/AleutianAI/weavescan/services/scanner/observability"
)

var servePort string

// serveCmd runs the scanner service from the yaml config, so one binary
// covers both deployment and inspection of a running instance.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scanner service",
	RunE: func(cmd *cobra.Command, args []string) error {
		// The service logs structured JSON through the shared logger.
		slog.SetDefault(logger.Slog())

		port := servePort
		if port == "" {
			p, err := serverPort(config.ServerURL)
			if err != nil {
				return err
			}
			port = p
		}

		client := gateway.NewClient(config.GatewayURL, nil, config.RequestsPerSecond)
		observability.InitMetrics()
		router := handlers.NewRouter(client)

		logger.Info("scanner service starting",
			"port", port, "gateway", config.GatewayURL)
		return router.Run(":" + port)
	},
}

// serverPort extracts the listen port from the configured server_url,
// falling back to the service default when the url carries none.
func serverPort(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server_url %q: %w", serverURL, err)
	}
	if p := u.Port(); p != "" {
		return p, nil
	}
	return "12310", nil
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "",
		"listen port (defaults to the server_url port)")
	rootCmd.AddCommand(serveCmd)
}

// internal/commands/serve.go
package hublink

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/mwiater/hublink/internal/appconfig"
	"github.com/mwiater/hublink/internal/gateway"
	"github.com/mwiater/hublink/internal/hubspot"
	"github.com/mwiater/hublink/internal/logging"
	"github.com/mwiater/hublink/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd runs the MCP server on stdin/stdout. stdout carries protocol
// frames only; all diagnostics go to stderr and the log file.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HubSpot tool catalog over MCP stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := buildGateway()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logging.LogEvent("hublink serving %d tools over stdio", len(gw.Tools()))
		return server.New(gw).Run(ctx, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// buildGateway wires config, HubSpot client, service, and gateway. A missing
// access token fails here, before any frames are exchanged.
func buildGateway() (*gateway.Gateway, error) {
	cfg := GetConfig()
	if cfg == nil {
		cfg = &appconfig.Config{}
	}

	client, err := hubspot.NewClient(cfg.AccessToken, cfg.BaseURLValue(), cfg.RequestTimeout())
	if err != nil {
		return nil, err
	}
	svc := hubspot.NewService(client, cfg.Debug)
	return gateway.New(svc), nil
}

package cli

import (
	"github.com/jwulff/recite/internal/logging"
	"github.com/jwulff/recite/internal/mcpserver"
	"github.com/spf13/cobra"
)

func newMCPCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve transcription and check-in tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			// stdout carries the protocol; logs go to stderr as JSON.
			cfg.Log.JSON = true
			log := logging.Component(logging.ForCLI(cfg.Log), "mcp")

			client, err := newClient(cfg, log)
			if err != nil {
				return err
			}
			return mcpserver.New(client, Version, cfg.Poll.Interval, log).ServeStdio()
		},
	}
}

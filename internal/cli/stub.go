package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/jwulff/recite/internal/logging"
	"github.com/jwulff/recite/internal/stub"
	"github.com/spf13/cobra"
)

func newStubCmd(g *globalFlags) *cobra.Command {
	var (
		addr string
		cfg  = stub.DefaultConfig()
	)

	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Serve a local stand-in for the transcription service",
		Long: `Serve the transcription, status and check-in endpoints from memory.

Each submitted file is answered with a lattice describing it, and each job
reports "pending" for --pending polls before completing.

Example:
  recite stub --addr :3000
  recite --base-url http://localhost:3000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appCfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			log := logging.Component(logging.ForCLI(appCfg.Log), "stub")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info().Str("addr", addr).Int("pending_polls", cfg.PendingPolls).Msg("stub listening")
			return stub.New(cfg, log).Run(ctx, addr)
		},
	}

	f := cmd.Flags()
	f.StringVar(&addr, "addr", ":3000", "listen address")
	f.IntVar(&cfg.PendingPolls, "pending", cfg.PendingPolls, "status polls answered pending before completion")
	f.Float64Var(&cfg.StepSeconds, "step", cfg.StepSeconds, "estimated seconds reported per remaining poll")
	return cmd
}

package cli

import (
	"fmt"

	"github.com/jwulff/recite/internal/checkin"
	"github.com/jwulff/recite/internal/db"
	"github.com/jwulff/recite/internal/logging"
	"github.com/spf13/cobra"
)

func newCheckInCmd(g *globalFlags) *cobra.Command {
	var req checkin.Request

	cmd := &cobra.Command{
		Use:   "checkin",
		Short: "Record a reading session",
		Example: `  recite checkin --user alice --pages 1,2,3 --duration 125
  recite checkin --user bob --pages "ch. 4" --duration 90s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if err := req.Validate(); err != nil {
				fmt.Fprintln(out, checkin.MsgIncomplete)
				return err
			}

			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			log := logging.ForCLI(cfg.Log)
			client, err := newClient(cfg, log)
			if err != nil {
				return err
			}

			resp, err := client.RecordRecitation(cmd.Context(), req.Wire())
			if err != nil {
				fmt.Fprintln(out, checkin.MsgFailed)
				return err
			}
			fmt.Fprintln(out, resp.Message)
			fmt.Fprintf(cmd.ErrOrStderr(), "duration: %s\n", checkin.FormatDuration(req.ReciteDuration))

			store, err := openStore(cfg)
			if err != nil {
				log.Warn().Err(err).Msg("history disabled")
				return nil
			}
			if store != nil {
				defer store.Close()
				if _, err := store.SaveCheckIn(db.CheckIn{
					Username:       req.Username,
					RecitedPages:   req.RecitedPages,
					ReciteDuration: req.ReciteDuration,
					Message:        resp.Message,
				}); err != nil {
					log.Warn().Err(err).Msg("save check-in")
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Username, "user", "", "username")
	f.StringVar(&req.RecitedPages, "pages", "", "pages read, e.g. 1,2,3")
	f.Var((*durationValue)(&req.ReciteDuration), "duration", "session length in seconds or as a Go duration (90, 1m30s)")
	return cmd
}

// durationValue accepts whole seconds or a time.Duration string.
type durationValue int

func (d *durationValue) String() string { return fmt.Sprint(int(*d)) }

func (d *durationValue) Type() string { return "seconds" }

func (d *durationValue) Set(s string) error {
	secs, err := parseSeconds(s)
	if err != nil {
		return err
	}
	*d = durationValue(secs)
	return nil
}

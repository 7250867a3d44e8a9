package cli

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/jwulff/recite/internal/audio"
	"github.com/jwulff/recite/internal/db"
	"github.com/jwulff/recite/internal/job"
	"github.com/jwulff/recite/internal/lattice"
	"github.com/jwulff/recite/internal/logging"
	"github.com/spf13/cobra"
)

func newTranscribeCmd(g *globalFlags) *cobra.Command {
	var noWait bool

	cmd := &cobra.Command{
		Use:   "transcribe FILE",
		Short: "Submit an audio file and print its transcription",
		Long: `Submit an audio file to the transcription service, print the text,
then poll the job every poll.interval until it completes.

Example:
  recite transcribe lesson.wav
  recite transcribe --no-wait ~/Music/take2.m4a`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			log := logging.ForCLI(cfg.Log)
			client, err := newClient(cfg, log)
			if err != nil {
				return err
			}

			a, err := audio.FromFile(args[0], time.Now())
			if err != nil {
				return err
			}
			defer a.Release()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			resp, err := client.Transcribe(ctx, a.Upload())
			if err != nil {
				return fmt.Errorf("submit %s: %w", a.Name, err)
			}

			text, err := lattice.Parse(resp.Transcription)
			if err != nil {
				log.Warn().Err(err).Str("order_id", resp.OrderID).Msg("parse transcription")
				text = lattice.ParseErrorText
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			fmt.Fprintf(cmd.ErrOrStderr(), "order: %s\n", resp.OrderID)

			if noWait {
				return nil
			}

			var last string
			j, err := job.Poll(ctx, client, resp.OrderID, cfg.Poll.Interval, func(j job.Job) {
				if msg := j.Message(); msg != last {
					fmt.Fprintln(cmd.ErrOrStderr(), msg)
					last = msg
				}
			})
			if err != nil {
				return err
			}

			if j.State == job.Complete {
				store, err := openStore(cfg)
				if err != nil {
					log.Warn().Err(err).Msg("history disabled")
					return nil
				}
				if store != nil {
					defer store.Close()
					if _, err := store.SaveTranscription(db.Transcription{
						OrderID:  resp.OrderID,
						FileName: a.Name,
						Source:   a.Source.String(),
						Text:     text,
					}); err != nil {
						log.Warn().Err(err).Msg("save transcription")
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noWait, "no-wait", false, "print the transcription without polling the job")
	return cmd
}

func newStatusCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status ORDER_ID",
		Short: "Fetch the status of a transcription job once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			client, err := newClient(cfg, logging.ForCLI(cfg.Log))
			if err != nil {
				return err
			}

			resp, err := client.Status(cmd.Context(), args[0])
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), job.MsgFailed)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), job.Start(args[0]).Apply(resp).Message())
			return nil
		},
	}
}

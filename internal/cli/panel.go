package cli

import (
	"fmt"

	"github.com/jwulff/recite/internal/app"
	"github.com/jwulff/recite/internal/audio"
	"github.com/jwulff/recite/internal/logging"
	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"
)

func runPanel(cmd *cobra.Command, g *globalFlags) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	log, closer, err := logging.ForPanel(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	client, err := newClient(cfg, log)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("history disabled")
	}
	if store != nil {
		defer store.Close()
	}

	recorder := audio.NewFFmpegRecorder(audio.RecorderConfig{
		Binary:     cfg.Recorder.FFmpeg,
		Format:     cfg.Recorder.Format,
		Device:     cfg.Recorder.Device,
		SampleRate: cfg.Recorder.SampleRate,
	}, logging.Component(log, "recorder"))

	m := app.New(app.Deps{
		Service:        client,
		Recorder:       recorder,
		Player:         audio.Player{Binary: cfg.Player.Command},
		Store:          store,
		Log:            logging.Component(log, "panel"),
		PollInterval:   cfg.Poll.Interval,
		UploadDuration: cfg.UploadDurationMode(),
	})

	log.Info().Str("base_url", client.BaseURL()).Msg("panel starting")
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run panel: %w", err)
	}
	return nil
}

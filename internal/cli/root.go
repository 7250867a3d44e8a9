// Package cli wires the recite commands.
package cli

import (
	"fmt"
	"os"

	"github.com/jwulff/recite/internal/api"
	"github.com/jwulff/recite/internal/config"
	"github.com/jwulff/recite/internal/db"
	"github.com/jwulff/recite/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configFile string
	envFile    string
	baseURL    string
	logLevel   string
}

// NewRootCmd builds the command tree. Running the root command opens the panel.
func NewRootCmd() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:   "recite",
		Short: "Record, transcribe and check in reading sessions",
		Long: `recite - an audio transcription panel with reading check-ins

Record from the microphone or load an audio file, submit it to the
transcription service, follow the job until it completes, and check in
the pages you read together with the session length.

Run without arguments to open the interactive panel.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPanel(cmd, &g)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configFile, "config", "", "config file (default searches "+config.Dir()+" and .)")
	pf.StringVar(&g.envFile, "env-file", "", ".env file to load (default ./.env if present)")
	pf.StringVar(&g.baseURL, "base-url", "", "transcription service URL (overrides service.base_url)")
	pf.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newTranscribeCmd(&g),
		newStatusCmd(&g),
		newCheckInCmd(&g),
		newExtractCmd(),
		newHistoryCmd(&g),
		newStubCmd(&g),
		newMCPCmd(&g),
		newPageCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves configuration and applies flag overrides.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	overrides := make(map[string]any)
	if g.baseURL != "" {
		overrides["service.base_url"] = g.baseURL
	}
	if g.logLevel != "" {
		overrides["log.level"] = g.logLevel
	}
	cfg, _, err := config.Load(config.Options{
		ConfigFile: g.configFile,
		EnvFile:    g.envFile,
		Overrides:  overrides,
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func newClient(cfg *config.Config, log zerolog.Logger) (*api.Client, error) {
	return api.New(cfg.Service.BaseURL,
		api.WithTimeout(cfg.Service.Timeout),
		api.WithLogger(logging.Component(log, "api")),
	)
}

// openStore opens the history journal, or returns nil when history is disabled.
func openStore(cfg *config.Config) (*db.Store, error) {
	if cfg.History.Path == "" {
		return nil, nil
	}
	store, err := db.Open(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dwmorris11/semantic-router/cmd/semantic-router/internal/config"
)

var (
	verbose    bool
	configPath string

	globalConfig  *config.Config
	configLoadErr error
)

var rootCmd = &cobra.Command{
	Use:   "semantic-router",
	Short: "Split conversations into semantically coherent topics",
	Long: `semantic-router - incremental conversation topic segmentation.

The split command clusters a conversation transcript into topics using
embedding similarity, keeping previously assigned topic ids stable as
new messages arrive. The index commands operate the vector index used
for route utterances.

Configuration lives in the OS config directory:
  macOS:   ~/Library/Application Support/semantic-router/config.yaml
  Linux:   ~/.config/semantic-router/config.yaml

API keys fall back to $OPENAI_API_KEY, $GEMINI_API_KEY and
$PINECONE_API_KEY when not configured.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: OS config dir)")
}

func initConfig() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if configPath != "" {
		globalConfig, configLoadErr = config.LoadFrom(configPath)
	} else {
		globalConfig, configLoadErr = config.Load()
	}
}

// loadedConfig returns the config, surfacing any deferred load error.
func loadedConfig() (*config.Config, error) {
	if configLoadErr != nil {
		return nil, configLoadErr
	}
	return globalConfig, nil
}

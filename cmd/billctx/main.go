// billctx resolves which bill and which supporting documents a
// conversation is about, backed by a local knowledge database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/saihaj/DOGE-AI-sub000/internal/config"
	"github.com/saihaj/DOGE-AI-sub000/internal/logging"
)

var (
	// Global flags
	verbose    bool
	workspace  string
	configPath string

	// Loaded configuration
	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "billctx",
	Short: "billctx - conversational bill context resolution",
	Long: `billctx figures out which bill, and which supporting documents, a
conversation is about.

Resolution runs in tiers: an explicit bill number is looked up directly,
an exact title match is tried next, and finally semantic keyword search
with LLM relevance classification narrows the candidates. Supporting
document text is retrieved independently and concurrently.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if err := logging.Initialize(workspace); err != nil {
			logger.Warn("category logging unavailable", zap.Error(err))
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return cfg.Validate()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", ".", "Workspace directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "billctx.yaml", "Path to config file")

	resolveCmd.Flags().StringVarP(&conversationFile, "file", "f", "", "YAML file with the conversation")
	resolveCmd.Flags().StringVarP(&focalQuestion, "question", "q", "", "Focal question (defaults to the last message)")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

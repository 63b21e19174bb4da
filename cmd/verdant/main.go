// Package main provides the verdant CLI entry point. Running it without a
// subcommand starts the interactive plant-care wizard.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"verdant/cmd/verdant/ui"
	"verdant/internal/advisor"
	"verdant/internal/config"
	"verdant/internal/keystore"
	"verdant/internal/logging"
)

const version = "0.3.0"

var (
	// Global flags
	verbose bool
	model   string
	dataDir string

	// Logger
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "verdant",
	Short: "verdant - a plant-care assistant in your terminal",
	Long: `verdant walks you through four steps:

  1. pick photos of your plant
  2. confirm the identified species
  3. read a health report
  4. get advice tailored to your goal

Identification and advice come from Google's Gemini model; you bring your
own API key, which lives on this machine for at most 30 minutes.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A .env next to the binary is the easiest way to carry the key.
		_ = godotenv.Load()

		if dataDir == "" {
			var err error
			dataDir, err = keystore.DefaultDir()
			if err != nil {
				return err
			}
		}

		var err error
		logger, err = logging.New(dataDir, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWizard()
	},
}

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the stored session key",
}

var keyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a session key is stored and how long it remains valid",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := keystore.New(dataDir)
		age, ok := store.Age()
		if !ok {
			fmt.Println("no session key stored")
			return nil
		}
		if age >= keystore.TTL {
			fmt.Println("session key expired")
			return nil
		}
		fmt.Printf("session key valid for another %s\n", (keystore.TTL - age).Round(time.Second))
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the stored session key",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := keystore.New(dataDir).Clear(); err != nil {
			return err
		}
		fmt.Println("session key cleared")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the verdant version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("verdant %s\n", version)
	},
}

func runWizard() error {
	cfg, err := config.Load(dataDir)
	if err != nil {
		logger.Warn("config load failed, using defaults", zap.Error(err))
	}
	if model != "" {
		cfg.Model = model
	}

	store := keystore.New(dataDir)

	// A key from the environment seeds the store so the wizard can skip the
	// key step. It gets the same 30-minute window as a typed key.
	if _, ok := store.Load(); !ok {
		if k := os.Getenv(config.EnvAPIKey); k != "" {
			if err := store.Submit(k); err != nil {
				logger.Warn("ignoring invalid key from environment", zap.Error(err))
			}
		}
	}

	factory := func(ctx context.Context, apiKey string) (ui.Advisor, error) {
		gen, err := advisor.NewGeminiGenerator(ctx, apiKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		logger.Info("advisor ready", zap.String("model", gen.Model()))
		return advisor.NewClient(gen, logger), nil
	}

	logger.Info("starting wizard",
		zap.String("version", version),
		zap.String("model", cfg.Model))

	program := tea.NewProgram(ui.New(store, factory, cfg, logger), tea.WithAltScreen())
	finalModel, err := program.Run()
	if err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}

	if w, ok := finalModel.(ui.Wizard); ok {
		logger.Info("wizard finished", zap.String("step", w.Step().String()))
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "override the Gemini model")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "override the data directory (default ~/.verdant)")

	keyCmd.AddCommand(keyStatusCmd, keyClearCmd)
	rootCmd.AddCommand(keyCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

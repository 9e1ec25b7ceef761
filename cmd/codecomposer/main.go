// Package main is the entry point for the codecomposer CLI
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/james-see/codecomposer/pkg/archive"
	"github.com/james-see/codecomposer/pkg/composer"
	"github.com/james-see/codecomposer/pkg/config"
	"github.com/james-see/codecomposer/pkg/style"
	"github.com/james-see/codecomposer/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfg        *config.Config
	logger     *slog.Logger
	verbose    bool
	stylesFile string
	dbPath     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "codecomposer",
	Short: "Turn source code into music",
	Long: `codecomposer lexes C, Go or Python source and turns the token stream into a
two-voice composition: a melody over a chord progression, with an accompaniment
pattern chosen by the style. Output is MIDI, Alda, JSON or a text outline.

Examples:
  codecomposer compose main.go -o main.mid
  codecomposer compose script.py --style jazz --seed 7 -o script.alda
  codecomposer styles
  codecomposer progressions --key D --scale dorian --preview
  codecomposer inspect main.mid
  codecomposer tui
  codecomposer serve --port 8080`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		cfg = config.Load()

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		if !cmd.Flags().Changed("styles") && cfg.StylesFile != "" {
			stylesFile = cfg.StylesFile
		}
		if !cmd.Flags().Changed("db") {
			dbPath = cfg.DatabasePath
		}
		return nil
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log per-bar progress")
	rootCmd.PersistentFlags().StringVar(&stylesFile, "styles", "", "YAML file of styles merged over the built-ins")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Composition history database")

	rootCmd.AddCommand(composeCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(stylesCmd)
	rootCmd.AddCommand(scalesCmd)
	rootCmd.AddCommand(progressionsCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

// registry returns the built-in styles merged with --styles, if given
func registry() (*style.Registry, error) {
	if stylesFile == "" {
		return style.Default(), nil
	}
	return style.WithOverrides(stylesFile)
}

// newComposer builds a composer over the active registry
func newComposer() (*composer.Composer, error) {
	reg, err := registry()
	if err != nil {
		return nil, err
	}
	return composer.New(composer.WithStyles(reg), composer.WithLogger(logger)), nil
}

// openHistory opens the history database; it returns nil when history is disabled
func openHistory() (*archive.Store, error) {
	if dbPath == "" {
		return nil, nil
	}
	return archive.Open(dbPath)
}

func runTUI(cmd *cobra.Command, args []string) error {
	c, err := newComposer()
	if err != nil {
		return err
	}
	store, err := openHistory()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}
	return tui.Run(tui.Config{Composer: c, History: store, Seed: cfg.Seed})
}

// blockfall is a falling-block puzzle game for the terminal.
//
// Usage:
//
//	blockfall list              - List available games
//	blockfall play [game]       - Play a game (default: blockfall)
//	blockfall menu              - Start menu to pick games and replays
//	blockfall serve             - Start SSH server and HTTP replay API
//	blockfall replays           - List, show and watch stored replays
//	blockfall config            - Print the effective configuration
//
// Global flags:
//
//	--fps <rate>         - Set tick rate (default: 60)
//	--seed <value>       - Set RNG seed for reproducible gameplay
//	--db <path>          - Set database path (default: ~/.blockfall/replays.db)
//	--config <path>      - Use a custom blockfall.yaml
//	--log-level <level>  - Set log level (debug, info, warn, error)
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/blockfall/internal/config"
	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/games/blockfall"
	"github.com/vovakirdan/blockfall/internal/storage"
	"github.com/vovakirdan/blockfall/internal/tetris"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagConfig   string
	flagLogLevel string

	// Set up in PersistentPreRunE
	logger *log.Logger
	loaded config.Loaded
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "blockfall",
	Short: "Blockfall - falling blocks in your terminal",
	Long: `Blockfall is a falling-block puzzle game for the terminal.

Available commands:
  list     - Show all available games
  play     - Play a game directly
  menu     - Interactive game and replay picker
  serve    - Start SSH server and HTTP replay API
  replays  - List, inspect and watch stored replays
  config   - Print the effective configuration

Examples:
  blockfall play
  blockfall play --seed 42
  blockfall menu
  blockfall serve --ssh :2222 --http :8080
  blockfall replays watch 3f2a`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.blockfall/replays.db", "Path to replays database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom blockfall.yaml")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(replaysCmd)
	rootCmd.AddCommand(configCmd)
}

// setup builds the logger and applies the game configuration.
func setup(_ *cobra.Command, _ []string) error {
	if flagFPS < 1 || flagFPS > tetris.MaxTickRate {
		return fmt.Errorf("invalid --fps %d: must be in 1..%d", flagFPS, tetris.MaxTickRate)
	}

	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "blockfall",
		Level:           level,
	})

	loaded, err = config.Load(flagConfig)
	if err != nil {
		return err
	}
	if err := blockfall.SetRules(loaded.Config.Rules()); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Debug("configuration loaded", "source", loaded.Source)
	return nil
}

// openStore opens the replay database. Failures are logged and reported
// as a nil store so games still run without persistence.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open replays database", "path", flagDBPath, "err", err)
		return nil
	}
	return store
}

// closeStore closes a store opened by openStore.
func closeStore(store *storage.Store) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		logger.Warn("could not close replays database", "err", err)
	}
}

// terminalConfig builds a runtime config sized to the current terminal.
func terminalConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}
	cfg.TickRate = flagFPS
	cfg.Seed = flagSeed
	return cfg
}

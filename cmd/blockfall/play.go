package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockfall/internal/games/blockfall"
	"github.com/vovakirdan/blockfall/internal/platform/tui"
	"github.com/vovakirdan/blockfall/internal/registry"
)

var playCmd = &cobra.Command{
	Use:   "play [game]",
	Short: "Play a game",
	Long: `Start playing the specified game (blockfall by default).

Controls:
  Left/h, Right/l  - Move
  Up/k/x           - Rotate
  Down/j/Space     - Soft drop
  P                - Pause
  R                - Restart (after game over)
  B/Esc            - Leave (when paused or over)
  Ctrl+S           - Screenshot
  Q/Ctrl+C         - Quit

Finished games are saved as replays.

Examples:
  blockfall play
  blockfall play --seed 42
  blockfall play --config ./my-blockfall.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func runPlay(cmd *cobra.Command, args []string) error {
	gameID := blockfall.ID
	if len(args) == 1 {
		gameID = args[0]
	}

	game, err := registry.Create(gameID)
	if err != nil {
		return fmt.Errorf("%w (run 'blockfall list' to see available games)", err)
	}

	store := openStore()
	defer closeStore(store)

	result, err := tui.Run(game, store, terminalConfig())
	if err != nil {
		return fmt.Errorf("running game: %w", err)
	}

	for _, id := range result.SavedReplays {
		fmt.Fprintf(cmd.OutOrStdout(), "Replay saved: %s\n", id)
	}
	return nil
}

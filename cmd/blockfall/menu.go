package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/platform/tui"
	"github.com/vovakirdan/blockfall/internal/registry"
	"github.com/vovakirdan/blockfall/internal/storage"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start with a game picker menu",
	Long: `Start in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to select a game, Tab to browse
stored replays. After a game ends, you return to the menu to play again.

Examples:
  blockfall menu
  blockfall menu --fps 30
  blockfall menu --db ./replays.db`,
	RunE: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) error {
	store := openStore()
	defer closeStore(store)

	cfg := terminalConfig()

	// Menu loop
	for {
		menuResult, err := tui.RunMenu(cfg)
		if err != nil {
			return err
		}
		cfg = menuResult.Config

		if menuResult.Quit {
			return nil
		}

		if menuResult.WantsReplays {
			quit, err := browseReplays(store, &cfg)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
			continue
		}

		game, err := registry.Create(menuResult.GameID)
		if err != nil {
			logger.Warn("could not create game", "game", menuResult.GameID, "err", err)
			continue
		}

		// Fresh seed for each game unless pinned
		if flagSeed == 0 {
			cfg.Seed = time.Now().UnixNano()
		}

		result, err := tui.Run(game, store, cfg)
		if err != nil {
			return err
		}
		cfg = result.Config
		if result.Quit {
			return nil
		}
	}
}

// browseReplays runs the replay browser until the user goes back or quits.
// Picked replays are played back in between.
func browseReplays(store *storage.Store, cfg *core.RuntimeConfig) (quit bool, err error) {
	if store == nil {
		return false, nil
	}

	for {
		res, err := tui.RunReplayBrowser(store, cfg.ScreenW, cfg.ScreenH)
		if err != nil {
			return false, err
		}
		if res.Watch == "" {
			return !res.Back, nil
		}

		replay, err := store.LoadReplay(context.Background(), res.Watch)
		if err != nil {
			logger.Warn("could not load replay", "id", res.Watch, "err", err)
			continue
		}
		result, err := watchReplay(replay, *cfg)
		if err != nil {
			return false, err
		}
		*cfg = result.Config
		if result.Quit {
			return true, nil
		}
	}
}

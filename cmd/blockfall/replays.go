package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/games/blockfall"
	"github.com/vovakirdan/blockfall/internal/platform/tui"
	"github.com/vovakirdan/blockfall/internal/storage"
	"github.com/vovakirdan/blockfall/internal/tetris"
)

var flagReplayLimit int

var replaysCmd = &cobra.Command{
	Use:   "replays",
	Short: "List stored replays",
	Long: `List the replays stored in the database, newest first.

Replays can be addressed by any unique prefix of their ID.

Examples:
  blockfall replays
  blockfall replays --limit 5
  blockfall replays show 3f2a
  blockfall replays watch 3f2a`,
	Args: cobra.NoArgs,
	RunE: runReplays,
}

var replaysShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Re-simulate a replay and print its final board",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplaysShow,
}

var replaysWatchCmd = &cobra.Command{
	Use:   "watch <id>",
	Short: "Play a replay back in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplaysWatch,
}

var replaysDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored replay",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplaysDelete,
}

func init() {
	replaysCmd.Flags().IntVar(&flagReplayLimit, "limit", storage.DefaultListLimit, "Maximum number of replays to list")

	replaysCmd.AddCommand(replaysShowCmd)
	replaysCmd.AddCommand(replaysWatchCmd)
	replaysCmd.AddCommand(replaysDeleteCmd)
}

// requireStore opens the replay database or fails.
func requireStore() (*storage.Store, error) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return nil, fmt.Errorf("opening replays database: %w", err)
	}
	return store, nil
}

// loadByPrefix resolves an ID prefix and loads the replay.
func loadByPrefix(ctx context.Context, store *storage.Store, prefix string) (*storage.Replay, error) {
	id, err := store.ResolveID(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("replay %q: %w", prefix, err)
	}
	return store.LoadReplay(ctx, id)
}

func runReplays(cmd *cobra.Command, _ []string) error {
	store, err := requireStore()
	if err != nil {
		return err
	}
	defer closeStore(store)

	replays, err := store.ListReplays(cmd.Context(), flagReplayLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(replays) == 0 {
		fmt.Fprintln(out, "No replays recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCORE\tLEVEL\tLINES\tTIME\tSEED\tDATE")
	for _, r := range replays {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%d\t%s\n",
			r.ID[:8], r.Score, r.Level, r.Lines, r.Duration().Round(time.Second), r.Seed,
			r.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runReplaysShow(cmd *cobra.Command, args []string) error {
	store, err := requireStore()
	if err != nil {
		return err
	}
	defer closeStore(store)

	replay, err := loadByPrefix(cmd.Context(), store, args[0])
	if err != nil {
		return err
	}

	runner, err := tetris.Replay(replay.Recording())
	if err != nil {
		return err
	}
	snap := runner.Snapshot()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Replay   %s\n", replay.ID)
	fmt.Fprintf(out, "Seed     %d\n", replay.Seed)
	fmt.Fprintf(out, "Ticks    %d (%s at %d Hz)\n", replay.Ticks, replay.Duration().Round(time.Second), replay.TickRate)
	fmt.Fprintf(out, "Events   %d\n", len(replay.Events))
	fmt.Fprintf(out, "Score    %d\n", snap.Score)
	fmt.Fprintf(out, "Level    %d\n", snap.Level)
	fmt.Fprintf(out, "Lines    %d\n", snap.Lines)
	fmt.Fprintf(out, "State    %s\n", snap.State)
	fmt.Fprintln(out)
	fmt.Fprintln(out, runner.Session().Board().String())
	return nil
}

func runReplaysWatch(cmd *cobra.Command, args []string) error {
	store, err := requireStore()
	if err != nil {
		return err
	}
	defer closeStore(store)

	replay, err := loadByPrefix(cmd.Context(), store, args[0])
	if err != nil {
		return err
	}

	_, err = watchReplay(replay, terminalConfig())
	return err
}

func runReplaysDelete(cmd *cobra.Command, args []string) error {
	store, err := requireStore()
	if err != nil {
		return err
	}
	defer closeStore(store)

	id, err := store.ResolveID(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("replay %q: %w", args[0], err)
	}
	if err := store.DeleteReplay(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
	return nil
}

// watchReplay plays a stored replay back in the terminal.
func watchReplay(replay *storage.Replay, cfg core.RuntimeConfig) (tui.Result, error) {
	playback, err := blockfall.NewPlayback(replay.Recording())
	if err != nil {
		return tui.Result{Config: cfg}, err
	}
	// Playback runs at the recorded rate.
	cfg.TickRate = replay.TickRate
	return tui.Run(playback, nil, cfg)
}

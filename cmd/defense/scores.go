package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-defense/internal/game"
	"github.com/vovakirdan/tui-defense/internal/platform/tui"
	"github.com/vovakirdan/tui-defense/internal/resources"
	"github.com/vovakirdan/tui-defense/internal/storage"
)

var (
	flagPlain bool
	flagClear bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [map]",
	Short: "Show the leaderboard",
	Long: `Browse the leaderboard. In a terminal an interactive table is shown;
with --plain, or when the output is piped, the top scores are printed.

Examples:
  defense scores
  defense scores canyon --plain
  defense scores canyon --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print instead of opening the interactive table")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the scores of the map (or of every map)")
}

func runScores(cmd *cobra.Command, args []string) error {
	repo, err := game.NewMapRepository(resources.FS(), cfg.Game.DefaultMap)
	if err != nil {
		return err
	}
	var mapID string
	if len(args) == 1 {
		mapID = args[0]
		if _, err := repo.Map(mapID); err != nil {
			return fmt.Errorf("%w; run 'defense maps' to see available maps", err)
		}
	}

	store, err := storage.Open(cfg.Leaderboard.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if flagClear {
		if mapID == "" {
			err = store.Clear()
		} else {
			err = store.ClearMap(mapID)
		}
		if err == nil {
			fmt.Fprintln(out, "Scores cleared.")
		}
		return err
	}

	fd := int(os.Stdout.Fd())
	if !flagPlain && term.IsTerminal(fd) {
		width, height := 80, 24
		if w, h, err := term.GetSize(fd); err == nil {
			width, height = w, h
		}
		if mapID == "" {
			mapID = repo.DefaultMapID()
		}
		return tui.RunScoreboard(store, repo.Maps(), mapID, width, height)
	}

	maps := repo.Maps()
	if mapID != "" {
		info, _ := repo.Map(mapID)
		maps = []game.MapInfo{info}
	}
	for i, info := range maps {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := printScores(out, store, info); err != nil {
			return err
		}
	}
	return nil
}

func printScores(out io.Writer, store *storage.Store, info game.MapInfo) error {
	entries, err := store.EntriesForMap(info.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "High Scores - %s\n\n", info.Title)
	if len(entries) == 0 {
		fmt.Fprintln(out, "No scores recorded yet.")
		return nil
	}

	fmt.Fprintf(out, "  %-4s  %-10s  %-5s  %-5s  %s\n", "Rank", "Score", "Wave", "Lives", "Date")
	fmt.Fprintf(out, "  %-4s  %-10s  %-5s  %-5s  %s\n", "----", "-----", "----", "-----", "----")
	for i, e := range entries {
		fmt.Fprintf(out, "  %-4d  %-10d  %-5d  %-5d  %s\n", i+1, e.Score, e.Wave, e.Lives, e.CreatedAt.Format("2006-01-02 15:04"))
	}

	stats, err := store.GetMapStats(info.ID)
	if err == nil && stats.GamesCount > 0 {
		fmt.Fprintf(out, "\nBest: %d  Average: %.0f  Best wave: %d  Games: %d\n",
			stats.HighScore, stats.AvgScore, stats.BestWave, stats.GamesCount)
	}
	return nil
}

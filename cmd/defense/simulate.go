package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-defense/internal/engine"
	"github.com/vovakirdan/tui-defense/internal/game"
	"github.com/vovakirdan/tui-defense/internal/storage"
)

var (
	flagSimMap   string
	flagSteps    int
	flagBuild    bool
	flagEarly    bool
	flagSimScore bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a headless game and print a summary",
	Long: `Runs the simulation without a screen as fast as possible. Waves are
called as soon as the previous one is cleared (or as soon as they are
ready with --early). With --build the cheapest tower is built on every
free plateau, and spare credits go into upgrades.

Examples:
  defense simulate --seed 42
  defense simulate --map canyon --steps 20000 --build --early`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&flagSimMap, "map", "", "Map to play (default map if empty)")
	simulateCmd.Flags().IntVar(&flagSteps, "steps", 9000, "Maximum number of steps")
	simulateCmd.Flags().BoolVar(&flagBuild, "build", false, "Build and upgrade towers automatically")
	simulateCmd.Flags().BoolVar(&flagEarly, "early", false, "Call waves as soon as they are ready")
	simulateCmd.Flags().BoolVar(&flagSimScore, "record", false, "Record the final score on the leaderboard")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	logger := newLogger(os.Stderr)
	opts := game.Options{Config: cfg, Logger: logger}
	if flagSimScore {
		store, err := storage.Open(cfg.Leaderboard.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Leaderboard = store
	}

	g, err := game.New(opts)
	if err != nil {
		return err
	}
	mapID := flagSimMap
	if mapID == "" {
		mapID = g.Maps.DefaultMapID()
	}
	if err := g.Loader.LoadMap(mapID); err != nil {
		return err
	}

	steps := 0
	for steps < flagSteps && !g.State.IsGameOver() {
		if g.Waves.IsNextWaveReady() && (flagEarly || g.Waves.ActiveWaves() == 0) {
			if err := g.StartNextWave(); err != nil {
				return err
			}
		}
		if flagBuild {
			autoBuild(g)
		}
		if err := g.Clock.RunSteps(1); err != nil {
			return err
		}
		steps++
	}

	snap := g.Snapshot()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Map:      %s (%s)\n", snap.MapTitle, snap.MapID)
	fmt.Fprintf(out, "Steps:    %d (%.1fs simulated)\n", steps, float64(steps)/engine.TargetFrameRate)
	fmt.Fprintf(out, "Wave:     %d\n", snap.WaveNumber)
	fmt.Fprintf(out, "Credits:  %d\n", snap.Credits)
	fmt.Fprintf(out, "Lives:    %d\n", snap.Lives)
	fmt.Fprintf(out, "Score:    %d\n", snap.Score)
	towers := 0
	for _, e := range snap.Entities {
		if e.Type == engine.TypeTower {
			towers++
		}
	}
	fmt.Fprintf(out, "Towers:   %d\n", towers)
	if snap.GameOver {
		fmt.Fprintf(out, "Result:   game over, final score %d\n", snap.FinalScore)
	} else {
		fmt.Fprintln(out, "Result:   still standing")
	}
	return nil
}

// autoBuild spends credits: first on the cheapest tower for each free
// plateau, then on the cheapest upgrade.
func autoBuild(g *game.Game) {
	snap := g.Snapshot()
	kinds := g.TowerKinds()
	if snap == nil || len(kinds) == 0 {
		return
	}
	credits := snap.Credits
	for _, p := range snap.Plateaus() {
		if p.Occupied || kinds[0].Value > credits {
			continue
		}
		if g.BuyTower(kinds[0].Kind, p.ID) == nil {
			credits -= kinds[0].Value
		}
	}

	var cheapest *game.EntityView
	for i, e := range snap.Entities {
		if e.Type != engine.TypeTower || e.UpgradeCost == 0 || e.UpgradeCost > credits {
			continue
		}
		if cheapest == nil || e.UpgradeCost < cheapest.UpgradeCost {
			cheapest = &snap.Entities[i]
		}
	}
	if cheapest != nil {
		_ = g.UpgradeTower(cheapest.ID)
	}
}

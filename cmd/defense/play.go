package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-defense/internal/engine"
	"github.com/vovakirdan/tui-defense/internal/game"
	"github.com/vovakirdan/tui-defense/internal/platform/tui"
	"github.com/vovakirdan/tui-defense/internal/storage"
)

var (
	flagMap        string
	flagNew        bool
	flagSlot       string
	flagFPS        int
	flagMonochrome bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the game",
	Long: `Resume the auto-save, or start a new game.

Controls:
  Arrows/WASD  - Move between plateaus
  Tab          - Choose tower type
  Enter        - Build tower
  U            - Upgrade tower
  X            - Sell tower
  N/Space      - Call the next wave (early calls earn a bonus)
  P/Esc        - Pause
  F            - Fast forward
  Ctrl+S       - Save game
  R            - Restart map
  Q/Ctrl+C     - Quit (the game is auto-saved)

Examples:
  defense play
  defense play --new
  defense play --map canyon
  defense play --slot 0f8c...`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagMap, "map", "", "Start a fresh game on this map")
	playCmd.Flags().BoolVar(&flagNew, "new", false, "Ignore the auto-save and start the default map")
	playCmd.Flags().StringVar(&flagSlot, "slot", "", "Load a saved game by id (see 'defense saves')")
	playCmd.Flags().IntVar(&flagFPS, "fps", 30, "Screen refresh rate")
	playCmd.Flags().BoolVar(&flagMonochrome, "monochrome", false, "Disable colors")
}

// session bundles a game with the stores it was built from.
type session struct {
	game  *game.Game
	store *storage.Store
}

func (s *session) Close() {
	if s.store != nil {
		s.store.Close()
	}
}

// newSession wires a game with saves and the leaderboard. A leaderboard
// that cannot be opened is logged and skipped.
func newSession(logger *log.Logger) (*session, error) {
	saves, err := game.NewSaveGameRepository(cfg.Saves.Dir)
	if err != nil {
		return nil, err
	}
	s := &session{}
	opts := game.Options{Config: cfg, Logger: logger, Saves: saves}

	store, err := storage.Open(cfg.Leaderboard.Path)
	if err != nil {
		logger.Warn("leaderboard unavailable", "err", err)
	} else {
		s.store = store
		opts.Leaderboard = store
	}

	g, err := game.New(opts)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.game = g
	return s, nil
}

// load starts the game selected by the play flags.
func (s *session) load() error {
	loader := s.game.Loader
	var err error
	switch {
	case flagSlot != "":
		path, perr := s.game.Saves.StatePath(flagSlot)
		if perr != nil {
			return perr
		}
		err = loader.LoadGame(path)
	case flagMap != "":
		err = loader.LoadMap(flagMap)
	case flagNew:
		err = loader.LoadMap(s.game.Maps.DefaultMapID())
	default:
		err = loader.AutoLoadGame()
	}
	return err
}

func runPlay(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("play needs a terminal; try 'defense simulate'")
	}

	logger, closeLog, err := newFileLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	s, err := newSession(logger)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.load(); err != nil {
		if !errors.Is(err, game.ErrCorruptSave) {
			return err
		}
		fmt.Fprintf(os.Stderr, "Warning: %v; starting %s instead\n", err, s.game.Loader.CurrentMapID())
	}

	theme := tui.DefaultTheme()
	if flagMonochrome {
		theme = tui.MonochromeTheme()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		return s.game.Clock.Run(ctx)
	})
	grp.Go(func() error {
		defer stop()
		return tui.Run(ctx, s.game, flagFPS, theme)
	})
	runErr := grp.Wait()

	// The clock has stopped; this runs on the calling goroutine. A faulted
	// game is not written back over the auto-save.
	var fault *engine.FaultError
	if errors.As(runErr, &fault) {
		logger.Warn("simulation faulted, auto-save skipped", "steps", fault.StepsSinceLoad)
	} else if err := s.game.AutoSave(); err != nil {
		logger.Error("auto-save failed", "err", err)
		if runErr == nil {
			runErr = err
		}
	}
	if snap := s.game.Snapshot(); snap != nil && snap.GameOver {
		fmt.Printf("Game over on %s: %d points, wave %d\n", snap.MapTitle, snap.FinalScore, snap.WaveNumber)
	}
	return runErr
}

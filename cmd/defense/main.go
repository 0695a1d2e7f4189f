// defense is a tower defense game for the terminal.
//
// Usage:
//
//	defense maps                 - List available maps
//	defense play                 - Resume the auto-save or start the default map
//	defense play --map <id>      - Start a fresh game on a map
//	defense simulate             - Run a headless game and print a summary
//	defense scores [map]         - Show the leaderboard
//	defense saves                - List save games
//
// Global flags:
//
//	--config <path>     - Config file (default: ~/.defense/config.yaml)
//	--log-level <level> - debug, info, warn or error
//	--seed <value>      - RNG seed for reproducible games
//	--db <path>         - Leaderboard database
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/vovakirdan/tui-defense/internal/config"
)

var (
	// Global flags
	flagConfig     string
	flagLogLevel   string
	flagSeed       uint64
	flagDBPath     string
	flagSavesDir   string
	flagDifficulty string

	cfg config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "defense",
	Short: "TUI Defense - hold the line in your terminal",
	Long: `TUI Defense is a tower defense game for the terminal. Build towers on
plateaus, upgrade them and stop every wave before it reaches the exit.

Examples:
  defense play
  defense play --map canyon --difficulty hard
  defense simulate --map original --steps 6000 --build
  defense scores original`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Path to config YAML")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.Uint64Var(&flagSeed, "seed", 0, "RNG seed (0 = random)")
	pf.StringVar(&flagDBPath, "db", "", "Path to leaderboard database")
	pf.StringVar(&flagSavesDir, "saves", "", "Save game directory")
	pf.StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")

	rootCmd.AddCommand(mapsCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(savesCmd)
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagLogLevel != "" {
		c.Log.Level = flagLogLevel
	}
	if flagSeed != 0 {
		c.Simulation.Seed = flagSeed
	}
	if flagDBPath != "" {
		c.Leaderboard.Path = flagDBPath
	}
	if flagSavesDir != "" {
		c.Saves.Dir = flagSavesDir
	}
	if p := config.ParsePreset(flagDifficulty); flagDifficulty != "" && string(p) != c.Difficulty.Preset {
		config.ApplyPreset(&c, p)
	}
	cfg = c
	return nil
}

// newLogger creates the process logger writing to w.
func newLogger(w io.Writer) *log.Logger {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "defense",
		Level:           level,
	})
}

// newFileLogger logs to the configured file so the terminal UI keeps the
// screen. Without a file the log is dropped.
func newFileLogger() (*log.Logger, func(), error) {
	if cfg.Log.File == "" {
		return newLogger(io.Discard), func() {}, nil
	}
	path, err := config.ExpandHome(cfg.Log.File)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
	}
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28,
		LocalTime:  true,
	}
	return newLogger(w), func() { w.Close() }, nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-defense/internal/game"
)

var savesCmd = &cobra.Command{
	Use:   "saves",
	Short: "List save games",
	Long: `Lists the saved games, newest first. Load one with
'defense play --slot <id>'.`,
	Args: cobra.NoArgs,
	RunE: runSaves,
}

var savesDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete save games",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSavesDelete,
}

func init() {
	savesCmd.AddCommand(savesDeleteCmd)
}

func runSaves(cmd *cobra.Command, args []string) error {
	repo, err := game.NewSaveGameRepository(cfg.Saves.Dir)
	if err != nil {
		return err
	}
	list, err := repo.List()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if repo.HasAutoSave() {
		fmt.Fprintln(out, "An auto-save is present; 'defense play' resumes it.")
		fmt.Fprintln(out)
	}
	if len(list) == 0 {
		fmt.Fprintln(out, "No saved games.")
		return nil
	}

	fmt.Fprintf(out, "  %-36s  %-16s  %-5s  %-8s  %s\n", "ID", "Map", "Wave", "Score", "Saved")
	for _, s := range list {
		fmt.Fprintf(out, "  %-36s  %-16s  %-5d  %-8d  %s\n",
			s.ID, s.MapTitle, s.Wave, s.Score, s.SavedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runSavesDelete(cmd *cobra.Command, args []string) error {
	repo, err := game.NewSaveGameRepository(cfg.Saves.Dir)
	if err != nil {
		return err
	}
	for _, id := range args {
		if err := repo.Delete(id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
	}
	return nil
}

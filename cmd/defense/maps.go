package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-defense/internal/game"
	"github.com/vovakirdan/tui-defense/internal/resources"
)

var mapsCmd = &cobra.Command{
	Use:     "maps",
	Aliases: []string{"list"},
	Short:   "List all available maps",
	Long:    `Shows the maps bundled with the game. The default map is marked with *.`,
	Args:    cobra.NoArgs,
	RunE:    runMaps,
}

func runMaps(cmd *cobra.Command, args []string) error {
	repo, err := game.NewMapRepository(resources.FS(), cfg.Game.DefaultMap)
	if err != nil {
		return err
	}
	maps := repo.Maps()
	out := cmd.OutOrStdout()

	if len(maps) == 0 {
		fmt.Fprintln(out, "No maps available.")
		return nil
	}

	fmt.Fprintln(out, "Available maps:")
	fmt.Fprintln(out)

	maxIDLen := 2 // "ID" header
	for _, m := range maps {
		maxIDLen = max(maxIDLen, len(m.ID))
	}

	fmt.Fprintf(out, "    %-*s  %s\n", maxIDLen, "ID", "Title")
	fmt.Fprintf(out, "    %-*s  %s\n", maxIDLen, "--", "-----")
	for _, m := range maps {
		mark := " "
		if m.ID == repo.DefaultMapID() {
			mark = "*"
		}
		fmt.Fprintf(out, "  %s %-*s  %s\n", mark, maxIDLen, m.ID, m.Title)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run 'defense play --map <id>' to start a map.")
	return nil
}

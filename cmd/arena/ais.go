package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snake-arena/internal/controller"
	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/logging"
)

var aisCmd = &cobra.Command{
	Use:   "ais",
	Short: "List AI programs and their player ids",
	Long: `Shows the programs in the AI directory in the order they are launched,
with the player id each one receives and the command used to start it.
Nothing is launched.`,
	Args: cobra.NoArgs,
	RunE: runAIs,
}

func runAIs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(logging.Discard())
	if err != nil {
		return err
	}

	candidates, err := controller.Scan(cfg.AI.Dir, core.HumanPlayer+1, controller.LaunchOptions{
		Python: cfg.AI.Python,
	})
	if err != nil {
		return err
	}

	if len(candidates) == 0 {
		fmt.Printf("No AI programs in %s.\n", cfg.AI.Dir)
		return nil
	}

	fmt.Printf("AI programs in %s:\n\n", cfg.AI.Dir)
	fmt.Printf("  %-3s  %s\n", "ID", "Command")
	fmt.Printf("  %-3s  %s\n", "--", "-------")
	for _, c := range candidates {
		fmt.Printf("  %-3d  %s\n", c.ID, strings.Join(append([]string{c.Program}, c.Args...), " "))
	}

	fmt.Println()
	fmt.Println("Run 'arena play' or 'arena run' to start a match.")
	return nil
}

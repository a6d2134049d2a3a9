// Command roomedit edits room images one object at a time from the terminal.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fpang/roomedit/internal/chat"
	"github.com/fpang/roomedit/internal/logging"
	"github.com/fpang/roomedit/internal/roomedit"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// Global flags
var (
	homeFlag   string
	modelFlag  string
	canvasFlag int
)

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "roomedit",
	Short: "Object-targeted room image editing",
	Long: `roomedit generates a room image and then edits individual objects in it
(the sofa, the rug, the floor lamp) without touching the rest of the scene.

Each room keeps its latest image and the objects detected in it under
--home, so every command continues where the last one left off.

Examples:
  roomedit edit --room den --text "a mid-century living room with a green sofa"
  roomedit edit --room den --text "make the sofa dark blue velvet"
  roomedit edit --room den --object obj_2 --text "make it brass"
  roomedit edit --room "Living Room" --floor-plan plan.yaml --text "add a window on the west wall"
  roomedit floor-plan --image plan.png --out plan.yaml
  roomedit seed --room kitchen --pick
  roomedit plan < request.json
  roomedit mcp`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&homeFlag, "home", defaultHome(), "Directory holding room state and images")
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", chat.DefaultModelName, "Gemini model for intent parsing and object detection")
	rootCmd.PersistentFlags().IntVar(&canvasFlag, "canvas", roomedit.DefaultResolution, "Square output resolution in pixels")

	rootCmd.AddCommand(planCmd, editCmd, seedCmd, showCmd, floorPlanCmd, mcpCmd, checkKeyCmd)
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".roomedit"
	}
	return filepath.Join(home, ".roomedit")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

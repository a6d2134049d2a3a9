package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fpang/roomedit/internal/chat"
	"github.com/fpang/roomedit/internal/cli"
	"github.com/fpang/roomedit/internal/floorplan"
)

var (
	floorPlanImage   string
	floorPlanPick    bool
	floorPlanContext string
	floorPlanOut     string
)

var floorPlanCmd = &cobra.Command{
	Use:   "floor-plan",
	Short: "Read rooms, doors and windows from a floor plan image",
	Long: `Analyze a floor plan image with Gemini and print it as YAML. The output is
the file "roomedit edit --floor-plan" reads to know which rooms lie behind
each wall.`,
	Example: `  roomedit floor-plan --image plan.png --out plan.yaml
  roomedit edit --room "Living Room" --floor-plan plan.yaml --text "add a window on the west wall"`,
	RunE: runFloorPlan,
}

func init() {
	floorPlanCmd.Flags().StringVar(&floorPlanImage, "image", "", "Floor plan image (PNG or JPEG)")
	floorPlanCmd.Flags().BoolVar(&floorPlanPick, "pick", false, "Choose the floor plan image with a file dialog")
	floorPlanCmd.Flags().StringVar(&floorPlanContext, "context", "", `What the plan shows, e.g. "two-bedroom apartment"`)
	floorPlanCmd.Flags().StringVarP(&floorPlanOut, "out", "o", "", "Write the YAML here instead of stdout")
}

// floorPlanAnalyzer is the part of chat.FloorPlanClient the command uses.
type floorPlanAnalyzer interface {
	Analyze(ctx context.Context, data []byte, contentType, hint string) (*floorplan.Plan, error)
}

var _ floorPlanAnalyzer = (*chat.FloorPlanClient)(nil)

func runFloorPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := floorPlanImage
	if floorPlanPick {
		var err error
		if path, err = pickImage(); err != nil {
			return err
		}
	}
	if path == "" {
		return fmt.Errorf("a floor plan image is required (--image or --pick)")
	}

	client := cli.InitGeminiClient(ctx, modelFlag)
	analyzer := chat.NewFloorPlanClient(client.Models, modelFlag)

	out := io.Writer(os.Stdout)
	if floorPlanOut != "" {
		f, err := os.Create(floorPlanOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", floorPlanOut, err)
		}
		defer f.Close()
		out = f
	}
	if err := analyzeFloorPlan(ctx, analyzer, path, floorPlanContext, out); err != nil {
		return err
	}
	if floorPlanOut != "" {
		fmt.Fprintf(os.Stderr, "Floor plan written to %s\n", floorPlanOut)
	}
	return nil
}

// analyzeFloorPlan analyzes the image at path and writes the plan as YAML.
func analyzeFloorPlan(ctx context.Context, analyzer floorPlanAnalyzer, path, hint string, out io.Writer) error {
	path, err := cli.ValidateImageFile(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read floor plan image: %w", err)
	}
	plan, err := analyzer.Analyze(ctx, data, imageContentType(path), hint)
	if err != nil {
		return err
	}
	encoded, err := plan.Encode()
	if err != nil {
		return err
	}
	_, err = out.Write(encoded)
	return err
}

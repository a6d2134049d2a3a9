package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fpang/roomedit/internal/cli"
	"github.com/fpang/roomedit/internal/orchestrator"
	"github.com/fpang/roomedit/internal/roomedit"
)

var (
	editRoom     string
	editText     string
	editObject   string
	editImage    string
	editPick     bool
	editDryRun   bool
	editJSON     bool
	editAdjacent []string
	editPlan     string
	editPlanRoom string
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Run one edit turn on a room",
	Long: `Classify the request, plan the edit, and render it. A new room is generated
from scratch; an existing room has only the named objects changed.

When a request names an object that matches several (for example "chair"
with an armchair and an accent chair in the room), you are asked which one
you meant.`,
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVarP(&editRoom, "room", "r", "default", "Room id")
	editCmd.Flags().StringVarP(&editText, "text", "t", "", "The request (prompted for when empty)")
	editCmd.Flags().StringVar(&editObject, "object", "", "Catalog id of the object to edit, skipping target detection")
	editCmd.Flags().StringVar(&editImage, "image", "", "Start the room from this photo first")
	editCmd.Flags().BoolVar(&editPick, "pick", false, "Choose the starting photo with a file dialog")
	editCmd.Flags().BoolVar(&editDryRun, "dry-run", false, "Plan only, do not render")
	editCmd.Flags().BoolVar(&editJSON, "json", false, "Print the result as JSON")
	editCmd.Flags().StringSliceVar(&editAdjacent, "adjacent", nil, "Rooms behind a wall, e.g. west=kitchen (repeatable)")
	editCmd.Flags().StringVar(&editPlan, "floor-plan", "", "Floor plan YAML/JSON to derive wall adjacency from")
	editCmd.Flags().StringVar(&editPlanRoom, "plan-room", "", "Name of this room in the floor plan (default: --room)")
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	adjacency, err := loadAdjacency(editPlan, editPlanRoom, editAdjacent)
	if err != nil {
		return err
	}

	text := editText
	if text == "" {
		text = cli.PromptForRequest(os.Stdin, os.Stdout)
	}
	if text == "" {
		return errors.New("a request is required")
	}

	orch, err := newOrchestrator(ctx)
	if err != nil {
		return err
	}

	image := editImage
	if editPick {
		if image, err = pickImage(); err != nil {
			return err
		}
		if image == "" {
			fmt.Fprintln(os.Stderr, "No photo selected")
			return nil
		}
	}
	if image != "" {
		if _, err := seedRoom(ctx, orch, editRoom, image); err != nil {
			return err
		}
	}

	req := orchestrator.TurnRequest{
		RoomID:           editRoom,
		Text:             text,
		SelectedObjectID: editObject,
		Adjacency:        adjacency,
		DryRun:           editDryRun,
	}
	res, err := orch.RunTurn(ctx, req)

	var amb *roomedit.AmbiguityError
	if errors.As(err, &amb) {
		options := make([]string, 0, len(amb.Options))
		for _, o := range amb.Options {
			options = append(options, fmt.Sprintf("%s (%s)", o.Label, o.Position))
		}
		choice := cli.PromptForChoice(os.Stdin, os.Stdout, fmt.Sprintf("Which %s did you mean?", amb.Phrase), options)
		if choice >= 0 {
			req.SelectedObjectID = amb.Options[choice].ID
			res, err = orch.RunTurn(ctx, req)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.DescribeRejection(err))
		return err
	}

	if editJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	cli.PrintTurn(os.Stdout, res)
	return nil
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fpang/roomedit/internal/cli"
	"github.com/fpang/roomedit/internal/orchestrator"
)

var planFile string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan an edit offline from a JSON request",
	Long: `Read a plan request (instruction, previous image with its objects, optional
wall adjacency) from --file or stdin and print the planned tasks as JSON.
No model is called and nothing is stored.

Example request:
  {
    "instruction": {"intent": "edit_objects", "request": "make the sofa green",
                    "edits": [{"target": "sofa", "action": "modify"}]},
    "previous": {"image": "s3://rooms/v1.png",
                 "objects": [{"label": "sofa", "bbox": [0.1, 0.5, 0.5, 0.9]}]}
  }`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlan(cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	planCmd.Flags().StringVarP(&planFile, "file", "f", "", "Read the request from this file instead of stdin")
}

func runPlan(stdin io.Reader, stdout io.Writer) error {
	in := stdin
	if planFile != "" {
		f, err := os.Open(planFile)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var req orchestrator.PlanRequest
	dec := json.NewDecoder(in)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return fmt.Errorf("invalid plan request: %w", err)
	}
	if req.Canvas == 0 {
		req.Canvas = canvasFlag
	}

	resp, err := orchestrator.PlanOffline(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.DescribeRejection(err))
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fpang/roomedit/internal/orchestrator"
	"github.com/fpang/roomedit/internal/roomedit"
)

func TestRunPlan(t *testing.T) {
	canvasFlag = 1024
	in := strings.NewReader(`{
		"instruction": {"intent": "edit_objects", "request": "make the sofa green", "edits": [{"target": "sofa", "action": "modify"}]},
		"previous": {"image": "s3://rooms/v1.png", "objects": [{"label": "sofa", "bbox": [0.1, 0.1, 0.4, 0.4]}]}
	}`)
	var out bytes.Buffer
	if err := runPlan(in, &out); err != nil {
		t.Fatalf("runPlan() error = %v", err)
	}
	var resp orchestrator.PlanResponse
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Tasks) != 1 || *resp.Tasks[0].Mask != (roomedit.MaskRect{X: 79, Y: 79, Width: 354, Height: 354}) {
		t.Errorf("tasks = %+v", resp.Tasks)
	}
}

func TestRunPlan_RejectsUnknownFields(t *testing.T) {
	if err := runPlan(strings.NewReader(`{"instr": {}}`), &bytes.Buffer{}); err == nil {
		t.Error("runPlan() error = nil")
	}
}

func TestParseAdjacency(t *testing.T) {
	adj, err := parseAdjacency([]string{"west=kitchen,hall", "back=bedroom"})
	if err != nil {
		t.Fatal(err)
	}
	if len(adj[roomedit.WallWest]) != 2 || adj[roomedit.WallNorth][0] != "bedroom" {
		t.Errorf("parseAdjacency() = %v", adj)
	}
	for _, bad := range []string{"kitchen", "up=attic", "west="} {
		if _, err := parseAdjacency([]string{bad}); err == nil {
			t.Errorf("parseAdjacency(%q) error = nil", bad)
		}
	}
}

func TestLoadAdjacency_FloorPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	plan := "rooms:\n  - name: Den\n    doors:\n      - {position: west, connects_to: Kitchen}\n"
	if err := os.WriteFile(path, []byte(plan), 0o644); err != nil {
		t.Fatal(err)
	}
	adj, err := loadAdjacency(path, "den", []string{"north=hall"})
	if err != nil {
		t.Fatalf("loadAdjacency() error = %v", err)
	}
	want := roomedit.RoomAdjacency{
		roomedit.WallWest:  {"Kitchen"},
		roomedit.WallNorth: {"hall"},
	}
	if diff := cmp.Diff(want, adj); diff != "" {
		t.Errorf("loadAdjacency() mismatch (-want +got):\n%s", diff)
	}
	if _, err := loadAdjacency(path, "attic", nil); err == nil {
		t.Error("loadAdjacency() error = nil for a room not in the plan")
	}
}

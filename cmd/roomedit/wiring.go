package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"

	"github.com/fpang/roomedit/internal/chat"
	"github.com/fpang/roomedit/internal/cli"
	"github.com/fpang/roomedit/internal/floorplan"
	"github.com/fpang/roomedit/internal/imagestore"
	"github.com/fpang/roomedit/internal/orchestrator"
	"github.com/fpang/roomedit/internal/roomedit"
	"github.com/fpang/roomedit/internal/store"
)

// newOrchestrator wires Gemini, Imagen and local storage under --home.
func newOrchestrator(ctx context.Context) (*orchestrator.Orchestrator, error) {
	images, err := imagestore.NewFileStore(filepath.Join(homeFlag, "images"))
	if err != nil {
		return nil, err
	}
	states, err := store.NewFileStore(filepath.Join(homeFlag, "rooms"))
	if err != nil {
		return nil, err
	}
	client := cli.InitGeminiClient(ctx, modelFlag)

	vertex := chat.VertexConfigFromEnv()
	if !vertex.Configured() {
		log.Warn().Msg("VERTEX_AI_PROJECT or VERTEX_AI_TOKEN not set, object edits will fail until they are")
	}
	services := chat.NewServices(client, images, modelFlag, vertex)

	log.Debug().
		Str("home", homeFlag).
		Str("model", modelFlag).
		Int("canvas", canvasFlag).
		Bool("inpainting", vertex.Configured()).
		Msg("Room editor ready")

	return orchestrator.New(orchestrator.Config{
		Language: services.Intent,
		Detector: services.Detection,
		Synth:    services.Imagen,
		States:   states,
		Uploads:  images,
		Canvas:   canvasFlag,
	}), nil
}

// pickImage opens a native file dialog. Returns "" if the user cancels.
func pickImage() (string, error) {
	path, err := zenity.SelectFile(
		zenity.Title("Select a room photo"),
		zenity.FileFilters{
			{
				Name:     "Room photos",
				Patterns: []string{"*.jpg", "*.jpeg", "*.png"},
				CaseFold: true,
			},
		},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", nil
		}
		return "", fmt.Errorf("file picker failed: %w", err)
	}
	return path, nil
}

// seedRoom stores the photo at path as the room's latest image.
func seedRoom(ctx context.Context, orch *orchestrator.Orchestrator, room, path string) (*roomedit.ImageState, error) {
	path, err := cli.ValidateImageFile(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	state, status, err := orch.Seed(ctx, room, data, imageContentType(path))
	if err != nil {
		return nil, err
	}
	if status == roomedit.DetectionFailed {
		log.Warn().Str("room", room).Msg("Object detection failed on the seeded photo")
	}
	return state, nil
}

func imageContentType(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		return "image/png"
	}
	return "image/jpeg"
}

// parseAdjacency parses wall=room[,room...] flags.
func parseAdjacency(values []string) (roomedit.RoomAdjacency, error) {
	if len(values) == 0 {
		return nil, nil
	}
	adj := make(roomedit.RoomAdjacency)
	for _, v := range values {
		wallText, rooms, ok := strings.Cut(v, "=")
		if !ok || rooms == "" {
			return nil, fmt.Errorf("invalid --adjacent %q, want wall=room", v)
		}
		wall, ok := roomedit.ExtractWall(wallText)
		if !ok {
			return nil, fmt.Errorf("unknown wall %q, use north, south, east or west", wallText)
		}
		for _, r := range strings.Split(rooms, ",") {
			if r = strings.TrimSpace(r); r != "" {
				adj[wall] = append(adj[wall], r)
			}
		}
	}
	return adj, nil
}

// loadAdjacency merges floor-plan adjacency for planRoom (or --room) with
// explicit --adjacent flags.
func loadAdjacency(planPath, planRoom string, flags []string) (roomedit.RoomAdjacency, error) {
	adj, err := parseAdjacency(flags)
	if err != nil {
		return nil, err
	}
	if planPath == "" {
		return adj, nil
	}
	plan, err := floorplan.Load(planPath)
	if err != nil {
		return nil, err
	}
	if planRoom == "" {
		planRoom = editRoom
	}
	fromPlan, err := plan.Adjacency(planRoom)
	if err != nil {
		return nil, err
	}
	for wall, rooms := range adj {
		fromPlan[wall] = append(fromPlan[wall], rooms...)
	}
	return fromPlan, nil
}

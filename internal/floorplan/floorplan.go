// Package floorplan loads floor-plan analysis output and derives, for one
// room, which rooms lie behind each of its walls. The file is YAML or JSON
// in the analyzer's shape:
//
//	rooms:
//	  - name: Living Room
//	    doors:
//	      - {position: west, connects_to: Kitchen}
//	    windows:
//	      - {position: north, count: 2}
//	    adjacent_rooms: [Kitchen, Entrance]
package floorplan

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/fpang/roomedit/internal/roomedit"
)

// Plan is a parsed floor plan.
type Plan struct {
	Rooms []Room `yaml:"rooms" json:"rooms"`
}

// Room is one room of a floor plan.
type Room struct {
	Name          string   `yaml:"name" json:"name"`
	Type          string   `yaml:"type,omitempty" json:"type,omitempty"`
	Doors         []Door   `yaml:"doors,omitempty" json:"doors,omitempty"`
	Windows       []Window `yaml:"windows,omitempty" json:"windows,omitempty"`
	AdjacentRooms []string `yaml:"adjacent_rooms,omitempty" json:"adjacent_rooms,omitempty"`
}

// Door is a door on one wall of a room.
type Door struct {
	Position   string `yaml:"position" json:"position"`
	Type       string `yaml:"type,omitempty" json:"type,omitempty"`
	ConnectsTo string `yaml:"connects_to,omitempty" json:"connects_to,omitempty"`
}

// Window is a group of windows on one wall.
type Window struct {
	Position string `yaml:"position" json:"position"`
	Count    int    `yaml:"count,omitempty" json:"count,omitempty"`
	Type     string `yaml:"type,omitempty" json:"type,omitempty"`
}

// Load reads and parses a floor plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read floor plan: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML (or JSON, which YAML accepts) floor plan data.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse floor plan: %w", err)
	}
	if len(p.Rooms) == 0 {
		return nil, fmt.Errorf("floor plan has no rooms")
	}
	return &p, nil
}

// Encode renders p as YAML in the shape Parse reads.
func (p *Plan) Encode() ([]byte, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode floor plan: %w", err)
	}
	return data, nil
}

// Room returns the room whose name matches name, ignoring case.
func (p *Plan) Room(name string) (Room, bool) {
	for _, r := range p.Rooms {
		if strings.EqualFold(strings.TrimSpace(r.Name), strings.TrimSpace(name)) {
			return r, true
		}
	}
	return Room{}, false
}

// Names lists every room name in plan order.
func (p *Plan) Names() []string {
	names := make([]string, 0, len(p.Rooms))
	for _, r := range p.Rooms {
		names = append(names, r.Name)
	}
	return names
}

// Adjacency returns the rooms behind each wall of the named room. A wall is
// adjacent to another room when a door on it connects to that room. Doors
// whose position is not a wall, or that lead nowhere, are skipped.
func (p *Plan) Adjacency(name string) (roomedit.RoomAdjacency, error) {
	room, ok := p.Room(name)
	if !ok {
		return nil, fmt.Errorf("room %q not in floor plan (rooms: %s)", name, strings.Join(p.Names(), ", "))
	}
	adj := make(roomedit.RoomAdjacency)
	for _, d := range room.Doors {
		wall, ok := roomedit.ExtractWall(d.Position)
		if !ok || strings.TrimSpace(d.ConnectsTo) == "" {
			log.Debug().Str("room", room.Name).Str("position", d.Position).Msg("Skipping door without a wall or destination")
			continue
		}
		if !contains(adj[wall], d.ConnectsTo) {
			adj[wall] = append(adj[wall], d.ConnectsTo)
		}
	}
	return adj, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// Package store persists the latest ImageState of each room so that the next
// turn can edit it. A room's state is replaced on every successful turn; the
// Parent field of each state records where it came from.
//
// Get methods return (nil, nil) when the room has no state yet. Put methods
// perform full replacement.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fpang/roomedit/internal/roomedit"
)

// RoomTTL is how long a room's state is kept after its last edit.
const RoomTTL = 7 * 24 * time.Hour

// StateStore reads and writes the latest ImageState per room. Implementations
// are safe for concurrent use.
type StateStore interface {
	// GetState returns the latest state of roomID, or nil, nil if none.
	GetState(ctx context.Context, roomID string) (*roomedit.ImageState, error)

	// PutState replaces the latest state of roomID.
	PutState(ctx context.Context, roomID string, state *roomedit.ImageState) error
}

// ValidateRoomID rejects ids that cannot be used as a key or file name.
func ValidateRoomID(roomID string) error {
	switch {
	case roomID == "":
		return fmt.Errorf("room id is required")
	case len(roomID) > 128:
		return fmt.Errorf("room id longer than 128 characters")
	case strings.ContainsAny(roomID, `/\#`) || strings.Contains(roomID, ".."):
		return fmt.Errorf("room id %q contains a reserved character", roomID)
	}
	return nil
}

func cloneState(s *roomedit.ImageState) *roomedit.ImageState {
	if s == nil {
		return nil
	}
	out := *s
	out.Catalog = s.Catalog.Clone()
	return &out
}

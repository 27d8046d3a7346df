package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the surface and floater state for replay.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	Tick       int32  `json:"tick"`
	Generation uint64 `json:"generation"`

	GridSize int       `json:"grid_size"`
	Height   []float32 `json:"height"`
	Velocity []float32 `json:"velocity"`

	Floaters []FloaterState `json:"floaters"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// FloaterState holds one floater's simulation state.
type FloaterState struct {
	Index uint16 `json:"index"`

	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`

	Pitch float32 `json:"pitch"`
	Yaw   float32 `json:"yaw"`
	Roll  float32 `json:"roll"`

	DriftX float32 `json:"drift_x"`
	DriftZ float32 `json:"drift_z"`
}

// Validate checks that the grid channels match GridSize.
func (s *Snapshot) Validate() error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("snapshot version %d, want %d", s.Version, SnapshotVersion)
	}
	if s.GridSize <= 0 {
		return errors.New("snapshot grid size must be positive")
	}
	cells := s.GridSize * s.GridSize
	if len(s.Height) != cells || len(s.Velocity) != cells {
		return fmt.Errorf("snapshot channels have %d/%d values, want %d", len(s.Height), len(s.Velocity), cells)
	}
	return nil
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// Build filename
	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		// Sanitize bookmark type for filename
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads and validates a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", path, err)
	}

	return &snapshot, nil
}

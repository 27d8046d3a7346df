package telemetry

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
)

func testSnapshot() *Snapshot {
	const n = 4
	s := &Snapshot{
		Version:    SnapshotVersion,
		RNGSeed:    42,
		Tick:       1000,
		Generation: 1021,
		GridSize:   n,
		Height:     make([]float32, n*n),
		Velocity:   make([]float32, n*n),
		Floaters: []FloaterState{
			{Index: 0, X: 0.1, Y: 0.02, Z: -0.3, Pitch: -1.57, Yaw: 0.4, DriftX: 0.0001, DriftZ: -0.0002},
			{Index: 1, X: -0.5, Y: 0.021, Z: 0.6, Pitch: -1.57, Roll: 0.01},
		},
	}
	s.Height[5] = 0.0123
	s.Velocity[6] = -0.004
	return s
}

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	snapshot := testSnapshot()

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if filepath.Base(path) != "snapshot_1000.json" {
		t.Errorf("unexpected filename %s", filepath.Base(path))
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.RNGSeed != 42 || loaded.Tick != 1000 || loaded.Generation != 1021 {
		t.Errorf("header mismatch: %+v", loaded)
	}
	if loaded.Height[5] != 0.0123 || loaded.Velocity[6] != -0.004 {
		t.Errorf("grid channels not preserved: h %v v %v", loaded.Height[5], loaded.Velocity[6])
	}
	if len(loaded.Floaters) != 2 || loaded.Floaters[0] != snapshot.Floaters[0] {
		t.Errorf("floaters not preserved: %+v", loaded.Floaters)
	}
}

func TestSnapshotBookmarkFilename(t *testing.T) {
	snapshot := testSnapshot()
	snapshot.Bookmark = &Bookmark{Type: BookmarkCalm, Tick: 1000, Description: "settled"}

	path, err := SaveSnapshot(snapshot, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(path, "snapshot_1000_calm.json") {
		t.Errorf("unexpected path %s", path)
	}
}

func TestLoadSnapshotRejectsMismatchedGrid(t *testing.T) {
	snapshot := testSnapshot()
	snapshot.Height = snapshot.Height[:3]

	path, err := SaveSnapshot(snapshot, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected error for truncated height channel")
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

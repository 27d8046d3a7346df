package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/pool/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("empty dir should disable output, got %v, %v", om, err)
	}
	// Nil manager methods are no-ops
	if err := om.WriteSurface(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 3; i++ {
		if err := om.WriteSurface(WindowStats{WindowEndTick: int32(i * 600), Energy: 0.5 / float64(i)}); err != nil {
			t.Fatal(err)
		}
		perf := PerfStats{StepsPerFrame: 1}
		perf.PhasePct[PhaseStep] = 30
		if err := om.WritePerf(perf, int32(i*600)); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkCalm, Tick: 1800, Description: "settled"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	surface := readLines(t, filepath.Join(dir, "surface.csv"))
	if len(surface) != 4 {
		t.Fatalf("surface.csv has %d lines, want header + 3", len(surface))
	}
	if !strings.HasPrefix(surface[0], "window_end,sim_time,ambient_drops") {
		t.Errorf("unexpected header %q", surface[0])
	}
	if strings.Contains(surface[0], "WindowStartTick") {
		t.Error("skipped column leaked into header")
	}

	perf := readLines(t, filepath.Join(dir, "perf.csv"))
	if len(perf) != 4 || !strings.Contains(perf[0], "step_pct") {
		t.Errorf("perf.csv = %v", perf)
	}

	bookmarks := readLines(t, filepath.Join(dir, "bookmarks.csv"))
	if len(bookmarks) != 2 || bookmarks[0] != "type,tick,description" {
		t.Errorf("bookmarks.csv = %v", bookmarks)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

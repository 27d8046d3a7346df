package sim

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pool/components"
	"github.com/pthm-cable/pool/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, s.surfaceSample())
	perfStats := s.perfCollector.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		slog.Info("perf", "stats", perfStats)
	}

	s.metrics.ObservePerf(perfStats)

	if s.outputManager != nil {
		if err := s.outputManager.WriteSurface(stats); err != nil {
			slog.Error("failed to write surface stats", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range s.bookmarkDetector.Check(stats) {
		if s.logStats {
			bm.LogBookmark()
		}

		if s.outputManager != nil {
			if err := s.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}

		if s.snapshotDir != "" {
			s.saveSnapshot(&bm)
		}
	}
}

// surfaceSample gathers the state the collector summarizes.
func (s *Simulation) surfaceSample() telemetry.SurfaceSample {
	ys := make([]float32, 0, s.floaters.Count())
	s.floaters.Each(func(_ ecs.Entity, pos *components.Position, _ *components.Orientation, _ *components.Appearance) {
		ys = append(ys, pos.Y)
	})

	return telemetry.SurfaceSample{
		Energy:    s.field.Energy(),
		MaxHeight: float64(s.field.MaxAbsHeight()),
		Heights:   s.field.Active().Height,
		Caustics:  s.caustics.Texture(),
		FloaterYs: ys,
	}
}

// SaveSnapshot writes the current state to dir and returns the file path.
func (s *Simulation) SaveSnapshot(dir string) (string, error) {
	return telemetry.SaveSnapshot(s.createSnapshot(nil), dir)
}

// saveSnapshot creates and saves a bookmark snapshot to the snapshot dir.
func (s *Simulation) saveSnapshot(bookmark *telemetry.Bookmark) {
	path, err := telemetry.SaveSnapshot(s.createSnapshot(bookmark), s.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", s.tick)
}

// createSnapshot builds a snapshot from the current state.
func (s *Simulation) createSnapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	active := s.field.Active()
	snapshot := &telemetry.Snapshot{
		Version:    telemetry.SnapshotVersion,
		RNGSeed:    s.rngSeed,
		Tick:       s.tick,
		Generation: s.field.Generation(),
		GridSize:   s.field.Size(),
		Height:     append([]float32(nil), active.Height...),
		Velocity:   append([]float32(nil), active.Velocity...),
		Bookmark:   bookmark,
	}

	s.floaters.Each(func(e ecs.Entity, pos *components.Position, orient *components.Orientation, app *components.Appearance) {
		drift := s.driftMap.Get(e)
		snapshot.Floaters = append(snapshot.Floaters, telemetry.FloaterState{
			Index:  app.Index,
			X:      pos.X,
			Y:      pos.Y,
			Z:      pos.Z,
			Pitch:  orient.Pitch,
			Yaw:    orient.Yaw,
			Roll:   orient.Roll,
			DriftX: drift.X,
			DriftZ: drift.Z,
		})
	})

	return snapshot
}

// RestoreSnapshot loads the surface and floater state saved at path.
// The random stream is not part of a snapshot; drops after a restore follow
// the seed this simulation was created with.
func (s *Simulation) RestoreSnapshot(path string) error {
	snapshot, err := telemetry.LoadSnapshot(path)
	if err != nil {
		return err
	}
	if snapshot.GridSize != s.field.Size() {
		return fmt.Errorf("restoring %s: grid size %d, want %d", path, snapshot.GridSize, s.field.Size())
	}
	if err := s.field.Restore(snapshot.Height, snapshot.Velocity); err != nil {
		return fmt.Errorf("restoring %s: %w", path, err)
	}

	byIndex := make(map[uint16]telemetry.FloaterState, len(snapshot.Floaters))
	for _, f := range snapshot.Floaters {
		byIndex[f.Index] = f
	}
	s.floaters.Each(func(e ecs.Entity, pos *components.Position, orient *components.Orientation, app *components.Appearance) {
		f, ok := byIndex[app.Index]
		if !ok {
			return
		}
		pos.X, pos.Y, pos.Z = f.X, f.Y, f.Z
		orient.Pitch, orient.Yaw, orient.Roll = f.Pitch, f.Yaw, f.Roll
		drift := s.driftMap.Get(e)
		drift.X, drift.Z = f.DriftX, f.DriftZ
	})

	s.tick = snapshot.Tick
	slog.Info("snapshot restored", "path", path, "tick", s.tick, "floaters", len(byIndex))
	return nil
}

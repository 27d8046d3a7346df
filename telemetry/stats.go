package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Events during window
	AmbientDrops int `csv:"ambient_drops"`
	PointerDrops int `csv:"pointer_drops"`
	Steps        int `csv:"steps"`

	// Surface state (sampled at window end)
	Energy       float64 `csv:"energy"`     // Sum of squared heights
	MaxHeight    float64 `csv:"max_height"` // Largest |h|
	HeightMean   float64 `csv:"height_mean"`
	HeightStd    float64 `csv:"height_std"`
	AbsHeightP50 float64 `csv:"abs_height_p50"`
	AbsHeightP90 float64 `csv:"abs_height_p90"`

	// Caustics distribution (sampled at window end)
	CausticMin  float64 `csv:"caustic_min"`
	CausticMax  float64 `csv:"caustic_max"`
	CausticMean float64 `csv:"caustic_mean"`
	CausticStd  float64 `csv:"caustic_std"`
	CausticP90  float64 `csv:"caustic_p90"`

	// Floaters
	FloaterCount int     `csv:"floaters"`
	FloaterMeanY float64 `csv:"floater_mean_y"`
	FloaterMaxY  float64 `csv:"floater_max_y"`
}

// Distribution summarizes a sample.
type Distribution struct {
	Mean, Std     float64
	Min, Max      float64
	P10, P50, P90 float64
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution calculates mean, population std and percentiles.
// values is sorted in place.
func ComputeDistribution(values []float64) Distribution {
	n := len(values)
	if n == 0 {
		return Distribution{}
	}

	mean, std := stat.PopMeanStdDev(values, nil)

	sort.Float64s(values)

	return Distribution{
		Mean: mean,
		Std:  std,
		Min:  values[0],
		Max:  values[n-1],
		P10:  Percentile(values, 0.10),
		P50:  Percentile(values, 0.50),
		P90:  Percentile(values, 0.90),
	}
}

// float32sTo64 widens src into dst (reallocated if too small), optionally taking |v|.
func float32sTo64(dst []float64, src []float32, abs bool) []float64 {
	if cap(dst) < len(src) {
		dst = make([]float64, len(src))
	}
	dst = dst[:len(src)]
	for i, v := range src {
		f := float64(v)
		if abs && f < 0 {
			f = -f
		}
		dst[i] = f
	}
	return dst
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("ambient_drops", s.AmbientDrops),
		slog.Int("pointer_drops", s.PointerDrops),
		slog.Int("steps", s.Steps),
		slog.Float64("energy", s.Energy),
		slog.Float64("max_height", s.MaxHeight),
		slog.Float64("height_mean", s.HeightMean),
		slog.Float64("height_std", s.HeightStd),
		slog.Float64("abs_height_p50", s.AbsHeightP50),
		slog.Float64("abs_height_p90", s.AbsHeightP90),
		slog.Float64("caustic_min", s.CausticMin),
		slog.Float64("caustic_max", s.CausticMax),
		slog.Float64("caustic_mean", s.CausticMean),
		slog.Float64("caustic_std", s.CausticStd),
		slog.Float64("caustic_p90", s.CausticP90),
		slog.Int("floaters", s.FloaterCount),
		slog.Float64("floater_mean_y", s.FloaterMeanY),
		slog.Float64("floater_max_y", s.FloaterMaxY),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"ambient_drops", s.AmbientDrops,
		"pointer_drops", s.PointerDrops,
		"steps", s.Steps,
		"energy", s.Energy,
		"max_height", s.MaxHeight,
		"height_std", s.HeightStd,
		"abs_height_p90", s.AbsHeightP90,
		"caustic_max", s.CausticMax,
		"caustic_std", s.CausticStd,
		"floaters", s.FloaterCount,
		"floater_mean_y", s.FloaterMeanY,
	)
}

package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkEnergySpike   BookmarkType = "energy_spike"
	BookmarkCausticPeak   BookmarkType = "caustic_peak"
	BookmarkCalm          BookmarkType = "calm"
	BookmarkSteadySurface BookmarkType = "steady_surface"
)

// Thresholds below which the surface is treated as flat.
const (
	calmMaxHeight   = 1e-3
	activeMaxHeight = 1e-2
	minSpikeEnergy  = 1e-3
	minCausticPeak  = 2.0
	steadyCVSquared = 0.04 // CV < 0.2
	steadyWindows   = 5
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments on the surface.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentPeakHeight   float64 // largest max height since the last calm
	steadyWindowsCount int     // consecutive windows with steady energy
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for steady surface detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		// Energy spike: energy > 2x rolling average
		if b := bd.checkEnergySpike(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Caustic peak: brightest texel > 1.5x rolling average
		if b := bd.checkCausticPeak(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Calm: surface settled after having been active
		if b := bd.checkCalm(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Steady surface: low energy variance over 5+ windows
		if b := bd.checkSteadySurface(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	if stats.MaxHeight > bd.recentPeakHeight {
		bd.recentPeakHeight = stats.MaxHeight
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkEnergySpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.Energy
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.Energy > avg*2.0 && stats.Energy > minSpikeEnergy {
		return &Bookmark{
			Type:        BookmarkEnergySpike,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Energy %.4g is %.1fx average (%.4g)", stats.Energy, stats.Energy/avg, avg),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkCausticPeak(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.CausticMax
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.CausticMax > avg*1.5 && stats.CausticMax > minCausticPeak {
		return &Bookmark{
			Type:        BookmarkCausticPeak,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Caustic peak %.2f is %.1fx average (%.2f)", stats.CausticMax, stats.CausticMax/avg, avg),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkCalm(stats WindowStats) *Bookmark {
	if bd.recentPeakHeight < activeMaxHeight || stats.MaxHeight >= calmMaxHeight {
		return nil
	}

	// Reset the peak after triggering
	oldPeak := bd.recentPeakHeight
	bd.recentPeakHeight = 0

	return &Bookmark{
		Type:        BookmarkCalm,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Surface settled from peak %.4f to %.5f", oldPeak, stats.MaxHeight),
	}
}

func (bd *BookmarkDetector) checkSteadySurface(stats WindowStats) *Bookmark {
	if stats.Energy < minSpikeEnergy {
		bd.steadyWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history[len(history)-4:]
	var sum float64
	for _, h := range recent {
		sum += h.Energy
	}
	mean := sum / 4

	var variance float64
	for _, h := range recent {
		d := h.Energy - mean
		variance += d * d
	}
	variance /= 4

	cv2 := 0.0
	if mean > 0 {
		cv2 = variance / (mean * mean)
	}

	if cv2 < steadyCVSquared {
		bd.steadyWindowsCount++
	} else {
		bd.steadyWindowsCount = 0
	}

	if bd.steadyWindowsCount == steadyWindows { // trigger exactly once
		return &Bookmark{
			Type:        BookmarkSteadySurface,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Surface energy steady near %.4g over %d+ windows", mean, steadyWindows),
		}
	}

	return nil
}

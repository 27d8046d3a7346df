package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayWater         OverlayID = "water"
	OverlayNormals       OverlayID = "normals"
	OverlayHeightReadout OverlayID = "height_readout"
	OverlayFloaterInfo   OverlayID = "floater_info"
	OverlayDrift         OverlayID = "drift"
	OverlayBounds        OverlayID = "bounds"
	OverlayPerf          OverlayID = "perf"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID   // Unique identifier
	Name        string      // Display name
	Description string      // What this overlay shows
	Key         int32       // Keyboard key to toggle (0 = no key)
	KeyLabel    string      // Key label for display (e.g., "N", "P")
	Category    string      // Grouping ("visual" or "debug")
	Default     bool        // Enabled at startup
	Exclusive   []OverlayID // Other overlays to disable when this is enabled
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with default overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds standard overlays.
func (r *OverlayRegistry) registerDefaults() {
	r.Register(OverlayDescriptor{
		ID:          OverlayWater,
		Name:        "Water Surface",
		Description: "Draw the shaded surface over the floor",
		Key:         rl.KeyW,
		KeyLabel:    "W",
		Category:    "visual",
		Default:     true,
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayFloaterInfo,
		Name:        "Inspector",
		Description: "Show components of the selected floater",
		Key:         rl.KeyI,
		KeyLabel:    "I",
		Category:    "visual",
		Default:     true,
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayNormals,
		Name:        "Normals",
		Description: "Show horizontal surface normals on a coarse grid",
		Key:         rl.KeyN,
		KeyLabel:    "N",
		Category:    "debug",
		Exclusive:   []OverlayID{OverlayHeightReadout},
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayHeightReadout,
		Name:        "Height Readout",
		Description: "Sample height and gradient under the cursor",
		Key:         rl.KeyH,
		KeyLabel:    "H",
		Category:    "debug",
		Exclusive:   []OverlayID{OverlayNormals},
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayDrift,
		Name:        "Drift",
		Description: "Show floater drift vectors",
		Key:         rl.KeyD,
		KeyLabel:    "D",
		Category:    "debug",
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayBounds,
		Name:        "Bounds",
		Description: "Show the floater containment rectangle",
		Key:         rl.KeyB,
		KeyLabel:    "B",
		Category:    "debug",
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayPerf,
		Name:        "Perf",
		Description: "Show frame phase timings",
		Key:         rl.KeyF,
		KeyLabel:    "F",
		Category:    "debug",
	})
}

// Register adds an overlay to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = desc.Default
}

// Toggle switches an overlay on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	newState := !r.enabled[id]
	r.SetEnabled(id, newState)
	return newState
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}

	r.enabled[id] = enabled

	// If enabling, disable exclusive overlays
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// All returns all registered overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// ByCategory returns overlays filtered by category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeys toggles every overlay whose key was pressed this frame.
func (r *OverlayRegistry) HandleKeys() {
	for _, desc := range r.descriptors {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			r.Toggle(desc.ID)
		}
	}
}

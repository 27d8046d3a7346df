// Package game wires the surface simulation to a raylib window: input,
// camera, textures, panels and overlays.
package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pool/camera"
	"github.com/pthm-cable/pool/components"
	"github.com/pthm-cable/pool/config"
	"github.com/pthm-cable/pool/inspector"
	"github.com/pthm-cable/pool/renderer"
	"github.com/pthm-cable/pool/sim"
	"github.com/pthm-cable/pool/telemetry"
	"github.com/pthm-cable/pool/ui"
)

// Options configures a game. Headless skips every raylib resource.
type Options struct {
	sim.Options
	Headless bool
}

// Game holds the simulation and its presentation.
type Game struct {
	sim      *sim.Simulation
	headless bool

	// Presentation
	view      *camera.PoolView
	pool      *renderer.PoolRenderer
	floaters  *renderer.FloaterRenderer
	inspector *inspector.Inspector
	driftMap  *ecs.Map[components.Drift]

	// UI
	hud            *ui.HUD
	perfPanel      *ui.PerfPanel
	panel          *ui.TunablesPanel
	inspectorPanel *ui.InspectorPanel
	overlays       *ui.OverlayRegistry

	screenW, screenH int32
	panelW           int32
}

// NewGameWithOptions creates a game. In graphical mode the raylib window
// must already be open.
func NewGameWithOptions(opts Options) (*Game, error) {
	s, err := sim.New(opts.Options)
	if err != nil {
		return nil, err
	}

	g := &Game{
		sim:      s,
		headless: opts.Headless,
	}
	if g.headless {
		return g, nil
	}

	cfg := config.Cfg()
	g.screenW = int32(cfg.Screen.Width)
	g.screenH = int32(cfg.Screen.Height)
	g.panelW = int32(cfg.Screen.PanelWidth)

	g.view = camera.New(float32(g.panelW), float32(g.screenW-g.panelW), float32(g.screenH), s.Tunables().CameraHeight)

	light := mgl32.Vec3(cfg.Derived.Light)
	depth := float32(cfg.Caustics.PoolDepth)
	g.pool = renderer.NewPoolRenderer(light, depth)
	g.pool.Init(s.Field().Size(), s.Caustics().Size())
	g.floaters = renderer.NewFloaterRenderer(light, depth)

	g.inspector = inspector.New(s.World())
	g.driftMap = ecs.NewMap[components.Drift](s.World())

	g.hud = ui.NewHUD()
	g.perfPanel = ui.NewPerfPanel(g.screenW-260, g.screenH-200)
	g.panel = ui.NewTunablesPanel(0, 0, g.panelW, g.screenH, g.sliders())
	g.inspectorPanel = ui.NewInspectorPanel(g.screenW-240, 10, 230)
	g.overlays = ui.NewOverlayRegistry()

	return g, nil
}

// Update handles input and advances the simulation.
func (g *Game) Update() {
	g.layout()
	g.handleInput()
	g.view.SetHeight(g.sim.Tunables().CameraHeight)

	if err := g.sim.Update(); err != nil {
		slog.Error("frame failed", "tick", g.sim.Tick(), "error", err)
	}
	g.sim.Perf().RecordPresent()
}

// UpdateHeadless advances the simulation without input or drawing.
func (g *Game) UpdateHeadless() {
	if err := g.sim.Update(); err != nil {
		slog.Error("frame failed", "tick", g.sim.Tick(), "error", err)
	}
}

// Unload releases all resources.
func (g *Game) Unload() {
	if g.pool != nil {
		g.pool.Unload()
	}
	g.sim.Close()
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.sim.Tick()
}

// Sim returns the underlying simulation.
func (g *Game) Sim() *sim.Simulation {
	return g.sim
}

// layout fits the view and panels to the window and panel visibility.
func (g *Game) layout() {
	g.screenW, g.screenH = int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	panelW := g.panelW
	if !g.panel.IsVisible() {
		panelW = 0
	}
	g.view.Resize(float32(panelW), float32(g.screenW-panelW), float32(g.screenH))
	g.panel.SetBounds(0, 0, g.panelW, g.screenH)
	g.perfPanel.SetPosition(g.screenW-260, g.screenH-200)
	g.inspectorPanel.SetPosition(g.screenW-240, 10)
}

// perfData converts the perf collector's window into panel data.
func (g *Game) perfData() ui.PerfPanelData {
	return ui.PerfPanelData{
		Stats:  g.sim.Perf().Stats(),
		Phases: telemetry.Phases,
	}
}

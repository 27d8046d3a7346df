// Package inspector tracks the selected floater and turns its components
// into labelled sections for display.
package inspector

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pool/components"
)

// Inspector manages floater selection and component extraction.
type Inspector struct {
	world       *ecs.World
	selected    ecs.Entity
	hasSelected bool

	posMap    *ecs.Map[components.Position]
	orientMap *ecs.Map[components.Orientation]
	respMap   *ecs.Map[components.Response]
	driftMap  *ecs.Map[components.Drift]
	appMap    *ecs.Map[components.Appearance]
}

// New creates an inspector for floaters in world.
func New(world *ecs.World) *Inspector {
	return &Inspector{
		world:     world,
		posMap:    ecs.NewMap[components.Position](world),
		orientMap: ecs.NewMap[components.Orientation](world),
		respMap:   ecs.NewMap[components.Response](world),
		driftMap:  ecs.NewMap[components.Drift](world),
		appMap:    ecs.NewMap[components.Appearance](world),
	}
}

// Select makes e the inspected entity.
func (ins *Inspector) Select(e ecs.Entity) {
	ins.selected = e
	ins.hasSelected = true
}

// Deselect clears the selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
}

// Selected returns the inspected entity, if it is still alive.
func (ins *Inspector) Selected() (ecs.Entity, bool) {
	if !ins.hasSelected {
		return ecs.Entity{}, false
	}
	if !ins.world.Alive(ins.selected) {
		ins.hasSelected = false
		return ecs.Entity{}, false
	}
	return ins.selected, true
}

// Sections returns the selected floater's components in display order.
// It returns nil when nothing is selected.
func (ins *Inspector) Sections() []Section {
	e, ok := ins.Selected()
	if !ok {
		return nil
	}

	var sections []Section
	if ins.appMap.Has(e) {
		sections = append(sections, NewSection(ins.appMap.Get(e)))
	}
	if ins.posMap.Has(e) {
		sections = append(sections, NewSection(ins.posMap.Get(e)))
	}
	if ins.orientMap.Has(e) {
		sections = append(sections, NewSection(ins.orientMap.Get(e)))
	}
	if ins.driftMap.Has(e) {
		sections = append(sections, NewSection(ins.driftMap.Get(e)))
	}
	if ins.respMap.Has(e) {
		sections = append(sections, NewSection(ins.respMap.Get(e)))
	}
	return sections
}

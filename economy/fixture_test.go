package economy

import "github.com/nstehr/soy/model"

const testDepot model.UnitTag = 1

const (
	workerRadius = 0.375
	workerStep   = 0.5
)

var terran, _ = model.KitFor(model.RaceTerran)

func depotAt(tag model.UnitTag, pos model.Point) model.Unit {
	return model.Unit{
		Tag:           tag,
		Type:          model.UnitCommandCenter,
		Alliance:      model.AllianceOwn,
		Pos:           pos,
		Radius:        2.75,
		BuildProgress: 1,
	}
}

func mineralAt(tag model.UnitTag, pos model.Point) model.Unit {
	return model.Unit{
		Tag:      tag,
		Type:     model.UnitMineralField,
		Alliance: model.AllianceNeutral,
		Pos:      pos,
		Radius:   1.125,
	}
}

func workerAt(tag model.UnitTag, pos model.Point, orders ...model.Order) model.Unit {
	return model.Unit{
		Tag:      tag,
		Type:     model.UnitSCV,
		Alliance: model.AllianceOwn,
		Pos:      pos,
		Radius:   workerRadius,
		Step:     workerStep,
		Orders:   orders,
	}
}

// world is a single expansion at the origin with its depot and the given
// mineral tags laid out in a row eight units east.
type world struct {
	topo  *model.Topology
	units []model.Unit
}

func newWorld(resources ...model.UnitTag) *world {
	w := &world{
		topo: &model.Topology{
			Expansions: []model.Expansion{
				{Location: model.Point{}, Resources: resources},
			},
		},
		units: []model.Unit{depotAt(testDepot, model.Point{})},
	}
	for i, r := range resources {
		w.units = append(w.units, mineralAt(r, model.Point{X: 8, Y: float64(i) * 2}))
	}
	return w
}

func (w *world) addWorkers(tags ...model.UnitTag) {
	for _, t := range tags {
		w.units = append(w.units, workerAt(t, model.Point{X: 3, Y: 0}))
	}
}

func (w *world) state(tick int, events ...model.Event) model.GameState {
	return model.GameState{Tick: tick, Units: w.units, Events: events}
}

// engine returns an engine that has already seen the world's first tick.
func (w *world) engine() *Engine {
	e := NewEngine(terran, w.topo)
	e.Reconcile(w.state(0))
	return e
}

func destroyed(tag model.UnitTag, a model.Alliance) model.Event {
	return model.Event{Kind: model.EventUnitDestroyed, Tag: tag, Alliance: a}
}

package economy

import (
	"log/slog"
	"slices"

	"github.com/nstehr/soy/model"
)

// builderGraceTicks is how long a fresh builder may show no construction
// order before it is handed back; the host applies orders a step late.
const builderGraceTicks = 8

// Reconcile brings the ledger in line with this tick's lifecycle events.
// It must run before Allocate and Drive in the same tick. Every handler is
// idempotent, so a replayed or duplicated event is harmless.
func (e *Engine) Reconcile(gs model.GameState) {
	units := gs.Index()

	if len(gs.Expansions) > 0 && !e.topology.SameLayout(gs.Expansions) {
		e.applyTopology(gs.Expansions, units)
		e.seedBases(gs)
	}
	if !e.seeded {
		e.seedBases(gs)
		e.seedWorkers(gs)
		e.seeded = true
	}

	for _, ev := range gs.Events {
		switch ev.Kind {
		case model.EventUnitCreated:
			e.onUnitCreated(ev.Tag, units)
		case model.EventConstructionComplete:
			e.onConstructionComplete(ev.Tag, units)
		case model.EventUnitDestroyed:
			e.onUnitDestroyed(ev.Tag, ev.Alliance)
		default:
			slog.Warn("unhandled event", "kind", ev.Kind, "tag", ev.Tag)
		}
	}

	e.returnBuilders(gs.Tick, units)
}

func (e *Engine) onUnitCreated(tag model.UnitTag, units model.UnitIndex) {
	u, ok := units.Lookup(tag)
	if !ok {
		slog.Warn("created unit missing from snapshot", "tag", tag)
		return
	}
	if !u.IsOwn() || !e.kit.IsWorker(u.Type) {
		slog.Debug("unit created", "tag", tag, "type", u.Type)
		return
	}
	if e.ledger.IsFree(tag) {
		return
	}
	if _, bound := e.ledger.Binding(tag); bound || e.ledger.IsBuilder(tag) {
		slog.Warn("created worker already tracked", "tag", tag)
		return
	}
	e.ledger.AddFree(tag)
	slog.Debug("worker created", "tag", tag)
}

func (e *Engine) onConstructionComplete(tag model.UnitTag, units model.UnitIndex) {
	u, ok := units.Lookup(tag)
	if !ok {
		slog.Warn("completed structure missing from snapshot", "tag", tag)
		return
	}
	if !u.IsOwn() || !e.kit.IsTownhall(u.Type) {
		slog.Debug("construction complete", "tag", tag, "type", u.Type)
		return
	}
	e.recordBase(u)
}

func (e *Engine) recordBase(u model.Unit) {
	idx := e.topology.IndexForBase(u.Tag, u.Pos)
	if idx < 0 {
		slog.Warn("townhall not on a known expansion", "tag", u.Tag, "x", u.Pos.X, "y", u.Pos.Y)
		return
	}
	e.ledger.RecordBase(u.Tag, idx)
	slog.Info("base recorded", "depot", u.Tag, "expansion", idx)
}

func (e *Engine) onUnitDestroyed(tag model.UnitTag, alliance model.Alliance) {
	switch alliance {
	case model.AllianceOwn:
		if idx, ok := e.ledger.RemoveBase(tag); ok {
			delete(e.rallied, tag)
			released := 0
			if exp, ok := e.topology.Expansion(idx); ok {
				for _, r := range exp.Resources {
					released += len(e.ledger.ReleaseResource(r))
				}
			}
			// Bindings to nodes the topology no longer lists still point here.
			released += len(e.ledger.ReleaseDepot(tag))
			slog.Info("depot destroyed", "depot", tag, "expansion", idx, "released", released)
			return
		}
		switch e.ledger.RemoveWorker(tag) {
		case RemovedBound:
			slog.Debug("harvester destroyed", "tag", tag)
		case RemovedFree:
			slog.Debug("free worker destroyed", "tag", tag)
		case RemovedBuilder:
			slog.Debug("builder destroyed", "tag", tag)
		default:
			slog.Debug("unhandled unit destroyed", "tag", tag)
		}
	case model.AllianceNeutral:
		released := e.ledger.ReleaseResource(tag)
		if e.removeResource(tag) || len(released) > 0 {
			slog.Info("resource depleted", "resource", tag, "released", len(released))
		}
	case model.AllianceEnemy:
		slog.Debug("enemy unit destroyed", "tag", tag)
	default:
		slog.Warn("destroyed unit with unknown alliance", "tag", tag, "alliance", alliance)
	}
}

// applyTopology swaps in a refreshed expansion list. Recorded bases are
// re-resolved because expansion indices are positional, and any binding whose
// resource is no longer listed under its depot's expansion is released.
func (e *Engine) applyTopology(exps []model.Expansion, units model.UnitIndex) {
	bases := e.ledger.Bases()
	locations := make(map[model.UnitTag]model.Point, len(bases))
	for _, b := range bases {
		if u, ok := units.Lookup(b.Depot); ok {
			locations[b.Depot] = u.Pos
		} else if exp, ok := e.topology.Expansion(b.Index); ok {
			locations[b.Depot] = exp.Location
		}
	}

	e.refreshTopology(exps)

	for _, b := range bases {
		idx := e.topology.IndexForBase(b.Depot, locations[b.Depot])
		switch {
		case idx < 0:
			e.ledger.RemoveBase(b.Depot)
			slog.Warn("base no longer on a known expansion", "depot", b.Depot)
		case idx != b.Index:
			e.ledger.RecordBase(b.Depot, idx)
			slog.Info("base moved to new expansion index", "depot", b.Depot, "from", b.Index, "to", idx)
		}
	}

	released := 0
	for _, w := range e.ledger.BoundWorkers() {
		b, _ := e.ledger.Binding(w)
		if e.serves(b) {
			continue
		}
		e.ledger.ReleaseWorker(w)
		released++
	}
	slog.Info("topology refreshed", "expansions", len(exps), "released", released)
}

// serves reports whether b's resource belongs to the expansion its depot
// is recorded on.
func (e *Engine) serves(b Binding) bool {
	idx, ok := e.ledger.BaseIndex(b.Depot)
	if !ok {
		return false
	}
	exp, ok := e.topology.Expansion(idx)
	return ok && slices.Contains(exp.Resources, b.Resource)
}

// returnBuilders frees builders that are no longer constructing anything.
func (e *Engine) returnBuilders(tick int, units model.UnitIndex) {
	for _, w := range e.ledger.Builders() {
		u, ok := units.Lookup(w)
		if !ok {
			continue
		}
		since, _ := e.ledger.BuilderSince(w)
		if tick-since < builderGraceTicks || e.constructing(u) {
			continue
		}
		e.ledger.ReleaseBuilder(w)
		slog.Debug("builder returned to economy", "tag", w)
	}
}

func (e *Engine) constructing(u model.Unit) bool {
	for _, o := range u.Orders {
		if e.kit.IsConstruction(o.Ability) {
			return true
		}
	}
	return false
}

// seedBases records own completed townhalls that sit on an expansion but
// were never announced by a construction event, such as the starting base.
func (e *Engine) seedBases(gs model.GameState) {
	for _, u := range gs.Units {
		if !u.IsOwn() || !e.kit.IsTownhall(u.Type) || !u.IsReady() {
			continue
		}
		if _, ok := e.ledger.BaseIndex(u.Tag); ok {
			continue
		}
		e.recordBase(u)
	}
}

// seedWorkers adds own workers the ledger has never heard of.
func (e *Engine) seedWorkers(gs model.GameState) {
	for _, u := range gs.Units {
		if !u.IsOwn() || !e.kit.IsWorker(u.Type) {
			continue
		}
		if _, bound := e.ledger.Binding(u.Tag); bound || e.ledger.IsFree(u.Tag) || e.ledger.IsBuilder(u.Tag) {
			continue
		}
		e.ledger.AddFree(u.Tag)
	}
}

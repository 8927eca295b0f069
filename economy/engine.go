package economy

import (
	"log/slog"
	"slices"

	"github.com/nstehr/soy/ipc"
	"github.com/nstehr/soy/model"
)

// Engine is the worker economy for one player. It owns the ledger and its
// copy of the expansion topology. A tick is Reconcile, then Allocate, then
// Drive, run sequentially from a single goroutine.
type Engine struct {
	kit      model.RaceKit
	ledger   *Ledger
	topology *model.Topology
	depleted map[model.UnitTag]struct{}
	rallied  map[model.UnitTag]struct{}
	seeded   bool
}

func NewEngine(kit model.RaceKit, topo *model.Topology) *Engine {
	if topo == nil {
		topo = &model.Topology{}
	}
	e := &Engine{
		kit:      kit,
		ledger:   NewLedger(),
		topology: &model.Topology{StartLocation: topo.StartLocation, MapCenter: topo.MapCenter},
		depleted: make(map[model.UnitTag]struct{}),
		rallied:  make(map[model.UnitTag]struct{}),
	}
	e.refreshTopology(topo.Expansions)
	return e
}

func (e *Engine) Ledger() *Ledger { return e.ledger }

func (e *Engine) Topology() *model.Topology { return e.topology }

// Step runs a whole economy tick and appends its commands to batch.
func (e *Engine) Step(gs model.GameState, batch *ipc.Batch) {
	e.Reconcile(gs)
	e.Allocate()
	e.Drive(gs, batch)
	e.Rally(gs, batch)
}

// Allocate binds free workers to open resource slots.
func (e *Engine) Allocate() []Assignment {
	assigned := Allocate(e.ledger, e.topology)
	for _, a := range assigned {
		slog.Debug("worker assigned", "worker", a.Worker, "resource", a.Resource, "depot", a.Depot)
	}
	return assigned
}

// Drive issues at most one command to every bound worker, in ascending tag
// order. Workers commanded earlier in the pass are marked so later workers
// stop treating them as obstacles; this is what unjams two workers
// converging on the same node, so the pass must stay sequential.
func (e *Engine) Drive(gs model.GameState, batch *ipc.Batch) int {
	units := gs.Index()
	commanded := make(map[model.UnitTag]bool)
	issued := 0

	for _, tag := range e.ledger.BoundWorkers() {
		if batch.Has(tag) {
			commanded[tag] = true
			continue
		}
		b, _ := e.ledger.Binding(tag)
		site, ok := e.site(tag, b, units)
		if !ok {
			continue
		}
		teammates := e.ledger.Assigned(b.Resource)
		cmd, ok := Infer(e.kit, site, func() bool {
			return colliding(site.Worker, teammates, units, commanded)
		})
		if !ok {
			continue
		}
		if err := batch.Add(cmd); err != nil {
			slog.Error("economy command dropped", "worker", tag, "error", err)
			continue
		}
		commanded[tag] = true
		issued++
	}
	return issued
}

// Rally points each recorded depot, once, at the node of its expansion
// nearest to it, so the workers it trains walk straight to the mineral line.
// A depot that already has a command this tick is retried on the next.
func (e *Engine) Rally(gs model.GameState, batch *ipc.Batch) int {
	units := gs.Index()
	issued := 0
	for _, base := range e.ledger.Bases() {
		if _, done := e.rallied[base.Depot]; done || batch.Has(base.Depot) {
			continue
		}
		dep, ok := units.Lookup(base.Depot)
		if !ok {
			continue
		}
		exp, ok := e.topology.Expansion(base.Index)
		if !ok {
			continue
		}
		var target model.Unit
		found := false
		for _, r := range slices.Sorted(slices.Values(exp.Resources)) {
			u, ok := units.Lookup(r)
			if !ok {
				continue
			}
			if !found || u.Pos.DistanceSquared(dep.Pos) < target.Pos.DistanceSquared(dep.Pos) {
				target, found = u, true
			}
		}
		if !found {
			continue
		}
		if err := batch.Add(ipc.Smart(dep.Tag, target.Tag)); err != nil {
			slog.Error("rally command dropped", "depot", dep.Tag, "error", err)
			continue
		}
		e.rallied[dep.Tag] = struct{}{}
		issued++
		slog.Debug("depot rallied", "depot", dep.Tag, "resource", target.Tag)
	}
	return issued
}

// site gathers this tick's observations for a binding. Anything missing
// from the snapshot skips the worker until the next tick.
func (e *Engine) site(tag model.UnitTag, b Binding, units model.UnitIndex) (Site, bool) {
	w, ok := units.Lookup(tag)
	if !ok {
		slog.Debug("bound worker not in snapshot", "worker", tag)
		return Site{}, false
	}
	res, ok := units.Lookup(b.Resource)
	if !ok {
		slog.Debug("resource not in snapshot", "worker", tag, "resource", b.Resource)
		return Site{}, false
	}
	dep, ok := units.Lookup(b.Depot)
	if !ok {
		slog.Debug("depot not in snapshot", "worker", tag, "depot", b.Depot)
		return Site{}, false
	}
	return Site{Worker: w, Resource: res, Depot: dep}, true
}

// ClaimBuilder takes a worker out of the economy for construction. Free
// workers go first; otherwise the highest-tagged harvester not carrying
// minerals is pulled, falling back to any harvester.
func (e *Engine) ClaimBuilder(gs model.GameState) (model.Unit, bool) {
	units := gs.Index()
	for _, tag := range e.ledger.FreeWorkers() {
		if u, ok := units.Lookup(tag); ok {
			e.ledger.ClaimBuilder(tag, gs.Tick)
			return u, true
		}
	}

	bound := e.ledger.BoundWorkers()
	slices.Reverse(bound)
	var fallback *model.Unit
	for _, tag := range bound {
		u, ok := units.Lookup(tag)
		if !ok {
			continue
		}
		if !u.Carrying {
			e.ledger.ClaimBuilder(tag, gs.Tick)
			return u, true
		}
		if fallback == nil {
			fallback = &u
		}
	}
	if fallback != nil {
		e.ledger.ClaimBuilder(fallback.Tag, gs.Tick)
		return *fallback, true
	}
	return model.Unit{}, false
}

// OpenSlots counts unfilled slots across every recorded base.
func (e *Engine) OpenSlots() int {
	return len(OpenSlots(e.ledger, e.topology))
}

// Capacity is the number of workers every recorded base could employ.
func (e *Engine) Capacity() int {
	n := 0
	for _, base := range e.ledger.Bases() {
		if exp, ok := e.topology.Expansion(base.Index); ok {
			n += len(exp.Resources) * ResourceCapacity
		}
	}
	return n
}

// refreshTopology replaces the expansion list, leaving out resources that
// have already been mined out.
func (e *Engine) refreshTopology(exps []model.Expansion) {
	next := make([]model.Expansion, len(exps))
	for i, exp := range exps {
		exp.Resources = slices.DeleteFunc(slices.Clone(exp.Resources), func(r model.UnitTag) bool {
			_, gone := e.depleted[r]
			return gone
		})
		next[i] = exp
	}
	e.topology.Expansions = next
}

// removeResource forgets a mined-out node. It reports whether the node was
// part of the topology.
func (e *Engine) removeResource(r model.UnitTag) bool {
	e.depleted[r] = struct{}{}
	found := false
	for i := range e.topology.Expansions {
		exp := &e.topology.Expansions[i]
		if j := slices.Index(exp.Resources, r); j >= 0 {
			exp.Resources = slices.Delete(exp.Resources, j, j+1)
			found = true
		}
	}
	return found
}

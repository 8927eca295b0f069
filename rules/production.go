package rules

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/nstehr/soy/ipc"
	"github.com/nstehr/soy/model"
)

// Budget is what is left to spend this tick after earlier reservations.
type Budget struct {
	Minerals int
	Vespene  int
	Supply   int
}

func NewBudget(p model.Player) Budget {
	return Budget{Minerals: p.Minerals, Vespene: p.Vespene, Supply: p.SupplyLeft()}
}

func (b Budget) CanAfford(c model.Cost) bool {
	return b.Minerals >= c.Minerals && b.Vespene >= c.Vespene && b.Supply >= c.Supply
}

// Reserve spends c so later orders in the same tick cannot double-book it.
func (b *Budget) Reserve(c model.Cost) {
	b.Minerals -= c.Minerals
	b.Vespene -= c.Vespene
	b.Supply -= c.Supply
}

// BuilderSource hands out a worker for construction.
type BuilderSource interface {
	ClaimBuilder(gs model.GameState) (model.Unit, bool)
}

// buildDistance is how far from the start location, toward the map center,
// structures are placed. Each additional structure steps around that point.
const (
	buildDistance = 8.0
	buildStep     = 3.0
)

// Producer turns queue heads into train and build commands, one of each per
// tick at most, spending from a shared budget.
type Producer struct {
	kit      model.RaceKit
	topology *model.Topology
	builders BuilderSource
}

func NewProducer(kit model.RaceKit, topo *model.Topology, builders BuilderSource) *Producer {
	return &Producer{kit: kit, topology: topo, builders: builders}
}

// Run issues what the budget allows and returns the items it issued.
func (p *Producer) Run(gs model.GameState, q *Queues, batch *ipc.Batch) []Item {
	budget := NewBudget(gs.Player)
	var issued []Item
	if it, ok := p.train(gs, q, &budget, batch); ok {
		issued = append(issued, it)
	}
	if it, ok := p.build(gs, q, &budget, batch); ok {
		issued = append(issued, it)
	}
	return issued
}

func (p *Producer) train(gs model.GameState, q *Queues, budget *Budget, batch *ipc.Batch) (Item, bool) {
	it, ok := q.Train.Head()
	if !ok {
		return Item{}, false
	}
	cost, ok := model.CostOf(it.UnitType)
	if !ok {
		slog.Warn("dropping train order with unknown cost", "unitType", it.UnitType)
		q.Train.Pop()
		return Item{}, false
	}
	if !budget.CanAfford(cost) {
		return Item{}, false
	}
	producer, ok := p.idleProducer(gs, batch)
	if !ok {
		return Item{}, false
	}
	if err := batch.Add(ipc.Train(producer.Tag, it.Ability, it.UnitType)); err != nil {
		slog.Error("train command dropped", "producer", producer.Tag, "error", err)
		return Item{}, false
	}
	budget.Reserve(cost)
	q.Train.Pop()
	q.markIssued(it.UnitType, gs.Tick)
	slog.Info("training", "unitType", it.UnitType, "producer", producer.Tag)
	return it, true
}

// idleProducer picks the lowest-tagged ready producer with nothing queued.
func (p *Producer) idleProducer(gs model.GameState, batch *ipc.Batch) (model.Unit, bool) {
	var candidates []model.Unit
	for _, u := range gs.Units {
		if u.IsOwn() && p.kit.IsProducer(u.Type) && u.IsReady() && u.IsIdle() && !batch.Has(u.Tag) {
			candidates = append(candidates, u)
		}
	}
	if len(candidates) == 0 {
		return model.Unit{}, false
	}
	return slices.MinFunc(candidates, func(a, b model.Unit) int { return cmp.Compare(a.Tag, b.Tag) }), true
}

func (p *Producer) build(gs model.GameState, q *Queues, budget *Budget, batch *ipc.Batch) (Item, bool) {
	it, ok := q.Build.Head()
	if !ok {
		return Item{}, false
	}
	cost, ok := model.CostOf(it.UnitType)
	if !ok {
		slog.Warn("dropping build order with unknown cost", "unitType", it.UnitType)
		q.Build.Pop()
		return Item{}, false
	}
	if !budget.CanAfford(cost) {
		return Item{}, false
	}
	builder, ok := p.builders.ClaimBuilder(gs)
	if !ok {
		slog.Debug("no worker available to build", "unitType", it.UnitType)
		return Item{}, false
	}
	pos := p.placement(gs, it.UnitType)
	if err := batch.Add(ipc.Build(builder.Tag, it.Ability, it.UnitType, pos)); err != nil {
		slog.Error("build command dropped", "builder", builder.Tag, "error", err)
		return Item{}, false
	}
	budget.Reserve(cost)
	q.Build.Pop()
	q.markIssued(it.UnitType, gs.Tick)
	slog.Info("building", "unitType", it.UnitType, "builder", builder.Tag, "x", pos.X, "y", pos.Y)
	return it, true
}

// placement is a point near the main base, stepped around by how many of t
// already exist. The host snaps it to a legal spot.
func (p *Producer) placement(gs model.GameState, t model.UnitTypeID) model.Point {
	anchor := p.topology.StartLocation.Towards(p.topology.MapCenter, buildDistance)
	n := countWhere(gs.Units, func(u model.Unit) bool { return u.IsOwn() && u.Type == t })

	ring := float64(n/4 + 1)
	switch n % 4 {
	case 0:
		return anchor.Offset(buildStep*ring, 0)
	case 1:
		return anchor.Offset(0, buildStep*ring)
	case 2:
		return anchor.Offset(-buildStep*ring, 0)
	default:
		return anchor.Offset(0, -buildStep*ring)
	}
}

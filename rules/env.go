package rules

import (
	"slices"

	"github.com/nstehr/soy/model"
)

// issueCooldownTicks covers the gap between issuing an order and the host
// reporting it back on the unit.
const issueCooldownTicks = 4

// EconomyView is the slice of worker-economy state the rules may read.
type EconomyView struct {
	Free      int
	Bound     int
	Builders  int
	OpenSlots int
	Capacity  int
}

// RuleEnv wraps game state and exposes helper methods callable from expr expressions.
type RuleEnv struct {
	State   model.GameState
	Kit     model.RaceKit
	Economy EconomyView

	queues *Queues
}

func (e RuleEnv) Tick() int       { return e.State.Tick }
func (e RuleEnv) Minerals() int   { return e.State.Player.Minerals }
func (e RuleEnv) Vespene() int    { return e.State.Player.Vespene }
func (e RuleEnv) SupplyLeft() int { return e.State.Player.SupplyLeft() }
func (e RuleEnv) SupplyCap() int  { return e.State.Player.FoodCap }

func (e RuleEnv) FreeWorkers() int { return e.Economy.Free }
func (e RuleEnv) OpenSlots() int   { return e.Economy.OpenSlots }
func (e RuleEnv) Capacity() int    { return e.Economy.Capacity }

// RoleCount counts own units of a role, finished or not.
func (e RuleEnv) RoleCount(role string) int {
	types := roleTypes(e.Kit, role)
	return countWhere(e.State.Units, func(u model.Unit) bool {
		return u.IsOwn() && slices.Contains(types, u.Type)
	})
}

func (e RuleEnv) HasRole(role string) bool { return e.RoleCount(role) > 0 }

func (e RuleEnv) WorkerCount() int { return e.RoleCount(RoleWorker) }

// WorkersInProduction counts worker train orders already running on our
// producers, including every queued slot.
func (e RuleEnv) WorkersInProduction() int {
	n := 0
	for _, u := range e.State.Units {
		if !u.IsOwn() {
			continue
		}
		n += countWhere(u.Orders, func(o model.Order) bool { return o.Ability == e.Kit.TrainWorker })
	}
	return n
}

// Queued reports whether anything of role is waiting in a production queue.
func (e RuleEnv) Queued(role string) bool {
	if e.queues == nil {
		return false
	}
	return slices.ContainsFunc(roleTypes(e.Kit, role), e.queues.Queued)
}

// SupplyPending reports whether more supply is already on its way: queued,
// just issued, ordered on a unit, or under construction.
func (e RuleEnv) SupplyPending() bool {
	if e.Queued(RoleSupply) {
		return true
	}
	if e.queues != nil && e.queues.IssuedSince(e.Kit.Supply, e.State.Tick-issueCooldownTicks) {
		return true
	}
	return anyWhere(e.State.Units, func(u model.Unit) bool {
		if !u.IsOwn() {
			return false
		}
		if u.Type == e.Kit.Supply && !u.IsReady() {
			return true
		}
		return hasOrder(u, e.Kit.SupplyOrder)
	})
}

// CanAfford reports whether the current bank covers one unit of role.
func (e RuleEnv) CanAfford(role string) bool {
	types := roleTypes(e.Kit, role)
	if len(types) == 0 {
		return false
	}
	c, ok := model.CostOf(types[0])
	if !ok {
		return false
	}
	return NewBudget(e.State.Player).CanAfford(c)
}

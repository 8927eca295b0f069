package rules

import (
	"strings"

	"github.com/nstehr/soy/model"
)

// Logical role names usable from rule conditions.
const (
	RoleWorker   = "worker"
	RoleTownhall = "townhall"
	RoleSupply   = "supply"
	RoleProducer = "producer"
)

// roleTypes resolves a logical role to the concrete unit types of the race.
func roleTypes(kit model.RaceKit, role string) []model.UnitTypeID {
	switch strings.ToLower(role) {
	case RoleWorker:
		return []model.UnitTypeID{kit.Worker}
	case RoleTownhall:
		return kit.Townhalls
	case RoleSupply:
		return []model.UnitTypeID{kit.Supply}
	case RoleProducer:
		return kit.Producers
	}
	return nil
}

// countWhere counts items matching keep.
func countWhere[T any](items []T, keep func(T) bool) int {
	n := 0
	for _, item := range items {
		if keep(item) {
			n++
		}
	}
	return n
}

// anyWhere reports whether any item matches keep.
func anyWhere[T any](items []T, keep func(T) bool) bool {
	for _, item := range items {
		if keep(item) {
			return true
		}
	}
	return false
}

// hasOrder reports whether any of u's queued orders uses ability a.
func hasOrder(u model.Unit, a model.AbilityID) bool {
	return anyWhere(u.Orders, func(o model.Order) bool { return o.Ability == a })
}

package model

import (
	"fmt"
	"slices"
	"strings"
)

type Race string

const (
	RaceTerran  Race = "terran"
	RaceZerg    Race = "zerg"
	RaceProtoss Race = "protoss"
	RaceRandom  Race = "random"
)

// ParseRace accepts the race names the host and config use, case-insensitively.
func ParseRace(s string) (Race, error) {
	switch r := Race(strings.ToLower(strings.TrimSpace(s))); r {
	case RaceTerran, RaceZerg, RaceProtoss, RaceRandom:
		return r, nil
	case "":
		return RaceRandom, nil
	default:
		return "", fmt.Errorf("unknown race %q", s)
	}
}

// Ability ids (SC2 stable ids).
const (
	AbilitySmart              AbilityID = 1
	AbilityMove               AbilityID = 16
	AbilityHarvestGatherSCV   AbilityID = 295
	AbilityHarvestReturnSCV   AbilityID = 296
	AbilityHarvestGatherProbe AbilityID = 298
	AbilityHarvestReturnProbe AbilityID = 299
	AbilityBuildSupplyDepot   AbilityID = 319
	AbilityTrainSCV           AbilityID = 524
	AbilityBuildPylon         AbilityID = 881
	AbilityTrainProbe         AbilityID = 1006
	AbilityHarvestGatherDrone AbilityID = 1183
	AbilityHarvestReturnDrone AbilityID = 1184
	AbilityTrainDrone         AbilityID = 1342
	AbilityTrainOverlord      AbilityID = 1344
	AbilityHarvestGather      AbilityID = 3666 // generic, reported by some hosts
	AbilityHarvestReturn      AbilityID = 3667
	AbilityMoveGeneric        AbilityID = 3794
)

// Unit type ids (SC2 stable ids).
const (
	UnitCommandCenter     UnitTypeID = 18
	UnitSupplyDepot       UnitTypeID = 19
	UnitSCV               UnitTypeID = 45
	UnitNexus             UnitTypeID = 59
	UnitPylon             UnitTypeID = 60
	UnitProbe             UnitTypeID = 84
	UnitHatchery          UnitTypeID = 86
	UnitLair              UnitTypeID = 100
	UnitHive              UnitTypeID = 101
	UnitDrone             UnitTypeID = 104
	UnitOverlord          UnitTypeID = 106
	UnitPlanetaryFortress UnitTypeID = 130
	UnitOrbitalCommand    UnitTypeID = 132
	UnitLarva             UnitTypeID = 151
	UnitMineralField      UnitTypeID = 341
)

// Cost is the price of producing one unit or structure.
type Cost struct {
	Minerals int
	Vespene  int
	Supply   int
}

var costs = map[UnitTypeID]Cost{
	UnitSCV:         {Minerals: 50, Supply: 1},
	UnitProbe:       {Minerals: 50, Supply: 1},
	UnitDrone:       {Minerals: 50, Supply: 1},
	UnitSupplyDepot: {Minerals: 100},
	UnitPylon:       {Minerals: 100},
	UnitOverlord:    {Minerals: 100},
}

// CostOf returns the production cost of t and whether it is known.
func CostOf(t UnitTypeID) (Cost, bool) {
	c, ok := costs[t]
	return c, ok
}

// RaceKit bundles everything race-specific the economy and production need.
// It is selected once at startup and never changes for a session.
type RaceKit struct {
	Race      Race
	Worker    UnitTypeID
	Townhalls []UnitTypeID
	Gather    AbilityID
	Return    AbilityID

	TrainWorker AbilityID
	// Producers are the unit types that train workers: townhalls, or larva.
	Producers []UnitTypeID

	Supply      UnitTypeID
	SupplyOrder AbilityID
	// SupplyFromLarva is true when the supply unit is trained rather than
	// constructed by a worker.
	SupplyFromLarva bool
}

var kits = map[Race]RaceKit{
	RaceTerran: {
		Race:        RaceTerran,
		Worker:      UnitSCV,
		Townhalls:   []UnitTypeID{UnitCommandCenter, UnitOrbitalCommand, UnitPlanetaryFortress},
		Gather:      AbilityHarvestGatherSCV,
		Return:      AbilityHarvestReturnSCV,
		TrainWorker: AbilityTrainSCV,
		Producers:   []UnitTypeID{UnitCommandCenter, UnitOrbitalCommand, UnitPlanetaryFortress},
		Supply:      UnitSupplyDepot,
		SupplyOrder: AbilityBuildSupplyDepot,
	},
	RaceProtoss: {
		Race:        RaceProtoss,
		Worker:      UnitProbe,
		Townhalls:   []UnitTypeID{UnitNexus},
		Gather:      AbilityHarvestGatherProbe,
		Return:      AbilityHarvestReturnProbe,
		TrainWorker: AbilityTrainProbe,
		Producers:   []UnitTypeID{UnitNexus},
		Supply:      UnitPylon,
		SupplyOrder: AbilityBuildPylon,
	},
	RaceZerg: {
		Race:            RaceZerg,
		Worker:          UnitDrone,
		Townhalls:       []UnitTypeID{UnitHatchery, UnitLair, UnitHive},
		Gather:          AbilityHarvestGatherDrone,
		Return:          AbilityHarvestReturnDrone,
		TrainWorker:     AbilityTrainDrone,
		Producers:       []UnitTypeID{UnitLarva},
		Supply:          UnitOverlord,
		SupplyOrder:     AbilityTrainOverlord,
		SupplyFromLarva: true,
	},
}

// KitFor returns the kit for a concrete race. Random has no kit: the host
// reports the resolved race in its hello.
func KitFor(r Race) (RaceKit, error) {
	kit, ok := kits[r]
	if !ok {
		return RaceKit{}, fmt.Errorf("no race kit for %q", r)
	}
	return kit, nil
}

func (k RaceKit) IsWorker(t UnitTypeID) bool   { return t == k.Worker }
func (k RaceKit) IsTownhall(t UnitTypeID) bool { return slices.Contains(k.Townhalls, t) }
func (k RaceKit) IsProducer(t UnitTypeID) bool { return slices.Contains(k.Producers, t) }

// IsGather matches the race gather ability and the host's generic one.
func (k RaceKit) IsGather(a AbilityID) bool {
	return a == k.Gather || a == AbilityHarvestGather
}

// IsReturn matches the race return ability and the host's generic one.
func (k RaceKit) IsReturn(a AbilityID) bool {
	return a == k.Return || a == AbilityHarvestReturn
}

// IsMove matches both move ids hosts report for a plain move order.
func IsMove(a AbilityID) bool {
	return a == AbilityMove || a == AbilityMoveGeneric
}

// IsConstruction reports whether a is the worker build order for this race.
func (k RaceKit) IsConstruction(a AbilityID) bool {
	return !k.SupplyFromLarva && a == k.SupplyOrder
}

// TrainAbility returns the order that produces t, for unit types trained
// rather than built.
func (k RaceKit) TrainAbility(t UnitTypeID) (AbilityID, bool) {
	switch {
	case t == k.Worker:
		return k.TrainWorker, true
	case t == k.Supply && k.SupplyFromLarva:
		return k.SupplyOrder, true
	}
	return 0, false
}

package agent

import (
	"github.com/nstehr/soy/economy"
	"github.com/nstehr/soy/model"
)

const testDepot model.UnitTag = 1

// testExpansion is a main base at the origin with its minerals in a row
// eight units east.
func testExpansion(minerals ...model.UnitTag) model.Expansion {
	return model.Expansion{Location: model.Point{}, Resources: minerals}
}

// baseUnits returns a finished command center, the given mineral fields and
// idle SCVs tagged from 10 upward.
func baseUnits(minerals []model.UnitTag, workers int) []model.Unit {
	units := []model.Unit{{
		Tag:           testDepot,
		Type:          model.UnitCommandCenter,
		Alliance:      model.AllianceOwn,
		Radius:        2.75,
		BuildProgress: 1,
	}}
	for i, m := range minerals {
		units = append(units, model.Unit{
			Tag:      m,
			Type:     model.UnitMineralField,
			Alliance: model.AllianceNeutral,
			Pos:      model.Point{X: 8, Y: float64(i) * 2},
			Radius:   1.125,
		})
	}
	for i := range workers {
		units = append(units, model.Unit{
			Tag:           model.UnitTag(10 + i),
			Type:          model.UnitSCV,
			Alliance:      model.AllianceOwn,
			Pos:           model.Point{X: 3},
			Radius:        0.375,
			Step:          0.5,
			BuildProgress: 1,
		})
	}
	return units
}

// baseGameState is an opening snapshot: 50 minerals and 12/15 supply.
func baseGameState(tick int, minerals []model.UnitTag, workers int) model.GameState {
	return model.GameState{
		Tick: tick,
		Player: model.Player{
			Minerals:    50,
			FoodUsed:    workers,
			FoodCap:     15,
			FoodWorkers: workers,
		},
		Units: baseUnits(minerals, workers),
	}
}

// newEconomy returns an engine that has already seen gs.
func newEconomy(gs model.GameState, minerals ...model.UnitTag) *economy.Engine {
	kit, _ := model.KitFor(model.RaceTerran)
	eng := economy.NewEngine(kit, &model.Topology{
		Expansions: []model.Expansion{testExpansion(minerals...)},
	})
	eng.Reconcile(gs)
	return eng
}

func destroyed(tag model.UnitTag, a model.Alliance) model.Event {
	return model.Event{Kind: model.EventUnitDestroyed, Tag: tag, Alliance: a}
}

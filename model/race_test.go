package model

import "testing"

func TestKitAbilityPairs(t *testing.T) {
	tests := []struct {
		race   Race
		gather AbilityID
		ret    AbilityID
		worker UnitTypeID
	}{
		{RaceTerran, AbilityHarvestGatherSCV, AbilityHarvestReturnSCV, UnitSCV},
		{RaceProtoss, AbilityHarvestGatherProbe, AbilityHarvestReturnProbe, UnitProbe},
		{RaceZerg, AbilityHarvestGatherDrone, AbilityHarvestReturnDrone, UnitDrone},
	}
	for _, tc := range tests {
		kit, err := KitFor(tc.race)
		if err != nil {
			t.Fatalf("KitFor(%s): %v", tc.race, err)
		}
		if kit.Gather != tc.gather || kit.Return != tc.ret {
			t.Errorf("%s: abilities = (%d, %d), want (%d, %d)", tc.race, kit.Gather, kit.Return, tc.gather, tc.ret)
		}
		if !kit.IsWorker(tc.worker) {
			t.Errorf("%s: %d should be a worker", tc.race, tc.worker)
		}
		if !kit.IsGather(AbilityHarvestGather) || !kit.IsReturn(AbilityHarvestReturn) {
			t.Errorf("%s: generic harvest abilities not recognised", tc.race)
		}
	}
}

func TestKitForRandom(t *testing.T) {
	if _, err := KitFor(RaceRandom); err == nil {
		t.Error("expected error for random race")
	}
}

func TestParseRace(t *testing.T) {
	tests := []struct {
		in      string
		want    Race
		wantErr bool
	}{
		{"Terran", RaceTerran, false},
		{" zerg ", RaceZerg, false},
		{"PROTOSS", RaceProtoss, false},
		{"", RaceRandom, false},
		{"random", RaceRandom, false},
		{"xel'naga", "", true},
	}
	for _, tc := range tests {
		got, err := ParseRace(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseRace(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseRace(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestZergTrainsSupply(t *testing.T) {
	kit, _ := KitFor(RaceZerg)
	if a, ok := kit.TrainAbility(UnitOverlord); !ok || a != AbilityTrainOverlord {
		t.Errorf("TrainAbility(Overlord) = (%d, %v)", a, ok)
	}
	if kit.IsConstruction(AbilityTrainOverlord) {
		t.Error("overlord is trained, not constructed")
	}

	terran, _ := KitFor(RaceTerran)
	if _, ok := terran.TrainAbility(UnitSupplyDepot); ok {
		t.Error("supply depot should not be trainable")
	}
	if !terran.IsConstruction(AbilityBuildSupplyDepot) {
		t.Error("supply depot should be a construction order")
	}
}

package economy

import (
	"slices"
	"testing"

	"github.com/nstehr/soy/model"
)

func TestAllocate_FillsSingleResource(t *testing.T) {
	w := newWorld(100)
	w.addWorkers(10, 11)
	e := w.engine()

	got := e.Allocate()

	if len(got) != 2 {
		t.Fatalf("assignments = %d, want 2", len(got))
	}
	if n := e.Ledger().AssignedCount(100); n != 2 {
		t.Errorf("assigned to 100 = %d, want 2", n)
	}
	if free := e.Ledger().FreeWorkers(); len(free) != 0 {
		t.Errorf("free = %v, want empty", free)
	}
	for _, a := range got {
		if a.Depot != testDepot {
			t.Errorf("worker %d bound to depot %d, want %d", a.Worker, a.Depot, testDepot)
		}
	}
}

func TestAllocate_LeavesSurplusFree(t *testing.T) {
	w := newWorld(100)
	w.addWorkers(10, 11, 12)
	e := w.engine()

	e.Allocate()

	if !slices.Equal(e.Ledger().FreeWorkers(), []model.UnitTag{12}) {
		t.Errorf("free = %v, want [12]", e.Ledger().FreeWorkers())
	}
	if n := e.Ledger().AssignedCount(100); n != ResourceCapacity {
		t.Errorf("assigned = %d, want %d", n, ResourceCapacity)
	}
	if again := e.Allocate(); len(again) != 0 {
		t.Errorf("saturated pass assigned %v", again)
	}
	if err := e.Ledger().Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestAllocate_Deterministic(t *testing.T) {
	// Topology lists resources out of order; workers are added out of order.
	topo := &model.Topology{Expansions: []model.Expansion{
		{Resources: []model.UnitTag{101, 100}},
	}}
	l := NewLedger()
	l.RecordBase(testDepot, 0)
	for _, w := range []model.UnitTag{12, 10, 11} {
		l.AddFree(w)
	}

	got := Allocate(l, topo)

	want := []Assignment{
		{Worker: 10, Binding: Binding{Resource: 100, Depot: testDepot}},
		{Worker: 11, Binding: Binding{Resource: 100, Depot: testDepot}},
		{Worker: 12, Binding: Binding{Resource: 101, Depot: testDepot}},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Allocate = %v\nwant %v", got, want)
	}
}

func TestOpenSlots_ByExpansionIndex(t *testing.T) {
	topo := &model.Topology{Expansions: []model.Expansion{
		{Resources: []model.UnitTag{100}},
		{Resources: []model.UnitTag{200}},
		{Resources: []model.UnitTag{300}},
	}}
	l := NewLedger()
	l.RecordBase(2, 1)
	l.RecordBase(1, 0)
	l.AddFree(10)
	_ = l.Bind(10, Binding{Resource: 100, Depot: 1})

	want := []Binding{
		{Resource: 100, Depot: 1},
		{Resource: 200, Depot: 2},
		{Resource: 200, Depot: 2},
	}
	if got := OpenSlots(l, topo); !slices.Equal(got, want) {
		t.Errorf("OpenSlots = %v, want %v", got, want)
	}
}

func TestAllocate_NoBases(t *testing.T) {
	l := NewLedger()
	l.AddFree(10)
	topo := &model.Topology{Expansions: []model.Expansion{{Resources: []model.UnitTag{100}}}}

	if got := Allocate(l, topo); got != nil {
		t.Errorf("Allocate without bases = %v", got)
	}
	if !l.IsFree(10) {
		t.Error("worker should stay free")
	}
}

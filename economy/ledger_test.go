package economy

import (
	"errors"
	"slices"
	"testing"

	"github.com/nstehr/soy/model"
)

func TestBind_Capacity(t *testing.T) {
	l := NewLedger()
	for _, w := range []model.UnitTag{10, 11, 12} {
		l.AddFree(w)
	}
	b := Binding{Resource: 100, Depot: testDepot}
	if err := l.Bind(10, b); err != nil {
		t.Fatalf("first bind: %v", err)
	}
	if err := l.Bind(11, b); err != nil {
		t.Fatalf("second bind: %v", err)
	}
	if err := l.Bind(12, b); !errors.Is(err, ErrCapacity) {
		t.Errorf("third bind error = %v, want ErrCapacity", err)
	}
	if !l.IsFree(12) {
		t.Error("rejected worker should stay free")
	}
	if got := l.AssignedCount(100); got != ResourceCapacity {
		t.Errorf("assigned = %d, want %d", got, ResourceCapacity)
	}
	if err := l.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestBind_AlreadyBound(t *testing.T) {
	l := NewLedger()
	l.AddFree(10)
	if err := l.Bind(10, Binding{Resource: 100, Depot: testDepot}); err != nil {
		t.Fatal(err)
	}
	err := l.Bind(10, Binding{Resource: 101, Depot: testDepot})
	if !errors.Is(err, ErrAlreadyBound) {
		t.Fatalf("rebind error = %v, want ErrAlreadyBound", err)
	}
	if b, _ := l.Binding(10); b.Resource != 100 {
		t.Errorf("binding changed to %d", b.Resource)
	}
	if l.AssignedCount(101) != 0 {
		t.Error("failed bind leaked into resource 101")
	}
}

func TestAddFree_DropsStaleBinding(t *testing.T) {
	l := NewLedger()
	l.AddFree(10)
	_ = l.Bind(10, Binding{Resource: 100, Depot: testDepot})

	l.AddFree(10)

	if _, ok := l.Binding(10); ok {
		t.Error("stale binding kept")
	}
	if l.AssignedCount(100) != 0 {
		t.Error("stale worker still assigned")
	}
	if err := l.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestReleaseResource(t *testing.T) {
	l := NewLedger()
	l.AddFree(11)
	l.AddFree(10)
	_ = l.Bind(11, Binding{Resource: 100, Depot: testDepot})
	_ = l.Bind(10, Binding{Resource: 100, Depot: testDepot})

	got := l.ReleaseResource(100)

	if want := []model.UnitTag{10, 11}; !slices.Equal(got, want) {
		t.Errorf("released = %v, want %v", got, want)
	}
	if !slices.Equal(l.FreeWorkers(), []model.UnitTag{10, 11}) {
		t.Errorf("free = %v", l.FreeWorkers())
	}
	if len(l.BoundWorkers()) != 0 {
		t.Errorf("bound = %v, want none", l.BoundWorkers())
	}
	if _, ok := l.assigned[100]; ok {
		t.Error("resource still present in assigned map")
	}
	if again := l.ReleaseResource(100); len(again) != 0 {
		t.Errorf("second release returned %v", again)
	}
}

func TestReleaseDepot(t *testing.T) {
	l := NewLedger()
	for _, w := range []model.UnitTag{10, 11, 12} {
		l.AddFree(w)
	}
	_ = l.Bind(10, Binding{Resource: 100, Depot: testDepot})
	_ = l.Bind(11, Binding{Resource: 999, Depot: testDepot})
	_ = l.Bind(12, Binding{Resource: 200, Depot: 2})

	got := l.ReleaseDepot(testDepot)

	if want := []model.UnitTag{10, 11}; !slices.Equal(got, want) {
		t.Errorf("released = %v, want %v", got, want)
	}
	if !slices.Equal(l.BoundWorkers(), []model.UnitTag{12}) {
		t.Errorf("bound = %v, want [12]", l.BoundWorkers())
	}
	if l.AssignedCount(999) != 0 {
		t.Error("released worker still assigned to 999")
	}
	if err := l.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestRemoveWorker(t *testing.T) {
	l := NewLedger()
	l.AddFree(10)
	l.AddFree(11)
	l.AddFree(12)
	_ = l.Bind(10, Binding{Resource: 100, Depot: testDepot})
	l.ClaimBuilder(12, 5)

	tests := []struct {
		tag  model.UnitTag
		want Removed
	}{
		{10, RemovedBound},
		{11, RemovedFree},
		{12, RemovedBuilder},
		{99, RemovedNone},
		{10, RemovedNone},
	}
	for _, tt := range tests {
		if got := l.RemoveWorker(tt.tag); got != tt.want {
			t.Errorf("RemoveWorker(%d) = %v, want %v", tt.tag, got, tt.want)
		}
	}
	if l.AssignedCount(100) != 0 {
		t.Error("destroyed worker still assigned")
	}
	if s := l.Stats(); s != (Stats{}) {
		t.Errorf("stats = %+v, want empty", s)
	}
}

func TestLedger_ClaimBuilder(t *testing.T) {
	l := NewLedger()
	l.AddFree(10)
	_ = l.Bind(10, Binding{Resource: 100, Depot: testDepot})

	l.ClaimBuilder(10, 42)

	if _, ok := l.Binding(10); ok || l.IsFree(10) {
		t.Error("builder still in the economy")
	}
	if since, ok := l.BuilderSince(10); !ok || since != 42 {
		t.Errorf("BuilderSince = %d, %v; want 42, true", since, ok)
	}
	if l.AssignedCount(100) != 0 {
		t.Error("builder still counted against its resource")
	}
	if err := l.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	l.ReleaseBuilder(10)
	if !l.IsFree(10) || l.IsBuilder(10) {
		t.Error("released builder should be free")
	}
	l.ReleaseBuilder(10)
	if !l.IsFree(10) {
		t.Error("releasing a non-builder must not change it")
	}
}

func TestBases_Order(t *testing.T) {
	l := NewLedger()
	l.RecordBase(9, 2)
	l.RecordBase(3, 0)
	l.RecordBase(7, 2)

	want := []Base{{3, 0}, {7, 2}, {9, 2}}
	if got := l.Bases(); !slices.Equal(got, want) {
		t.Errorf("Bases = %v, want %v", got, want)
	}
	if idx, ok := l.RemoveBase(7); !ok || idx != 2 {
		t.Errorf("RemoveBase = %d, %v", idx, ok)
	}
	if _, ok := l.RemoveBase(7); ok {
		t.Error("second RemoveBase should miss")
	}
}

func TestValidate_ReportsEveryViolation(t *testing.T) {
	l := NewLedger()
	l.AddFree(10)
	_ = l.Bind(10, Binding{Resource: 100, Depot: testDepot})

	// Corrupt the tables directly: free and bound at once, and a mirror
	// entry with no binding behind it.
	l.free[10] = struct{}{}
	l.assigned[101] = map[model.UnitTag]struct{}{11: {}}

	err := l.Validate()
	if err == nil {
		t.Fatal("Validate accepted a corrupt ledger")
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		t.Fatalf("error %T does not carry a list", err)
	}
	if n := len(joined.Unwrap()); n != 2 {
		t.Errorf("violations = %d, want 2: %v", n, err)
	}
}

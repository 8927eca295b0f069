package economy

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/nstehr/soy/model"
)

// ResourceCapacity is how many workers may share one resource node.
const ResourceCapacity = 2

var (
	ErrCapacity     = errors.New("resource at capacity")
	ErrAlreadyBound = errors.New("worker already bound")
)

// Binding ties a worker to the resource it mines and the depot it returns to.
type Binding struct {
	Resource model.UnitTag `json:"resource"`
	Depot    model.UnitTag `json:"depot"`
}

// Base is a completed depot and the expansion it sits on.
type Base struct {
	Depot model.UnitTag
	Index int
}

// Removed says which table a destroyed worker was found in.
type Removed int

const (
	RemovedNone Removed = iota
	RemovedBound
	RemovedFree
	RemovedBuilder
)

// Ledger is the single source of truth for who works where. The free set,
// the binding table and the per-resource mirror are only ever changed
// together, so they cannot drift apart. A Ledger is owned by one Engine and
// is not safe for concurrent use.
type Ledger struct {
	free     map[model.UnitTag]struct{}
	bindings map[model.UnitTag]Binding
	assigned map[model.UnitTag]map[model.UnitTag]struct{}
	bases    map[model.UnitTag]int
	builders map[model.UnitTag]int // worker → tick it was claimed
}

func NewLedger() *Ledger {
	return &Ledger{
		free:     make(map[model.UnitTag]struct{}),
		bindings: make(map[model.UnitTag]Binding),
		assigned: make(map[model.UnitTag]map[model.UnitTag]struct{}),
		bases:    make(map[model.UnitTag]int),
		builders: make(map[model.UnitTag]int),
	}
}

// AddFree puts a worker into the free set. A worker that is still bound is
// a reconciler defect; the binding is treated as stale and dropped.
func (l *Ledger) AddFree(w model.UnitTag) {
	if b, ok := l.bindings[w]; ok {
		slog.Error("bound worker re-entered free set, dropping stale binding",
			"worker", w, "resource", b.Resource, "depot", b.Depot)
		l.unbind(w)
	}
	delete(l.builders, w)
	l.free[w] = struct{}{}
}

func (l *Ledger) IsFree(w model.UnitTag) bool {
	_, ok := l.free[w]
	return ok
}

// FreeWorkers returns the free set in ascending tag order.
func (l *Ledger) FreeWorkers() []model.UnitTag {
	return slices.Sorted(maps.Keys(l.free))
}

func (l *Ledger) Binding(w model.UnitTag) (Binding, bool) {
	b, ok := l.bindings[w]
	return b, ok
}

// BoundWorkers returns every bound worker in ascending tag order.
func (l *Ledger) BoundWorkers() []model.UnitTag {
	return slices.Sorted(maps.Keys(l.bindings))
}

// Assigned returns the workers bound to resource r in ascending tag order.
func (l *Ledger) Assigned(r model.UnitTag) []model.UnitTag {
	return slices.Sorted(maps.Keys(l.assigned[r]))
}

func (l *Ledger) AssignedCount(r model.UnitTag) int {
	return len(l.assigned[r])
}

// Bind records w → b, removing w from the free set.
func (l *Ledger) Bind(w model.UnitTag, b Binding) error {
	if _, ok := l.bindings[w]; ok {
		return fmt.Errorf("%w: %d", ErrAlreadyBound, w)
	}
	if len(l.assigned[b.Resource]) >= ResourceCapacity {
		return fmt.Errorf("%w: resource %d", ErrCapacity, b.Resource)
	}
	delete(l.free, w)
	l.bindings[w] = b
	ws, ok := l.assigned[b.Resource]
	if !ok {
		ws = make(map[model.UnitTag]struct{}, ResourceCapacity)
		l.assigned[b.Resource] = ws
	}
	ws[w] = struct{}{}
	return nil
}

// unbind erases w's binding and its membership in the resource mirror.
func (l *Ledger) unbind(w model.UnitTag) (Binding, bool) {
	b, ok := l.bindings[w]
	if !ok {
		return Binding{}, false
	}
	delete(l.bindings, w)
	if ws, ok := l.assigned[b.Resource]; ok {
		delete(ws, w)
		if len(ws) == 0 {
			delete(l.assigned, b.Resource)
		}
	}
	return b, true
}

// RemoveWorker forgets a worker entirely. Absent workers are a no-op.
func (l *Ledger) RemoveWorker(w model.UnitTag) Removed {
	if _, ok := l.unbind(w); ok {
		return RemovedBound
	}
	if _, ok := l.free[w]; ok {
		delete(l.free, w)
		return RemovedFree
	}
	if _, ok := l.builders[w]; ok {
		delete(l.builders, w)
		return RemovedBuilder
	}
	return RemovedNone
}

// ReleaseResource returns every worker bound to r to the free set and
// removes r from the mirror. It returns the released workers.
func (l *Ledger) ReleaseResource(r model.UnitTag) []model.UnitTag {
	released := l.Assigned(r)
	for _, w := range released {
		delete(l.bindings, w)
		l.free[w] = struct{}{}
	}
	delete(l.assigned, r)
	return released
}

// ReleaseWorker returns one bound worker to the free set.
func (l *Ledger) ReleaseWorker(w model.UnitTag) (Binding, bool) {
	b, ok := l.unbind(w)
	if ok {
		l.free[w] = struct{}{}
	}
	return b, ok
}

// ReleaseDepot returns every worker that delivers to depot to the free set,
// whatever resource it mines. It returns the released workers.
func (l *Ledger) ReleaseDepot(depot model.UnitTag) []model.UnitTag {
	var released []model.UnitTag
	for _, w := range l.BoundWorkers() {
		if l.bindings[w].Depot == depot {
			l.ReleaseWorker(w)
			released = append(released, w)
		}
	}
	return released
}

// RecordBase remembers which expansion a completed depot occupies.
func (l *Ledger) RecordBase(depot model.UnitTag, index int) {
	l.bases[depot] = index
}

func (l *Ledger) BaseIndex(depot model.UnitTag) (int, bool) {
	i, ok := l.bases[depot]
	return i, ok
}

// RemoveBase drops a depot and returns the expansion it anchored.
func (l *Ledger) RemoveBase(depot model.UnitTag) (int, bool) {
	i, ok := l.bases[depot]
	if ok {
		delete(l.bases, depot)
	}
	return i, ok
}

// Bases returns every recorded depot ordered by expansion index, then tag.
func (l *Ledger) Bases() []Base {
	out := make([]Base, 0, len(l.bases))
	for d, i := range l.bases {
		out = append(out, Base{Depot: d, Index: i})
	}
	slices.SortFunc(out, func(a, b Base) int {
		if c := cmp.Compare(a.Index, b.Index); c != 0 {
			return c
		}
		return cmp.Compare(a.Depot, b.Depot)
	})
	return out
}

// ClaimBuilder detaches w from the economy so production can use it.
func (l *Ledger) ClaimBuilder(w model.UnitTag, tick int) {
	l.unbind(w)
	delete(l.free, w)
	l.builders[w] = tick
}

func (l *Ledger) IsBuilder(w model.UnitTag) bool {
	_, ok := l.builders[w]
	return ok
}

// BuilderSince returns the tick at which w was claimed as a builder.
func (l *Ledger) BuilderSince(w model.UnitTag) (int, bool) {
	t, ok := l.builders[w]
	return t, ok
}

func (l *Ledger) Builders() []model.UnitTag {
	return slices.Sorted(maps.Keys(l.builders))
}

// ReleaseBuilder hands a builder back to the free set.
func (l *Ledger) ReleaseBuilder(w model.UnitTag) {
	if _, ok := l.builders[w]; !ok {
		return
	}
	delete(l.builders, w)
	l.free[w] = struct{}{}
}

// Stats is a point-in-time count of the ledger's tables.
type Stats struct {
	Free     int `json:"free"`
	Bound    int `json:"bound"`
	Builders int `json:"builders"`
	Bases    int `json:"bases"`
}

func (l *Ledger) Stats() Stats {
	return Stats{
		Free:     len(l.free),
		Bound:    len(l.bindings),
		Builders: len(l.builders),
		Bases:    len(l.bases),
	}
}

// Validate checks every table invariant and reports all violations.
func (l *Ledger) Validate() error {
	var errs []error
	for w := range l.free {
		if _, ok := l.bindings[w]; ok {
			errs = append(errs, fmt.Errorf("worker %d is both free and bound", w))
		}
		if _, ok := l.builders[w]; ok {
			errs = append(errs, fmt.Errorf("worker %d is both free and a builder", w))
		}
	}
	for w, b := range l.bindings {
		if _, ok := l.builders[w]; ok {
			errs = append(errs, fmt.Errorf("worker %d is both bound and a builder", w))
		}
		if _, ok := l.assigned[b.Resource][w]; !ok {
			errs = append(errs, fmt.Errorf("worker %d bound to resource %d but missing from its assigned set", w, b.Resource))
		}
	}
	for r, ws := range l.assigned {
		if len(ws) > ResourceCapacity {
			errs = append(errs, fmt.Errorf("resource %d has %d workers, capacity %d", r, len(ws), ResourceCapacity))
		}
		for w := range ws {
			if b, ok := l.bindings[w]; !ok || b.Resource != r {
				errs = append(errs, fmt.Errorf("resource %d lists worker %d without a matching binding", r, w))
			}
		}
	}
	return errors.Join(errs...)
}

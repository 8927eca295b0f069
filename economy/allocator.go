package economy

import (
	"log/slog"
	"slices"

	"github.com/nstehr/soy/model"
)

// Assignment is one binding created by an allocator pass.
type Assignment struct {
	Worker model.UnitTag
	Binding
}

// OpenSlots lists every unfilled (resource, depot) slot. Depots are visited
// in ascending expansion index and resources in ascending tag, so the same
// ledger and topology always yield the same slots.
func OpenSlots(l *Ledger, topo *model.Topology) []Binding {
	var slots []Binding
	for _, base := range l.Bases() {
		exp, ok := topo.Expansion(base.Index)
		if !ok {
			continue
		}
		resources := slices.Clone(exp.Resources)
		slices.Sort(resources)
		for _, r := range resources {
			for range max(0, ResourceCapacity-l.AssignedCount(r)) {
				slots = append(slots, Binding{Resource: r, Depot: base.Depot})
			}
		}
	}
	return slots
}

// Allocate matches free workers, in ascending tag order, against open slots
// until one side runs out. Workers left over stay free for the next tick.
// It only books bindings; no commands are issued.
func Allocate(l *Ledger, topo *model.Topology) []Assignment {
	slots := OpenSlots(l, topo)
	if len(slots) == 0 {
		return nil
	}
	free := l.FreeWorkers()
	n := min(len(slots), len(free))

	out := make([]Assignment, 0, n)
	for i := range n {
		w, slot := free[i], slots[i]
		if stale, ok := l.Binding(w); ok {
			slog.Error("free worker already bound, dropping stale binding",
				"worker", w, "resource", stale.Resource)
			l.unbind(w)
		}
		if err := l.Bind(w, slot); err != nil {
			slog.Error("allocation failed", "worker", w, "resource", slot.Resource, "error", err)
			continue
		}
		out = append(out, Assignment{Worker: w, Binding: slot})
	}
	return out
}

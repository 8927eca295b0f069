package agent

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/nstehr/soy/economy"
	"github.com/nstehr/soy/model"
)

// EventKind identifies an economy alert.
type EventKind string

const (
	EventDepotLost       EventKind = "depot_lost"
	EventWorkersLost     EventKind = "workers_lost"
	EventSaturated       EventKind = "saturated"
	EventIdleSurplus     EventKind = "idle_surplus"
	EventBaseEstablished EventKind = "base_established"
)

// Event is a significant economy change detected by diffing consecutive
// ticks. Events are logged and journaled; nothing reacts to them yet.
type Event struct {
	Kind   EventKind
	Tick   int
	Detail string
}

func (e Event) String() string { return fmt.Sprintf("%s: %s", e.Kind, e.Detail) }

// surplusThreshold is how many free workers with nowhere to mine count as
// a surplus worth reporting.
const surplusThreshold = 4

// surplusCooldownTicks is the minimum gap between idle_surplus events.
const surplusCooldownTicks = 200

// stateSnapshot captures the diffable fields from one tick.
type stateSnapshot struct {
	depots    map[model.UnitTag]int // depot → expansion index
	workers   int
	free      int
	openSlots int
	capacity  int

	// Carried forward so the cooldown survives across snapshots.
	lastSurplusTick int
}

func takeSnapshot(eng *economy.Engine) stateSnapshot {
	l := eng.Ledger()
	stats := l.Stats()
	snap := stateSnapshot{
		depots:    make(map[model.UnitTag]int, stats.Bases),
		workers:   stats.Free + stats.Bound + stats.Builders,
		free:      stats.Free,
		openSlots: eng.OpenSlots(),
		capacity:  eng.Capacity(),
	}
	for _, b := range l.Bases() {
		snap.depots[b.Depot] = b.Index
	}
	return snap
}

// detectEvents compares the engine's state against the previous snapshot
// and returns any triggered events plus the new snapshot. No events are
// reported on the first tick.
func detectEvents(tick int, eng *economy.Engine, prev *stateSnapshot) ([]Event, stateSnapshot) {
	cur := takeSnapshot(eng)
	if prev == nil {
		return nil, cur
	}
	cur.lastSurplusTick = prev.lastSurplusTick

	var events []Event

	// 1. depot_lost / base_established: diff the recorded bases.
	for _, d := range slices.Sorted(maps.Keys(prev.depots)) {
		if _, ok := cur.depots[d]; !ok {
			events = append(events, Event{
				Kind:   EventDepotLost,
				Tick:   tick,
				Detail: fmt.Sprintf("depot %d at expansion %d destroyed", d, prev.depots[d]),
			})
		}
	}
	for _, d := range slices.Sorted(maps.Keys(cur.depots)) {
		if _, ok := prev.depots[d]; !ok {
			events = append(events, Event{
				Kind:   EventBaseEstablished,
				Tick:   tick,
				Detail: fmt.Sprintf("depot %d now mining expansion %d", d, cur.depots[d]),
			})
		}
	}

	// 2. workers_lost: the whole workforce is gone.
	if prev.workers > 0 && cur.workers == 0 {
		events = append(events, Event{
			Kind:   EventWorkersLost,
			Tick:   tick,
			Detail: fmt.Sprintf("all %d workers lost", prev.workers),
		})
	}

	// 3. saturated: the last open slot was just filled.
	if prev.openSlots > 0 && cur.openSlots == 0 && cur.capacity > 0 {
		events = append(events, Event{
			Kind:   EventSaturated,
			Tick:   tick,
			Detail: fmt.Sprintf("all %d mining slots filled", cur.capacity),
		})
	}

	// 4. idle_surplus: workers with nothing to mine, rate limited.
	if cur.free >= surplusThreshold && cur.openSlots == 0 &&
		(cur.lastSurplusTick == 0 || tick-cur.lastSurplusTick >= surplusCooldownTicks) {
		events = append(events, Event{
			Kind:   EventIdleSurplus,
			Tick:   tick,
			Detail: fmt.Sprintf("%d free workers and no open slots", cur.free),
		})
		cur.lastSurplusTick = tick
	}

	return events, cur
}

// formatEvents renders events as journal lines.
func formatEvents(events []Event) []string {
	if len(events) == 0 {
		return nil
	}
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.String()
	}
	return out
}

// summarize is a one-line economy digest for throttled diagnostics.
func summarize(eng *economy.Engine) string {
	stats := eng.Ledger().Stats()
	var b strings.Builder
	fmt.Fprintf(&b, "bases=%d bound=%d/%d free=%d builders=%d",
		stats.Bases, stats.Bound, eng.Capacity(), stats.Free, stats.Builders)
	return b.String()
}

package rules

import (
	"slices"

	"github.com/nstehr/soy/model"
)

// Item is one pending production order.
type Item struct {
	UnitType model.UnitTypeID `json:"unitType"`
	Ability  model.AbilityID  `json:"ability"`
}

// Queue is a FIFO of production items. Only the head is ever issued, so an
// unaffordable head holds everything behind it.
type Queue struct {
	items []Item
}

func (q *Queue) PushBack(it Item) { q.items = append(q.items, it) }

// PushFront jumps the queue; used for supply, which unblocks everything else.
func (q *Queue) PushFront(it Item) { q.items = slices.Insert(q.items, 0, it) }

func (q *Queue) Head() (Item, bool) {
	if len(q.items) == 0 {
		return Item{}, false
	}
	return q.items[0], true
}

func (q *Queue) Pop() {
	if len(q.items) > 0 {
		q.items = q.items[1:]
	}
}

func (q *Queue) Contains(t model.UnitTypeID) bool {
	return slices.ContainsFunc(q.items, func(it Item) bool { return it.UnitType == t })
}

func (q *Queue) Len() int { return len(q.items) }

// Items returns a copy of the pending items, head first.
func (q *Queue) Items() []Item { return slices.Clone(q.items) }

// Queues is the production state carried across ticks: what is waiting to
// be trained or built, and when each unit type was last issued.
type Queues struct {
	Train  Queue
	Build  Queue
	issued map[model.UnitTypeID]int
}

func NewQueues() *Queues {
	return &Queues{issued: make(map[model.UnitTypeID]int)}
}

func (q *Queues) Len() int { return q.Train.Len() + q.Build.Len() }

// Queued reports whether t is waiting in either queue.
func (q *Queues) Queued(t model.UnitTypeID) bool {
	return q.Train.Contains(t) || q.Build.Contains(t)
}

func (q *Queues) markIssued(t model.UnitTypeID, tick int) { q.issued[t] = tick }

// IssuedSince reports whether t was issued at or after tick.
func (q *Queues) IssuedSince(t model.UnitTypeID, tick int) bool {
	last, ok := q.issued[t]
	return ok && last >= tick
}

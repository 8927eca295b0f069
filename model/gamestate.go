package model

// UnitTag is the host's stable identity for a unit, structure or resource.
type UnitTag uint64

// UnitTypeID and AbilityID use the host's numeric ids (SC2 stable ids).
type UnitTypeID uint32
type AbilityID uint32

// Alliance classifies who owns an entity relative to our player.
type Alliance string

const (
	AllianceOwn     Alliance = "own"
	AllianceNeutral Alliance = "neutral"
	AllianceEnemy   Alliance = "enemy"
)

// GameState is the per-tick snapshot sent by the host. Nothing in it is
// cached across ticks; positions and orders are re-read every step.
type GameState struct {
	Tick       int         `json:"tick"`
	Player     Player      `json:"player"`
	Units      []Unit      `json:"units"`
	Events     []Event     `json:"events"`
	Expansions []Expansion `json:"expansions,omitempty"` // optional topology refresh
}

type Player struct {
	Minerals    int `json:"minerals"`
	Vespene     int `json:"vespene"`
	FoodUsed    int `json:"foodUsed"`
	FoodCap     int `json:"foodCap"`
	FoodWorkers int `json:"foodWorkers"`
}

// SupplyLeft is the remaining supply before the cap blocks training.
func (p Player) SupplyLeft() int { return p.FoodCap - p.FoodUsed }

type Unit struct {
	Tag           UnitTag    `json:"tag"`
	Type          UnitTypeID `json:"type"`
	Alliance      Alliance   `json:"alliance"`
	Pos           Point      `json:"pos"`
	Radius        float64    `json:"radius"`
	Step          float64    `json:"step"` // distance travelled per game step
	Orders        []Order    `json:"orders"`
	Carrying      bool       `json:"carrying"`
	BuildProgress float64    `json:"buildProgress"`
}

// Order is one entry of a unit's order queue. Exactly one of TargetTag and
// TargetPos is set for targeted abilities; neither for quick casts.
type Order struct {
	Ability   AbilityID `json:"ability"`
	TargetTag UnitTag   `json:"targetTag,omitempty"`
	TargetPos *Point    `json:"targetPos,omitempty"`
}

// CurrentOrder returns the order the unit is executing, if any.
func (u Unit) CurrentOrder() (Order, bool) {
	if len(u.Orders) == 0 {
		return Order{}, false
	}
	return u.Orders[0], true
}

// IsIdle reports whether the unit has no orders.
func (u Unit) IsIdle() bool { return len(u.Orders) == 0 }

// IsReady reports whether a structure has finished construction.
func (u Unit) IsReady() bool { return u.BuildProgress >= 1 }

func (u Unit) IsOwn() bool { return u.Alliance == AllianceOwn }

// EventKind identifies a lifecycle event delivered alongside a snapshot.
type EventKind string

const (
	EventUnitCreated          EventKind = "unit_created"
	EventConstructionComplete EventKind = "construction_complete"
	EventUnitDestroyed        EventKind = "unit_destroyed"
)

type Event struct {
	Kind     EventKind `json:"kind"`
	Tag      UnitTag   `json:"tag"`
	Alliance Alliance  `json:"alliance,omitempty"` // only for unit_destroyed
}

// UnitIndex maps tags to units for one snapshot.
type UnitIndex map[UnitTag]Unit

// Index builds a tag lookup over every unit in the snapshot.
func (gs GameState) Index() UnitIndex {
	idx := make(UnitIndex, len(gs.Units))
	for _, u := range gs.Units {
		idx[u.Tag] = u
	}
	return idx
}

// Lookup returns the unit with the given tag, if visible this tick.
func (idx UnitIndex) Lookup(tag UnitTag) (Unit, bool) {
	u, ok := idx[tag]
	return u, ok
}

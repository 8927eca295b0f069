package model

// LocationTolerance is how far a townhall may sit from an expansion's
// recorded location and still be matched to it.
const LocationTolerance = 1.0

// Expansion is one base location as computed by the host's map analysis.
// Base is filled in by the host once a townhall occupies the location.
type Expansion struct {
	Location  Point     `json:"location"`
	Center    Point     `json:"center"` // centroid of the resource cluster
	Base      *UnitTag  `json:"base,omitempty"`
	Resources []UnitTag `json:"resources"`
}

// Topology is the static expansion list plus the few map points the
// production rules need. It is replaced wholesale when the host refreshes it.
type Topology struct {
	StartLocation Point
	MapCenter     Point
	Expansions    []Expansion
}

// Expansion returns the expansion at index i, or false when out of range.
func (t *Topology) Expansion(i int) (Expansion, bool) {
	if t == nil || i < 0 || i >= len(t.Expansions) {
		return Expansion{}, false
	}
	return t.Expansions[i], true
}

// IndexForBase finds the expansion whose recorded base tag is depot.
// When no expansion records it, the expansion whose location lies within
// LocationTolerance of pos is used instead. Returns -1 when neither matches.
func (t *Topology) IndexForBase(depot UnitTag, pos Point) int {
	if t == nil {
		return -1
	}
	for i, exp := range t.Expansions {
		if exp.Base != nil && *exp.Base == depot {
			return i
		}
	}
	for i, exp := range t.Expansions {
		if exp.Location.IsCloser(LocationTolerance, pos) {
			return i
		}
	}
	return -1
}

// ResourceCount returns the total number of resource nodes across expansions.
func (t *Topology) ResourceCount() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, exp := range t.Expansions {
		n += len(exp.Resources)
	}
	return n
}

// SameLayout reports whether other describes the same expansions with the same
// bases and resources, so a refresh can be skipped.
func (t *Topology) SameLayout(other []Expansion) bool {
	if t == nil || len(t.Expansions) != len(other) {
		return false
	}
	for i, exp := range t.Expansions {
		o := other[i]
		if exp.Location != o.Location || len(exp.Resources) != len(o.Resources) {
			return false
		}
		if (exp.Base == nil) != (o.Base == nil) || (exp.Base != nil && *exp.Base != *o.Base) {
			return false
		}
		for j := range exp.Resources {
			if exp.Resources[j] != o.Resources[j] {
				return false
			}
		}
	}
	return true
}

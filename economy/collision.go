package economy

import "github.com/nstehr/soy/model"

// colliding reports whether w is crowding a teammate at its resource.
// Teammates that were already commanded this tick, or that are farther than
// 2 × (radius + step), do not count. Teammates missing from the snapshot are
// ignored.
func colliding(w model.Unit, teammates []model.UnitTag, units model.UnitIndex, commanded map[model.UnitTag]bool) bool {
	reach := 2 * (w.Radius + w.Step)
	for _, tag := range teammates {
		if tag == w.Tag || commanded[tag] {
			continue
		}
		u, ok := units.Lookup(tag)
		if !ok {
			continue
		}
		if !w.Pos.IsFurther(reach, u.Pos) {
			return true
		}
	}
	return false
}

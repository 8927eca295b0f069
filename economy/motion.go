package economy

import (
	"github.com/nstehr/soy/ipc"
	"github.com/nstehr/soy/model"
)

// Phase is where a worker is in its harvest cycle. It is never stored: it is
// read off the worker's current order every tick so it cannot drift from what
// the host is actually executing.
type Phase int

const (
	PhaseRecover Phase = iota
	PhaseApproachResource
	PhaseApproachDepot
	PhaseExtracting
	PhaseReturning
)

func (p Phase) String() string {
	switch p {
	case PhaseApproachResource:
		return "approach-resource"
	case PhaseApproachDepot:
		return "approach-depot"
	case PhaseExtracting:
		return "extracting"
	case PhaseReturning:
		return "returning"
	default:
		return "recover"
	}
}

// Site is one worker together with this tick's observation of the resource
// and depot it is bound to.
type Site struct {
	Worker   model.Unit
	Resource model.Unit
	Depot    model.Unit
}

// InferPhase classifies the worker's current order against its binding.
// A return order without a target counts as returning to the bound depot.
func InferPhase(kit model.RaceKit, s Site) Phase {
	ord, ok := s.Worker.CurrentOrder()
	if !ok {
		return PhaseRecover
	}
	step := s.Worker.Step
	switch {
	case model.IsMove(ord.Ability) && ord.TargetPos != nil:
		p := *ord.TargetPos
		if s.Resource.Pos.IsCloser(s.Resource.Radius+step, p) {
			return PhaseApproachResource
		}
		if s.Depot.Pos.IsCloser(s.Depot.Radius+step, p) {
			return PhaseApproachDepot
		}
	case kit.IsGather(ord.Ability) && ord.TargetTag == s.Resource.Tag:
		return PhaseExtracting
	case kit.IsReturn(ord.Ability) && (ord.TargetTag == s.Depot.Tag || ord.TargetTag == 0):
		return PhaseReturning
	}
	return PhaseRecover
}

// Infer decides the single command, if any, that moves the worker along its
// harvest cycle. No command means the current order should keep running.
// colliding is only evaluated when the decision depends on it.
func Infer(kit model.RaceKit, s Site, colliding func() bool) (ipc.Command, bool) {
	w, res, dep := s.Worker, s.Resource, s.Depot

	switch InferPhase(kit, s) {
	case PhaseApproachResource:
		if w.Pos.IsCloser(w.Radius+res.Radius+w.Step, res.Pos) || colliding() {
			return ipc.UseAbility(w.Tag, kit.Gather, res.Tag), true
		}
		return ipc.Command{}, false

	case PhaseApproachDepot:
		if w.Pos.IsCloser(w.Radius+dep.Radius+w.Step, dep.Pos) || colliding() {
			return ipc.UseAbility(w.Tag, kit.Return, dep.Tag), true
		}
		return ipc.Command{}, false

	case PhaseExtracting:
		// Walk to the near edge of the node ourselves; the host's gather
		// pathing stops short and slows down on approach.
		if w.Pos.IsFurther(w.Radius+res.Radius+w.Step, res.Pos) && !colliding() {
			return ipc.Move(w.Tag, res.Pos.Towards(dep.Pos, res.Radius)), true
		}
		return ipc.Command{}, false

	case PhaseReturning:
		if w.Pos.IsFurther(w.Radius+dep.Radius+w.Step, dep.Pos) && !colliding() {
			return ipc.Move(w.Tag, dep.Pos.Towards(res.Pos, dep.Radius)), true
		}
		return ipc.Command{}, false
	}

	// Idle, attacking, mining the wrong node, or anything unrecognised.
	if w.Carrying {
		return ipc.ReturnResource(w.Tag), true
	}
	return ipc.Gather(w.Tag, res.Tag), true
}

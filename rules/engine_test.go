package rules

import (
	"slices"
	"testing"

	"github.com/nstehr/soy/model"
)

func recordingAction(log *[]string, name string) ActionFunc {
	return func(env RuleEnv, q *Queues) error {
		*log = append(*log, name)
		return nil
	}
}

func TestEngineEvaluate_PriorityAndExclusive(t *testing.T) {
	var ran []string
	engine, err := NewEngine([]*Rule{
		{Name: "low", Priority: 10, Category: "a", ConditionSrc: `true`, Action: recordingAction(&ran, "low")},
		{Name: "high", Priority: 100, Category: "a", Exclusive: true, ConditionSrc: `true`, Action: recordingAction(&ran, "high")},
		{Name: "other", Priority: 50, Category: "b", ConditionSrc: `Minerals() >= 50`, Action: recordingAction(&ran, "other")},
		{Name: "never", Priority: 60, Category: "b", ConditionSrc: `Minerals() > 1000`, Action: recordingAction(&ran, "never")},
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if got, want := engine.Rules(), []string{"high", "never", "other", "low"}; !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}

	env := RuleEnv{State: model.GameState{Player: model.Player{Minerals: 50}}}
	fired := engine.Evaluate(env, NewQueues())

	if want := []string{"high", "other"}; !slices.Equal(fired, want) {
		t.Errorf("fired = %v, want %v", fired, want)
	}
	if !slices.Equal(ran, fired) {
		t.Errorf("actions ran = %v, want %v", ran, fired)
	}
}

func TestNewEngine_RejectsBadCondition(t *testing.T) {
	_, err := NewEngine([]*Rule{{Name: "bad", ConditionSrc: `NoSuchHelper()`, Action: ActionQueueWorker}})
	if err == nil {
		t.Fatal("expected compile error")
	}
}

func TestEngineSwap_KeepsOldRulesOnError(t *testing.T) {
	engine, err := NewEngine(CompilePlan(DefaultPlan()))
	if err != nil {
		t.Fatal(err)
	}
	before := engine.Rules()

	if err := engine.Swap([]*Rule{{Name: "bad", ConditionSrc: `Minerals(`}}); err == nil {
		t.Fatal("Swap accepted an invalid rule")
	}
	if got := engine.Rules(); !slices.Equal(got, before) {
		t.Errorf("rules changed to %v after failed swap", got)
	}

	if err := engine.Swap([]*Rule{{Name: "only", ConditionSrc: `false`, Action: ActionQueueWorker}}); err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if got := engine.Rules(); !slices.Equal(got, []string{"only"}) {
		t.Errorf("rules = %v after swap", got)
	}
}

func TestEngineEvaluate_DefaultPlanOpening(t *testing.T) {
	engine, err := NewEngine(CompilePlan(DefaultPlan()))
	if err != nil {
		t.Fatal(err)
	}
	q := NewQueues()
	env := openingEnv()

	fired := engine.Evaluate(env, q)
	if !slices.Equal(fired, []string{"queue-worker"}) {
		t.Fatalf("fired = %v, want [queue-worker]", fired)
	}
	if head, _ := q.Train.Head(); head.UnitType != model.UnitSCV || head.Ability != model.AbilityTrainSCV {
		t.Errorf("train head = %+v", head)
	}

	// The queued worker blocks a second one; supply is still fine.
	if fired := engine.Evaluate(env, q); len(fired) != 0 {
		t.Errorf("second evaluation fired %v", fired)
	}
	if q.Train.Len() != 1 {
		t.Errorf("train queue = %v", q.Train.Items())
	}

	// Near the cap, supply is queued once and jumps the build queue.
	env.State.Player.FoodUsed = 14
	q.Build.PushBack(Item{UnitType: 999})
	engine.Evaluate(env, q)
	engine.Evaluate(env, q)
	if head, _ := q.Build.Head(); head.UnitType != model.UnitSupplyDepot {
		t.Errorf("build head = %+v, want supply depot", head)
	}
	if q.Build.Len() != 2 {
		t.Errorf("build queue = %v, want depot queued once", q.Build.Items())
	}
}

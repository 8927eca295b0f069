package rules

import (
	"strings"
	"testing"

	"github.com/expr-lang/expr"
)

func TestCompilePlanDefault(t *testing.T) {
	rules := CompilePlan(DefaultPlan())

	if len(rules) != 2 {
		t.Fatalf("CompilePlan returned %d rules, want 2", len(rules))
	}
	for _, r := range rules {
		_, err := expr.Compile(r.ConditionSrc, expr.Env(RuleEnv{}), expr.AsBool())
		if err != nil {
			t.Errorf("rule %q failed to compile: %v\ncondition: %s", r.Name, err, r.ConditionSrc)
		}
		if r.Action == nil {
			t.Errorf("rule %q has no action", r.Name)
		}
	}
}

func TestCompilePlanInterpolates(t *testing.T) {
	rules := CompilePlan(Plan{MaxWorkers: 22, SupplyBuffer: 5, SupplyLimit: 120})

	want := map[string]string{
		"queue-supply": "SupplyLeft() < 5",
		"queue-worker": "< 22",
	}
	for _, r := range rules {
		frag, ok := want[r.Name]
		if !ok {
			t.Errorf("unexpected rule %q", r.Name)
			continue
		}
		if !strings.Contains(r.ConditionSrc, frag) {
			t.Errorf("rule %q condition %q missing %q", r.Name, r.ConditionSrc, frag)
		}
	}
}

func TestPlanValidate(t *testing.T) {
	tests := []struct {
		name string
		in   Plan
		want Plan
	}{
		{"zero takes defaults", Plan{}, DefaultPlan()},
		{"clamped high", Plan{Name: "x", MaxWorkers: 999, SupplyBuffer: 50, SupplyLimit: 500}, Plan{Name: "x", MaxWorkers: 200, SupplyBuffer: 16, SupplyLimit: 200}},
		{"clamped low", Plan{Name: "x", MaxWorkers: -3, SupplyBuffer: -1, SupplyLimit: 4}, Plan{Name: "x", MaxWorkers: 1, SupplyBuffer: 1, SupplyLimit: 15}},
		{"in range kept", Plan{Name: "x", MaxWorkers: 40, SupplyBuffer: 4, SupplyLimit: 100}, Plan{Name: "x", MaxWorkers: 40, SupplyBuffer: 4, SupplyLimit: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in
			got.Validate()
			if got != tt.want {
				t.Errorf("Validate(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

package rules

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// diagInterval is how many ticks pass between stalled-production reports.
const diagInterval = 100

// Engine runs compiled rules against game state each tick.
// Rules fire in priority order; exclusive rules block lower-priority rules
// in the same category.
type Engine struct {
	mu    sync.RWMutex
	rules []*Rule

	lastDiagTick int
}

// NewEngine compiles all rule conditions into expr bytecode and sorts by priority.
func NewEngine(rules []*Rule) (*Engine, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Engine{rules: compiled}, nil
}

// Evaluate runs all rules against the current tick and returns the names of
// the rules that fired. Actions write into q.
func (e *Engine) Evaluate(env RuleEnv, q *Queues) []string {
	e.mu.RLock()
	rules := e.rules
	e.mu.RUnlock()

	env.queues = q
	fired := make(map[string]bool) // category → exclusive rule already fired
	var names []string

	for _, r := range rules {
		if fired[r.Category] {
			continue
		}

		result, err := vm.Run(r.program, env)
		if err != nil {
			slog.Warn("rule condition error", "rule", r.Name, "error", err)
			continue
		}

		match, ok := result.(bool)
		if !ok || !match {
			continue
		}

		names = append(names, r.Name)
		slog.Debug("rule fired", "rule", r.Name, "priority", r.Priority, "category", r.Category)

		if err := r.Action(env, q); err != nil {
			slog.Error("rule action error", "rule", r.Name, "error", err)
		}

		if r.Exclusive {
			fired[r.Category] = true
		}
	}

	if len(names) == 0 {
		e.logStalled(env, q)
	}
	return names
}

// Swap atomically replaces the rule set, for example when the plan is
// reloaded. Compiles first; if compilation fails the old rules remain active.
func (e *Engine) Swap(newRules []*Rule) error {
	compiled, err := compileRules(newRules)
	if err != nil {
		return err
	}
	names := make([]string, len(compiled))
	for i, r := range compiled {
		names[i] = r.Name
	}
	e.mu.Lock()
	e.rules = compiled
	e.mu.Unlock()

	slog.Info("rule set swapped", "count", len(compiled), "rules", names)
	return nil
}

// Rules returns the active rule names in evaluation order.
func (e *Engine) Rules() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

// logStalled helps debug "why isn't anything being produced?": when no rule
// fires but the queues are not draining, dump what is waiting. Throttled.
func (e *Engine) logStalled(env RuleEnv, q *Queues) {
	if q.Len() == 0 || env.State.Tick-e.lastDiagTick < diagInterval {
		return
	}
	e.lastDiagTick = env.State.Tick

	slog.Warn("production stalled",
		"tick", env.State.Tick,
		"train", q.Train.Items(),
		"build", q.Build.Items(),
		"minerals", env.State.Player.Minerals,
		"supply", fmt.Sprintf("%d/%d", env.State.Player.FoodUsed, env.State.Player.FoodCap),
	)
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(RuleEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}

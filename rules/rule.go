package rules

import "github.com/expr-lang/expr/vm"

// ActionFunc queues production when a rule's condition is true.
type ActionFunc func(env RuleEnv, q *Queues) error

// Rule is the atomic unit of production behavior: a condition → action pair.
// The engine evaluates rules by priority and uses Category + Exclusive
// to keep two rules from queueing the same thing in one tick.
type Rule struct {
	Name         string      // human-readable identifier
	Priority     int         // higher = evaluated first
	Category     string      // grouping for exclusive semantics
	Exclusive    bool        // if true, blocks lower-priority rules in same category
	ConditionSrc string      // expr source (preserved for logging)
	program      *vm.Program // compiled bytecode
	Action       ActionFunc
}

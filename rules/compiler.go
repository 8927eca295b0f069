package rules

import "fmt"

// CompilePlan generates the production rule set from a plan.
// All conditions are built via fmt.Sprintf with interpolated integers,
// so the compiler never generates invalid expr.
func CompilePlan(p Plan) []*Rule {
	p.Validate()
	var rules []*Rule

	// Supply goes first and jumps the queue: nothing else trains while
	// supply blocked.
	rules = append(rules, &Rule{
		Name:         "queue-supply",
		Priority:     900,
		Category:     "supply",
		Exclusive:    true,
		ConditionSrc: fmt.Sprintf(`SupplyCap() < %d && SupplyLeft() < %d && !SupplyPending()`, p.SupplyLimit, p.SupplyBuffer),
		Action:       ActionQueueSupply,
	})

	// One worker waits in the queue at a time. Stop when the free pool
	// already outnumbers the open mining slots.
	rules = append(rules, &Rule{
		Name:         "queue-worker",
		Priority:     500,
		Category:     "worker",
		Exclusive:    true,
		ConditionSrc: fmt.Sprintf(`HasRole("townhall") && !Queued("worker") && WorkerCount() + WorkersInProduction() < %d && FreeWorkers() <= OpenSlots()`, p.MaxWorkers),
		Action:       ActionQueueWorker,
	})

	return rules
}

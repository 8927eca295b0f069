package rules

import (
	"fmt"
	"log/slog"
)

// ActionQueueSupply puts the race's supply unit at the front of the right
// queue: built by a worker, or trained from larva.
func ActionQueueSupply(env RuleEnv, q *Queues) error {
	it := Item{UnitType: env.Kit.Supply, Ability: env.Kit.SupplyOrder}
	if env.Kit.SupplyFromLarva {
		q.Train.PushFront(it)
	} else {
		q.Build.PushFront(it)
	}
	slog.Info("supply queued", "unitType", it.UnitType, "supplyLeft", env.SupplyLeft())
	return nil
}

// ActionQueueWorker appends one worker to the train queue.
func ActionQueueWorker(env RuleEnv, q *Queues) error {
	ab, ok := env.Kit.TrainAbility(env.Kit.Worker)
	if !ok {
		return fmt.Errorf("race %s has no worker train ability", env.Kit.Race)
	}
	q.Train.PushBack(Item{UnitType: env.Kit.Worker, Ability: ab})
	slog.Debug("worker queued", "workers", env.WorkerCount())
	return nil
}

package agent

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nstehr/soy/economy"
	"github.com/nstehr/soy/ipc"
	"github.com/nstehr/soy/journal"
	"github.com/nstehr/soy/model"
	"github.com/nstehr/soy/rules"
)

// diagInterval is how often, in ticks, an economy summary is logged.
const diagInterval = 100

var ErrNoSession = errors.New("tick received before hello")

// Recorder persists one entry per tick. *journal.Writer satisfies it.
type Recorder interface {
	Record(e journal.Entry) error
}

// Options configure a new Agent.
type Options struct {
	// Race is used when the host reports random or nothing.
	Race    model.Race
	Plan    rules.Plan
	Journal Recorder
}

// Agent owns the decision-making for a single player session.
type Agent struct {
	Conn *ipc.Connection

	mu        sync.Mutex
	player    string
	race      model.Race
	plan      rules.Plan
	recorder  Recorder
	session   string
	kit       model.RaceKit
	economy   *economy.Engine
	tactician *rules.Engine
	queues    *rules.Queues
	producer  *rules.Producer
	prev      *stateSnapshot
}

func New(conn *ipc.Connection, opts Options) *Agent {
	a := &Agent{
		Conn:     conn,
		race:     opts.Race,
		plan:     opts.Plan,
		recorder: opts.Journal,
	}
	if w, ok := opts.Journal.(*journal.Writer); ok {
		a.session = w.Session()
	}
	return a
}

// HandleHello resolves the race and builds the per-session economy from the
// host's map analysis.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := env.Decode(&hello); err != nil {
		return nil, err
	}

	race, err := model.ParseRace(hello.Race)
	if err != nil {
		return nil, err
	}
	if race == model.RaceRandom {
		race = a.race
	}
	kit, err := model.KitFor(race)
	if err != nil {
		return nil, fmt.Errorf("resolve race: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.plan.Validate()
	tactician, err := rules.NewEngine(rules.CompilePlan(a.plan))
	if err != nil {
		return nil, fmt.Errorf("compile plan %q: %w", a.plan.Name, err)
	}

	a.player = hello.Player
	if a.Conn != nil {
		a.Conn.Player = hello.Player
	}
	a.kit = kit
	a.economy = economy.NewEngine(kit, hello.Topology())
	a.tactician = tactician
	a.queues = rules.NewQueues()
	a.producer = rules.NewProducer(kit, a.economy.Topology(), a.economy)
	a.prev = nil

	slog.Info("player identified",
		"player", a.player,
		"race", kit.Race,
		"expansions", len(hello.Expansions),
		"plan", a.plan.Name,
	)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok"})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleTick runs one decision step and replies with the tick's commands:
// production first, so a worker pulled to build is out of the economy
// before free workers are allocated and bound workers are driven.
func (a *Agent) HandleTick(env ipc.Envelope) (*ipc.Envelope, error) {
	var gs model.GameState
	if err := env.Decode(&gs); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.economy == nil {
		return nil, ErrNoSession
	}

	batch := ipc.NewBatch(gs.Tick)
	a.economy.Reconcile(gs)

	fired := a.tactician.Evaluate(rules.RuleEnv{
		State:   gs,
		Kit:     a.kit,
		Economy: a.economyView(),
	}, a.queues)
	issued := a.producer.Run(gs, a.queues, batch)

	assigned := a.economy.Allocate()
	a.economy.Drive(gs, batch)
	a.economy.Rally(gs, batch)

	entry := journal.Entry{
		Session:   a.session,
		Tick:      gs.Tick,
		Minerals:  gs.Player.Minerals,
		FoodUsed:  gs.Player.FoodUsed,
		FoodCap:   gs.Player.FoodCap,
		Ledger:    a.economy.Ledger().Stats(),
		OpenSlots: a.economy.OpenSlots(),
		Assigned:  len(assigned),
		Fired:     fired,
		Issued:    issued,
		Commands:  batch.Commands(),
	}

	if err := a.economy.Ledger().Validate(); err != nil {
		slog.Error("ledger invariant violated", "tick", gs.Tick, "error", err)
		entry.Invalid = err.Error()
	}

	events, snap := detectEvents(gs.Tick, a.economy, a.prev)
	a.prev = &snap
	for _, e := range events {
		slog.Info("economy event", "kind", e.Kind, "tick", e.Tick, "detail", e.Detail)
	}
	entry.Alerts = formatEvents(events)

	if gs.Tick%diagInterval == 0 {
		slog.Info("economy",
			"player", a.player,
			"tick", gs.Tick,
			"minerals", gs.Player.Minerals,
			"supply", fmt.Sprintf("%d/%d", gs.Player.FoodUsed, gs.Player.FoodCap),
			"summary", summarize(a.economy),
			"queued", a.queues.Len(),
		)
	}

	if a.recorder != nil {
		if err := a.recorder.Record(entry); err != nil {
			slog.Warn("journal write failed", "tick", gs.Tick, "error", err)
		}
	}

	reply, err := ipc.NewEnvelope(ipc.TypeCommands, batch.Message())
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// Player is the name announced in the hello, empty before it.
func (a *Agent) Player() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.player
}

// SetPlan replaces the production plan. A running session swaps its rules
// in place and keeps its queues.
func (a *Agent) SetPlan(p rules.Plan) error {
	p.Validate()
	a.mu.Lock()
	defer a.mu.Unlock()

	a.plan = p
	if a.tactician == nil {
		return nil
	}
	return a.tactician.Swap(rules.CompilePlan(p))
}

func (a *Agent) economyView() rules.EconomyView {
	stats := a.economy.Ledger().Stats()
	return rules.EconomyView{
		Free:      stats.Free,
		Bound:     stats.Bound,
		Builders:  stats.Builders,
		OpenSlots: a.economy.OpenSlots(),
		Capacity:  a.economy.Capacity(),
	}
}

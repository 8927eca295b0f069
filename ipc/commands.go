package ipc

import (
	"errors"
	"fmt"

	"github.com/nstehr/soy/model"
)

// CommandKind values must stay in sync with the bridge's command executor.
type CommandKind string

const (
	CommandMove    CommandKind = "move"
	CommandSmart   CommandKind = "smart"
	CommandAbility CommandKind = "ability"
	CommandGather  CommandKind = "gather"
	CommandReturn  CommandKind = "return"
	CommandTrain   CommandKind = "train"
	CommandBuild   CommandKind = "build"
)

// Command is a single fire-and-forget order for one of our units.
// The bridge gives no in-tick acknowledgement.
type Command struct {
	Kind     CommandKind      `json:"kind"`
	Unit     model.UnitTag    `json:"unit"`
	Ability  model.AbilityID  `json:"ability,omitempty"`
	Target   model.UnitTag    `json:"target,omitempty"`
	Pos      *model.Point     `json:"pos,omitempty"`
	UnitType model.UnitTypeID `json:"unitType,omitempty"`
}

func Move(unit model.UnitTag, pos model.Point) Command {
	return Command{Kind: CommandMove, Unit: unit, Ability: model.AbilityMove, Pos: &pos}
}

func Smart(unit, target model.UnitTag) Command {
	return Command{Kind: CommandSmart, Unit: unit, Ability: model.AbilitySmart, Target: target}
}

func UseAbility(unit model.UnitTag, ability model.AbilityID, target model.UnitTag) Command {
	return Command{Kind: CommandAbility, Unit: unit, Ability: ability, Target: target}
}

func Gather(unit, resource model.UnitTag) Command {
	return Command{Kind: CommandGather, Unit: unit, Target: resource}
}

func ReturnResource(unit model.UnitTag) Command {
	return Command{Kind: CommandReturn, Unit: unit}
}

func Train(producer model.UnitTag, ability model.AbilityID, unitType model.UnitTypeID) Command {
	return Command{Kind: CommandTrain, Unit: producer, Ability: ability, UnitType: unitType}
}

func Build(builder model.UnitTag, ability model.AbilityID, unitType model.UnitTypeID, pos model.Point) Command {
	return Command{Kind: CommandBuild, Unit: builder, Ability: ability, UnitType: unitType, Pos: &pos}
}

// CommandBatch is the reply to a tick message.
type CommandBatch struct {
	Tick     int       `json:"tick"`
	Commands []Command `json:"commands"`
}

var ErrDuplicateCommand = errors.New("unit already commanded this tick")

// Batch collects one tick's commands and rejects a second command for the
// same unit.
type Batch struct {
	tick     int
	commands []Command
	seen     map[model.UnitTag]bool
}

func NewBatch(tick int) *Batch {
	return &Batch{tick: tick, seen: make(map[model.UnitTag]bool)}
}

func (b *Batch) Add(c Command) error {
	if b.seen[c.Unit] {
		return fmt.Errorf("%w: unit %d (%s)", ErrDuplicateCommand, c.Unit, c.Kind)
	}
	b.seen[c.Unit] = true
	b.commands = append(b.commands, c)
	return nil
}

// Has reports whether unit already has a command in this batch.
func (b *Batch) Has(unit model.UnitTag) bool { return b.seen[unit] }

func (b *Batch) Len() int { return len(b.commands) }

func (b *Batch) Commands() []Command { return b.commands }

func (b *Batch) Message() CommandBatch {
	cmds := b.commands
	if cmds == nil {
		cmds = []Command{}
	}
	return CommandBatch{Tick: b.tick, Commands: cmds}
}

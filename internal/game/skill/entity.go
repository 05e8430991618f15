package skill

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/udisondev/skillcore/internal/effect"
	"github.com/udisondev/skillcore/internal/fsm"
	"github.com/udisondev/skillcore/internal/mathx"
	"github.com/udisondev/skillcore/internal/model"
	"github.com/udisondev/skillcore/internal/stat"
	"github.com/udisondev/skillcore/internal/target"
)

// ControlType tells who drives an entity.
type ControlType int

const (
	ControlPlayer ControlType = iota
	ControlAI
)

func (t ControlType) String() string {
	if t == ControlPlayer {
		return "player"
	}
	return "ai"
}

// ParseControlType maps "player" and "ai" to a ControlType.
func ParseControlType(s string) (ControlType, error) {
	switch s {
	case "player":
		return ControlPlayer, nil
	case "ai":
		return ControlAI, nil
	default:
		return 0, fmt.Errorf("unknown control type: %s", s)
	}
}

type (
	DeadFunc func(e *Entity)
	CueFunc  func(e *Entity, name string, source any)
)

// EntityConfig describes a new entity.
type EntityConfig struct {
	ID          uint32
	Name        string
	Categories  []string
	ControlType ControlType
	Stats       *stat.Stats
	Position    model.Vec3
	Heading     model.Vec3
	Physics     target.Physics
	Input       target.Input
	Spawner     Spawner
}

// Entity is a participant owning stats, a skill system and its own state
// machine. Movement and Animator are optional.
type Entity struct {
	id          uint32
	name        string
	categories  []string
	controlType ControlType
	stats       *stat.Stats
	loc         model.Location

	physics target.Physics
	input   target.Input
	spawner Spawner

	aimTarget *Entity
	movement  Movement
	animator  Animator
	skills    *System
	machine   *EntityMachine

	controlLocks int
	// unsubscribeAnimator detaches the animation event hook.
	unsubscribeAnimator func()

	onTakeDamage observers[effect.DamageFunc]
	onDead       observers[DeadFunc]
	onCue        observers[CueFunc]
}

// NewEntity creates an entity in its default state with an empty system.
func NewEntity(cfg EntityConfig) *Entity {
	stats := cfg.Stats
	if stats == nil {
		stats = stat.NewStats(nil, "", "")
	}
	e := &Entity{
		id:          cfg.ID,
		name:        cfg.Name,
		categories:  slices.Clone(cfg.Categories),
		controlType: cfg.ControlType,
		stats:       stats,
		loc:         model.NewLocation(cfg.Position, cfg.Heading),
		physics:     cfg.Physics,
		input:       cfg.Input,
		spawner:     cfg.Spawner,
	}
	e.skills = NewSystem(e)
	e.machine = newEntityMachine(e)
	e.machine.SetupLayers()
	return e
}

func (e *Entity) ObjectID() uint32         { return e.id }
func (e *Entity) Name() string             { return e.name }
func (e *Entity) Categories() []string     { return e.categories }
func (e *Entity) ControlType() ControlType { return e.controlType }
func (e *Entity) IsPlayer() bool           { return e.controlType == ControlPlayer }
func (e *Entity) Stats() *stat.Stats       { return e.stats }
func (e *Entity) Skills() *System          { return e.skills }
func (e *Entity) Machine() *EntityMachine  { return e.machine }

func (e *Entity) HasCategory(id string) bool { return slices.Contains(e.categories, id) }

// Location

func (e *Entity) Location() model.Location     { return e.loc }
func (e *Entity) Position() model.Vec3         { return e.loc.Position }
func (e *Entity) Forward() model.Vec3          { return e.loc.Heading }
func (e *Entity) SetPosition(pos model.Vec3)   { e.loc = e.loc.WithPosition(pos) }
func (e *Entity) SetForward(dir model.Vec3)    { e.loc = e.loc.WithHeading(dir) }
func (e *Entity) setLocation(l model.Location) { e.loc = l }

// Collaborators

func (e *Entity) Physics() target.Physics { return e.physics }
func (e *Entity) Spawner() Spawner        { return e.spawner }
func (e *Entity) Movement() Movement      { return e.movement }
func (e *Entity) Animator() Animator      { return e.animator }

// Input returns nil for AI entities.
func (e *Entity) Input() target.Input {
	if !e.IsPlayer() {
		return nil
	}
	return e.input
}

func (e *Entity) SetPhysics(p target.Physics) { e.physics = p }
func (e *Entity) SetSpawner(s Spawner)        { e.spawner = s }
func (e *Entity) SetMovement(m Movement)      { e.movement = m }

// SetAnimator replaces the animator. An animator raising apply events drives
// skills applied by animation.
func (e *Entity) SetAnimator(a Animator) {
	if e.unsubscribeAnimator != nil {
		e.unsubscribeAnimator()
		e.unsubscribeAnimator = nil
	}
	e.animator = a
	if src, ok := a.(interface {
		OnApplyEvent(fn AnimationEventFunc) (unsubscribe func())
	}); ok {
		e.unsubscribeAnimator = src.OnApplyEvent(func(string) { e.skills.ApplyCurrentRunningSkill() })
	}
}

// AimTarget returns the locked target, or nil.
func (e *Entity) AimTarget() target.Entity {
	if e.aimTarget == nil {
		return nil
	}
	return e.aimTarget
}

func (e *Entity) Target() *Entity      { return e.aimTarget }
func (e *Entity) SetTarget(t *Entity)  { e.aimTarget = t }
func (e *Entity) IsControllable() bool { return e.controlLocks == 0 }

func (e *Entity) lockControl() { e.controlLocks++ }

func (e *Entity) unlockControl() {
	if e.controlLocks > 0 {
		e.controlLocks--
	}
}

// AimPoint is where the entity is aiming: its target, the pointer of a
// player, or the point one unit ahead.
func (e *Entity) AimPoint() model.Vec3 {
	switch {
	case e.aimTarget != nil:
		return e.aimTarget.Position()
	case e.Input() != nil:
		return e.input.Pointer()
	default:
		return e.Position().Add(e.Forward())
	}
}

// State

func (e *Entity) IsInState(id fsm.StateID) bool { return e.machine.IsInState(id) }

// IsDead reports whether HP is at 0. Entities without HP never die.
func (e *Entity) IsDead() bool {
	hp := e.stats.HP()
	return hp != nil && mathx.Approximately(hp.DefaultValue(), 0)
}

// ExecuteStateCommand forwards an effect's state command to the entity
// machine.
func (e *Entity) ExecuteStateCommand(cmd effect.StateCommand) bool {
	switch cmd {
	case effect.ToDefault:
		return e.machine.ExecuteCommandAll(EntityToDefault)
	case effect.ToStunning:
		return e.machine.ExecuteCommandAll(EntityToStunning)
	case effect.ToSleeping:
		return e.machine.ExecuteCommandAll(EntityToSleeping)
	default:
		return false
	}
}

// Effects returns the entity's effect host.
func (e *Entity) Effects() effect.Host { return e.skills }

// Damage

// TakeDamage lowers HP. Dead entities ignore damage.
func (e *Entity) TakeDamage(instigator effect.Target, causer any, damage float64) {
	if e.IsDead() {
		return
	}
	hp := e.stats.HP()
	if hp == nil {
		return
	}
	hp.IncreaseDefaultValue(-damage)
	e.onTakeDamage.each(func(fn effect.DamageFunc) { fn(e, instigator, causer, damage) })

	if mathx.Approximately(hp.DefaultValue(), 0) {
		e.die()
	}
}

func (e *Entity) die() {
	slog.Debug("entity died", "entity", e.name, "id", e.id)
	if e.movement != nil {
		e.movement.Stop()
	}
	e.skills.CancelAll(true)
	e.onDead.each(func(fn DeadFunc) { fn(e) })
}

func (e *Entity) OnTakeDamage(fn effect.DamageFunc) (unsubscribe func()) {
	return e.onTakeDamage.add(fn)
}

func (e *Entity) OnDead(fn DeadFunc) (unsubscribe func()) { return e.onDead.add(fn) }
func (e *Entity) OnCue(fn CueFunc) (unsubscribe func())   { return e.onCue.add(fn) }

// EmitCue forwards a presentation cue raised by a skill or effect.
func (e *Entity) EmitCue(name string, source any) {
	e.onCue.each(func(fn CueFunc) { fn(e, name, source) })
}

// Update ticks movement, the animator, the entity machine and the skill
// system. A dead entity does not move.
func (e *Entity) Update(dt float64) {
	if e.movement != nil && !e.IsDead() {
		e.movement.Update(dt)
	}
	if a, ok := e.animator.(interface{ Update(dt float64) }); ok {
		a.Update(dt)
	}
	e.machine.Update(dt)
	e.skills.Update(dt)
}

func (e *Entity) String() string { return fmt.Sprintf("%s(%d)", e.name, e.id) }

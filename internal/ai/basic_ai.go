package ai

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/udisondev/skillcore/internal/game/skill"
	"github.com/udisondev/skillcore/internal/model"
)

const (
	// DefaultSightRange is how far BasicAI looks for hostiles.
	DefaultSightRange = 20.0
	// DefaultEngageRange is how close BasicAI walks to a target whose skills
	// are all out of range.
	DefaultEngageRange = 1.5
)

// BasicAI locks on the nearest living hostile and uses the first useable
// active skill on it. An entity is hostile when it shares no category with
// the controlled entity.
type BasicAI struct {
	entity      *skill.Entity
	sightRange  float64
	engageRange float64

	intention atomic.Int32
	isRunning atomic.Bool
	tickCount atomic.Int32
}

// NewBasicAI creates new basic AI for e
func NewBasicAI(e *skill.Entity) *BasicAI {
	return &BasicAI{
		entity:      e,
		sightRange:  DefaultSightRange,
		engageRange: DefaultEngageRange,
	}
}

// WithRanges overrides the sight and engage ranges.
func (ai *BasicAI) WithRanges(sight, engage float64) *BasicAI {
	ai.sightRange = sight
	ai.engageRange = engage
	return ai
}

func (ai *BasicAI) Entity() *skill.Entity { return ai.entity }
func (ai *BasicAI) TickCount() int32      { return ai.tickCount.Load() }

// Start starts AI controller
func (ai *BasicAI) Start() {
	ai.isRunning.Store(true)
	ai.SetIntention(model.IntentionActive)
	slog.Debug("basic AI started",
		"entity", ai.entity.Name(),
		"objectID", ai.entity.ObjectID(),
		"intention", model.IntentionActive)
}

// Stop stops AI controller
func (ai *BasicAI) Stop() {
	ai.isRunning.Store(false)
	ai.SetIntention(model.IntentionIdle)
	ai.entity.SetTarget(nil)
	if m, ok := ai.entity.Movement().(*skill.Mover); ok {
		m.Stop()
	}
	slog.Debug("basic AI stopped",
		"entity", ai.entity.Name(),
		"objectID", ai.entity.ObjectID())
}

// SetIntention sets AI intention
func (ai *BasicAI) SetIntention(intention model.Intention) {
	old := model.Intention(ai.intention.Swap(int32(intention)))

	if old != intention && IsDebugEnabled() {
		slog.Debug("AI intention changed",
			"entity", ai.entity.Name(),
			"objectID", ai.entity.ObjectID(),
			"from", old,
			"to", intention)
	}
}

// CurrentIntention returns current AI intention
func (ai *BasicAI) CurrentIntention() model.Intention {
	return model.Intention(ai.intention.Load())
}

// Tick picks a target and either closes in or uses a skill.
func (ai *BasicAI) Tick() {
	if !ai.isRunning.Load() {
		return
	}
	ai.tickCount.Add(1)

	e := ai.entity
	if e.IsDead() {
		e.SetTarget(nil)
		ai.SetIntention(model.IntentionIdle)
		return
	}

	t := ai.acquireTarget()
	if t == nil {
		ai.SetIntention(model.IntentionActive)
		return
	}
	if !e.IsControllable() {
		return
	}

	mover, _ := e.Movement().(*skill.Mover)
	s := ai.pickSkill()
	if s == nil {
		ai.approach(mover, t)
		return
	}
	if mover != nil {
		mover.LookAt(t.Position())
	}
	if !s.IsInRange(t.Position()) {
		ai.approach(mover, t)
		return
	}

	if mover != nil {
		mover.Stop()
	}
	ai.SetIntention(model.IntentionAttack)
	if err := e.Skills().Use(s); err != nil && !errors.Is(err, skill.ErrSkillNotUseable) {
		slog.Warn("AI skill use failed",
			"entity", e.Name(),
			"skill", s.CodeName(),
			"error", err)
	}
}

// acquireTarget keeps the current target while it is alive and in sight and
// otherwise locks on the nearest hostile.
func (ai *BasicAI) acquireTarget() *skill.Entity {
	e := ai.entity
	sqrSight := ai.sightRange * ai.sightRange

	if t := e.Target(); t != nil && !t.IsDead() && t.Position().DistanceSquared(e.Position()) <= sqrSight {
		return t
	}
	e.SetTarget(nil)

	physics := e.Physics()
	if physics == nil {
		return nil
	}

	var (
		nearest *skill.Entity
		bestSqr = sqrSight
	)
	for _, candidate := range physics.Overlap(e.Position(), ai.sightRange) {
		other, ok := candidate.(*skill.Entity)
		if !ok || other == e || other.IsDead() || !ai.isHostile(other) {
			continue
		}
		if sqr := other.Position().DistanceSquared(e.Position()); sqr < bestSqr || nearest == nil {
			nearest, bestSqr = other, sqr
		}
	}
	if nearest != nil {
		e.SetTarget(nearest)
		if IsDebugEnabled() {
			slog.Debug("AI target acquired",
				"entity", e.Name(),
				"target", nearest.Name())
		}
	}
	return nearest
}

func (ai *BasicAI) isHostile(other *skill.Entity) bool {
	for _, c := range ai.entity.Categories() {
		if other.HasCategory(c) {
			return false
		}
	}
	return true
}

// pickSkill returns the first registered active skill that can be used now.
func (ai *BasicAI) pickSkill() *skill.Skill {
	return ai.entity.Skills().FindSkill(func(s *skill.Skill) bool {
		return !s.IsPassive() && !s.IsToggleType() && s.IsUseable()
	})
}

func (ai *BasicAI) approach(mover *skill.Mover, t *skill.Entity) {
	if mover == nil {
		return
	}
	pos := ai.entity.Position()
	dir := t.Position().Sub(pos).WithY(0)
	dist := dir.Magnitude()
	if dist <= ai.engageRange {
		mover.Stop()
		mover.LookAt(t.Position())
		ai.SetIntention(model.IntentionAttack)
		return
	}
	mover.SetDestination(pos.Add(dir.Scale((dist - ai.engageRange) / dist)))
	ai.SetIntention(model.IntentionMoveTo)
}

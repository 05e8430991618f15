package effect

import "github.com/udisondev/skillcore/internal/stat"

// StateCommand is an entity state change requested by an effect action.
type StateCommand int

const (
	ToDefault StateCommand = iota + 1
	ToStunning
	ToSleeping
)

func (c StateCommand) String() string {
	switch c {
	case ToDefault:
		return "ToDefault"
	case ToStunning:
		return "ToStunning"
	case ToSleeping:
		return "ToSleeping"
	default:
		return "Unknown"
	}
}

// DamageFunc observes damage taken by an entity.
// causer is the effect (or other object) that dealt the damage.
type DamageFunc func(entity, instigator Target, causer any, damage float64)

// Target is an entity an effect is used by or applied to.
type Target interface {
	Stats() *stat.Stats
	IsDead() bool
	TakeDamage(instigator Target, causer any, damage float64)
	// OnTakeDamage registers fn and returns a func that removes it.
	OnTakeDamage(fn DamageFunc) (unsubscribe func())
	ExecuteStateCommand(cmd StateCommand) bool
	Effects() Host
}

// Host owns the running effects of an entity.
// Removal is deferred until the host's next update.
type Host interface {
	RemoveEffect(e *Effect) bool
	RemoveEffectByCategory(category string) bool
	RemoveEffectAllByCategory(category string) bool
	RemoveEffectAll(match func(e *Effect) bool) bool
}

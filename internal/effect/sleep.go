package effect

import "github.com/udisondev/skillcore/internal/params"

// SleepAction puts the target to sleep until the effect ends or the target
// takes damage from anything but a damage-over-time effect.
// Params: "remove_category", "dot_category".
type SleepAction struct {
	BaseAction
	removeCategory string
	dotCategory    string

	effect      *Effect
	unsubscribe func()
}

func NewSleepAction(p params.Params) Action {
	return &SleepAction{
		removeCategory: p.String("remove_category", ""),
		dotCategory:    p.String("dot_category", ""),
	}
}

func (a *SleepAction) Start(e *Effect, user, target Target, level int, scale float64) {
	a.effect = e
	a.unsubscribe = target.OnTakeDamage(a.onTakeDamage)
}

func (a *SleepAction) Apply(e *Effect, user, target Target, level, stack int, scale float64) bool {
	if a.removeCategory != "" {
		target.Effects().RemoveEffectAll(func(x *Effect) bool {
			return x != e && x.HasCategory(a.removeCategory)
		})
	}
	target.ExecuteStateCommand(ToSleeping)
	return true
}

func (a *SleepAction) Release(e *Effect, user, target Target, level int, scale float64) {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	target.ExecuteStateCommand(ToDefault)
}

func (a *SleepAction) Clone() Action {
	return &SleepAction{
		removeCategory: a.removeCategory,
		dotCategory:    a.dotCategory,
	}
}

func (a *SleepAction) onTakeDamage(entity, instigator Target, causer any, damage float64) {
	if ce, ok := causer.(*Effect); ok && a.dotCategory != "" && ce.HasCategory(a.dotCategory) {
		return
	}
	entity.Effects().RemoveEffect(a.effect)
}

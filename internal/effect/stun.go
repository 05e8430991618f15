package effect

import "github.com/udisondev/skillcore/internal/params"

// StunAction stuns the target for the effect's lifetime after removing the
// target's effects of a category.
// Params: "remove_category".
type StunAction struct {
	BaseAction
	removeCategory string
}

func NewStunAction(p params.Params) Action {
	return &StunAction{removeCategory: p.String("remove_category", "")}
}

func (a *StunAction) Apply(e *Effect, user, target Target, level, stack int, scale float64) bool {
	if a.removeCategory != "" {
		target.Effects().RemoveEffectAllByCategory(a.removeCategory)
	}
	target.ExecuteStateCommand(ToStunning)
	return true
}

func (a *StunAction) Release(e *Effect, user, target Target, level int, scale float64) {
	target.ExecuteStateCommand(ToDefault)
}

func (a *StunAction) Clone() Action {
	c := *a
	return &c
}

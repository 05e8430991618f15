package effect

import "github.com/udisondev/skillcore/internal/params"

// RemoveEffectByCategoryAction removes effects of a category from the target.
// Params: "category", "all" (remove every match instead of the first).
type RemoveEffectByCategoryAction struct {
	BaseAction
	category  string
	removeAll bool
}

func NewRemoveEffectByCategoryAction(p params.Params) Action {
	return &RemoveEffectByCategoryAction{
		category:  p.String("category", ""),
		removeAll: p.Bool("all", false),
	}
}

func (a *RemoveEffectByCategoryAction) Apply(e *Effect, user, target Target, level, stack int, scale float64) bool {
	if a.removeAll {
		target.Effects().RemoveEffectAllByCategory(a.category)
	} else {
		target.Effects().RemoveEffectByCategory(a.category)
	}
	return true
}

func (a *RemoveEffectByCategoryAction) Keywords(e *Effect) map[string]string {
	return map[string]string{"category": a.category}
}

func (a *RemoveEffectByCategoryAction) Clone() Action {
	c := *a
	return &c
}

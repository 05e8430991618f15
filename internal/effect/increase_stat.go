package effect

import (
	"github.com/udisondev/skillcore/internal/params"
	"github.com/udisondev/skillcore/internal/textreplace"
)

// IncreaseStatAction raises a target stat while the effect runs.
//
// As a bonus (the default) the value is stored in the stat's bonus overlay
// under the action itself, so re-applying replaces it. Otherwise the stat's
// default value is raised and the raised amount is remembered for undo.
//
// Params: "stat", "value", "bonus_stat", "factor", "per_level", "per_stack",
// "bonus" (default true), "undo" (default true).
type IncreaseStatAction struct {
	BaseAction
	stat         string
	defaultValue float64
	bonusStat    string
	factor       float64
	perLevel     float64
	perStack     float64
	isBonus      bool
	undo         bool

	totalValue float64
}

func NewIncreaseStatAction(p params.Params) Action {
	return &IncreaseStatAction{
		stat:         p.String("stat", ""),
		defaultValue: p.Float("value", 0),
		bonusStat:    p.String("bonus_stat", ""),
		factor:       p.Float("factor", 0),
		perLevel:     p.Float("per_level", 0),
		perStack:     p.Float("per_stack", 0),
		isBonus:      p.Bool("bonus", true),
		undo:         p.Bool("undo", true),
	}
}

func (a *IncreaseStatAction) Stat() string { return a.stat }

func (a *IncreaseStatAction) value(e *Effect) float64 {
	return a.defaultValue + float64(e.DataBonusLevel())*a.perLevel
}

// TotalValue returns the amount one apply adds at stack with scale.
func (a *IncreaseStatAction) TotalValue(e *Effect, user Target, stack int, scale float64) float64 {
	total := a.value(e) + float64(stack-1)*a.perStack
	total += userStatBonus(user, a.bonusStat, a.factor)
	return total * scale
}

func (a *IncreaseStatAction) Apply(e *Effect, user, target Target, level, stack int, scale float64) bool {
	stats := target.Stats()
	if !stats.Has(a.stat) {
		return true
	}
	a.totalValue = a.TotalValue(e, user, stack, scale)
	if a.isBonus {
		stats.SetBonus(a.stat, a, a.totalValue)
	} else {
		stats.IncreaseDefaultValue(a.stat, a.totalValue)
	}
	return true
}

func (a *IncreaseStatAction) Release(e *Effect, user, target Target, level int, scale float64) {
	stats := target.Stats()
	if !a.undo || !stats.Has(a.stat) {
		return
	}
	if a.isBonus {
		stats.RemoveBonus(a.stat, a)
	} else {
		stats.IncreaseDefaultValue(a.stat, -a.totalValue)
	}
}

func (a *IncreaseStatAction) OnEffectStackChanged(e *Effect, user, target Target, level, stack int, scale float64) {
	if !a.isBonus {
		a.Release(e, user, target, level, scale)
	}
	a.Apply(e, user, target, level, stack, scale)
}

func (a *IncreaseStatAction) Keywords(e *Effect) map[string]string {
	kw := map[string]string{
		"stat":               statDisplayName(e.User(), a.stat),
		"defaultValue":       textreplace.Number(a.value(e)),
		"bonusValueStat":     statDisplayName(e.User(), a.bonusStat),
		"bonusValueFactor":   textreplace.Number(a.factor*100) + "%",
		"bonusValuePerLevel": textreplace.Number(a.perLevel),
		"bonusValuePerStack": textreplace.Number(a.perStack),
	}
	if e.Owner() != nil && e.User() != nil {
		kw["totalValue"] = textreplace.Number(a.TotalValue(e, e.User(), e.CurrentStack(), e.Scale()))
	}
	return kw
}

func (a *IncreaseStatAction) Clone() Action {
	c := *a
	c.totalValue = 0
	return &c
}

package effect

import (
	"github.com/udisondev/skillcore/internal/params"
	"github.com/udisondev/skillcore/internal/textreplace"
)

// DealDamageAction damages the target once per apply.
//
// total = (damage + DataBonusLevel*per_level + (stack-1)*per_stack
// + user[stat]*factor) * scale
//
// Params: "damage", "stat" (user stat code, optional), "factor", "per_level",
// "per_stack".
type DealDamageAction struct {
	BaseAction
	defaultDamage float64
	bonusStat     string
	factor        float64
	perLevel      float64
	perStack      float64
}

func NewDealDamageAction(p params.Params) Action {
	return &DealDamageAction{
		defaultDamage: p.Float("damage", 0),
		bonusStat:     p.String("stat", ""),
		factor:        p.Float("factor", 0),
		perLevel:      p.Float("per_level", 0),
		perStack:      p.Float("per_stack", 0),
	}
}

func (a *DealDamageAction) defaultValue(e *Effect) float64 {
	return a.defaultDamage + float64(e.DataBonusLevel())*a.perLevel
}

// TotalDamage returns the damage one apply deals at stack with scale.
func (a *DealDamageAction) TotalDamage(e *Effect, user Target, stack int, scale float64) float64 {
	total := a.defaultValue(e) + float64(stack-1)*a.perStack
	total += userStatBonus(user, a.bonusStat, a.factor)
	return total * scale
}

func (a *DealDamageAction) Apply(e *Effect, user, target Target, level, stack int, scale float64) bool {
	target.TakeDamage(user, e, a.TotalDamage(e, user, stack, scale))
	return true
}

func (a *DealDamageAction) Keywords(e *Effect) map[string]string {
	kw := map[string]string{
		"defaultDamage":         textreplace.Number(a.defaultValue(e)),
		"bonusDamageStat":       statDisplayName(e.User(), a.bonusStat),
		"bonusDamageStatFactor": textreplace.Number(a.factor*100) + "%",
		"bonusDamagePerLevel":   textreplace.Number(a.perLevel),
		"bonusDamagePerStack":   textreplace.Number(a.perStack),
	}
	if e.User() != nil {
		kw["totalDamage"] = textreplace.Number(a.TotalDamage(e, e.User(), e.CurrentStack(), e.Scale()))
	}
	return kw
}

func (a *DealDamageAction) Clone() Action {
	c := *a
	return &c
}

// userStatBonus returns user[code]*factor, or 0 when the stat is absent.
func userStatBonus(user Target, code string, factor float64) float64 {
	if code == "" || user == nil {
		return 0
	}
	s, ok := user.Stats().TryGet(code)
	if !ok {
		return 0
	}
	return s.Value() * factor
}

func statDisplayName(owner Target, code string) string {
	if code == "" {
		return ""
	}
	if owner != nil {
		if s, ok := owner.Stats().TryGet(code); ok {
			return s.DisplayName()
		}
	}
	return code
}

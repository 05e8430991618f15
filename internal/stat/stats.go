package stat

import (
	"fmt"
)

// Override configures one stat of an entity. When UseOverride is set the
// cloned stat starts from Default instead of the template default.
type Override struct {
	Stat        *Stat
	UseOverride bool
	Default     float64
}

// CreateStat clones the template and applies the override.
func (o Override) CreateStat() *Stat {
	s := o.Stat.Clone()
	if o.UseOverride {
		s.SetDefaultValue(o.Default)
	}
	return s
}

// Stats is the per-entity stat set. Stats are looked up by code name.
type Stats struct {
	ordered []*Stat
	byCode  map[string]*Stat

	hp        *Stat
	skillCost *Stat
}

// NewStats builds a stat set from overrides. hpCode and skillCostCode name the
// stats exposed through HP and SkillCost; an empty code leaves the handle nil.
func NewStats(overrides []Override, hpCode, skillCostCode string) *Stats {
	s := &Stats{
		ordered: make([]*Stat, 0, len(overrides)),
		byCode:  make(map[string]*Stat, len(overrides)),
	}
	for _, o := range overrides {
		st := o.CreateStat()
		if _, dup := s.byCode[st.CodeName()]; dup {
			panic(fmt.Sprintf("stat: duplicate stat %q", st.CodeName()))
		}
		s.ordered = append(s.ordered, st)
		s.byCode[st.CodeName()] = st
	}
	if hpCode != "" {
		s.hp = s.byCode[hpCode]
	}
	if skillCostCode != "" {
		s.skillCost = s.byCode[skillCostCode]
	}
	return s
}

// HP returns the hit point stat, or nil.
func (s *Stats) HP() *Stat { return s.hp }

// SkillCost returns the stat spent by skills, or nil.
func (s *Stats) SkillCost() *Stat { return s.skillCost }

// All returns the stats in declaration order.
func (s *Stats) All() []*Stat { return s.ordered }

// Get returns the stat with the given code. Panics if it is missing.
func (s *Stats) Get(code string) *Stat {
	st, ok := s.byCode[code]
	if !ok {
		panic(fmt.Sprintf("stat: unknown stat %q", code))
	}
	return st
}

// TryGet returns the stat with the given code.
func (s *Stats) TryGet(code string) (*Stat, bool) {
	st, ok := s.byCode[code]
	return st, ok
}

// Has reports whether the set contains code.
func (s *Stats) Has(code string) bool {
	_, ok := s.byCode[code]
	return ok
}

func (s *Stats) GetValue(code string) float64        { return s.Get(code).Value() }
func (s *Stats) GetDefaultValue(code string) float64 { return s.Get(code).DefaultValue() }
func (s *Stats) SetDefaultValue(code string, v float64) {
	s.Get(code).SetDefaultValue(v)
}
func (s *Stats) IncreaseDefaultValue(code string, delta float64) {
	s.Get(code).IncreaseDefaultValue(delta)
}

func (s *Stats) SetBonusValue(code string, key, subKey any, v float64) {
	s.Get(code).SetBonusValue(key, subKey, v)
}
func (s *Stats) SetBonus(code string, key any, v float64) { s.Get(code).SetBonus(key, v) }
func (s *Stats) GetBonusValue(code string, key, subKey any) float64 {
	return s.Get(code).GetBonusValue(key, subKey)
}
func (s *Stats) GetBonus(code string, key any) float64 { return s.Get(code).GetBonus(key) }
func (s *Stats) RemoveBonusValue(code string, key, subKey any) bool {
	return s.Get(code).RemoveBonusValue(key, subKey)
}
func (s *Stats) RemoveBonus(code string, key any) bool { return s.Get(code).RemoveBonus(key) }
func (s *Stats) ContainsBonusValue(code string, key, subKey any) bool {
	return s.Get(code).ContainsBonusValue(key, subKey)
}
func (s *Stats) ContainsBonus(code string, key any) bool { return s.Get(code).ContainsBonus(key) }

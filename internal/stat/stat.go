// Package stat implements numeric entity attributes with keyed bonus overlays.
package stat

import (
	"github.com/udisondev/skillcore/internal/mathx"
)

// Definition describes a stat template.
type Definition struct {
	ID          int     `yaml:"id"`
	CodeName    string  `yaml:"code"`
	DisplayName string  `yaml:"name"`
	Description string  `yaml:"description"`
	IsPercent   bool    `yaml:"percent"`
	Min         float64 `yaml:"min"`
	Max         float64 `yaml:"max"`
	Default     float64 `yaml:"default"`
}

// ValueChangedFunc observes a change of a stat's effective value.
type ValueChangedFunc func(s *Stat, current, prev float64)

// noSubKey is the sub-key used by the single-key bonus helpers.
const noSubKey = ""

// Stat is a named numeric attribute.
//
// Value = clamp(Default + Bonus, Min, Max). Bonus is the sum of a two-level map:
// key identifies the bonus source (an effect action, an item), sub-key names a
// component of that source.
type Stat struct {
	def Definition

	defaultValue float64
	bonusValue   float64
	bonuses      map[any]map[any]float64

	onValueChanged []ValueChangedFunc
	onValueMax     []ValueChangedFunc
	onValueMin     []ValueChangedFunc
}

// New creates a stat from its definition.
func New(def Definition) *Stat {
	s := &Stat{
		def:     def,
		bonuses: make(map[any]map[any]float64),
	}
	s.defaultValue = mathx.Clamp(def.Default, def.Min, def.Max)
	return s
}

// Clone returns a fresh stat with the same definition and default value.
// Bonuses and observers are not copied.
func (s *Stat) Clone() *Stat {
	c := New(s.def)
	c.defaultValue = s.defaultValue
	return c
}

func (s *Stat) ID() int             { return s.def.ID }
func (s *Stat) CodeName() string    { return s.def.CodeName }
func (s *Stat) DisplayName() string { return s.def.DisplayName }
func (s *Stat) IsPercent() bool     { return s.def.IsPercent }
func (s *Stat) Definition() Definition {
	return s.def
}

func (s *Stat) MinValue() float64 { return s.def.Min }
func (s *Stat) MaxValue() float64 { return s.def.Max }

// SetMaxValue changes the upper bound. The default value is not re-clamped.
func (s *Stat) SetMaxValue(v float64) { s.def.Max = v }

// SetMinValue changes the lower bound. The default value is not re-clamped.
func (s *Stat) SetMinValue(v float64) { s.def.Min = v }

// DefaultValue returns the mutable base value.
func (s *Stat) DefaultValue() float64 { return s.defaultValue }

// SetDefaultValue sets the base value clamped into [Min, Max].
func (s *Stat) SetDefaultValue(v float64) {
	prev := s.Value()
	s.defaultValue = mathx.Clamp(v, s.def.Min, s.def.Max)
	s.notify(s.Value(), prev)
}

// IncreaseDefaultValue adds delta to the base value.
func (s *Stat) IncreaseDefaultValue(delta float64) {
	s.SetDefaultValue(s.defaultValue + delta)
}

// BonusValue returns the sum of all bonus leaves.
func (s *Stat) BonusValue() float64 { return s.bonusValue }

// Value returns the effective value.
func (s *Stat) Value() float64 {
	return mathx.Clamp(s.defaultValue+s.bonusValue, s.def.Min, s.def.Max)
}

func (s *Stat) IsMax() bool { return mathx.Approximately(s.Value(), s.def.Max) }
func (s *Stat) IsMin() bool { return mathx.Approximately(s.Value(), s.def.Min) }

// OnValueChanged registers an observer fired when Value changes.
func (s *Stat) OnValueChanged(fn ValueChangedFunc) { s.onValueChanged = append(s.onValueChanged, fn) }

// OnValueMax registers an observer fired when Value reaches Max.
func (s *Stat) OnValueMax(fn ValueChangedFunc) { s.onValueMax = append(s.onValueMax, fn) }

// OnValueMin registers an observer fired when Value reaches Min.
func (s *Stat) OnValueMin(fn ValueChangedFunc) { s.onValueMin = append(s.onValueMin, fn) }

// SetBonusValue stores value under (key, subKey), replacing any previous leaf.
func (s *Stat) SetBonusValue(key, subKey any, value float64) {
	prev := s.Value()

	leaves, ok := s.bonuses[key]
	if !ok {
		leaves = make(map[any]float64)
		s.bonuses[key] = leaves
	}
	if old, ok := leaves[subKey]; ok {
		s.bonusValue -= old
	}
	leaves[subKey] = value
	s.bonusValue += value

	s.notify(s.Value(), prev)
}

// SetBonus stores value under key with no sub-key.
func (s *Stat) SetBonus(key any, value float64) {
	s.SetBonusValue(key, noSubKey, value)
}

// GetBonus returns the sum of all leaves stored under key.
func (s *Stat) GetBonus(key any) float64 {
	var sum float64
	for _, v := range s.bonuses[key] {
		sum += v
	}
	return sum
}

// GetBonusValue returns the leaf at (key, subKey), or 0.
func (s *Stat) GetBonusValue(key, subKey any) float64 {
	return s.bonuses[key][subKey]
}

// RemoveBonus removes every leaf stored under key.
// Returns false if key is unknown.
func (s *Stat) RemoveBonus(key any) bool {
	leaves, ok := s.bonuses[key]
	if !ok {
		return false
	}

	prev := s.Value()
	for _, v := range leaves {
		s.bonusValue -= v
	}
	delete(s.bonuses, key)
	s.notify(s.Value(), prev)
	return true
}

// RemoveBonusValue removes the leaf at (key, subKey).
// Returns false if the leaf is unknown.
func (s *Stat) RemoveBonusValue(key, subKey any) bool {
	leaves, ok := s.bonuses[key]
	if !ok {
		return false
	}
	v, ok := leaves[subKey]
	if !ok {
		return false
	}

	prev := s.Value()
	delete(leaves, subKey)
	if len(leaves) == 0 {
		delete(s.bonuses, key)
	}
	s.bonusValue -= v
	s.notify(s.Value(), prev)
	return true
}

// ContainsBonus reports whether key has any leaves.
func (s *Stat) ContainsBonus(key any) bool {
	_, ok := s.bonuses[key]
	return ok
}

// ContainsBonusValue reports whether the leaf at (key, subKey) exists.
func (s *Stat) ContainsBonusValue(key, subKey any) bool {
	_, ok := s.bonuses[key][subKey]
	return ok
}

func (s *Stat) notify(current, prev float64) {
	if mathx.Approximately(current, prev) {
		return
	}
	for _, fn := range s.onValueChanged {
		fn(s, current, prev)
	}
	switch {
	case mathx.Approximately(current, s.def.Max):
		for _, fn := range s.onValueMax {
			fn(s, s.def.Max, prev)
		}
	case mathx.Approximately(current, s.def.Min):
		for _, fn := range s.onValueMin {
			fn(s, s.def.Min, prev)
		}
	}
}

package skill

import (
	"fmt"

	"github.com/udisondev/skillcore/internal/params"
	"github.com/udisondev/skillcore/internal/stat"
)

// Cost is a resource an entity pays to acquire, level up or use a skill.
type Cost interface {
	Description() string
	HasEnoughCost(e *Entity) bool
	UseCost(e *Entity)
	// UseDeltaCost pays the per-second cost for dt seconds (toggle upkeep).
	UseDeltaCost(e *Entity, dt float64)
	Value(e *Entity) float64
	Clone() Cost
}

// StatCost pays with the default value of a stat.
type StatCost struct {
	stat  string
	value stat.ScaleFloat
}

// NewStatCost creates a StatCost.
// Params: "stat" (stat code), "value", "scale_stat" (value is scaled by it).
func NewStatCost(p params.Params) (Cost, error) {
	code := p.String("stat", "")
	if code == "" {
		return nil, fmt.Errorf("stat cost: missing stat")
	}
	return &StatCost{
		stat: code,
		value: stat.ScaleFloat{
			Default: p.Float("value", 0),
			Stat:    p.String("scale_stat", ""),
		},
	}, nil
}

func (c *StatCost) Stat() string { return c.stat }

func (c *StatCost) Description() string { return c.stat }

// HasEnoughCost reports false when the entity lacks the stat.
func (c *StatCost) HasEnoughCost(e *Entity) bool {
	st, ok := e.Stats().TryGet(c.stat)
	if !ok {
		return false
	}
	return st.Value() >= c.value.GetValue(e.Stats())
}

func (c *StatCost) UseCost(e *Entity) {
	e.Stats().IncreaseDefaultValue(c.stat, -c.value.GetValue(e.Stats()))
}

func (c *StatCost) UseDeltaCost(e *Entity, dt float64) {
	e.Stats().IncreaseDefaultValue(c.stat, -c.value.GetValue(e.Stats())*dt)
}

func (c *StatCost) Value(e *Entity) float64 { return c.value.GetValue(e.Stats()) }

func (c *StatCost) Clone() Cost {
	cp := *c
	return &cp
}

func hasEnoughCosts(costs []Cost, e *Entity) bool {
	for _, c := range costs {
		if !c.HasEnoughCost(e) {
			return false
		}
	}
	return true
}

func cloneCosts(costs []Cost) []Cost {
	if costs == nil {
		return nil
	}
	out := make([]Cost, len(costs))
	for i, c := range costs {
		out[i] = c.Clone()
	}
	return out
}

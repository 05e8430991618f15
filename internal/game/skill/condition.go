package skill

import (
	"fmt"

	"github.com/udisondev/skillcore/internal/params"
	"github.com/udisondev/skillcore/internal/textreplace"
)

// EntityCondition gates acquisition and level-up.
type EntityCondition interface {
	Description() string
	IsPass(e *Entity) bool
	Clone() EntityCondition
}

// Condition gates the use of a skill.
type Condition interface {
	IsPass(s *Skill) bool
	Clone() Condition
}

// RequireStatCondition passes when the entity's stat reaches a value.
// An entity without the stat fails.
type RequireStatCondition struct {
	stat string
	need float64
}

// NewRequireStatCondition creates a RequireStatCondition.
// Params: "stat", "value".
func NewRequireStatCondition(p params.Params) (EntityCondition, error) {
	code := p.String("stat", "")
	if code == "" {
		return nil, fmt.Errorf("require stat condition: missing stat")
	}
	return &RequireStatCondition{stat: code, need: p.Float("value", 0)}, nil
}

func (c *RequireStatCondition) Description() string {
	return fmt.Sprintf("Lv.%s", textreplace.Number(c.need))
}

func (c *RequireStatCondition) IsPass(e *Entity) bool {
	st, ok := e.Stats().TryGet(c.stat)
	return ok && st.Value() >= c.need
}

func (c *RequireStatCondition) Clone() EntityCondition {
	cp := *c
	return &cp
}

// IsEntityReadyCondition passes when the owner is in its default state and
// runs no skill that blocks another one. Toggles, passives and input-driven
// skills waiting in action do not block.
type IsEntityReadyCondition struct{}

func NewIsEntityReadyCondition(params.Params) (Condition, error) {
	return &IsEntityReadyCondition{}, nil
}

func (c *IsEntityReadyCondition) IsPass(s *Skill) bool {
	owner := s.Owner()
	for _, running := range owner.Skills().RunningSkills() {
		if running.IsToggleType() || running.IsPassive() {
			continue
		}
		if running.IsInState(StateInAction) && running.ExecutionType() == ExecutionInput {
			continue
		}
		return false
	}
	return owner.IsInState(EntityStateDefault)
}

func (c *IsEntityReadyCondition) Clone() Condition { return &IsEntityReadyCondition{} }

// OwnerCondition uses an entity condition as a skill condition by evaluating
// it against the skill's owner.
type OwnerCondition struct {
	EntityCondition
}

func (c OwnerCondition) IsPass(s *Skill) bool { return c.EntityCondition.IsPass(s.Owner()) }

func (c OwnerCondition) Clone() Condition {
	return OwnerCondition{EntityCondition: c.EntityCondition.Clone()}
}

func passEntityConditions(conds []EntityCondition, e *Entity) bool {
	for _, c := range conds {
		if !c.IsPass(e) {
			return false
		}
	}
	return true
}

func passConditions(conds []Condition, s *Skill) bool {
	for _, c := range conds {
		if !c.IsPass(s) {
			return false
		}
	}
	return true
}

func cloneEntityConditions(conds []EntityCondition) []EntityCondition {
	if conds == nil {
		return nil
	}
	out := make([]EntityCondition, len(conds))
	for i, c := range conds {
		out[i] = c.Clone()
	}
	return out
}

func cloneConditions(conds []Condition) []Condition {
	if conds == nil {
		return nil
	}
	out := make([]Condition, len(conds))
	for i, c := range conds {
		out[i] = c.Clone()
	}
	return out
}

package effect

import (
	"strconv"

	"github.com/udisondev/skillcore/internal/textreplace"
)

// Action implements what an effect actually does.
//
// Apply returns false when the action could not be applied this tick; the
// effect then retries on the next update without counting the attempt.
type Action interface {
	Start(e *Effect, user, target Target, level int, scale float64)
	Apply(e *Effect, user, target Target, level, stack int, scale float64) bool
	Release(e *Effect, user, target Target, level int, scale float64)
	// OnEffectStackChanged lets stack-scaled actions refresh their values.
	OnEffectStackChanged(e *Effect, user, target Target, level, stack int, scale float64)
	// Keywords returns description substitutions, or nil.
	Keywords(e *Effect) map[string]string
	Clone() Action
}

// BaseAction provides no-op hooks. Concrete actions embed it.
type BaseAction struct{}

func (BaseAction) Start(e *Effect, user, target Target, level int, scale float64)   {}
func (BaseAction) Release(e *Effect, user, target Target, level int, scale float64) {}
func (BaseAction) OnEffectStackChanged(e *Effect, user, target Target, level, stack int, scale float64) {
}
func (BaseAction) Keywords(e *Effect) map[string]string { return nil }

// BuildActionDescription fills $[effectAction.key.effectIndex] placeholders, or
// $[effectAction.key.stackActionIndex.stack.effectIndex] for stack actions
// (stack > 0).
func BuildActionDescription(a Action, e *Effect, description string, stackActionIndex, stack, effectIndex int) string {
	keywords := a.Keywords(e)
	if keywords == nil {
		return description
	}
	suffix := strconv.Itoa(effectIndex)
	if stack != 0 {
		suffix = strconv.Itoa(stackActionIndex) + "." + strconv.Itoa(stack) + "." + suffix
	}
	return textreplace.ReplaceAffixed(description, "effectAction", keywords, suffix)
}

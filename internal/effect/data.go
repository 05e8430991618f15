package effect

import (
	"github.com/udisondev/skillcore/internal/custom"
	"github.com/udisondev/skillcore/internal/stat"
)

// Type classifies an effect for UI and dispel logic.
type Type int

const (
	TypeNone Type = iota
	TypeBuff
	TypeDebuff
)

func (t Type) String() string {
	switch t {
	case TypeBuff:
		return "buff"
	case TypeDebuff:
		return "debuff"
	default:
		return "none"
	}
}

// RemoveDuplicateTarget selects which of two duplicate effects is removed when
// duplicates are not allowed.
type RemoveDuplicateTarget int

const (
	RemoveOld RemoveDuplicateTarget = iota
	RemoveNew
)

// FinishOption decides when a running effect is finished.
type FinishOption int

const (
	// FinishWhenApplyCompleted finishes after the last apply, or when the
	// duration ends, whichever comes first.
	FinishWhenApplyCompleted FinishOption = iota
	// FinishWhenDurationEnded finishes only when the duration ends.
	FinishWhenDurationEnded
)

// Data is the per-level record of an effect.
type Data struct {
	Level        int
	MaxStack     int
	StackActions []*StackAction
	Action       Action
	FinishOption FinishOption
	// ApplyAllWhenDurationExpires drains the remaining applies when the
	// duration ends.
	ApplyAllWhenDurationExpires bool
	Duration                    stat.ScaleFloat
	// ApplyCount of 0 means unlimited.
	ApplyCount int
	// ApplyCycle of 0 with ApplyCount > 1 spreads the applies over Duration.
	ApplyCycle    float64
	CustomActions []custom.Action
}

func (d Data) clone() Data {
	c := d
	if d.Action != nil {
		c.Action = d.Action.Clone()
	}
	if d.StackActions != nil {
		c.StackActions = make([]*StackAction, len(d.StackActions))
		for i, sa := range d.StackActions {
			c.StackActions[i] = sa.Clone()
		}
	}
	c.CustomActions = custom.CloneAll(d.CustomActions)
	return c
}

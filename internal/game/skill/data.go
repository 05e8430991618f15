package skill

import (
	"maps"

	"github.com/udisondev/skillcore/internal/custom"
	"github.com/udisondev/skillcore/internal/effect"
	"github.com/udisondev/skillcore/internal/stat"
	"github.com/udisondev/skillcore/internal/target"
)

// EffectSelector picks an effect template and the level it is created at.
type EffectSelector struct {
	Level  int
	Effect *effect.Effect
}

// CreateEffect clones the template and sets it up for s.
func (sel EffectSelector) CreateEffect(s *Skill) *effect.Effect {
	var user effect.Target
	if owner := s.Owner(); owner != nil {
		user = owner
	}
	e := sel.Effect.Clone()
	e.Setup(s, user, sel.Level, 1)
	return e
}

// Data is the per-level configuration of a skill. A skill uses the record
// with the greatest Level not above its own level.
type Data struct {
	Level int

	LevelUpConditions []EntityCondition
	LevelUpCosts      []Cost

	PrecedingAction PrecedingAction
	Action          Action

	RunningFinishOption RunningFinishOption
	// Duration 0 means timeless.
	Duration float64
	// ApplyCount 0 means unlimited.
	ApplyCount int
	// ApplyCycle 0 with ApplyCount > 1 spreads applies evenly over Duration.
	ApplyCycle float64
	Cooldown   stat.ScaleFloat

	Searcher *target.Searcher
	Costs    []Cost

	UseCast  bool
	CastTime stat.ScaleFloat

	UseCharge           bool
	ChargeFinishAction  ChargeFinishAction
	ChargeDuration      float64
	ChargeTime          float64
	NeedChargeTimeToUse float64
	StartChargePower    float64

	EffectSelectors []EffectSelector

	InActionFinishOption InActionFinishOption
	CastParam            AnimatorParam
	ChargeParam          AnimatorParam
	PrecedingParam       AnimatorParam
	ActionParam          AnimatorParam

	CustomActions map[CustomActionType][]custom.Action

	// UseApplyData enables per-apply overrides, see ApplyData.
	UseApplyData bool
	ApplyDatas   []ApplyData
}

// clone copies the record with fresh per-instance state: actions, costs,
// conditions, the searcher and custom actions are cloned. Effect templates
// are shared; CreateEffect clones them.
func (d Data) clone() Data {
	c := d
	c.LevelUpConditions = cloneEntityConditions(d.LevelUpConditions)
	c.LevelUpCosts = cloneCosts(d.LevelUpCosts)
	if d.PrecedingAction != nil {
		c.PrecedingAction = d.PrecedingAction.Clone()
	}
	if d.Action != nil {
		c.Action = d.Action.Clone()
	}
	if d.Searcher != nil {
		c.Searcher = d.Searcher.Clone()
	}
	c.Costs = cloneCosts(d.Costs)
	if d.EffectSelectors != nil {
		c.EffectSelectors = append([]EffectSelector(nil), d.EffectSelectors...)
	}
	if d.CustomActions != nil {
		c.CustomActions = make(map[CustomActionType][]custom.Action, len(d.CustomActions))
		for k, v := range maps.All(d.CustomActions) {
			c.CustomActions[k] = custom.CloneAll(v)
		}
	}
	c.ApplyDatas = make([]ApplyData, len(d.ApplyDatas))
	for i, ad := range d.ApplyDatas {
		c.ApplyDatas[i] = ad.clone()
	}
	return c
}

// Definition describes a skill template.
type Definition struct {
	ID          int
	CodeName    string
	DisplayName string
	Description string
	Categories  []string

	Type                Type
	UseType             UseType
	ExecutionType       ExecutionType
	ApplyType           ApplyType
	NeedSelectionResult NeedSelectionResult
	SelectionTiming     SelectionTiming
	SearchTiming        SearchTiming

	AcquisitionConditions []EntityCondition
	AcquisitionCosts      []Cost
	UseConditions         []Condition

	// AllowLevelExceedDatas lets MaxLevel go past the highest data level.
	AllowLevelExceedDatas bool
	MaxLevel              int
	DefaultLevel          int
	Datas                 []Data
}

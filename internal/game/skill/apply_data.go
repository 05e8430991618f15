package skill

import (
	"github.com/udisondev/skillcore/internal/custom"
	"github.com/udisondev/skillcore/internal/effect"
)

// ApplyData overrides what a single apply does. A combo skill, for example,
// hits with different effects and animations on its first, second and third
// apply. The override for an apply is the record whose ApplyIndex equals the
// current apply count, otherwise the closest lower index, otherwise the first
// record.
type ApplyData struct {
	ApplyIndex int
	// EffectSelectors replace the skill's effects for this apply when set.
	EffectSelectors []EffectSelector
	// ActionParam is set on the owner's animator for this apply when valid.
	ActionParam AnimatorParam
	// CustomActions replace the action-timing custom actions when set.
	CustomActions []custom.Action
}

func (d ApplyData) clone() ApplyData {
	c := d
	if d.EffectSelectors != nil {
		c.EffectSelectors = append([]EffectSelector(nil), d.EffectSelectors...)
	}
	c.CustomActions = custom.CloneAll(d.CustomActions)
	return c
}

// CurrentApplyData returns the override for the current apply, or nil when
// per-apply overrides are disabled.
func (s *Skill) CurrentApplyData() *ApplyData {
	d := s.data()
	if !d.UseApplyData || len(d.ApplyDatas) == 0 {
		return nil
	}
	closest := -1
	for i := range d.ApplyDatas {
		idx := d.ApplyDatas[i].ApplyIndex
		if idx == s.currentApplyCount {
			return &d.ApplyDatas[i]
		}
		if idx <= s.currentApplyCount && (closest < 0 || idx > d.ApplyDatas[closest].ApplyIndex) {
			closest = i
		}
	}
	if closest >= 0 {
		return &d.ApplyDatas[closest]
	}
	return &d.ApplyDatas[0]
}

// CurrentActionParam returns the animator parameter of the current apply.
func (s *Skill) CurrentActionParam() AnimatorParam {
	if ad := s.CurrentApplyData(); ad != nil && ad.ActionParam.IsValid() {
		return ad.ActionParam
	}
	return s.data().ActionParam
}

// beginApplyData activates the override of the current apply and returns a
// func undoing it.
func (s *Skill) beginApplyData(ad *ApplyData) (end func()) {
	if ad.ActionParam.IsValid() {
		if animator := s.owner.Animator(); animator != nil {
			switch ad.ActionParam.Kind {
			case ParamTrigger:
				animator.SetTrigger(ad.ActionParam.Name)
			case ParamBool:
				animator.SetBool(ad.ActionParam.Name, true)
			}
		}
	}

	if len(ad.EffectSelectors) == 0 {
		return func() {}
	}
	effects := make([]*effect.Effect, len(ad.EffectSelectors))
	for i, sel := range ad.EffectSelectors {
		effects[i] = sel.CreateEffect(s)
		effects[i].SetScale(s.currentChargePower)
	}
	s.applyEffects = effects
	return func() { s.applyEffects = nil }
}

func (s *Skill) runApplyCustomActions(ad *ApplyData) {
	if ad != nil && len(ad.CustomActions) > 0 {
		custom.RunAll(ad.CustomActions, s)
		return
	}
	s.RunCustomActions(CustomOnAction)
}

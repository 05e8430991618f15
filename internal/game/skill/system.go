package skill

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/udisondev/skillcore/internal/effect"
	"github.com/udisondev/skillcore/internal/fsm"
	"github.com/udisondev/skillcore/internal/model"
	"github.com/udisondev/skillcore/internal/target"
)

type (
	SystemSkillFunc             func(sys *System, s *Skill)
	SystemSkillStateChangedFunc func(sys *System, s *Skill, next, prev fsm.StateID, layer int)
	SystemSkillAppliedFunc      func(sys *System, s *Skill, currentApplyCount int)
	SystemTargetSelectionFunc   func(sys *System, s *Skill, searcher *target.Searcher, result target.SelectionResult)
	SystemEffectFunc            func(sys *System, e *effect.Effect)
	SystemEffectCountFunc       func(sys *System, e *effect.Effect, current, prev int)
)

// System owns the skills and the running effects of one entity.
//
// Registered skills are clones set up for the owner. Effects applied to the
// owner are cloned too; removal is deferred, a removed effect is released at
// once and dropped on the next Update.
type System struct {
	owner *Entity

	ownSkills      []*Skill
	runningSkills  []*Skill
	runningEffects []*effect.Effect
	destroyQueue   []*effect.Effect
	reservedSkill  *Skill
	autoAcquire    []*SlotNode
	unsubscribes   map[*Skill][]func()

	onSkillRegistered      observers[SystemSkillFunc]
	onSkillUnregistered    observers[SystemSkillFunc]
	onSkillStateChanged    observers[SystemSkillStateChangedFunc]
	onSkillActivated       observers[SystemSkillFunc]
	onSkillDeactivated     observers[SystemSkillFunc]
	onSkillUsed            observers[SystemSkillFunc]
	onSkillApplied         observers[SystemSkillAppliedFunc]
	onSkillCanceled        observers[SystemSkillFunc]
	onSkillTargetSelection observers[SystemTargetSelectionFunc]
	onEffectStarted        observers[SystemEffectFunc]
	onEffectApplied        observers[SystemEffectCountFunc]
	onEffectReleased       observers[SystemEffectFunc]
	onEffectStackChanged   observers[SystemEffectCountFunc]
}

// NewSystem creates an empty system for owner.
func NewSystem(owner *Entity) *System {
	if owner == nil {
		panic("skill: system with nil owner")
	}
	return &System{
		owner:        owner,
		unsubscribes: make(map[*Skill][]func()),
	}
}

// Setup registers the default skills without cost and walks tree: auto
// acquired slots are acquired now when possible, otherwise on a later
// Update once they become acquirable. Skills already owned are skipped.
func (sys *System) Setup(defaults []*Skill, tree *Tree) {
	for _, s := range defaults {
		if sys.Find(s) == nil {
			sys.RegisterWithoutCost(s, 0)
		}
	}
	if tree == nil {
		return
	}
	for _, node := range tree.SlotNodes() {
		if !node.AutoAcquire || sys.Find(node.Skill) != nil {
			continue
		}
		if node.IsSkillAcquirable(sys.owner) {
			node.AcquireSkill(sys.owner)
		} else {
			sys.autoAcquire = append(sys.autoAcquire, node)
		}
	}
}

func (sys *System) Owner() *Entity          { return sys.owner }
func (sys *System) OwnSkills() []*Skill     { return sys.ownSkills }
func (sys *System) RunningSkills() []*Skill { return sys.runningSkills }
func (sys *System) ReservedSkill() *Skill   { return sys.reservedSkill }

// RunningEffects returns the effects not yet released.
func (sys *System) RunningEffects() []*effect.Effect {
	out := make([]*effect.Effect, 0, len(sys.runningEffects))
	for _, e := range sys.runningEffects {
		if !e.IsReleased() {
			out = append(out, e)
		}
	}
	return out
}

// Registration

// RegisterWithoutCost registers a clone of s set up at level, or at its
// default level when level is 0. Panics if a skill with the same ID is
// already registered.
func (sys *System) RegisterWithoutCost(s *Skill, level int) *Skill {
	if sys.FindByID(s.ID()) != nil {
		panic(fmt.Sprintf("skill: %q already registered on %s", s.CodeName(), sys.owner))
	}

	clone := s.Clone()
	if level > 0 {
		clone.Setup(sys.owner, level)
	} else {
		clone.SetupDefault(sys.owner)
	}

	sys.unsubscribes[clone] = []func(){
		clone.OnStateChanged(func(s *Skill, next, prev fsm.StateID, layer int) {
			sys.onSkillStateChanged.each(func(fn SystemSkillStateChangedFunc) { fn(sys, s, next, prev, layer) })
		}),
		clone.OnActivated(sys.skillActivated),
		clone.OnDeactivated(sys.skillDeactivated),
		clone.OnApplied(func(s *Skill, count int) {
			sys.onSkillApplied.each(func(fn SystemSkillAppliedFunc) { fn(sys, s, count) })
		}),
		clone.OnUsed(func(s *Skill) { sys.notifySkill(&sys.onSkillUsed, s) }),
		clone.OnCanceled(func(s *Skill) { sys.notifySkill(&sys.onSkillCanceled, s) }),
		clone.OnTargetSelectionCompleted(sys.skillTargetSelectionCompleted),
	}
	sys.ownSkills = append(sys.ownSkills, clone)

	slog.Debug("skill registered", "owner", sys.owner.Name(), "skill", clone.CodeName(), "level", clone.Level())
	sys.notifySkill(&sys.onSkillRegistered, clone)
	return clone
}

// Register pays the acquisition cost of s and registers it.
// Panics if the cost cannot be paid or s is already registered.
func (sys *System) Register(s *Skill, level int) *Skill {
	if sys.FindByID(s.ID()) != nil {
		panic(fmt.Sprintf("skill: %q already registered on %s", s.CodeName(), sys.owner))
	}
	if !s.HasEnoughAcquisitionCost(sys.owner) {
		panic(fmt.Sprintf("skill: not enough acquisition cost for %q on %s", s.CodeName(), sys.owner))
	}
	s.UseAcquisitionCost(sys.owner)
	return sys.RegisterWithoutCost(s, level)
}

// Unregister cancels and removes the registered skill matching s.
func (sys *System) Unregister(s *Skill) bool {
	s = sys.Find(s)
	if s == nil {
		return false
	}

	// A passive cannot be canceled through Cancel; stop its machine directly.
	if s.IsPassive() {
		s.Machine().ExecuteCommandAll(CommandCancelImmediately)
	} else {
		s.Cancel(true)
	}

	for _, unsubscribe := range sys.unsubscribes[s] {
		unsubscribe()
	}
	delete(sys.unsubscribes, s)
	sys.ownSkills = slices.DeleteFunc(sys.ownSkills, func(x *Skill) bool { return x == s })
	sys.runningSkills = slices.DeleteFunc(sys.runningSkills, func(x *Skill) bool { return x == s })
	if sys.reservedSkill == s {
		sys.reservedSkill = nil
	}

	slog.Debug("skill unregistered", "owner", sys.owner.Name(), "skill", s.CodeName())
	sys.notifySkill(&sys.onSkillUnregistered, s)
	return true
}

// UnregisterAll removes every owned skill and drops pending tree
// acquisitions.
func (sys *System) UnregisterAll() {
	for _, s := range slices.Clone(sys.ownSkills) {
		sys.Unregister(s)
	}
	sys.autoAcquire = nil
}

// Lookup

// Find returns s when it belongs to the owner, otherwise the registered skill
// with the same ID, or nil.
func (sys *System) Find(s *Skill) *Skill {
	if s.Owner() == sys.owner && slices.Contains(sys.ownSkills, s) {
		return s
	}
	return sys.FindByID(s.ID())
}

func (sys *System) FindByID(id int) *Skill {
	return sys.FindSkill(func(s *Skill) bool { return s.ID() == id })
}

func (sys *System) FindByCodeName(codeName string) *Skill {
	return sys.FindSkill(func(s *Skill) bool { return s.CodeName() == codeName })
}

func (sys *System) FindSkill(match func(*Skill) bool) *Skill {
	if i := slices.IndexFunc(sys.ownSkills, match); i >= 0 {
		return sys.ownSkills[i]
	}
	return nil
}

func (sys *System) FindAll(match func(*Skill) bool) []*Skill {
	var out []*Skill
	for _, s := range sys.ownSkills {
		if match(s) {
			out = append(out, s)
		}
	}
	return out
}

func (sys *System) Contains(s *Skill) bool { return sys.Find(s) != nil }

// FindEffect returns e when it already runs on the owner, otherwise the
// running, unreleased effect with the same ID, or nil.
func (sys *System) FindEffect(e *effect.Effect) *effect.Effect {
	if e.Target() == sys.owner {
		return e
	}
	return sys.FindEffectFunc(func(x *effect.Effect) bool { return x.ID() == e.ID() })
}

func (sys *System) FindEffectFunc(match func(*effect.Effect) bool) *effect.Effect {
	for _, e := range sys.runningEffects {
		if !e.IsReleased() && match(e) {
			return e
		}
	}
	return nil
}

func (sys *System) FindAllEffects(match func(*effect.Effect) bool) []*effect.Effect {
	var out []*effect.Effect
	for _, e := range sys.runningEffects {
		if !e.IsReleased() && match(e) {
			out = append(out, e)
		}
	}
	return out
}

func (sys *System) ContainsEffect(e *effect.Effect) bool { return sys.FindEffect(e) != nil }

// Use and cancel

// Use uses the registered skill matching s.
func (sys *System) Use(s *Skill) error {
	found := sys.Find(s)
	if found == nil {
		return fmt.Errorf("using %s on %s: %w", s.CodeName(), sys.owner, ErrSkillNotRegistered)
	}
	if !found.IsUseable() || !found.Use() {
		return fmt.Errorf("using %s on %s: %w", s.CodeName(), sys.owner, ErrSkillNotUseable)
	}
	return nil
}

// Cancel cancels the running skill with the ID of s.
func (sys *System) Cancel(s *Skill, force bool) bool {
	i := slices.IndexFunc(sys.runningSkills, func(x *Skill) bool { return x.ID() == s.ID() })
	if i < 0 || sys.runningSkills[i].IsPassive() {
		return false
	}
	return sys.runningSkills[i].Cancel(force)
}

// CancelAll cancels the target selection in progress and every running
// non-passive skill.
func (sys *System) CancelAll(force bool) {
	sys.CancelTargetSearching()
	for _, s := range slices.Clone(sys.runningSkills) {
		if !s.IsPassive() {
			s.Cancel(force)
		}
	}
}

// CancelTargetSearching cancels the skill waiting for a target selection.
func (sys *System) CancelTargetSearching() {
	s := sys.FindSkill(func(s *Skill) bool { return !s.IsPassive() && s.IsInState(StateSearchingTarget) })
	if s != nil {
		s.Cancel(false)
	}
}

// ReserveSkill uses s as soon as its selected target comes into range.
func (sys *System) ReserveSkill(s *Skill) { sys.reservedSkill = s }
func (sys *System) CancelReservedSkill()  { sys.reservedSkill = nil }

// ApplyCurrentRunningSkill applies the skill the owner is playing in its
// in-skill-action state. It is the animation event of animation-applied
// skills; an input-driven skill already counted the apply.
func (sys *System) ApplyCurrentRunningSkill() {
	if !sys.owner.IsInState(EntityStateInSkillAction) {
		return
	}
	st, ok := sys.owner.Machine().CurrentState(0).(RunningSkiller)
	if !ok || st.RunningSkill() == nil {
		return
	}
	s := st.RunningSkill()
	s.Apply(s.ExecutionType() != ExecutionInput)
}

// Effects

// ApplyEffect applies a clone of e to the owner. A running effect with the
// same ID is stacked when stackable, replaced when it removes the old
// duplicate, and kept otherwise, unless duplicates are allowed.
func (sys *System) ApplyEffect(e *effect.Effect) {
	running := sys.FindEffect(e)
	if running == nil || e.IsAllowDuplicate() {
		sys.applyNewEffect(e)
		return
	}
	switch {
	case running.MaxStack() > 1:
		running.SetCurrentStack(running.CurrentStack() + 1)
	case running.RemoveDuplicateTarget() == effect.RemoveOld:
		sys.RemoveEffect(running)
		sys.applyNewEffect(e)
	}
}

func (sys *System) ApplyEffects(effects []*effect.Effect) {
	for _, e := range effects {
		sys.ApplyEffect(e)
	}
}

// ApplySkill applies the current effects of s.
func (sys *System) ApplySkill(s *Skill) { sys.ApplyEffects(s.Effects()) }

func (sys *System) applyNewEffect(e *effect.Effect) {
	ne := e.Clone()
	ne.SetTarget(sys.owner)

	ne.OnStarted(func(e *effect.Effect) {
		slog.Debug("effect started", "target", sys.owner.Name(), "effect", e.CodeName())
		sys.notifyEffect(&sys.onEffectStarted, e)
	})
	ne.OnApplied(func(e *effect.Effect, current, prev int) {
		sys.onEffectApplied.each(func(fn SystemEffectCountFunc) { fn(sys, e, current, prev) })
	})
	ne.OnReleased(func(e *effect.Effect) {
		slog.Debug("effect released", "target", sys.owner.Name(), "effect", e.CodeName())
		sys.notifyEffect(&sys.onEffectReleased, e)
	})
	ne.OnStackChanged(func(e *effect.Effect, current, prev int) {
		sys.onEffectStackChanged.each(func(fn SystemEffectCountFunc) { fn(sys, e, current, prev) })
	})

	ne.Start()
	if ne.IsApplicable() {
		ne.Apply()
	}
	if ne.IsFinished() {
		ne.Release()
		return
	}
	sys.runningEffects = append(sys.runningEffects, ne)
}

// RemoveEffect releases the running effect matching e and queues it for
// removal. Returns false when there is none or it is already queued.
func (sys *System) RemoveEffect(e *effect.Effect) bool {
	e = sys.FindEffect(e)
	if e == nil || e.IsReleased() || slices.Contains(sys.destroyQueue, e) {
		return false
	}
	e.Release()
	sys.destroyQueue = append(sys.destroyQueue, e)
	return true
}

// RemoveEffectByCategory removes the first running effect in category.
func (sys *System) RemoveEffectByCategory(category string) bool {
	e := sys.FindEffectFunc(func(e *effect.Effect) bool { return e.HasCategory(category) })
	return e != nil && sys.RemoveEffect(e)
}

// RemoveEffectAllByCategory removes every running effect in category.
func (sys *System) RemoveEffectAllByCategory(category string) bool {
	return sys.RemoveEffectAll(func(e *effect.Effect) bool { return e.HasCategory(category) })
}

// RemoveEffectAll removes every running effect matching match, or all of them
// when match is nil. Reports whether any was removed.
func (sys *System) RemoveEffectAll(match func(*effect.Effect) bool) bool {
	removed := false
	for _, e := range slices.Clone(sys.runningEffects) {
		if match == nil || match(e) {
			removed = sys.RemoveEffect(e) || removed
		}
	}
	return removed
}

// Update

// Update ticks the skills, the running effects, the destroy queue, the
// reserved skill and the pending auto acquisitions, in that order.
func (sys *System) Update(dt float64) {
	for _, s := range slices.Clone(sys.ownSkills) {
		s.Update(dt)
	}
	sys.updateRunningEffects(dt)
	sys.destroyReleasedEffects()
	sys.updateReservedSkill()
	sys.tryAcquireSkills()
}

func (sys *System) updateRunningEffects(dt float64) {
	for i := 0; i < len(sys.runningEffects); i++ {
		e := sys.runningEffects[i]
		if e.IsReleased() {
			continue
		}
		e.Update(dt)
		if e.IsFinished() {
			sys.RemoveEffect(e)
		}
	}
}

func (sys *System) destroyReleasedEffects() {
	for _, e := range sys.destroyQueue {
		sys.runningEffects = slices.DeleteFunc(sys.runningEffects, func(x *effect.Effect) bool { return x == e })
	}
	sys.destroyQueue = sys.destroyQueue[:0]
}

func (sys *System) updateReservedSkill() {
	s := sys.reservedSkill
	if s == nil {
		return
	}
	pos := reservedTargetPosition(s.SelectionResult())
	if !s.IsInRange(pos) {
		return
	}
	if s.IsUseable() {
		s.UseImmediately(pos)
	}
	sys.reservedSkill = nil
}

func reservedTargetPosition(result target.SelectionResult) model.Vec3 {
	if result.Target != nil {
		return result.Target.Position()
	}
	return result.Position
}

func (sys *System) tryAcquireSkills() {
	for i := len(sys.autoAcquire) - 1; i >= 0; i-- {
		node := sys.autoAcquire[i]
		if sys.Find(node.Skill) != nil {
			sys.autoAcquire = slices.Delete(sys.autoAcquire, i, i+1)
			continue
		}
		if node.IsSkillAcquirable(sys.owner) {
			node.AcquireSkill(sys.owner)
			sys.autoAcquire = slices.Delete(sys.autoAcquire, i, i+1)
		}
	}
}

// Events

func (sys *System) skillActivated(s *Skill) {
	sys.runningSkills = append(sys.runningSkills, s)
	sys.notifySkill(&sys.onSkillActivated, s)
}

func (sys *System) skillDeactivated(s *Skill) {
	sys.runningSkills = slices.DeleteFunc(sys.runningSkills, func(x *Skill) bool { return x == s })
	sys.notifySkill(&sys.onSkillDeactivated, s)
}

func (sys *System) skillTargetSelectionCompleted(s *Skill, searcher *target.Searcher, result target.SelectionResult) {
	if result.Message == target.FindTarget || result.Message == target.FindPosition {
		sys.reservedSkill = nil
	}
	sys.onSkillTargetSelection.each(func(fn SystemTargetSelectionFunc) { fn(sys, s, searcher, result) })
}

func (sys *System) notifySkill(o *observers[SystemSkillFunc], s *Skill) {
	o.each(func(fn SystemSkillFunc) { fn(sys, s) })
}

func (sys *System) notifyEffect(o *observers[SystemEffectFunc], e *effect.Effect) {
	o.each(func(fn SystemEffectFunc) { fn(sys, e) })
}

func (sys *System) OnSkillRegistered(fn SystemSkillFunc) (unsubscribe func()) {
	return sys.onSkillRegistered.add(fn)
}

func (sys *System) OnSkillUnregistered(fn SystemSkillFunc) (unsubscribe func()) {
	return sys.onSkillUnregistered.add(fn)
}

func (sys *System) OnSkillStateChanged(fn SystemSkillStateChangedFunc) (unsubscribe func()) {
	return sys.onSkillStateChanged.add(fn)
}

func (sys *System) OnSkillActivated(fn SystemSkillFunc) (unsubscribe func()) {
	return sys.onSkillActivated.add(fn)
}

func (sys *System) OnSkillDeactivated(fn SystemSkillFunc) (unsubscribe func()) {
	return sys.onSkillDeactivated.add(fn)
}

func (sys *System) OnSkillUsed(fn SystemSkillFunc) (unsubscribe func()) {
	return sys.onSkillUsed.add(fn)
}

func (sys *System) OnSkillApplied(fn SystemSkillAppliedFunc) (unsubscribe func()) {
	return sys.onSkillApplied.add(fn)
}

func (sys *System) OnSkillCanceled(fn SystemSkillFunc) (unsubscribe func()) {
	return sys.onSkillCanceled.add(fn)
}

func (sys *System) OnSkillTargetSelectionCompleted(fn SystemTargetSelectionFunc) (unsubscribe func()) {
	return sys.onSkillTargetSelection.add(fn)
}

func (sys *System) OnEffectStarted(fn SystemEffectFunc) (unsubscribe func()) {
	return sys.onEffectStarted.add(fn)
}

func (sys *System) OnEffectApplied(fn SystemEffectCountFunc) (unsubscribe func()) {
	return sys.onEffectApplied.add(fn)
}

func (sys *System) OnEffectReleased(fn SystemEffectFunc) (unsubscribe func()) {
	return sys.onEffectReleased.add(fn)
}

func (sys *System) OnEffectStackChanged(fn SystemEffectCountFunc) (unsubscribe func()) {
	return sys.onEffectStackChanged.add(fn)
}

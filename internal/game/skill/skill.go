// Package skill implements skills, the per-entity skill system and the entity
// that owns them.
//
// A Skill is built once as a template from a Definition and cloned for every
// owner. The clone is set up with its owner and a level, which selects a data
// record and builds one of three state machines: instant, passive or toggle.
// The owner's System ticks it; Use drives its machine; the machine's states
// call back into the skill to charge, cast, run the preceding action and apply.
package skill

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/udisondev/skillcore/internal/custom"
	"github.com/udisondev/skillcore/internal/effect"
	"github.com/udisondev/skillcore/internal/fsm"
	"github.com/udisondev/skillcore/internal/mathx"
	"github.com/udisondev/skillcore/internal/model"
	"github.com/udisondev/skillcore/internal/stat"
	"github.com/udisondev/skillcore/internal/target"
	"github.com/udisondev/skillcore/internal/textreplace"
)

// infinity marks a timeless duration or an unlimited apply count.
const infinity = 0

// Command drives a skill machine.
type Command int

const (
	CommandNone Command = iota
	CommandUse
	CommandUseImmediately
	CommandCancel
	CommandCancelImmediately
)

func (c Command) String() string {
	switch c {
	case CommandUse:
		return "Use"
	case CommandUseImmediately:
		return "UseImmediately"
	case CommandCancel:
		return "Cancel"
	case CommandCancelImmediately:
		return "CancelImmediately"
	default:
		return "None"
	}
}

// Message is delivered to the current state of a skill machine.
type Message int

const (
	// MessageUse asks an input-driven InAction state to apply again.
	MessageUse Message = iota + 1
)

// Skill machine states.
const (
	StateReady             fsm.StateID = "ready"
	StateSearchingTarget   fsm.StateID = "searching_target"
	StateCasting           fsm.StateID = "casting"
	StateCharging          fsm.StateID = "charging"
	StateInPrecedingAction fsm.StateID = "in_preceding_action"
	StateInAction          fsm.StateID = "in_action"
	StateCooldown          fsm.StateID = "cooldown"
)

// Machine is the state machine type driving a skill.
type Machine = fsm.Machine[*Skill, Command, Message]

type (
	LevelChangedFunc             func(s *Skill, current, prev int)
	StateChangedFunc             func(s *Skill, next, prev fsm.StateID, layer int)
	AppliedFunc                  func(s *Skill, currentApplyCount int)
	SkillFunc                    func(s *Skill)
	TargetSelectionCompletedFunc func(s *Skill, searcher *target.Searcher, result target.SelectionResult)
	ApplyCountChangedFunc        func(s *Skill, current, prev int)
)

// SelectCompletedFunc receives the outcome of Skill.SelectTarget.
type SelectCompletedFunc func(s *Skill, result target.SelectionResult)

// Skill is a running (or template) ability.
type Skill struct {
	def      Definition
	maxLevel int

	level   int
	dataIdx int
	// leveled is false until the first level is set.
	leveled bool

	effects      []*effect.Effect
	applyEffects []*effect.Effect

	owner     *Entity
	machine   *Machine
	stateByID map[int]fsm.StateID

	activated bool

	currentApplyCount     int
	currentApplyCycle     float64
	currentCastTime       float64
	currentCooldown       float64
	currentDuration       float64
	currentChargePower    float64
	currentChargeDuration float64

	targets         []*Entity
	targetPositions []model.Vec3

	onLevelChanged             observers[LevelChangedFunc]
	onStateChanged             observers[StateChangedFunc]
	onApplied                  observers[AppliedFunc]
	onActivated                observers[SkillFunc]
	onDeactivated              observers[SkillFunc]
	onUsed                     observers[SkillFunc]
	onCanceled                 observers[SkillFunc]
	onTargetSelectionCompleted observers[TargetSelectionCompletedFunc]
	onApplyCountChanged        observers[ApplyCountChangedFunc]
}

// New creates a skill template. Datas are ordered by level.
// Panics if def has no data or a record lacks an action or a searcher.
func New(def Definition) *Skill {
	if len(def.Datas) == 0 {
		panic(fmt.Sprintf("skill: %q has no data", def.CodeName))
	}
	def.Datas = slices.Clone(def.Datas)
	slices.SortStableFunc(def.Datas, func(a, b Data) int { return a.Level - b.Level })
	for _, d := range def.Datas {
		if d.Action == nil || d.Searcher == nil {
			panic(fmt.Sprintf("skill: %q data level %d needs an action and a searcher", def.CodeName, d.Level))
		}
	}

	maxLevel := def.Datas[len(def.Datas)-1].Level
	if def.AllowLevelExceedDatas {
		maxLevel = max(def.MaxLevel, maxLevel)
	}
	def.MaxLevel = maxLevel
	def.DefaultLevel = max(def.DefaultLevel, 1)

	return &Skill{
		def:                def,
		maxLevel:           maxLevel,
		currentChargePower: 1,
	}
}

func (s *Skill) ID() int              { return s.def.ID }
func (s *Skill) CodeName() string     { return s.def.CodeName }
func (s *Skill) DisplayName() string  { return s.def.DisplayName }
func (s *Skill) Categories() []string { return s.def.Categories }
func (s *Skill) Definition() Definition {
	return s.def
}

func (s *Skill) HasCategory(category string) bool {
	return slices.Contains(s.def.Categories, category)
}

func (s *Skill) Type() Type                   { return s.def.Type }
func (s *Skill) UseType() UseType             { return s.def.UseType }
func (s *Skill) ExecutionType() ExecutionType { return s.def.ExecutionType }
func (s *Skill) ApplyType() ApplyType         { return s.def.ApplyType }
func (s *Skill) IsPassive() bool              { return s.def.Type == TypePassive }
func (s *Skill) IsToggleType() bool           { return s.def.UseType == UseToggle }

func (s *Skill) Owner() *Entity    { return s.owner }
func (s *Skill) Machine() *Machine { return s.machine }

// CueEmitter routes cues of the skill's custom actions to its owner.
func (s *Skill) CueEmitter() custom.Emitter {
	if s.owner == nil {
		return nil
	}
	return s.owner
}

func (s *Skill) data() *Data { return &s.def.Datas[s.dataIdx] }

// CurrentData returns the data record selected by the current level.
func (s *Skill) CurrentData() Data { return *s.data() }

func (s *Skill) stats() *stat.Stats {
	if s.owner == nil {
		return nil
	}
	return s.owner.Stats()
}

// Effects returns the effects the skill applies. During an apply with a
// per-apply override they are the override's effects.
func (s *Skill) Effects() []*effect.Effect {
	if s.applyEffects != nil {
		return s.applyEffects
	}
	return s.effects
}

// Leveling

func (s *Skill) MaxLevel() int     { return s.maxLevel }
func (s *Skill) DefaultLevel() int { return s.def.DefaultLevel }
func (s *Skill) Level() int        { return s.level }
func (s *Skill) IsMaxLevel() bool  { return s.level == s.maxLevel }

// DataBonusLevel is how far the level is above the selected data record.
func (s *Skill) DataBonusLevel() int { return max(s.level-s.data().Level, 0) }

// SetLevel changes the level. Crossing into another data record rebuilds the
// effects. Panics unless 0 < level <= MaxLevel.
func (s *Skill) SetLevel(level int) {
	if level <= 0 || level > s.maxLevel {
		panic(fmt.Sprintf("skill: %q level %d out of range [1, %d]", s.def.CodeName, level, s.maxLevel))
	}
	if s.level == level {
		return
	}
	prev := s.level
	s.level = level

	idx := dataIndex(s.def.Datas, level)
	if !s.leveled || s.def.Datas[idx].Level != s.data().Level {
		s.changeData(idx)
	}
	s.leveled = true

	s.onLevelChanged.each(func(fn LevelChangedFunc) { fn(s, level, prev) })
}

func dataIndex(datas []Data, level int) int {
	idx := 0
	for i, d := range datas {
		if d.Level <= level {
			idx = i
		}
	}
	return idx
}

func (s *Skill) changeData(idx int) {
	s.dataIdx = idx

	d := s.data()
	s.effects = make([]*effect.Effect, len(d.EffectSelectors))
	for i, sel := range d.EffectSelectors {
		s.effects[i] = sel.CreateEffect(s)
	}

	// a level above the record's level raises the effects by the difference
	if bonus := s.DataBonusLevel(); bonus > 0 {
		for _, e := range s.effects {
			e.SetLevel(min(e.Level()+bonus, e.MaxLevel()))
		}
	}
}

func (s *Skill) LevelUpConditions() []EntityCondition { return s.data().LevelUpConditions }
func (s *Skill) LevelUpCosts() []Cost                 { return s.data().LevelUpCosts }

// IsCanLevelUp reports whether the skill is below its max level and the owner
// passes the level-up conditions and can pay the level-up costs.
func (s *Skill) IsCanLevelUp() bool {
	return !s.IsMaxLevel() &&
		passEntityConditions(s.LevelUpConditions(), s.owner) &&
		hasEnoughCosts(s.LevelUpCosts(), s.owner)
}

// LevelUp pays the level-up costs and raises the level by one.
// Panics unless IsCanLevelUp.
func (s *Skill) LevelUp() {
	if !s.IsCanLevelUp() {
		panic(fmt.Sprintf("skill: %q cannot level up", s.def.CodeName))
	}
	for _, c := range s.LevelUpCosts() {
		c.UseCost(s.owner)
	}
	s.SetLevel(s.level + 1)
}

// Acquisition

func (s *Skill) AcquisitionConditions() []EntityCondition { return s.def.AcquisitionConditions }
func (s *Skill) AcquisitionCosts() []Cost                 { return s.def.AcquisitionCosts }
func (s *Skill) UseConditions() []Condition               { return s.def.UseConditions }

func (s *Skill) HasEnoughAcquisitionCost(e *Entity) bool {
	return hasEnoughCosts(s.def.AcquisitionCosts, e)
}

// IsAcquirable reports whether e passes the acquisition conditions and can pay
// the acquisition costs.
func (s *Skill) IsAcquirable(e *Entity) bool {
	return passEntityConditions(s.def.AcquisitionConditions, e) && s.HasEnoughAcquisitionCost(e)
}

func (s *Skill) UseAcquisitionCost(e *Entity) {
	for _, c := range s.def.AcquisitionCosts {
		c.UseCost(e)
	}
}

// Actions and parameters

func (s *Skill) HasPrecedingAction() bool { return s.data().PrecedingAction != nil }

func (s *Skill) PrecedingAction() PrecedingAction { return s.data().PrecedingAction }
func (s *Skill) Action() Action                   { return s.data().Action }

func (s *Skill) InActionFinishOption() InActionFinishOption { return s.data().InActionFinishOption }

func (s *Skill) CastParam() AnimatorParam            { return s.data().CastParam }
func (s *Skill) ChargeParam() AnimatorParam          { return s.data().ChargeParam }
func (s *Skill) PrecedingActionParam() AnimatorParam { return s.data().PrecedingParam }
func (s *Skill) ActionParam() AnimatorParam          { return s.data().ActionParam }

// Targeting

func (s *Skill) Searcher() *target.Searcher { return s.data().Searcher }
func (s *Skill) IsSearchingTarget() bool    { return s.Searcher().IsSearching() }

func (s *Skill) SelectionResult() target.SelectionResult { return s.Searcher().SelectionResult() }
func (s *Skill) SearchResult() target.SearchResult       { return s.Searcher().SearchResult() }

func (s *Skill) NeedSelectionResult() NeedSelectionResult { return s.def.NeedSelectionResult }
func (s *Skill) SelectionTiming() SelectionTiming         { return s.def.SelectionTiming }
func (s *Skill) SearchTiming() SearchTiming               { return s.def.SearchTiming }

// HasValidTargetSelectionResult reports whether the last selection found what
// the skill needs: a target or a position.
func (s *Skill) HasValidTargetSelectionResult() bool {
	switch s.SelectionResult().Message {
	case target.FindTarget:
		return s.def.NeedSelectionResult == NeedTarget
	case target.FindPosition:
		return s.def.NeedSelectionResult == NeedPosition
	default:
		return false
	}
}

// IsTargetSelectSuccessful reports a finished selection with a valid result.
func (s *Skill) IsTargetSelectSuccessful() bool {
	return !s.IsSearchingTarget() && s.HasValidTargetSelectionResult()
}

// IsTargetSelectionTiming reports whether selection happens at timing.
func (s *Skill) IsTargetSelectionTiming(timing SelectionTiming) bool {
	return s.def.SelectionTiming == SelectBoth || s.def.SelectionTiming == timing
}

func (s *Skill) Targets() []*Entity            { return s.targets }
func (s *Skill) TargetPositions() []model.Vec3 { return s.targetPositions }

// Costs

func (s *Skill) Costs() []Cost       { return s.data().Costs }
func (s *Skill) HasCost() bool       { return len(s.data().Costs) > 0 }
func (s *Skill) HasEnoughCost() bool { return hasEnoughCosts(s.data().Costs, s.owner) }

func (s *Skill) IsActivated() bool { return s.activated }
func (s *Skill) IsReady() bool     { return s.IsInState(StateReady) }

func (s *Skill) IsInState(id fsm.StateID) bool {
	return s.machine != nil && s.machine.IsInState(id)
}

// IsInStateOn reports whether id is the current state of layer.
func (s *Skill) IsInStateOn(id fsm.StateID, layer int) bool {
	return s.machine != nil && s.machine.IsInStateOn(id, layer)
}

// CurrentStateID returns the current state of layer.
func (s *Skill) CurrentStateID(layer int) fsm.StateID { return s.machine.CurrentStateID(layer) }

// Cooldown

func (s *Skill) Cooldown() float64        { return s.data().Cooldown.GetValue(s.stats()) }
func (s *Skill) HasCooldown() bool        { return s.Cooldown() > 0 }
func (s *Skill) CurrentCooldown() float64 { return s.currentCooldown }

// SetCurrentCooldown sets the cooldown clock clamped into [0, Cooldown].
func (s *Skill) SetCurrentCooldown(v float64) {
	s.currentCooldown = mathx.Clamp(v, 0, s.Cooldown())
}

func (s *Skill) IsCooldownCompleted() bool { return mathx.Approximately(0, s.currentCooldown) }

// Duration

func (s *Skill) Duration() float64        { return s.data().Duration }
func (s *Skill) IsTimeless() bool         { return mathx.Approximately(s.Duration(), infinity) }
func (s *Skill) CurrentDuration() float64 { return s.currentDuration }

// SetCurrentDuration sets the duration clock, clamped into [0, Duration]
// unless the skill is timeless.
func (s *Skill) SetCurrentDuration(v float64) {
	if s.IsTimeless() {
		s.currentDuration = v
		return
	}
	s.currentDuration = mathx.Clamp(v, 0, s.Duration())
}

func (s *Skill) RunningFinishOption() RunningFinishOption { return s.data().RunningFinishOption }

// Apply count and cycle

func (s *Skill) ApplyCount() int              { return s.data().ApplyCount }
func (s *Skill) IsInfinitelyApplicable() bool { return s.ApplyCount() == infinity }
func (s *Skill) CurrentApplyCount() int       { return s.currentApplyCount }

// SetCurrentApplyCount sets the counter, clamped to ApplyCount unless
// unlimited, and notifies OnCurrentApplyCountChanged.
func (s *Skill) SetCurrentApplyCount(v int) {
	if s.currentApplyCount == v {
		return
	}
	prev := s.currentApplyCount
	if s.IsInfinitelyApplicable() {
		s.currentApplyCount = max(v, 0)
	} else {
		s.currentApplyCount = mathx.Clamp(v, 0, s.ApplyCount())
	}
	s.onApplyCountChanged.each(func(fn ApplyCountChangedFunc) { fn(s, s.currentApplyCount, prev) })
}

// ApplyCycle is the configured cycle, or Duration/(ApplyCount-1) when the
// cycle is unset and the skill applies more than once.
func (s *Skill) ApplyCycle() float64 {
	d := s.data()
	if mathx.Approximately(d.ApplyCycle, 0) && d.ApplyCount > 1 {
		return s.Duration() / float64(d.ApplyCount-1)
	}
	return d.ApplyCycle
}

func (s *Skill) CurrentApplyCycle() float64     { return s.currentApplyCycle }
func (s *Skill) SetCurrentApplyCycle(v float64) { s.currentApplyCycle = v }

// IsApplicable reports whether budget remains and the cycle clock elapsed.
func (s *Skill) IsApplicable() bool {
	return (s.currentApplyCount < s.ApplyCount() || s.IsInfinitelyApplicable()) &&
		s.currentApplyCycle >= s.ApplyCycle()
}

// Cast

func (s *Skill) IsUseCast() bool          { return s.data().UseCast }
func (s *Skill) CastTime() float64        { return s.data().CastTime.GetValue(s.stats()) }
func (s *Skill) CurrentCastTime() float64 { return s.currentCastTime }

// SetCurrentCastTime sets the cast clock clamped into [0, CastTime].
func (s *Skill) SetCurrentCastTime(v float64) {
	s.currentCastTime = mathx.Clamp(v, 0, s.CastTime())
}

func (s *Skill) IsCastCompleted() bool { return mathx.Approximately(s.CastTime(), s.currentCastTime) }

// Charge

func (s *Skill) IsUseCharge() bool                      { return s.data().UseCharge }
func (s *Skill) ChargeFinishAction() ChargeFinishAction { return s.data().ChargeFinishAction }
func (s *Skill) ChargeTime() float64                    { return s.data().ChargeTime }
func (s *Skill) ChargeDuration() float64                { return s.data().ChargeDuration }
func (s *Skill) NeedChargeTimeToUse() float64           { return s.data().NeedChargeTimeToUse }
func (s *Skill) StartChargePower() float64              { return s.data().StartChargePower }
func (s *Skill) CurrentChargePower() float64            { return s.currentChargePower }
func (s *Skill) CurrentChargeDuration() float64         { return s.currentChargeDuration }

// SetCurrentChargePower clamps power into [0, 1] and scales the searcher and
// the effects with it.
func (s *Skill) SetCurrentChargePower(power float64) {
	prev := s.currentChargePower
	s.currentChargePower = mathx.Clamp01(power)
	if mathx.Approximately(prev, s.currentChargePower) {
		return
	}
	s.Searcher().SetScale(s.currentChargePower)
	for _, e := range s.effects {
		e.SetScale(s.currentChargePower)
	}
}

// SetCurrentChargeDuration sets the charge clock clamped into
// [0, ChargeDuration] and derives the charge power from it: 1 without charge,
// otherwise StartChargePower rising linearly to 1 at ChargeTime.
func (s *Skill) SetCurrentChargeDuration(v float64) {
	s.currentChargeDuration = mathx.Clamp(v, 0, s.ChargeDuration())
	if !s.IsUseCharge() {
		s.SetCurrentChargePower(1)
		return
	}
	t := 1.0
	if s.ChargeTime() > 0 {
		t = s.currentChargeDuration / s.ChargeTime()
	}
	s.SetCurrentChargePower(mathx.Lerp(s.StartChargePower(), 1, t))
}

func (s *Skill) IsMinChargeCompleted() bool {
	return s.currentChargeDuration >= s.NeedChargeTimeToUse()
}

func (s *Skill) IsMaxChargeCompleted() bool { return s.currentChargeDuration >= s.ChargeTime() }

func (s *Skill) IsChargeDurationEnded() bool {
	return mathx.Approximately(s.ChargeDuration(), s.currentChargeDuration)
}

// State queries

// IsUseable reports whether Use may be called now:
//   - in Ready, the costs are payable and the use conditions pass;
//   - in InAction, the skill is input-driven, applicable and the conditions pass;
//   - in Charging, the minimum charge is reached.
func (s *Skill) IsUseable() bool {
	if s.machine == nil {
		return false
	}
	switch {
	case s.IsReady():
		return s.HasEnoughCost() && passConditions(s.def.UseConditions, s)
	case s.IsInState(StateInAction):
		return s.def.ExecutionType == ExecutionInput && s.IsApplicable() && passConditions(s.def.UseConditions, s)
	case s.IsInState(StateCharging):
		return s.IsMinChargeCompleted()
	default:
		return false
	}
}

func (s *Skill) isDurationEnded() bool {
	return !s.IsTimeless() && mathx.Approximately(s.Duration(), s.currentDuration)
}

func (s *Skill) isApplyCompleted() bool {
	return !s.IsInfinitelyApplicable() && s.currentApplyCount == s.ApplyCount()
}

// IsFinished reports whether the running skill is done under its finish
// option.
func (s *Skill) IsFinished() bool {
	if s.data().RunningFinishOption == FinishWhenDurationEnded {
		return s.isDurationEnded()
	}
	return s.isApplyCompleted()
}

// Events

func (s *Skill) OnLevelChanged(fn LevelChangedFunc) (unsubscribe func()) {
	return s.onLevelChanged.add(fn)
}

func (s *Skill) OnStateChanged(fn StateChangedFunc) (unsubscribe func()) {
	return s.onStateChanged.add(fn)
}

func (s *Skill) OnApplied(fn AppliedFunc) (unsubscribe func())   { return s.onApplied.add(fn) }
func (s *Skill) OnActivated(fn SkillFunc) (unsubscribe func())   { return s.onActivated.add(fn) }
func (s *Skill) OnDeactivated(fn SkillFunc) (unsubscribe func()) { return s.onDeactivated.add(fn) }
func (s *Skill) OnUsed(fn SkillFunc) (unsubscribe func())        { return s.onUsed.add(fn) }
func (s *Skill) OnCanceled(fn SkillFunc) (unsubscribe func())    { return s.onCanceled.add(fn) }

func (s *Skill) OnTargetSelectionCompleted(fn TargetSelectionCompletedFunc) (unsubscribe func()) {
	return s.onTargetSelectionCompleted.add(fn)
}

func (s *Skill) OnCurrentApplyCountChanged(fn ApplyCountChangedFunc) (unsubscribe func()) {
	return s.onApplyCountChanged.add(fn)
}

// Setup binds the skill to owner at level and builds its state machine.
// Panics on a nil owner, an out-of-range level or a second setup.
func (s *Skill) Setup(owner *Entity, level int) {
	if owner == nil {
		panic(fmt.Sprintf("skill: %q setup with nil owner", s.def.CodeName))
	}
	if level < 1 || level > s.maxLevel {
		panic(fmt.Sprintf("skill: %q setup level %d out of range [1, %d]", s.def.CodeName, level, s.maxLevel))
	}
	if s.owner != nil {
		panic(fmt.Sprintf("skill: %q already set up", s.def.CodeName))
	}

	s.owner = owner
	s.SetLevel(level)
	s.setupMachine()
}

// SetupDefault sets the skill up at its default level.
func (s *Skill) SetupDefault(owner *Entity) { s.Setup(owner, s.def.DefaultLevel) }

func (s *Skill) setupMachine() {
	switch {
	case s.IsPassive():
		s.machine = newPassiveMachine(s)
	case s.IsToggleType():
		s.machine = newToggleMachine(s)
	default:
		s.machine = newInstantMachine(s)
	}

	s.stateByID = make(map[int]fsm.StateID)
	s.machine.OnStateChanged(func(m *Machine, _, _ fsm.State[*Skill, Command, Message], layer int) {
		prev := s.stateByID[layer]
		next := m.CurrentStateID(layer)
		s.stateByID[layer] = next
		s.onStateChanged.each(func(fn StateChangedFunc) { fn(s, next, prev, layer) })
	})
	s.machine.SetupLayers()
}

// ResetProperties zeroes every clock and the apply count.
func (s *Skill) ResetProperties() {
	s.SetCurrentCastTime(0)
	s.SetCurrentCooldown(0)
	s.SetCurrentDuration(0)
	s.SetCurrentApplyCycle(0)
	s.SetCurrentChargeDuration(0)
	s.SetCurrentApplyCount(0)
}

// Update ticks the skill machine.
func (s *Skill) Update(dt float64) { s.machine.Update(dt) }

// Selection and search

// SelectTarget starts an asynchronous selection. When it succeeds and the
// search timing is SearchOnSelectionCompleted the targets are searched before
// done runs. done may be nil and may run before SelectTarget returns.
func (s *Skill) SelectTarget(done SelectCompletedFunc) {
	s.CancelSelectTarget()

	s.Searcher().SelectTarget(s.owner, s.owner, func(searcher *target.Searcher, result target.SelectionResult) {
		if s.IsTargetSelectSuccessful() && s.def.SearchTiming == SearchOnSelectionCompleted {
			s.SearchTargets()
		}
		if done != nil {
			done(s, result)
		}
		s.onTargetSelectionCompleted.each(func(fn TargetSelectionCompletedFunc) { fn(s, searcher, result) })
	})
}

// CancelSelectTarget cancels a pending selection.
func (s *Skill) CancelSelectTarget() {
	if !s.IsSearchingTarget() {
		return
	}
	s.Searcher().CancelSelect()
}

// SearchTargets gathers targets around the last selection result.
func (s *Skill) SearchTargets() {
	result := s.Searcher().SearchTargets(s.owner, s.owner)
	s.targets = s.targets[:0]
	for _, t := range result.Targets {
		if e, ok := t.(*Entity); ok {
			s.targets = append(s.targets, e)
		}
	}
	s.targetPositions = result.Positions
}

// SelectTargetImmediate selects at pos synchronously.
func (s *Skill) SelectTargetImmediate(pos model.Vec3) target.SelectionResult {
	s.CancelSelectTarget()

	result := s.Searcher().SelectImmediate(s.owner, s.owner, pos)
	if s.IsTargetSelectSuccessful() && s.def.SearchTiming == SearchOnSelectionCompleted {
		s.SearchTargets()
	}
	return result
}

// IsInRange reports whether pos is within the selection range.
func (s *Skill) IsInRange(pos model.Vec3) bool {
	return s.Searcher().IsInRange(s.owner, s.owner, pos)
}

// Use and cancel

// Use executes the Use command, or asks an input-driven skill in action to
// apply again. Panics unless IsUseable.
func (s *Skill) Use() bool {
	if !s.IsUseable() {
		panic(fmt.Sprintf("skill: %q used while not useable", s.def.CodeName))
	}
	used := s.machine.ExecuteCommandAll(CommandUse) || s.machine.SendMessageAll(MessageUse, nil)
	if used {
		s.onUsed.each(func(fn SkillFunc) { fn(s) })
	}
	return used
}

// UseImmediately selects at pos and uses the skill without waiting for input.
// Panics unless IsUseable.
func (s *Skill) UseImmediately(pos model.Vec3) bool {
	if !s.IsUseable() {
		panic(fmt.Sprintf("skill: %q used while not useable", s.def.CodeName))
	}
	s.SelectTargetImmediate(pos)

	used := s.machine.ExecuteCommandAll(CommandUseImmediately) || s.machine.SendMessageAll(MessageUse, nil)
	if used {
		s.onUsed.each(func(fn SkillFunc) { fn(s) })
	}
	return used
}

// Cancel stops the skill. A forced cancel also interrupts an input-driven
// skill in action. Panics for passive skills.
func (s *Skill) Cancel(force bool) bool {
	if s.IsPassive() {
		panic(fmt.Sprintf("skill: passive %q cannot be canceled", s.def.CodeName))
	}
	cmd := CommandCancel
	if force {
		cmd = CommandCancelImmediately
	}
	canceled := s.machine.ExecuteCommandAll(cmd)
	if canceled {
		s.onCanceled.each(func(fn SkillFunc) { fn(s) })
	}
	return canceled
}

// UseCost pays the use costs.
func (s *Skill) UseCost() {
	for _, c := range s.data().Costs {
		c.UseCost(s.owner)
	}
}

// UseDeltaCost pays the per-second use costs for dt seconds.
func (s *Skill) UseDeltaCost(dt float64) {
	for _, c := range s.data().Costs {
		c.UseDeltaCost(s.owner, dt)
	}
}

// Activate pays the use costs and marks the skill running.
// Panics if already activated.
func (s *Skill) Activate() {
	if s.activated {
		panic(fmt.Sprintf("skill: %q already activated", s.def.CodeName))
	}
	s.UseCost()
	s.activated = true
	s.onActivated.each(func(fn SkillFunc) { fn(s) })
}

// Deactivate marks the skill stopped. Panics unless activated.
func (s *Skill) Deactivate() {
	if !s.activated {
		panic(fmt.Sprintf("skill: %q is not activated", s.def.CodeName))
	}
	s.activated = false
	s.onDeactivated.each(func(fn SkillFunc) { fn(s) })
}

// Actions

func (s *Skill) customActions(t CustomActionType) []custom.Action {
	return s.data().CustomActions[t]
}

func (s *Skill) StartCustomActions(t CustomActionType) {
	custom.StartAll(s.customActions(t), s)
}

func (s *Skill) RunCustomActions(t CustomActionType) {
	custom.RunAll(s.customActions(t), s)
}

func (s *Skill) ReleaseCustomActions(t CustomActionType) {
	custom.ReleaseAll(s.customActions(t), s)
}

func (s *Skill) StartPrecedingAction() {
	s.StartCustomActions(CustomOnPrecedingAction)
	s.data().PrecedingAction.Start(s)
}

// RunPrecedingAction runs one tick of the preceding action and reports
// whether it ended.
func (s *Skill) RunPrecedingAction() bool {
	s.RunCustomActions(CustomOnPrecedingAction)
	return s.data().PrecedingAction.Run(s)
}

func (s *Skill) ReleasePrecedingAction() {
	s.ReleaseCustomActions(CustomOnPrecedingAction)
	s.data().PrecedingAction.Release(s)
}

func (s *Skill) StartAction() {
	s.StartCustomActions(CustomOnAction)
	s.data().Action.Start(s)
}

func (s *Skill) ReleaseAction() {
	s.ReleaseCustomActions(CustomOnAction)
	s.data().Action.Release(s)
}

// Apply runs the skill action once. With consume it spends one apply; the
// counter is raised before OnApplied fires so observers see the finished
// state. Panics when consuming beyond the apply count.
func (s *Skill) Apply(consume bool) {
	if consume && !s.IsInfinitelyApplicable() && s.currentApplyCount >= s.ApplyCount() {
		panic(fmt.Sprintf("skill: %q applied beyond apply count %d", s.def.CodeName, s.ApplyCount()))
	}

	ad := s.CurrentApplyData()
	end := func() {}
	if ad != nil {
		end = s.beginApplyData(ad)
	}

	if s.def.SearchTiming == SearchOnApply {
		s.SearchTargets()
	}
	s.runApplyCustomActions(ad)
	s.data().Action.Apply(s)
	end()

	// auto keeps the remainder so applies stay on the cycle grid
	if s.def.ExecutionType == ExecutionAuto {
		s.currentApplyCycle = mathx.Mod(s.currentApplyCycle, s.ApplyCycle())
	} else {
		s.currentApplyCycle = 0
	}

	if consume {
		s.SetCurrentApplyCount(s.currentApplyCount + 1)
	}

	s.onApplied.each(func(fn AppliedFunc) { fn(s, s.currentApplyCount) })
}

// Description returns the template description with the timing keywords and
// the searcher, action and effect keywords filled in.
func (s *Skill) Description() string {
	description := textreplace.Replace(s.def.Description, map[string]string{
		"duration":            textreplace.Number(s.Duration()),
		"applyCount":          strconv.Itoa(s.ApplyCount()),
		"applyCycle":          textreplace.Number(s.ApplyCycle()),
		"castTime":            textreplace.Number(s.CastTime()),
		"chargeDuration":      textreplace.Number(s.ChargeDuration()),
		"chargeTime":          textreplace.Number(s.ChargeTime()),
		"needChargeTimeToUse": textreplace.Number(s.NeedChargeTimeToUse()),
	})
	description = s.Searcher().BuildDescription(description, "")

	if p := s.PrecedingAction(); p != nil {
		description = buildPrecedingDescription(description, p)
	}
	if b, ok := s.Action().(interface{ buildDescription(string) string }); ok {
		description = b.buildDescription(description)
	} else {
		description = buildActionDescription(description, s.Action())
	}

	effects := s.effects
	if s.owner == nil {
		for _, sel := range s.data().EffectSelectors {
			effects = append(effects, sel.Effect)
		}
	}
	for i, e := range effects {
		description = e.BuildDescription(description, i)
	}
	return description
}

// Clone returns an independent copy with fresh per-instance action state. A
// set up skill is set up again with the same owner and level; observers are
// not copied.
func (s *Skill) Clone() *Skill {
	def := s.def
	def.Categories = slices.Clone(s.def.Categories)
	def.AcquisitionConditions = cloneEntityConditions(s.def.AcquisitionConditions)
	def.AcquisitionCosts = cloneCosts(s.def.AcquisitionCosts)
	def.UseConditions = cloneConditions(s.def.UseConditions)
	def.Datas = make([]Data, len(s.def.Datas))
	for i, d := range s.def.Datas {
		def.Datas[i] = d.clone()
	}

	c := &Skill{
		def:                def,
		maxLevel:           s.maxLevel,
		currentChargePower: 1,
	}
	if s.owner != nil {
		c.Setup(s.owner, s.level)
	}
	return c
}

func (s *Skill) String() string {
	state := fsm.StateID("none")
	if s.machine != nil {
		state = s.machine.CurrentStateID(0)
	}
	return fmt.Sprintf("Skill{%s lv%d %s applies %d/%d}", s.def.CodeName, s.level, state, s.currentApplyCount, s.ApplyCount())
}

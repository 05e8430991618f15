// Package effect implements timed, stackable modifiers applied to entities.
//
// An Effect is built once as a template from a Definition, then cloned for
// every application. The clone is set up with its owner (usually a skill), the
// entity using it and a level, receives a target, and is driven by the
// target's skill system: Start once, Update every tick until IsFinished, then
// Release exactly once.
package effect

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/udisondev/skillcore/internal/custom"
	"github.com/udisondev/skillcore/internal/mathx"
	"github.com/udisondev/skillcore/internal/stat"
	"github.com/udisondev/skillcore/internal/textreplace"
)

// infinity marks a timeless duration or an unlimited apply count.
const infinity = 0

// Definition describes an effect template.
type Definition struct {
	ID          int
	CodeName    string
	DisplayName string
	Description string
	Categories  []string

	Type                  Type
	AllowDuplicate        bool
	RemoveDuplicateTarget RemoveDuplicateTarget
	// AllowLevelExceedDatas lets MaxLevel go past the highest data level.
	AllowLevelExceedDatas bool
	MaxLevel              int
	Datas                 []Data
}

// StartedFunc observes Start and Release.
type StartedFunc func(e *Effect)

// CountChangedFunc observes apply count and stack changes.
type CountChangedFunc func(e *Effect, current, prev int)

// Effect is a running (or template) stackable modifier.
type Effect struct {
	def      Definition
	maxLevel int

	dataIdx int
	level   int

	currentStack      int
	currentDuration   float64
	currentApplyCount int
	currentApplyCycle float64
	applyTried        bool

	owner  any
	user   Target
	target Target
	scale  float64

	released            bool
	appliedStackActions []*StackAction

	onStarted      []StartedFunc
	onApplied      []CountChangedFunc
	onReleased     []StartedFunc
	onStackChanged []CountChangedFunc
}

// New creates an effect template. Datas are ordered by level.
// Panics if def has no data records.
func New(def Definition) *Effect {
	if len(def.Datas) == 0 {
		panic(fmt.Sprintf("effect: %q has no data", def.CodeName))
	}
	def.Datas = slices.Clone(def.Datas)
	slices.SortStableFunc(def.Datas, func(a, b Data) int { return a.Level - b.Level })

	maxLevel := def.Datas[len(def.Datas)-1].Level
	if def.AllowLevelExceedDatas {
		maxLevel = max(def.MaxLevel, maxLevel)
	}
	def.MaxLevel = maxLevel

	return &Effect{
		def:          def,
		maxLevel:     maxLevel,
		currentStack: 1,
		scale:        1,
	}
}

func (e *Effect) ID() int              { return e.def.ID }
func (e *Effect) CodeName() string     { return e.def.CodeName }
func (e *Effect) DisplayName() string  { return e.def.DisplayName }
func (e *Effect) Categories() []string { return e.def.Categories }
func (e *Effect) Type() Type           { return e.def.Type }
func (e *Effect) Datas() []Data        { return e.def.Datas }
func (e *Effect) Definition() Definition {
	return e.def
}

// HasCategory reports whether the effect belongs to category.
func (e *Effect) HasCategory(category string) bool {
	return slices.Contains(e.def.Categories, category)
}

func (e *Effect) IsAllowDuplicate() bool { return e.def.AllowDuplicate }

func (e *Effect) RemoveDuplicateTarget() RemoveDuplicateTarget {
	return e.def.RemoveDuplicateTarget
}

func (e *Effect) data() *Data { return &e.def.Datas[e.dataIdx] }

// CurrentData returns the data record selected by the current level.
func (e *Effect) CurrentData() Data { return *e.data() }

// DataFor returns the record with the highest level not above level.
func (e *Effect) DataFor(level int) Data {
	return e.def.Datas[dataIndex(e.def.Datas, level)]
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

func (e *Effect) MaxLevel() int    { return e.maxLevel }
func (e *Effect) Level() int       { return e.level }
func (e *Effect) IsMaxLevel() bool { return e.level == e.maxLevel }

// SetLevel changes the level and selects the matching data record.
// Panics unless 0 < level <= MaxLevel.
func (e *Effect) SetLevel(level int) {
	if level <= 0 || level > e.maxLevel {
		panic(fmt.Sprintf("effect: %q level %d out of range [1, %d]", e.def.CodeName, level, e.maxLevel))
	}
	if e.level == level {
		return
	}
	e.level = level
	e.dataIdx = dataIndex(e.def.Datas, level)
}

// DataBonusLevel is how far the level is above the selected data record.
// Action formulas scale their per-level bonus with it.
func (e *Effect) DataBonusLevel() int {
	return max(e.level-e.data().Level, 0)
}

// Duration returns the duration scaled by the user's stats.
func (e *Effect) Duration() float64 {
	var stats *stat.Stats
	if e.user != nil {
		stats = e.user.Stats()
	}
	return e.data().Duration.GetValue(stats)
}

// IsTimeless reports an infinite duration.
func (e *Effect) IsTimeless() bool { return mathx.Approximately(e.Duration(), infinity) }

func (e *Effect) CurrentDuration() float64 { return e.currentDuration }

// SetCurrentDuration sets the duration clock clamped into [0, Duration].
func (e *Effect) SetCurrentDuration(v float64) {
	e.currentDuration = mathx.Clamp(v, 0, e.Duration())
}

func (e *Effect) RemainDuration() float64 { return max(0, e.Duration()-e.currentDuration) }

func (e *Effect) MaxStack() int     { return e.data().MaxStack }
func (e *Effect) CurrentStack() int { return e.currentStack }

// SetCurrentStack sets the stack clamped into [1, MaxStack]. Raising (or
// re-setting) the stack restarts the duration. A changed stack notifies the
// action, resolves stack actions, then fires OnStackChanged.
func (e *Effect) SetCurrentStack(v int) {
	prev := e.currentStack
	e.currentStack = mathx.Clamp(v, 1, max(e.MaxStack(), 1))

	if e.currentStack >= prev {
		e.currentDuration = 0
	}
	if e.currentStack == prev {
		return
	}

	if a := e.data().Action; a != nil {
		a.OnEffectStackChanged(e, e.user, e.target, e.level, e.currentStack, e.scale)
	}
	e.tryApplyStackActions()

	for _, fn := range e.onStackChanged {
		fn(e, e.currentStack, prev)
	}
}

func (e *Effect) ApplyCount() int              { return e.data().ApplyCount }
func (e *Effect) IsInfinitelyApplicable() bool { return e.ApplyCount() == infinity }
func (e *Effect) CurrentApplyCount() int       { return e.currentApplyCount }

// SetCurrentApplyCount sets the counter, clamped to ApplyCount unless unlimited.
func (e *Effect) SetCurrentApplyCount(v int) {
	if e.IsInfinitelyApplicable() {
		e.currentApplyCount = v
		return
	}
	e.currentApplyCount = mathx.Clamp(v, 0, e.ApplyCount())
}

// ApplyCycle is the configured cycle, or Duration/(ApplyCount-1) when the
// cycle is unset and the effect applies more than once.
func (e *Effect) ApplyCycle() float64 {
	d := e.data()
	if mathx.Approximately(d.ApplyCycle, 0) && d.ApplyCount > 1 {
		return e.Duration() / float64(d.ApplyCount-1)
	}
	return d.ApplyCycle
}

func (e *Effect) CurrentApplyCycle() float64 { return e.currentApplyCycle }

// SetCurrentApplyCycle sets the cycle clock clamped into [0, ApplyCycle].
func (e *Effect) SetCurrentApplyCycle(v float64) {
	e.currentApplyCycle = mathx.Clamp(v, 0, e.ApplyCycle())
}

func (e *Effect) StackActions() []*StackAction { return e.data().StackActions }

// AppliedStackActions returns the stack actions currently in force.
func (e *Effect) AppliedStackActions() []*StackAction { return e.appliedStackActions }

func (e *Effect) Owner() any     { return e.owner }
func (e *Effect) User() Target   { return e.user }
func (e *Effect) Target() Target { return e.target }
func (e *Effect) Scale() float64 { return e.scale }

func (e *Effect) SetScale(scale float64) { e.scale = scale }

// SetTarget sets the entity the effect is applied to.
func (e *Effect) SetTarget(t Target) { e.target = t }

// CueEmitter routes cues to the target, falling back to the user.
func (e *Effect) CueEmitter() custom.Emitter {
	if em, ok := e.target.(custom.Emitter); ok {
		return em
	}
	if em, ok := e.user.(custom.Emitter); ok {
		return em
	}
	return nil
}

func (e *Effect) isDurationEnded() bool {
	return !e.IsTimeless() && mathx.Approximately(e.Duration(), e.currentDuration)
}

func (e *Effect) isApplyCompleted() bool {
	return !e.IsInfinitelyApplicable() && e.currentApplyCount == e.ApplyCount()
}

// IsFinished reports whether the effect should be released.
func (e *Effect) IsFinished() bool {
	if e.isDurationEnded() {
		return true
	}
	return e.data().FinishOption == FinishWhenApplyCompleted && e.isApplyCompleted()
}

func (e *Effect) IsReleased() bool { return e.released }

// IsApplicable reports whether an apply is due: an action exists, budget
// remains and the cycle clock has elapsed.
func (e *Effect) IsApplicable() bool {
	if e.data().Action == nil {
		return false
	}
	if e.currentApplyCount >= e.ApplyCount() && !e.IsInfinitelyApplicable() {
		return false
	}
	return e.currentApplyCycle >= e.ApplyCycle()
}

func (e *Effect) OnStarted(fn StartedFunc)           { e.onStarted = append(e.onStarted, fn) }
func (e *Effect) OnApplied(fn CountChangedFunc)      { e.onApplied = append(e.onApplied, fn) }
func (e *Effect) OnReleased(fn StartedFunc)          { e.onReleased = append(e.onReleased, fn) }
func (e *Effect) OnStackChanged(fn CountChangedFunc) { e.onStackChanged = append(e.onStackChanged, fn) }

// Setup binds the effect to its owner and user at level. The cycle clock
// starts full so that the first Update applies.
func (e *Effect) Setup(owner any, user Target, level int, scale float64) {
	e.owner = owner
	e.user = user
	e.SetLevel(level)
	e.SetCurrentApplyCycle(e.ApplyCycle())
	e.scale = scale
}

// Start runs the action's start hook and the first stack resolution.
// Panics if the effect was released.
func (e *Effect) Start() {
	e.mustNotBeReleased("start")

	if a := e.data().Action; a != nil {
		a.Start(e, e.user, e.target, e.level, e.scale)
	}
	e.tryApplyStackActions()
	custom.StartAll(e.data().CustomActions, e)

	for _, fn := range e.onStarted {
		fn(e)
	}
}

// Update advances both clocks by dt and applies when due. With
// ApplyAllWhenDurationExpires, an expired duration drains the remaining
// applies in one step.
func (e *Effect) Update(dt float64) {
	e.SetCurrentDuration(e.currentDuration + dt)
	e.currentApplyCycle += dt

	if e.IsApplicable() {
		e.Apply()
	}

	if e.data().ApplyAllWhenDurationExpires && e.isDurationEnded() && !e.IsInfinitelyApplicable() {
		for i := e.currentApplyCount; i < e.ApplyCount(); i++ {
			e.Apply()
		}
	}
}

// Apply runs the action once. Only a successful apply advances the counter and
// runs custom actions; a failed one marks the attempt so that the next success
// restarts the cycle from zero.
// Panics if released or if the apply budget is exhausted.
func (e *Effect) Apply() {
	e.mustNotBeReleased("apply")
	if !e.IsInfinitelyApplicable() && e.currentApplyCount >= e.ApplyCount() {
		panic(fmt.Sprintf("effect: %q applied beyond apply count %d", e.def.CodeName, e.ApplyCount()))
	}

	a := e.data().Action
	if a == nil {
		return
	}

	if !a.Apply(e, e.user, e.target, e.level, e.currentStack, e.scale) {
		e.applyTried = true
		return
	}

	custom.RunAll(e.data().CustomActions, e)

	prev := e.currentApplyCount
	e.SetCurrentApplyCount(prev + 1)

	if e.applyTried {
		e.currentApplyCycle = 0
	} else {
		e.currentApplyCycle = mathx.Mod(e.currentApplyCycle, e.ApplyCycle())
	}
	e.applyTried = false

	for _, fn := range e.onApplied {
		fn(e, e.currentApplyCount, prev)
	}
}

// Release ends the effect: the action's release hook, every applied stack
// action, then custom actions. Panics if already released.
func (e *Effect) Release() {
	e.mustNotBeReleased("release")

	if a := e.data().Action; a != nil {
		a.Release(e, e.user, e.target, e.level, e.scale)
	}
	e.releaseStackActions(func(*StackAction) bool { return true })
	custom.ReleaseAll(e.data().CustomActions, e)

	e.released = true

	for _, fn := range e.onReleased {
		fn(e)
	}
}

func (e *Effect) mustNotBeReleased(op string) {
	if e.released {
		panic(fmt.Sprintf("effect: %s on released effect %q", op, e.def.CodeName))
	}
}

func (e *Effect) releaseStackActions(match func(*StackAction) bool) {
	kept := e.appliedStackActions[:0]
	var released []*StackAction
	for _, sa := range e.appliedStackActions {
		if match(sa) {
			released = append(released, sa)
			continue
		}
		kept = append(kept, sa)
	}
	e.appliedStackActions = kept
	for _, sa := range released {
		sa.Release(e, e.level, e.user, e.target, e.scale)
	}
}

// tryApplyStackActions releases tiers above the current stack and applies the
// newly reached ones. A release-on-next-apply tier is skipped when a higher
// tier is (or becomes) active, and is released once a higher tier applies.
func (e *Effect) tryApplyStackActions() {
	e.releaseStackActions(func(sa *StackAction) bool { return sa.Stack() > e.currentStack })

	var candidates []*StackAction
	for _, sa := range e.data().StackActions {
		if sa.Stack() <= e.currentStack && !slices.Contains(e.appliedStackActions, sa) && sa.IsApplicable() {
			candidates = append(candidates, sa)
		}
	}

	highest := 0
	for _, sa := range e.appliedStackActions {
		highest = max(highest, sa.Stack())
	}
	for _, sa := range candidates {
		highest = max(highest, sa.Stack())
	}
	if highest > 0 {
		candidates = slices.DeleteFunc(candidates, func(sa *StackAction) bool {
			return sa.Stack() < highest && sa.IsReleaseOnNextApply()
		})
	}
	if len(candidates) == 0 {
		return
	}

	e.releaseStackActions(func(sa *StackAction) bool {
		return sa.Stack() < e.currentStack && sa.IsReleaseOnNextApply()
	})
	for _, sa := range candidates {
		sa.Apply(e, e.level, e.user, e.target, e.scale)
	}
	e.appliedStackActions = append(e.appliedStackActions, candidates...)
}

// Description returns the template description with keywords filled for
// effect index 0.
func (e *Effect) Description() string {
	return e.BuildDescription(e.def.Description, 0)
}

// BuildDescription fills $[duration.i], $[applyCount.i], $[applyCycle.i] and
// the action and stack action keywords for effect index i.
func (e *Effect) BuildDescription(description string, effectIndex int) string {
	idx := strconv.Itoa(effectIndex)
	description = textreplace.ReplaceSuffix(description, map[string]string{
		"duration":   textreplace.Number(e.Duration()),
		"applyCount": strconv.Itoa(e.ApplyCount()),
		"applyCycle": textreplace.Number(e.ApplyCycle()),
	}, idx)

	if a := e.data().Action; a != nil {
		description = BuildActionDescription(a, e, description, 0, 0, effectIndex)
	}

	// stack actions are numbered within their stack tier
	perStack := make(map[int]int)
	for _, sa := range e.data().StackActions {
		i := perStack[sa.Stack()]
		perStack[sa.Stack()] = i + 1
		description = sa.BuildDescription(e, description, i, effectIndex)
	}
	return description
}

// Clone returns an independent copy with fresh per-instance action state.
// A set up effect is set up again with the same owner, user, level and scale;
// the target and observers are not copied.
func (e *Effect) Clone() *Effect {
	def := e.def
	def.Categories = slices.Clone(e.def.Categories)
	def.Datas = make([]Data, len(e.def.Datas))
	for i, d := range e.def.Datas {
		def.Datas[i] = d.clone()
	}

	c := &Effect{
		def:          def,
		maxLevel:     e.maxLevel,
		currentStack: 1,
		scale:        1,
	}
	if e.owner != nil {
		c.Setup(e.owner, e.user, e.level, e.scale)
	}
	return c
}

func (e *Effect) String() string {
	return fmt.Sprintf("Effect{%s lv%d stack %d/%d applies %d/%d}",
		e.def.CodeName, e.level, e.currentStack, e.MaxStack(), e.currentApplyCount, e.ApplyCount())
}

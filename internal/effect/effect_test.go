package effect

import (
	"math"
	"slices"
	"testing"

	"github.com/udisondev/skillcore/internal/params"
	"github.com/udisondev/skillcore/internal/stat"
)

type fakeHost struct {
	effects []*Effect
	removed []*Effect
	byCat   []string
}

func (h *fakeHost) RemoveEffect(e *Effect) bool {
	h.removed = append(h.removed, e)
	return true
}

func (h *fakeHost) RemoveEffectByCategory(category string) bool {
	h.byCat = append(h.byCat, category)
	return true
}

func (h *fakeHost) RemoveEffectAllByCategory(category string) bool {
	h.byCat = append(h.byCat, "all:"+category)
	return true
}

func (h *fakeHost) RemoveEffectAll(match func(e *Effect) bool) bool {
	found := false
	for _, e := range h.effects {
		if match(e) {
			h.removed = append(h.removed, e)
			found = true
		}
	}
	return found
}

type fakeTarget struct {
	stats    *stat.Stats
	host     *fakeHost
	damage   []float64
	commands []StateCommand
	subs     map[int]DamageFunc
	nextSub  int
}

func newFakeTarget() *fakeTarget {
	hp := stat.New(stat.Definition{CodeName: "hp", DisplayName: "HP", Max: 1000, Default: 1000})
	atk := stat.New(stat.Definition{CodeName: "atk", DisplayName: "Attack", Max: 1000, Default: 20})
	haste := stat.New(stat.Definition{CodeName: "haste", Min: -1, Max: 1})
	return &fakeTarget{
		stats: stat.NewStats([]stat.Override{{Stat: hp}, {Stat: atk}, {Stat: haste}}, "hp", ""),
		host:  &fakeHost{},
		subs:  make(map[int]DamageFunc),
	}
}

func (t *fakeTarget) Stats() *stat.Stats { return t.stats }
func (t *fakeTarget) IsDead() bool       { return t.stats.HP().IsMin() }
func (t *fakeTarget) Effects() Host      { return t.host }

func (t *fakeTarget) TakeDamage(instigator Target, causer any, damage float64) {
	t.damage = append(t.damage, damage)
	t.stats.HP().IncreaseDefaultValue(-damage)
	for _, fn := range t.subs {
		fn(t, instigator, causer, damage)
	}
}

func (t *fakeTarget) OnTakeDamage(fn DamageFunc) func() {
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	return func() { delete(t.subs, id) }
}

func (t *fakeTarget) ExecuteStateCommand(cmd StateCommand) bool {
	t.commands = append(t.commands, cmd)
	return true
}

// recAction counts calls; results scripts Apply return values (true once
// exhausted).
type recAction struct {
	BaseAction
	name     string
	log      *[]string
	results  []bool
	applies  int
	starts   int
	releases int
	stacks   []int
}

func (a *recAction) Start(e *Effect, user, target Target, level int, scale float64) {
	a.starts++
	a.record("start")
}

func (a *recAction) Apply(e *Effect, user, target Target, level, stack int, scale float64) bool {
	ok := true
	if len(a.results) > 0 {
		ok, a.results = a.results[0], a.results[1:]
	}
	if ok {
		a.applies++
		a.record("apply")
	}
	return ok
}

func (a *recAction) Release(e *Effect, user, target Target, level int, scale float64) {
	a.releases++
	a.record("release")
}

func (a *recAction) OnEffectStackChanged(e *Effect, user, target Target, level, stack int, scale float64) {
	a.stacks = append(a.stacks, stack)
}

func (a *recAction) Keywords(e *Effect) map[string]string {
	return map[string]string{"name": a.name}
}

func (a *recAction) Clone() Action {
	return &recAction{name: a.name, log: a.log}
}

func (a *recAction) record(what string) {
	if a.log != nil {
		*a.log = append(*a.log, what+":"+a.name)
	}
}

func timedData(level int, duration float64, applyCount int, action Action) Data {
	return Data{
		Level:      level,
		MaxStack:   1,
		Action:     action,
		Duration:   stat.ScaleFloat{Default: duration},
		ApplyCount: applyCount,
	}
}

func setupEffect(t *testing.T, def Definition, level int) (*Effect, *fakeTarget) {
	t.Helper()
	user := newFakeTarget()
	target := newFakeTarget()
	e := New(def).Clone()
	e.Setup("owner", user, level, 1)
	e.SetTarget(target)
	return e, target
}

func TestEffect_LevelLookup(t *testing.T) {
	def := Definition{
		CodeName:              "burn",
		AllowLevelExceedDatas: true,
		MaxLevel:              6,
		Datas: []Data{
			timedData(5, 5, 1, &recAction{}),
			timedData(1, 1, 1, &recAction{}),
			timedData(3, 3, 1, &recAction{}),
		},
	}

	tests := []struct {
		level     int
		wantData  int
		wantBonus int
	}{
		{1, 1, 0},
		{2, 1, 1},
		{3, 3, 0},
		{4, 3, 1},
		{5, 5, 0},
		{6, 5, 1},
	}

	e := New(def)
	for _, tt := range tests {
		e.SetLevel(tt.level)
		if got := e.CurrentData().Level; got != tt.wantData {
			t.Errorf("level %d: data level = %d, want %d", tt.level, got, tt.wantData)
		}
		if got := e.DataBonusLevel(); got != tt.wantBonus {
			t.Errorf("level %d: DataBonusLevel = %d, want %d", tt.level, got, tt.wantBonus)
		}
	}
}

func TestEffect_MaxLevelFollowsDatas(t *testing.T) {
	def := Definition{
		CodeName: "burn",
		MaxLevel: 10,
		Datas:    []Data{timedData(1, 1, 1, nil), timedData(3, 1, 1, nil)},
	}
	if got := New(def).MaxLevel(); got != 3 {
		t.Errorf("MaxLevel() = %d, want 3 when levels may not exceed datas", got)
	}
	def.AllowLevelExceedDatas = true
	if got := New(def).MaxLevel(); got != 10 {
		t.Errorf("MaxLevel() = %d, want 10", got)
	}
}

func TestEffect_SetLevelPanics(t *testing.T) {
	e := New(Definition{CodeName: "x", Datas: []Data{timedData(1, 1, 1, nil)}})
	for _, level := range []int{0, 2, -1} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("SetLevel(%d) did not panic", level)
				}
			}()
			e.SetLevel(level)
		}()
	}
}

func TestEffect_ApplyCyclePeriodicity(t *testing.T) {
	def := Definition{CodeName: "dot", Datas: []Data{timedData(1, 10, 11, &recAction{})}}
	e, _ := setupEffect(t, def, 1)

	if got := e.ApplyCycle(); got != 1 {
		t.Fatalf("ApplyCycle() = %v, want 1", got)
	}
	if e.CurrentApplyCycle() != e.ApplyCycle() {
		t.Fatalf("Setup must fill the cycle clock, got %v", e.CurrentApplyCycle())
	}

	e.Start()
	for i := 0; i < 10; i++ {
		if e.IsFinished() {
			t.Fatalf("finished early at tick %d", i)
		}
		e.Update(1)
	}

	if got := e.CurrentApplyCount(); got != 10 {
		t.Errorf("CurrentApplyCount() = %d, want 10", got)
	}
	if !e.IsFinished() {
		t.Errorf("IsFinished() = false after full duration")
	}
	if got := e.CurrentData().Action.(*recAction).applies; got != 10 {
		t.Errorf("action applies = %d, want 10", got)
	}
}

func TestEffect_ApplyAllWhenDurationExpires(t *testing.T) {
	d := timedData(1, 3, 10, &recAction{})
	d.ApplyCycle = 5
	d.ApplyAllWhenDurationExpires = true
	e, _ := setupEffect(t, Definition{CodeName: "drain", Datas: []Data{d}}, 1)

	e.Start()
	for i := 0; i < 3; i++ {
		e.Update(1)
	}

	if got := e.CurrentApplyCount(); got != 10 {
		t.Errorf("CurrentApplyCount() = %d, want 10 after drain", got)
	}
	if !e.IsFinished() {
		t.Errorf("IsFinished() = false")
	}
}

func TestEffect_FinishOptions(t *testing.T) {
	tests := []struct {
		name   string
		option FinishOption
		want   bool
	}{
		{"apply completed finishes", FinishWhenApplyCompleted, true},
		{"duration must end", FinishWhenDurationEnded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := timedData(1, 10, 1, &recAction{})
			d.FinishOption = tt.option
			e, _ := setupEffect(t, Definition{CodeName: "buff", Datas: []Data{d}}, 1)
			e.Start()
			e.Update(0.1)

			if e.CurrentApplyCount() != 1 {
				t.Fatalf("CurrentApplyCount() = %d, want 1", e.CurrentApplyCount())
			}
			if got := e.IsFinished(); got != tt.want {
				t.Errorf("IsFinished() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEffect_FailedApplyRestartsCycle(t *testing.T) {
	act := &recAction{}
	d := timedData(1, 0, 0, act)
	d.ApplyCycle = 1
	e, _ := setupEffect(t, Definition{CodeName: "retry", Datas: []Data{d}}, 1)

	running := e.CurrentData().Action.(*recAction)
	running.results = []bool{false, true}

	e.Start()
	e.Update(0.5) // cycle 1.5, apply fails
	if e.CurrentApplyCount() != 0 {
		t.Fatalf("failed apply counted")
	}
	if got := e.CurrentApplyCycle(); math.Abs(got-1.5) > 1e-9 {
		t.Fatalf("cycle after failed apply = %v, want 1.5", got)
	}

	e.Update(0.25) // cycle 1.75, apply succeeds
	if e.CurrentApplyCount() != 1 {
		t.Fatalf("CurrentApplyCount() = %d, want 1", e.CurrentApplyCount())
	}
	if got := e.CurrentApplyCycle(); got != 0 {
		t.Errorf("cycle after retried apply = %v, want 0", got)
	}

	e.Update(1.25) // cycle 1.25, normal apply keeps remainder
	if got := e.CurrentApplyCycle(); math.Abs(got-0.25) > 1e-9 {
		t.Errorf("cycle after normal apply = %v, want 0.25", got)
	}
	if !e.IsTimeless() || e.IsFinished() {
		t.Errorf("timeless unlimited effect must not finish")
	}
}

func TestEffect_StackTiers(t *testing.T) {
	var log []string
	tier2 := NewStackAction(2, true, false, &recAction{name: "t2", log: &log})
	tier4 := NewStackAction(4, false, false, &recAction{name: "t4", log: &log})
	d := timedData(1, 10, 1, &recAction{name: "main"})
	d.MaxStack = 5
	d.StackActions = []*StackAction{tier2, tier4}

	e := New(Definition{CodeName: "rage", Datas: []Data{d}})
	e.Setup("owner", newFakeTarget(), 1, 1)
	e.SetTarget(newFakeTarget())
	e.Start()

	applied := func() []int {
		var out []int
		for _, sa := range e.AppliedStackActions() {
			out = append(out, sa.Stack())
		}
		slices.Sort(out)
		return out
	}

	steps := []struct {
		stack int
		want  []int
	}{
		{1, nil},
		{2, []int{2}},
		{3, []int{2}},
		{4, []int{4}},
		{5, []int{4}},
		{3, []int{2}},
		{1, nil},
	}
	for _, s := range steps {
		e.SetCurrentStack(s.stack)
		if got := applied(); !slices.Equal(got, s.want) {
			t.Errorf("stack %d: applied = %v, want %v", s.stack, got, s.want)
		}
	}

	wantLog := []string{"apply:t2", "release:t2", "apply:t4", "release:t4", "apply:t2", "release:t2"}
	if !slices.Equal(log, wantLog) {
		t.Errorf("log = %v, want %v", log, wantLog)
	}

	if got := e.CurrentData().Action.(*recAction).stacks; !slices.Equal(got, []int{2, 3, 4, 5, 3, 1}) {
		t.Errorf("OnEffectStackChanged stacks = %v", got)
	}
}

func TestEffect_StackActionOnceInLife(t *testing.T) {
	once := NewStackAction(2, false, true, &recAction{})
	d := timedData(1, 10, 1, &recAction{})
	d.MaxStack = 3
	d.StackActions = []*StackAction{once}

	e := New(Definition{CodeName: "once", Datas: []Data{d}})
	e.Setup("owner", newFakeTarget(), 1, 1)
	e.SetTarget(newFakeTarget())

	e.SetCurrentStack(2)
	e.SetCurrentStack(1)
	e.SetCurrentStack(2)

	if got := once.Action().(*recAction).applies; got != 1 {
		t.Errorf("tier applies = %d, want 1", got)
	}
	if len(e.AppliedStackActions()) != 0 {
		t.Errorf("once-in-life tier applied twice")
	}
	if !once.HasEverApplied() || once.IsApplicable() {
		t.Errorf("once-in-life tier state: ever=%v applicable=%v", once.HasEverApplied(), once.IsApplicable())
	}
}

func TestEffect_StackResetsDuration(t *testing.T) {
	d := timedData(1, 10, 1, &recAction{})
	d.MaxStack = 2
	e, _ := setupEffect(t, Definition{CodeName: "s", Datas: []Data{d}}, 1)
	e.Start()
	e.Update(4)

	var events [][2]int
	e.OnStackChanged(func(_ *Effect, cur, prev int) { events = append(events, [2]int{cur, prev}) })

	e.SetCurrentStack(2)
	if e.CurrentDuration() != 0 {
		t.Errorf("raising stack must restart duration, got %v", e.CurrentDuration())
	}
	e.Update(4)
	e.SetCurrentStack(9)
	if e.CurrentStack() != 2 {
		t.Errorf("stack not clamped: %d", e.CurrentStack())
	}
	if e.CurrentDuration() != 0 {
		t.Errorf("re-applying at max stack must restart duration")
	}
	if len(events) != 1 || events[0] != [2]int{2, 1} {
		t.Errorf("stack events = %v, want [[2 1]]", events)
	}
}

func TestEffect_LifecycleEventsAndPanics(t *testing.T) {
	e, _ := setupEffect(t, Definition{CodeName: "life", Datas: []Data{timedData(1, 1, 1, &recAction{})}}, 1)

	var order []string
	e.OnStarted(func(*Effect) { order = append(order, "started") })
	e.OnApplied(func(_ *Effect, cur, prev int) { order = append(order, "applied") })
	e.OnReleased(func(*Effect) { order = append(order, "released") })

	e.Start()
	e.Update(0.1)
	e.Release()

	if !slices.Equal(order, []string{"started", "applied", "released"}) {
		t.Errorf("order = %v", order)
	}
	if !e.IsReleased() {
		t.Fatalf("IsReleased() = false")
	}

	tests := []struct {
		name string
		fn   func()
	}{
		{"release twice", e.Release},
		{"start after release", e.Start},
		{"apply after release", e.Apply},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("expected panic")
				}
			}()
			tt.fn()
		})
	}
}

func TestEffect_ApplyBeyondCountPanics(t *testing.T) {
	e, _ := setupEffect(t, Definition{CodeName: "one", Datas: []Data{timedData(1, 5, 1, &recAction{})}}, 1)
	e.Start()
	e.Apply()

	defer func() {
		if recover() == nil {
			t.Errorf("Apply() beyond apply count did not panic")
		}
	}()
	e.Apply()
}

func TestEffect_CloneRoundTrip(t *testing.T) {
	template := New(Definition{
		CodeName: "dot",
		Datas:    []Data{timedData(1, 10, 11, &recAction{})},
	})

	used := template.Clone()
	used.Setup("skill", newFakeTarget(), 1, 1)
	used.SetTarget(newFakeTarget())
	used.Start()
	for i := 0; i < 5; i++ {
		used.Update(1)
	}
	used.Release()

	fresh := template.Clone()
	fresh.Setup("skill", newFakeTarget(), 1, 1)

	if fresh.CurrentDuration() != 0 || fresh.CurrentApplyCount() != 0 || fresh.CurrentStack() != 1 {
		t.Errorf("fresh clone carries state: %v", fresh)
	}
	if fresh.CurrentApplyCycle() != fresh.ApplyCycle() {
		t.Errorf("fresh cycle = %v, want %v", fresh.CurrentApplyCycle(), fresh.ApplyCycle())
	}
	if fresh.IsReleased() {
		t.Errorf("fresh clone is released")
	}
	if fresh.CurrentData().Action == used.CurrentData().Action {
		t.Errorf("clones share an action instance")
	}

	again := used.Clone()
	if again.Owner() != "skill" || again.Level() != 1 || again.Target() != nil {
		t.Errorf("clone of set up effect: owner=%v level=%d target=%v", again.Owner(), again.Level(), again.Target())
	}
}

func TestEffect_Description(t *testing.T) {
	d := timedData(1, 10, 11, &recAction{name: "main"})
	d.StackActions = []*StackAction{
		NewStackAction(2, false, false, &recAction{name: "a"}),
		NewStackAction(2, false, false, &recAction{name: "b"}),
	}
	e := New(Definition{
		CodeName:    "dot",
		Description: "$[duration.0]s $[applyCount.0]x every $[applyCycle.0]s $[effectAction.name.0] $[effectAction.name.1.2.0]",
		Datas:       []Data{d},
	})

	want := "10s 11x every 1s main b"
	if got := e.Description(); got != want {
		t.Errorf("Description() = %q, want %q", got, want)
	}
}

func TestDealDamageAction(t *testing.T) {
	tests := []struct {
		name  string
		p     params.Params
		level int
		stack int
		scale float64
		want  float64
	}{
		{"flat", params.Params{"damage": "10"}, 1, 1, 1, 10},
		{"per level", params.Params{"damage": "10", "per_level": "2"}, 3, 1, 1, 14},
		{"per stack", params.Params{"damage": "10", "per_stack": "3"}, 1, 3, 1, 16},
		{"user stat", params.Params{"damage": "10", "stat": "atk", "factor": "0.5"}, 1, 1, 1, 20},
		{"missing stat", params.Params{"damage": "10", "stat": "nope", "factor": "0.5"}, 1, 1, 1, 10},
		{"all scaled", params.Params{"damage": "10", "per_level": "2", "per_stack": "3", "stat": "atk", "factor": "0.5"}, 2, 3, 2, 56},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Data{Level: 1, MaxStack: 5, Action: NewDealDamageAction(tt.p), Duration: stat.ScaleFloat{Default: 1}, ApplyCount: 1}
			def := Definition{CodeName: "hit", AllowLevelExceedDatas: true, MaxLevel: 5, Datas: []Data{d}}
			e, target := setupEffect(t, def, tt.level)
			e.SetScale(tt.scale)
			e.SetCurrentStack(tt.stack)
			e.Apply()

			if len(target.damage) != 1 || math.Abs(target.damage[0]-tt.want) > 1e-9 {
				t.Errorf("damage = %v, want %v", target.damage, tt.want)
			}
		})
	}
}

func TestIncreaseStatAction(t *testing.T) {
	tests := []struct {
		name        string
		p           params.Params
		wantApplied float64
		wantBonus   bool
	}{
		{"bonus", params.Params{"stat": "atk", "value": "5"}, 25, true},
		{"default", params.Params{"stat": "atk", "value": "5", "bonus": "false"}, 25, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Data{Level: 1, MaxStack: 3, Action: NewIncreaseStatAction(tt.p), Duration: stat.ScaleFloat{Default: 10}, ApplyCount: 1}
			e, target := setupEffect(t, Definition{CodeName: "up", Datas: []Data{d}}, 1)
			action := e.CurrentData().Action

			e.Start()
			e.Update(0.1)

			if got := target.stats.GetValue("atk"); got != tt.wantApplied {
				t.Fatalf("atk = %v, want %v", got, tt.wantApplied)
			}
			if got := target.stats.ContainsBonus("atk", action); got != tt.wantBonus {
				t.Errorf("ContainsBonus = %v, want %v", got, tt.wantBonus)
			}

			e.Release()
			if got := target.stats.GetValue("atk"); got != 20 {
				t.Errorf("atk after release = %v, want 20", got)
			}
		})
	}
}

func TestIncreaseStatAction_StackChange(t *testing.T) {
	for _, bonus := range []string{"true", "false"} {
		t.Run("bonus="+bonus, func(t *testing.T) {
			p := params.Params{"stat": "atk", "value": "5", "per_stack": "5", "bonus": bonus}
			d := Data{Level: 1, MaxStack: 3, Action: NewIncreaseStatAction(p), Duration: stat.ScaleFloat{Default: 10}, ApplyCount: 1}
			e, target := setupEffect(t, Definition{CodeName: "up", Datas: []Data{d}}, 1)

			e.Start()
			e.Update(0.1)
			e.SetCurrentStack(3)
			if got := target.stats.GetValue("atk"); got != 35 {
				t.Errorf("atk at stack 3 = %v, want 35", got)
			}
			e.Release()
			if got := target.stats.GetValue("atk"); got != 20 {
				t.Errorf("atk after release = %v, want 20", got)
			}
		})
	}
}

func TestControlActions(t *testing.T) {
	stun := Data{Level: 1, MaxStack: 1, Action: NewStunAction(params.Params{"remove_category": "sleep"}), Duration: stat.ScaleFloat{Default: 2}, ApplyCount: 1}
	e, target := setupEffect(t, Definition{CodeName: "stun", Datas: []Data{stun}}, 1)
	e.Start()
	e.Update(0.1)
	e.Release()

	if !slices.Equal(target.commands, []StateCommand{ToStunning, ToDefault}) {
		t.Errorf("stun commands = %v", target.commands)
	}
	if !slices.Equal(target.host.byCat, []string{"all:sleep"}) {
		t.Errorf("stun removals = %v", target.host.byCat)
	}
}

func TestSleepAction_WakesOnDirectDamage(t *testing.T) {
	sleep := Data{Level: 1, MaxStack: 1, Action: NewSleepAction(params.Params{"dot_category": "dot"}), Duration: stat.ScaleFloat{Default: 5}, ApplyCount: 1}
	e, target := setupEffect(t, Definition{CodeName: "sleep", Datas: []Data{sleep}}, 1)
	e.Start()
	e.Update(0.1)

	dot := New(Definition{CodeName: "poison", Categories: []string{"dot"}, Datas: []Data{timedData(1, 1, 1, nil)}})
	target.TakeDamage(nil, dot, 1)
	if len(target.host.removed) != 0 {
		t.Fatalf("dot damage woke the target")
	}

	target.TakeDamage(nil, "sword", 1)
	if len(target.host.removed) != 1 || target.host.removed[0] != e {
		t.Fatalf("direct damage did not remove sleep: %v", target.host.removed)
	}

	e.Release()
	if len(target.subs) != 0 {
		t.Errorf("sleep did not unsubscribe")
	}
	if !slices.Equal(target.commands, []StateCommand{ToSleeping, ToDefault}) {
		t.Errorf("sleep commands = %v", target.commands)
	}
}

func TestCreateAction(t *testing.T) {
	for _, name := range []string{"DealDamage", "IncreaseStat", "RemoveEffectByCategory", "Stun", "Sleep"} {
		if a, err := CreateAction(name, nil); err != nil || a == nil {
			t.Errorf("CreateAction(%q) = %v, %v", name, a, err)
		}
	}
	if _, err := CreateAction("Nope", nil); err == nil {
		t.Errorf("CreateAction(Nope) error = nil")
	}
}

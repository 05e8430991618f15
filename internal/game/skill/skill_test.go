package skill

import (
	"math"
	"slices"
	"testing"

	"github.com/udisondev/skillcore/internal/custom"
	"github.com/udisondev/skillcore/internal/fsm"
	"github.com/udisondev/skillcore/internal/params"
	"github.com/udisondev/skillcore/internal/stat"
)

func TestInstantSkill_UseAppliesThenCoolsDown(t *testing.T) {
	action := &countAction{}
	def := testDefinition(1, "slash", action)
	def.Datas[0].Cooldown = stat.ScaleFloat{Default: 5}

	e := newTestEntity("hero", ControlAI, nil)
	s := e.Skills().RegisterWithoutCost(New(def), 0)

	var states []fsm.StateID
	s.OnStateChanged(func(_ *Skill, next, _ fsm.StateID, layer int) {
		if layer == 0 {
			states = append(states, next)
		}
	})

	if !s.IsReady() || !s.IsUseable() {
		t.Fatalf("registered skill should be ready and useable, state %s", s.CurrentStateID(0))
	}
	if err := e.Skills().Use(s); err != nil {
		t.Fatalf("Use: %v", err)
	}
	e.Update(0.1)
	if action.applies != 1 {
		t.Fatalf("applies = %d, want 1", action.applies)
	}
	if !s.IsActivated() || len(e.Skills().RunningSkills()) != 1 {
		t.Errorf("skill in action should be activated and running")
	}

	e.Update(0.1)
	want := []fsm.StateID{StateSearchingTarget, StateInAction, StateCooldown}
	if !slices.Equal(states, want) {
		t.Errorf("states = %v, want %v", states, want)
	}
	if s.IsActivated() || len(e.Skills().RunningSkills()) != 0 {
		t.Errorf("skill in cooldown should be deactivated")
	}
	if action.starts != 1 || action.releases != 1 {
		t.Errorf("starts/releases = %d/%d, want 1/1", action.starts, action.releases)
	}
	if !approx(s.CurrentCooldown(), 5) {
		t.Errorf("CurrentCooldown = %v, want 5", s.CurrentCooldown())
	}
	if s.IsUseable() {
		t.Errorf("skill in cooldown must not be useable")
	}
}

func TestSkill_CooldownGating(t *testing.T) {
	tests := []struct {
		name string
		dt   float64
	}{
		{"tenth", 0.1},
		{"quarter", 0.25},
		{"uneven", 0.3},
		{"second", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := testDefinition(1, "slash", &countAction{})
			def.Datas[0].Cooldown = stat.ScaleFloat{Default: 5}

			e := newTestEntity("hero", ControlAI, nil)
			s := e.Skills().RegisterWithoutCost(New(def), 0)
			s.Use()
			tickUntil(t, e, tt.dt, 3, func() bool { return s.IsInState(StateCooldown) })

			ticks := 0
			for !s.IsCooldownCompleted() {
				if s.IsUseable() {
					t.Fatalf("useable during cooldown after %d ticks", ticks)
				}
				e.Update(tt.dt)
				ticks++
				if ticks > 1000 {
					t.Fatal("cooldown never completed")
				}
			}
			if want := int(math.Ceil(5 / tt.dt)); ticks != want {
				t.Errorf("cooldown ticks = %d, want %d", ticks, want)
			}

			e.Update(tt.dt)
			if !s.IsReady() || !s.IsUseable() {
				t.Errorf("skill should be ready after cooldown, state %s", s.CurrentStateID(0))
			}
		})
	}
}

func TestSkill_LevelSelectsData(t *testing.T) {
	def := testDefinition(1, "bolt", &countAction{})
	d := def.Datas[0]
	def.Datas = nil
	for _, level := range []int{5, 1, 3} {
		rec := d
		rec.Level = level
		def.Datas = append(def.Datas, rec)
	}
	s := New(def)

	if s.MaxLevel() != 5 {
		t.Fatalf("MaxLevel = %d, want 5", s.MaxLevel())
	}

	tests := []struct {
		level     int
		dataLevel int
		bonus     int
	}{
		{1, 1, 0},
		{2, 1, 1},
		{3, 3, 0},
		{4, 3, 1},
		{5, 5, 0},
	}
	for _, tt := range tests {
		s.SetLevel(tt.level)
		if got := s.CurrentData().Level; got != tt.dataLevel {
			t.Errorf("level %d: data level = %d, want %d", tt.level, got, tt.dataLevel)
		}
		if got := s.DataBonusLevel(); got != tt.bonus {
			t.Errorf("level %d: DataBonusLevel = %d, want %d", tt.level, got, tt.bonus)
		}
	}

	mustPanic(t, "level 0", func() { s.SetLevel(0) })
	mustPanic(t, "level 6", func() { s.SetLevel(6) })
}

func TestSkill_LevelUp(t *testing.T) {
	def := testDefinition(1, "bolt", &countAction{})
	second := def.Datas[0]
	second.Level = 2
	cond, err := NewRequireStatCondition(params.Params{"stat": "level", "value": "2"})
	if err != nil {
		t.Fatal(err)
	}
	def.Datas[0].LevelUpConditions = []EntityCondition{cond}
	def.Datas[0].LevelUpCosts = []Cost{mustStatCost(t, "sp", 3)}
	def.Datas = append(def.Datas, second)

	e := newTestEntity("hero", ControlPlayer, map[string]float64{"level": 1, "sp": 5})
	s := e.Skills().RegisterWithoutCost(New(def), 1)

	if s.IsCanLevelUp() {
		t.Fatal("level 1 owner must not pass the level-up condition")
	}
	mustPanic(t, "LevelUp", s.LevelUp)

	e.Stats().SetDefaultValue("level", 2)
	if !s.IsCanLevelUp() {
		t.Fatal("owner should be able to level up")
	}

	var got, prev int
	s.OnLevelChanged(func(_ *Skill, current, p int) { got, prev = current, p })
	s.LevelUp()
	if got != 2 || prev != 1 {
		t.Errorf("OnLevelChanged(%d, %d), want (2, 1)", got, prev)
	}
	if sp := e.Stats().GetDefaultValue("sp"); sp != 2 {
		t.Errorf("sp = %v, want 2", sp)
	}
	if !s.IsMaxLevel() || s.IsCanLevelUp() {
		t.Errorf("skill should be at max level")
	}
}

func TestSkill_AutoApplyCycle(t *testing.T) {
	action := &countAction{}
	def := testDefinition(1, "storm", action)
	def.Datas[0].Duration = 10
	def.Datas[0].ApplyCount = 11

	e := newTestEntity("hero", ControlAI, nil)
	s := e.Skills().RegisterWithoutCost(New(def), 0)

	if got := s.ApplyCycle(); got != 1 {
		t.Fatalf("ApplyCycle = %v, want 1", got)
	}

	s.Use()
	e.Update(1)
	if !s.IsInState(StateInAction) || s.CurrentApplyCount() != 1 {
		t.Fatalf("entering the action applies once, state %s count %d", s.CurrentStateID(0), s.CurrentApplyCount())
	}

	for range 10 {
		e.Update(1)
	}
	if s.CurrentApplyCount() != 11 || action.applies != 11 {
		t.Errorf("apply count = %d (action %d), want 11", s.CurrentApplyCount(), action.applies)
	}
	if !s.IsFinished() {
		t.Errorf("skill should be finished")
	}

	e.Update(1)
	if !s.IsReady() || s.CurrentApplyCount() != 0 {
		t.Errorf("finished skill without cooldown returns to ready with reset counters")
	}
}

func TestSkill_InputExecution(t *testing.T) {
	action := &countAction{}
	def := testDefinition(1, "combo", action)
	def.ExecutionType = ExecutionInput
	def.Datas[0].ApplyCount = 3

	e := newTestEntity("hero", ControlAI, nil)
	s := e.Skills().RegisterWithoutCost(New(def), 0)

	s.Use()
	e.Update(0.1)
	if action.applies != 1 {
		t.Fatalf("applies = %d, want 1", action.applies)
	}

	for i := 2; i <= 3; i++ {
		if !s.IsUseable() {
			t.Fatalf("input skill should be useable for apply %d", i)
		}
		if !s.Use() {
			t.Fatalf("Use %d was not handled", i)
		}
		if action.applies != i {
			t.Fatalf("applies = %d, want %d", action.applies, i)
		}
	}
	if s.IsUseable() {
		t.Errorf("exhausted input skill must not be useable")
	}

	e.Update(0.1)
	if !s.IsReady() {
		t.Errorf("state = %s, want ready", s.CurrentStateID(0))
	}
}

func TestSkill_InputExecutionCancel(t *testing.T) {
	def := testDefinition(1, "combo", &countAction{})
	def.ExecutionType = ExecutionInput
	def.Datas[0].ApplyCount = 3

	e := newTestEntity("hero", ControlAI, nil)
	s := e.Skills().RegisterWithoutCost(New(def), 0)
	s.Use()
	e.Update(0.1)

	canceled := 0
	s.OnCanceled(func(*Skill) { canceled++ })

	if s.Cancel(false) {
		t.Errorf("a plain cancel must not interrupt an input skill in action")
	}
	if !s.IsInState(StateInAction) {
		t.Fatalf("state = %s, want in_action", s.CurrentStateID(0))
	}
	if !s.Cancel(true) || !s.IsReady() {
		t.Errorf("forced cancel should return to ready, state %s", s.CurrentStateID(0))
	}
	if canceled != 1 {
		t.Errorf("OnCanceled fired %d times, want 1", canceled)
	}
}

type cueRecorder struct {
	cues []string
}

func (r *cueRecorder) record(_ *Entity, name string, _ any) { r.cues = append(r.cues, name) }

func TestSkill_CastRunsCustomActions(t *testing.T) {
	action := &countAction{}
	def := testDefinition(1, "fireball", action)
	def.Datas[0].UseCast = true
	def.Datas[0].CastTime = stat.ScaleFloat{Default: 1}
	def.Datas[0].CustomActions = map[CustomActionType][]custom.Action{
		CustomOnCast: {custom.NewCueAction(params.Params{"cue": "cast_start"})},
	}

	e := newTestEntity("hero", ControlAI, nil)
	rec := &cueRecorder{}
	e.OnCue(rec.record)
	s := e.Skills().RegisterWithoutCost(New(def), 0)

	s.Use()
	e.Update(0.5)
	if !s.IsInState(StateCasting) {
		t.Fatalf("state = %s, want casting", s.CurrentStateID(0))
	}
	if !slices.Equal(rec.cues, []string{"cast_start"}) {
		t.Errorf("cues = %v, want [cast_start]", rec.cues)
	}

	e.Update(0.5)
	e.Update(0.5)
	if !s.IsCastCompleted() || action.applies != 0 {
		t.Fatalf("cast should be complete without applying yet, applies %d", action.applies)
	}
	e.Update(0.5)
	if action.applies != 1 {
		t.Errorf("applies = %d, want 1 after the cast", action.applies)
	}
}

func chargeDefinition(action Action) Definition {
	def := testDefinition(1, "arrow", action)
	def.Datas[0].UseCharge = true
	def.Datas[0].ChargeTime = 2
	def.Datas[0].ChargeDuration = 3
	def.Datas[0].NeedChargeTimeToUse = 1
	def.Datas[0].StartChargePower = 0.5
	return def
}

func TestSkill_ChargeAIReleasesAtMaxCharge(t *testing.T) {
	action := &countAction{}
	e := newTestEntity("orc", ControlAI, nil)
	s := e.Skills().RegisterWithoutCost(New(chargeDefinition(action)), 0)

	s.Use()
	if !s.IsInState(StateCharging) {
		t.Fatalf("state = %s, want charging", s.CurrentStateID(0))
	}

	e.Update(0.5)
	if !approx(s.CurrentChargePower(), 0.625) {
		t.Errorf("charge power = %v, want 0.625", s.CurrentChargePower())
	}
	for range 3 {
		e.Update(0.5)
	}
	if action.applies != 0 {
		t.Fatalf("applied while charging")
	}
	e.Update(0.5)
	if action.applies != 1 {
		t.Fatalf("applies = %d, want 1 after max charge", action.applies)
	}
	if !approx(s.CurrentChargePower(), 1) {
		t.Errorf("charge power = %v, want 1", s.CurrentChargePower())
	}
}

func TestSkill_ChargePlayerWaitsForMinCharge(t *testing.T) {
	action := &countAction{}
	e := newTestEntity("hero", ControlPlayer, nil)
	s := e.Skills().RegisterWithoutCost(New(chargeDefinition(action)), 0)

	s.Use()
	ticks := tickUntil(t, e, 0.5, 10, func() bool { return action.applies == 1 })
	if ticks != 4 {
		t.Errorf("applied after %d ticks, want 4", ticks)
	}
	if !approx(s.CurrentChargePower(), 0.875) {
		t.Errorf("charge power = %v, want 0.875", s.CurrentChargePower())
	}
}

func TestSkill_ChargeCancelOnTimeout(t *testing.T) {
	action := &countAction{}
	def := chargeDefinition(action)
	def.Datas[0].ChargeTime = 5
	def.Datas[0].ChargeDuration = 2
	def.Datas[0].ChargeFinishAction = ChargeFinishCancel
	def.Datas[0].Cooldown = stat.ScaleFloat{Default: 1}

	e := newTestEntity("orc", ControlAI, nil)
	s := e.Skills().RegisterWithoutCost(New(def), 0)

	s.Use()
	tickUntil(t, e, 0.5, 10, func() bool { return s.IsInState(StateCooldown) })
	if action.applies != 0 || action.starts != 0 {
		t.Errorf("a dropped charge must not act, applies %d starts %d", action.applies, action.starts)
	}
	if s.IsActivated() {
		t.Errorf("dropped charge should be deactivated")
	}
}

func TestToggleSkill_SwitchOnAndOff(t *testing.T) {
	action := &countAction{}
	def := testDefinition(1, "aura", action)
	def.UseType = UseToggle
	def.ExecutionType = ExecutionInput
	def.Datas[0].ApplyCount = 0
	def.Datas[0].Cooldown = stat.ScaleFloat{Default: 2}
	def.Datas[0].Costs = []Cost{mustStatCost(t, "mp", 1)}

	e := newTestEntity("hero", ControlPlayer, map[string]float64{"mp": 10})
	s := e.Skills().RegisterWithoutCost(New(def), 0)

	if !s.Use() {
		t.Fatal("Use was not handled")
	}
	if !s.IsInStateOn(StateCooldown, 1) {
		t.Errorf("switching on starts the cooldown layer")
	}

	e.Update(0.5)
	if !s.IsInStateOn(StateInAction, 0) || !s.IsActivated() {
		t.Fatalf("toggle should be on, state %s", s.CurrentStateID(0))
	}
	if mp := e.Stats().GetDefaultValue("mp"); mp != 9 {
		t.Errorf("mp = %v after activation, want 9", mp)
	}

	e.Update(0.5)
	if mp := e.Stats().GetDefaultValue("mp"); !approx(mp, 8.5) {
		t.Errorf("mp = %v after upkeep, want 8.5", mp)
	}
	if !approx(s.CurrentCooldown(), 1) {
		t.Fatalf("cooldown = %v, want 1", s.CurrentCooldown())
	}

	if !s.IsUseable() || !s.Use() {
		t.Fatal("toggle should switch off on Use")
	}
	if !s.IsInStateOn(StateCooldown, 0) || s.IsActivated() {
		t.Errorf("switched off toggle should wait out the cooldown")
	}
	if !approx(s.CurrentCooldown(), 1) {
		t.Errorf("cooldown = %v, want the remaining 1", s.CurrentCooldown())
	}
	if action.releases != 1 {
		t.Errorf("releases = %d, want 1", action.releases)
	}

	for range 3 {
		e.Update(0.5)
	}
	if !s.IsInStateOn(StateReady, 0) || !s.IsInStateOn(StateReady, 1) {
		t.Errorf("both layers should be ready, got %s/%s", s.CurrentStateID(0), s.CurrentStateID(1))
	}
}

func TestToggleSkill_CooldownRunsOnceAcrossLayers(t *testing.T) {
	def := testDefinition(1, "aura", &countAction{})
	def.UseType = UseToggle
	def.ExecutionType = ExecutionInput
	def.Datas[0].ApplyCount = 0
	def.Datas[0].Cooldown = stat.ScaleFloat{Default: 2}

	e := newTestEntity("hero", ControlPlayer, nil)
	s := e.Skills().RegisterWithoutCost(New(def), 0)

	s.Use()
	e.Update(0.5)
	e.Update(0.5)
	if !approx(s.CurrentCooldown(), 1) {
		t.Fatalf("cooldown = %v after 1s on, want 1", s.CurrentCooldown())
	}

	// Switched off mid-cooldown: both layers wait on the same clock.
	s.Use()
	if !s.IsInStateOn(StateCooldown, 0) || !s.IsInStateOn(StateCooldown, 1) {
		t.Fatalf("states = %s/%s, want cooldown on both layers", s.CurrentStateID(0), s.CurrentStateID(1))
	}

	steps := []struct {
		cooldown float64
		ready    bool
	}{
		{cooldown: 0.5},
		{cooldown: 0},
		{cooldown: 0, ready: true},
	}
	for i, step := range steps {
		e.Update(0.5)
		if !approx(s.CurrentCooldown(), step.cooldown) {
			t.Errorf("step %d: cooldown = %v, want %v", i, s.CurrentCooldown(), step.cooldown)
		}
		ready := s.IsInStateOn(StateReady, 0) && s.IsInStateOn(StateReady, 1)
		if ready != step.ready {
			t.Errorf("step %d: ready = %v (%s/%s), want %v",
				i, ready, s.CurrentStateID(0), s.CurrentStateID(1), step.ready)
		}
		if s.IsUseable() != step.ready {
			t.Errorf("step %d: useable = %v, want %v", i, s.IsUseable(), step.ready)
		}
	}
}

func TestToggleSkill_EndsWhenUpkeepRunsOut(t *testing.T) {
	action := &countAction{}
	def := testDefinition(1, "aura", action)
	def.UseType = UseToggle
	def.ExecutionType = ExecutionInput
	def.Datas[0].ApplyCount = 0
	def.Datas[0].Costs = []Cost{mustStatCost(t, "mp", 1)}

	e := newTestEntity("hero", ControlPlayer, map[string]float64{"mp": 2})
	s := e.Skills().RegisterWithoutCost(New(def), 0)

	if !s.Use() {
		t.Fatal("Use was not handled")
	}
	e.Update(0.5)
	if !s.IsInStateOn(StateInAction, 0) {
		t.Fatalf("toggle should be on, state %s", s.CurrentStateID(0))
	}

	// No cooldown: layer 1 never leaves Ready, so only layer 0 tells the
	// toggle apart from a running one.
	if !s.IsInStateOn(StateReady, 1) {
		t.Fatalf("layer 1 state = %s, want ready", s.CurrentStateID(1))
	}
	tickUntil(t, e, 0.5, 10, func() bool { return s.IsInStateOn(StateReady, 0) })
	if mp := e.Stats().GetDefaultValue("mp"); mp >= 1 || mp < 0 {
		t.Errorf("mp = %v, toggle should end once it cannot pay the upkeep", mp)
	}
	if s.IsActivated() || len(e.Skills().RunningSkills()) != 0 {
		t.Errorf("ended toggle should be deactivated")
	}
	if action.releases != 1 {
		t.Errorf("releases = %d, want 1", action.releases)
	}
}

func TestPassiveSkill_RunsUntilUnregistered(t *testing.T) {
	action := &countAction{}
	def := testDefinition(1, "regen", action)
	def.Type = TypePassive
	def.Datas[0].ApplyCount = 0
	def.Datas[0].ApplyCycle = 1

	e := newTestEntity("hero", ControlAI, nil)
	s := e.Skills().RegisterWithoutCost(New(def), 0)

	for range 5 {
		e.Update(1)
	}
	if action.applies != 4 {
		t.Errorf("applies = %d, want 4", action.applies)
	}
	if len(e.Skills().RunningSkills()) != 1 {
		t.Errorf("passive should be running")
	}

	mustPanic(t, "Cancel passive", func() { s.Cancel(true) })

	if !e.Skills().Unregister(s) {
		t.Fatal("Unregister returned false")
	}
	if len(e.Skills().RunningSkills()) != 0 || e.Skills().Find(s) != nil {
		t.Errorf("unregistered passive should be gone")
	}
	if action.releases != 1 {
		t.Errorf("releases = %d, want 1", action.releases)
	}
}

func TestSkill_CloneIsIndependent(t *testing.T) {
	def := testDefinition(1, "bolt", &countAction{})
	second := def.Datas[0]
	second.Level = 2
	def.Datas = append(def.Datas, second)

	e := newTestEntity("hero", ControlAI, nil)
	s := e.Skills().RegisterWithoutCost(New(def), 2)

	c := s.Clone()
	if c.Owner() != e || c.Level() != 2 {
		t.Fatalf("clone owner/level = %v/%d, want %v/2", c.Owner(), c.Level(), e)
	}
	if c.Machine() == s.Machine() {
		t.Errorf("clone shares the machine")
	}
	if c.Searcher() == s.Searcher() {
		t.Errorf("clone shares the searcher")
	}
	if !c.IsReady() {
		t.Errorf("clone state = %s, want ready", c.CurrentStateID(0))
	}

	c.Use()
	if !s.IsReady() {
		t.Errorf("using the clone changed the original")
	}
}

func TestSkill_DoubleSetupPanics(t *testing.T) {
	e := newTestEntity("hero", ControlAI, nil)
	s := New(testDefinition(1, "bolt", &countAction{}))
	s.Setup(e, 1)
	mustPanic(t, "second Setup", func() { s.Setup(e, 1) })
	mustPanic(t, "nil owner", func() { New(testDefinition(2, "x", &countAction{})).Setup(nil, 1) })
}

func TestSkill_Description(t *testing.T) {
	def := testDefinition(1, "storm", &countAction{})
	def.Description = "Hits $[applyCount] times over $[duration]s."
	def.Datas[0].Duration = 4
	def.Datas[0].ApplyCount = 5

	if got, want := New(def).Description(), "Hits 5 times over 4s."; got != want {
		t.Errorf("Description = %q, want %q", got, want)
	}
}

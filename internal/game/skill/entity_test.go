package skill

import (
	"testing"

	"github.com/udisondev/skillcore/internal/effect"
	"github.com/udisondev/skillcore/internal/params"
	"github.com/udisondev/skillcore/internal/stat"
)

func TestEntity_HeldUntilAnimationEnds(t *testing.T) {
	action := &countAction{}
	def := testDefinition(1, "slash", action)
	def.Datas[0].InActionFinishOption = FinishWhenAnimationEnded
	def.Datas[0].ActionParam = AnimatorParam{Kind: ParamBool, Name: "attack"}

	e := newTestEntity("hero", ControlPlayer, nil)
	anim := NewClipAnimator(map[string]Clip{"attack": {Length: 1}})
	e.SetAnimator(anim)
	s := e.Skills().RegisterWithoutCost(New(def), 0)

	s.Use()
	e.Update(0.5)
	if !e.IsInState(EntityStateInSkillAction) {
		t.Fatalf("entity state = %s, want in_skill_action", e.Machine().CurrentStateID(0))
	}
	if e.IsControllable() {
		t.Errorf("entity in a skill must not be controllable")
	}
	if !anim.Bool("attack") || !anim.IsPlaying("attack") {
		t.Errorf("attack animation should be playing")
	}
	if action.applies != 1 {
		t.Errorf("applies = %d, want 1", action.applies)
	}

	e.Update(0.5)
	if !s.IsReady() {
		t.Errorf("skill state = %s, want ready", s.CurrentStateID(0))
	}
	if !e.IsInState(EntityStateInSkillAction) {
		t.Errorf("entity left the skill before the animation ended")
	}

	tickUntil(t, e, 0.5, 3, func() bool { return e.IsInState(EntityStateDefault) })
	if !e.IsControllable() {
		t.Errorf("entity should be controllable again")
	}
	if anim.Bool("attack") {
		t.Errorf("attack bool should be cleared")
	}
}

func TestEntity_AnimationEventApplies(t *testing.T) {
	action := &countAction{}
	def := testDefinition(1, "smash", action)
	def.ApplyType = ApplyAnimation
	def.Datas[0].InActionFinishOption = FinishOnceApplied
	def.Datas[0].ActionParam = AnimatorParam{Kind: ParamBool, Name: "smash"}

	e := newTestEntity("hero", ControlPlayer, nil)
	e.SetAnimator(NewClipAnimator(map[string]Clip{"smash": {Length: 1, ApplyAt: 0.5}}))
	s := e.Skills().RegisterWithoutCost(New(def), 0)

	s.Use()
	e.Update(0.25)
	e.Update(0.25)
	if action.applies != 0 {
		t.Fatalf("applied before the animation event")
	}
	if !e.IsInState(EntityStateInSkillAction) {
		t.Fatalf("entity state = %s, want in_skill_action", e.Machine().CurrentStateID(0))
	}

	e.Update(0.25)
	if action.applies != 1 {
		t.Errorf("applies = %d, want 1", action.applies)
	}
	if !e.IsInState(EntityStateDefault) {
		t.Errorf("entity state = %s, want default once applied", e.Machine().CurrentStateID(0))
	}
	if !s.IsReady() {
		t.Errorf("skill state = %s, want ready", s.CurrentStateID(0))
	}
}

func TestEntity_TriggerKeepsDefaultState(t *testing.T) {
	def := testDefinition(1, "shout", &countAction{})
	def.Datas[0].ActionParam = AnimatorParam{Kind: ParamTrigger, Name: "shout"}

	e := newTestEntity("hero", ControlPlayer, nil)
	anim := NewClipAnimator(map[string]Clip{"shout": {Length: 1}})
	e.SetAnimator(anim)
	s := e.Skills().RegisterWithoutCost(New(def), 0)

	s.Use()
	e.Update(0.1)
	if !e.IsInState(EntityStateDefault) || !e.IsControllable() {
		t.Errorf("a trigger must not hold the entity, state %s", e.Machine().CurrentStateID(0))
	}
	if !anim.IsPlaying("shout") {
		t.Errorf("shout clip should be playing")
	}
}

func TestEntity_TakeDamageAndDie(t *testing.T) {
	e := newTestEntity("orc", ControlAI, map[string]float64{"hp": 10})

	var damage []float64
	e.OnTakeDamage(func(_, _ effect.Target, _ any, d float64) { damage = append(damage, d) })
	dead := 0
	e.OnDead(func(*Entity) { dead++ })

	e.TakeDamage(nil, nil, 4)
	if e.IsDead() {
		t.Fatal("entity died early")
	}
	e.TakeDamage(nil, nil, 6)
	if !e.IsDead() || dead != 1 {
		t.Fatalf("IsDead = %v, OnDead fired %d times", e.IsDead(), dead)
	}
	e.TakeDamage(nil, nil, 3)
	if len(damage) != 2 || dead != 1 {
		t.Errorf("dead entity took damage: %v", damage)
	}

	e.Update(0.1)
	if !e.IsInState(EntityStateDead) || e.IsControllable() {
		t.Errorf("entity state = %s, want dead and locked", e.Machine().CurrentStateID(0))
	}

	e.Stats().SetDefaultValue("hp", 10)
	e.Update(0.1)
	if !e.IsInState(EntityStateDefault) || !e.IsControllable() {
		t.Errorf("revived entity state = %s, want default", e.Machine().CurrentStateID(0))
	}
}

func TestEntity_DeathCancelsSkills(t *testing.T) {
	def := testDefinition(1, "fireball", &countAction{})
	def.Datas[0].UseCast = true
	def.Datas[0].CastTime = stat.ScaleFloat{Default: 3}

	e := newTestEntity("mage", ControlAI, map[string]float64{"hp": 5})
	s := e.Skills().RegisterWithoutCost(New(def), 0)
	s.Use()
	e.Update(0.5)
	if !s.IsInState(StateCasting) {
		t.Fatalf("state = %s, want casting", s.CurrentStateID(0))
	}

	e.TakeDamage(nil, nil, 5)
	if !s.IsReady() {
		t.Errorf("death should cancel the cast, state %s", s.CurrentStateID(0))
	}
}

func TestEntity_StunBlocksReadiness(t *testing.T) {
	e := newTestEntity("hero", ControlPlayer, nil)
	anim := NewClipAnimator(nil)
	e.SetAnimator(anim)
	s := e.Skills().RegisterWithoutCost(New(testDefinition(1, "slash", &countAction{})), 0)

	ready := &IsEntityReadyCondition{}
	if !ready.IsPass(s) {
		t.Fatal("idle entity should be ready")
	}

	if !e.ExecuteStateCommand(effect.ToStunning) {
		t.Fatal("stun command was not handled")
	}
	if ready.IsPass(s) || e.IsControllable() || !anim.Bool(StunningParam) {
		t.Errorf("stunned entity should be locked and not ready")
	}

	e.ExecuteStateCommand(effect.ToDefault)
	if !ready.IsPass(s) || !e.IsControllable() || anim.Bool(StunningParam) {
		t.Errorf("entity should recover from the stun")
	}
}

func TestEntity_StunEffect(t *testing.T) {
	caster := newTestEntity("caster", ControlAI, nil)
	stun := effect.New(effect.Definition{
		ID:       40,
		CodeName: "stun",
		Datas: []effect.Data{{
			Level:        1,
			FinishOption: effect.FinishWhenDurationEnded,
			Duration:     stat.ScaleFloat{Default: 2},
			ApplyCount:   1,
			Action:       effect.NewStunAction(params.Params{}),
		}},
	})
	stun.Setup("test", caster, 1, 1)

	e := newTestEntity("orc", ControlAI, nil)
	e.Skills().ApplyEffect(stun)
	if !e.IsInState(EntityStateStunning) {
		t.Fatalf("entity state = %s, want stunning", e.Machine().CurrentStateID(0))
	}

	e.Update(1)
	e.Update(1)
	if !e.IsInState(EntityStateDefault) {
		t.Errorf("entity state = %s after the stun expired, want default", e.Machine().CurrentStateID(0))
	}
}

func TestEntity_AimPointFollowsTarget(t *testing.T) {
	e := newTestEntity("hero", ControlPlayer, nil)
	foe := newTestEntity("orc", ControlAI, nil)
	foe.SetPosition(foe.Position().Add(foe.Forward().Scale(3)))

	e.SetTarget(foe)
	if e.AimTarget() != foe {
		t.Errorf("AimTarget = %v, want %v", e.AimTarget(), foe)
	}
	if got := e.AimPoint(); got != foe.Position() {
		t.Errorf("AimPoint = %v, want %v", got, foe.Position())
	}
}

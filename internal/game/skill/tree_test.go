package skill

import (
	"testing"

	"github.com/udisondev/skillcore/internal/params"
)

func TestTree_OrdersSlots(t *testing.T) {
	a := &SlotNode{Tier: 1, Index: 1}
	b := &SlotNode{Tier: 0, Index: 2}
	c := &SlotNode{Tier: 0, Index: 0}
	tree := NewTree(1, "warrior", "Warrior", []*SlotNode{a, b, c})

	got := tree.SlotNodes()
	if len(got) != 3 || got[0] != c || got[1] != b || got[2] != a {
		t.Errorf("slots out of tier/index order")
	}
	if tree.Node(0, 2) != b || tree.Node(3, 0) != nil {
		t.Errorf("Node lookup failed")
	}
}

func TestTree_AutoAcquire(t *testing.T) {
	aDef := testDefinition(1, "slash", &countAction{})
	second := aDef.Datas[0]
	second.Level = 2
	aDef.Datas = append(aDef.Datas, second)
	nodeA := &SlotNode{Tier: 0, Index: 0, Skill: New(aDef), AutoAcquire: true}

	levelCond, err := NewRequireStatCondition(params.Params{"stat": "level", "value": "3"})
	if err != nil {
		t.Fatal(err)
	}
	bDef := testDefinition(2, "whirlwind", &countAction{})
	bDef.AcquisitionConditions = []EntityCondition{levelCond}
	bDef.AcquisitionCosts = []Cost{mustStatCost(t, "sp", 2)}
	nodeB := &SlotNode{
		Tier:        1,
		Index:       0,
		Skill:       New(bDef),
		AutoAcquire: true,
		Preceding:   []Preceding{{Node: nodeA, Level: 2}},
	}
	tree := NewTree(1, "warrior", "Warrior", []*SlotNode{nodeA, nodeB})

	e := newTestEntity("hero", ControlPlayer, map[string]float64{"level": 1, "sp": 5})
	e.Skills().Setup(nil, tree)

	a := e.Skills().Find(nodeA.Skill)
	if a == nil {
		t.Fatal("slash should be acquired at setup")
	}
	if e.Skills().Find(nodeB.Skill) != nil {
		t.Fatal("whirlwind acquired before its requirements")
	}
	mustPanic(t, "AcquireSkill", func() { nodeB.AcquireSkill(e) })

	a.SetLevel(2)
	e.Update(0.1)
	if e.Skills().Find(nodeB.Skill) != nil {
		t.Fatal("whirlwind acquired below the required level")
	}

	e.Stats().SetDefaultValue("level", 3)
	if !nodeB.IsSkillAcquirable(e) {
		t.Fatal("whirlwind should be acquirable")
	}
	e.Update(0.1)
	if e.Skills().Find(nodeB.Skill) == nil {
		t.Fatal("whirlwind should be acquired on update")
	}
	if sp := e.Stats().GetDefaultValue("sp"); sp != 3 {
		t.Errorf("sp = %v, want 3", sp)
	}

	e.Update(0.1)
	if n := len(e.Skills().OwnSkills()); n != 2 {
		t.Errorf("own skills = %d, want 2", n)
	}
}

func TestSystem_SetupRegistersDefaults(t *testing.T) {
	e := newTestEntity("hero", ControlPlayer, nil)
	defaults := []*Skill{
		New(testDefinition(1, "slash", &countAction{})),
		New(testDefinition(2, "kick", &countAction{})),
	}
	e.Skills().Setup(defaults, nil)

	for _, s := range defaults {
		if e.Skills().Find(s) == nil {
			t.Errorf("%s not registered", s.CodeName())
		}
	}
	if e.Skills().FindByID(2).CodeName() != "kick" {
		t.Errorf("FindByID(2) returned the wrong skill")
	}
}

func TestSystem_SetupTwiceAndUnregisterAll(t *testing.T) {
	e := newTestEntity("hero", ControlPlayer, nil)
	defaults := []*Skill{
		New(testDefinition(1, "slash", &countAction{})),
		New(testDefinition(2, "kick", &countAction{})),
	}
	e.Skills().Setup(defaults, nil)
	e.Skills().Setup(defaults, nil)
	if got := len(e.Skills().OwnSkills()); got != 2 {
		t.Fatalf("own skills = %d after a second setup, want 2", got)
	}

	e.Skills().UnregisterAll()
	if got := len(e.Skills().OwnSkills()); got != 0 {
		t.Fatalf("own skills = %d after UnregisterAll, want 0", got)
	}
	e.Skills().Setup(defaults, nil)
	if got := len(e.Skills().OwnSkills()); got != 2 {
		t.Errorf("own skills = %d after setting up again, want 2", got)
	}
}

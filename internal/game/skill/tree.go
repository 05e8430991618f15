package skill

import (
	"cmp"
	"fmt"
	"slices"
)

// Preceding requires the skill of Node at Level or above.
type Preceding struct {
	Node  *SlotNode
	Level int
}

// SlotNode is a skill slot of a Tree.
type SlotNode struct {
	Tier  int
	Index int
	Skill *Skill
	// AutoAcquire makes the owner's system acquire the skill as soon as it is
	// acquirable.
	AutoAcquire bool
	Preceding   []Preceding
}

// IsSkillAcquirable reports whether e can acquire the slot's skill: the
// skill's own conditions and costs pass and every preceding skill is owned
// at the required level.
func (n *SlotNode) IsSkillAcquirable(e *Entity) bool {
	if !n.Skill.IsAcquirable(e) {
		return false
	}
	for _, p := range n.Preceding {
		owned := e.Skills().Find(p.Node.Skill)
		if owned == nil || owned.Level() < p.Level {
			return false
		}
	}
	return true
}

// AcquireSkill registers the slot's skill on e, paying its cost.
// Panics unless IsSkillAcquirable.
func (n *SlotNode) AcquireSkill(e *Entity) *Skill {
	if !n.IsSkillAcquirable(e) {
		panic(fmt.Sprintf("skill: %q is not acquirable by %s", n.Skill.CodeName(), e))
	}
	return e.Skills().Register(n.Skill, 0)
}

// Tree is a set of skill slots ordered by tier and index.
type Tree struct {
	ID          int
	CodeName    string
	DisplayName string
	nodes       []*SlotNode
}

// NewTree creates a tree of nodes.
func NewTree(id int, codeName, displayName string, nodes []*SlotNode) *Tree {
	nodes = slices.Clone(nodes)
	slices.SortStableFunc(nodes, func(a, b *SlotNode) int {
		if c := cmp.Compare(a.Tier, b.Tier); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	return &Tree{ID: id, CodeName: codeName, DisplayName: displayName, nodes: nodes}
}

// SlotNodes returns the slots ordered by tier, then index.
func (t *Tree) SlotNodes() []*SlotNode { return t.nodes }

// Node returns the slot at tier and index, or nil.
func (t *Tree) Node(tier, index int) *SlotNode {
	for _, n := range t.nodes {
		if n.Tier == tier && n.Index == index {
			return n
		}
	}
	return nil
}

package skill

import (
	"maps"
	"math"
	"slices"
	"strconv"
	"testing"

	"github.com/udisondev/skillcore/internal/effect"
	"github.com/udisondev/skillcore/internal/model"
	"github.com/udisondev/skillcore/internal/params"
	"github.com/udisondev/skillcore/internal/stat"
	"github.com/udisondev/skillcore/internal/target"
)

// countAction counts its hooks. Clones share the counters so a test can watch
// the registered clone through the template's action.
type countAction struct {
	BaseAction
	starts   int
	applies  int
	releases int
}

func (a *countAction) Start(*Skill)   { a.starts++ }
func (a *countAction) Apply(*Skill)   { a.applies++ }
func (a *countAction) Release(*Skill) { a.releases++ }
func (a *countAction) Clone() Action  { return a }

// listPhysics answers spatial queries over a fixed entity list.
type listPhysics struct {
	entities []*Entity
}

func (p *listPhysics) Pick(point model.Vec3) (target.Hit, bool) {
	for _, e := range p.entities {
		if e.Position().DistanceSquared(point) <= 0.25 {
			return target.Hit{Entity: e, Point: e.Position()}, true
		}
	}
	return target.Hit{Point: point}, true
}

func (p *listPhysics) Overlap(center model.Vec3, radius float64) []target.Entity {
	var out []target.Entity
	for _, e := range p.entities {
		if e.Position().DistanceSquared(center) <= radius*radius {
			out = append(out, e)
		}
	}
	return out
}

type spawnList struct {
	objs []Spawned
}

func (l *spawnList) Spawn(obj Spawned) { l.objs = append(l.objs, obj) }

var testEntityID uint32

// newTestStats builds stats with "hp" as HP and "mp" as skill cost.
func newTestStats(values map[string]float64) *stat.Stats {
	var overrides []stat.Override
	for _, code := range slices.Sorted(maps.Keys(values)) {
		overrides = append(overrides, stat.Override{
			Stat: stat.New(stat.Definition{CodeName: code, Max: 1000, Default: values[code]}),
		})
	}
	return stat.NewStats(overrides, "hp", "mp")
}

func newTestEntity(name string, control ControlType, values map[string]float64) *Entity {
	testEntityID++
	return NewEntity(EntityConfig{
		ID:          testEntityID,
		Name:        name,
		ControlType: control,
		Stats:       newTestStats(values),
	})
}

func selfSearcher() *target.Searcher {
	return target.NewSearcher(target.NewSelectSelf(nil), target.NewSelectedTarget(nil))
}

// testDefinition is an instant, auto, target-on-use skill applying once to
// its owner.
func testDefinition(id int, code string, action Action) Definition {
	return Definition{
		ID:                  id,
		CodeName:            code,
		NeedSelectionResult: NeedTarget,
		Datas: []Data{{
			Level:      1,
			Action:     action,
			ApplyCount: 1,
			Searcher:   selfSearcher(),
		}},
	}
}

// buffEffect raises "atk" by 1 per stack for 10 seconds.
func buffEffect(id int, category string, maxStack int) *effect.Effect {
	return effect.New(effect.Definition{
		ID:         id,
		CodeName:   "buff",
		Categories: []string{category},
		Datas: []effect.Data{{
			Level:        1,
			MaxStack:     maxStack,
			FinishOption: effect.FinishWhenDurationEnded,
			Duration:     stat.ScaleFloat{Default: 10},
			ApplyCount:   1,
			Action:       effect.NewIncreaseStatAction(params.Params{"stat": "atk", "value": "1", "per_stack": "1"}),
		}},
	})
}

func mustStatCost(t *testing.T, code string, value float64) Cost {
	t.Helper()
	c, err := NewStatCost(params.Params{"stat": code, "value": strconv.FormatFloat(value, 'f', -1, 64)})
	if err != nil {
		t.Fatalf("NewStatCost: %v", err)
	}
	return c
}

// tickUntil updates e until done holds and returns the number of ticks.
func tickUntil(t *testing.T, e *Entity, dt float64, limit int, done func() bool) int {
	t.Helper()
	for i := 1; i <= limit; i++ {
		e.Update(dt)
		if done() {
			return i
		}
	}
	t.Fatalf("condition not reached within %d ticks", limit)
	return 0
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}

package skill

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/d5/tengo/v2"

	"github.com/udisondev/skillcore/internal/params"
)

// ScriptCondition is an entity condition written as a tengo expression.
//
// The expression sees:
//
//	hp      current hit points (0 without an HP stat)
//	dead    whether the entity is dead
//	player  whether the entity is player controlled
//	stats   map of stat code to value
//
// Example: `stats["level"] >= 3 && hp > 10`.
type ScriptCondition struct {
	expr     string
	compiled *tengo.Compiled
}

const scriptResultVar = "__pass"

// NewScriptCondition compiles expr once.
func NewScriptCondition(expr string) (*ScriptCondition, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("script condition: empty expression")
	}

	script := tengo.NewScript([]byte(scriptResultVar + " := (" + expr + ")"))
	_ = script.Add("hp", 0.0)
	_ = script.Add("dead", false)
	_ = script.Add("player", false)
	_ = script.Add("stats", map[string]any{})

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compiling script condition %q: %w", expr, err)
	}
	return &ScriptCondition{expr: expr, compiled: compiled}, nil
}

// newScriptConditionFromParams reads the "expr" param.
func newScriptConditionFromParams(p params.Params) (EntityCondition, error) {
	return NewScriptCondition(p.String("expr", ""))
}

func (c *ScriptCondition) Expr() string        { return c.expr }
func (c *ScriptCondition) Description() string { return c.expr }

// IsPass evaluates the expression for e. Runtime errors and non-boolean
// results fail the condition.
func (c *ScriptCondition) IsPass(e *Entity) bool {
	pass, err := c.Eval(e)
	if err != nil {
		slog.Warn("script condition failed", "expr", c.expr, "error", err)
		return false
	}
	return pass
}

// Eval runs the expression for e.
func (c *ScriptCondition) Eval(e *Entity) (bool, error) {
	stats := make(map[string]any)
	var hp float64
	if st := e.Stats(); st != nil {
		for _, s := range st.All() {
			stats[s.CodeName()] = s.Value()
		}
		if h := st.HP(); h != nil {
			hp = h.Value()
		}
	}

	vars := map[string]any{
		"hp":     hp,
		"dead":   e.IsDead(),
		"player": e.IsPlayer(),
		"stats":  stats,
	}
	for name, v := range vars {
		if err := c.compiled.Set(name, v); err != nil {
			return false, fmt.Errorf("setting %s: %w", name, err)
		}
	}
	if err := c.compiled.Run(); err != nil {
		return false, fmt.Errorf("running script condition: %w", err)
	}

	result := c.compiled.Get(scriptResultVar)
	if result.ValueType() != "bool" {
		return false, fmt.Errorf("script condition %q returned %s, want bool", c.expr, result.ValueType())
	}
	return result.Bool(), nil
}

func (c *ScriptCondition) Clone() EntityCondition {
	return &ScriptCondition{expr: c.expr, compiled: c.compiled.Clone()}
}

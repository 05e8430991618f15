package skill

import (
	"fmt"

	"github.com/udisondev/skillcore/internal/params"
)

// Registries map a YAML type name to a factory. Extensions register their own
// in init().
var (
	actionRegistry          = map[string]func(p params.Params) (Action, error){}
	precedingActionRegistry = map[string]func(p params.Params) (PrecedingAction, error){}
	costRegistry            = map[string]func(p params.Params) (Cost, error){}
	entityConditionRegistry = map[string]func(p params.Params) (EntityCondition, error){}
	conditionRegistry       = map[string]func(p params.Params) (Condition, error){}
)

// RegisterAction registers a skill action factory by name.
func RegisterAction(name string, factory func(p params.Params) (Action, error)) {
	actionRegistry[name] = factory
}

// RegisterPrecedingAction registers a preceding action factory by name.
func RegisterPrecedingAction(name string, factory func(p params.Params) (PrecedingAction, error)) {
	precedingActionRegistry[name] = factory
}

// RegisterCost registers a cost factory by name.
func RegisterCost(name string, factory func(p params.Params) (Cost, error)) {
	costRegistry[name] = factory
}

// RegisterEntityCondition registers an entity condition factory by name.
// Entity conditions also serve as use conditions, see CreateCondition.
func RegisterEntityCondition(name string, factory func(p params.Params) (EntityCondition, error)) {
	entityConditionRegistry[name] = factory
}

// RegisterCondition registers a use condition factory by name.
func RegisterCondition(name string, factory func(p params.Params) (Condition, error)) {
	conditionRegistry[name] = factory
}

// CreateAction creates a skill action by registered name.
func CreateAction(name string, p params.Params) (Action, error) {
	factory, ok := actionRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown skill action type %q: %w", name, params.ErrNotRegistered)
	}
	return factory(p)
}

// CreatePrecedingAction creates a preceding action by registered name.
func CreatePrecedingAction(name string, p params.Params) (PrecedingAction, error) {
	factory, ok := precedingActionRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown preceding action type %q: %w", name, params.ErrNotRegistered)
	}
	return factory(p)
}

// CreateCost creates a cost by registered name.
func CreateCost(name string, p params.Params) (Cost, error) {
	factory, ok := costRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown cost type %q: %w", name, params.ErrNotRegistered)
	}
	return factory(p)
}

// CreateEntityCondition creates an entity condition by registered name.
func CreateEntityCondition(name string, p params.Params) (EntityCondition, error) {
	factory, ok := entityConditionRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown entity condition type %q: %w", name, params.ErrNotRegistered)
	}
	return factory(p)
}

// CreateCondition creates a use condition by registered name. A name only
// known as an entity condition is evaluated against the skill's owner.
func CreateCondition(name string, p params.Params) (Condition, error) {
	if factory, ok := conditionRegistry[name]; ok {
		return factory(p)
	}
	if _, ok := entityConditionRegistry[name]; !ok {
		return nil, fmt.Errorf("unknown condition type %q: %w", name, params.ErrNotRegistered)
	}
	c, err := CreateEntityCondition(name, p)
	if err != nil {
		return nil, err
	}
	return OwnerCondition{EntityCondition: c}, nil
}

func init() {
	RegisterAction("InstantApply", NewInstantApplyAction)
	RegisterAction("SpawnProjectile", NewSpawnProjectileAction)
	RegisterAction("SpawnSkillObject", NewSpawnSkillObjectAction)

	RegisterPrecedingAction("Rolling", NewRollingAction)

	RegisterCost("Stat", NewStatCost)

	RegisterEntityCondition("RequireStat", NewRequireStatCondition)
	RegisterEntityCondition("Script", newScriptConditionFromParams)

	RegisterCondition("IsEntityReady", NewIsEntityReadyCondition)
}

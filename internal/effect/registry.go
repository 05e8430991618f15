package effect

import (
	"fmt"

	"github.com/udisondev/skillcore/internal/params"
)

// actionRegistry maps effect action type name → factory.
// Populated by init() below; extensions register their own in init().
var actionRegistry = map[string]func(p params.Params) Action{}

// RegisterAction registers an effect action factory by name.
func RegisterAction(name string, factory func(p params.Params) Action) {
	actionRegistry[name] = factory
}

// CreateAction creates an effect action by registered name.
// Returns error if name is not registered.
func CreateAction(name string, p params.Params) (Action, error) {
	factory, ok := actionRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown effect action type %q: %w", name, params.ErrNotRegistered)
	}
	return factory(p), nil
}

func init() {
	RegisterAction("DealDamage", NewDealDamageAction)
	RegisterAction("IncreaseStat", NewIncreaseStatAction)
	RegisterAction("RemoveEffectByCategory", NewRemoveEffectByCategoryAction)
	RegisterAction("Stun", NewStunAction)
	RegisterAction("Sleep", NewSleepAction)
}

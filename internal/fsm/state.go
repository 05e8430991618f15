package fsm

// StateID identifies a state within one layer of a Machine.
type StateID string

// State is a single behavior unit driven by a Machine.
//
// E is the owner entity type, C the command type and M the message type of the
// machine the state belongs to.
type State[E any, C comparable, M comparable] interface {
	// Setup is called once when the state is added to a machine.
	Setup(m *Machine[E, C, M], owner E, layer int)

	// Enter is called every time the machine transitions into the state.
	Enter()

	// Update is called once per tick while the state is current and no
	// transition fired on its layer.
	Update(dt float64)

	// Exit is called every time the machine transitions out of the state.
	Exit()

	// OnReceiveMessage handles a message sent to the machine.
	// Returns true if the message was consumed.
	OnReceiveMessage(msg M, data any) bool
}

// Initializer is implemented by states that need extra wiring after Setup,
// once the machine, owner and layer are known.
type Initializer interface {
	Init()
}

// BaseState provides no-op hooks and keeps the machine, owner and layer.
// Concrete states embed it and override what they need.
type BaseState[E any, C comparable, M comparable] struct {
	machine *Machine[E, C, M]
	owner   E
	layer   int
}

// Setup stores machine, owner and layer.
func (s *BaseState[E, C, M]) Setup(m *Machine[E, C, M], owner E, layer int) {
	s.machine = m
	s.owner = owner
	s.layer = layer
}

// Machine returns the machine the state belongs to.
func (s *BaseState[E, C, M]) Machine() *Machine[E, C, M] { return s.machine }

// Owner returns the entity owning the machine.
func (s *BaseState[E, C, M]) Owner() E { return s.owner }

// Layer returns the layer the state was registered on.
func (s *BaseState[E, C, M]) Layer() int { return s.layer }

func (s *BaseState[E, C, M]) Enter()            {}
func (s *BaseState[E, C, M]) Update(dt float64) {}
func (s *BaseState[E, C, M]) Exit()             {}

func (s *BaseState[E, C, M]) OnReceiveMessage(msg M, data any) bool { return false }

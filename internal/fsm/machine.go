// Package fsm implements a layered, command-driven finite state machine.
//
// Every layer owns its own current state and is ticked independently in
// ascending layer order. Transitions are either condition-only (evaluated on
// Update) or command-triggered (evaluated on ExecuteCommand); any-state
// transitions are evaluated before the current state's own transitions.
package fsm

import (
	"fmt"
	"slices"
)

// StateChangedFunc observes state changes. prev is nil when a layer enters its
// initial state.
type StateChangedFunc[E any, C comparable, M comparable] func(m *Machine[E, C, M], next, prev State[E, C, M], layer int)

type stateData[E any, C comparable, M comparable] struct {
	layer       int
	priority    int
	id          StateID
	state       State[E, C, M]
	transitions []*Transition[E, C, M]
}

// Machine is a layered state machine owned by an entity of type E.
// Machine is not safe for concurrent use; it is ticked from a single goroutine.
type Machine[E any, C comparable, M comparable] struct {
	owner E

	statesByLayer  map[int]map[StateID]*stateData[E, C, M]
	anyByLayer     map[int][]*Transition[E, C, M]
	currentByLayer map[int]*stateData[E, C, M]
	layers         []int

	onStateChanged []StateChangedFunc[E, C, M]
}

// New creates an empty machine for owner.
func New[E any, C comparable, M comparable](owner E) *Machine[E, C, M] {
	return &Machine[E, C, M]{
		owner:          owner,
		statesByLayer:  make(map[int]map[StateID]*stateData[E, C, M]),
		anyByLayer:     make(map[int][]*Transition[E, C, M]),
		currentByLayer: make(map[int]*stateData[E, C, M]),
	}
}

// Owner returns the entity owning the machine.
func (m *Machine[E, C, M]) Owner() E { return m.owner }

// Layers returns registered layers in ascending order.
func (m *Machine[E, C, M]) Layers() []int { return slices.Clone(m.layers) }

// OnStateChanged registers an observer fired after every state change.
func (m *Machine[E, C, M]) OnStateChanged(fn StateChangedFunc[E, C, M]) {
	m.onStateChanged = append(m.onStateChanged, fn)
}

// AddState registers state under id on layer. The first state added to a layer
// gets priority 0 and becomes the layer's initial state.
// Panics if id is already registered on that layer.
func (m *Machine[E, C, M]) AddState(id StateID, state State[E, C, M], layer int) {
	datas, ok := m.statesByLayer[layer]
	if !ok {
		datas = make(map[StateID]*stateData[E, C, M])
		m.statesByLayer[layer] = datas
		m.anyByLayer[layer] = nil
		m.layers = append(m.layers, layer)
		slices.Sort(m.layers)
	}
	if _, dup := datas[id]; dup {
		panic(fmt.Sprintf("fsm: state %q already registered on layer %d", id, layer))
	}

	state.Setup(m, m.owner, layer)
	if init, ok := state.(Initializer); ok {
		init.Init()
	}

	datas[id] = &stateData[E, C, M]{
		layer:    layer,
		priority: len(datas),
		id:       id,
		state:    state,
	}
}

// MakeTransition appends a transition from -> to on layer.
// At least one of command (non-zero) and guard must be set.
func (m *Machine[E, C, M]) MakeTransition(from, to StateID, command C, guard Guard[E, C, M], layer int) {
	fromData := m.mustStateData(from, layer)
	toData := m.mustStateData(to, layer)

	t := &Transition[E, C, M]{
		From:    fromData.state,
		To:      toData.state,
		Command: command,
		Guard:   guard,
		CanSelf: true,
		toID:    to,
	}
	mustBeValid(t)
	fromData.transitions = append(fromData.transitions, t)
}

// MakeAnyTransition appends an any-state transition to `to` on layer.
// canSelf allows the transition to fire while `to` is already current.
func (m *Machine[E, C, M]) MakeAnyTransition(to StateID, command C, guard Guard[E, C, M], layer int, canSelf bool) {
	toData := m.mustStateData(to, layer)

	t := &Transition[E, C, M]{
		To:      toData.state,
		Command: command,
		Guard:   guard,
		CanSelf: canSelf,
		toID:    to,
	}
	mustBeValid(t)
	m.anyByLayer[layer] = append(m.anyByLayer[layer], t)
}

// SetupLayers enters the priority-0 state of every layer.
func (m *Machine[E, C, M]) SetupLayers() {
	for _, layer := range m.layers {
		delete(m.currentByLayer, layer)
		for _, data := range m.statesByLayer[layer] {
			if data.priority == 0 {
				m.changeState(data)
				break
			}
		}
	}
}

// Update ticks every layer: the first condition-only transition that passes
// fires, otherwise the current state is updated.
func (m *Machine[E, C, M]) Update(dt float64) {
	for _, layer := range m.layers {
		if m.tryTransition(m.anyByLayer[layer], layer) {
			continue
		}
		current := m.mustCurrent(layer)
		if m.tryTransition(current.transitions, layer) {
			continue
		}
		current.state.Update(dt)
	}
}

// ExecuteCommand fires the first transition on layer matching command whose
// guard passes. Any-state transitions are searched first.
// Returns true if the machine changed state.
func (m *Machine[E, C, M]) ExecuteCommand(command C, layer int) bool {
	current := m.mustCurrent(layer)

	t := m.findCommand(m.anyByLayer[layer], command, current)
	if t == nil {
		t = m.findCommand(current.transitions, command, current)
	}
	if t == nil {
		return false
	}

	m.changeState(m.statesByLayer[layer][t.toID])
	return true
}

// ExecuteCommandAll executes command on every layer.
// Returns true if any layer changed state.
func (m *Machine[E, C, M]) ExecuteCommandAll(command C) bool {
	changed := false
	for _, layer := range m.layers {
		if m.ExecuteCommand(command, layer) {
			changed = true
		}
	}
	return changed
}

// SendMessage forwards msg to the current state of layer.
func (m *Machine[E, C, M]) SendMessage(msg M, layer int, data any) bool {
	return m.mustCurrent(layer).state.OnReceiveMessage(msg, data)
}

// SendMessageAll forwards msg to the current state of every layer.
// Returns true if any state handled it.
func (m *Machine[E, C, M]) SendMessageAll(msg M, data any) bool {
	handled := false
	for _, layer := range m.layers {
		if m.SendMessage(msg, layer, data) {
			handled = true
		}
	}
	return handled
}

// IsInState reports whether id is current on any layer.
func (m *Machine[E, C, M]) IsInState(id StateID) bool {
	for _, data := range m.currentByLayer {
		if data.id == id {
			return true
		}
	}
	return false
}

// IsInStateOn reports whether id is current on layer.
func (m *Machine[E, C, M]) IsInStateOn(id StateID, layer int) bool {
	return m.mustCurrent(layer).id == id
}

// CurrentState returns the current state of layer.
func (m *Machine[E, C, M]) CurrentState(layer int) State[E, C, M] {
	return m.mustCurrent(layer).state
}

// CurrentStateID returns the id of the current state of layer.
func (m *Machine[E, C, M]) CurrentStateID(layer int) StateID {
	return m.mustCurrent(layer).id
}

// State returns the state registered under id on layer.
func (m *Machine[E, C, M]) State(id StateID, layer int) State[E, C, M] {
	return m.mustStateData(id, layer).state
}

func (m *Machine[E, C, M]) tryTransition(transitions []*Transition[E, C, M], layer int) bool {
	current := m.mustCurrent(layer)
	for _, t := range transitions {
		if t.HasCommand() || !t.IsTransferable(current.state) {
			continue
		}
		if !t.CanSelf && t.toID == current.id {
			continue
		}
		m.changeState(m.statesByLayer[layer][t.toID])
		return true
	}
	return false
}

func (m *Machine[E, C, M]) findCommand(transitions []*Transition[E, C, M], command C, current *stateData[E, C, M]) *Transition[E, C, M] {
	for _, t := range transitions {
		if !t.HasCommand() || t.Command != command {
			continue
		}
		if !t.CanSelf && t.toID == current.id {
			continue
		}
		if t.IsTransferable(current.state) {
			return t
		}
	}
	return nil
}

func (m *Machine[E, C, M]) changeState(next *stateData[E, C, M]) {
	var prevState State[E, C, M]
	if prev, ok := m.currentByLayer[next.layer]; ok && prev != nil {
		prev.state.Exit()
		prevState = prev.state
	}

	m.currentByLayer[next.layer] = next
	next.state.Enter()

	for _, fn := range m.onStateChanged {
		fn(m, next.state, prevState, next.layer)
	}
}

func (m *Machine[E, C, M]) mustStateData(id StateID, layer int) *stateData[E, C, M] {
	datas, ok := m.statesByLayer[layer]
	if !ok {
		panic(fmt.Sprintf("fsm: unknown layer %d", layer))
	}
	data, ok := datas[id]
	if !ok {
		panic(fmt.Sprintf("fsm: unknown state %q on layer %d", id, layer))
	}
	return data
}

func (m *Machine[E, C, M]) mustCurrent(layer int) *stateData[E, C, M] {
	data, ok := m.currentByLayer[layer]
	if !ok {
		panic(fmt.Sprintf("fsm: layer %d has no current state (SetupLayers not called?)", layer))
	}
	return data
}

func mustBeValid[E any, C comparable, M comparable](t *Transition[E, C, M]) {
	if !t.HasCommand() && t.Guard == nil {
		panic(fmt.Sprintf("fsm: transition to %q needs a command or a guard", t.toID))
	}
}

package ai

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Stepper is the simulation advanced once per tick after the controllers
// decided.
type Stepper interface {
	Tick(dt float64)
}

// TickManager runs the simulation loop: every tick it ticks all registered
// controllers, runs queued tasks and advances the stepper. Everything it
// calls runs on the goroutine of Start.
type TickManager struct {
	controllers     sync.Map // map[uint32]Controller, keyed by object ID
	stepper         Stepper
	interval        time.Duration
	ticker          *time.Ticker
	tasks           chan func()
	stopCh          chan struct{}
	stopOnce        sync.Once
	controllerCount atomic.Int32 // cached count of controllers (O(1) access)
	tickCount       atomic.Uint64
}

// NewTickManager creates a manager stepping stepper tickRate times per
// second. A tickRate below 1 is treated as 1.
func NewTickManager(stepper Stepper, tickRate int) *TickManager {
	return &TickManager{
		stepper:  stepper,
		interval: time.Second / time.Duration(max(1, tickRate)),
		tasks:    make(chan func(), 16),
		stopCh:   make(chan struct{}),
	}
}

// Interval returns the wall-clock time between ticks.
func (m *TickManager) Interval() time.Duration { return m.interval }

// Register registers AI controller for an entity
func (m *TickManager) Register(objectID uint32, controller Controller) {
	if _, loaded := m.controllers.Swap(objectID, controller); !loaded {
		m.controllerCount.Add(1) // Update cached count
	}
	controller.Start()

	slog.Debug("AI controller registered",
		"objectID", objectID,
		"intention", controller.CurrentIntention())
}

// Unregister unregisters AI controller
func (m *TickManager) Unregister(objectID uint32) {
	value, ok := m.controllers.LoadAndDelete(objectID)
	if !ok {
		return
	}

	m.controllerCount.Add(-1) // Update cached count

	controller := value.(Controller)
	controller.Stop()

	slog.Debug("AI controller unregistered", "objectID", objectID)
}

// Enqueue hands fn to the tick goroutine. It runs between two ticks.
func (m *TickManager) Enqueue(ctx context.Context, fn func()) error {
	select {
	case m.tasks <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start starts the tick loop (blocks until context is canceled or Stop)
func (m *TickManager) Start(ctx context.Context) error {
	m.ticker = time.NewTicker(m.interval)
	defer m.ticker.Stop()

	slog.Info("AI tick manager started", "interval", m.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("AI tick manager stopping", "ticks", m.Ticks())
			return ctx.Err()

		case <-m.stopCh:
			slog.Info("AI tick manager stopped", "ticks", m.Ticks())
			return nil

		case fn := <-m.tasks:
			fn()

		case <-m.ticker.C:
			m.Step(m.interval.Seconds())
		}
	}
}

// Stop stops the tick loop
func (m *TickManager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// Step runs one tick of dt seconds synchronously.
func (m *TickManager) Step(dt float64) {
	m.tickAll()
	if m.stepper != nil {
		m.stepper.Tick(dt)
	}
	m.tickCount.Add(1)
}

// Ticks returns how many ticks ran.
func (m *TickManager) Ticks() uint64 { return m.tickCount.Load() }

// tickAll ticks all registered controllers in objectID order
func (m *TickManager) tickAll() {
	var ids []uint32
	m.controllers.Range(func(key, _ any) bool {
		ids = append(ids, key.(uint32))
		return true
	})
	slices.Sort(ids)

	for _, id := range ids {
		if value, ok := m.controllers.Load(id); ok {
			value.(Controller).Tick()
		}
	}

	if len(ids) > 0 && IsDebugEnabled() {
		slog.Debug("AI tick completed", "controllers", len(ids))
	}
}

// Count returns number of registered controllers (O(1) cached count)
func (m *TickManager) Count() int {
	return int(m.controllerCount.Load())
}

// GetController returns controller for an entity
func (m *TickManager) GetController(objectID uint32) (Controller, error) {
	value, ok := m.controllers.Load(objectID)
	if !ok {
		return nil, fmt.Errorf("controller not found for objectID %d", objectID)
	}
	return value.(Controller), nil
}

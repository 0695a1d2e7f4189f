package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-defense/internal/core"
)

var (
	// ErrAlreadyRunning is returned by Run when a simulation goroutine exists.
	ErrAlreadyRunning = errors.New("engine: clock already running")
	// ErrWrongThread is returned by Step when called off the simulation goroutine.
	ErrWrongThread = errors.New("engine: step called off the simulation goroutine")
)

// Command is a unit of work posted to the simulation goroutine.
type Command func()

// StepListener is called on the simulation goroutine after every step.
type StepListener interface {
	StepCompleted(stepsSinceLoad int)
}

// Clock owns the simulation goroutine. It is the only path by which other
// goroutines may mutate simulation state: they Post commands, which run in
// FIFO order at the next step boundary, before any entity ticks.
type Clock struct {
	engine *Engine
	log    *log.Logger

	mu    sync.Mutex
	queue []Command

	owner  atomic.Int64
	paused atomic.Bool
	speed  atomic.Int32

	errorListeners core.Listeners[ErrorListener]
	stepListeners  core.Listeners[StepListener]
}

// NewClock creates a stopped clock driving e.
func NewClock(e *Engine, logger *log.Logger) *Clock {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	c := &Clock{
		engine: e,
		log:    logger.With("component", "clock"),
	}
	c.speed.Store(1)
	return c
}

// Engine returns the driven engine.
func (c *Clock) Engine() *Engine {
	return c.engine
}

// IsThreadChangeNeeded reports whether the caller must Post instead of
// mutating state directly. While no simulation goroutine runs, the caller
// is the owner and the answer is false.
func (c *Clock) IsThreadChangeNeeded() bool {
	owner := c.owner.Load()
	return owner != 0 && owner != goid()
}

// Post enqueues cmd to run at the start of the next step. It never blocks
// and never runs cmd inline, even when called from the simulation goroutine.
func (c *Clock) Post(cmd Command) {
	c.mu.Lock()
	c.queue = append(c.queue, cmd)
	c.mu.Unlock()
}

// Pending returns the number of queued commands.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// SetPaused stops or resumes entity ticks. Commands still run while paused.
func (c *Clock) SetPaused(p bool) {
	c.paused.Store(p)
}

// IsPaused reports whether entity ticks are suspended.
func (c *Clock) IsPaused() bool {
	return c.paused.Load()
}

// SetSpeed sets how many steps Run performs per frame (fast forward).
func (c *Clock) SetSpeed(n int) {
	c.speed.Store(int32(max(1, n)))
}

// Speed returns the current fast-forward factor.
func (c *Clock) Speed() int {
	return int(c.speed.Load())
}

// RegisterErrorListener adds a fault listener.
func (c *Clock) RegisterErrorListener(l ErrorListener) {
	c.errorListeners.Add(l)
}

// UnregisterErrorListener removes a fault listener.
func (c *Clock) UnregisterErrorListener(l ErrorListener) {
	c.errorListeners.Remove(l)
}

// AddStepListener adds a listener called after every step.
func (c *Clock) AddStepListener(l StepListener) {
	c.stepListeners.Add(l)
}

// RemoveStepListener removes a step listener.
func (c *Clock) RemoveStepListener(l StepListener) {
	c.stepListeners.Remove(l)
}

// Step runs one step boundary: queued commands first, then one engine step
// unless paused. A fault is reported to the error listeners and returned;
// the state is then undefined and the caller should stop stepping.
func (c *Clock) Step() error {
	if c.IsThreadChangeNeeded() {
		return ErrWrongThread
	}

	if err := c.drain(); err != nil {
		return c.fault(err)
	}

	if !c.paused.Load() {
		if err := c.engine.Step(); err != nil {
			return c.fault(err)
		}
	}

	steps := c.engine.StepsSinceLoad()
	for _, l := range c.stepListeners.Snapshot() {
		l.StepCompleted(steps)
	}
	return nil
}

func (c *Clock) drain() error {
	c.mu.Lock()
	batch := c.queue
	c.queue = nil
	c.mu.Unlock()

	for i, cmd := range batch {
		if err := c.runCommand(cmd); err != nil {
			// keep the commands that did not run
			c.mu.Lock()
			c.queue = append(batch[i+1:len(batch):len(batch)], c.queue...)
			c.mu.Unlock()
			return err
		}
	}
	return nil
}

func (c *Clock) runCommand(cmd Command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newFault(r, c.engine.StepsSinceLoad())
		}
	}()
	cmd()
	return nil
}

func (c *Clock) fault(err error) error {
	var fe *FaultError
	if !errors.As(err, &fe) {
		fe = &FaultError{Err: err, StepsSinceLoad: c.engine.StepsSinceLoad()}
	}
	c.log.Error("simulation fault", "steps", fe.StepsSinceLoad, "error", fe.Err)
	for _, l := range c.errorListeners.Snapshot() {
		l.Error(fe, fe.StepsSinceLoad)
	}
	return fe
}

// Run makes the calling goroutine the simulation goroutine and steps at
// TargetFrameRate (times Speed) until ctx is done or a fault occurs.
func (c *Clock) Run(ctx context.Context) error {
	if !c.owner.CompareAndSwap(0, goid()) {
		return ErrAlreadyRunning
	}
	defer c.owner.Store(0)

	c.log.Info("simulation started", "rate", TargetFrameRate)
	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("simulation stopped", "steps", c.engine.StepsSinceLoad())
			return nil
		case <-ticker.C:
			for i := 0; i < c.Speed(); i++ {
				if err := c.Step(); err != nil {
					return err
				}
			}
		}
	}
}

// RunSteps runs n steps back to back on the calling goroutine, without
// pacing. Used by headless drivers and tests.
func (c *Clock) RunSteps(n int) error {
	for i := 0; i < n; i++ {
		if err := c.Step(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

var goroutinePrefix = []byte("goroutine ")

// goid returns the id of the calling goroutine, parsed from the header of
// its stack trace ("goroutine 18 [running]:").
func goid() int64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, goroutinePrefix)
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		panic("engine: cannot parse goroutine id: " + err.Error())
	}
	return id
}

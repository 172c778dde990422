// Package tracker runs the attribution loop: every tick it samples the
// focused window, credits the elapsed time to that identity, persists the
// cumulative state and then handles queued control actions.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/procuptime/procuptime/internal/config"
	"github.com/procuptime/procuptime/internal/control"
	"github.com/procuptime/procuptime/internal/logging"
	"github.com/procuptime/procuptime/internal/models"
	"github.com/procuptime/procuptime/internal/store"
	"github.com/procuptime/procuptime/pkg/window"
	"github.com/sirupsen/logrus"
)

// ErrQuit is returned by Step when a quit action was drained.
var ErrQuit = errors.New("quit requested")

// Sampler reports the identity of the focused window.
type Sampler interface {
	Sample(ctx context.Context) (string, error)
}

// Store loads and saves the cumulative state.
type Store interface {
	Load() (store.State, error)
	Save(store.State) error
}

// Intake yields pending control actions without blocking.
type Intake interface {
	Drain() []control.Action
}

// Launcher starts the viewer without waiting for it.
type Launcher interface {
	Launch() error
}

// ErrorRecorder persists diagnostics.
type ErrorRecorder interface {
	CreateErrorLog(*models.ErrorLog) error
}

// Clock supplies the current time. The default uses time.Now, whose
// monotonic reading makes elapsed time immune to wall-clock jumps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Tick describes one iteration of the loop. It is never persisted.
type Tick struct {
	Time     time.Time
	Elapsed  time.Duration
	Identity string
	Credited uint64
}

// Deps bundles the engine's collaborators. Sampler, Store and Intake are
// required; the rest may be nil.
type Deps struct {
	Sampler  Sampler
	Store    Store
	Intake   Intake
	Launcher Launcher
	Errors   ErrorRecorder
	Clock    Clock
}

// Engine owns the in-memory state exclusively.
type Engine struct {
	cfg  config.TrackerConfig
	deps Deps

	mu       sync.Mutex
	state    store.State
	started  bool
	lastTick time.Time
	carry    time.Duration
	carryID  string
	dirty    bool

	lastSampleErr string
	logger        *logrus.Entry
}

// New creates an Engine.
func New(cfg config.TrackerConfig, deps Deps) *Engine {
	if deps.Clock == nil {
		deps.Clock = systemClock{}
	}
	return &Engine{
		cfg:    cfg,
		deps:   deps,
		logger: logging.NewLogger("tracker"),
	}
}

// Start loads the persisted state and marks the beginning of the first
// tick. Once it has succeeded, calling it again has no effect.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return nil
	}
	state, err := e.deps.Store.Load()
	if err != nil {
		return fmt.Errorf("failed to load tracker state: %w", err)
	}
	if state == nil {
		state = make(store.State)
	}
	e.state = state
	e.lastTick = e.deps.Clock.Now()
	e.started = true

	e.logger.WithField("identities", len(e.state)).Info("Tracker state loaded")
	return nil
}

// Run ticks until a quit action is drained, the context is canceled or a
// fatal persistence error occurs. A quit returns nil.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.Start(); err != nil {
		return err
	}
	e.logger.Infof("Starting tracker with %v tick interval", e.cfg.TickInterval)

	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	for {
		if _, err := e.Step(ctx); err != nil {
			if errors.Is(err, ErrQuit) {
				e.logger.Info("Tracker stopped")
				return nil
			}
			return err
		}

		select {
		case <-ctx.Done():
			e.logger.Info("Tracker stopped by context")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Step runs one tick: sample, attribute, persist, then drain control actions.
func (e *Engine) Step(ctx context.Context) (Tick, error) {
	if err := e.Start(); err != nil {
		return Tick{}, err
	}

	e.mu.Lock()
	tick := e.attribute(ctx)
	err := e.persist()
	e.mu.Unlock()

	if err != nil {
		return tick, err
	}
	return tick, e.handleActions()
}

func (e *Engine) attribute(ctx context.Context) Tick {
	now := e.deps.Clock.Now()
	elapsed := now.Sub(e.lastTick)
	e.lastTick = now
	if elapsed < 0 {
		e.logger.Debugf("Clock went backwards by %v, ignoring", -elapsed)
		elapsed = 0
	}

	tick := Tick{Time: now, Elapsed: elapsed}

	identity, err := e.deps.Sampler.Sample(ctx)
	if err != nil {
		e.carry, e.carryID = 0, ""
		e.sampleFailed(err)
		return tick
	}
	e.lastSampleErr = ""
	tick.Identity = identity

	if identity != e.carryID {
		e.carry, e.carryID = 0, identity
	}
	total := e.carry + elapsed
	seconds := uint64(total / time.Second)
	e.carry = total - time.Duration(seconds)*time.Second
	tick.Credited = seconds

	prev, seen := e.state[identity]
	if seconds > 0 || !seen {
		e.state[identity] = store.AddSeconds(prev, seconds)
		e.dirty = true
	}

	e.logger.Debugf("%s +%ds (total %ds)", identity, seconds, e.state[identity])
	return tick
}

func (e *Engine) sampleFailed(err error) {
	if errors.Is(err, window.ErrNoFocusedWindow) {
		e.logger.Debug("No focused window")
		return
	}

	e.logger.WithError(err).Debug("Sample failed")
	if msg := err.Error(); msg != e.lastSampleErr {
		e.lastSampleErr = msg
		e.record(models.ErrorKindSample, err)
	}
}

func (e *Engine) persist() error {
	if !e.dirty {
		return nil
	}

	if err := e.deps.Store.Save(e.state); err != nil {
		e.record(models.ErrorKindPersist, err)
		if e.cfg.PersistFailure == config.PersistRetry {
			e.logger.WithError(err).Warn("Failed to persist state, retrying next tick")
			return nil
		}
		return fmt.Errorf("failed to persist state: %w", err)
	}

	e.dirty = false
	return nil
}

func (e *Engine) handleActions() error {
	for _, action := range e.deps.Intake.Drain() {
		switch action {
		case control.ActionQuit:
			return ErrQuit
		case control.ActionOpenViewer:
			e.openViewer()
		default:
			e.logger.Warnf("Ignoring unknown action %d", action)
		}
	}
	return nil
}

func (e *Engine) openViewer() {
	if e.deps.Launcher == nil {
		e.logger.Warn("No viewer configured")
		return
	}
	if err := e.deps.Launcher.Launch(); err != nil {
		e.logger.WithError(err).Error("Failed to open viewer")
		e.record(models.ErrorKindLaunch, err)
	}
}

func (e *Engine) record(kind string, err error) {
	if e.deps.Errors == nil {
		return
	}

	errorLog := &models.ErrorLog{
		Timestamp: time.Now(),
		Kind:      kind,
		ErrorMsg:  err.Error(),
	}
	if dbErr := e.deps.Errors.CreateErrorLog(errorLog); dbErr != nil {
		e.logger.WithError(dbErr).Warnf("Failed to store error in database (original error: %v)", err)
	}
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() store.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Dirty reports whether the in-memory state has changes not yet saved.
func (e *Engine) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

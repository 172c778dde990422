package tracker

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/procuptime/procuptime/internal/config"
	"github.com/procuptime/procuptime/internal/control"
	"github.com/procuptime/procuptime/internal/models"
	"github.com/procuptime/procuptime/internal/store"
	"github.com/procuptime/procuptime/pkg/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time           { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// scriptedSampler returns the next identity on each call; "" means no identity.
type scriptedSampler struct {
	ids  []string
	next int
	err  error
}

func (s *scriptedSampler) Sample(ctx context.Context) (string, error) {
	if s.next >= len(s.ids) {
		return "", window.ErrNoFocusedWindow
	}
	id := s.ids[s.next]
	s.next++
	if id == "" {
		if s.err != nil {
			return "", s.err
		}
		return "", window.ErrNoFocusedWindow
	}
	return id, nil
}

type memStore struct {
	initial store.State
	loadErr error
	saved   []store.State
	failing int
}

func (m *memStore) Load() (store.State, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.initial == nil {
		return store.State{}, nil
	}
	return m.initial.Clone(), nil
}

func (m *memStore) Save(s store.State) error {
	if m.failing > 0 {
		m.failing--
		return errors.New("disk full")
	}
	m.saved = append(m.saved, s.Clone())
	return nil
}

func (m *memStore) last() store.State {
	if len(m.saved) == 0 {
		return nil
	}
	return m.saved[len(m.saved)-1]
}

type countingLauncher struct {
	calls int
	err   error
}

func (l *countingLauncher) Launch() error {
	l.calls++
	return l.err
}

type errorSink struct {
	logs []*models.ErrorLog
}

func (s *errorSink) CreateErrorLog(l *models.ErrorLog) error {
	s.logs = append(s.logs, l)
	return nil
}

type harness struct {
	engine   *Engine
	clock    *fakeClock
	sampler  *scriptedSampler
	store    *memStore
	queue    *control.Queue
	launcher *countingLauncher
	errs     *errorSink
}

func newHarness(t *testing.T, ids []string, initial store.State, mutate func(*config.TrackerConfig)) *harness {
	t.Helper()

	cfg := config.Default().Tracker
	if mutate != nil {
		mutate(&cfg)
	}

	h := &harness{
		clock:    &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		sampler:  &scriptedSampler{ids: ids},
		store:    &memStore{initial: initial},
		queue:    control.NewQueue(8),
		launcher: &countingLauncher{},
		errs:     &errorSink{},
	}
	h.engine = New(cfg, Deps{
		Sampler:  h.sampler,
		Store:    h.store,
		Intake:   h.queue,
		Launcher: h.launcher,
		Errors:   h.errs,
		Clock:    h.clock,
	})
	require.NoError(t, h.engine.Start())
	return h
}

func (h *harness) step(t *testing.T, d time.Duration) Tick {
	t.Helper()
	h.clock.Advance(d)
	tick, err := h.engine.Step(context.Background())
	require.NoError(t, err)
	return tick
}

func TestTimeConservation(t *testing.T) {
	h := newHarness(t, []string{"A", "A", "B", "A", "C"}, nil, nil)

	var credited uint64
	for i := 0; i < 5; i++ {
		tick := h.step(t, 2*time.Second)
		credited += tick.Credited
		assert.Equal(t, uint64(2), tick.Credited)
	}

	assert.Equal(t, uint64(10), credited)
	assert.Equal(t, store.State{"A": 6, "B": 2, "C": 2}, h.store.last())
}

func TestUnresolvedTimeIsDiscarded(t *testing.T) {
	h := newHarness(t, []string{"A", "", "A"}, nil, nil)

	h.step(t, time.Second)
	tick := h.step(t, 5*time.Second)
	assert.Empty(t, tick.Identity)
	assert.Zero(t, tick.Credited)
	h.step(t, time.Second)

	assert.Equal(t, store.State{"A": 2}, h.engine.Snapshot())
	assert.Len(t, h.store.saved, 2, "ticks without identity must not rewrite the file")
}

func TestStartupMerge(t *testing.T) {
	h := newHarness(t, []string{"A"}, store.State{"A": 50}, nil)

	h.step(t, 10*time.Second)

	assert.Equal(t, store.State{"A": 60}, h.store.last())
}

func TestNegativeClockGuard(t *testing.T) {
	h := newHarness(t, []string{"A", "A", "A"}, nil, nil)

	h.step(t, 3*time.Second)
	tick := h.step(t, -10*time.Second)
	assert.Equal(t, time.Duration(0), tick.Elapsed)
	assert.Zero(t, tick.Credited)
	h.step(t, time.Second)

	assert.Equal(t, store.State{"A": 4}, h.engine.Snapshot())
}

func TestFractionalCarryFollowsIdentity(t *testing.T) {
	h := newHarness(t, []string{"A", "A", "B", "B", "", "B"}, nil, nil)

	assert.Equal(t, uint64(1), h.step(t, 1500*time.Millisecond).Credited)
	assert.Equal(t, uint64(2), h.step(t, 1500*time.Millisecond).Credited)
	assert.Equal(t, uint64(1), h.step(t, 1500*time.Millisecond).Credited, "carry must reset on identity change")
	assert.Equal(t, uint64(2), h.step(t, 1500*time.Millisecond).Credited)
	h.step(t, 1500*time.Millisecond)
	assert.Equal(t, uint64(1), h.step(t, 1500*time.Millisecond).Credited, "carry must reset after a tick with no identity")

	assert.Equal(t, store.State{"A": 3, "B": 4}, h.engine.Snapshot())
}

func TestFirstSightingIsRecorded(t *testing.T) {
	h := newHarness(t, []string{"A", "A"}, nil, nil)

	h.step(t, 200*time.Millisecond)
	assert.Equal(t, store.State{"A": 0}, h.store.last())

	h.step(t, 200*time.Millisecond)
	assert.Len(t, h.store.saved, 1)
}

func TestMonotonicity(t *testing.T) {
	names := []string{"A", "B", "C", ""}
	rng := rand.New(rand.NewSource(42))

	ids := make([]string, 200)
	for i := range ids {
		ids[i] = names[rng.Intn(len(names))]
	}
	h := newHarness(t, ids, store.State{"A": 7}, nil)

	prev := h.engine.Snapshot()
	for range ids {
		h.step(t, time.Duration(rng.Int63n(int64(3*time.Second)))-500*time.Millisecond)

		cur := h.engine.Snapshot()
		for name, v := range prev {
			assert.GreaterOrEqual(t, cur[name], v, "uptime of %s decreased", name)
		}
		prev = cur
	}
}

func TestCountersSaturateAtMax(t *testing.T) {
	h := newHarness(t, []string{"A", "A", "B"}, store.State{"A": math.MaxUint64 - 1, "B": math.MaxUint64}, nil)

	h.step(t, 2*time.Second)
	assert.Equal(t, uint64(math.MaxUint64), h.engine.Snapshot()["A"])

	h.step(t, 5*time.Second)
	h.step(t, 3*time.Second)
	assert.Equal(t, store.State{"A": math.MaxUint64, "B": math.MaxUint64}, h.store.last())
}

func TestLoadFailureStopsTracker(t *testing.T) {
	st := &memStore{initial: store.State{"A": 10}, loadErr: errors.New("permission denied")}
	e := New(config.Default().Tracker, Deps{
		Sampler:  &scriptedSampler{ids: []string{"A"}},
		Store:    st,
		Intake:   control.NewQueue(8),
		Launcher: &countingLauncher{},
		Errors:   &errorSink{},
		Clock:    &fakeClock{now: time.Now()},
	})

	_, err := e.Step(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.Empty(t, st.saved)

	err = e.Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, st.saved)

	st.loadErr = nil
	require.NoError(t, e.Start())
	assert.Equal(t, store.State{"A": 10}, e.Snapshot())
}

func TestPersistFailureFatal(t *testing.T) {
	h := newHarness(t, []string{"A"}, nil, nil)
	h.store.failing = 1

	h.clock.Advance(time.Second)
	_, err := h.engine.Step(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	require.Len(t, h.errs.logs, 1)
	assert.Equal(t, models.ErrorKindPersist, h.errs.logs[0].Kind)
}

func TestPersistFailureRetryKeepsState(t *testing.T) {
	h := newHarness(t, []string{"A", "A"}, nil, func(c *config.TrackerConfig) {
		c.PersistFailure = config.PersistRetry
	})
	h.store.failing = 1

	h.step(t, 2*time.Second)
	assert.Empty(t, h.store.saved)
	assert.True(t, h.engine.Dirty())
	assert.Equal(t, store.State{"A": 2}, h.engine.Snapshot())

	h.step(t, time.Second)
	assert.False(t, h.engine.Dirty())
	assert.Equal(t, store.State{"A": 3}, h.store.last())
}

func TestRetryPersistsEvenWithoutNewIdentity(t *testing.T) {
	h := newHarness(t, []string{"A", ""}, nil, func(c *config.TrackerConfig) {
		c.PersistFailure = config.PersistRetry
	})
	h.store.failing = 1

	h.step(t, time.Second)
	h.step(t, time.Second)

	assert.Equal(t, store.State{"A": 1}, h.store.last())
}

func TestOpenViewerNotCoalesced(t *testing.T) {
	h := newHarness(t, []string{"A"}, nil, nil)
	h.queue.Send(control.ActionOpenViewer)
	h.queue.Send(control.ActionOpenViewer)

	h.step(t, time.Second)

	assert.Equal(t, 2, h.launcher.calls)
}

func TestLaunchFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, []string{"A"}, nil, nil)
	h.launcher.err = errors.New("no such file")
	h.queue.Send(control.ActionOpenViewer)

	h.step(t, time.Second)

	require.Len(t, h.errs.logs, 1)
	assert.Equal(t, models.ErrorKindLaunch, h.errs.logs[0].Kind)
}

func TestQuitStopsWithoutExtraSave(t *testing.T) {
	h := newHarness(t, []string{"A", "A", "A"}, nil, nil)

	h.step(t, time.Second)
	h.queue.Send(control.ActionQuit)
	h.queue.Send(control.ActionOpenViewer)

	h.clock.Advance(time.Second)
	_, err := h.engine.Step(context.Background())
	require.ErrorIs(t, err, ErrQuit)

	assert.Len(t, h.store.saved, 2)
	assert.Equal(t, 0, h.launcher.calls, "actions after quit are not handled")
}

func TestRunReturnsNilOnQuit(t *testing.T) {
	h := newHarness(t, []string{"A", "A", "A", "A"}, nil, func(c *config.TrackerConfig) {
		c.TickInterval = 5 * time.Millisecond
	})
	h.queue.Send(control.ActionQuit)

	done := make(chan error, 1)
	go func() { done <- h.engine.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after quit")
	}
}

func TestRunHonorsContext(t *testing.T) {
	h := newHarness(t, nil, nil, func(c *config.TrackerConfig) {
		c.TickInterval = 5 * time.Millisecond
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.engine.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSampleErrorsRecordedOncePerMessage(t *testing.T) {
	h := newHarness(t, []string{"", "", "A", ""}, nil, nil)
	h.sampler.err = errors.New("xgb: connection refused")

	for i := 0; i < 4; i++ {
		h.step(t, time.Second)
	}

	require.Len(t, h.errs.logs, 2)
	for _, l := range h.errs.logs {
		assert.Equal(t, models.ErrorKindSample, l.Kind)
		assert.Equal(t, "xgb: connection refused", l.ErrorMsg)
	}
}

func TestNoFocusedWindowIsNotAnError(t *testing.T) {
	h := newHarness(t, []string{""}, nil, nil)

	h.step(t, time.Second)

	assert.Empty(t, h.errs.logs)
}

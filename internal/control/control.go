// Package control queues external actions (tray clicks, signals) for the
// tracker loop to pick up between ticks.
package control

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/procuptime/procuptime/internal/logging"
)

// Action is a request from outside the tracker loop.
type Action int

const (
	ActionOpenViewer Action = iota + 1
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionOpenViewer:
		return "open-viewer"
	case ActionQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// DefaultCapacity bounds how many actions may wait between two ticks.
const DefaultCapacity = 64

// Queue is a multi-producer, single-consumer action queue.
type Queue struct {
	actions chan Action
	quit    chan struct{}
}

// NewQueue creates a queue holding up to capacity pending actions.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{
		actions: make(chan Action, capacity),
		quit:    make(chan struct{}, 1),
	}
}

// Send enqueues a without blocking. When the queue is full the action is
// dropped and false is returned; a quit is never lost since it is also
// latched separately.
func (q *Queue) Send(a Action) bool {
	if a == ActionQuit {
		select {
		case q.quit <- struct{}{}:
		default:
		}
	}

	select {
	case q.actions <- a:
		return true
	default:
		logging.NewLogger("control").Warnf("Action queue full, dropping %s", a)
		return false
	}
}

// Drain returns every pending action in arrival order without blocking.
// Repeated actions are kept as-is.
func (q *Queue) Drain() []Action {
	var out []Action
	for {
		select {
		case a := <-q.actions:
			out = append(out, a)
		default:
			select {
			case <-q.quit:
				if !containsQuit(out) {
					out = append(out, ActionQuit)
				}
			default:
			}
			return out
		}
	}
}

func containsQuit(actions []Action) bool {
	for _, a := range actions {
		if a == ActionQuit {
			return true
		}
	}
	return false
}

// RelaySignals enqueues ActionQuit on SIGINT or SIGTERM until ctx is done.
func (q *Queue) RelaySignals(ctx context.Context) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigChan:
				logging.NewLogger("control").Infof("Received %s, shutting down", sig)
				q.Send(ActionQuit)
			}
		}
	}()
}

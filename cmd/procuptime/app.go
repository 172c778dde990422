package main

import (
	"fmt"

	"github.com/procuptime/procuptime/internal/config"
	"github.com/procuptime/procuptime/internal/control"
	"github.com/procuptime/procuptime/internal/daemon"
	"github.com/procuptime/procuptime/internal/database"
	"github.com/procuptime/procuptime/internal/launcher"
	"github.com/procuptime/procuptime/internal/logging"
	"github.com/procuptime/procuptime/internal/sampler"
	"github.com/procuptime/procuptime/internal/store"
	"github.com/procuptime/procuptime/internal/tracker"
	"github.com/procuptime/procuptime/pkg/detector"
	"github.com/procuptime/procuptime/pkg/window"
	"github.com/sirupsen/logrus"
)

// app wires the tracker with its collaborators for one process lifetime.
type app struct {
	cfg      *config.Config
	queue    *control.Queue
	engine   *tracker.Engine
	detector window.Detector
	db       *database.DB
	release  func()
	logger   *logrus.Entry
}

// newApp acquires the PID file and builds the engine. Diagnostics are
// optional: a database that cannot be opened only disables them.
func newApp(cfg *config.Config) (*app, error) {
	logger := logging.NewLogger("app")

	release, err := daemon.New(cfg.Daemon.PIDFile).Acquire()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		queue:   control.NewQueue(control.DefaultCapacity),
		release: release,
		logger:  logger,
	}

	det, err := detector.New()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize window detector: %w", err)
	}
	a.detector = det
	logger.Infof("Window detector initialized: %s", det.GetDisplayServer())

	var recorder tracker.ErrorRecorder
	if cfg.Diagnostics.Enabled {
		db, err := database.Connect(cfg.Diagnostics.Path)
		if err == nil {
			err = db.Initialize()
			if err != nil {
				db.Close()
			}
		}
		if err != nil {
			logger.WithError(err).Warn("Diagnostics disabled")
		} else {
			a.db = db
			recorder = database.NewRepository(db)
		}
	}

	viewer, err := launcher.FromConfig(cfg.Viewer.Command)
	if err != nil {
		logger.WithError(err).Warn("Open Stats disabled")
	}

	deps := tracker.Deps{
		Sampler: sampler.New(det, nil, cfg.Tracker),
		Store:   store.New(cfg.Store.Path),
		Intake:  a.queue,
		Errors:  recorder,
	}
	if viewer != nil {
		deps.Launcher = viewer
	}
	a.engine = tracker.New(cfg.Tracker, deps)

	logger.Debugf("%s", cfg.String())
	return a, nil
}

// Close releases everything newApp acquired.
func (a *app) Close() {
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			a.logger.WithError(err).Debug("Failed to close detector")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.WithError(err).Debug("Failed to close diagnostics database")
		}
	}
	if a.release != nil {
		a.release()
	}
}

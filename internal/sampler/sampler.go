// Package sampler turns the currently focused window into an identity: the
// display name of the process that owns it.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/procuptime/procuptime/internal/config"
	"github.com/procuptime/procuptime/internal/logging"
	"github.com/procuptime/procuptime/pkg/window"
	"github.com/shirou/gopsutil/process"
	"github.com/sirupsen/logrus"
)

// ErrNoIdentity is returned when a window is focused but nothing usable names it.
var ErrNoIdentity = errors.New("focused window has no identity")

// ProcessResolver maps a PID to a process display name.
type ProcessResolver interface {
	ProcessName(ctx context.Context, pid int32) (string, error)
}

// GopsutilResolver resolves process names through gopsutil.
type GopsutilResolver struct{}

// ProcessName returns the executable name of pid.
func (GopsutilResolver) ProcessName(ctx context.Context, pid int32) (string, error) {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return "", fmt.Errorf("process %d not found: %w", pid, err)
	}
	name, err := proc.NameWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get name of process %d: %w", pid, err)
	}
	return name, nil
}

// Sampler queries a detector once per call.
type Sampler struct {
	detector  window.Detector
	resolver  ProcessResolver
	timeout   time.Duration
	lowercase bool
	logger    *logrus.Entry
}

// New creates a Sampler. A nil resolver falls back to gopsutil.
func New(detector window.Detector, resolver ProcessResolver, cfg config.TrackerConfig) *Sampler {
	if resolver == nil {
		resolver = GopsutilResolver{}
	}
	return &Sampler{
		detector:  detector,
		resolver:  resolver,
		timeout:   cfg.SampleTimeout,
		lowercase: cfg.LowercaseIdentities,
		logger:    logging.NewLogger("sampler"),
	}
}

// Sample returns the identity of the focused window. Any error means no
// identity is available for this tick; callers do not retry.
func (s *Sampler) Sample(ctx context.Context) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	info, err := s.detector.GetFocusedWindow(ctx)
	if err != nil {
		return "", err
	}
	if info == nil {
		return "", window.ErrNoFocusedWindow
	}

	identity := s.identify(ctx, info)
	if identity == "" {
		return "", ErrNoIdentity
	}
	if s.lowercase {
		identity = strings.ToLower(identity)
	}
	return identity, nil
}

// identify prefers the resolved process name, then whatever name the
// detector reported itself.
func (s *Sampler) identify(ctx context.Context, info *window.WindowInfo) string {
	if info.PID > 0 {
		name, err := s.resolver.ProcessName(ctx, info.PID)
		if err == nil && usable(name) {
			return strings.TrimSpace(name)
		}
		if err != nil {
			s.logger.WithError(err).Debug("Process lookup failed, using detector name")
		}
	}

	for _, name := range []string{info.ProcessName, info.AppName} {
		if usable(name) {
			return strings.TrimSpace(name)
		}
	}
	return ""
}

func usable(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && !strings.EqualFold(name, "unknown")
}

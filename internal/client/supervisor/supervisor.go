// Package supervisor restarts or reconnects to the POS backend.
//
// What "reconnect" means depends on the host: when the agent owns the
// backend process (Native) it is a full stop/settle/start cycle; when the
// backend runs elsewhere (Hosted) it is just a fresh probe.
package supervisor

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/posync/internal/client/probe"
	"github.com/dmitrijs2005/posync/internal/logging"
)

// Controller is the opaque process control exposed by a native host.
type Controller interface {
	Stop(ctx context.Context) error
	Start(ctx context.Context) (probe.BackendStatus, error)
}

// Prober is the probe surface the supervisor needs.
type Prober interface {
	ProbeBackend(ctx context.Context) probe.BackendStatus
}

type kind int

const (
	kindHosted kind = iota
	kindNative
)

// Capability tags what the host lets the agent do with the backend.
type Capability struct {
	kind       kind
	controller Controller
}

// Native returns the capability of a host that can stop and start the backend.
func Native(c Controller) Capability {
	return Capability{kind: kindNative, controller: c}
}

// Hosted returns the capability of a host with no process control.
func Hosted() Capability {
	return Capability{kind: kindHosted}
}

func (c Capability) IsNative() bool {
	return c.kind == kindNative && c.controller != nil
}

func (c Capability) String() string {
	if c.IsNative() {
		return "native"
	}
	return "hosted"
}

// Options tunes the restart cycle.
type Options struct {
	// SettleDelay separates a completed stop from the next start.
	SettleDelay time.Duration
	// WarmupDelay is how long after a restart FollowUp runs.
	WarmupDelay time.Duration
	// FollowUp runs once after each successful restart, off the caller's
	// goroutine. The agent uses it to refresh the sync summary.
	FollowUp func(ctx context.Context)
}

type Supervisor struct {
	capability Capability
	prober     Prober
	cell       *probe.StatusCell
	opts       Options
	restarting atomic.Bool
	logger     logging.Logger

	sleep     func(ctx context.Context, d time.Duration) error
	afterFunc func(d time.Duration, f func()) *time.Timer
}

func New(c Capability, p Prober, cell *probe.StatusCell, opts Options, logger logging.Logger) *Supervisor {
	if cell == nil {
		cell = probe.NewStatusCell()
	}
	return &Supervisor{
		capability: c,
		prober:     p,
		cell:       cell,
		opts:       opts,
		logger:     logger.With("component", "supervisor", "capability", c.String()),
		sleep:      sleepCtx,
		afterFunc:  time.AfterFunc,
	}
}

func (s *Supervisor) Capability() Capability {
	return s.capability
}

// Busy reports whether a restart is in flight.
func (s *Supervisor) Busy() bool {
	return s.restarting.Load()
}

// CanReconnect reports whether offering a reconnect makes sense right now:
// always on a native host, only while the backend is down on a hosted one.
func (s *Supervisor) CanReconnect() bool {
	if s.capability.IsNative() {
		return true
	}
	return !s.cell.Load().Running
}

// Restart stops the backend, waits for the settle delay, and starts it again.
// Only one restart runs at a time; a concurrent call returns false at once.
// Any failure leaves the status as not running and is not retried.
func (s *Supervisor) Restart(ctx context.Context) bool {
	if !s.capability.IsNative() {
		s.logger.Warn(ctx, "restart requested without process control")
		return false
	}
	if !s.restarting.CompareAndSwap(false, true) {
		s.logger.Info(ctx, "restart already in progress")
		return false
	}
	defer s.restarting.Store(false)
	s.cell.Invalidate()

	ctrl := s.capability.controller
	s.logger.Info(ctx, "stopping backend")
	if err := ctrl.Stop(ctx); err != nil {
		s.logger.Error(ctx, "backend stop failed", "error", err)
		s.cell.Store(probe.Down)
		return false
	}

	if err := s.sleep(ctx, s.opts.SettleDelay); err != nil {
		s.cell.Store(probe.Down)
		return false
	}

	s.logger.Info(ctx, "starting backend")
	st, err := ctrl.Start(ctx)
	if err != nil {
		s.logger.Error(ctx, "backend start failed", "error", err)
		s.cell.Store(probe.Down)
		return false
	}
	s.cell.Store(st)
	s.logger.Info(ctx, "backend restarted", "status", st.String())

	if st.Running && s.opts.FollowUp != nil {
		follow := s.opts.FollowUp
		s.afterFunc(s.opts.WarmupDelay, func() { follow(context.Background()) })
	}
	return st.Running
}

// Reconnect restarts the backend on a native host and re-probes it on a
// hosted one. It returns the resulting status.
func (s *Supervisor) Reconnect(ctx context.Context) probe.BackendStatus {
	if s.capability.IsNative() {
		s.Restart(ctx)
		return s.cell.Load()
	}
	if s.prober == nil {
		return s.cell.Load()
	}
	return s.prober.ProbeBackend(ctx)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

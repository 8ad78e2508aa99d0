// Package agent ties the probe, supervisor, session, sync engine and status
// aggregator together behind the operations the console exposes.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/posync/internal/auth"
	"github.com/dmitrijs2005/posync/internal/client/client"
	"github.com/dmitrijs2005/posync/internal/client/probe"
	"github.com/dmitrijs2005/posync/internal/client/repositories/syncruns"
	"github.com/dmitrijs2005/posync/internal/client/session"
	"github.com/dmitrijs2005/posync/internal/client/status"
	"github.com/dmitrijs2005/posync/internal/client/syncer"
	"github.com/dmitrijs2005/posync/internal/logging"
	"github.com/dmitrijs2005/posync/internal/models"
)

var (
	ErrNotAuthenticated     = errors.New("not logged in")
	ErrForbidden            = errors.New("insufficient permission")
	ErrBackendDown          = errors.New("backend is not running")
	ErrReconnectUnavailable = errors.New("backend is running; reconnect is not available")
	ErrSyncInProgress       = errors.New("sync already in progress")
	ErrPushUnavailable      = errors.New("order push is not configured")
)

type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*client.AuthResponse, error)
}

type Syncer interface {
	SyncAll(ctx context.Context) (*syncer.Result, bool)
	CheckRemoteAvailability(ctx context.Context) bool
}

// OrderPusher asks the backend to push its outstanding orders upstream.
type OrderPusher interface {
	ForceSync(ctx context.Context) (*client.PushResult, error)
}

type Summarizer interface {
	Summarize(ctx context.Context) status.Summary
}

// Supervisor is the slice of supervisor.Supervisor the agent drives.
type Supervisor interface {
	Reconnect(ctx context.Context) probe.BackendStatus
	CanReconnect() bool
	Busy() bool
}

// Deps lists the agent's collaborators. Runs and Orders may be nil.
// RetryDelay is how long automatic work that did not clear waits before
// it is attempted again; zero means DefaultRetryDelay.
type Deps struct {
	Session    *session.Manager
	Auth       Authenticator
	Syncer     Syncer
	Orders     OrderPusher
	Status     Summarizer
	Supervisor Supervisor
	Cell       *probe.StatusCell
	Runs       syncruns.Repository
	AutoSync   bool
	RetryDelay time.Duration
	Logger     logging.Logger
}

const (
	// historyKeep bounds the persisted sync history.
	historyKeep = 50

	DefaultRetryDelay = time.Minute
)

type Agent struct {
	session    *session.Manager
	auth       Authenticator
	syncer     Syncer
	orders     OrderPusher
	status     Summarizer
	supervisor Supervisor
	cell       *probe.StatusCell
	runs       syncruns.Repository
	autoSync   bool
	retryDelay time.Duration
	now        func() time.Time
	logger     logging.Logger

	online  atomic.Bool
	summary atomic.Pointer[status.Summary]
	last    atomic.Pointer[syncer.Result]
	syncing atomic.Bool

	// Unix nanoseconds before which the automatic pass skips that kind
	// of work. Only the pass goroutine holding syncing writes them.
	catalogRetryAt atomic.Int64
	pushRetryAt    atomic.Int64

	background sync.WaitGroup
}

func New(d Deps) *Agent {
	cell := d.Cell
	if cell == nil {
		cell = probe.NewStatusCell()
	}
	delay := d.RetryDelay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	return &Agent{
		session:    d.Session,
		auth:       d.Auth,
		syncer:     d.Syncer,
		orders:     d.Orders,
		status:     d.Status,
		supervisor: d.Supervisor,
		cell:       cell,
		runs:       d.Runs,
		autoSync:   d.AutoSync,
		retryDelay: delay,
		now:        time.Now,
		logger:     d.Logger.With("component", "agent"),
	}
}

// OnTick consumes one watcher snapshot. While the backend is up it refreshes
// the summary. When the host is online and a user is logged in, outstanding
// work starts an automatic pass on its own goroutine: catalog rows start a
// catalog sync and orders start an order push. OnTick never waits for it.
func (a *Agent) OnTick(ctx context.Context, snap probe.Snapshot) {
	wasOnline := a.online.Swap(snap.Online)
	if wasOnline != snap.Online {
		a.logger.Info(ctx, "network state changed", "online", snap.Online)
	}
	if !snap.Backend.Running {
		return
	}

	sum := a.Refresh(ctx)
	if !a.autoSync || !snap.Online || !a.session.IsAuthenticated() {
		return
	}
	catalog, push := a.due(sum)
	if (!catalog && !push) || ctx.Err() != nil {
		return
	}
	if !a.syncing.CompareAndSwap(false, true) {
		return
	}
	a.background.Add(1)
	go func() {
		defer a.background.Done()
		defer a.syncing.Store(false)
		a.autoPass(ctx, catalog, push)
	}()
}

// Wait blocks until an automatic pass started by OnTick has returned.
func (a *Agent) Wait() {
	a.background.Wait()
}

func (a *Agent) due(sum status.Summary) (catalog, push bool) {
	now := a.now().UnixNano()
	catalog = sum.CatalogOutstanding() > 0 && now >= a.catalogRetryAt.Load()
	push = a.orders != nil &&
		sum.PendingOrders+sum.FailedOrders > 0 &&
		now >= a.pushRetryAt.Load()
	return catalog, push
}

func (a *Agent) autoPass(ctx context.Context, catalog, push bool) {
	if catalog {
		res := a.syncOnce(ctx)
		if !res.Success {
			a.logger.Warn(ctx, "automatic sync did not complete", "message", res.Message)
			a.backoff(&a.catalogRetryAt)
		} else if sum, ok := a.Summary(); ok && sum.CatalogOutstanding() > 0 {
			a.backoff(&a.catalogRetryAt)
		}
	}
	if push {
		res, err := a.pushOnce(ctx)
		switch {
		case err != nil:
			a.logger.Warn(ctx, "automatic order push failed", "error", err)
			a.backoff(&a.pushRetryAt)
		case res.Failed > 0:
			a.backoff(&a.pushRetryAt)
		}
	}
}

func (a *Agent) backoff(at *atomic.Int64) {
	at.Store(a.now().Add(a.retryDelay).UnixNano())
}

// Refresh re-reads the sync summary and caches it for Indicator.
func (a *Agent) Refresh(ctx context.Context) status.Summary {
	sum := a.status.Summarize(ctx)
	a.summary.Store(&sum)
	return sum
}

// Summary returns the last cached summary.
func (a *Agent) Summary() (status.Summary, bool) {
	s := a.summary.Load()
	if s == nil {
		return status.Summary{}, false
	}
	return *s, true
}

// LastResult returns the result of the most recent sync pass.
func (a *Agent) LastResult() *syncer.Result {
	return a.last.Load()
}

func (a *Agent) Online() bool {
	return a.online.Load()
}

func (a *Agent) Backend() probe.BackendStatus {
	return a.cell.Load()
}

// Indicator renders the one-line sync badge.
func (a *Agent) Indicator() string {
	if !a.online.Load() {
		return "Offline"
	}
	s := a.summary.Load()
	switch {
	case s == nil:
		return "Checking..."
	case s.TotalPending > 0:
		return fmt.Sprintf("%d Pending", s.TotalPending)
	case s.TotalFailed > 0:
		return fmt.Sprintf("%d Failed", s.TotalFailed)
	default:
		return "Synced"
	}
}

func (a *Agent) require(p models.Permission) error {
	if !a.session.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if !a.session.HasPermission(p) {
		return ErrForbidden
	}
	return nil
}

// Sync runs a pass on behalf of the logged-in user.
func (a *Agent) Sync(ctx context.Context) (*syncer.Result, error) {
	if err := a.require(models.PermissionUser); err != nil {
		return nil, err
	}
	if !a.cell.Load().Running {
		return nil, ErrBackendDown
	}
	return a.runSync(ctx)
}

func (a *Agent) runSync(ctx context.Context) (*syncer.Result, error) {
	if !a.syncing.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer a.syncing.Store(false)
	return a.syncOnce(ctx), nil
}

func (a *Agent) syncOnce(ctx context.Context) *syncer.Result {
	res, _ := a.syncer.SyncAll(ctx)
	a.last.Store(res)
	a.record(ctx, res)
	a.Refresh(ctx)
	return res
}

// PushOrders asks the backend to push its outstanding orders to the remote
// store on behalf of the logged-in user.
func (a *Agent) PushOrders(ctx context.Context) (*client.PushResult, error) {
	if err := a.require(models.PermissionUser); err != nil {
		return nil, err
	}
	if a.orders == nil {
		return nil, ErrPushUnavailable
	}
	if !a.cell.Load().Running {
		return nil, ErrBackendDown
	}
	if !a.syncing.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer a.syncing.Store(false)
	return a.pushOnce(ctx)
}

func (a *Agent) pushOnce(ctx context.Context) (*client.PushResult, error) {
	res, err := a.orders.ForceSync(ctx)
	a.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	a.logger.Info(ctx, "order push finished", "pushed", res.Pushed, "failed", res.Failed)
	return res, nil
}

func (a *Agent) record(ctx context.Context, res *syncer.Result) {
	if a.runs == nil {
		return
	}
	run := syncruns.Run{
		ID:         res.RunID,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		Success:    res.Success,
		Message:    res.Message,
		Errors:     len(res.Errors),
	}
	if err := a.runs.Record(ctx, run); err != nil {
		a.logger.Warn(ctx, "failed to record sync run", "error", err)
		return
	}
	if err := a.runs.Prune(ctx, historyKeep); err != nil {
		a.logger.Warn(ctx, "failed to prune sync history", "error", err)
	}
}

// LastRun returns the newest persisted sync run, if any.
func (a *Agent) LastRun(ctx context.Context) (*syncruns.Run, error) {
	if a.runs == nil {
		return nil, nil
	}
	return a.runs.Last(ctx)
}

// CheckRemote reports whether the authoritative store answers right now.
func (a *Agent) CheckRemote(ctx context.Context) (bool, error) {
	if err := a.require(models.PermissionUser); err != nil {
		return false, err
	}
	return a.syncer.CheckRemoteAvailability(ctx), nil
}

// CanReconnect mirrors the supervisor's availability rule.
func (a *Agent) CanReconnect() bool {
	return a.supervisor.CanReconnect()
}

// Reconnect restarts or re-probes the backend. It needs no session since
// logging in needs the backend.
func (a *Agent) Reconnect(ctx context.Context) (probe.BackendStatus, error) {
	if !a.supervisor.CanReconnect() {
		return a.cell.Load(), ErrReconnectUnavailable
	}
	st := a.supervisor.Reconnect(ctx)
	a.logger.Info(ctx, "reconnect finished", "status", st.String())
	return st, nil
}

// Login authenticates against the backend and installs the returned token.
func (a *Agent) Login(ctx context.Context, username, password string) (*auth.Identity, error) {
	resp, err := a.auth.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	id, err := a.session.Decode(resp.Token)
	if err != nil {
		return nil, err
	}
	if err := a.session.Login(ctx, resp.Token, id); err != nil {
		return nil, err
	}
	return id, nil
}

func (a *Agent) Logout(ctx context.Context) {
	a.session.Logout(ctx)
}

// Whoami returns the current identity.
func (a *Agent) Whoami() (auth.Identity, bool) {
	return a.session.Identity()
}

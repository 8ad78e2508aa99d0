package supervisor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/posync/internal/client/probe"
	"github.com/dmitrijs2005/posync/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	mu       sync.Mutex
	calls    []string
	stopErr  error
	startErr error
	status   probe.BackendStatus
	// block, when set, holds Stop until it is closed.
	block chan struct{}
}

func (f *fakeController) Stop(ctx context.Context) error {
	f.record("stop")
	if f.block != nil {
		<-f.block
	}
	return f.stopErr
}

func (f *fakeController) Start(ctx context.Context) (probe.BackendStatus, error) {
	f.record("start")
	if f.startErr != nil {
		return probe.Down, f.startErr
	}
	return f.status, nil
}

func (f *fakeController) record(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, s)
}

func (f *fakeController) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeProber struct {
	calls  int
	status probe.BackendStatus
}

func (f *fakeProber) ProbeBackend(ctx context.Context) probe.BackendStatus {
	f.calls++
	return f.status
}

func newNative(t *testing.T, ctrl *fakeController, opts Options) (*Supervisor, *probe.StatusCell) {
	t.Helper()
	cell := probe.NewStatusCell()
	s := New(Native(ctrl), nil, cell, opts, logging.Nop())
	s.sleep = func(ctx context.Context, d time.Duration) error {
		ctrl.record("settle")
		return nil
	}
	return s, cell
}

func TestRestart_StopSettleStartInOrder(t *testing.T) {
	ctrl := &fakeController{status: probe.Up(8080)}
	s, cell := newNative(t, ctrl, Options{SettleDelay: time.Second})

	ok := s.Restart(context.Background())

	require.True(t, ok)
	assert.Equal(t, []string{"stop", "settle", "start"}, ctrl.Calls())
	assert.True(t, cell.Load().Running)
	assert.False(t, s.Busy())
}

func TestRestart_ConcurrentCallIsRejected(t *testing.T) {
	ctrl := &fakeController{status: probe.Up(8080), block: make(chan struct{})}
	s, _ := newNative(t, ctrl, Options{})

	first := make(chan bool)
	go func() { first <- s.Restart(context.Background()) }()

	require.Eventually(t, s.Busy, time.Second, 5*time.Millisecond)
	assert.False(t, s.Restart(context.Background()))

	close(ctrl.block)
	assert.True(t, <-first)
	assert.Equal(t, []string{"stop", "settle", "start"}, ctrl.Calls())
}

func TestRestart_StopFailureLeavesBackendDown(t *testing.T) {
	ctrl := &fakeController{stopErr: errors.New("permission denied")}
	s, cell := newNative(t, ctrl, Options{})
	cell.Store(probe.Up(8080))

	assert.False(t, s.Restart(context.Background()))
	assert.Equal(t, []string{"stop"}, ctrl.Calls())
	assert.False(t, cell.Load().Running)
	assert.False(t, s.Busy())
}

func TestRestart_StartFailureIsNotRetried(t *testing.T) {
	ctrl := &fakeController{startErr: errors.New("port in use")}
	s, cell := newNative(t, ctrl, Options{})

	assert.False(t, s.Restart(context.Background()))
	assert.Equal(t, []string{"stop", "settle", "start"}, ctrl.Calls())
	assert.False(t, cell.Load().Running)
}

func TestRestart_SchedulesFollowUpAfterWarmup(t *testing.T) {
	ctrl := &fakeController{status: probe.Up(8080)}
	followed := make(chan struct{}, 1)
	s, _ := newNative(t, ctrl, Options{
		WarmupDelay: 3 * time.Second,
		FollowUp:    func(context.Context) { followed <- struct{}{} },
	})

	var gotDelay time.Duration
	s.afterFunc = func(d time.Duration, f func()) *time.Timer {
		gotDelay = d
		f()
		return nil
	}

	require.True(t, s.Restart(context.Background()))
	assert.Equal(t, 3*time.Second, gotDelay)
	select {
	case <-followed:
	default:
		t.Fatal("follow-up was not run")
	}
}

func TestRestart_NoFollowUpWhenNotRunning(t *testing.T) {
	ctrl := &fakeController{status: probe.Down}
	s, _ := newNative(t, ctrl, Options{FollowUp: func(context.Context) {}})
	s.afterFunc = func(d time.Duration, f func()) *time.Timer {
		t.Fatal("follow-up scheduled for a stopped backend")
		return nil
	}

	assert.False(t, s.Restart(context.Background()))
}

func TestRestart_CancelledDuringSettle(t *testing.T) {
	ctrl := &fakeController{status: probe.Up(8080)}
	s := New(Native(ctrl), nil, nil, Options{SettleDelay: time.Hour}, logging.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, s.Restart(ctx))
	assert.Equal(t, []string{"stop"}, ctrl.Calls())
}

func TestRestart_HostedRefuses(t *testing.T) {
	s := New(Hosted(), &fakeProber{}, nil, Options{}, logging.Nop())
	assert.False(t, s.Restart(context.Background()))
}

func TestReconnect_HostedProbes(t *testing.T) {
	p := &fakeProber{status: probe.Up(8080)}
	s := New(Hosted(), p, nil, Options{}, logging.Nop())

	st := s.Reconnect(context.Background())
	assert.True(t, st.Running)
	assert.Equal(t, 1, p.calls)
}

func TestReconnect_NativeRestarts(t *testing.T) {
	ctrl := &fakeController{status: probe.Up(9090)}
	s, _ := newNative(t, ctrl, Options{})

	st := s.Reconnect(context.Background())
	require.True(t, st.Running)
	assert.Equal(t, uint16(9090), *st.Port)
}

func TestCanReconnect(t *testing.T) {
	native, _ := newNative(t, &fakeController{}, Options{})
	assert.True(t, native.CanReconnect())

	cell := probe.NewStatusCell()
	hosted := New(Hosted(), &fakeProber{}, cell, Options{}, logging.Nop())
	assert.True(t, hosted.CanReconnect())

	cell.Store(probe.Up(8080))
	assert.False(t, hosted.CanReconnect())
}

func TestCapability(t *testing.T) {
	assert.Equal(t, "native", Native(&fakeController{}).String())
	assert.Equal(t, "hosted", Hosted().String())
	assert.False(t, Native(nil).IsNative())
}

func TestRestart_DiscardsHealthCheckAlreadyInFlight(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		// drop the connection so the health check sees a transport failure
		conn, _, err := w.(http.Hijacker).Hijack()
		if err == nil {
			_ = conn.Close()
		}
	}))
	t.Cleanup(srv.Close)

	cell := probe.NewStatusCell()
	p := probe.NewProber(probe.Options{
		BaseURL:    srv.URL,
		HealthPath: "/api/pos/health",
		Port:       8080,
		Timeout:    5 * time.Second,
	}, cell, logging.Nop())

	ctrl := &fakeController{status: probe.Up(8080)}
	s := New(Native(ctrl), p, cell, Options{}, logging.Nop())
	s.sleep = func(context.Context, time.Duration) error { return nil }

	var ticks int
	w := probe.NewWatcher(p, time.Hour, s.Busy, func(context.Context, probe.Snapshot) { ticks++ }, logging.Nop())

	ctx := context.Background()
	ran := make(chan bool, 1)
	go func() { ran <- w.Tick(ctx) }()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("health check never reached the backend")
	}

	require.True(t, s.Restart(ctx))
	require.Equal(t, probe.Up(8080), cell.Load())

	close(release)
	select {
	case ok := <-ran:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("tick did not return")
	}
	assert.Zero(t, ticks)
	assert.Equal(t, probe.Up(8080), cell.Load())
}

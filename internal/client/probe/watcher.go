package probe

import (
	"context"
	"time"

	"github.com/dmitrijs2005/posync/internal/logging"
)

// Snapshot is what one watcher tick observed.
type Snapshot struct {
	Online  bool
	Backend BackendStatus
	At      time.Time
}

// Busy reports whether a probe tick must be skipped, e.g. while the
// supervisor is restarting the backend.
type Busy func() bool

// Watcher runs the prober on a fixed interval and hands each snapshot to
// OnTick. Ticks that land while Busy reports true are dropped, not queued.
type Watcher struct {
	prober   *Prober
	interval time.Duration
	busy     Busy
	onTick   func(context.Context, Snapshot)
	logger   logging.Logger
	now      func() time.Time
}

func NewWatcher(p *Prober, interval time.Duration, busy Busy, onTick func(context.Context, Snapshot), logger logging.Logger) *Watcher {
	if busy == nil {
		busy = func() bool { return false }
	}
	return &Watcher{
		prober:   p,
		interval: interval,
		busy:     busy,
		onTick:   onTick,
		logger:   logger.With("component", "watcher"),
		now:      time.Now,
	}
}

// Run probes once immediately, then every interval until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Tick(ctx)
	for {
		select {
		case <-ticker.C:
			w.Tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Tick performs a single probe. It returns false when the tick was skipped,
// either because a restart was in flight when it began or because the status
// was rewritten while the probe was out.
func (w *Watcher) Tick(ctx context.Context) bool {
	gen := w.prober.Cell().Generation()
	if w.busy() {
		w.logger.Debug(ctx, "restart in flight, skipping probe")
		return false
	}

	online := w.prober.ProbeOnline()
	backend, fresh := w.prober.ProbeBackendAt(ctx, gen)
	if !fresh {
		w.logger.Debug(ctx, "restart overlapped probe, skipping tick")
		return false
	}

	if w.onTick != nil {
		w.onTick(ctx, Snapshot{Online: online, Backend: backend, At: w.now()})
	}
	return true
}

package probe

import (
	"fmt"
	"sync/atomic"
)

// BackendStatus is the last observed liveness of the backend.
// Port is nil when the backend is not known to be listening.
type BackendStatus struct {
	Running bool    `json:"running"`
	Port    *uint16 `json:"port,omitempty"`
}

// Down is the status reported whenever the backend could not be reached.
var Down = BackendStatus{}

// Up returns a running status on port.
func Up(port uint16) BackendStatus {
	return BackendStatus{Running: true, Port: &port}
}

func (s BackendStatus) String() string {
	if !s.Running {
		return "stopped"
	}
	if s.Port == nil {
		return "running"
	}
	return fmt.Sprintf("running on port %d", *s.Port)
}

// StatusCell holds the process-wide last-known BackendStatus. Writers
// replace the whole value; readers always see a complete one.
//
// Every write bumps a generation. A probe records the generation it started
// at and only lands its result if nothing else was written meanwhile, so a
// slow probe cannot overwrite the status a restart has just set.
type StatusCell struct {
	v atomic.Pointer[cellValue]
}

type cellValue struct {
	status BackendStatus
	gen    uint64
}

func NewStatusCell() *StatusCell {
	c := &StatusCell{}
	c.Store(Down)
	return c
}

func (c *StatusCell) Load() BackendStatus {
	if p := c.v.Load(); p != nil {
		return p.status
	}
	return Down
}

// Generation returns the current write generation.
func (c *StatusCell) Generation() uint64 {
	if p := c.v.Load(); p != nil {
		return p.gen
	}
	return 0
}

func (c *StatusCell) Store(s BackendStatus) {
	c.update(func(BackendStatus) BackendStatus { return s })
}

// Invalidate keeps the status but bumps the generation, discarding any
// probe still in flight.
func (c *StatusCell) Invalidate() {
	c.update(func(cur BackendStatus) BackendStatus { return cur })
}

// StoreIf stores s only if the cell is still at generation gen.
func (c *StatusCell) StoreIf(gen uint64, s BackendStatus) bool {
	old := c.v.Load()
	var cur uint64
	if old != nil {
		cur = old.gen
	}
	if cur != gen {
		return false
	}
	return c.v.CompareAndSwap(old, &cellValue{status: s, gen: gen + 1})
}

func (c *StatusCell) update(f func(BackendStatus) BackendStatus) {
	for {
		old := c.v.Load()
		next := &cellValue{status: Down}
		if old != nil {
			next.status, next.gen = old.status, old.gen+1
		}
		next.status = f(next.status)
		if c.v.CompareAndSwap(old, next) {
			return
		}
	}
}

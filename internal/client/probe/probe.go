package probe

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/posync/internal/logging"
	"github.com/dmitrijs2005/posync/internal/netx"
)

// Options configures a Prober.
type Options struct {
	BaseURL    string
	HealthPath string
	Port       uint16
	Timeout    time.Duration
	HTTPClient *http.Client
	Interfaces netx.ListFunc
}

// Prober checks network presence and backend health. Its methods never
// fail; an unreachable backend is simply reported as Down.
type Prober struct {
	client     *http.Client
	baseURL    string
	healthPath string
	port       uint16
	timeout    time.Duration
	interfaces netx.ListFunc
	cell       *StatusCell
	logger     logging.Logger
}

func NewProber(opts Options, cell *StatusCell, logger logging.Logger) *Prober {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if cell == nil {
		cell = NewStatusCell()
	}
	return &Prober{
		client:     client,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		healthPath: opts.HealthPath,
		port:       opts.Port,
		timeout:    timeout,
		interfaces: opts.Interfaces,
		cell:       cell,
		logger:     logger.With("component", "probe"),
	}
}

// Cell exposes the status cell the prober writes to.
func (p *Prober) Cell() *StatusCell {
	return p.cell
}

// ProbeOnline reports OS-level network presence, independent of the backend.
func (p *Prober) ProbeOnline() bool {
	return netx.HasNetwork(p.interfaces)
}

// ProbeBackend asks the health endpoint first. A 2xx there means running.
// Anything else falls back to the root URL, where any HTTP response at all,
// 403 and 404 included, proves a server is listening. Only a transport
// failure on both yields Down. The result is stored in the status cell
// unless another writer got there first, in which case the cell's current
// value is returned.
func (p *Prober) ProbeBackend(ctx context.Context) BackendStatus {
	st, _ := p.ProbeBackendAt(ctx, p.cell.Generation())
	return st
}

// ProbeBackendAt probes like ProbeBackend but only stores the result if the
// cell is still at generation gen. It reports false when the result was
// dropped as stale.
func (p *Prober) ProbeBackendAt(ctx context.Context, gen uint64) (BackendStatus, bool) {
	st := p.probe(ctx)
	prev := p.cell.Load()
	if !p.cell.StoreIf(gen, st) {
		p.logger.Debug(ctx, "status changed during probe, dropping result", "probed", st.String())
		return p.cell.Load(), false
	}
	if prev.Running != st.Running {
		p.logger.Info(ctx, "backend status changed", "status", st.String())
	}
	return st, true
}

func (p *Prober) probe(ctx context.Context) BackendStatus {
	code, err := p.get(ctx, p.healthPath)
	if err == nil && code >= 200 && code < 300 {
		return Up(p.port)
	}
	if err != nil {
		p.logger.Debug(ctx, "health check failed", "error", err)
	} else {
		p.logger.Debug(ctx, "health check not ok, trying root", "status", code)
	}

	if _, err := p.get(ctx, "/"); err != nil {
		p.logger.Debug(ctx, "root check failed", "error", err)
		return Down
	}
	return Up(p.port)
}

func (p *Prober) get(ctx context.Context, path string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return 0, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return resp.StatusCode, nil
}

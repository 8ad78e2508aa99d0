package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/posync/internal/auth"
	"github.com/dmitrijs2005/posync/internal/client/agent"
	"github.com/dmitrijs2005/posync/internal/client/client"
	"github.com/dmitrijs2005/posync/internal/client/config"
	"github.com/dmitrijs2005/posync/internal/client/probe"
	"github.com/dmitrijs2005/posync/internal/client/repositories/syncruns"
	"github.com/dmitrijs2005/posync/internal/client/session"
	"github.com/dmitrijs2005/posync/internal/client/status"
	"github.com/dmitrijs2005/posync/internal/client/supervisor"
	"github.com/dmitrijs2005/posync/internal/client/syncer"
	"github.com/dmitrijs2005/posync/internal/logging"
	"github.com/dmitrijs2005/posync/internal/netx"
)

// agentAPI is the part of agent.Agent the console drives.
type agentAPI interface {
	Login(ctx context.Context, username, password string) (*auth.Identity, error)
	Logout(ctx context.Context)
	Whoami() (auth.Identity, bool)
	Sync(ctx context.Context) (*syncer.Result, error)
	PushOrders(ctx context.Context) (*client.PushResult, error)
	CheckRemote(ctx context.Context) (bool, error)
	Reconnect(ctx context.Context) (probe.BackendStatus, error)
	CanReconnect() bool
	Refresh(ctx context.Context) status.Summary
	Summary() (status.Summary, bool)
	Indicator() string
	Online() bool
	Backend() probe.BackendStatus
	LastRun(ctx context.Context) (*syncruns.Run, error)
	Wait()
}

type App struct {
	config     *config.Config
	agent      agentAPI
	watcher    *probe.Watcher
	capability supervisor.Capability
	reader     *bufio.Reader
	out        io.Writer
	logger     logging.Logger
	closers    []func() error
}

var _ execIface = (*App)(nil)

// NewApp opens the agent database and wires every component from c.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogFormat, c.LogLevel, os.Stderr)

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	repos := client.NewRepositories(db)

	app := &App{
		config: c,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		logger: logger,
	}
	app.closers = append(app.closers, db.Close)

	if err := app.wire(ctx, repos); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) wire(ctx context.Context, repos *client.Repositories) error {
	c, logger := a.config, a.logger

	api := client.NewHTTPClient(nil, c.BackendURL)
	cell := probe.NewStatusCell()
	prober := probe.NewProber(probe.Options{
		BaseURL:    c.BackendURL,
		HealthPath: c.HealthPath,
		Port:       uint16(c.BackendPort),
		Timeout:    c.ProbeTimeout,
		Interfaces: netx.SystemInterfaces,
	}, cell, logger)

	ready := prober.ProbeBackend
	if c.GRPCHealthAddr != "" {
		checker, err := probe.NewGRPCHealthChecker(c.GRPCHealthAddr, "", c.ProbeTimeout)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, checker.Close)
		ready = func(ctx context.Context) probe.BackendStatus {
			if ok, _ := checker.Check(ctx); !ok {
				return probe.Down
			}
			return prober.ProbeBackend(ctx)
		}
	}

	capability := supervisor.Hosted()
	if c.Native() {
		ctrl, err := supervisor.NewExecController(supervisor.ExecOptions{Command: c.BackendCommand}, ready, logger)
		if err != nil {
			return err
		}
		capability = supervisor.Native(ctrl)
		a.closers = append(a.closers, func() error { return ctrl.Stop(context.Background()) })
	}
	a.capability = capability

	sess := session.NewManager([]byte(c.SecretKey), repos.Metadata, logger)
	sess.Restore(ctx)

	var ag *agent.Agent
	sup := supervisor.New(capability, prober, cell, supervisor.Options{
		SettleDelay: c.SettleDelay,
		WarmupDelay: c.WarmupDelay,
		FollowUp:    func(ctx context.Context) { ag.Refresh(ctx) },
	}, logger)

	ag = agent.New(agent.Deps{
		Session:    sess,
		Auth:       api,
		Syncer:     syncer.New(api, api, logger),
		Orders:     api,
		Status:     status.NewAggregator(api, logger),
		Supervisor: sup,
		Cell:       cell,
		Runs:       repos.SyncRuns,
		AutoSync:   c.AutoSync,
		Logger:     logger,
	})
	a.agent = ag
	a.watcher = probe.NewWatcher(prober, c.ProbeInterval, sup.Busy, ag.OnTick, logger)
	return nil
}

// Run starts the watcher and blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer func() { _ = a.Close() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.capability.IsNative() {
		if _, err := a.agent.Reconnect(ctx); err != nil {
			a.logger.Warn(ctx, "initial backend start failed", "error", err)
		}
	}
	go a.watcher.Run(ctx)

	fmt.Fprintf(a.out, "posync console, %s backend at %s (type 'help' for commands)\n", a.capability, a.config.BackendURL)
	runREPL(ctx, a, a.prompt, a.reader)

	cancel()
	a.agent.Wait()
}

// Close releases resources in reverse acquisition order.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func (a *App) isLoggedIn() bool {
	_, ok := a.agent.Whoami()
	return ok
}

// prompt renders "(user | indicator)" for the REPL.
func (a *App) prompt() string {
	s := a.agent.Indicator()
	if id, ok := a.agent.Whoami(); ok {
		s = id.Username + " | " + s
	}
	return "(" + s + ")"
}

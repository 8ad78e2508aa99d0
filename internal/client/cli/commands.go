package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/posync/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// Login authenticates with the backend. The username may be passed as the
// first argument; otherwise it is prompted for.
func (a *App) Login(ctx context.Context, args []string) error {
	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		u, err := getSimpleText(a.reader, "Enter username", a.out)
		if err != nil {
			return err
		}
		username = u
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.Wipe(password)

	id, err := a.agent.Login(ctx, username, string(password))
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s), session valid until %s\n",
		id.Username, id.Permission, id.ExpiresAt.Local().Format(time.DateTime))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.agent.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	id, ok := a.agent.Whoami()
	if !ok {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	fmt.Fprintf(a.out, "%s (id %d, %s), expires %s\n",
		id.Username, id.UserID, id.Permission, id.ExpiresAt.Local().Format(time.DateTime))
	return nil
}

// Status prints the backend, network and sync state.
func (a *App) Status(ctx context.Context) error {
	network := "offline"
	if a.agent.Online() {
		network = "online"
	}
	fmt.Fprintf(a.out, "Network:  %s\n", network)
	fmt.Fprintf(a.out, "Backend:  %s\n", a.agent.Backend())

	if a.agent.Backend().Running {
		a.agent.Refresh(ctx)
	}
	fmt.Fprintf(a.out, "Sync:     %s\n", a.agent.Indicator())
	if s, ok := a.agent.Summary(); ok {
		fmt.Fprintf(a.out, "  products      pending %d, failed %d, synced %d\n", s.PendingProducts, s.FailedProducts, s.SyncedProducts)
		fmt.Fprintf(a.out, "  barcodes      pending %d, failed %d\n", s.PendingBarcodes, s.FailedBarcodes)
		fmt.Fprintf(a.out, "  descriptions  pending %d, failed %d\n", s.PendingDescriptions, s.FailedDescriptions)
		fmt.Fprintf(a.out, "  orders        pending %d, failed %d, synced %d\n", s.PendingOrders, s.FailedOrders, s.SyncedOrders)
		if s.Partial {
			fmt.Fprintln(a.out, "  (some counts unavailable)")
		}
	}

	run, err := a.agent.LastRun(ctx)
	if err != nil {
		return err
	}
	if run != nil {
		fmt.Fprintf(a.out, "Last sync: %s, %s\n", run.FinishedAt.Local().Format(time.DateTime), run.Message)
	}
	if a.agent.CanReconnect() {
		fmt.Fprintln(a.out, "Reconnect available")
	}
	return nil
}

// Sync runs a sync pass and prints its result.
func (a *App) Sync(ctx context.Context) error {
	fmt.Fprintln(a.out, "Syncing...")
	res, err := a.agent.Sync(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, res.Message)
	d := res.Details
	fmt.Fprintf(a.out, "  products      %d/%d (%d errors)\n", d.Products.Synced, d.Products.Fetched, d.Products.Errors)
	fmt.Fprintf(a.out, "  barcodes      %d/%d (%d errors)\n", d.Barcodes.Synced, d.Barcodes.Fetched, d.Barcodes.Errors)
	fmt.Fprintf(a.out, "  descriptions  %d/%d (%d errors)\n", d.Descriptions.Synced, d.Descriptions.Fetched, d.Descriptions.Errors)
	for _, e := range res.Errors {
		fmt.Fprintln(a.out, "  -", e)
	}
	return nil
}

// Push asks the backend to push its outstanding orders upstream.
func (a *App) Push(ctx context.Context) error {
	fmt.Fprintln(a.out, "Pushing orders...")
	res, err := a.agent.PushOrders(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, res.Message)
	fmt.Fprintf(a.out, "  orders        %d pushed, %d failed\n", res.Pushed, res.Failed)
	for _, e := range res.Errors {
		fmt.Fprintln(a.out, "  -", e)
	}
	return nil
}

func (a *App) Check(ctx context.Context) error {
	ok, err := a.agent.CheckRemote(ctx)
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintln(a.out, "Remote store is available")
	} else {
		fmt.Fprintln(a.out, "Remote store is unavailable")
	}
	return nil
}

func (a *App) Reconnect(ctx context.Context) error {
	fmt.Fprintln(a.out, "Reconnecting...")
	st, err := a.agent.Reconnect(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Backend %s\n", st)
	return nil
}

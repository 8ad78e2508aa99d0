// Package syncer pulls the authoritative catalog into the local store.
//
// A sync pass walks products, barcodes and descriptions in that order. Each
// collection is read from the remote side in one call; each element is then
// upserted locally on its own, so a bad element is recorded and skipped
// while the rest of the pass continues. A failed bulk read aborts the pass.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/posync/internal/logging"
	"github.com/dmitrijs2005/posync/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrBulkFetch marks a failed read of a whole remote collection.
var ErrBulkFetch = errors.New("bulk fetch failed")

const (
	msgSuccess     = "Sync completed successfully"
	msgBulkFailure = "Sync failed due to connection or server error"

	// passTimeout bounds one pass, which no single caller can cancel.
	passTimeout = 5 * time.Minute
)

// RemoteSource reads the authoritative collections.
type RemoteSource interface {
	FetchProducts(ctx context.Context) ([]models.Product, error)
	FetchBarcodes(ctx context.Context) ([]models.ProductBarcode, error)
	FetchDescriptions(ctx context.Context) ([]models.ProductDescription, error)
}

// LocalStore is the write side of the local mirror. Whether an element is
// created or updated is decided here, from the Exists answer.
type LocalStore interface {
	ProductExists(ctx context.Context, productID int64) (bool, error)
	CreateProduct(ctx context.Context, p models.Product) error
	UpdateProduct(ctx context.Context, p models.Product) error

	BarcodeExists(ctx context.Context, productID int64, barcode string) (bool, error)
	CreateBarcode(ctx context.Context, b models.ProductBarcode) error
	UpdateBarcode(ctx context.Context, b models.ProductBarcode) error

	DescriptionExists(ctx context.Context, productID int64, siteID, languageID int) (bool, error)
	CreateDescription(ctx context.Context, d models.ProductDescription) error
	UpdateDescription(ctx context.Context, d models.ProductDescription) error
}

// ClassResult counts one collection's progress within a pass.
type ClassResult struct {
	Fetched int `json:"fetched"`
	Synced  int `json:"synced"`
	Errors  int `json:"errors"`
}

type Details struct {
	Products     ClassResult `json:"products"`
	Barcodes     ClassResult `json:"barcodes"`
	Descriptions ClassResult `json:"descriptions"`
}

// Result is the outcome of one pass.
type Result struct {
	RunID      string    `json:"runId"`
	Success    bool      `json:"success"`
	Message    string    `json:"message"`
	Details    Details   `json:"details"`
	Errors     []string  `json:"errors"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// ErrorCount sums the per-class error counters.
func (r *Result) ErrorCount() int {
	return r.Details.Products.Errors + r.Details.Barcodes.Errors + r.Details.Descriptions.Errors
}

type Engine struct {
	remote  RemoteSource
	local   LocalStore
	logger  logging.Logger
	group   singleflight.Group
	now     func() time.Time
	timeout time.Duration
}

func New(remote RemoteSource, local LocalStore, logger logging.Logger) *Engine {
	return &Engine{
		remote:  remote,
		local:   local,
		logger:  logger.With("component", "syncer"),
		now:     time.Now,
		timeout: passTimeout,
	}
}

// SyncAll runs one pass. A call made while a pass is in flight waits for
// that pass and receives its result instead of starting another. The
// returned bool reports whether the result was shared. The pass keeps the
// first caller's values but not its cancellation, and ends after e.timeout.
func (e *Engine) SyncAll(ctx context.Context) (*Result, bool) {
	v, _, shared := e.group.Do("sync", func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
		defer cancel()
		return e.run(ctx), nil
	})
	return v.(*Result), shared
}

func (e *Engine) run(ctx context.Context) *Result {
	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: e.now(),
		Errors:    []string{},
	}
	log := e.logger.With("run_id", res.RunID)
	log.Info(ctx, "sync started")

	steps := []struct {
		class models.Class
		run   func(context.Context, *Result) error
	}{
		{models.ClassProducts, e.syncProducts},
		{models.ClassBarcodes, e.syncBarcodes},
		{models.ClassDescriptions, e.syncDescriptions},
	}

	for _, s := range steps {
		if err := s.run(ctx, res); err != nil {
			res.Success = false
			res.Message = msgBulkFailure
			res.Errors = []string{fmt.Sprintf("%s: %v", msgBulkFailure, err)}
			res.FinishedAt = e.now()
			log.Error(ctx, "sync aborted", "class", string(s.class), "error", err)
			return res
		}
	}

	n := res.ErrorCount()
	res.Success = n == 0
	if res.Success {
		res.Message = msgSuccess
	} else {
		res.Message = fmt.Sprintf("Sync completed with %d errors", n)
	}
	res.FinishedAt = e.now()

	log.Info(ctx, "sync finished",
		"success", res.Success,
		"errors", n,
		"products", res.Details.Products.Synced,
		"barcodes", res.Details.Barcodes.Synced,
		"descriptions", res.Details.Descriptions.Synced,
		"duration", res.FinishedAt.Sub(res.StartedAt),
	)
	return res
}

func bulkErr(class models.Class, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrBulkFetch, class, err)
}

func (e *Engine) syncProducts(ctx context.Context, res *Result) error {
	items, err := e.remote.FetchProducts(ctx)
	if err != nil {
		return bulkErr(models.ClassProducts, err)
	}
	cr := &res.Details.Products
	cr.Fetched = len(items)

	for _, p := range items {
		if err := e.upsertProduct(ctx, p); err != nil {
			cr.Errors++
			res.Errors = append(res.Errors, fmt.Sprintf("Product %s: %v", p.Key(), err))
			continue
		}
		cr.Synced++
	}
	return nil
}

func (e *Engine) upsertProduct(ctx context.Context, p models.Product) error {
	p.SyncStatus = models.SyncSynced
	p.LastSync = e.stamp()

	ok, err := e.local.ProductExists(ctx, p.ProductID)
	if err != nil {
		return err
	}
	if ok {
		return e.local.UpdateProduct(ctx, p)
	}
	return e.local.CreateProduct(ctx, p)
}

func (e *Engine) syncBarcodes(ctx context.Context, res *Result) error {
	items, err := e.remote.FetchBarcodes(ctx)
	if err != nil {
		return bulkErr(models.ClassBarcodes, err)
	}
	cr := &res.Details.Barcodes
	cr.Fetched = len(items)

	for _, b := range items {
		if err := e.upsertBarcode(ctx, b); err != nil {
			cr.Errors++
			res.Errors = append(res.Errors, fmt.Sprintf("Barcode %s: %v", b.Key(), err))
			continue
		}
		cr.Synced++
	}
	return nil
}

func (e *Engine) upsertBarcode(ctx context.Context, b models.ProductBarcode) error {
	b.SyncStatus = models.SyncSynced
	b.LastSync = e.stamp()

	ok, err := e.local.BarcodeExists(ctx, b.ProductID, b.Barcode)
	if err != nil {
		return err
	}
	if ok {
		return e.local.UpdateBarcode(ctx, b)
	}
	return e.local.CreateBarcode(ctx, b)
}

func (e *Engine) syncDescriptions(ctx context.Context, res *Result) error {
	items, err := e.remote.FetchDescriptions(ctx)
	if err != nil {
		return bulkErr(models.ClassDescriptions, err)
	}
	cr := &res.Details.Descriptions
	cr.Fetched = len(items)

	for _, d := range items {
		if err := e.upsertDescription(ctx, d); err != nil {
			cr.Errors++
			res.Errors = append(res.Errors, fmt.Sprintf("Description %s: %v", d.Key(), err))
			continue
		}
		cr.Synced++
	}
	return nil
}

func (e *Engine) upsertDescription(ctx context.Context, d models.ProductDescription) error {
	d.SyncStatus = models.SyncSynced
	d.LastSync = e.stamp()

	ok, err := e.local.DescriptionExists(ctx, d.ProductID, d.SiteID, d.LanguageID)
	if err != nil {
		return err
	}
	if ok {
		return e.local.UpdateDescription(ctx, d)
	}
	return e.local.CreateDescription(ctx, d)
}

func (e *Engine) stamp() *time.Time {
	t := e.now().UTC()
	return &t
}

// CheckRemoteAvailability reads all three remote collections in parallel
// and reports whether every read succeeded. Nothing is written.
func (e *Engine) CheckRemoteAvailability(ctx context.Context) bool {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := e.remote.FetchProducts(gctx)
		return err
	})
	g.Go(func() error {
		_, err := e.remote.FetchBarcodes(gctx)
		return err
	})
	g.Go(func() error {
		_, err := e.remote.FetchDescriptions(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		e.logger.Warn(ctx, "remote store unavailable", "error", err)
		return false
	}
	return true
}

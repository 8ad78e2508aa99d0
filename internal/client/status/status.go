// Package status builds the sync health summary shown by the console and
// served by the backend. The summary is a best-effort snapshot: each count
// is an independent query and a failed query counts as zero.
package status

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/posync/internal/logging"
	"github.com/dmitrijs2005/posync/internal/models"
	"golang.org/x/sync/errgroup"
)

// Counter counts local records of class in status.
type Counter interface {
	Count(ctx context.Context, class models.Class, status models.SyncStatus) (int64, error)
}

type Summary struct {
	PendingProducts     int64 `json:"pendingProducts"`
	FailedProducts      int64 `json:"failedProducts"`
	SyncedProducts      int64 `json:"syncedProducts"`
	PendingBarcodes     int64 `json:"pendingBarcodes"`
	FailedBarcodes      int64 `json:"failedBarcodes"`
	PendingDescriptions int64 `json:"pendingDescriptions"`
	FailedDescriptions  int64 `json:"failedDescriptions"`
	PendingOrders       int64 `json:"pendingOrders"`
	FailedOrders        int64 `json:"failedOrders"`
	SyncedOrders        int64 `json:"syncedOrders"`

	TotalPending int64 `json:"totalPending"`
	TotalFailed  int64 `json:"totalFailed"`
	TotalSynced  int64 `json:"totalSynced"`

	// Partial is set when at least one count could not be read.
	Partial bool `json:"partial,omitempty"`
}

// CatalogOutstanding counts the pending and failed rows of the catalog
// classes, the part of the backlog a catalog sync pass can clear.
func (s Summary) CatalogOutstanding() int64 {
	return s.PendingProducts + s.FailedProducts +
		s.PendingBarcodes + s.FailedBarcodes +
		s.PendingDescriptions + s.FailedDescriptions
}

type query struct {
	class  models.Class
	status models.SyncStatus
	dst    func(*Summary) *int64
}

var queries = []query{
	{models.ClassProducts, models.SyncPending, func(s *Summary) *int64 { return &s.PendingProducts }},
	{models.ClassProducts, models.SyncFailed, func(s *Summary) *int64 { return &s.FailedProducts }},
	{models.ClassProducts, models.SyncSynced, func(s *Summary) *int64 { return &s.SyncedProducts }},
	{models.ClassBarcodes, models.SyncPending, func(s *Summary) *int64 { return &s.PendingBarcodes }},
	{models.ClassBarcodes, models.SyncFailed, func(s *Summary) *int64 { return &s.FailedBarcodes }},
	{models.ClassDescriptions, models.SyncPending, func(s *Summary) *int64 { return &s.PendingDescriptions }},
	{models.ClassDescriptions, models.SyncFailed, func(s *Summary) *int64 { return &s.FailedDescriptions }},
	{models.ClassOrders, models.SyncPending, func(s *Summary) *int64 { return &s.PendingOrders }},
	{models.ClassOrders, models.SyncFailed, func(s *Summary) *int64 { return &s.FailedOrders }},
	{models.ClassOrders, models.SyncSynced, func(s *Summary) *int64 { return &s.SyncedOrders }},
}

type Aggregator struct {
	counter Counter
	logger  logging.Logger
	limit   int
}

func NewAggregator(c Counter, logger logging.Logger) *Aggregator {
	return &Aggregator{counter: c, logger: logger.With("component", "status"), limit: 4}
}

// Summarize runs every count and sums the totals.
func (a *Aggregator) Summarize(ctx context.Context) Summary {
	var (
		s  Summary
		mu sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.limit)
	for _, q := range queries {
		g.Go(func() error {
			n, err := a.counter.Count(gctx, q.class, q.status)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				a.logger.Debug(ctx, "count failed", "class", string(q.class), "status", string(q.status), "error", err)
				s.Partial = true
				return nil
			}
			*q.dst(&s) = n
			return nil
		})
	}
	_ = g.Wait()

	s.TotalPending = s.PendingProducts + s.PendingBarcodes + s.PendingDescriptions + s.PendingOrders
	s.TotalFailed = s.FailedProducts + s.FailedBarcodes + s.FailedDescriptions + s.FailedOrders
	s.TotalSynced = s.SyncedProducts + s.SyncedOrders
	return s
}

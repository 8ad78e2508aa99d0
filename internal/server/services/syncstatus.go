package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/posync/internal/models"
	"github.com/dmitrijs2005/posync/internal/server/repositories/local"
)

// SyncSummary is the per-class status breakdown of the local store.
type SyncSummary struct {
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
	TotalPending        int64 `json:"totalPending"`
	TotalFailed         int64 `json:"totalFailed"`
	TotalSynced         int64 `json:"totalSynced"`
}

type SyncStatusService struct {
	counters map[models.Class]local.Counter
}

func NewSyncStatusService(products, barcodes, descriptions, orders local.Counter) *SyncStatusService {
	return &SyncStatusService{counters: map[models.Class]local.Counter{
		models.ClassProducts:     products,
		models.ClassBarcodes:     barcodes,
		models.ClassDescriptions: descriptions,
		models.ClassOrders:       orders,
	}}
}

func (s *SyncStatusService) count(ctx context.Context, class models.Class, status models.SyncStatus) (int64, error) {
	n, err := s.counters[class].CountByStatus(ctx, status)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s %s: %w", status, class, err)
	}
	return n, nil
}

// Count returns how many records of class are in status.
func (s *SyncStatusService) Count(ctx context.Context, class models.Class, status models.SyncStatus) (int64, error) {
	if _, ok := s.counters[class]; !ok {
		return 0, fmt.Errorf("unknown class %q", class)
	}
	return s.count(ctx, class, status)
}

// Summary counts every class. The first failing count aborts it.
func (s *SyncStatusService) Summary(ctx context.Context) (*SyncSummary, error) {
	sum := &SyncSummary{}
	targets := []struct {
		class  models.Class
		status models.SyncStatus
		dst    *int64
	}{
		{models.ClassProducts, models.SyncPending, &sum.PendingProducts},
		{models.ClassProducts, models.SyncFailed, &sum.FailedProducts},
		{models.ClassProducts, models.SyncSynced, &sum.SyncedProducts},
		{models.ClassBarcodes, models.SyncPending, &sum.PendingBarcodes},
		{models.ClassBarcodes, models.SyncFailed, &sum.FailedBarcodes},
		{models.ClassDescriptions, models.SyncPending, &sum.PendingDescriptions},
		{models.ClassDescriptions, models.SyncFailed, &sum.FailedDescriptions},
		{models.ClassOrders, models.SyncPending, &sum.PendingOrders},
		{models.ClassOrders, models.SyncFailed, &sum.FailedOrders},
		{models.ClassOrders, models.SyncSynced, &sum.SyncedOrders},
	}
	for _, t := range targets {
		n, err := s.count(ctx, t.class, t.status)
		if err != nil {
			return nil, err
		}
		*t.dst = n
	}

	sum.TotalPending = sum.PendingProducts + sum.PendingBarcodes + sum.PendingDescriptions + sum.PendingOrders
	sum.TotalFailed = sum.FailedProducts + sum.FailedBarcodes + sum.FailedDescriptions + sum.FailedOrders
	sum.TotalSynced = sum.SyncedProducts + sum.SyncedOrders
	return sum, nil
}

// PendingCount is the number of records still waiting to be synced.
func (s *SyncStatusService) PendingCount(ctx context.Context) (int64, error) {
	var total int64
	for _, class := range []models.Class{models.ClassProducts, models.ClassBarcodes, models.ClassDescriptions, models.ClassOrders} {
		n, err := s.count(ctx, class, models.SyncPending)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

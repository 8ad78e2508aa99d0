package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/posync/internal/common"
	"github.com/dmitrijs2005/posync/internal/logging"
	"github.com/dmitrijs2005/posync/internal/models"
	"github.com/dmitrijs2005/posync/internal/server/repositories/local"
	"github.com/dmitrijs2005/posync/internal/server/repositories/remote"
)

// OrderPushResult reports one push of locally captured orders.
type OrderPushResult struct {
	Message string   `json:"message"`
	Pushed  int      `json:"pushed"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// OrderSyncService pushes orders taken while offline to the remote store.
// Each order moves PENDING (or FAILED) -> SYNCING -> SYNCED or FAILED.
type OrderSyncService struct {
	orders local.OrderRepository
	remote remote.OrderWriter
	logger logging.Logger

	mu sync.Mutex
}

// NewOrderSyncService returns a service that fails every push with
// common.ErrorRemoteDisabled when w is nil.
func NewOrderSyncService(orders local.OrderRepository, w remote.OrderWriter, logger logging.Logger) *OrderSyncService {
	return &OrderSyncService{
		orders: orders,
		remote: w,
		logger: logger.With("module", "order_sync"),
	}
}

// pushable lists the states picked up by a push. SYNCING rows are leftovers
// of an interrupted push since pushes never overlap.
var pushable = []models.SyncStatus{models.SyncPending, models.SyncFailed, models.SyncSyncing}

// Push sends every outstanding order upstream. A failing order is marked
// FAILED and does not stop the others.
func (s *OrderSyncService) Push(ctx context.Context) (*OrderPushResult, error) {
	if s.remote == nil {
		return nil, common.ErrorRemoteDisabled
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.remote.Ping(ctx); err != nil {
		s.logger.Warn(ctx, "remote store unreachable, orders left pending", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrorRemoteUnavailable, err)
	}

	var queue []models.Order
	for _, st := range pushable {
		batch, err := s.orders.List(ctx, st)
		if err != nil {
			return nil, err
		}
		queue = append(queue, batch...)
	}

	res := &OrderPushResult{}
	for _, o := range queue {
		if err := s.pushOne(ctx, o); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("Order %s: %v", o.OrderNumber, err))
			s.logger.Warn(ctx, "order push failed", "order", o.OrderNumber, "error", err)
			continue
		}
		res.Pushed++
	}

	res.Message = "Sync completed successfully"
	if res.Failed > 0 {
		res.Message = fmt.Sprintf("Sync completed with %d errors", res.Failed)
	}
	s.logger.Info(ctx, "order push finished", "pushed", res.Pushed, "failed", res.Failed)
	return res, nil
}

func (s *OrderSyncService) pushOne(ctx context.Context, o models.Order) error {
	if err := s.orders.SetSyncStatus(ctx, o.ID, models.SyncSyncing); err != nil {
		return err
	}

	remoteID, err := s.send(ctx, o)
	if err == nil {
		err = s.orders.MarkSynced(ctx, o.ID, remoteID)
	}
	if err != nil {
		if serr := s.orders.SetSyncStatus(ctx, o.ID, models.SyncFailed); serr != nil {
			s.logger.Error(ctx, "failed to mark order as failed", "order", o.OrderNumber, "error", serr)
		}
		return err
	}
	return nil
}

func (s *OrderSyncService) send(ctx context.Context, o models.Order) (int64, error) {
	if o.RemoteID == nil {
		return s.remote.CreateOrder(ctx, o)
	}
	if err := s.remote.UpdateOrder(ctx, *o.RemoteID, o); err != nil {
		return 0, err
	}
	return *o.RemoteID, nil
}

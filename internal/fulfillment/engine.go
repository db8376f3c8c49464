package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"webshop-service/internal/models"
	"webshop-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderStore is the order storage contract the engine consumes. Put has
// full-record replace semantics and returns the authoritative persisted
// record, which the engine relays to its own caller.
type OrderStore interface {
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	PutOrder(ctx context.Context, id int64, order *models.Order) (*models.Order, error)
}

// EventPublisher publishes fulfillment events.
type EventPublisher interface {
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
	PublishOrderFlagged(ctx context.Context, event *models.OrderFlaggedEvent) error
}

// DistLocker serializes transitions for one order across service
// instances. The redis client implements it.
type DistLocker interface {
	AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, lockKey string) error
}

// Engine moves orders through their status lifecycle and keeps article
// stock consistent with which orders have been accepted, rejected or
// finished.
type Engine struct {
	orders    OrderStore
	adjuster  *StockAdjuster
	publisher EventPublisher
	locker    DistLocker
	lockTTL   time.Duration
	locks     *keyedMutex
	logger    *zap.Logger
}

// NewEngine creates a new fulfillment engine. publisher and locker may be
// nil; without a locker, transitions are still serialized per order within
// this process.
func NewEngine(orders OrderStore, adjuster *StockAdjuster, publisher EventPublisher, locker DistLocker, lockTTL time.Duration) *Engine {
	return &Engine{
		orders:    orders,
		adjuster:  adjuster,
		publisher: publisher,
		locker:    locker,
		lockTTL:   lockTTL,
		locks:     newKeyedMutex(),
		logger:    util.GetLogger(),
	}
}

// Transition moves one order to the requested status.
//
// Under a per-order lock it re-reads the order, checks the transition
// guard against the stored status, builds the quantity ledger from the
// item list, applies the stock deltas the edge calls for in ascending
// article order, then persists the order with the new status and a fresh
// processed_at. The store's authoritative record is returned.
//
// On InsufficientStockError the remaining adjustments and the order write
// are skipped; deltas already applied are reported in the error but not
// rolled back, matching the behavior this service replaced.
func (e *Engine) Transition(ctx context.Context, orderID int64, requested models.Status) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "Engine.Transition")
	defer span.End()

	start := time.Now()
	defer func() {
		util.TransitionLatency.Observe(time.Since(start).Seconds())
	}()

	unlock := e.locks.Lock(orderID)
	defer unlock()

	if e.locker != nil {
		release, err := e.acquireDistLock(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if release != nil {
			defer release()
		}
	}

	order, err := e.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		util.TransitionsFailedTotal.WithLabelValues("store_error").Inc()
		return nil, &StoreError{Op: "get order", Err: err}
	}

	// Guard against the stored status, not the caller's possibly stale copy.
	if !requested.Valid() || !TransitionAllowed(order.Status, requested) {
		util.TransitionsFailedTotal.WithLabelValues("invalid_transition").Inc()
		return nil, &InvalidTransitionError{OrderID: orderID, From: order.Status, To: requested}
	}

	ledger := BuildLedger(order.Items)
	malformed := order.Items.Kind == models.ItemsMalformed
	if malformed {
		util.MalformedOrdersTotal.Inc()
		e.logger.Warn("Order item list matched no recognized shape, proceeding with empty ledger",
			zap.Int64("order_id", orderID))
		e.publishFlagged(ctx, orderID, "item list matched no recognized shape")
	}

	applied := make([]models.StockDelta, 0)
	for _, d := range effectDeltas(order.Status, requested, ledger) {
		if _, err := e.adjuster.Adjust(ctx, d.ArticleID, d.Delta); err != nil {
			e.recordAbort(orderID, applied)

			var insufficient *InsufficientStockError
			if errors.As(err, &insufficient) {
				util.TransitionsFailedTotal.WithLabelValues("insufficient_stock").Inc()
				insufficient.Applied = applied
				return nil, insufficient
			}

			var storeErr *StoreError
			if errors.As(err, &storeErr) {
				util.TransitionsFailedTotal.WithLabelValues("store_error").Inc()
				storeErr.Applied = applied
				return nil, storeErr
			}
			return nil, err
		}
		applied = append(applied, d)
	}

	from := order.Status
	now := time.Now()
	order.Status = requested
	order.ProcessedAt = &now
	if !malformed {
		// Persist the flattened representation derived from the ledger.
		// A malformed list is kept as received so operators can inspect it.
		order.Items = ledger.EncodeItems()
	}

	updated, err := e.orders.PutOrder(ctx, orderID, order)
	if err != nil {
		e.recordAbort(orderID, applied)
		util.TransitionsFailedTotal.WithLabelValues("store_error").Inc()
		return nil, &StoreError{Op: "put order", Err: err, Applied: applied}
	}

	util.TransitionsTotal.WithLabelValues(string(from), string(requested)).Inc()
	e.logger.Info("Order transitioned",
		zap.Int64("order_id", orderID),
		zap.String("from", string(from)),
		zap.String("to", string(requested)),
		zap.Int("stock_adjustments", len(applied)))

	e.publishStatusChanged(ctx, updated.ID, from, requested, applied)

	return updated, nil
}

// effectDeltas derives the stock effect set for one guard-approved edge.
// Moving into Accepted consumes the ledger quantities; leaving Accepted
// for Rejected restores them; the remaining edges touch no stock.
func effectDeltas(from, to models.Status, ledger Ledger) []models.StockDelta {
	var sign int
	switch {
	case to == models.StatusAccepted:
		sign = -1
	case from == models.StatusAccepted && to == models.StatusRejected:
		sign = 1
	default:
		return nil
	}

	deltas := make([]models.StockDelta, 0, len(ledger))
	for _, id := range ledger.ArticleIDs() {
		deltas = append(deltas, models.StockDelta{ArticleID: id, Delta: sign * ledger[id]})
	}
	return deltas
}

func (e *Engine) acquireDistLock(ctx context.Context, orderID int64) (func(), error) {
	key := fmt.Sprintf("order-transition:%d", orderID)

	ok, err := e.locker.AcquireLock(ctx, key, e.lockTTL)
	if err != nil {
		e.logger.Warn("Distributed lock unavailable, relying on local serialization",
			zap.Int64("order_id", orderID),
			zap.Error(err))
		return nil, nil
	}
	if !ok {
		util.TransitionsFailedTotal.WithLabelValues("lock_contention").Inc()
		return nil, ErrTransitionInFlight
	}

	return func() {
		if err := e.locker.ReleaseLock(context.Background(), key); err != nil {
			e.logger.Error("Failed to release transition lock",
				zap.Int64("order_id", orderID),
				zap.Error(err))
		}
	}, nil
}

// recordAbort surfaces a transition that stopped after some stock deltas
// were already written. The deltas stay applied; operators compensate from
// the logged list if needed.
func (e *Engine) recordAbort(orderID int64, applied []models.StockDelta) {
	if len(applied) == 0 {
		return
	}
	util.TransitionPartialAbortsTotal.Inc()
	e.logger.Warn("Transition aborted after stock adjustments were applied, deltas not rolled back",
		zap.Int64("order_id", orderID),
		zap.Any("applied", applied))
}

func (e *Engine) publishStatusChanged(ctx context.Context, orderID int64, from, to models.Status, deltas []models.StockDelta) {
	if e.publisher == nil {
		return
	}

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
		Deltas:     deltas,
	}

	if err := e.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
		e.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}
}

func (e *Engine) publishFlagged(ctx context.Context, orderID int64, reason string) {
	if e.publisher == nil {
		return
	}

	event := &models.OrderFlaggedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderFlagged,
			Timestamp: time.Now(),
		},
		OrderID: orderID,
		Reason:  reason,
	}

	if err := e.publisher.PublishOrderFlagged(ctx, event); err != nil {
		e.logger.Error("Failed to publish OrderFlagged event", zap.Error(err))
	}
}

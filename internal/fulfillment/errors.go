package fulfillment

import (
	"errors"
	"fmt"

	"webshop-service/internal/models"
)

// ErrTransitionInFlight is returned when another transition already holds
// the lock for the same order.
var ErrTransitionInFlight = errors.New("another transition is in progress for this order")

// InvalidTransitionError is returned when the requested status is not
// reachable from the order's current status. No side effects occurred.
type InvalidTransitionError struct {
	OrderID int64
	From    models.Status
	To      models.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %d: transition %s -> %s is not allowed", e.OrderID, e.From, e.To)
}

// InsufficientStockError is returned when an adjustment would drive an
// article's quantity negative. The article record was not written.
//
// Applied lists the deltas the current transition had already applied to
// other articles before the abort; those are not rolled back, callers that
// want compensation can replay them inverted.
type InsufficientStockError struct {
	ArticleID int64
	Requested int
	Available int
	Applied   []models.StockDelta
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for article %d: requested %d, available %d",
		e.ArticleID, e.Requested, e.Available)
}

// Shortfall is the number of units the article is short by.
func (e *InsufficientStockError) Shortfall() int {
	return e.Requested - e.Available
}

// StoreError wraps a failed read or write against the article or order
// store. If Applied is non-empty, stock deltas were written before the
// failure and the order itself was not persisted; the caller should
// re-fetch the order to observe the true state.
type StoreError struct {
	Op      string
	Err     error
	Applied []models.StockDelta
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

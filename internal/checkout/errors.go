package checkout

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrEmptyCart fires in Validating, before the ledger is touched.
	ErrEmptyCart = errors.New("cart is empty, nothing to checkout")
	// ErrCheckoutInProgress means another invocation already owns this
	// cart; callers retry later instead of blocking.
	ErrCheckoutInProgress = errors.New("checkout already in progress for this cart")
	// ErrAttemptRolledBack is returned when an idempotency key replays an
	// attempt that already failed.
	ErrAttemptRolledBack = errors.New("checkout attempt was rolled back")
)

// PriceChangedError reports a product whose catalog price drifted from the
// cart's snapshot while the policy is PriceFail.
type PriceChangedError struct {
	ProductID     uuid.UUID
	SnapshotCents int64
	CurrentCents  int64
}

func (e *PriceChangedError) Error() string {
	return fmt.Sprintf("price changed for product %s: snapshot %d, current %d",
		e.ProductID, e.SnapshotCents, e.CurrentCents)
}

// TransactionError marks a failure inside the commit step. The attempt
// stays in its committing state for recovery; it is never retried blindly.
type TransactionError struct {
	AttemptID uuid.UUID
	Err       error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("checkout commit failed for attempt %s: %v", e.AttemptID, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

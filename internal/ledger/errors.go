package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrReservationNotFound = errors.New("reservation not found")
	// ErrReservationReleased fires when a commit lands on a token that was
	// already rolled back; the stock it covered is gone.
	ErrReservationReleased = errors.New("reservation already released")
)

// InsufficientStockError reports which product could not cover the
// requested quantity, so checkout failures name the offending product.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// IsInsufficientStock unwraps err into an InsufficientStockError if one is
// in the chain.
func IsInsufficientStock(err error) (*InsufficientStockError, bool) {
	var ise *InsufficientStockError
	if errors.As(err, &ise) {
		return ise, true
	}
	return nil, false
}

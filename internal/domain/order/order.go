package order

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFulfilled Status = "fulfilled"
	StatusCancelled Status = "cancelled"
)

// CanTransition encodes the only legal status moves:
// pending -> confirmed -> fulfilled, or pending -> cancelled.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusFulfilled
	default:
		return false
	}
}

// Order is immutable once created: items and total are written in the
// checkout commit transaction and never touched again; only Status moves.
type Order struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null;column:user_id" json:"user_id"`

	TotalCents int64  `gorm:"not null;column:total_cents" json:"total_cents"`
	Status     Status `gorm:"not null;default:'pending';column:status" json:"status"`

	// CheckoutAttemptID dedupes the commit transaction: replaying an
	// interrupted commit finds the order it already created.
	CheckoutAttemptID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;column:checkout_attempt_id" json:"checkout_attempt_id"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Order) TableName() string { return "order" }

type OrderItem struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrderID        uuid.UUID `gorm:"type:uuid;index;not null;column:order_id" json:"order_id"`
	ProductID      uuid.UUID `gorm:"type:uuid;index;not null;column:product_id" json:"product_id"`
	Quantity       int64     `gorm:"not null;column:quantity" json:"quantity"`
	UnitPriceCents int64     `gorm:"not null;column:unit_price_cents" json:"unit_price_cents"`
	SubtotalCents  int64     `gorm:"not null;column:subtotal_cents" json:"subtotal_cents"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (OrderItem) TableName() string { return "order_item" }

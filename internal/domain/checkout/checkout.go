package checkout

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ReservationStatus string

const (
	ReservationReserved  ReservationStatus = "reserved"
	ReservationCommitted ReservationStatus = "committed"
	ReservationReleased  ReservationStatus = "released"
)

// StockReservation is the durable form of a reservation token. The row ID
// is the token handed back by the ledger.
type StockReservation struct {
	ID        uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProductID uuid.UUID         `gorm:"type:uuid;index;not null;column:product_id" json:"product_id"`
	AttemptID uuid.UUID         `gorm:"type:uuid;index;not null;column:attempt_id" json:"attempt_id"`
	Quantity  int64             `gorm:"not null;column:quantity" json:"quantity"`
	Status    ReservationStatus `gorm:"not null;default:'reserved';column:status" json:"status"`
	ExpiresAt time.Time         `gorm:"not null;index;column:expires_at" json:"expires_at"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (StockReservation) TableName() string { return "stock_reservation" }

type AttemptStatus string

const (
	AttemptValidating AttemptStatus = "validating"
	AttemptReserving  AttemptStatus = "reserving"
	AttemptCommitting AttemptStatus = "committing"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptRolledBack AttemptStatus = "rolled_back"
)

// Terminal reports whether an attempt can never move again.
func (s AttemptStatus) Terminal() bool {
	return s == AttemptCompleted || s == AttemptRolledBack
}

// CheckoutAttempt is the durable intent log for one checkout invocation.
// Snapshot holds the validated cart lines so an interrupted commit can be
// replayed without re-reading the (already cleared or mutated) cart.
type CheckoutAttempt struct {
	ID             uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CartID         uuid.UUID     `gorm:"type:uuid;index;not null;column:cart_id" json:"cart_id"`
	UserID         uuid.UUID     `gorm:"type:uuid;index;not null;column:user_id" json:"user_id"`
	IdempotencyKey string        `gorm:"uniqueIndex;not null;column:idempotency_key" json:"idempotency_key"`
	Status         AttemptStatus `gorm:"not null;default:'validating';column:status" json:"status"`
	OrderID        *uuid.UUID    `gorm:"type:uuid;column:order_id" json:"order_id,omitempty"`

	Snapshot  datatypes.JSON `gorm:"column:snapshot" json:"snapshot,omitempty"`
	LastError string         `gorm:"column:last_error" json:"last_error,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (CheckoutAttempt) TableName() string { return "checkout_attempt" }

// SnapshotLine is one validated cart line frozen into the attempt record.
type SnapshotLine struct {
	ProductID      uuid.UUID `json:"product_id"`
	Quantity       int64     `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
}

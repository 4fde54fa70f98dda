package cart

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the one mutable aggregate: a user owns at most one active cart,
// and its items are merged by product.
type Cart struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;column:user_id" json:"user_id"`

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Cart) TableName() string { return "cart" }

// CartItem keeps the unit price captured when the product was added; the
// coordinator decides at checkout whether a drifted price fails the attempt
// or is re-snapshotted.
type CartItem struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CartID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_product;column:cart_id" json:"cart_id"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_product;column:product_id" json:"product_id"`
	Quantity       int64     `gorm:"not null;column:quantity" json:"quantity"`
	UnitPriceCents int64     `gorm:"not null;column:unit_price_cents" json:"unit_price_cents"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (CartItem) TableName() string { return "cart_item" }

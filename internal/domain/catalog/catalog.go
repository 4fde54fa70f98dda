package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	Description string    `gorm:"column:description" json:"description"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Category) TableName() string { return "category" }

// Product carries its stock counters inline. StockAvailable and
// StockReserved are written only by the ledger, under a row lock.
type Product struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string     `gorm:"not null;column:name" json:"name"`
	Description string     `gorm:"column:description" json:"description"`
	PriceCents  int64      `gorm:"not null;column:price_cents" json:"price_cents"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index;column:category_id" json:"category_id,omitempty"`

	StockAvailable int64 `gorm:"not null;default:0;column:stock_available" json:"stock_available"`
	StockReserved  int64 `gorm:"not null;default:0;column:stock_reserved" json:"stock_reserved"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Product) TableName() string { return "product" }

package db

import (
	"gorm.io/gorm"

	types "github.com/yungbote/storefront-backend/internal/domain"
)

func (s *PostgresService) AutoMigrateAll() error {
	return AutoMigrateAll(s.db)
}

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.User{},

		&types.Category{},
		&types.Product{},

		&types.Cart{},
		&types.CartItem{},

		&types.Order{},
		&types.OrderItem{},

		&types.Review{},

		&types.StockReservation{},
		&types.CheckoutAttempt{},
	)
}

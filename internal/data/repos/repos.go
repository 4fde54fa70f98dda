package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/repos/cart"
	"github.com/yungbote/storefront-backend/internal/data/repos/catalog"
	"github.com/yungbote/storefront-backend/internal/data/repos/checkout"
	"github.com/yungbote/storefront-backend/internal/data/repos/order"
	"github.com/yungbote/storefront-backend/internal/data/repos/review"
	"github.com/yungbote/storefront-backend/internal/data/repos/user"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type CategoryRepo = catalog.CategoryRepo
type ProductRepo = catalog.ProductRepo
type ProductFilter = catalog.ProductFilter

type CartRepo = cart.CartRepo

type OrderRepo = order.OrderRepo

type ReviewRepo = review.ReviewRepo

type AttemptRepo = checkout.AttemptRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return catalog.NewCategoryRepo(db, baseLog)
}
func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return catalog.NewProductRepo(db, baseLog)
}

func NewCartRepo(db *gorm.DB, baseLog *logger.Logger) CartRepo { return cart.NewCartRepo(db, baseLog) }

func NewOrderRepo(db *gorm.DB, baseLog *logger.Logger) OrderRepo {
	return order.NewOrderRepo(db, baseLog)
}

func NewReviewRepo(db *gorm.DB, baseLog *logger.Logger) ReviewRepo {
	return review.NewReviewRepo(db, baseLog)
}

func NewAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AttemptRepo {
	return checkout.NewAttemptRepo(db, baseLog)
}

package app

import (
	"github.com/yungbote/storefront-backend/internal/http/handlers"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type Handlers struct {
	User     *handlers.UserHandler
	Catalog  *handlers.CatalogHandler
	Cart     *handlers.CartHandler
	Order    *handlers.OrderHandler
	Review   *handlers.ReviewHandler
	Checkout *handlers.CheckoutHandler
}

func wireHandlers(log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		User:     handlers.NewUserHandler(log, s.User),
		Catalog:  handlers.NewCatalogHandler(log, s.Catalog),
		Cart:     handlers.NewCartHandler(log, s.Cart),
		Order:    handlers.NewOrderHandler(log, s.Order),
		Review:   handlers.NewReviewHandler(log, s.Review),
		Checkout: handlers.NewCheckoutHandler(log, s.Checkout),
	}
}

package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/checkout"
	"github.com/yungbote/storefront-backend/internal/checkout/cartlock"
	"github.com/yungbote/storefront-backend/internal/ledger"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/services"
)

type Services struct {
	User     services.UserService
	Catalog  services.CatalogService
	Cart     services.CartService
	Order    services.OrderService
	Review   services.ReviewService
	Checkout services.CheckoutService

	// Recovery re-drives interrupted checkout attempts; started by App.Start.
	Recovery *checkout.Recovery
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) (Services, error) {
	log.Info("Wiring services...")

	stock := ledger.NewStockLedger(db, log, cfg.ReservationTTL)

	var guard cartlock.Guard
	if cfg.RedisAddr != "" {
		redisGuard, err := cartlock.NewRedisGuard(log, cfg.ReservationTTL)
		if err != nil {
			return Services{}, err
		}
		guard = redisGuard
	} else {
		guard = cartlock.NewMemoryGuard()
	}

	deps := checkout.Deps{
		Runner:   checkout.NewGormTxRunner(db),
		Carts:    r.Cart,
		Products: r.Product,
		Orders:   r.Order,
		Attempts: r.Attempt,
		Stock:    stock,
		Guard:    guard,
	}
	coordinator := checkout.NewCoordinator(deps, log, checkout.Config{PricePolicy: cfg.PricePolicy})
	recovery := checkout.NewRecovery(deps, log, cfg.RecoverAfter, cfg.SweepBatchSize)

	return Services{
		User:     services.NewUserService(log, r.User),
		Catalog:  services.NewCatalogService(log, r.Category, r.Product),
		Cart:     services.NewCartService(log, r.Cart, r.Product),
		Order:    services.NewOrderService(log, r.Order),
		Review:   services.NewReviewService(log, r.Review, r.User, r.Product),
		Checkout: services.NewCheckoutService(log, coordinator),
		Recovery: recovery,
	}, nil
}

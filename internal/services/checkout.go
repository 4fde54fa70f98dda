package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/checkout"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

// CheckoutService is a thin forwarding layer; the coordinator owns the
// state machine.
type CheckoutService interface {
	Checkout(ctx context.Context, userID, cartID uuid.UUID, idempotencyKey string) (*checkout.Result, error)
}

type checkoutService struct {
	log         *logger.Logger
	coordinator *checkout.Coordinator
}

func NewCheckoutService(log *logger.Logger, coordinator *checkout.Coordinator) CheckoutService {
	return &checkoutService{
		log:         log.With("service", "CheckoutService"),
		coordinator: coordinator,
	}
}

func (s *checkoutService) Checkout(ctx context.Context, userID, cartID uuid.UUID, idempotencyKey string) (*checkout.Result, error) {
	return s.coordinator.Checkout(ctx, userID, cartID, idempotencyKey)
}

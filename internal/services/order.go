package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/repos"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type OrderService interface {
	GetOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*types.Order, error)
	ListUserOrders(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Order, error)
	Confirm(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
	Fulfill(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
	Cancel(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
}

type orderService struct {
	log       *logger.Logger
	orderRepo repos.OrderRepo
}

func NewOrderService(log *logger.Logger, orderRepo repos.OrderRepo) OrderService {
	return &orderService{
		log:       log.With("service", "OrderService"),
		orderRepo: orderRepo,
	}
}

func (s *orderService) GetOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*types.Order, error) {
	return s.orderRepo.GetWithItems(ctx, tx, orderID)
}

func (s *orderService) ListUserOrders(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Order, error) {
	return s.orderRepo.ListByUserIDs(ctx, tx, []uuid.UUID{userID})
}

func (s *orderService) Confirm(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	return s.orderRepo.UpdateStatus(ctx, tx, orderID, types.OrderConfirmed)
}

func (s *orderService) Fulfill(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	return s.orderRepo.UpdateStatus(ctx, tx, orderID, types.OrderFulfilled)
}

func (s *orderService) Cancel(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	return s.orderRepo.UpdateStatus(ctx, tx, orderID, types.OrderCancelled)
}

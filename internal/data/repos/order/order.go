package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/storefront-backend/internal/domain"
	orderdomain "github.com/yungbote/storefront-backend/internal/domain/order"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/platform/pgutil"
)

var ErrIllegalTransition = errors.New("illegal order status transition")

type OrderRepo interface {
	// CreateWithItems persists the order and its items in one transaction.
	// Subtotals and the total are recomputed and checked here so drift
	// can never be written.
	CreateWithItems(ctx context.Context, tx *gorm.DB, order *types.Order) (*types.Order, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, orderIDs []uuid.UUID) ([]*types.Order, error)
	GetWithItems(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*types.Order, error)
	GetByAttemptID(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) (*types.Order, error)
	ListByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.Order, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, to types.OrderStatus) error
}

type orderRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrderRepo(db *gorm.DB, baseLog *logger.Logger) OrderRepo {
	repoLog := baseLog.With("repo", "OrderRepo")
	return &orderRepo{db: db, log: repoLog}
}

func (r *orderRepo) CreateWithItems(ctx context.Context, tx *gorm.DB, o *types.Order) (*types.Order, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if o == nil || len(o.Items) == 0 {
		return nil, types.ErrValidation
	}

	var total int64
	for i := range o.Items {
		it := &o.Items[i]
		if it.Quantity <= 0 || it.UnitPriceCents < 0 {
			return nil, types.ErrValidation
		}
		it.SubtotalCents = it.Quantity * it.UnitPriceCents
		total += it.SubtotalCents
	}
	o.TotalCents = total
	if o.Status == "" {
		o.Status = types.OrderPending
	}

	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		return txx.Create(o).Error
	})
	if err != nil {
		return nil, pgutil.Translate(err)
	}
	return o, nil
}

func (r *orderRepo) GetByIDs(ctx context.Context, tx *gorm.DB, orderIDs []uuid.UUID) ([]*types.Order, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Order
	if len(orderIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", orderIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *orderRepo) GetWithItems(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*types.Order, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Order
	if err := transaction.WithContext(ctx).
		Preload("Items").
		Where("id = ?", orderID).
		First(&result).Error; err != nil {
		return nil, pgutil.Translate(err)
	}
	return &result, nil
}

func (r *orderRepo) GetByAttemptID(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) (*types.Order, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Order
	err := transaction.WithContext(ctx).
		Preload("Items").
		Where("checkout_attempt_id = ?", attemptID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *orderRepo) ListByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.Order, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Order
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Preload("Items").
		Where("user_id IN ?", userIDs).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, to types.OrderStatus) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		var current types.Order
		if err := txx.Select("id", "status").
			Where("id = ?", orderID).
			First(&current).Error; err != nil {
			return pgutil.Translate(err)
		}
		if !orderdomain.CanTransition(current.Status, to) {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current.Status, to)
		}
		return txx.Model(&types.Order{}).
			Where("id = ? AND status = ?", orderID, current.Status).
			Update("status", to).Error
	})
}

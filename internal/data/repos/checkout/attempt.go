package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/platform/pgutil"
)

type AttemptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *types.CheckoutAttempt) (*types.CheckoutAttempt, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, attemptIDs []uuid.UUID) ([]*types.CheckoutAttempt, error)
	GetByIdempotencyKey(ctx context.Context, tx *gorm.DB, key string) (*types.CheckoutAttempt, error)
	// Advance moves the attempt to a new status only if it currently sits
	// in one of the allowed statuses; reports whether the move happened.
	Advance(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID, from []types.AttemptStatus, to types.AttemptStatus, updates map[string]any) (bool, error)
	HasActiveForCart(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) (bool, error)
	// ListStuck returns non-terminal attempts untouched since the cutoff,
	// oldest first. Recovery feeds on this.
	ListStuck(ctx context.Context, tx *gorm.DB, cutoff time.Time, limit int) ([]*types.CheckoutAttempt, error)
}

type attemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AttemptRepo {
	return &attemptRepo{
		db:  db,
		log: baseLog.With("repo", "AttemptRepo"),
	}
}

func (r *attemptRepo) Create(ctx context.Context, tx *gorm.DB, attempt *types.CheckoutAttempt) (*types.CheckoutAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if attempt == nil || attempt.IdempotencyKey == "" {
		return nil, types.ErrValidation
	}
	if err := transaction.WithContext(ctx).Create(attempt).Error; err != nil {
		return nil, pgutil.Translate(err)
	}
	return attempt, nil
}

func (r *attemptRepo) GetByIDs(ctx context.Context, tx *gorm.DB, attemptIDs []uuid.UUID) ([]*types.CheckoutAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.CheckoutAttempt
	if len(attemptIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", attemptIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *attemptRepo) GetByIdempotencyKey(ctx context.Context, tx *gorm.DB, key string) (*types.CheckoutAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var attempt types.CheckoutAttempt
	err := transaction.WithContext(ctx).
		Where("idempotency_key = ?", key).
		First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepo) Advance(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID, from []types.AttemptStatus, to types.AttemptStatus, updates map[string]any) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	fields := map[string]any{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range updates {
		fields[k] = v
	}

	q := transaction.WithContext(ctx).
		Model(&types.CheckoutAttempt{}).
		Where("id = ?", attemptID)
	if len(from) > 0 {
		q = q.Where("status IN ?", from)
	}
	res := q.Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *attemptRepo) HasActiveForCart(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.CheckoutAttempt{}).
		Where("cart_id = ? AND status IN ?", cartID, []types.AttemptStatus{
			types.AttemptValidating,
			types.AttemptReserving,
			types.AttemptCommitting,
		}).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *attemptRepo) ListStuck(ctx context.Context, tx *gorm.DB, cutoff time.Time, limit int) ([]*types.CheckoutAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.CheckoutAttempt
	q := transaction.WithContext(ctx).
		Where("status IN ?", []types.AttemptStatus{
			types.AttemptValidating,
			types.AttemptReserving,
			types.AttemptCommitting,
		}).
		Where("updated_at < ?", cutoff).
		Order("updated_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

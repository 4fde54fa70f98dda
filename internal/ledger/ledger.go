package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

const DefaultReservationTTL = 5 * time.Minute

// StockLedger owns the stock columns on the product row. Nothing else in
// the codebase writes them.
//
// Concurrency contract: reserve/commit/release for one product serialize
// on the product's row lock; operations on different products do not
// contend. Callers that touch several products in one logical operation
// must order their calls by ascending product ID.
type StockLedger interface {
	// Reserve atomically checks availability and sets stock aside. On
	// success the returned reservation's ID is the token for Commit and
	// Release. On InsufficientStockError nothing changed.
	Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, quantity int64, attemptID uuid.UUID) (*types.StockReservation, error)
	// Commit makes the stock reduction permanent. Committing a committed
	// token is a no-op; committing a released token is an error.
	Commit(ctx context.Context, tx *gorm.DB, tokenID uuid.UUID) error
	// Release returns reserved stock to the available pool. Releasing a
	// released or committed token is a no-op.
	Release(ctx context.Context, tx *gorm.DB, tokenID uuid.UUID) error
	// ReleaseByAttempt rolls back every still-reserved token of one
	// checkout attempt; recovery uses it.
	ReleaseByAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) (int, error)
	// CommitByAttempt finalizes every still-reserved token of one checkout
	// attempt. Replaying an already-committed attempt is a no-op, which is
	// what makes commit recovery idempotent.
	CommitByAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) (int, error)
	// ListByAttempt returns every reservation row of one attempt in any
	// status. Recovery uses it to check that a replayed commit is still
	// backed by stock.
	ListByAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) ([]*types.StockReservation, error)
	// ReleaseExpired sweeps reservations past their TTL back into the
	// available pool and reports how many it released. Reservations whose
	// attempt is mid-commit are left alone: recovery owns those and will
	// either commit or release them by attempt.
	ReleaseExpired(ctx context.Context, tx *gorm.DB) (int, error)
}

type stockLedger struct {
	db  *gorm.DB
	log *logger.Logger
	ttl time.Duration
}

func NewStockLedger(db *gorm.DB, baseLog *logger.Logger, ttl time.Duration) StockLedger {
	if ttl <= 0 {
		ttl = DefaultReservationTTL
	}
	return &stockLedger{
		db:  db,
		log: baseLog.With("component", "StockLedger"),
		ttl: ttl,
	}
}

func (l *stockLedger) Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, quantity int64, attemptID uuid.UUID) (*types.StockReservation, error) {
	if quantity <= 0 {
		return nil, types.ErrValidation
	}
	transaction := tx
	if transaction == nil {
		transaction = l.db
	}

	var reservation *types.StockReservation
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		var product types.Product
		if err := txx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", productID).
			First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrNotFound
			}
			return err
		}

		if product.StockAvailable < quantity {
			return &InsufficientStockError{
				ProductID: productID,
				Requested: quantity,
				Available: product.StockAvailable,
			}
		}

		if err := txx.Model(&types.Product{}).
			Where("id = ?", productID).
			Updates(map[string]any{
				"stock_available": gorm.Expr("stock_available - ?", quantity),
				"stock_reserved":  gorm.Expr("stock_reserved + ?", quantity),
			}).Error; err != nil {
			return err
		}

		reservation = &types.StockReservation{
			ID:        uuid.New(),
			ProductID: productID,
			AttemptID: attemptID,
			Quantity:  quantity,
			Status:    types.ReservationReserved,
			ExpiresAt: time.Now().Add(l.ttl),
		}
		return txx.Create(reservation).Error
	})
	if err != nil {
		return nil, err
	}

	l.log.Debug("stock reserved",
		"product_id", productID,
		"quantity", quantity,
		"token", reservation.ID,
	)
	return reservation, nil
}

func (l *stockLedger) Commit(ctx context.Context, tx *gorm.DB, tokenID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = l.db
	}
	return transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		reservation, err := lockReservation(txx, tokenID)
		if err != nil {
			return err
		}
		switch reservation.Status {
		case types.ReservationCommitted:
			return nil
		case types.ReservationReleased:
			return ErrReservationReleased
		}

		// The available count already dropped at Reserve; committing only
		// retires the reserved counter.
		if err := txx.Model(&types.Product{}).
			Where("id = ?", reservation.ProductID).
			Update("stock_reserved", gorm.Expr("stock_reserved - ?", reservation.Quantity)).Error; err != nil {
			return err
		}
		return txx.Model(&types.StockReservation{}).
			Where("id = ?", tokenID).
			Update("status", types.ReservationCommitted).Error
	})
}

func (l *stockLedger) Release(ctx context.Context, tx *gorm.DB, tokenID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = l.db
	}
	return transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		reservation, err := lockReservation(txx, tokenID)
		if err != nil {
			return err
		}
		if reservation.Status != types.ReservationReserved {
			return nil
		}
		return releaseLocked(txx, reservation)
	})
}

func (l *stockLedger) ReleaseByAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = l.db
	}
	released := 0
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		var reservations []*types.StockReservation
		if err := txx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("attempt_id = ? AND status = ?", attemptID, types.ReservationReserved).
			Order("product_id ASC").
			Find(&reservations).Error; err != nil {
			return err
		}
		for _, reservation := range reservations {
			if err := releaseLocked(txx, reservation); err != nil {
				return err
			}
			released++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return released, nil
}

func (l *stockLedger) CommitByAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = l.db
	}
	committed := 0
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		var reservations []*types.StockReservation
		if err := txx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("attempt_id = ? AND status = ?", attemptID, types.ReservationReserved).
			Order("product_id ASC").
			Find(&reservations).Error; err != nil {
			return err
		}
		for _, reservation := range reservations {
			if err := txx.Model(&types.Product{}).
				Where("id = ?", reservation.ProductID).
				Update("stock_reserved", gorm.Expr("stock_reserved - ?", reservation.Quantity)).Error; err != nil {
				return err
			}
			if err := txx.Model(&types.StockReservation{}).
				Where("id = ?", reservation.ID).
				Update("status", types.ReservationCommitted).Error; err != nil {
				return err
			}
			committed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return committed, nil
}

func (l *stockLedger) ListByAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) ([]*types.StockReservation, error) {
	transaction := tx
	if transaction == nil {
		transaction = l.db
	}
	var reservations []*types.StockReservation
	if err := transaction.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("product_id ASC").
		Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

func (l *stockLedger) ReleaseExpired(ctx context.Context, tx *gorm.DB) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = l.db
	}
	released := 0
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		committing := txx.Model(&types.CheckoutAttempt{}).
			Select("id").
			Where("status = ?", types.AttemptCommitting)
		var expired []*types.StockReservation
		if err := txx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND expires_at < ?", types.ReservationReserved, time.Now()).
			Where("attempt_id NOT IN (?)", committing).
			Order("product_id ASC").
			Find(&expired).Error; err != nil {
			return err
		}
		for _, reservation := range expired {
			if err := releaseLocked(txx, reservation); err != nil {
				return err
			}
			released++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if released > 0 {
		l.log.Warn("released expired reservations", "count", released)
	}
	return released, nil
}

func lockReservation(txx *gorm.DB, tokenID uuid.UUID) (*types.StockReservation, error) {
	var reservation types.StockReservation
	err := txx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", tokenID).
		First(&reservation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func releaseLocked(txx *gorm.DB, reservation *types.StockReservation) error {
	if err := txx.Model(&types.Product{}).
		Where("id = ?", reservation.ProductID).
		Updates(map[string]any{
			"stock_available": gorm.Expr("stock_available + ?", reservation.Quantity),
			"stock_reserved":  gorm.Expr("stock_reserved - ?", reservation.Quantity),
		}).Error; err != nil {
		return err
	}
	return txx.Model(&types.StockReservation{}).
		Where("id = ?", reservation.ID).
		Update("status", types.ReservationReleased).Error
}

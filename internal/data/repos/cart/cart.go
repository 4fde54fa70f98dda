package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/platform/pgutil"
)

type CartRepo interface {
	GetOrCreateByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Cart, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, cartIDs []uuid.UUID) ([]*types.Cart, error)
	GetWithItems(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) (*types.Cart, error)
	// AddItem merges into an existing line for the same product (quantity
	// sums, snapshot price stays from the first add) or appends a new line
	// with the given price snapshot.
	AddItem(ctx context.Context, tx *gorm.DB, cartID, productID uuid.UUID, quantity, unitPriceCents int64) error
	// UpdateItemQuantity sets the line quantity; zero removes the line.
	UpdateItemQuantity(ctx context.Context, tx *gorm.DB, cartID, productID uuid.UUID, quantity int64) error
	RemoveItem(ctx context.Context, tx *gorm.DB, cartID, productID uuid.UUID) error
	Clear(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error
	// RefreshItemPrice re-snapshots one line's unit price (price-changed
	// policy "resnapshot" at checkout).
	RefreshItemPrice(ctx context.Context, tx *gorm.DB, cartID, productID uuid.UUID, unitPriceCents int64) error
}

type cartRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCartRepo(db *gorm.DB, baseLog *logger.Logger) CartRepo {
	repoLog := baseLog.With("repo", "CartRepo")
	return &cartRepo{db: db, log: repoLog}
}

func (r *cartRepo) GetOrCreateByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Cart, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var existing types.Cart
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := &types.Cart{ID: uuid.New(), UserID: userID}
	if cErr := transaction.WithContext(ctx).Create(created).Error; cErr != nil {
		// Lost a race with a concurrent create for the same user; the
		// unique index on user_id makes the winner authoritative.
		if pgutil.IsUniqueViolation(cErr) {
			var won types.Cart
			if gErr := transaction.WithContext(ctx).
				Where("user_id = ?", userID).
				First(&won).Error; gErr != nil {
				return nil, gErr
			}
			return &won, nil
		}
		return nil, cErr
	}
	return created, nil
}

func (r *cartRepo) GetByIDs(ctx context.Context, tx *gorm.DB, cartIDs []uuid.UUID) ([]*types.Cart, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Cart
	if len(cartIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", cartIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *cartRepo) GetWithItems(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) (*types.Cart, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Cart
	if err := transaction.WithContext(ctx).
		Preload("Items").
		Where("id = ?", cartID).
		First(&result).Error; err != nil {
		return nil, pgutil.Translate(err)
	}
	return &result, nil
}

func (r *cartRepo) AddItem(ctx context.Context, tx *gorm.DB, cartID, productID uuid.UUID, quantity, unitPriceCents int64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if quantity <= 0 {
		return types.ErrValidation
	}

	return transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		var line types.CartItem
		err := txx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("cart_id = ? AND product_id = ?", cartID, productID).
			First(&line).Error
		if err == nil {
			return txx.Model(&types.CartItem{}).
				Where("id = ?", line.ID).
				Update("quantity", gorm.Expr("quantity + ?", quantity)).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return txx.Create(&types.CartItem{
			ID:             uuid.New(),
			CartID:         cartID,
			ProductID:      productID,
			Quantity:       quantity,
			UnitPriceCents: unitPriceCents,
		}).Error
	})
}

func (r *cartRepo) UpdateItemQuantity(ctx context.Context, tx *gorm.DB, cartID, productID uuid.UUID, quantity int64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if quantity < 0 {
		return types.ErrValidation
	}
	if quantity == 0 {
		return r.RemoveItem(ctx, transaction, cartID, productID)
	}
	res := transaction.WithContext(ctx).
		Model(&types.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *cartRepo) RemoveItem(ctx context.Context, tx *gorm.DB, cartID, productID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&types.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *cartRepo) Clear(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&types.CartItem{}).Error
}

func (r *cartRepo) RefreshItemPrice(ctx context.Context, tx *gorm.DB, cartID, productID uuid.UUID, unitPriceCents int64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("unit_price_cents", unitPriceCents).Error
}

package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/repos"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type CartService interface {
	GetActiveCart(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Cart, error)
	// AddItem snapshots the product's current price into the line. Stock
	// is not checked here; checkout validates against the ledger.
	AddItem(ctx context.Context, tx *gorm.DB, userID, productID uuid.UUID, quantity int64) (*types.Cart, error)
	UpdateQuantity(ctx context.Context, tx *gorm.DB, userID, productID uuid.UUID, quantity int64) (*types.Cart, error)
	RemoveItem(ctx context.Context, tx *gorm.DB, userID, productID uuid.UUID) (*types.Cart, error)
}

type cartService struct {
	log         *logger.Logger
	cartRepo    repos.CartRepo
	productRepo repos.ProductRepo
}

func NewCartService(log *logger.Logger, cartRepo repos.CartRepo, productRepo repos.ProductRepo) CartService {
	return &cartService{
		log:         log.With("service", "CartService"),
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartService) GetActiveCart(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Cart, error) {
	active, err := s.cartRepo.GetOrCreateByUserID(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	return s.cartRepo.GetWithItems(ctx, tx, active.ID)
}

func (s *cartService) AddItem(ctx context.Context, tx *gorm.DB, userID, productID uuid.UUID, quantity int64) (*types.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", types.ErrValidation)
	}

	products, err := s.productRepo.GetByIDs(ctx, tx, []uuid.UUID{productID})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("product %s: %w", productID, types.ErrNotFound)
	}

	active, err := s.cartRepo.GetOrCreateByUserID(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.AddItem(ctx, tx, active.ID, productID, quantity, products[0].PriceCents); err != nil {
		return nil, err
	}
	return s.cartRepo.GetWithItems(ctx, tx, active.ID)
}

func (s *cartService) UpdateQuantity(ctx context.Context, tx *gorm.DB, userID, productID uuid.UUID, quantity int64) (*types.Cart, error) {
	active, err := s.cartRepo.GetOrCreateByUserID(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.UpdateItemQuantity(ctx, tx, active.ID, productID, quantity); err != nil {
		return nil, err
	}
	return s.cartRepo.GetWithItems(ctx, tx, active.ID)
}

func (s *cartService) RemoveItem(ctx context.Context, tx *gorm.DB, userID, productID uuid.UUID) (*types.Cart, error) {
	active, err := s.cartRepo.GetOrCreateByUserID(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.RemoveItem(ctx, tx, active.ID, productID); err != nil {
		return nil, err
	}
	return s.cartRepo.GetWithItems(ctx, tx, active.ID)
}

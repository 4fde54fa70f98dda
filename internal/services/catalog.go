package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/repos"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type CreateProductInput struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	PriceCents  int64      `json:"price_cents"`
	Stock       int64      `json:"stock"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
}

type CatalogService interface {
	CreateCategory(ctx context.Context, tx *gorm.DB, name, description string) (*types.Category, error)
	GetCategory(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) (*types.Category, error)
	ListCategories(ctx context.Context, tx *gorm.DB) ([]*types.Category, error)
	UpdateCategory(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, updates map[string]any) error
	DeleteCategory(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) error

	CreateProduct(ctx context.Context, tx *gorm.DB, in CreateProductInput) (*types.Product, error)
	GetProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*types.Product, error)
	ListProducts(ctx context.Context, tx *gorm.DB, filter repos.ProductFilter) ([]*types.Product, error)
	UpdateProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID, updates map[string]any) error
	DeleteProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID) error
}

type catalogService struct {
	log          *logger.Logger
	categoryRepo repos.CategoryRepo
	productRepo  repos.ProductRepo
}

func NewCatalogService(log *logger.Logger, categoryRepo repos.CategoryRepo, productRepo repos.ProductRepo) CatalogService {
	return &catalogService{
		log:          log.With("service", "CatalogService"),
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

func (s *catalogService) CreateCategory(ctx context.Context, tx *gorm.DB, name, description string) (*types.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name", types.ErrValidation)
	}
	created, err := s.categoryRepo.Create(ctx, tx, []*types.Category{{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
	}})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (s *catalogService) GetCategory(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) (*types.Category, error) {
	found, err := s.categoryRepo.GetByIDs(ctx, tx, []uuid.UUID{categoryID})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, types.ErrNotFound
	}
	return found[0], nil
}

func (s *catalogService) ListCategories(ctx context.Context, tx *gorm.DB) ([]*types.Category, error) {
	return s.categoryRepo.List(ctx, tx)
}

func (s *catalogService) UpdateCategory(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, updates map[string]any) error {
	return s.categoryRepo.UpdateFields(ctx, tx, categoryID, updates)
}

func (s *catalogService) DeleteCategory(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) error {
	return s.categoryRepo.DeleteByIDs(ctx, tx, []uuid.UUID{categoryID})
}

func (s *catalogService) CreateProduct(ctx context.Context, tx *gorm.DB, in CreateProductInput) (*types.Product, error) {
	if strings.TrimSpace(in.Name) == "" || in.PriceCents < 0 || in.Stock < 0 {
		return nil, types.ErrValidation
	}
	if in.CategoryID != nil {
		found, err := s.categoryRepo.GetByIDs(ctx, tx, []uuid.UUID{*in.CategoryID})
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("category %s: %w", *in.CategoryID, types.ErrNotFound)
		}
	}
	created, err := s.productRepo.Create(ctx, tx, []*types.Product{{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		PriceCents:     in.PriceCents,
		StockAvailable: in.Stock,
		CategoryID:     in.CategoryID,
	}})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (s *catalogService) GetProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*types.Product, error) {
	found, err := s.productRepo.GetByIDs(ctx, tx, []uuid.UUID{productID})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, types.ErrNotFound
	}
	return found[0], nil
}

func (s *catalogService) ListProducts(ctx context.Context, tx *gorm.DB, filter repos.ProductFilter) ([]*types.Product, error) {
	return s.productRepo.List(ctx, tx, filter)
}

func (s *catalogService) UpdateProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID, updates map[string]any) error {
	return s.productRepo.UpdateFields(ctx, tx, productID, updates)
}

func (s *catalogService) DeleteProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID) error {
	return s.productRepo.SoftDeleteByIDs(ctx, tx, []uuid.UUID{productID})
}

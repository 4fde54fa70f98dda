package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/repos"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type CreateReviewInput struct {
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
}

type ReviewService interface {
	Create(ctx context.Context, tx *gorm.DB, in CreateReviewInput) (*types.Review, error)
	ListForProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID) ([]*types.Review, error)
	Update(ctx context.Context, tx *gorm.DB, reviewID uuid.UUID, rating int, comment string) error
	Delete(ctx context.Context, tx *gorm.DB, reviewID uuid.UUID) error
}

type reviewService struct {
	log         *logger.Logger
	reviewRepo  repos.ReviewRepo
	userRepo    repos.UserRepo
	productRepo repos.ProductRepo
}

func NewReviewService(log *logger.Logger, reviewRepo repos.ReviewRepo, userRepo repos.UserRepo, productRepo repos.ProductRepo) ReviewService {
	return &reviewService{
		log:         log.With("service", "ReviewService"),
		reviewRepo:  reviewRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
	}
}

func (s *reviewService) Create(ctx context.Context, tx *gorm.DB, in CreateReviewInput) (*types.Review, error) {
	if in.Rating < types.ReviewRatingMin || in.Rating > types.ReviewRatingMax {
		return nil, fmt.Errorf("%w: rating must be between %d and %d",
			types.ErrValidation, types.ReviewRatingMin, types.ReviewRatingMax)
	}

	// Referential checks are independent reads. A shared transaction is
	// not safe across goroutines, so only the pooled path runs parallel.
	if tx == nil {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return s.requireUser(gctx, nil, in.UserID) })
		g.Go(func() error { return s.requireProduct(gctx, nil, in.ProductID) })
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		if err := s.requireUser(ctx, tx, in.UserID); err != nil {
			return nil, err
		}
		if err := s.requireProduct(ctx, tx, in.ProductID); err != nil {
			return nil, err
		}
	}

	created, err := s.reviewRepo.Create(ctx, tx, []*types.Review{{
		ID:        uuid.New(),
		UserID:    in.UserID,
		ProductID: in.ProductID,
		Rating:    in.Rating,
		Comment:   in.Comment,
	}})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (s *reviewService) requireUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	found, err := s.userRepo.GetByIDs(ctx, tx, []uuid.UUID{userID})
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return fmt.Errorf("user %s: %w", userID, types.ErrNotFound)
	}
	return nil
}

func (s *reviewService) requireProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID) error {
	found, err := s.productRepo.GetByIDs(ctx, tx, []uuid.UUID{productID})
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return fmt.Errorf("product %s: %w", productID, types.ErrNotFound)
	}
	return nil
}

func (s *reviewService) ListForProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID) ([]*types.Review, error) {
	return s.reviewRepo.ListByProductIDs(ctx, tx, []uuid.UUID{productID})
}

func (s *reviewService) Update(ctx context.Context, tx *gorm.DB, reviewID uuid.UUID, rating int, comment string) error {
	return s.reviewRepo.UpdateFields(ctx, tx, reviewID, map[string]any{
		"rating":  rating,
		"comment": comment,
	})
}

func (s *reviewService) Delete(ctx context.Context, tx *gorm.DB, reviewID uuid.UUID) error {
	return s.reviewRepo.DeleteByIDs(ctx, tx, []uuid.UUID{reviewID})
}

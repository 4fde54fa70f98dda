package review

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/data/repos/testutil"
	types "github.com/yungbote/storefront-backend/internal/domain"
)

func TestReviewRepo_CreateValidatesRating(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewReviewRepo(db, testutil.Logger(t))

	user := testutil.SeedUser(t, ctx, tx, "reviewer@example.com")
	product := testutil.SeedProduct(t, ctx, tx, 1000, 5)

	for _, rating := range []int{0, 6, -1} {
		_, err := repo.Create(ctx, tx, []*types.Review{{
			ID:        uuid.New(),
			UserID:    user.ID,
			ProductID: product.ID,
			Rating:    rating,
		}})
		if !errors.Is(err, types.ErrValidation) {
			t.Fatalf("rating %d: want ErrValidation, got %v", rating, err)
		}
	}

	created, err := repo.Create(ctx, tx, []*types.Review{{
		ID:        uuid.New(),
		UserID:    user.ID,
		ProductID: product.ID,
		Rating:    5,
		Comment:   "solid",
	}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("created %d rows, want 1", len(created))
	}
}

func TestReviewRepo_OneReviewPerUserAndProduct(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewReviewRepo(db, testutil.Logger(t))

	user := testutil.SeedUser(t, ctx, tx, "once@example.com")
	product := testutil.SeedProduct(t, ctx, tx, 1000, 5)

	if _, err := repo.Create(ctx, tx, []*types.Review{{
		ID:        uuid.New(),
		UserID:    user.ID,
		ProductID: product.ID,
		Rating:    4,
	}}); err != nil {
		t.Fatalf("first review: %v", err)
	}
	_, err := repo.Create(ctx, tx, []*types.Review{{
		ID:        uuid.New(),
		UserID:    user.ID,
		ProductID: product.ID,
		Rating:    2,
	}})
	if !errors.Is(err, types.ErrConflict) {
		t.Fatalf("second review: want ErrConflict, got %v", err)
	}
}

func TestReviewRepo_ListByProduct(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewReviewRepo(db, testutil.Logger(t))

	product := testutil.SeedProduct(t, ctx, tx, 1000, 5)
	for i := 0; i < 3; i++ {
		u := testutil.SeedUser(t, ctx, tx, uuid.NewString()+"@example.com")
		if _, err := repo.Create(ctx, tx, []*types.Review{{
			ID:        uuid.New(),
			UserID:    u.ID,
			ProductID: product.ID,
			Rating:    i + 1,
		}}); err != nil {
			t.Fatalf("seed review %d: %v", i, err)
		}
	}

	reviews, err := repo.ListByProductIDs(ctx, tx, []uuid.UUID{product.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(reviews) != 3 {
		t.Fatalf("reviews = %d, want 3", len(reviews))
	}
}

package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/storefront-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "A",
		LastName:     "B",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCategory(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Category {
	tb.Helper()
	c := &types.Category{
		ID:   uuid.New(),
		Name: name,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return c
}

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, priceCents, stock int64) *types.Product {
	tb.Helper()
	p := &types.Product{
		ID:             uuid.New(),
		Name:           fmt.Sprintf("product-%s", uuid.NewString()[:8]),
		PriceCents:     priceCents,
		StockAvailable: stock,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}

func SeedCart(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *types.Cart {
	tb.Helper()
	c := &types.Cart{
		ID:     uuid.New(),
		UserID: userID,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed cart: %v", err)
	}
	return c
}

func SeedCartItem(tb testing.TB, ctx context.Context, tx *gorm.DB, cartID, productID uuid.UUID, qty, unitPriceCents int64) *types.CartItem {
	tb.Helper()
	it := &types.CartItem{
		ID:             uuid.New(),
		CartID:         cartID,
		ProductID:      productID,
		Quantity:       qty,
		UnitPriceCents: unitPriceCents,
	}
	if err := tx.WithContext(ctx).Create(it).Error; err != nil {
		tb.Fatalf("seed cart item: %v", err)
	}
	return it
}

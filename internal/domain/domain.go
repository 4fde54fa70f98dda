package domain

import (
	"github.com/yungbote/storefront-backend/internal/domain/cart"
	"github.com/yungbote/storefront-backend/internal/domain/catalog"
	"github.com/yungbote/storefront-backend/internal/domain/checkout"
	"github.com/yungbote/storefront-backend/internal/domain/order"
	"github.com/yungbote/storefront-backend/internal/domain/review"
	"github.com/yungbote/storefront-backend/internal/domain/user"
)

type User = user.User

type Category = catalog.Category
type Product = catalog.Product

type Cart = cart.Cart
type CartItem = cart.CartItem

type Order = order.Order
type OrderItem = order.OrderItem
type OrderStatus = order.Status

const (
	OrderPending   = order.StatusPending
	OrderConfirmed = order.StatusConfirmed
	OrderFulfilled = order.StatusFulfilled
	OrderCancelled = order.StatusCancelled
)

type Review = review.Review

const (
	ReviewRatingMin = review.RatingMin
	ReviewRatingMax = review.RatingMax
)

type StockReservation = checkout.StockReservation
type ReservationStatus = checkout.ReservationStatus

const (
	ReservationReserved  = checkout.ReservationReserved
	ReservationCommitted = checkout.ReservationCommitted
	ReservationReleased  = checkout.ReservationReleased
)

type CheckoutAttempt = checkout.CheckoutAttempt
type AttemptStatus = checkout.AttemptStatus
type SnapshotLine = checkout.SnapshotLine

const (
	AttemptValidating = checkout.AttemptValidating
	AttemptReserving  = checkout.AttemptReserving
	AttemptCommitting = checkout.AttemptCommitting
	AttemptCompleted  = checkout.AttemptCompleted
	AttemptRolledBack = checkout.AttemptRolledBack
)

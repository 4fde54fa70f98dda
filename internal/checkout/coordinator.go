package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/checkout/cartlock"
	"github.com/yungbote/storefront-backend/internal/data/repos"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/ledger"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

// PricePolicy decides what happens when a product's catalog price no
// longer matches the cart's snapshot at validation time.
type PricePolicy string

const (
	// PriceFail aborts the checkout with a PriceChangedError.
	PriceFail PricePolicy = "fail"
	// PriceResnapshot silently adopts the current catalog price.
	PriceResnapshot PricePolicy = "resnapshot"
)

type Config struct {
	PricePolicy PricePolicy
}

type Deps struct {
	Runner   TxRunner
	Carts    repos.CartRepo
	Products repos.ProductRepo
	Orders   repos.OrderRepo
	Attempts repos.AttemptRepo
	Stock    ledger.StockLedger
	Guard    cartlock.Guard
}

type Result struct {
	OrderID   uuid.UUID
	AttemptID uuid.UUID
	// Replayed is set when the idempotency key matched a finished attempt
	// and no new work happened.
	Replayed bool
}

// Coordinator drives a cart through Validating -> Reserving -> Committing.
// Any exit before Committing rolls the attempt back completely; a failure
// inside Committing parks the attempt for recovery instead of guessing.
type Coordinator struct {
	runner   TxRunner
	carts    repos.CartRepo
	products repos.ProductRepo
	orders   repos.OrderRepo
	attempts repos.AttemptRepo
	stock    ledger.StockLedger
	guard    cartlock.Guard
	log      *logger.Logger
	policy   PricePolicy
}

func NewCoordinator(d Deps, baseLog *logger.Logger, cfg Config) *Coordinator {
	policy := cfg.PricePolicy
	if policy == "" {
		policy = PriceFail
	}
	return &Coordinator{
		runner:   d.Runner,
		carts:    d.Carts,
		products: d.Products,
		orders:   d.Orders,
		attempts: d.Attempts,
		stock:    d.Stock,
		guard:    d.Guard,
		log:      baseLog.With("component", "CheckoutCoordinator"),
		policy:   policy,
	}
}

func (c *Coordinator) Checkout(ctx context.Context, userID, cartID uuid.UUID, idempotencyKey string) (*Result, error) {
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}

	existing, err := c.attempts.GetByIdempotencyKey(ctx, nil, idempotencyKey)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return c.replay(existing)
	}

	release, err := c.guard.TryLock(ctx, cartID)
	if errors.Is(err, cartlock.ErrHeld) {
		return nil, ErrCheckoutInProgress
	}
	if err != nil {
		return nil, err
	}
	defer release()

	// Durable second line of defense: the in-memory/redis guard can lapse
	// across restarts, the intent log cannot.
	active, err := c.attempts.HasActiveForCart(ctx, nil, cartID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrCheckoutInProgress
	}

	attempt, lines, err := c.validate(ctx, userID, cartID, idempotencyKey)
	if err != nil {
		return nil, err
	}

	if err := c.reserve(ctx, attempt, lines); err != nil {
		return nil, err
	}

	return c.commit(ctx, attempt, lines)
}

func (c *Coordinator) replay(attempt *types.CheckoutAttempt) (*Result, error) {
	switch attempt.Status {
	case types.AttemptCompleted:
		if attempt.OrderID == nil {
			return nil, fmt.Errorf("attempt %s completed without an order id", attempt.ID)
		}
		return &Result{OrderID: *attempt.OrderID, AttemptID: attempt.ID, Replayed: true}, nil
	case types.AttemptRolledBack:
		return nil, fmt.Errorf("%w: %s", ErrAttemptRolledBack, attempt.LastError)
	default:
		return nil, ErrCheckoutInProgress
	}
}

// validate loads and checks the cart, then writes the intent record with
// the frozen line snapshot. No stock is touched yet.
func (c *Coordinator) validate(ctx context.Context, userID, cartID uuid.UUID, idempotencyKey string) (*types.CheckoutAttempt, []types.SnapshotLine, error) {
	loaded, err := c.carts.GetWithItems(ctx, nil, cartID)
	if err != nil {
		return nil, nil, err
	}
	if loaded.UserID != userID {
		return nil, nil, types.ErrNotFound
	}
	if len(loaded.Items) == 0 {
		return nil, nil, ErrEmptyCart
	}

	productIDs := make([]uuid.UUID, 0, len(loaded.Items))
	for _, item := range loaded.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := c.products.GetByIDs(ctx, nil, productIDs)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[uuid.UUID]*types.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]types.SnapshotLine, 0, len(loaded.Items))
	for _, item := range loaded.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			// Soft-deleted or missing product; the cart is stale.
			return nil, nil, fmt.Errorf("product %s: %w", item.ProductID, types.ErrNotFound)
		}

		price := item.UnitPriceCents
		if product.PriceCents != item.UnitPriceCents {
			if c.policy == PriceFail {
				return nil, nil, &PriceChangedError{
					ProductID:     item.ProductID,
					SnapshotCents: item.UnitPriceCents,
					CurrentCents:  product.PriceCents,
				}
			}
			if err := c.carts.RefreshItemPrice(ctx, nil, cartID, item.ProductID, product.PriceCents); err != nil {
				return nil, nil, err
			}
			price = product.PriceCents
		}

		lines = append(lines, types.SnapshotLine{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPriceCents: price,
		})
	}

	// Fixed global acquisition order: every checkout reserves in ascending
	// product id, so overlapping checkouts can never wait on each other in
	// a cycle.
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ProductID.String() < lines[j].ProductID.String()
	})

	snapshot, err := json.Marshal(lines)
	if err != nil {
		return nil, nil, err
	}
	attempt, err := c.attempts.Create(ctx, nil, &types.CheckoutAttempt{
		ID:             uuid.New(),
		CartID:         cartID,
		UserID:         userID,
		IdempotencyKey: idempotencyKey,
		Status:         types.AttemptValidating,
		Snapshot:       snapshot,
	})
	if err != nil {
		if errors.Is(err, types.ErrConflict) {
			return nil, nil, ErrCheckoutInProgress
		}
		return nil, nil, err
	}
	return attempt, lines, nil
}

// reserve acquires stock line by line, keeping an explicit compensation
// list; any failure releases what was taken, newest first, and rolls the
// attempt back.
func (c *Coordinator) reserve(ctx context.Context, attempt *types.CheckoutAttempt, lines []types.SnapshotLine) error {
	moved, err := c.attempts.Advance(ctx, nil, attempt.ID, []types.AttemptStatus{types.AttemptValidating}, types.AttemptReserving, nil)
	if err != nil {
		return err
	}
	if !moved {
		return ErrCheckoutInProgress
	}

	var compensations []func(context.Context) error

	rollback := func(cause error) {
		// Rollback runs even when the request context is already dead.
		rctx := context.WithoutCancel(ctx)
		for i := len(compensations) - 1; i >= 0; i-- {
			if rerr := compensations[i](rctx); rerr != nil {
				c.log.Error("compensation failed",
					"attempt_id", attempt.ID,
					"error", rerr,
				)
			}
		}
		c.finishRolledBack(rctx, attempt.ID, cause)
	}

	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			rollback(err)
			return err
		}

		reservation, err := c.stock.Reserve(ctx, nil, line.ProductID, line.Quantity, attempt.ID)
		if err != nil {
			rollback(err)
			return err
		}

		token := reservation.ID
		compensations = append(compensations, func(cctx context.Context) error {
			return c.stock.Release(cctx, nil, token)
		})
	}

	// Last cancellation point: once Committing starts the attempt runs to
	// completion or to a recorded failure.
	if err := ctx.Err(); err != nil {
		rollback(err)
		return err
	}
	return nil
}

func (c *Coordinator) commit(ctx context.Context, attempt *types.CheckoutAttempt, lines []types.SnapshotLine) (*Result, error) {
	moved, err := c.attempts.Advance(ctx, nil, attempt.ID, []types.AttemptStatus{types.AttemptReserving}, types.AttemptCommitting, nil)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, ErrCheckoutInProgress
	}

	commitCtx := context.WithoutCancel(ctx)

	var orderID uuid.UUID
	txErr := c.runner.WithinTx(commitCtx, func(tx *gorm.DB) error {
		items := make([]types.OrderItem, 0, len(lines))
		for _, line := range lines {
			items = append(items, types.OrderItem{
				ID:             uuid.New(),
				ProductID:      line.ProductID,
				Quantity:       line.Quantity,
				UnitPriceCents: line.UnitPriceCents,
			})
		}
		created, err := c.orders.CreateWithItems(commitCtx, tx, &types.Order{
			ID:                uuid.New(),
			UserID:            attempt.UserID,
			Status:            types.OrderPending,
			CheckoutAttemptID: attempt.ID,
			Items:             items,
		})
		if err != nil {
			return err
		}
		orderID = created.ID

		if _, err := c.stock.CommitByAttempt(commitCtx, tx, attempt.ID); err != nil {
			return err
		}
		if err := c.carts.Clear(commitCtx, tx, attempt.CartID); err != nil {
			return err
		}

		done, err := c.attempts.Advance(commitCtx, tx, attempt.ID,
			[]types.AttemptStatus{types.AttemptCommitting}, types.AttemptCompleted,
			map[string]any{"order_id": orderID})
		if err != nil {
			return err
		}
		if !done {
			return fmt.Errorf("attempt %s no longer in committing state", attempt.ID)
		}
		return nil
	})
	if txErr != nil {
		// The attempt stays parked in committing; recovery replays it.
		if _, aerr := c.attempts.Advance(commitCtx, nil, attempt.ID,
			[]types.AttemptStatus{types.AttemptCommitting}, types.AttemptCommitting,
			map[string]any{"last_error": txErr.Error()}); aerr != nil {
			c.log.Error("failed to record commit error", "attempt_id", attempt.ID, "error", aerr)
		}
		c.log.Error("checkout commit failed", "attempt_id", attempt.ID, "error", txErr)
		return nil, &TransactionError{AttemptID: attempt.ID, Err: txErr}
	}

	c.log.Info("checkout completed",
		"attempt_id", attempt.ID,
		"order_id", orderID,
		"lines", len(lines),
	)
	return &Result{OrderID: orderID, AttemptID: attempt.ID}, nil
}

func (c *Coordinator) finishRolledBack(ctx context.Context, attemptID uuid.UUID, cause error) {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	if _, err := c.attempts.Advance(ctx, nil, attemptID,
		[]types.AttemptStatus{types.AttemptValidating, types.AttemptReserving}, types.AttemptRolledBack,
		map[string]any{"last_error": msg}); err != nil {
		c.log.Error("failed to mark attempt rolled back", "attempt_id", attemptID, "error", err)
	}
}

package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/repos"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/ledger"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

const (
	DefaultRecoverAfter   = 2 * time.Minute
	DefaultSweepInterval  = 30 * time.Second
	DefaultSweepBatchSize = 50
)

// Recovery finishes what interrupted checkouts left behind. Attempts that
// died before Committing are rolled back; attempts that died inside
// Committing are replayed to completion, keyed by attempt id so replays
// never double-create orders or double-charge stock.
type Recovery struct {
	runner   TxRunner
	carts    repos.CartRepo
	orders   repos.OrderRepo
	attempts repos.AttemptRepo
	stock    ledger.StockLedger
	log      *logger.Logger

	recoverAfter time.Duration
	batchSize    int
}

func NewRecovery(d Deps, baseLog *logger.Logger, recoverAfter time.Duration, batchSize int) *Recovery {
	if recoverAfter <= 0 {
		recoverAfter = DefaultRecoverAfter
	}
	if batchSize <= 0 {
		batchSize = DefaultSweepBatchSize
	}
	return &Recovery{
		runner:       d.Runner,
		carts:        d.Carts,
		orders:       d.Orders,
		attempts:     d.Attempts,
		stock:        d.Stock,
		log:          baseLog.With("component", "CheckoutRecovery"),
		recoverAfter: recoverAfter,
		batchSize:    batchSize,
	}
}

// Start runs one sweep immediately, then keeps sweeping on the interval
// until ctx ends.
func (r *Recovery) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	go func() {
		r.sweepOnce(ctx)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.sweepOnce(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (r *Recovery) sweepOnce(ctx context.Context) {
	if _, err := r.stock.ReleaseExpired(ctx, nil); err != nil {
		r.log.Error("expired reservation sweep failed", "error", err)
	}
	if _, err := r.Sweep(ctx); err != nil {
		r.log.Error("attempt recovery sweep failed", "error", err)
	}
}

// Sweep processes stale non-terminal attempts and reports how many it
// settled.
func (r *Recovery) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-r.recoverAfter)
	stuck, err := r.attempts.ListStuck(ctx, nil, cutoff, r.batchSize)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, attempt := range stuck {
		var rerr error
		switch attempt.Status {
		case types.AttemptValidating, types.AttemptReserving:
			rerr = r.rollBack(ctx, attempt)
		case types.AttemptCommitting:
			rerr = r.resumeCommit(ctx, attempt)
		default:
			continue
		}
		if rerr != nil {
			r.log.Error("failed to recover attempt",
				"attempt_id", attempt.ID,
				"status", attempt.Status,
				"error", rerr,
			)
			continue
		}
		settled++
	}
	return settled, nil
}

func (r *Recovery) rollBack(ctx context.Context, attempt *types.CheckoutAttempt) error {
	released, err := r.stock.ReleaseByAttempt(ctx, nil, attempt.ID)
	if err != nil {
		return err
	}
	moved, err := r.attempts.Advance(ctx, nil, attempt.ID,
		[]types.AttemptStatus{types.AttemptValidating, types.AttemptReserving}, types.AttemptRolledBack,
		map[string]any{"last_error": "recovered: attempt interrupted before commit"})
	if err != nil {
		return err
	}
	if moved {
		r.log.Warn("rolled back interrupted checkout",
			"attempt_id", attempt.ID,
			"released_reservations", released,
		)
	}
	return nil
}

// resumeCommit replays the commit transaction. The unique
// checkout_attempt_id on orders makes the replay idempotent: if the order
// already landed, only the bookkeeping is finished.
func (r *Recovery) resumeCommit(ctx context.Context, attempt *types.CheckoutAttempt) error {
	var lines []types.SnapshotLine
	if err := json.Unmarshal(attempt.Snapshot, &lines); err != nil {
		return err
	}
	if len(lines) == 0 {
		return errors.New("committing attempt has no snapshot lines")
	}

	// Replaying the commit only decrements stock through the attempt's
	// reservations. If any of them were released in the meantime, the
	// decrement would silently be lost and the product oversold, so the
	// attempt is rolled back instead.
	backed, err := r.commitStillBacked(ctx, attempt.ID, lines)
	if err != nil {
		return err
	}
	if !backed {
		return r.rollBackUnbackedCommit(ctx, attempt)
	}

	var orderID uuid.UUID
	err = r.runner.WithinTx(ctx, func(tx *gorm.DB) error {
		existing, err := r.orders.GetByAttemptID(ctx, tx, attempt.ID)
		switch {
		case err == nil:
			orderID = existing.ID
		case errors.Is(err, types.ErrNotFound):
			items := make([]types.OrderItem, 0, len(lines))
			for _, line := range lines {
				items = append(items, types.OrderItem{
					ID:             uuid.New(),
					ProductID:      line.ProductID,
					Quantity:       line.Quantity,
					UnitPriceCents: line.UnitPriceCents,
				})
			}
			created, cerr := r.orders.CreateWithItems(ctx, tx, &types.Order{
				ID:                uuid.New(),
				UserID:            attempt.UserID,
				Status:            types.OrderPending,
				CheckoutAttemptID: attempt.ID,
				Items:             items,
			})
			if cerr != nil {
				return cerr
			}
			orderID = created.ID
		default:
			return err
		}

		if _, err := r.stock.CommitByAttempt(ctx, tx, attempt.ID); err != nil {
			return err
		}
		if err := r.carts.Clear(ctx, tx, attempt.CartID); err != nil {
			return err
		}

		done, err := r.attempts.Advance(ctx, tx, attempt.ID,
			[]types.AttemptStatus{types.AttemptCommitting}, types.AttemptCompleted,
			map[string]any{"order_id": orderID, "last_error": ""})
		if err != nil {
			return err
		}
		if !done {
			return errors.New("attempt moved out of committing during recovery")
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.Warn("recovered interrupted commit",
		"attempt_id", attempt.ID,
		"order_id", orderID,
	)
	return nil
}

// commitStillBacked reports whether every snapshot line is covered by a
// reservation that is still reserved or already committed.
func (r *Recovery) commitStillBacked(ctx context.Context, attemptID uuid.UUID, lines []types.SnapshotLine) (bool, error) {
	reservations, err := r.stock.ListByAttempt(ctx, nil, attemptID)
	if err != nil {
		return false, err
	}
	held := make(map[uuid.UUID]int64, len(reservations))
	for _, reservation := range reservations {
		if reservation.Status == types.ReservationReleased {
			continue
		}
		held[reservation.ProductID] += reservation.Quantity
	}
	for _, line := range lines {
		if held[line.ProductID] < line.Quantity {
			return false, nil
		}
	}
	return true, nil
}

func (r *Recovery) rollBackUnbackedCommit(ctx context.Context, attempt *types.CheckoutAttempt) error {
	released, err := r.stock.ReleaseByAttempt(ctx, nil, attempt.ID)
	if err != nil {
		return err
	}
	moved, err := r.attempts.Advance(ctx, nil, attempt.ID,
		[]types.AttemptStatus{types.AttemptCommitting}, types.AttemptRolledBack,
		map[string]any{"last_error": "recovered: reservations expired before the commit could be replayed"})
	if err != nil {
		return err
	}
	if moved {
		r.log.Warn("rolled back commit with lost reservations",
			"attempt_id", attempt.ID,
			"released_reservations", released,
		)
	}
	return nil
}

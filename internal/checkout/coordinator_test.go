package checkout

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/ledger"
)

func TestCheckout_Success(t *testing.T) {
	e := newEnv(t, Config{})
	ctx := context.Background()

	userID := uuid.New()
	a := e.seedProduct(1000, 5)
	b := e.seedProduct(500, 1)
	cart := e.seedCart(userID, map[*types.Product]int64{a: 2, b: 1})

	result, err := e.co.Checkout(ctx, userID, cart.ID, "key-success")
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if result.Replayed {
		t.Fatal("fresh checkout reported as replayed")
	}

	order, err := e.orders.GetWithItems(ctx, nil, result.OrderID)
	if err != nil {
		t.Fatalf("order not found: %v", err)
	}
	if order.TotalCents != 2500 {
		t.Fatalf("total = %d, want 2500", order.TotalCents)
	}
	if order.Status != types.OrderPending {
		t.Fatalf("status = %s, want pending", order.Status)
	}
	if len(order.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(order.Items))
	}
	for _, item := range order.Items {
		if item.SubtotalCents != item.Quantity*item.UnitPriceCents {
			t.Fatalf("subtotal %d != %d * %d", item.SubtotalCents, item.Quantity, item.UnitPriceCents)
		}
	}

	if got := e.stock.availableOf(a.ID); got != 3 {
		t.Fatalf("product a available = %d, want 3", got)
	}
	if got := e.stock.availableOf(b.ID); got != 0 {
		t.Fatalf("product b available = %d, want 0", got)
	}
	if got := e.stock.reservedOf(a.ID); got != 0 {
		t.Fatalf("product a reserved = %d, want 0", got)
	}
	if got := e.stock.reservedOf(b.ID); got != 0 {
		t.Fatalf("product b reserved = %d, want 0", got)
	}

	if n := e.carts.itemCount(cart.ID); n != 0 {
		t.Fatalf("cart still has %d items", n)
	}

	attempt := e.attempts.get(result.AttemptID)
	if attempt == nil || attempt.Status != types.AttemptCompleted {
		t.Fatalf("attempt not completed: %+v", attempt)
	}
	if attempt.OrderID == nil || *attempt.OrderID != result.OrderID {
		t.Fatalf("attempt order id mismatch: %+v", attempt.OrderID)
	}
}

func TestCheckout_InsufficientStock(t *testing.T) {
	e := newEnv(t, Config{})
	ctx := context.Background()

	userID := uuid.New()
	a := e.seedProduct(1000, 5)
	b := e.seedProduct(500, 1)
	cart := e.seedCart(userID, map[*types.Product]int64{a: 2, b: 3})

	_, err := e.co.Checkout(ctx, userID, cart.ID, "key-short")
	short, ok := ledger.IsInsufficientStock(err)
	if !ok {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if short.ProductID != b.ID {
		t.Fatalf("failing product = %s, want %s", short.ProductID, b.ID)
	}

	// Everything taken for the failed attempt must be back.
	if got := e.stock.availableOf(a.ID); got != 5 {
		t.Fatalf("product a available = %d, want 5", got)
	}
	if got := e.stock.availableOf(b.ID); got != 1 {
		t.Fatalf("product b available = %d, want 1", got)
	}
	if got := e.stock.reservedOf(a.ID); got != 0 {
		t.Fatalf("product a reserved = %d, want 0", got)
	}

	if n := e.carts.itemCount(cart.ID); n != 2 {
		t.Fatalf("cart items = %d, want untouched 2", n)
	}

	attempt, err := e.attempts.GetByIdempotencyKey(ctx, nil, "key-short")
	if err != nil {
		t.Fatalf("attempt not recorded: %v", err)
	}
	if attempt.Status != types.AttemptRolledBack {
		t.Fatalf("attempt status = %s, want rolled_back", attempt.Status)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	e := newEnv(t, Config{})
	ctx := context.Background()

	userID := uuid.New()
	cart := e.seedCart(userID, nil)

	_, err := e.co.Checkout(ctx, userID, cart.ID, "key-empty")
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if _, err := e.attempts.GetByIdempotencyKey(ctx, nil, "key-empty"); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("empty-cart checkout must not write an attempt, got %v", err)
	}
}

func TestCheckout_CartOwnership(t *testing.T) {
	e := newEnv(t, Config{})
	ctx := context.Background()

	owner := uuid.New()
	a := e.seedProduct(1000, 5)
	cart := e.seedCart(owner, map[*types.Product]int64{a: 1})

	_, err := e.co.Checkout(ctx, uuid.New(), cart.ID, "key-owner")
	if !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("foreign user must see not-found, got %v", err)
	}
}

func TestCheckout_IdempotentReplay(t *testing.T) {
	e := newEnv(t, Config{})
	ctx := context.Background()

	userID := uuid.New()
	a := e.seedProduct(1000, 5)
	cart := e.seedCart(userID, map[*types.Product]int64{a: 2})

	first, err := e.co.Checkout(ctx, userID, cart.ID, "key-replay")
	if err != nil {
		t.Fatalf("first checkout: %v", err)
	}
	second, err := e.co.Checkout(ctx, userID, cart.ID, "key-replay")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !second.Replayed {
		t.Fatal("replay not flagged")
	}
	if second.OrderID != first.OrderID {
		t.Fatalf("replay order %s != original %s", second.OrderID, first.OrderID)
	}
	// Stock moved exactly once.
	if got := e.stock.availableOf(a.ID); got != 3 {
		t.Fatalf("available = %d, want 3", got)
	}
}

func TestCheckout_ReplayOfRolledBackAttempt(t *testing.T) {
	e := newEnv(t, Config{})
	ctx := context.Background()

	userID := uuid.New()
	a := e.seedProduct(1000, 1)
	cart := e.seedCart(userID, map[*types.Product]int64{a: 2})

	if _, err := e.co.Checkout(ctx, userID, cart.ID, "key-dead"); err == nil {
		t.Fatal("expected reservation failure")
	}
	_, err := e.co.Checkout(ctx, userID, cart.ID, "key-dead")
	if !errors.Is(err, ErrAttemptRolledBack) {
		t.Fatalf("expected ErrAttemptRolledBack, got %v", err)
	}
}

func TestCheckout_ConcurrentSameCartFailsFast(t *testing.T) {
	e := newEnv(t, Config{})
	ctx := context.Background()

	userID := uuid.New()
	a := e.seedProduct(1000, 10)
	cart := e.seedCart(userID, map[*types.Product]int64{a: 2})

	e.stock.reserveDelay = 200 * time.Millisecond

	type outcome struct {
		result *Result
		err    error
	}
	outcomes := make([]outcome, 2)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			r, err := e.co.Checkout(ctx, userID, cart.ID, uuid.NewString())
			outcomes[i] = outcome{r, err}
		}(i)
	}
	close(start)
	wg.Wait()

	successes, inProgress := 0, 0
	for _, o := range outcomes {
		switch {
		case o.err == nil:
			successes++
		case errors.Is(o.err, ErrCheckoutInProgress):
			inProgress++
		default:
			t.Fatalf("unexpected error: %v", o.err)
		}
	}
	if successes != 1 || inProgress != 1 {
		t.Fatalf("got %d successes and %d in-progress, want 1 and 1", successes, inProgress)
	}
	if got := e.stock.availableOf(a.ID); got != 8 {
		t.Fatalf("available = %d, want 8 (one checkout's worth)", got)
	}
}

func TestCheckout_ReservesInAscendingProductOrder(t *testing.T) {
	e := newEnv(t, Config{})
	ctx := context.Background()

	userID := uuid.New()
	products := make([]*types.Product, 0, 5)
	lines := make(map[*types.Product]int64, 5)
	for i := 0; i < 5; i++ {
		p := e.seedProduct(100, 10)
		products = append(products, p)
		lines[p] = 1
	}
	cart := e.seedCart(userID, lines)

	if _, err := e.co.Checkout(ctx, userID, cart.ID, "key-order"); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	got := e.stock.reserveOrder
	if len(got) != len(products) {
		t.Fatalf("reserved %d products, want %d", len(got), len(products))
	}
	if !sort.SliceIsSorted(got, func(i, j int) bool {
		return got[i].String() < got[j].String()
	}) {
		t.Fatalf("reservations not in ascending product id order: %v", got)
	}
}

func TestCheckout_DisjointCartsRunConcurrently(t *testing.T) {
	e := newEnv(t, Config{})
	ctx := context.Background()

	userA, userB := uuid.New(), uuid.New()
	pa := e.seedProduct(1000, 5)
	pb := e.seedProduct(2000, 5)
	cartA := e.seedCart(userA, map[*types.Product]int64{pa: 1})
	cartB := e.seedCart(userB, map[*types.Product]int64{pb: 1})

	e.stock.reserveDelay = 20 * time.Millisecond

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = e.co.Checkout(ctx, userA, cartA.ID, "key-a")
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = e.co.Checkout(ctx, userB, cartB.ID, "key-b")
	}()
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("checkout %d failed: %v", i, err)
		}
	}
	if got := e.stock.availableOf(pa.ID); got != 4 {
		t.Fatalf("product a available = %d, want 4", got)
	}
	if got := e.stock.availableOf(pb.ID); got != 4 {
		t.Fatalf("product b available = %d, want 4", got)
	}
}

func TestCheckout_PriceChangedFailPolicy(t *testing.T) {
	e := newEnv(t, Config{PricePolicy: PriceFail})
	ctx := context.Background()

	userID := uuid.New()
	a := e.seedProduct(1000, 5)
	cart := e.seedCart(userID, map[*types.Product]int64{a: 1})

	e.products.setPrice(a.ID, 1200)

	_, err := e.co.Checkout(ctx, userID, cart.ID, "key-drift")
	var priceErr *PriceChangedError
	if !errors.As(err, &priceErr) {
		t.Fatalf("expected PriceChangedError, got %v", err)
	}
	if priceErr.ProductID != a.ID || priceErr.SnapshotCents != 1000 || priceErr.CurrentCents != 1200 {
		t.Fatalf("unexpected detail: %+v", priceErr)
	}
	if got := e.stock.availableOf(a.ID); got != 5 {
		t.Fatalf("stock touched on price failure: available = %d", got)
	}
}

func TestCheckout_PriceChangedResnapshotPolicy(t *testing.T) {
	e := newEnv(t, Config{PricePolicy: PriceResnapshot})
	ctx := context.Background()

	userID := uuid.New()
	a := e.seedProduct(1000, 5)
	cart := e.seedCart(userID, map[*types.Product]int64{a: 2})

	e.products.setPrice(a.ID, 1200)

	result, err := e.co.Checkout(ctx, userID, cart.ID, "key-resnap")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	order, err := e.orders.GetWithItems(ctx, nil, result.OrderID)
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	if order.TotalCents != 2400 {
		t.Fatalf("total = %d, want 2400 at the refreshed price", order.TotalCents)
	}
}

func TestCheckout_CommitFailureParksAttempt(t *testing.T) {
	e := newEnv(t, Config{})
	ctx := context.Background()

	userID := uuid.New()
	a := e.seedProduct(1000, 5)
	cart := e.seedCart(userID, map[*types.Product]int64{a: 2})

	e.orders.failCreate = errors.New("order insert refused")

	_, err := e.co.Checkout(ctx, userID, cart.ID, "key-parked")
	var txErr *TransactionError
	if !errors.As(err, &txErr) {
		t.Fatalf("expected TransactionError, got %v", err)
	}

	attempt := e.attempts.get(txErr.AttemptID)
	if attempt == nil || attempt.Status != types.AttemptCommitting {
		t.Fatalf("attempt not parked in committing: %+v", attempt)
	}
	if attempt.LastError == "" {
		t.Fatal("commit failure not recorded on the attempt")
	}

	// Stock stays reserved for recovery, not released.
	if got := e.stock.reservedOf(a.ID); got != 2 {
		t.Fatalf("reserved = %d, want 2", got)
	}
	if got := e.stock.availableOf(a.ID); got != 3 {
		t.Fatalf("available = %d, want 3", got)
	}
}

func TestCheckout_GeneratesKeyWhenMissing(t *testing.T) {
	e := newEnv(t, Config{})
	ctx := context.Background()

	userID := uuid.New()
	a := e.seedProduct(1000, 5)
	cart := e.seedCart(userID, map[*types.Product]int64{a: 1})

	result, err := e.co.Checkout(ctx, userID, cart.ID, "")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	attempt := e.attempts.get(result.AttemptID)
	if attempt == nil || attempt.IdempotencyKey == "" {
		t.Fatal("attempt missing generated idempotency key")
	}
}

func TestCheckout_OppositeOrderCartsDoNotDeadlock(t *testing.T) {
	e := newEnv(t, Config{})
	ctx := context.Background()

	userA, userB := uuid.New(), uuid.New()
	pa := e.seedProduct(1000, 10)
	pb := e.seedProduct(2000, 10)

	item := func(cartID uuid.UUID, p *types.Product) types.CartItem {
		return types.CartItem{
			ID:             uuid.New(),
			CartID:         cartID,
			ProductID:      p.ID,
			Quantity:       1,
			UnitPriceCents: p.PriceCents,
		}
	}
	// Same two products, stored in opposite order.
	cartA := &types.Cart{ID: uuid.New(), UserID: userA}
	cartA.Items = []types.CartItem{item(cartA.ID, pa), item(cartA.ID, pb)}
	cartB := &types.Cart{ID: uuid.New(), UserID: userB}
	cartB.Items = []types.CartItem{item(cartB.ID, pb), item(cartB.ID, pa)}
	e.carts.put(cartA)
	e.carts.put(cartB)

	e.stock.reserveDelay = 50 * time.Millisecond

	done := make(chan error, 2)
	go func() {
		_, err := e.co.Checkout(ctx, userA, cartA.ID, "key-ab")
		done <- err
	}()
	go func() {
		_, err := e.co.Checkout(ctx, userB, cartB.ID, "key-ba")
		done <- err
	}()

	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("checkout %d: %v", i, err)
			}
		case <-time.After(10 * time.Second):
			t.Fatal("checkouts did not settle")
		}
	}

	for _, p := range []*types.Product{pa, pb} {
		if got := e.stock.availableOf(p.ID); got != 8 {
			t.Fatalf("available(%s) = %d, want 8", p.ID, got)
		}
		if got := e.stock.reservedOf(p.ID); got != 0 {
			t.Fatalf("reserved(%s) = %d, want 0", p.ID, got)
		}
	}
}

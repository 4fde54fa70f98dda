package checkout

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/checkout/cartlock"
	"github.com/yungbote/storefront-backend/internal/data/repos"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/ledger"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

// In-memory doubles for the coordinator's dependencies. They share one
// mutex per fake so the concurrency tests exercise real interleavings.

type fakeRunner struct{}

func (fakeRunner) WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeCartRepo struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*types.Cart
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[uuid.UUID]*types.Cart)}
}

func (f *fakeCartRepo) put(c *types.Cart) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.carts[c.ID] = c
}

func (f *fakeCartRepo) GetOrCreateByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.carts {
		if c.UserID == userID {
			return c, nil
		}
	}
	c := &types.Cart{ID: uuid.New(), UserID: userID}
	f.carts[c.ID] = c
	return c, nil
}

func (f *fakeCartRepo) GetByIDs(ctx context.Context, tx *gorm.DB, cartIDs []uuid.UUID) ([]*types.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*types.Cart, 0, len(cartIDs))
	for _, id := range cartIDs {
		if c, ok := f.carts[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCartRepo) GetWithItems(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) (*types.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[cartID]
	if !ok {
		return nil, types.ErrNotFound
	}
	cp := *c
	cp.Items = append([]types.CartItem(nil), c.Items...)
	return &cp, nil
}

func (f *fakeCartRepo) AddItem(ctx context.Context, tx *gorm.DB, cartID, productID uuid.UUID, quantity, unitPriceCents int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[cartID]
	if !ok {
		return types.ErrNotFound
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			return nil
		}
	}
	c.Items = append(c.Items, types.CartItem{
		ID:             uuid.New(),
		CartID:         cartID,
		ProductID:      productID,
		Quantity:       quantity,
		UnitPriceCents: unitPriceCents,
	})
	return nil
}

func (f *fakeCartRepo) UpdateItemQuantity(ctx context.Context, tx *gorm.DB, cartID, productID uuid.UUID, quantity int64) error {
	if quantity == 0 {
		return f.RemoveItem(ctx, tx, cartID, productID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[cartID]
	if !ok {
		return types.ErrNotFound
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			return nil
		}
	}
	return types.ErrNotFound
}

func (f *fakeCartRepo) RemoveItem(ctx context.Context, tx *gorm.DB, cartID, productID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[cartID]
	if !ok {
		return types.ErrNotFound
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
	}
	return types.ErrNotFound
}

func (f *fakeCartRepo) Clear(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[cartID]
	if !ok {
		return types.ErrNotFound
	}
	c.Items = nil
	return nil
}

func (f *fakeCartRepo) RefreshItemPrice(ctx context.Context, tx *gorm.DB, cartID, productID uuid.UUID, unitPriceCents int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[cartID]
	if !ok {
		return types.ErrNotFound
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].UnitPriceCents = unitPriceCents
			return nil
		}
	}
	return types.ErrNotFound
}

func (f *fakeCartRepo) itemCount(cartID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.carts[cartID]; ok {
		return len(c.Items)
	}
	return 0
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*types.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*types.Product)}
}

func (f *fakeProductRepo) put(p *types.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = p
}

func (f *fakeProductRepo) setPrice(productID uuid.UUID, priceCents int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.products[productID]; ok {
		p.PriceCents = priceCents
	}
}

func (f *fakeProductRepo) Create(ctx context.Context, tx *gorm.DB, products []*types.Product) ([]*types.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range products {
		f.products[p.ID] = p
	}
	return products, nil
}

func (f *fakeProductRepo) GetByIDs(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) ([]*types.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*types.Product, 0, len(productIDs))
	for _, id := range productIDs {
		if p, ok := f.products[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) List(ctx context.Context, tx *gorm.DB, filter repos.ProductFilter) ([]*types.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*types.Product, 0, len(f.products))
	for _, p := range f.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeProductRepo) UpdateFields(ctx context.Context, tx *gorm.DB, productID uuid.UUID, updates map[string]any) error {
	return nil
}

func (f *fakeProductRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range productIDs {
		delete(f.products, id)
	}
	return nil
}

type fakeOrderRepo struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*types.Order
	byAttempt map[uuid.UUID]*types.Order

	failCreate error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		byID:      make(map[uuid.UUID]*types.Order),
		byAttempt: make(map[uuid.UUID]*types.Order),
	}
}

func (f *fakeOrderRepo) CreateWithItems(ctx context.Context, tx *gorm.DB, order *types.Order) (*types.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return nil, f.failCreate
	}
	if _, exists := f.byAttempt[order.CheckoutAttemptID]; exists {
		return nil, types.ErrConflict
	}
	var total int64
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		order.Items[i].SubtotalCents = order.Items[i].Quantity * order.Items[i].UnitPriceCents
		total += order.Items[i].SubtotalCents
	}
	order.TotalCents = total
	f.byID[order.ID] = order
	f.byAttempt[order.CheckoutAttemptID] = order
	return order, nil
}

func (f *fakeOrderRepo) GetByIDs(ctx context.Context, tx *gorm.DB, orderIDs []uuid.UUID) ([]*types.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*types.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		if o, ok := f.byID[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) GetWithItems(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*types.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.byID[orderID]; ok {
		return o, nil
	}
	return nil, types.ErrNotFound
}

func (f *fakeOrderRepo) GetByAttemptID(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) (*types.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.byAttempt[attemptID]; ok {
		return o, nil
	}
	return nil, types.ErrNotFound
}

func (f *fakeOrderRepo) ListByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Order
	for _, o := range f.byID {
		for _, uid := range userIDs {
			if o.UserID == uid {
				out = append(out, o)
			}
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, to types.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.byID[orderID]
	if !ok {
		return types.ErrNotFound
	}
	o.Status = to
	return nil
}

type fakeAttemptRepo struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*types.CheckoutAttempt
	byKey map[string]*types.CheckoutAttempt
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{
		byID:  make(map[uuid.UUID]*types.CheckoutAttempt),
		byKey: make(map[string]*types.CheckoutAttempt),
	}
}

func (f *fakeAttemptRepo) Create(ctx context.Context, tx *gorm.DB, attempt *types.CheckoutAttempt) (*types.CheckoutAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byKey[attempt.IdempotencyKey]; exists {
		return nil, types.ErrConflict
	}
	attempt.CreatedAt = time.Now()
	attempt.UpdatedAt = time.Now()
	f.byID[attempt.ID] = attempt
	f.byKey[attempt.IdempotencyKey] = attempt
	return attempt, nil
}

func (f *fakeAttemptRepo) GetByIDs(ctx context.Context, tx *gorm.DB, attemptIDs []uuid.UUID) ([]*types.CheckoutAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*types.CheckoutAttempt, 0, len(attemptIDs))
	for _, id := range attemptIDs {
		if a, ok := f.byID[id]; ok {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeAttemptRepo) GetByIdempotencyKey(ctx context.Context, tx *gorm.DB, key string) (*types.CheckoutAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.byKey[key]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, types.ErrNotFound
}

func (f *fakeAttemptRepo) Advance(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID, from []types.AttemptStatus, to types.AttemptStatus, updates map[string]any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[attemptID]
	if !ok {
		return false, nil
	}
	allowed := false
	for _, s := range from {
		if a.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, nil
	}
	a.Status = to
	a.UpdatedAt = time.Now()
	for k, v := range updates {
		switch k {
		case "order_id":
			id := v.(uuid.UUID)
			a.OrderID = &id
		case "last_error":
			a.LastError = v.(string)
		default:
			return false, fmt.Errorf("unexpected update column %q", k)
		}
	}
	return true, nil
}

func (f *fakeAttemptRepo) HasActiveForCart(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.CartID == cartID && !a.Status.Terminal() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAttemptRepo) ListStuck(ctx context.Context, tx *gorm.DB, cutoff time.Time, limit int) ([]*types.CheckoutAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.CheckoutAttempt
	for _, a := range f.byID {
		if !a.Status.Terminal() && a.UpdatedAt.Before(cutoff) {
			cp := *a
			out = append(out, &cp)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeAttemptRepo) get(attemptID uuid.UUID) *types.CheckoutAttempt {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.byID[attemptID]; ok {
		cp := *a
		return &cp
	}
	return nil
}

// backdate shoves an attempt's UpdatedAt into the past so ListStuck sees it.
func (f *fakeAttemptRepo) backdate(attemptID uuid.UUID, by time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.byID[attemptID]; ok {
		a.UpdatedAt = a.UpdatedAt.Add(-by)
	}
}

// setStatus forces a raw status for recovery scenarios.
func (f *fakeAttemptRepo) setStatus(attemptID uuid.UUID, status types.AttemptStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.byID[attemptID]; ok {
		a.Status = status
	}
}

func (f *fakeAttemptRepo) statusOf(attemptID uuid.UUID) types.AttemptStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.byID[attemptID]; ok {
		return a.Status
	}
	return ""
}

type stockState struct {
	available int64
	reserved  int64
}

type fakeStockLedger struct {
	mu           sync.Mutex
	stock        map[uuid.UUID]*stockState
	reservations map[uuid.UUID]*types.StockReservation

	// attempts lets the TTL sweep skip reservations whose attempt is
	// mid-commit, like the real ledger's query does.
	attempts *fakeAttemptRepo

	// reserveOrder records the product ids in acquisition order.
	reserveOrder []uuid.UUID
	// reserveDelay widens the race window in concurrency tests.
	reserveDelay time.Duration
}

var _ ledger.StockLedger = (*fakeStockLedger)(nil)

func newFakeStockLedger() *fakeStockLedger {
	return &fakeStockLedger{
		stock:        make(map[uuid.UUID]*stockState),
		reservations: make(map[uuid.UUID]*types.StockReservation),
	}
}

func (f *fakeStockLedger) setStock(productID uuid.UUID, available int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stock[productID] = &stockState{available: available}
}

func (f *fakeStockLedger) availableOf(productID uuid.UUID) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stock[productID].available
}

func (f *fakeStockLedger) reservedOf(productID uuid.UUID) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stock[productID].reserved
}

func (f *fakeStockLedger) Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, quantity int64, attemptID uuid.UUID) (*types.StockReservation, error) {
	if f.reserveDelay > 0 {
		time.Sleep(f.reserveDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stock[productID]
	if !ok {
		return nil, types.ErrNotFound
	}
	if s.available < quantity {
		return nil, &ledger.InsufficientStockError{
			ProductID: productID,
			Requested: quantity,
			Available: s.available,
		}
	}
	s.available -= quantity
	s.reserved += quantity
	r := &types.StockReservation{
		ID:        uuid.New(),
		ProductID: productID,
		AttemptID: attemptID,
		Quantity:  quantity,
		Status:    types.ReservationReserved,
		ExpiresAt: time.Now().Add(time.Minute),
	}
	f.reservations[r.ID] = r
	f.reserveOrder = append(f.reserveOrder, productID)
	return r, nil
}

func (f *fakeStockLedger) Commit(ctx context.Context, tx *gorm.DB, tokenID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[tokenID]
	if !ok {
		return ledger.ErrReservationNotFound
	}
	switch r.Status {
	case types.ReservationCommitted:
		return nil
	case types.ReservationReleased:
		return ledger.ErrReservationReleased
	}
	f.stock[r.ProductID].reserved -= r.Quantity
	r.Status = types.ReservationCommitted
	return nil
}

func (f *fakeStockLedger) Release(ctx context.Context, tx *gorm.DB, tokenID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[tokenID]
	if !ok {
		return ledger.ErrReservationNotFound
	}
	if r.Status != types.ReservationReserved {
		return nil
	}
	f.releaseLocked(r)
	return nil
}

func (f *fakeStockLedger) ReleaseByAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	released := 0
	for _, r := range f.reservations {
		if r.AttemptID == attemptID && r.Status == types.ReservationReserved {
			f.releaseLocked(r)
			released++
		}
	}
	return released, nil
}

func (f *fakeStockLedger) CommitByAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	committed := 0
	for _, r := range f.reservations {
		if r.AttemptID == attemptID && r.Status == types.ReservationReserved {
			f.stock[r.ProductID].reserved -= r.Quantity
			r.Status = types.ReservationCommitted
			committed++
		}
	}
	return committed, nil
}

func (f *fakeStockLedger) ListByAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) ([]*types.StockReservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.StockReservation
	for _, r := range f.reservations {
		if r.AttemptID == attemptID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStockLedger) ReleaseExpired(ctx context.Context, tx *gorm.DB) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	released := 0
	now := time.Now()
	for _, r := range f.reservations {
		if r.Status != types.ReservationReserved || !r.ExpiresAt.Before(now) {
			continue
		}
		if f.attempts != nil && f.attempts.statusOf(r.AttemptID) == types.AttemptCommitting {
			continue
		}
		f.releaseLocked(r)
		released++
	}
	return released, nil
}

// expireReservations backdates every reservation of one attempt so the
// TTL sweep sees them as stale.
func (f *fakeStockLedger) expireReservations(attemptID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reservations {
		if r.AttemptID == attemptID {
			r.ExpiresAt = time.Now().Add(-time.Hour)
		}
	}
}

func (f *fakeStockLedger) releaseLocked(r *types.StockReservation) {
	f.stock[r.ProductID].available += r.Quantity
	f.stock[r.ProductID].reserved -= r.Quantity
	r.Status = types.ReservationReleased
}

// env bundles a coordinator with its fakes for one test.
type env struct {
	co       *Coordinator
	recovery *Recovery
	carts    *fakeCartRepo
	products *fakeProductRepo
	orders   *fakeOrderRepo
	attempts *fakeAttemptRepo
	stock    *fakeStockLedger
}

func newEnv(tb testing.TB, cfg Config) *env {
	tb.Helper()
	log := testLogger(tb)

	e := &env{
		carts:    newFakeCartRepo(),
		products: newFakeProductRepo(),
		orders:   newFakeOrderRepo(),
		attempts: newFakeAttemptRepo(),
		stock:    newFakeStockLedger(),
	}
	e.stock.attempts = e.attempts
	deps := Deps{
		Runner:   fakeRunner{},
		Carts:    e.carts,
		Products: e.products,
		Orders:   e.orders,
		Attempts: e.attempts,
		Stock:    e.stock,
		Guard:    cartlock.NewMemoryGuard(),
	}
	e.co = NewCoordinator(deps, log, cfg)
	e.recovery = NewRecovery(deps, log, time.Millisecond, 0)
	return e
}

// seedProduct registers a product with both the catalog fake and the stock
// fake, mirroring how the two views share one row in the real schema.
func (e *env) seedProduct(priceCents, stock int64) *types.Product {
	p := &types.Product{
		ID:             uuid.New(),
		Name:           "p-" + uuid.NewString()[:8],
		PriceCents:     priceCents,
		StockAvailable: stock,
	}
	e.products.put(p)
	e.stock.setStock(p.ID, stock)
	return p
}

// seedCart builds a cart holding the given lines at the products' current
// catalog prices.
func (e *env) seedCart(userID uuid.UUID, lines map[*types.Product]int64) *types.Cart {
	c := &types.Cart{ID: uuid.New(), UserID: userID}
	for p, qty := range lines {
		c.Items = append(c.Items, types.CartItem{
			ID:             uuid.New(),
			CartID:         c.ID,
			ProductID:      p.ID,
			Quantity:       qty,
			UnitPriceCents: p.PriceCents,
		})
	}
	e.carts.put(c)
	return c
}

func testLogger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("init logger: %v", err)
	}
	return log
}

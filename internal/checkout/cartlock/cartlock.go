package cartlock

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrHeld means another checkout holds the cart right now. Callers fail
// fast instead of queueing.
var ErrHeld = errors.New("cart is locked by another checkout")

// Guard gives a cart to exactly one in-flight checkout. TryLock never
// blocks: it either returns a release func or ErrHeld.
type Guard interface {
	TryLock(ctx context.Context, cartID uuid.UUID) (release func(), err error)
}

// MemoryGuard is the single-process implementation.
type MemoryGuard struct {
	mu   sync.Mutex
	held map[uuid.UUID]struct{}
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{held: make(map[uuid.UUID]struct{})}
}

func (g *MemoryGuard) TryLock(_ context.Context, cartID uuid.UUID) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, taken := g.held[cartID]; taken {
		return nil, ErrHeld
	}
	g.held[cartID] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, cartID)
			g.mu.Unlock()
		})
	}
	return release, nil
}

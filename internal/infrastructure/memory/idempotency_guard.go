package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/pkg/clock"
)

var _ inventory.IdempotencyGuard = (*IdempotencyGuard)(nil)

// IdempotencyGuard reserva llaves en el proceso cuando no hay Redis configurado.
type IdempotencyGuard struct {
	mu   sync.Mutex
	held  map[string]time.Time // llave -> vencimiento
	ttl   time.Duration
	clock clock.Clock
}

// NewIdempotencyGuard construye la guardia; una reserva vence sola tras ttl (30s si ttl <= 0).
// clk puede ser nil.
func NewIdempotencyGuard(ttl time.Duration, clk clock.Clock) *IdempotencyGuard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &IdempotencyGuard{held: make(map[string]time.Time), ttl: ttl, clock: clk}
}

// Acquire devuelve false si la llave está reservada y vigente.
func (g *IdempotencyGuard) Acquire(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.clock.Now()
	if exp, ok := g.held[key]; ok && now.Before(exp) {
		return false, nil
	}
	g.held[key] = now.Add(g.ttl)
	return true, nil
}

// Release libera la llave.
func (g *IdempotencyGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	delete(g.held, key)
	g.mu.Unlock()
	return nil
}

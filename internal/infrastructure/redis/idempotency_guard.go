package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

var _ inventory.IdempotencyGuard = (*IdempotencyGuard)(nil)

const idempotencyKeyPrefix = "stock-ledger:idem:"

// IdempotencyGuard marca una llave de idempotencia como "en proceso" con SET NX.
// El TTL libera la llave si el proceso muere antes de Release.
type IdempotencyGuard struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewIdempotencyGuard construye la guardia. ttl es lo que dura una reserva abandonada;
// ttl <= 0 usa 30s.
func NewIdempotencyGuard(client *goredis.Client, ttl time.Duration) *IdempotencyGuard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &IdempotencyGuard{client: client, ttl: ttl}
}

// Acquire devuelve false si otra petición ya tiene la llave.
func (g *IdempotencyGuard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, g.ttl).Result()
	if err != nil {
		return false, mapRedisError("acquire idempotency key", err)
	}
	return ok, nil
}

// Release borra la llave. Borrar una llave inexistente no es error.
func (g *IdempotencyGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, idempotencyKeyPrefix+key).Err(); err != nil {
		return mapRedisError("release idempotency key", err)
	}
	return nil
}

func mapRedisError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, goredis.ErrClosed) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

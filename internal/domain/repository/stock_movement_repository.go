package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementCursor posición en el diario: (occurred_at, seq) del último movimiento leído.
type MovementCursor struct {
	OccurredAt time.Time
	Seq        int64
}

// MovementFilter filtro de lectura del diario de un producto.
// El rango de fechas es semiabierto [From, To).
type MovementFilter struct {
	ProductID string
	Kind      string // vacío = todos
	From      *time.Time
	To        *time.Time
	After     *MovementCursor // keyset: solo movimientos posteriores al cursor
	Limit     int
}

// StockMovementRepository puerto del diario de movimientos (solo inserción).
type StockMovementRepository interface {
	// Append inserta el movimiento y asigna Seq. Una llave de idempotencia repetida
	// devuelve domain.ErrDuplicate.
	Append(ctx context.Context, movement *entity.StockMovement) error
	GetByIdempotencyKey(ctx context.Context, key string) (*entity.StockMovement, error)
	// List devuelve movimientos ordenados por occurred_at y luego por seq, ascendente.
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
	CountByProduct(ctx context.Context, productID string) (int, error)
}

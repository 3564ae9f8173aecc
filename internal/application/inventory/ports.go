package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción del almacenamiento, pasando repositorios
// atados a esa tx. Si fn devuelve error no queda nada escrito.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// IdempotencyGuard reserva una llave de idempotencia mientras la solicitud está en curso.
// La unicidad definitiva la da el diario; la guardia evita que dos reintentos simultáneos
// compitan por el mismo registro.
type IdempotencyGuard interface {
	// Acquire devuelve false si otra solicitud ya tiene la llave.
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

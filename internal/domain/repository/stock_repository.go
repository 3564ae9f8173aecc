package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockRepository puerto de lectura del stock.
// La autoridad es la suma del diario; product_stock es una copia materializada que solo
// cambia en la misma transacción que inserta el movimiento.
type StockRepository interface {
	// CurrentStock suma los deltas con signo de todos los movimientos del producto.
	CurrentStock(ctx context.Context, productID string) (decimal.Decimal, error)
	// CachedStock lee el valor materializado (cero si aún no hay fila).
	CachedStock(ctx context.Context, productID string) (decimal.Decimal, error)
	// ApplyDelta incrementa atómicamente el valor materializado y devuelve el nuevo valor.
	ApplyDelta(ctx context.Context, productID string, delta decimal.Decimal) (decimal.Decimal, error)
	// Rebuild reemplaza el valor materializado por la suma del diario.
	Rebuild(ctx context.Context, productID string) (decimal.Decimal, error)
	// ListLowStock devuelve productos con stock <= mínimo, por stock ascendente y código.
	ListLowStock(ctx context.Context, limit int) ([]entity.StockLevel, error)
	CountLowStock(ctx context.Context) (int, error)
	// LowStockSnapshot devuelve los primeros limit productos en stock bajo y el total,
	// leídos de la misma instantánea: el total nunca es menor que el largo de la lista.
	LowStockSnapshot(ctx context.Context, limit int) ([]entity.StockLevel, int, error)
}

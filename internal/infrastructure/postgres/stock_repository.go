package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// CurrentStock suma firmada del diario del producto.
func (r *StockRepo) CurrentStock(ctx context.Context, productID string) (decimal.Decimal, error) {
	if !validUUID(productID) {
		return decimal.Zero, nil
	}
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN kind = 'ENTRY' THEN quantity ELSE -quantity END), 0)
		FROM stock_movements WHERE product_id = $1`, productID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, mapStoreError("sum journal", err)
	}
	return total, nil
}

// CachedStock valor materializado; cero si aún no hay fila.
func (r *StockRepo) CachedStock(ctx context.Context, productID string) (decimal.Decimal, error) {
	if !validUUID(productID) {
		return decimal.Zero, nil
	}
	var q decimal.Decimal
	err := r.q.QueryRow(ctx, `SELECT quantity FROM product_stock WHERE product_id = $1`, productID).Scan(&q)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, mapStoreError("get cached stock", err)
	}
	return q, nil
}

// ApplyDelta suma delta al valor materializado en una sola sentencia y devuelve el resultado.
// El CHECK quantity >= 0 de la tabla convierte un saldo negativo en ErrInsufficientStock.
func (r *StockRepo) ApplyDelta(ctx context.Context, productID string, delta decimal.Decimal) (decimal.Decimal, error) {
	var next decimal.Decimal
	err := r.q.QueryRow(ctx, `
		INSERT INTO product_stock (product_id, quantity, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (product_id)
		DO UPDATE SET quantity = product_stock.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING quantity`, productID, delta,
	).Scan(&next)
	if err != nil {
		if isCheckViolation(err) {
			return decimal.Zero, fmt.Errorf("%w: %w", domain.ErrInsufficientStock, err)
		}
		if pgCode(err) == codeNumericOverflow {
			return decimal.Zero, fmt.Errorf("%w: %w", domain.ErrInvalidQuantity, err)
		}
		return decimal.Zero, mapStoreError("apply stock delta", err)
	}
	return next, nil
}

// Rebuild reemplaza el valor materializado por la suma del diario.
func (r *StockRepo) Rebuild(ctx context.Context, productID string) (decimal.Decimal, error) {
	var q decimal.Decimal
	err := r.q.QueryRow(ctx, `
		INSERT INTO product_stock (product_id, quantity, updated_at)
		SELECT $1, COALESCE(SUM(CASE WHEN kind = 'ENTRY' THEN quantity ELSE -quantity END), 0), now()
		FROM stock_movements WHERE product_id = $1
		ON CONFLICT (product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()
		RETURNING quantity`, productID,
	).Scan(&q)
	if err != nil {
		return decimal.Zero, mapStoreError("rebuild stock", err)
	}
	return q, nil
}

const lowStockFrom = `
	FROM products p
	LEFT JOIN product_stock s ON s.product_id = p.id
	WHERE p.deleted_at IS NULL
	  AND COALESCE(s.quantity, 0) <= p.minimum_threshold`

// ListLowStock productos activos con stock <= mínimo, por stock ascendente y luego código.
// limit <= 0 devuelve todos.
func (r *StockRepo) ListLowStock(ctx context.Context, limit int) ([]entity.StockLevel, error) {
	query := `
		SELECT p.id, p.code, p.name, p.unit, COALESCE(s.quantity, 0) AS current_stock, p.minimum_threshold` +
		lowStockFrom + `
		ORDER BY current_stock ASC, p.code COLLATE "C" ASC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapStoreError("list low stock", err)
	}
	defer rows.Close()

	var out []entity.StockLevel
	for rows.Next() {
		var l entity.StockLevel
		if err := rows.Scan(&l.ProductID, &l.Code, &l.Name, &l.Unit, &l.CurrentStock, &l.MinimumThreshold); err != nil {
			return nil, mapStoreError("scan low stock", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, mapStoreError("list low stock", err)
	}
	return out, nil
}

// LowStockSnapshot lista y total en una sola sentencia (COUNT(*) OVER () se evalúa antes del LIMIT).
// limit <= 0 = sin límite (LIMIT NULL).
func (r *StockRepo) LowStockSnapshot(ctx context.Context, limit int) ([]entity.StockLevel, int, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := r.q.Query(ctx, `
		SELECT p.id, p.code, p.name, p.unit, COALESCE(s.quantity, 0) AS current_stock, p.minimum_threshold,
		       COUNT(*) OVER () AS total`+
		lowStockFrom+`
		ORDER BY current_stock ASC, p.code COLLATE "C" ASC
		LIMIT $1::bigint`, lim)
	if err != nil {
		return nil, 0, mapStoreError("low stock snapshot", err)
	}
	defer rows.Close()

	var (
		out   []entity.StockLevel
		total int
	)
	for rows.Next() {
		var l entity.StockLevel
		if err := rows.Scan(&l.ProductID, &l.Code, &l.Name, &l.Unit, &l.CurrentStock, &l.MinimumThreshold, &total); err != nil {
			return nil, 0, mapStoreError("scan low stock", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapStoreError("low stock snapshot", err)
	}
	return out, total, nil
}

// CountLowStock total de productos en stock bajo.
func (r *StockRepo) CountLowStock(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*)`+lowStockFrom).Scan(&n); err != nil {
		return 0, mapStoreError("count low stock", err)
	}
	return n, nil
}

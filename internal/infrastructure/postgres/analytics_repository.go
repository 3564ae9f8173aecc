package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// GetMovementTotals suma entradas y salidas con occurred_at en [start, end).
// Usa el índice (occurred_at, seq); un período sin movimientos devuelve ceros.
func (r *AnalyticsRepo) GetMovementTotals(ctx context.Context, start, end time.Time) (entries, exits decimal.Decimal, err error) {
	const query = `
	SELECT
	    COALESCE(SUM(quantity) FILTER (WHERE kind = 'ENTRY'), 0) AS entries,
	    COALESCE(SUM(quantity) FILTER (WHERE kind = 'EXIT'),  0) AS exits
	FROM stock_movements
	WHERE occurred_at >= $1
	  AND occurred_at <  $2`

	if err = r.q.QueryRow(ctx, query, start, end).Scan(&entries, &exits); err != nil {
		return decimal.Zero, decimal.Zero, mapStoreError("movement totals", err)
	}
	return entries, exits, nil
}

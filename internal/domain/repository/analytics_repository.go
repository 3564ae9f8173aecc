package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AnalyticsRepository consultas de lectura para el dashboard.
// Las implementaciones son read-only (no modifican datos).
type AnalyticsRepository interface {
	// GetMovementTotals suma las cantidades de entradas y salidas con occurred_at en [start, end).
	// Devuelve cero si no hay movimientos en el período.
	GetMovementTotals(ctx context.Context, start, end time.Time) (entries, exits decimal.Decimal, err error)
}

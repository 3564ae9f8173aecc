package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo agregados del dashboard en memoria.
type AnalyticsRepo struct {
	v view
}

// NewAnalyticsRepository construye el repositorio sobre el store.
func NewAnalyticsRepository(s *Store) *AnalyticsRepo {
	return &AnalyticsRepo{v: view{s: s}}
}

// GetMovementTotals suma entradas y salidas con occurred_at en [start, end).
func (r *AnalyticsRepo) GetMovementTotals(ctx context.Context, start, end time.Time) (entries, exits decimal.Decimal, err error) {
	entries, exits = decimal.Zero, decimal.Zero
	err = r.v.read(ctx, func(st *state) error {
		for _, m := range st.movements {
			if m.OccurredAt.Before(start) || !m.OccurredAt.Before(end) {
				continue
			}
			switch m.Kind {
			case entity.MovementKindEntry:
				entries = entries.Add(m.Quantity)
			case entity.MovementKindExit:
				exits = exits.Add(m.Quantity)
			}
		}
		return nil
	})
	return entries, exits, err
}

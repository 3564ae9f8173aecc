package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

// MovementRepo diario de movimientos en memoria (solo inserción).
type MovementRepo struct {
	v view
}

// NewMovementRepository construye el repositorio sobre el store.
func NewMovementRepository(s *Store) *MovementRepo {
	return &MovementRepo{v: view{s: s}}
}

// Append agrega el movimiento y asigna Seq.
func (r *MovementRepo) Append(ctx context.Context, movement *entity.StockMovement) error {
	return r.v.write(ctx, func(st *state) error {
		if _, ok := st.products[movement.ProductID]; !ok {
			return domain.ErrUnknownProduct
		}
		if movement.IdempotencyKey != "" {
			if _, ok := st.byKey[movement.IdempotencyKey]; ok {
				return domain.ErrDuplicate
			}
		}
		st.seq++
		movement.Seq = st.seq
		m := copyMovement(movement)
		st.movements = append(st.movements, m)
		if m.IdempotencyKey != "" {
			st.byKey[m.IdempotencyKey] = m
		}
		return nil
	})
}

// GetByIdempotencyKey devuelve (nil, nil) si la llave no existe.
func (r *MovementRepo) GetByIdempotencyKey(ctx context.Context, key string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := r.v.read(ctx, func(st *state) error {
		if m, ok := st.byKey[key]; ok {
			out = copyMovement(m)
		}
		return nil
	})
	return out, err
}

func afterCursor(m *entity.StockMovement, c *repository.MovementCursor) bool {
	if c == nil {
		return true
	}
	if m.OccurredAt.Equal(c.OccurredAt) {
		return m.Seq > c.Seq
	}
	return m.OccurredAt.After(c.OccurredAt)
}

// List movimientos del producto por (occurred_at, seq) ascendente.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.v.read(ctx, func(st *state) error {
		for _, m := range st.movements {
			if m.ProductID != f.ProductID {
				continue
			}
			if f.Kind != "" && m.Kind != f.Kind {
				continue
			}
			if f.From != nil && m.OccurredAt.Before(*f.From) {
				continue
			}
			if f.To != nil && !m.OccurredAt.Before(*f.To) {
				continue
			}
			if !afterCursor(m, f.After) {
				continue
			}
			out = append(out, copyMovement(m))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.Before(out[j].OccurredAt)
		}
		return out[i].Seq < out[j].Seq
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// CountByProduct cantidad de movimientos del producto.
func (r *MovementRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	var n int
	err := r.v.read(ctx, func(st *state) error {
		for _, m := range st.movements {
			if m.ProductID == productID {
				n++
			}
		}
		return nil
	})
	return n, err
}

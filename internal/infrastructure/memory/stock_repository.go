package memory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo lecturas de stock en memoria.
type StockRepo struct {
	v view
}

// NewStockRepository construye el repositorio sobre el store.
func NewStockRepository(s *Store) *StockRepo {
	return &StockRepo{v: view{s: s}}
}

func journalBalance(st *state, productID string) (decimal.Decimal, error) {
	var movs []*entity.StockMovement
	for _, m := range st.movements {
		if m.ProductID == productID {
			movs = append(movs, m)
		}
	}
	return inventory.Balance(movs)
}

// CurrentStock suma del diario.
func (r *StockRepo) CurrentStock(ctx context.Context, productID string) (decimal.Decimal, error) {
	out := decimal.Zero
	err := r.v.read(ctx, func(st *state) error {
		var err error
		out, err = journalBalance(st, productID)
		return err
	})
	return out, err
}

// CachedStock valor materializado.
func (r *StockRepo) CachedStock(ctx context.Context, productID string) (decimal.Decimal, error) {
	out := decimal.Zero
	err := r.v.read(ctx, func(st *state) error {
		out = st.stock[productID]
		return nil
	})
	return out, err
}

// ApplyDelta incrementa el valor materializado; nunca queda negativo.
func (r *StockRepo) ApplyDelta(ctx context.Context, productID string, delta decimal.Decimal) (decimal.Decimal, error) {
	out := decimal.Zero
	err := r.v.write(ctx, func(st *state) error {
		next := st.stock[productID].Add(delta)
		if next.IsNegative() {
			return fmt.Errorf("%w: stock materializado quedaría en %s", domain.ErrInsufficientStock, next)
		}
		st.stock[productID] = next
		out = next
		return nil
	})
	return out, err
}

// Rebuild reemplaza el valor materializado por la suma del diario.
func (r *StockRepo) Rebuild(ctx context.Context, productID string) (decimal.Decimal, error) {
	out := decimal.Zero
	err := r.v.write(ctx, func(st *state) error {
		var err error
		if out, err = journalBalance(st, productID); err != nil {
			return err
		}
		st.stock[productID] = out
		return nil
	})
	return out, err
}

func lowStockLevels(st *state) []entity.StockLevel {
	levels := make([]entity.StockLevel, 0, len(st.products))
	for _, p := range st.products {
		if p.IsDeleted() {
			continue
		}
		levels = append(levels, entity.StockLevel{
			ProductID:        p.ID,
			Code:             p.Code,
			Name:             p.Name,
			Unit:             p.Unit,
			CurrentStock:     st.stock[p.ID],
			MinimumThreshold: p.MinimumThreshold,
		})
	}
	return inventory.SelectLowStock(levels, 0)
}

// ListLowStock productos activos con stock <= mínimo, por stock ascendente y código.
func (r *StockRepo) ListLowStock(ctx context.Context, limit int) ([]entity.StockLevel, error) {
	var out []entity.StockLevel
	err := r.v.read(ctx, func(st *state) error {
		out = lowStockLevels(st)
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
		return nil
	})
	return out, err
}

// LowStockSnapshot lista y total bajo el mismo bloqueo de lectura.
func (r *StockRepo) LowStockSnapshot(ctx context.Context, limit int) ([]entity.StockLevel, int, error) {
	var (
		out   []entity.StockLevel
		total int
	)
	err := r.v.read(ctx, func(st *state) error {
		all := lowStockLevels(st)
		total = len(all)
		out = all
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
		return nil
	})
	return out, total, err
}

// CountLowStock total de productos en stock bajo.
func (r *StockRepo) CountLowStock(ctx context.Context) (int, error) {
	var n int
	err := r.v.read(ctx, func(st *state) error {
		n = len(lowStockLevels(st))
		return nil
	})
	return n, err
}

package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/pkg/clock"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var testNow = time.Date(2026, 2, 10, 15, 30, 0, 0, time.UTC)

type fixture struct {
	store    *memory.Store
	clock    *clock.Fixed
	products *memory.ProductRepo
	movs     *memory.MovementRepo
	stocks   *memory.StockRepo
	guard    *memory.IdempotencyGuard
	record   *inventory.RecordMovementUseCase
	stock    *inventory.StockUseCase
	journal  *inventory.JournalUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	clk := clock.NewFixed(testNow)
	f := &fixture{
		store:    store,
		clock:    clk,
		products: memory.NewProductRepository(store),
		movs:     memory.NewMovementRepository(store),
		stocks:   memory.NewStockRepository(store),
		guard:    memory.NewIdempotencyGuard(time.Minute, clk),
	}
	f.record = inventory.NewRecordMovementUseCase(store, f.movs, f.stocks, f.products, f.guard, clk)
	f.stock = inventory.NewStockUseCase(store, f.products, f.stocks)
	f.journal = inventory.NewJournalUseCase(f.movs, f.products, 2)
	return f
}

func (f *fixture) createProduct(t *testing.T, code string, threshold int64) string {
	t.Helper()
	p := &entity.Product{
		ID:               uuid.New().String(),
		Code:             code,
		Name:             "Producto " + code,
		Unit:             "und",
		MinimumThreshold: decimal.NewFromInt(threshold),
		CreatedAt:        testNow,
		UpdatedAt:        testNow,
	}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p.ID
}

func (f *fixture) entry(t *testing.T, productID string, qty int64) string {
	t.Helper()
	out, err := f.record.RecordMovement(context.Background(), inventory.RecordMovementInput{
		ProductID: productID, Kind: entity.MovementKindEntry, Quantity: decimal.NewFromInt(qty),
	})
	require.NoError(t, err)
	return out.ID
}

func (f *fixture) exit(t *testing.T, productID string, qty int64) string {
	t.Helper()
	out, err := f.record.RecordMovement(context.Background(), inventory.RecordMovementInput{
		ProductID: productID, Kind: entity.MovementKindExit, Quantity: decimal.NewFromInt(qty),
	})
	require.NoError(t, err)
	return out.ID
}

func (f *fixture) ledgerLen(t *testing.T, productID string) int {
	t.Helper()
	n, err := f.movs.CountByProduct(context.Background(), productID)
	require.NoError(t, err)
	return n
}

func (f *fixture) currentStock(t *testing.T, productID string) decimal.Decimal {
	t.Helper()
	s, err := f.stock.CurrentStock(context.Background(), productID)
	require.NoError(t, err)
	return s
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

var now = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func newProduct(code, name string) *entity.Product {
	return &entity.Product{
		ID:               uuid.New().String(),
		Code:             code,
		Name:             name,
		Unit:             "und",
		MinimumThreshold: decimal.NewFromInt(1),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestRun_RollbackDescartaTodo(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	products := memory.NewProductRepository(store)
	movs := memory.NewMovementRepository(store)
	stocks := memory.NewStockRepository(store)
	p := newProduct("P1", "Tornillo")
	require.NoError(t, products.Create(ctx, p))

	boom := errors.New("boom")
	err := store.Run(ctx, func(movRepo repository.StockMovementRepository, stockRepo repository.StockRepository, _ repository.ProductRepository) error {
		require.NoError(t, movRepo.Append(ctx, &entity.StockMovement{
			ID: uuid.New().String(), ProductID: p.ID, Kind: entity.MovementKindEntry,
			Quantity: decimal.NewFromInt(5), OccurredAt: now, CreatedAt: now,
		}))
		_, err := stockRepo.ApplyDelta(ctx, p.ID, decimal.NewFromInt(5))
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := movs.CountByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	cached, err := stocks.CachedStock(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, cached.IsZero())
}

func TestMovementRepo_LlaveDuplicada(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	products := memory.NewProductRepository(store)
	movs := memory.NewMovementRepository(store)
	p := newProduct("P1", "Tornillo")
	require.NoError(t, products.Create(ctx, p))

	m := &entity.StockMovement{ID: uuid.New().String(), ProductID: p.ID, Kind: entity.MovementKindEntry,
		Quantity: decimal.NewFromInt(1), OccurredAt: now, IdempotencyKey: "k1"}
	require.NoError(t, movs.Append(ctx, m))
	assert.Equal(t, int64(1), m.Seq)

	dup := *m
	dup.ID = uuid.New().String()
	assert.ErrorIs(t, movs.Append(ctx, &dup), domain.ErrDuplicate)

	got, err := movs.GetByIdempotencyKey(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, m.ID, got.ID)
}

func TestProductRepo_BusquedaSinMayusculasYOrdenPorNombre(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	products := memory.NewProductRepository(store)
	require.NoError(t, products.Create(ctx, newProduct("TOR-01", "Tornillo")))
	require.NoError(t, products.Create(ctx, newProduct("CLA-01", "clavo")))
	require.NoError(t, products.Create(ctx, newProduct("ARA-01", "Arandela de tornillo")))

	list, err := products.Search(ctx, "TORNI", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Arandela de tornillo", list[0].Name)
	assert.Equal(t, "Tornillo", list[1].Name)

	byCode, err := products.Search(ctx, "cla-", 10, 0)
	require.NoError(t, err)
	require.Len(t, byCode, 1)
	assert.Equal(t, "CLA-01", byCode[0].Code)

	all, err := products.Search(ctx, "", 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Arandela de tornillo", "clavo", "Tornillo"}, []string{all[0].Name, all[1].Name, all[2].Name})

	page, err := products.Search(ctx, "", 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestProductRepo_BusquedaTraeCategoriaYStock(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	products := memory.NewProductRepository(store)
	categories := memory.NewCategoryRepository(store)
	stocks := memory.NewStockRepository(store)

	cat := &entity.Category{ID: "cat-1", Name: "Ferretería", Color: "#22c55e", CreatedAt: now}
	require.NoError(t, categories.Create(ctx, cat))
	p := newProduct("TOR-01", "Tornillo")
	p.CategoryID = cat.ID
	require.NoError(t, products.Create(ctx, p))
	require.NoError(t, products.Create(ctx, newProduct("CLA-01", "Clavo")))
	_, err := stocks.ApplyDelta(ctx, p.ID, decimal.NewFromInt(7))
	require.NoError(t, err)

	list, err := products.Search(ctx, "", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "CLA-01", list[0].Code)
	assert.Empty(t, list[0].CategoryName)
	assert.True(t, list[0].CurrentStock.IsZero())
	assert.Equal(t, "Ferretería", list[1].CategoryName)
	assert.Equal(t, "#22c55e", list[1].CategoryColor)
	assert.True(t, list[1].CurrentStock.Equal(decimal.NewFromInt(7)))
}

func TestProductRepo_BajaLiberaCodigo(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	products := memory.NewProductRepository(store)
	p := newProduct("P1", "Tornillo")
	require.NoError(t, products.Create(ctx, p))
	assert.ErrorIs(t, products.Create(ctx, newProduct("P1", "Otro")), domain.ErrDuplicateCode)

	require.NoError(t, products.SoftDelete(ctx, p.ID, now))
	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, products.Create(ctx, newProduct("P1", "Reemplazo")))
	n, err := products.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestProductRepo_EntidadesCopiadas(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	products := memory.NewProductRepository(store)
	p := newProduct("P1", "Tornillo")
	require.NoError(t, products.Create(ctx, p))

	p.Name = "mutado fuera del store"
	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tornillo", got.Name)
}

func TestVerifyStock_DetectaYReparaInconsistencia(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	products := memory.NewProductRepository(store)
	movs := memory.NewMovementRepository(store)
	stocks := memory.NewStockRepository(store)
	record := inventory.NewRecordMovementUseCase(store, movs, stocks, products, nil, nil)
	stockUC := inventory.NewStockUseCase(store, products, stocks)

	p := newProduct("P1", "Tornillo")
	require.NoError(t, products.Create(ctx, p))
	_, err := record.RecordMovement(ctx, inventory.RecordMovementInput{ProductID: p.ID, Kind: "ENTRY", Quantity: decimal.NewFromInt(5)})
	require.NoError(t, err)

	store.OverwriteCachedStock(p.ID, decimal.NewFromInt(99))

	v, err := stockUC.VerifyStock(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrInconsistent)
	require.NotNil(t, v)
	assert.False(t, v.Consistent)

	// Un movimiento sobre un producto desincronizado no se confirma
	_, err = record.RecordMovement(ctx, inventory.RecordMovementInput{ProductID: p.ID, Kind: "ENTRY", Quantity: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInconsistent)
	n, err := movs.CountByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rebuilt, err := stockUC.RebuildStock(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, rebuilt.Equal(decimal.NewFromInt(5)))

	v, err = stockUC.VerifyStock(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, v.Consistent)
}

func TestAnalyticsRepo_IntervaloSemiabierto(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	products := memory.NewProductRepository(store)
	movs := memory.NewMovementRepository(store)
	analytics := memory.NewAnalyticsRepository(store)
	p := newProduct("P1", "Tornillo")
	require.NoError(t, products.Create(ctx, p))

	start := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	for _, m := range []struct {
		kind string
		qty  int64
		at   time.Time
	}{
		{entity.MovementKindEntry, 10, start},
		{entity.MovementKindExit, 3, end.Add(-time.Nanosecond)},
		{entity.MovementKindEntry, 100, end},
		{entity.MovementKindEntry, 7, start.Add(-time.Second)},
	} {
		require.NoError(t, movs.Append(ctx, &entity.StockMovement{
			ID: uuid.New().String(), ProductID: p.ID, Kind: m.kind, Quantity: decimal.NewFromInt(m.qty), OccurredAt: m.at,
		}))
	}

	entries, exits, err := analytics.GetMovementTotals(ctx, start, end)
	require.NoError(t, err)
	assert.True(t, entries.Equal(decimal.NewFromInt(10)))
	assert.True(t, exits.Equal(decimal.NewFromInt(3)))
}

func TestStore_FallaInyectada(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	products := memory.NewProductRepository(store)

	store.SetFailure(domain.ErrUnavailable)
	_, err := products.Count(ctx)
	assert.ErrorIs(t, err, domain.ErrUnavailable)

	store.SetFailure(nil)
	_, err = products.Count(ctx)
	assert.NoError(t, err)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = products.Count(canceled)
	assert.ErrorIs(t, err, domain.ErrTimeout)
}

func TestIdempotencyGuard(t *testing.T) {
	ctx := context.Background()
	g := memory.NewIdempotencyGuard(20*time.Millisecond, nil)

	ok, err := g.Acquire(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Acquire(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	time.Sleep(30 * time.Millisecond)
	ok, err = g.Acquire(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok, "la reserva vence sola")

	require.NoError(t, g.Release(ctx, "k"))
	ok, err = g.Acquire(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStockRepo_LowStockSnapshot(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	products := memory.NewProductRepository(store)
	stocks := memory.NewStockRepository(store)
	for _, code := range []string{"C", "A", "B"} {
		require.NoError(t, products.Create(ctx, newProduct(code, "Producto "+code)))
	}

	levels, total, err := stocks.LowStockSnapshot(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, levels, 2)
	assert.Equal(t, "A", levels[0].Code)
	assert.Equal(t, "B", levels[1].Code)

	all, total, err := stocks.LowStockSnapshot(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)
}

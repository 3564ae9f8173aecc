package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Escenario A: entrada de 15 sobre mínimo 10.
func TestRecordMovement_EntradaSobreMinimo(t *testing.T) {
	f := newFixture(t)
	p1 := f.createProduct(t, "P1", 10)

	out, err := f.record.RecordMovement(context.Background(), inventory.RecordMovementInput{
		ProductID: p1, Kind: entity.MovementKindEntry, Quantity: dec("15"), UserID: "user-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.True(t, out.CurrentStock.Equal(dec("15")))
	assert.False(t, out.LowStock)
	assert.False(t, out.Replayed)

	assert.True(t, f.currentStock(t, p1).Equal(dec("15")))
	low, err := f.stock.IsLowStock(context.Background(), p1)
	require.NoError(t, err)
	assert.False(t, low)
}

// Escenario B: salida de 10 deja 5, que ya es stock bajo.
func TestRecordMovement_SalidaDejaStockBajo(t *testing.T) {
	f := newFixture(t)
	p1 := f.createProduct(t, "P1", 10)
	f.entry(t, p1, 15)

	out, err := f.record.RecordMovement(context.Background(), inventory.RecordMovementInput{
		ProductID: p1, Kind: "salida", Quantity: dec("10"),
	})
	require.NoError(t, err)
	assert.True(t, out.CurrentStock.Equal(dec("5")))
	assert.True(t, out.LowStock)

	assert.True(t, f.currentStock(t, p1).Equal(dec("5")))
	low, err := f.stock.IsLowStock(context.Background(), p1)
	require.NoError(t, err)
	assert.True(t, low)
}

// Escenario D: cantidad cero o negativa no toca el diario.
func TestRecordMovement_CantidadInvalida(t *testing.T) {
	f := newFixture(t)
	p1 := f.createProduct(t, "P1", 10)
	f.entry(t, p1, 7)

	for _, q := range []string{"0", "-1", "-0.5"} {
		_, err := f.record.RecordMovement(context.Background(), inventory.RecordMovementInput{
			ProductID: p1, Kind: entity.MovementKindEntry, Quantity: dec(q),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity, "cantidad %s", q)
	}
	assert.Equal(t, 1, f.ledgerLen(t, p1))
	assert.True(t, f.currentStock(t, p1).Equal(dec("7")))
}

func TestRecordMovement_ProductoInexistente(t *testing.T) {
	f := newFixture(t)

	_, err := f.record.RecordMovement(context.Background(), inventory.RecordMovementInput{
		ProductID: "00000000-0000-0000-0000-00000000dead", Kind: entity.MovementKindEntry, Quantity: dec("1"),
	})
	assert.ErrorIs(t, err, domain.ErrUnknownProduct)

	_, err = f.stock.CurrentStock(context.Background(), "00000000-0000-0000-0000-00000000dead")
	assert.ErrorIs(t, err, domain.ErrUnknownProduct)
}

func TestRecordMovement_TipoInvalido(t *testing.T) {
	f := newFixture(t)
	p1 := f.createProduct(t, "P1", 0)

	_, err := f.record.RecordMovement(context.Background(), inventory.RecordMovementInput{
		ProductID: p1, Kind: "TRANSFER", Quantity: dec("1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, f.ledgerLen(t, p1))
}

func TestRecordMovement_StockInsuficiente(t *testing.T) {
	f := newFixture(t)
	p1 := f.createProduct(t, "P1", 0)
	f.entry(t, p1, 3)

	_, err := f.record.RecordMovement(context.Background(), inventory.RecordMovementInput{
		ProductID: p1, Kind: entity.MovementKindExit, Quantity: dec("4"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, f.ledgerLen(t, p1))
	assert.True(t, f.currentStock(t, p1).Equal(dec("3")))
}

func TestRecordMovement_ProductoSinMovimientos(t *testing.T) {
	f := newFixture(t)
	p1 := f.createProduct(t, "P1", 0)

	assert.True(t, f.currentStock(t, p1).IsZero())
	low, err := f.stock.IsLowStock(context.Background(), p1)
	require.NoError(t, err)
	assert.True(t, low, "stock 0 con mínimo 0 ya es stock bajo")
}

func TestRecordMovement_FechaPorDefectoYExplicita(t *testing.T) {
	f := newFixture(t)
	p1 := f.createProduct(t, "P1", 0)

	f.entry(t, p1, 1)
	past := testNow.Add(-48 * time.Hour)
	_, err := f.record.RecordMovement(context.Background(), inventory.RecordMovementInput{
		ProductID: p1, Kind: entity.MovementKindEntry, Quantity: dec("2"), OccurredAt: &past,
	})
	require.NoError(t, err)

	var got []time.Time
	for m, err := range f.journal.Movements(context.Background(), inventory.JournalQuery{ProductID: p1}) {
		require.NoError(t, err)
		got = append(got, m.OccurredAt)
	}
	require.Len(t, got, 2)
	assert.True(t, got[0].Equal(past))
	assert.True(t, got[1].Equal(testNow))
}

func TestRecordMovement_Idempotencia(t *testing.T) {
	f := newFixture(t)
	p1 := f.createProduct(t, "P1", 0)
	in := inventory.RecordMovementInput{
		ProductID: p1, Kind: entity.MovementKindEntry, Quantity: dec("5"), IdempotencyKey: "req-1",
	}

	first, err := f.record.RecordMovement(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	second, err := f.record.RecordMovement(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.CurrentStock.Equal(dec("5")))

	assert.Equal(t, 1, f.ledgerLen(t, p1))
	assert.True(t, f.currentStock(t, p1).Equal(dec("5")))
}

func TestRecordMovement_IdempotenciaConflicto(t *testing.T) {
	f := newFixture(t)
	p1 := f.createProduct(t, "P1", 0)

	_, err := f.record.RecordMovement(context.Background(), inventory.RecordMovementInput{
		ProductID: p1, Kind: entity.MovementKindEntry, Quantity: dec("5"), IdempotencyKey: "req-1",
	})
	require.NoError(t, err)

	_, err = f.record.RecordMovement(context.Background(), inventory.RecordMovementInput{
		ProductID: p1, Kind: entity.MovementKindEntry, Quantity: dec("6"), IdempotencyKey: "req-1",
	})
	assert.ErrorIs(t, err, domain.ErrIdempotencyConflict)
	assert.Equal(t, 1, f.ledgerLen(t, p1))
}

func TestRecordMovement_LlaveEnCurso(t *testing.T) {
	f := newFixture(t)
	p1 := f.createProduct(t, "P1", 0)

	ok, err := f.guard.Acquire(context.Background(), "req-busy")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.record.RecordMovement(context.Background(), inventory.RecordMovementInput{
		ProductID: p1, Kind: entity.MovementKindEntry, Quantity: dec("1"), IdempotencyKey: "req-busy",
	})
	assert.ErrorIs(t, err, domain.ErrRequestInFlight)
	assert.Equal(t, 0, f.ledgerLen(t, p1))

	require.NoError(t, f.guard.Release(context.Background(), "req-busy"))
	_, err = f.record.RecordMovement(context.Background(), inventory.RecordMovementInput{
		ProductID: p1, Kind: entity.MovementKindEntry, Quantity: dec("1"), IdempotencyKey: "req-busy",
	})
	assert.NoError(t, err)
}

func TestRecordMovement_ReservaAbandonadaVence(t *testing.T) {
	f := newFixture(t)
	p1 := f.createProduct(t, "P1", 0)

	// Una réplica tomó la llave y murió sin liberarla
	ok, err := f.guard.Acquire(context.Background(), "req-lost")
	require.NoError(t, err)
	require.True(t, ok)

	in := inventory.RecordMovementInput{
		ProductID: p1, Kind: entity.MovementKindEntry, Quantity: dec("4"), IdempotencyKey: "req-lost",
	}
	_, err = f.record.RecordMovement(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrRequestInFlight)

	f.clock.Advance(time.Minute + time.Second)
	out, err := f.record.RecordMovement(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, out.Replayed)
	assert.True(t, out.CurrentStock.Equal(dec("4")))
	assert.Equal(t, 1, f.ledgerLen(t, p1))
}

func TestRecordMovement_AlmacenamientoCaido(t *testing.T) {
	f := newFixture(t)
	p1 := f.createProduct(t, "P1", 0)
	f.entry(t, p1, 2)

	f.store.SetFailure(domain.ErrUnavailable)
	_, err := f.record.RecordMovement(context.Background(), inventory.RecordMovementInput{
		ProductID: p1, Kind: entity.MovementKindEntry, Quantity: dec("1"),
	})
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.True(t, domain.IsStoreFailure(err))
	f.store.SetFailure(nil)

	assert.Equal(t, 1, f.ledgerLen(t, p1))
	assert.True(t, f.currentStock(t, p1).Equal(dec("2")))
}

func TestRecordMovement_ContextoVencido(t *testing.T) {
	f := newFixture(t)
	p1 := f.createProduct(t, "P1", 0)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := f.record.RecordMovement(ctx, inventory.RecordMovementInput{
		ProductID: p1, Kind: entity.MovementKindEntry, Quantity: dec("1"),
	})
	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.Equal(t, 0, f.ledgerLen(t, p1))
}

// Registros concurrentes sobre el mismo producto: ninguno se pierde.
func TestRecordMovement_ConcurrenciaMismoProducto(t *testing.T) {
	f := newFixture(t)
	p1 := f.createProduct(t, "P1", 0)

	const workers = 50
	var wg sync.WaitGroup
	errs := make(chan error, workers*2)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.record.RecordMovement(context.Background(), inventory.RecordMovementInput{
				ProductID: p1, Kind: entity.MovementKindEntry, Quantity: dec("2"),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, workers, f.ledgerLen(t, p1))
	assert.True(t, f.currentStock(t, p1).Equal(decimal.NewFromInt(2*workers)))

	v, err := f.stock.VerifyStock(context.Background(), p1)
	require.NoError(t, err)
	assert.True(t, v.Consistent)
}

// Salidas concurrentes: exactamente las que caben en el stock se registran.
func TestRecordMovement_SalidasConcurrentesNuncaNegativo(t *testing.T) {
	f := newFixture(t)
	p1 := f.createProduct(t, "P1", 0)
	f.entry(t, p1, 10)

	const workers = 30
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		ok, rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.record.RecordMovement(context.Background(), inventory.RecordMovementInput{
				ProductID: p1, Kind: entity.MovementKindExit, Quantity: dec("1"),
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if assert.ErrorIs(t, err, domain.ErrInsufficientStock) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, 20, rejected)
	assert.True(t, f.currentStock(t, p1).IsZero())
	assert.Equal(t, 11, f.ledgerLen(t, p1))
}

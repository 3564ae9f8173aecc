package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSignedDelta(t *testing.T) {
	in, err := inventory.SignedDelta(entity.MovementKindEntry, d("15"))
	require.NoError(t, err)
	assert.True(t, in.Equal(d("15")))

	out, err := inventory.SignedDelta(entity.MovementKindExit, d("10"))
	require.NoError(t, err)
	assert.True(t, out.Equal(d("-10")))

	_, err = inventory.SignedDelta("ADJUST", d("1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalizeKind(t *testing.T) {
	assert.Equal(t, entity.MovementKindEntry, inventory.NormalizeKind("entrada"))
	assert.Equal(t, entity.MovementKindEntry, inventory.NormalizeKind(" in "))
	assert.Equal(t, entity.MovementKindExit, inventory.NormalizeKind("Salida"))
	assert.Equal(t, entity.MovementKindExit, inventory.NormalizeKind("EXIT"))
	assert.Equal(t, "", inventory.NormalizeKind("transfer"))
}

func TestValidateQuantity(t *testing.T) {
	assert.NoError(t, inventory.ValidateQuantity(d("0.5")))
	assert.ErrorIs(t, inventory.ValidateQuantity(decimal.Zero), domain.ErrInvalidQuantity)
	assert.ErrorIs(t, inventory.ValidateQuantity(d("-3")), domain.ErrInvalidQuantity)
}

func TestValidateQuantity_EscalaYMagnitud(t *testing.T) {
	assert.NoError(t, inventory.ValidateQuantity(d("1.0001")))
	assert.NoError(t, inventory.ValidateQuantity(d("1.50000")), "ceros a la derecha no cuentan como decimales")
	assert.NoError(t, inventory.ValidateQuantity(d("99999999999999.9999")))

	assert.ErrorIs(t, inventory.ValidateQuantity(d("1.00005")), domain.ErrInvalidQuantity)
	assert.ErrorIs(t, inventory.ValidateQuantity(d("0.00001")), domain.ErrInvalidQuantity)
	assert.ErrorIs(t, inventory.ValidateQuantity(d("100000000000000")), domain.ErrInvalidQuantity)
}

func TestValidateThreshold(t *testing.T) {
	assert.NoError(t, inventory.ValidateThreshold(decimal.Zero))
	assert.ErrorIs(t, inventory.ValidateThreshold(d("-1")), domain.ErrInvalidThreshold)
	assert.ErrorIs(t, inventory.ValidateThreshold(d("2.12345")), domain.ErrInvalidThreshold)
	assert.ErrorIs(t, inventory.ValidateThreshold(d("1e14")), domain.ErrInvalidThreshold)
}

func TestBalance(t *testing.T) {
	zero, err := inventory.Balance(nil)
	require.NoError(t, err)
	assert.True(t, zero.IsZero(), "sin movimientos el saldo es cero")

	movs := []*entity.StockMovement{
		{Kind: entity.MovementKindEntry, Quantity: d("15")},
		{Kind: entity.MovementKindExit, Quantity: d("10")},
		{Kind: entity.MovementKindEntry, Quantity: d("2.5")},
	}
	total, err := inventory.Balance(movs)
	require.NoError(t, err)
	assert.True(t, total.Equal(d("7.5")))
}

func TestBalance_TipoDesconocidoEsInconsistente(t *testing.T) {
	movs := []*entity.StockMovement{
		{ID: "m1", Kind: entity.MovementKindEntry, Quantity: d("5")},
		{ID: "m2", Kind: "ADJUST", Quantity: d("1")},
	}
	_, err := inventory.Balance(movs)
	assert.ErrorIs(t, err, domain.ErrInconsistent)
	assert.Contains(t, err.Error(), "m2")
}

func TestIsLowStock_IncluyeElLimite(t *testing.T) {
	assert.True(t, inventory.IsLowStock(d("5"), d("10")))
	assert.True(t, inventory.IsLowStock(d("10"), d("10")), "igual al mínimo ya es stock bajo")
	assert.False(t, inventory.IsLowStock(d("10.01"), d("10")))
	assert.True(t, inventory.IsLowStock(decimal.Zero, decimal.Zero))
}

func TestIsLowStock_Monotono(t *testing.T) {
	minimum := d("10")
	stock := decimal.Zero
	wasLow := true
	for i := 0; i < 30; i++ {
		stock = stock.Add(d("1"))
		low := inventory.IsLowStock(stock, minimum)
		if !wasLow {
			assert.False(t, low, "una entrada nunca devuelve un producto a stock bajo")
		}
		wasLow = low
	}
}

func TestSelectLowStock_OrdenYDesempate(t *testing.T) {
	levels := []entity.StockLevel{
		{Code: "P3", CurrentStock: d("5"), MinimumThreshold: d("10")},
		{Code: "P2", CurrentStock: d("20"), MinimumThreshold: d("10")},
		{Code: "P1", CurrentStock: d("5"), MinimumThreshold: d("10")},
		{Code: "P0", CurrentStock: d("0"), MinimumThreshold: d("1")},
		{Code: "P4", CurrentStock: d("10"), MinimumThreshold: d("10")},
	}

	got := inventory.SelectLowStock(levels, 0)
	codes := make([]string, 0, len(got))
	for _, l := range got {
		codes = append(codes, l.Code)
	}
	assert.Equal(t, []string{"P0", "P1", "P3", "P4"}, codes)

	assert.Len(t, inventory.SelectLowStock(levels, 2), 2)
}

func TestDayWindow(t *testing.T) {
	bogota, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)

	ref := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC) // 2026-03-09 22:00 en Bogotá
	start, end := inventory.DayWindow(ref, bogota)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, bogota), start)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, bogota), end)

	startUTC, endUTC := inventory.DayWindow(ref, nil)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), startUTC)
	assert.Equal(t, 24*time.Hour, endUTC.Sub(startUTC))
}

func TestDayWindow_CambioDeHorario(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	start, end := inventory.DayWindow(time.Date(2026, 3, 8, 12, 0, 0, 0, ny), ny)
	assert.Equal(t, 23*time.Hour, end.Sub(start))
}

func TestParseDay(t *testing.T) {
	day, err := inventory.ParseDay("2026-02-01", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), day)

	_, err = inventory.ParseDay("01/02/2026", time.UTC)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

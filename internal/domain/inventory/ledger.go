// Package inventory contiene las reglas puras del diario de stock (servicio de dominio).
package inventory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ValidKind indica si kind es un tipo de movimiento conocido.
func ValidKind(kind string) bool {
	return kind == entity.MovementKindEntry || kind == entity.MovementKindExit
}

// NormalizeKind acepta alias en minúscula y en español (in, entrada, out, salida).
func NormalizeKind(kind string) string {
	switch strings.ToUpper(strings.TrimSpace(kind)) {
	case "ENTRY", "IN", "ENTRADA":
		return entity.MovementKindEntry
	case "EXIT", "OUT", "SALIDA":
		return entity.MovementKindExit
	default:
		return ""
	}
}

// QuantityScale decimales admitidos en cantidades, mínimos y stock (columnas NUMERIC(18,4)).
const QuantityScale = 4

// MaxQuantity cota exclusiva para cantidades, mínimos y stock: 14 dígitos enteros.
var MaxQuantity = decimal.New(1, 14)

// Representable indica si q cabe sin redondeo en las columnas de cantidad.
func Representable(q decimal.Decimal) bool {
	return q.Equal(q.Truncate(QuantityScale)) && q.Abs().LessThan(MaxQuantity)
}

// ValidateQuantity exige una cantidad estrictamente positiva y representable.
func ValidateQuantity(q decimal.Decimal) error {
	if !q.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	if !Representable(q) {
		return fmt.Errorf("%w: máximo %d decimales y menor que %s", domain.ErrInvalidQuantity, QuantityScale, MaxQuantity)
	}
	return nil
}

// ValidateThreshold exige un mínimo no negativo y representable.
func ValidateThreshold(t decimal.Decimal) error {
	if t.IsNegative() {
		return domain.ErrInvalidThreshold
	}
	if !Representable(t) {
		return fmt.Errorf("%w: máximo %d decimales y menor que %s", domain.ErrInvalidThreshold, QuantityScale, MaxQuantity)
	}
	return nil
}

// SignedDelta: +quantity para ENTRY, -quantity para EXIT.
func SignedDelta(kind string, quantity decimal.Decimal) (decimal.Decimal, error) {
	switch kind {
	case entity.MovementKindEntry:
		return quantity, nil
	case entity.MovementKindExit:
		return quantity.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, kind)
	}
}

// Balance suma los deltas con signo de una secuencia de movimientos.
// Sin movimientos el saldo es cero. Un movimiento de tipo desconocido es ErrInconsistent.
func Balance(movs []*entity.StockMovement) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, m := range movs {
		d, err := SignedDelta(m.Kind, m.Quantity)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: movimiento %s con tipo %q", domain.ErrInconsistent, m.ID, m.Kind)
		}
		total = total.Add(d)
	}
	return total, nil
}

// IsLowStock: el stock igual al mínimo ya cuenta como stock bajo.
func IsLowStock(current, minimum decimal.Decimal) bool {
	return current.LessThanOrEqual(minimum)
}

// SortLowStock ordena por stock actual ascendente y desempata por código.
func SortLowStock(levels []entity.StockLevel) {
	sort.SliceStable(levels, func(i, j int) bool {
		if c := levels[i].CurrentStock.Cmp(levels[j].CurrentStock); c != 0 {
			return c < 0
		}
		return levels[i].Code < levels[j].Code
	})
}

// SelectLowStock filtra los niveles en stock bajo, los ordena y trunca a limit (limit <= 0 = sin límite).
func SelectLowStock(levels []entity.StockLevel, limit int) []entity.StockLevel {
	out := make([]entity.StockLevel, 0, len(levels))
	for _, l := range levels {
		if IsLowStock(l.CurrentStock, l.MinimumThreshold) {
			out = append(out, l)
		}
	}
	SortLowStock(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// DayWindow devuelve el intervalo semiabierto [inicio, inicio+1 día) que contiene day en loc.
// AddDate respeta los días de 23 o 25 horas por cambio de horario.
func DayWindow(day time.Time, loc *time.Location) (start, end time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	d := day.In(loc)
	start = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// ParseDay interpreta YYYY-MM-DD como un día calendario en loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: día %q (formato YYYY-MM-DD)", domain.ErrInvalidInput, s)
	}
	return t, nil
}

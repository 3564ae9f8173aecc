package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del diario.
const (
	MovementKindEntry = "ENTRY" // entrada: suma al stock
	MovementKindExit  = "EXIT"  // salida: resta del stock
)

// StockMovement es un registro inmutable del diario de stock.
// Quantity es siempre positiva; el signo lo define Kind.
type StockMovement struct {
	ID             string
	Seq            int64 // orden de inserción; desempata movimientos con el mismo OccurredAt
	ProductID      string
	Kind           string
	Quantity       decimal.Decimal
	OccurredAt     time.Time
	Note           string
	IdempotencyKey string // vacío si el cliente no envió llave
	CreatedAt      time.Time
	CreatedBy      string // UserID del token; vacío desde el CLI
}

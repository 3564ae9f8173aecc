package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordMovementRequest body para POST /api/inventory/movements.
// La llave de idempotencia llega por el header Idempotency-Key.
type RecordMovementRequest struct {
	ProductID  string          `json:"product_id" validate:"required"`
	Kind       string          `json:"kind" validate:"required"` // ENTRY | EXIT (acepta entrada/salida)
	Quantity   decimal.Decimal `json:"quantity"`
	OccurredAt *time.Time      `json:"occurred_at,omitempty"` // por defecto la hora del servidor
	Note       string          `json:"note" validate:"max=500"`
}

// RecordMovementResponse resultado del registro.
type RecordMovementResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	LowStock     bool            `json:"low_stock"`
	Replayed     bool            `json:"replayed"` // true si la llave ya estaba registrada
}

// MovementResponse un movimiento del diario.
type MovementResponse struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	Kind       string          `json:"kind"`
	Quantity   decimal.Decimal `json:"quantity"`
	OccurredAt time.Time       `json:"occurred_at"`
	Note       string          `json:"note,omitempty"`
	CreatedBy  string          `json:"created_by,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// MovementPageResponse página del diario con cursor para la siguiente.
type MovementPageResponse struct {
	Items      []MovementResponse `json:"items"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

// StockLevelResponse stock actual de un producto frente a su mínimo.
type StockLevelResponse struct {
	ProductID        string          `json:"product_id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Unit             string          `json:"unit"`
	CurrentStock     decimal.Decimal `json:"current_stock"`
	MinimumThreshold decimal.Decimal `json:"minimum_threshold"`
	LowStock         bool            `json:"low_stock"`
}

// StockVerificationResponse comparación del stock materializado contra el diario.
type StockVerificationResponse struct {
	ProductID  string          `json:"product_id"`
	Journal    decimal.Decimal `json:"journal"`
	Cached     decimal.Decimal `json:"cached"`
	Consistent bool            `json:"consistent"`
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel proyección derivada: stock actual de un producto frente a su mínimo.
type StockLevel struct {
	ProductID        string
	Code             string
	Name             string
	Unit             string
	CurrentStock     decimal.Decimal
	MinimumThreshold decimal.Decimal
}

// DailyTotals unidades que entraron y salieron en un día de referencia.
type DailyTotals struct {
	Day     time.Time // inicio del día en la zona configurada
	Entries decimal.Decimal
	Exits   decimal.Decimal
}

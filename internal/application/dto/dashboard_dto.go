package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
type DashboardSummaryDTO struct {
	Day           string `json:"day"` // YYYY-MM-DD en la zona configurada
	Timezone      string `json:"timezone"`
	TotalProducts int    `json:"total_products"`
	LowStockCount int    `json:"low_stock_count"` // total, no solo el preview
	DailyTotalsDTO
	LowStockPreview []StockLevelResponse `json:"low_stock_preview"`
	GeneratedAt     time.Time            `json:"generated_at"`
}

// DailyTotalsDTO unidades que entraron y salieron en el día.
type DailyTotalsDTO struct {
	Entries decimal.Decimal `json:"entries"`
	Exits   decimal.Decimal `json:"exits"`
}

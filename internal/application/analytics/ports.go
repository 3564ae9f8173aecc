package analytics

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
)

// ReportRenderer genera el reporte imprimible del dashboard (PDF).
type ReportRenderer interface {
	RenderDashboard(ctx context.Context, summary *dto.DashboardSummaryDTO) ([]byte, error)
}

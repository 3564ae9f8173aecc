package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// DashboardHandler maneja los endpoints del dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// dayParam lee ?day=YYYY-MM-DD en la zona del dashboard; vacío = hoy (nil).
func (h *DashboardHandler) dayParam(c *fiber.Ctx) (*time.Time, error) {
	s := c.Query("day")
	if s == "" {
		return nil, nil
	}
	d, err := domaininv.ParseDay(s, h.uc.Location())
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetSummary devuelve el resumen del día.
// GET /api/dashboard/summary?day=YYYY-MM-DD
//
// Respuesta: DashboardSummaryDTO (total_products, low_stock_count, entries, exits,
// low_stock_preview[5]). Sin day se usa el día actual en LEDGER_TIMEZONE.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	day, err := h.dayParam(c)
	if err != nil {
		return respondError(c, err)
	}
	summary, err := h.uc.GetSummary(c.UserContext(), day)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

// GetDailyTotals devuelve entradas y salidas del día.
// GET /api/dashboard/daily-totals?day=YYYY-MM-DD
func (h *DashboardHandler) GetDailyTotals(c *fiber.Ctx) error {
	day, err := h.dayParam(c)
	if err != nil {
		return respondError(c, err)
	}
	ref := h.uc.Today()
	if day != nil {
		ref = *day
	}
	totals, err := h.uc.DailyTotals(c.UserContext(), ref)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"day":      totals.Day.Format("2006-01-02"),
		"timezone": h.uc.Location().String(),
		"totals":   dto.DailyTotalsDTO{Entries: totals.Entries, Exits: totals.Exits},
	})
}

// GetReport devuelve el resumen del día como PDF.
// GET /api/dashboard/report.pdf?day=YYYY-MM-DD
func (h *DashboardHandler) GetReport(c *fiber.Ctx) error {
	day, err := h.dayParam(c)
	if err != nil {
		return respondError(c, err)
	}
	pdf, err := h.uc.RenderReport(c.UserContext(), day)
	if err != nil {
		return respondError(c, err)
	}
	name := "inventario-" + h.uc.Today().Format("2006-01-02") + ".pdf"
	if day != nil {
		name = "inventario-" + day.Format("2006-01-02") + ".pdf"
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+name+`"`)
	return c.Send(pdf)
}

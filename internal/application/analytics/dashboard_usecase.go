// Package analytics contiene los casos de uso de solo lectura del dashboard de inventario.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/clock"
)

const defaultPreviewSize = 5 // productos en el widget de stock bajo

// ErrNoRenderer se devuelve cuando no hay generador de reportes configurado.
var ErrNoRenderer = errors.New("generador de reportes no configurado")

// DashboardUseCase compone el resumen del día: totales de entradas/salidas, cantidad de
// productos y stock bajo. No escribe nada.
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	stockRepo     repository.StockRepository
	productRepo   repository.ProductRepository
	clock         clock.Clock
	loc           *time.Location
	previewSize   int
	renderer      ReportRenderer
}

// DashboardConfig zona horaria que define "hoy" y tamaño del preview de stock bajo.
type DashboardConfig struct {
	Location    *time.Location // UTC si es nil
	PreviewSize int            // 5 si es <= 0
}

// NewDashboardUseCase construye el caso de uso. renderer puede ser nil.
func NewDashboardUseCase(
	analyticsRepo repository.AnalyticsRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	clk clock.Clock,
	cfg DashboardConfig,
	renderer ReportRenderer,
) *DashboardUseCase {
	if clk == nil {
		clk = clock.System{}
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.PreviewSize <= 0 {
		cfg.PreviewSize = defaultPreviewSize
	}
	return &DashboardUseCase{
		analyticsRepo: analyticsRepo,
		stockRepo:     stockRepo,
		productRepo:   productRepo,
		clock:         clk,
		loc:           cfg.Location,
		previewSize:   cfg.PreviewSize,
		renderer:      renderer,
	}
}

// Location zona horaria con la que se delimitan los días.
func (uc *DashboardUseCase) Location() *time.Location { return uc.loc }

// Today inicio del día actual en la zona configurada.
func (uc *DashboardUseCase) Today() time.Time {
	start, _ := domaininv.DayWindow(uc.clock.Now(), uc.loc)
	return start
}

// DailyTotals suma entradas y salidas con occurred_at en [inicio del día, inicio + 1 día).
// Un día sin movimientos devuelve ceros.
func (uc *DashboardUseCase) DailyTotals(ctx context.Context, day time.Time) (*entity.DailyTotals, error) {
	start, end := domaininv.DayWindow(day, uc.loc)
	entries, exits, err := uc.analyticsRepo.GetMovementTotals(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return &entity.DailyTotals{Day: start, Entries: entries, Exits: exits}, nil
}

// LowStockPreview primeros productos en stock bajo (limit <= 0 usa el tamaño configurado).
func (uc *DashboardUseCase) LowStockPreview(ctx context.Context, limit int) ([]dto.StockLevelResponse, error) {
	if limit <= 0 {
		limit = uc.previewSize
	}
	levels, err := uc.stockRepo.ListLowStock(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockLevelResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, inventory.ToStockLevelResponse(l))
	}
	return out, nil
}

// TotalProductCount cantidad de productos activos.
func (uc *DashboardUseCase) TotalProductCount(ctx context.Context) (int, error) {
	return uc.productRepo.Count(ctx)
}

// GetSummary construye el DashboardSummaryDTO del día indicado (nil = hoy).
//
// Tres consultas en paralelo:
//  1. GetMovementTotals(día)     → entradas y salidas
//  2. Count                      → productos activos
//  3. LowStockSnapshot(preview)  → preview ordenado y total en stock bajo, misma lectura
//
// Si alguna falla no se devuelve un resumen parcial.
func (uc *DashboardUseCase) GetSummary(ctx context.Context, day *time.Time) (*dto.DashboardSummaryDTO, error) {
	ref := uc.clock.Now()
	if day != nil {
		ref = *day
	}

	type totalsResult struct {
		totals *entity.DailyTotals
		err    error
	}
	type countResult struct {
		n   int
		err error
	}
	type previewResult struct {
		items []dto.StockLevelResponse
		total int
		err   error
	}

	totalsCh := make(chan totalsResult, 1)
	productsCh := make(chan countResult, 1)
	previewCh := make(chan previewResult, 1)

	go func() {
		t, err := uc.DailyTotals(ctx, ref)
		totalsCh <- totalsResult{t, err}
	}()
	go func() {
		n, err := uc.TotalProductCount(ctx)
		productsCh <- countResult{n, err}
	}()
	go func() {
		levels, total, err := uc.stockRepo.LowStockSnapshot(ctx, uc.previewSize)
		items := make([]dto.StockLevelResponse, 0, len(levels))
		for _, l := range levels {
			items = append(items, inventory.ToStockLevelResponse(l))
		}
		previewCh <- previewResult{items, total, err}
	}()

	totals := <-totalsCh
	products := <-productsCh
	preview := <-previewCh

	if totals.err != nil {
		return nil, fmt.Errorf("dashboard: totales del día: %w", totals.err)
	}
	if products.err != nil {
		return nil, fmt.Errorf("dashboard: total de productos: %w", products.err)
	}
	if preview.err != nil {
		return nil, fmt.Errorf("dashboard: preview de stock bajo: %w", preview.err)
	}

	return &dto.DashboardSummaryDTO{
		Day:           totals.totals.Day.Format("2006-01-02"),
		Timezone:      uc.loc.String(),
		TotalProducts: products.n,
		LowStockCount: preview.total,
		DailyTotalsDTO: dto.DailyTotalsDTO{
			Entries: totals.totals.Entries,
			Exits:   totals.totals.Exits,
		},
		LowStockPreview: preview.items,
		GeneratedAt:     uc.clock.Now(),
	}, nil
}

// RenderReport genera el PDF del resumen del día indicado (nil = hoy).
func (uc *DashboardUseCase) RenderReport(ctx context.Context, day *time.Time) ([]byte, error) {
	if uc.renderer == nil {
		return nil, ErrNoRenderer
	}
	summary, err := uc.GetSummary(ctx, day)
	if err != nil {
		return nil, err
	}
	return uc.renderer.RenderDashboard(ctx, summary)
}

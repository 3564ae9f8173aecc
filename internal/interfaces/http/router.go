package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC    *usecase.ProductUseCase
	CategoryUC   *usecase.CategoryUseCase
	RecordUC     *inventory.RecordMovementUseCase
	JournalUC    *inventory.JournalUseCase
	StockUC      *inventory.StockUseCase
	DashboardUC  *appanalytics.DashboardUseCase
	JWTSecret    string
	StoreTimeout time.Duration // límite por petición; 0 = sin límite
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), StoreTimeout(deps.StoreTimeout))

	// Categories
	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Post("/", categoryHandler.Create)
	categories.Get("/", categoryHandler.List)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	inventoryHandler := NewInventoryHandler(deps.RecordUC, deps.JournalUC, deps.StockUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)
	products.Get("/:id/stock", inventoryHandler.GetStock)
	products.Get("/:id/stock/verify", inventoryHandler.VerifyStock)
	products.Get("/:id/movements", inventoryHandler.ListMovements)

	// Inventory movements
	invGroup := protected.Group("/inventory")
	invGroup.Post("/movements", inventoryHandler.RecordMovement)
	invGroup.Get("/low-stock", inventoryHandler.ListLowStock)

	// Dashboard
	dashboard := protected.Group("/dashboard")
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	dashboard.Get("/summary", dashboardHandler.GetSummary)
	dashboard.Get("/daily-totals", dashboardHandler.GetDailyTotals)
	dashboard.Get("/report.pdf", dashboardHandler.GetReport)
}

// Package bootstrap arma los adaptadores y casos de uso a partir de la configuración.
// Lo comparten la API y el CLI de operación.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	appanalytics "github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/stock-ledger/internal/infrastructure/redis"
	"github.com/jhoicas/stock-ledger/pkg/clock"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

// App contenedor de dependencias ya conectadas.
type App struct {
	Config *config.Config

	ProductUC   *usecase.ProductUseCase
	CategoryUC  *usecase.CategoryUseCase
	RecordUC    *inventory.RecordMovementUseCase
	JournalUC   *inventory.JournalUseCase
	StockUC     *inventory.StockUseCase
	DashboardUC *appanalytics.DashboardUseCase

	pool  *pgxpool.Pool
	redis *goredis.Client
}

type stores struct {
	tx         inventory.TxRunner
	products   repository.ProductRepository
	categories repository.CategoryRepository
	movements  repository.StockMovementRepository
	stock      repository.StockRepository
	analytics  repository.AnalyticsRepository
}

// New conecta el almacenamiento según STORE_DRIVER, la guardia de idempotencia (Redis si hay
// REDIS_URL, en memoria si no) y construye los casos de uso.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	var st stores
	switch cfg.DB.Driver {
	case "memory":
		log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al terminar el proceso")
		s := memory.NewStore()
		st = stores{
			tx:         s,
			products:   memory.NewProductRepository(s),
			categories: memory.NewCategoryRepository(s),
			movements:  memory.NewMovementRepository(s),
			stock:      memory.NewStockRepository(s),
			analytics:  memory.NewAnalyticsRepository(s),
		}
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		app.pool = pool
		st = stores{
			tx:         postgres.NewTxRunner(pool),
			products:   postgres.NewProductRepository(pool),
			categories: postgres.NewCategoryRepository(pool),
			movements:  postgres.NewMovementRepository(pool),
			stock:      postgres.NewStockRepository(pool),
			analytics:  postgres.NewAnalyticsRepository(pool),
		}
	}

	var guard inventory.IdempotencyGuard
	if cfg.Redis.URL != "" {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis.URL, cfg.DB.Timeout())
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("conexión a Redis: %w", err)
		}
		app.redis = rdb
		guard = infraredis.NewIdempotencyGuard(rdb, cfg.IdempotencyLockTTL())
	} else {
		guard = memory.NewIdempotencyGuard(cfg.IdempotencyLockTTL(), nil)
	}

	loc, err := cfg.Ledger.Location()
	if err != nil {
		app.Close()
		return nil, err
	}
	clk := clock.System{}

	app.ProductUC = usecase.NewProductUseCase(st.products, st.categories, st.tx, clk)
	app.CategoryUC = usecase.NewCategoryUseCase(st.categories, clk)
	app.RecordUC = inventory.NewRecordMovementUseCase(st.tx, st.movements, st.stock, st.products, guard, clk)
	app.JournalUC = inventory.NewJournalUseCase(st.movements, st.products, 0)
	app.StockUC = inventory.NewStockUseCase(st.tx, st.products, st.stock)
	app.DashboardUC = appanalytics.NewDashboardUseCase(
		st.analytics, st.stock, st.products, clk,
		appanalytics.DashboardConfig{Location: loc, PreviewSize: cfg.Ledger.LowStockPreview},
		infrapdf.NewMarotoReportGenerator(cfg.App.Name),
	)
	return app, nil
}

// Migrate aplica las migraciones embebidas. Con el driver memory no hace nada.
func (a *App) Migrate(ctx context.Context) error {
	if a.pool == nil {
		return nil
	}
	return postgres.Migrate(ctx, a.pool)
}

// Close libera las conexiones abiertas.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar Redis")
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

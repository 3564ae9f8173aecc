package inventory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const maxLowStockLimit = 500

// StockUseCase lecturas del stock derivado del diario.
type StockUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(txRunner TxRunner, productRepo repository.ProductRepository, stockRepo repository.StockRepository) *StockUseCase {
	return &StockUseCase{txRunner: txRunner, productRepo: productRepo, stockRepo: stockRepo}
}

// CurrentStock suma del diario del producto (cero si no tiene movimientos).
func (uc *StockUseCase) CurrentStock(ctx context.Context, productID string) (decimal.Decimal, error) {
	level, err := uc.level(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	return level.CurrentStock, nil
}

// IsLowStock indica si el stock actual está en o por debajo del mínimo.
func (uc *StockUseCase) IsLowStock(ctx context.Context, productID string) (bool, error) {
	level, err := uc.level(ctx, productID)
	if err != nil {
		return false, err
	}
	return inventory.IsLowStock(level.CurrentStock, level.MinimumThreshold), nil
}

// GetStockLevel stock actual, mínimo y clasificación de un producto.
func (uc *StockUseCase) GetStockLevel(ctx context.Context, productID string) (*dto.StockLevelResponse, error) {
	level, err := uc.level(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := ToStockLevelResponse(*level)
	return &out, nil
}

func (uc *StockUseCase) level(ctx context.Context, productID string) (*entity.StockLevel, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrUnknownProduct
	}
	current, err := uc.stockRepo.CurrentStock(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	return &entity.StockLevel{
		ProductID:        product.ID,
		Code:             product.Code,
		Name:             product.Name,
		Unit:             product.Unit,
		CurrentStock:     current,
		MinimumThreshold: product.MinimumThreshold,
	}, nil
}

// ListLowStock productos en stock bajo, más agotados primero y por código en empates.
// El filtro y el orden se resuelven en el almacenamiento.
func (uc *StockUseCase) ListLowStock(ctx context.Context, limit int) ([]dto.StockLevelResponse, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if limit > maxLowStockLimit {
		limit = maxLowStockLimit
	}
	levels, err := uc.stockRepo.ListLowStock(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockLevelResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, ToStockLevelResponse(l))
	}
	return out, nil
}

// CountLowStock cantidad total de productos en stock bajo.
func (uc *StockUseCase) CountLowStock(ctx context.Context) (int, error) {
	return uc.stockRepo.CountLowStock(ctx)
}

// LowStockSnapshot como ListLowStock pero con el total de la misma lectura.
func (uc *StockUseCase) LowStockSnapshot(ctx context.Context, limit int) ([]dto.StockLevelResponse, int, error) {
	if limit <= 0 {
		return nil, 0, fmt.Errorf("%w: limit debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if limit > maxLowStockLimit {
		limit = maxLowStockLimit
	}
	levels, total, err := uc.stockRepo.LowStockSnapshot(ctx, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.StockLevelResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, ToStockLevelResponse(l))
	}
	return out, total, nil
}

// VerifyStock compara el stock materializado con la suma del diario bajo el bloqueo del producto.
// Si difieren devuelve el detalle junto con un error ErrInconsistent.
func (uc *StockUseCase) VerifyStock(ctx context.Context, productID string) (*dto.StockVerificationResponse, error) {
	var out dto.StockVerificationResponse
	err := uc.txRunner.Run(ctx, func(
		_ repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		product, err := productRepo.LockByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrUnknownProduct
		}
		journal, err := stockRepo.CurrentStock(ctx, product.ID)
		if err != nil {
			return err
		}
		cached, err := stockRepo.CachedStock(ctx, product.ID)
		if err != nil {
			return err
		}
		out = dto.StockVerificationResponse{
			ProductID:  product.ID,
			Journal:    journal,
			Cached:     cached,
			Consistent: journal.Equal(cached),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !out.Consistent {
		log.Error().
			Str("product_id", out.ProductID).
			Str("journal", out.Journal.String()).
			Str("cached", out.Cached.String()).
			Msg("stock materializado no coincide con el diario")
		return &out, fmt.Errorf("%w: diario=%s materializado=%s", domain.ErrInconsistent, out.Journal, out.Cached)
	}
	return &out, nil
}

// RebuildStock recalcula el stock materializado desde el diario y devuelve el valor resultante.
func (uc *StockUseCase) RebuildStock(ctx context.Context, productID string) (decimal.Decimal, error) {
	var rebuilt decimal.Decimal
	err := uc.txRunner.Run(ctx, func(
		_ repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		product, err := productRepo.LockByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrUnknownProduct
		}
		rebuilt, err = stockRepo.Rebuild(ctx, product.ID)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	log.Info().Str("product_id", productID).Str("stock", rebuilt.String()).Msg("stock materializado recalculado")
	return rebuilt, nil
}

// ToStockLevelResponse mapea la proyección de stock al DTO de salida.
func ToStockLevelResponse(l entity.StockLevel) dto.StockLevelResponse {
	return dto.StockLevelResponse{
		ProductID:        l.ProductID,
		Code:             l.Code,
		Name:             l.Name,
		Unit:             l.Unit,
		CurrentStock:     l.CurrentStock,
		MinimumThreshold: l.MinimumThreshold,
		LowStock:         inventory.IsLowStock(l.CurrentStock, l.MinimumThreshold),
	}
}

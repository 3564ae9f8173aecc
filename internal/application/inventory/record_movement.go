package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/clock"
)

const maxIdempotencyKeyLen = 200

// RecordMovementUseCase registra entradas y salidas en el diario de forma transaccional:
// bloquea la fila del producto (SELECT FOR UPDATE), inserta el movimiento y actualiza el
// stock materializado en la misma transacción.
type RecordMovementUseCase struct {
	txRunner    TxRunner
	movRepo     repository.StockMovementRepository
	stockRepo   repository.StockRepository
	productRepo repository.ProductRepository
	guard       IdempotencyGuard // opcional
	clock       clock.Clock
}

// NewRecordMovementUseCase construye el caso de uso. guard puede ser nil.
func NewRecordMovementUseCase(
	txRunner TxRunner,
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	guard IdempotencyGuard,
	clk clock.Clock,
) *RecordMovementUseCase {
	if clk == nil {
		clk = clock.System{}
	}
	return &RecordMovementUseCase{
		txRunner:    txRunner,
		movRepo:     movRepo,
		stockRepo:   stockRepo,
		productRepo: productRepo,
		guard:       guard,
		clock:       clk,
	}
}

// RecordMovementInput entrada para registrar un movimiento.
type RecordMovementInput struct {
	UserID         string
	ProductID      string
	Kind           string
	Quantity       decimal.Decimal
	OccurredAt     *time.Time // nil = hora actual
	Note           string
	IdempotencyKey string
}

// RecordMovement valida, bloquea el producto y agrega el movimiento al diario.
// Con llave de idempotencia, repetir la misma solicitud devuelve el movimiento original
// (Replayed=true); reutilizar la llave con otros datos falla con ErrIdempotencyConflict.
func (uc *RecordMovementUseCase) RecordMovement(ctx context.Context, in RecordMovementInput) (*dto.RecordMovementResponse, error) {
	kind := inventory.NormalizeKind(in.Kind)
	if kind == "" {
		return nil, fmt.Errorf("%w: kind debe ser ENTRY o EXIT", domain.ErrInvalidInput)
	}
	if err := inventory.ValidateQuantity(in.Quantity); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > maxIdempotencyKeyLen {
		return nil, fmt.Errorf("%w: llave de idempotencia demasiado larga", domain.ErrInvalidInput)
	}

	if key != "" {
		out, err := uc.replay(ctx, key, in.ProductID, kind, in.Quantity)
		if err != nil || out != nil {
			return out, err
		}
		if uc.guard != nil {
			ok, err := uc.guard.Acquire(ctx, key)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, domain.ErrRequestInFlight
			}
			defer func() {
				if err := uc.guard.Release(context.WithoutCancel(ctx), key); err != nil {
					log.Warn().Err(err).Str("idempotency_key", key).Msg("liberar llave de idempotencia")
				}
			}()
		}
	}

	now := uc.clock.Now()
	occurredAt := now
	if in.OccurredAt != nil && !in.OccurredAt.IsZero() {
		occurredAt = *in.OccurredAt
	}
	mov := &entity.StockMovement{
		ID:             uuid.New().String(),
		ProductID:      in.ProductID,
		Kind:           kind,
		Quantity:       in.Quantity,
		OccurredAt:     occurredAt,
		Note:           strings.TrimSpace(in.Note),
		IdempotencyKey: key,
		CreatedAt:      now,
		CreatedBy:      in.UserID,
	}

	var level entity.StockLevel
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		// Bloquea la fila del producto: dos movimientos del mismo producto se serializan aquí
		product, err := productRepo.LockByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrUnknownProduct
		}
		current, err := stockRepo.CurrentStock(ctx, product.ID)
		if err != nil {
			return err
		}
		delta, err := inventory.SignedDelta(kind, in.Quantity)
		if err != nil {
			return err
		}
		next := current.Add(delta)
		if next.IsNegative() {
			return fmt.Errorf("%w: disponible %s, solicitado %s", domain.ErrInsufficientStock, current, in.Quantity)
		}
		if next.GreaterThanOrEqual(inventory.MaxQuantity) {
			return fmt.Errorf("%w: el stock resultante %s supera el máximo", domain.ErrInvalidQuantity, next)
		}
		if err := movRepo.Append(ctx, mov); err != nil {
			return err
		}
		cached, err := stockRepo.ApplyDelta(ctx, product.ID, delta)
		if err != nil {
			return err
		}
		if !cached.Equal(next) {
			return fmt.Errorf("%w: producto %s diario=%s materializado=%s", domain.ErrInconsistent, product.Code, next, cached)
		}
		level = entity.StockLevel{
			ProductID:        product.ID,
			Code:             product.Code,
			Name:             product.Name,
			Unit:             product.Unit,
			CurrentStock:     next,
			MinimumThreshold: product.MinimumThreshold,
		}
		return nil
	})
	if err != nil {
		if key != "" && errors.Is(err, domain.ErrDuplicate) {
			// Otra solicitud con la misma llave confirmó primero
			out, rerr := uc.replay(ctx, key, in.ProductID, kind, in.Quantity)
			if rerr != nil {
				return nil, rerr
			}
			if out != nil {
				return out, nil
			}
		}
		if errors.Is(err, domain.ErrInconsistent) {
			log.Error().Err(err).Str("product_id", in.ProductID).Msg("stock materializado no coincide con el diario")
		}
		return nil, err
	}

	log.Debug().
		Str("movement_id", mov.ID).
		Str("product_id", mov.ProductID).
		Str("kind", mov.Kind).
		Str("quantity", mov.Quantity.String()).
		Str("user_id", in.UserID).
		Msg("movimiento registrado")

	return &dto.RecordMovementResponse{
		ID:           mov.ID,
		ProductID:    mov.ProductID,
		CurrentStock: level.CurrentStock,
		LowStock:     inventory.IsLowStock(level.CurrentStock, level.MinimumThreshold),
	}, nil
}

// replay devuelve (nil, nil) si la llave no existe; si existe compara los datos con la solicitud.
func (uc *RecordMovementUseCase) replay(ctx context.Context, key, productID, kind string, qty decimal.Decimal) (*dto.RecordMovementResponse, error) {
	existing, err := uc.movRepo.GetByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	if existing.ProductID != productID || existing.Kind != kind || !existing.Quantity.Equal(qty) {
		return nil, domain.ErrIdempotencyConflict
	}
	product, err := uc.productRepo.GetByID(ctx, existing.ProductID)
	if err != nil {
		return nil, err
	}
	current, err := uc.stockRepo.CurrentStock(ctx, existing.ProductID)
	if err != nil {
		return nil, err
	}
	out := &dto.RecordMovementResponse{
		ID:           existing.ID,
		ProductID:    existing.ProductID,
		CurrentStock: current,
		Replayed:     true,
	}
	if product != nil {
		out.LowStock = inventory.IsLowStock(current, product.MinimumThreshold)
	}
	return out, nil
}

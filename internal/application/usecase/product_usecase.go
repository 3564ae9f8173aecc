package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/clock"
)

// ProductUseCase casos de uso del catálogo. El stock nunca se edita aquí: solo vía movimientos.
type ProductUseCase struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	txRunner     inventory.TxRunner
	clock        clock.Clock
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	txRunner inventory.TxRunner,
	clk clock.Clock,
) *ProductUseCase {
	if clk == nil {
		clk = clock.System{}
	}
	return &ProductUseCase{repo: repo, categoryRepo: categoryRepo, txRunner: txRunner, clock: clk}
}

// Create crea un producto. Falla con ErrDuplicateCode si el código ya existe entre productos activos.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)
	unit := strings.TrimSpace(in.Unit)
	if code == "" || name == "" || unit == "" {
		return nil, fmt.Errorf("%w: code, name y unit son requeridos", domain.ErrInvalidInput)
	}
	if err := domaininv.ValidateThreshold(in.MinimumThreshold); err != nil {
		return nil, err
	}
	if err := uc.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateCode
	}

	now := uc.clock.Now()
	product := &entity.Product{
		ID:               uuid.New().String(),
		Code:             code,
		Name:             name,
		Unit:             unit,
		MinimumThreshold: in.MinimumThreshold,
		CategoryID:       strings.TrimSpace(in.CategoryID),
		Description:      strings.TrimSpace(in.Description),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID. Devuelve (nil, nil) si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return toProductResponse(product), nil
}

// GetByCode obtiene un producto activo por código. Devuelve (nil, nil) si no existe.
func (uc *ProductUseCase) GetByCode(ctx context.Context, code string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil || product == nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Update actualiza los campos enviados. El código es inmutable. Devuelve (nil, nil) si no existe.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name no puede quedar vacío", domain.ErrInvalidInput)
		}
		product.Name = name
	}
	if in.Unit != nil {
		unit := strings.TrimSpace(*in.Unit)
		if unit == "" {
			return nil, fmt.Errorf("%w: unit no puede quedar vacío", domain.ErrInvalidInput)
		}
		product.Unit = unit
	}
	if in.MinimumThreshold != nil {
		if err := domaininv.ValidateThreshold(*in.MinimumThreshold); err != nil {
			return nil, err
		}
		product.MinimumThreshold = *in.MinimumThreshold
	}
	if in.CategoryID != nil {
		if err := uc.checkCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = strings.TrimSpace(*in.CategoryID)
	}
	if in.Description != nil {
		product.Description = strings.TrimSpace(*in.Description)
	}
	product.UpdatedAt = uc.clock.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Search busca por subcadena de código o nombre (sin distinguir mayúsculas), ordenado por nombre.
// Una búsqueda vacía lista todos los productos activos. Cada ítem trae categoría, stock y alerta de stock bajo.
func (uc *ProductUseCase) Search(ctx context.Context, query string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	query = strings.TrimSpace(query)
	list, err := uc.repo.Search(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.CountSearch(ctx, query)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductListItem, 0, len(list))
	for _, p := range list {
		items = append(items, dto.ProductListItem{
			ProductResponse: *toProductResponse(&p.Product),
			CategoryName:    p.CategoryName,
			CategoryColor:   p.CategoryColor,
			CurrentStock:    p.CurrentStock,
			LowStock:        domaininv.IsLowStock(p.CurrentStock, p.MinimumThreshold),
		})
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Count cantidad de productos activos.
func (uc *ProductUseCase) Count(ctx context.Context) (int, error) {
	return uc.repo.Count(ctx)
}

// Delete da de baja un producto sin movimientos. Con movimientos falla con ErrProductHasMovements:
// el diario nunca pierde la referencia a su producto.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	return uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		_ repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		product, err := productRepo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		n, err := movRepo.CountByProduct(ctx, product.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrProductHasMovements
		}
		return productRepo.SoftDelete(ctx, product.ID, uc.clock.Now())
	})
}

func (uc *ProductUseCase) checkCategory(ctx context.Context, categoryID string) error {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return nil
	}
	if _, err := uuid.Parse(categoryID); err != nil {
		return domain.ErrUnknownCategory
	}
	c, err := uc.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrUnknownCategory
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:               p.ID,
		Code:             p.Code,
		Name:             p.Name,
		Unit:             p.Unit,
		MinimumThreshold: p.MinimumThreshold,
		CategoryID:       p.CategoryID,
		Description:      p.Description,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID, GetByCode y LockByID devuelven (nil, nil) si el producto no existe o fue eliminado.
type ProductRepository interface {
	// Create falla con domain.ErrDuplicateCode si el código ya existe entre productos activos.
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	// LockByID lee el producto bloqueando su fila hasta el fin de la transacción.
	// Serializa los movimientos concurrentes de un mismo producto.
	LockByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// Search busca por subcadena en código o nombre sin distinguir mayúsculas, ordenado por nombre.
	// Cada fila trae el nombre y color de su categoría y el stock materializado (0 sin movimientos).
	Search(ctx context.Context, query string, limit, offset int) ([]*entity.ProductListing, error)
	CountSearch(ctx context.Context, query string) (int, error)
	// Count cuenta productos no eliminados.
	Count(ctx context.Context) (int, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
}

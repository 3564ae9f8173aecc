package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, code, name, unit, minimum_threshold, COALESCE(category_id::text, ''), description, created_at, updated_at, deleted_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.Unit, &p.MinimumThreshold, &p.CategoryID,
		&p.Description, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, code, name, unit, minimum_threshold, category_id, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Code, product.Name, product.Unit, product.MinimumThreshold,
		nullable(product.CategoryID), product.Description, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrDuplicateCode
		case isCheckViolation(err):
			return domain.ErrInvalidThreshold
		}
		return mapStoreError("insert product", err)
	}
	return nil
}

func (r *ProductRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapStoreError(op, err)
	}
	return p, nil
}

// GetByID obtiene un producto activo por ID. Devuelve (nil, nil) si no existe o está dado de baja.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if !validUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "get product",
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND deleted_at IS NULL`, id)
}

// GetByCode obtiene un producto activo por código.
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	return r.getOne(ctx, "get product by code",
		`SELECT `+productColumns+` FROM products WHERE code = $1 AND deleted_at IS NULL`, code)
}

// LockByID obtiene el producto y bloquea su fila (SELECT FOR UPDATE) hasta el fin de la tx.
// Serializa los movimientos concurrentes de un mismo producto.
func (r *ProductRepo) LockByID(ctx context.Context, id string) (*entity.Product, error) {
	if !validUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "lock product",
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id)
}

// Update actualiza los campos editables. El código no se modifica.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET name = $2, unit = $3, minimum_threshold = $4, category_id = $5, description = $6, updated_at = $7
		WHERE id = $1 AND deleted_at IS NULL`
	cmd, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Unit, product.MinimumThreshold,
		nullable(product.CategoryID), product.Description, product.UpdatedAt,
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInvalidThreshold
		}
		return mapStoreError("update product", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const searchFilter = `
	deleted_at IS NULL
	AND ($1::text = '' OR code ILIKE '%' || $1::text || '%' OR name ILIKE '%' || $1::text || '%')`

const listingFilter = `
	p.deleted_at IS NULL
	AND ($1::text = '' OR p.code ILIKE '%' || $1::text || '%' OR p.name ILIKE '%' || $1::text || '%')`

// Search busca por subcadena de código o nombre, ordenado por nombre y luego código.
// La categoría y el stock salen de la misma consulta.
func (r *ProductRepo) Search(ctx context.Context, query string, limit, offset int) ([]*entity.ProductListing, error) {
	sql := `
		SELECT p.id, p.code, p.name, p.unit, p.minimum_threshold, COALESCE(p.category_id::text, ''),
		       p.description, p.created_at, p.updated_at, p.deleted_at,
		       COALESCE(c.name, ''), COALESCE(c.color, ''), COALESCE(s.quantity, 0)
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN product_stock s ON s.product_id = p.id
		WHERE ` + listingFilter + `
		ORDER BY lower(p.name), p.code COLLATE "C" LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, sql, escapeLike(query), limit, offset)
	if err != nil {
		return nil, mapStoreError("search products", err)
	}
	defer rows.Close()

	var list []*entity.ProductListing
	for rows.Next() {
		var it entity.ProductListing
		err := rows.Scan(
			&it.ID, &it.Code, &it.Name, &it.Unit, &it.MinimumThreshold, &it.CategoryID,
			&it.Description, &it.CreatedAt, &it.UpdatedAt, &it.DeletedAt,
			&it.CategoryName, &it.CategoryColor, &it.CurrentStock,
		)
		if err != nil {
			return nil, mapStoreError("scan product", err)
		}
		list = append(list, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, mapStoreError("search products", err)
	}
	return list, nil
}

// CountSearch total de productos que coinciden con la búsqueda.
func (r *ProductRepo) CountSearch(ctx context.Context, query string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE `+searchFilter, escapeLike(query)).Scan(&n)
	if err != nil {
		return 0, mapStoreError("count search", err)
	}
	return n, nil
}

// Count cantidad de productos activos.
func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE deleted_at IS NULL`).Scan(&n); err != nil {
		return 0, mapStoreError("count products", err)
	}
	return n, nil
}

// SoftDelete marca el producto como dado de baja.
func (r *ProductRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	if !validUUID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return mapStoreError("delete product", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct {
	v view
}

// NewProductRepository construye el repositorio sobre el store.
func NewProductRepository(s *Store) *ProductRepo {
	return &ProductRepo{v: view{s: s}}
}

func activeByCode(st *state, code string) *entity.Product {
	for _, p := range st.products {
		if !p.IsDeleted() && p.Code == code {
			return p
		}
	}
	return nil
}

// Create inserta el producto; el código debe ser único entre productos activos.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	return r.v.write(ctx, func(st *state) error {
		if activeByCode(st, product.Code) != nil {
			return domain.ErrDuplicateCode
		}
		if _, ok := st.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		st.products[product.ID] = copyProduct(product)
		return nil
	})
}

// GetByID devuelve (nil, nil) si no existe o fue eliminado.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.read(ctx, func(st *state) error {
		if p, ok := st.products[id]; ok && !p.IsDeleted() {
			out = copyProduct(p)
		}
		return nil
	})
	return out, err
}

// GetByCode busca entre productos activos.
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.read(ctx, func(st *state) error {
		if p := activeByCode(st, code); p != nil {
			out = copyProduct(p)
		}
		return nil
	})
	return out, err
}

// LockByID dentro de Run el lock del store ya serializa a los escritores.
func (r *ProductRepo) LockByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

// Update reemplaza los atributos mutables. El código no cambia.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	return r.v.write(ctx, func(st *state) error {
		cur, ok := st.products[product.ID]
		if !ok || cur.IsDeleted() {
			return domain.ErrNotFound
		}
		next := copyProduct(product)
		next.Code = cur.Code
		next.CreatedAt = cur.CreatedAt
		next.DeletedAt = nil
		st.products[product.ID] = next
		return nil
	})
}

func (r *ProductRepo) matching(st *state, query string) []*entity.Product {
	fold := cases.Fold()
	q := fold.String(query)
	list := make([]*entity.Product, 0, len(st.products))
	for _, p := range st.products {
		if p.IsDeleted() {
			continue
		}
		if q == "" || strings.Contains(fold.String(p.Code), q) || strings.Contains(fold.String(p.Name), q) {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		ni, nj := fold.String(list[i].Name), fold.String(list[j].Name)
		if ni != nj {
			return ni < nj
		}
		return list[i].Code < list[j].Code
	})
	return list
}

// Search subcadena en código o nombre con plegado Unicode de mayúsculas, ordenado por nombre.
func (r *ProductRepo) Search(ctx context.Context, query string, limit, offset int) ([]*entity.ProductListing, error) {
	var out []*entity.ProductListing
	err := r.v.read(ctx, func(st *state) error {
		list := r.matching(st, query)
		if offset >= len(list) {
			return nil
		}
		list = list[offset:]
		if limit > 0 && len(list) > limit {
			list = list[:limit]
		}
		out = make([]*entity.ProductListing, 0, len(list))
		for _, p := range list {
			item := &entity.ProductListing{Product: *copyProduct(p), CurrentStock: st.stock[p.ID]}
			if c, ok := st.categories[p.CategoryID]; ok {
				item.CategoryName = c.Name
				item.CategoryColor = c.Color
			}
			out = append(out, item)
		}
		return nil
	})
	return out, err
}

// CountSearch total de coincidencias de Search sin paginar.
func (r *ProductRepo) CountSearch(ctx context.Context, query string) (int, error) {
	var n int
	err := r.v.read(ctx, func(st *state) error {
		n = len(r.matching(st, query))
		return nil
	})
	return n, err
}

// Count productos activos.
func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.v.read(ctx, func(st *state) error {
		for _, p := range st.products {
			if !p.IsDeleted() {
				n++
			}
		}
		return nil
	})
	return n, err
}

// SoftDelete marca el producto como eliminado y libera su código.
func (r *ProductRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	return r.v.write(ctx, func(st *state) error {
		cur, ok := st.products[id]
		if !ok || cur.IsDeleted() {
			return domain.ErrNotFound
		}
		next := copyProduct(cur)
		next.DeletedAt = &at
		next.UpdatedAt = at
		st.products[id] = next
		return nil
	})
}

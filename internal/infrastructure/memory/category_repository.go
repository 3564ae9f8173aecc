package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo implementación en memoria de CategoryRepository.
type CategoryRepo struct {
	v view
}

// NewCategoryRepository construye el repositorio sobre el store.
func NewCategoryRepository(s *Store) *CategoryRepo {
	return &CategoryRepo{v: view{s: s}}
}

// Create inserta la categoría; el nombre es único sin distinguir mayúsculas.
func (r *CategoryRepo) Create(ctx context.Context, category *entity.Category) error {
	return r.v.write(ctx, func(st *state) error {
		for _, c := range st.categories {
			if strings.EqualFold(c.Name, category.Name) {
				return domain.ErrDuplicate
			}
		}
		c := *category
		st.categories[c.ID] = &c
		return nil
	})
}

// GetByID devuelve (nil, nil) si no existe.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	var out *entity.Category
	err := r.v.read(ctx, func(st *state) error {
		if c, ok := st.categories[id]; ok {
			cp := *c
			out = &cp
		}
		return nil
	})
	return out, err
}

// List todas las categorías por nombre.
func (r *CategoryRepo) List(ctx context.Context) ([]*entity.Category, error) {
	var out []*entity.Category
	err := r.v.read(ctx, func(st *state) error {
		out = make([]*entity.Category, 0, len(st.categories))
		for _, c := range st.categories {
			cp := *c
			out = append(out, &cp)
		}
		sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
		return nil
	})
	return out, err
}

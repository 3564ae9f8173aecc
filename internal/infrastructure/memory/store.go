// Package memory implementa los puertos de persistencia en memoria del proceso.
// Se usa con STORE_DRIVER=memory (desarrollo local) y en los tests de casos de uso y HTTP.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// state es una instantánea completa de los datos. Las entidades guardadas nunca se mutan:
// cada escritura reemplaza el puntero, por eso clone puede copiar solo mapas y slices.
type state struct {
	products   map[string]*entity.Product
	categories map[string]*entity.Category
	movements  []*entity.StockMovement // en orden de inserción (seq)
	byKey      map[string]*entity.StockMovement
	stock      map[string]decimal.Decimal // stock materializado por producto
	seq        int64
}

func newState() *state {
	return &state{
		products:   make(map[string]*entity.Product),
		categories: make(map[string]*entity.Category),
		byKey:      make(map[string]*entity.StockMovement),
		stock:      make(map[string]decimal.Decimal),
	}
}

func (s *state) clone() *state {
	return &state{
		products:   maps.Clone(s.products),
		categories: maps.Clone(s.categories),
		movements:  slices.Clone(s.movements),
		byKey:      maps.Clone(s.byKey),
		stock:      maps.Clone(s.stock),
		seq:        s.seq,
	}
}

// Store almacenamiento en memoria. Las escrituras se serializan con un único lock; una
// transacción trabaja sobre una copia que reemplaza al estado solo si fn termina sin error.
type Store struct {
	mu sync.RWMutex
	st *state

	failMu  sync.Mutex
	failure error
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// SetFailure hace que todas las operaciones fallen con err hasta llamar SetFailure(nil).
// Simula un almacenamiento caído o lento (domain.ErrUnavailable, domain.ErrTimeout).
func (s *Store) SetFailure(err error) {
	s.failMu.Lock()
	s.failure = err
	s.failMu.Unlock()
}

func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}
	s.failMu.Lock()
	defer s.failMu.Unlock()
	return s.failure
}

// Run ejecuta fn con repositorios atados a una copia del estado y la confirma si no hay error.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
) error) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.st.clone()
	v := view{s: s, tx: tx}
	if err := fn(&MovementRepo{v: v}, &StockRepo{v: v}, &ProductRepo{v: v}); err != nil {
		return err
	}
	// Un contexto vencido antes del commit descarta la transacción
	if err := s.check(ctx); err != nil {
		return err
	}
	s.st = tx
	return nil
}

// view enlaza un repositorio al estado compartido o a la copia de una transacción en curso.
type view struct {
	s  *Store
	tx *state
}

func (v view) read(ctx context.Context, fn func(st *state) error) error {
	if err := v.s.check(ctx); err != nil {
		return err
	}
	if v.tx != nil {
		return fn(v.tx)
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return fn(v.s.st)
}

func (v view) write(ctx context.Context, fn func(st *state) error) error {
	if err := v.s.check(ctx); err != nil {
		return err
	}
	if v.tx != nil {
		return fn(v.tx)
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	next := v.s.st.clone()
	if err := fn(next); err != nil {
		return err
	}
	v.s.st = next
	return nil
}

func copyProduct(p *entity.Product) *entity.Product {
	c := *p
	if p.DeletedAt != nil {
		t := *p.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

func copyMovement(m *entity.StockMovement) *entity.StockMovement {
	c := *m
	return &c
}

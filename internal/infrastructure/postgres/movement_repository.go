package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

// MovementRepo diario de movimientos sobre PostgreSQL (usable con pool o tx).
// La tabla rechaza UPDATE y DELETE por trigger.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, seq, product_id, kind, quantity, occurred_at, note, COALESCE(idempotency_key, ''), created_at, COALESCE(created_by, '')`

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(
		&m.ID, &m.Seq, &m.ProductID, &m.Kind, &m.Quantity, &m.OccurredAt,
		&m.Note, &m.IdempotencyKey, &m.CreatedAt, &m.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Append inserta el movimiento y asigna Seq desde la secuencia de la tabla.
func (r *MovementRepo) Append(ctx context.Context, movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if !validUUID(movement.ProductID) {
		return domain.ErrUnknownProduct
	}
	query := `
		INSERT INTO stock_movements (id, product_id, kind, quantity, occurred_at, note, idempotency_key, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		movement.ID, movement.ProductID, movement.Kind, movement.Quantity, movement.OccurredAt,
		movement.Note, nullable(movement.IdempotencyKey), nullable(movement.CreatedBy), movement.CreatedAt,
	).Scan(&movement.Seq)
	if err != nil {
		switch {
		case isUniqueViolation(err) && violatedConstraint(err) == "stock_movements_idempotency_key_key":
			return domain.ErrDuplicate
		case pgCode(err) == codeForeignKeyViolation:
			return domain.ErrUnknownProduct
		case isCheckViolation(err), pgCode(err) == codeNumericOverflow:
			return fmt.Errorf("%w: %w", domain.ErrInvalidQuantity, err)
		}
		return mapStoreError("append movement", err)
	}
	return nil
}

// GetByIdempotencyKey devuelve (nil, nil) si la llave no existe.
func (r *MovementRepo) GetByIdempotencyKey(ctx context.Context, key string) (*entity.StockMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx,
		`SELECT `+movementColumns+` FROM stock_movements WHERE idempotency_key = $1`, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapStoreError("get movement by key", err)
	}
	return m, nil
}

// List movimientos del producto por (occurred_at, seq) ascendente.
// El cursor se compara como tupla para paginar sin OFFSET.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	if !validUUID(f.ProductID) {
		return nil, nil
	}
	where := []string{"product_id = $1"}
	args := []any{f.ProductID}
	add := func(cond string, v ...any) {
		for _, a := range v {
			args = append(args, a)
			cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(args)), 1)
		}
		where = append(where, cond)
	}
	if f.Kind != "" {
		add("kind = ?", f.Kind)
	}
	if f.From != nil {
		add("occurred_at >= ?", *f.From)
	}
	if f.To != nil {
		add("occurred_at < ?", *f.To)
	}
	if f.After != nil {
		add("(occurred_at, seq) > (?, ?)", f.After.OccurredAt, f.After.Seq)
	}

	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY occurred_at, seq`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapStoreError("list movements", err)
	}
	defer rows.Close()

	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, mapStoreError("scan movement", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapStoreError("list movements", err)
	}
	return list, nil
}

// CountByProduct cantidad de movimientos del producto.
func (r *MovementRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	if !validUUID(productID) {
		return 0, nil
	}
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements WHERE product_id = $1`, productID).Scan(&n)
	if err != nil {
		return 0, mapStoreError("count movements", err)
	}
	return n, nil
}

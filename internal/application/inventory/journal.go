package inventory

import (
	"context"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const defaultJournalPageSize = 200

// JournalUseCase lectura del diario de movimientos de un producto.
type JournalUseCase struct {
	movRepo     repository.StockMovementRepository
	productRepo repository.ProductRepository
	pageSize    int
}

// NewJournalUseCase construye el caso de uso. pageSize <= 0 usa 200 filas por consulta.
func NewJournalUseCase(movRepo repository.StockMovementRepository, productRepo repository.ProductRepository, pageSize int) *JournalUseCase {
	if pageSize <= 0 {
		pageSize = defaultJournalPageSize
	}
	return &JournalUseCase{movRepo: movRepo, productRepo: productRepo, pageSize: pageSize}
}

// JournalQuery filtro del diario. Kind vacío = todos; el rango es [From, To).
type JournalQuery struct {
	ProductID string
	Kind      string
	From      *time.Time
	To        *time.Time
}

func (q JournalQuery) validate() (JournalQuery, error) {
	if q.Kind != "" {
		k := inventory.NormalizeKind(q.Kind)
		if k == "" {
			return q, fmt.Errorf("%w: kind %q", domain.ErrInvalidInput, q.Kind)
		}
		q.Kind = k
	}
	if q.From != nil && q.To != nil && !q.From.Before(*q.To) {
		return q, fmt.Errorf("%w: from debe ser anterior a to", domain.ErrInvalidInput)
	}
	return q, nil
}

// Movements recorre el diario en orden (occurred_at, inserción) leyendo páginas bajo demanda.
// Cada recorrido empieza desde el principio; cortar el range detiene las consultas.
func (uc *JournalUseCase) Movements(ctx context.Context, q JournalQuery) iter.Seq2[*entity.StockMovement, error] {
	return func(yield func(*entity.StockMovement, error) bool) {
		q, err := q.validate()
		if err != nil {
			yield(nil, err)
			return
		}
		product, err := uc.productRepo.GetByID(ctx, q.ProductID)
		if err != nil {
			yield(nil, err)
			return
		}
		if product == nil {
			yield(nil, domain.ErrUnknownProduct)
			return
		}

		var after *repository.MovementCursor
		for {
			page, err := uc.movRepo.List(ctx, repository.MovementFilter{
				ProductID: q.ProductID,
				Kind:      q.Kind,
				From:      q.From,
				To:        q.To,
				After:     after,
				Limit:     uc.pageSize,
			})
			if err != nil {
				yield(nil, err)
				return
			}
			for _, m := range page {
				if !yield(m, nil) {
					return
				}
			}
			if len(page) < uc.pageSize {
				return
			}
			last := page[len(page)-1]
			after = &repository.MovementCursor{OccurredAt: last.OccurredAt, Seq: last.Seq}
		}
	}
}

// ListMovementsPage devuelve una página del diario y el cursor opaco para pedir la siguiente.
func (uc *JournalUseCase) ListMovementsPage(ctx context.Context, q JournalQuery, cursor string, limit int) (*dto.MovementPageResponse, error) {
	q, err := q.validate()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	after, err := DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	product, err := uc.productRepo.GetByID(ctx, q.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrUnknownProduct
	}

	// Se pide una fila extra para saber si hay página siguiente
	rows, err := uc.movRepo.List(ctx, repository.MovementFilter{
		ProductID: q.ProductID,
		Kind:      q.Kind,
		From:      q.From,
		To:        q.To,
		After:     after,
		Limit:     limit + 1,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.MovementPageResponse{Items: make([]dto.MovementResponse, 0, min(len(rows), limit))}
	for i, m := range rows {
		if i == limit {
			prev := rows[i-1]
			out.NextCursor = EncodeCursor(repository.MovementCursor{OccurredAt: prev.OccurredAt, Seq: prev.Seq})
			break
		}
		out.Items = append(out.Items, ToMovementResponse(m))
	}
	return out, nil
}

// EncodeCursor serializa la posición como "<unix>.<nanos>-<seq>". Los segundos pueden ser
// negativos (movimientos anteriores a 1970).
func EncodeCursor(c repository.MovementCursor) string {
	return strconv.FormatInt(c.OccurredAt.Unix(), 10) + "." +
		strconv.Itoa(c.OccurredAt.Nanosecond()) + "-" +
		strconv.FormatInt(c.Seq, 10)
}

// DecodeCursor interpreta el cursor de EncodeCursor. Cadena vacía = desde el inicio.
func DecodeCursor(s string) (*repository.MovementCursor, error) {
	if s == "" {
		return nil, nil
	}
	invalid := fmt.Errorf("%w: cursor inválido", domain.ErrInvalidInput)
	i := strings.LastIndex(s, "-")
	if i <= 0 {
		return nil, invalid
	}
	secs, nanos, ok := strings.Cut(s[:i], ".")
	if !ok {
		return nil, invalid
	}
	sec, err := strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return nil, invalid
	}
	nsec, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil || nsec < 0 || nsec >= int64(time.Second) {
		return nil, invalid
	}
	seq, err := strconv.ParseInt(s[i+1:], 10, 64)
	if err != nil || seq < 0 {
		return nil, invalid
	}
	return &repository.MovementCursor{OccurredAt: time.Unix(sec, nsec).UTC(), Seq: seq}, nil
}

// ToMovementResponse mapea un movimiento del diario al DTO de salida.
func ToMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:         m.ID,
		ProductID:  m.ProductID,
		Kind:       m.Kind,
		Quantity:   m.Quantity,
		OccurredAt: m.OccurredAt,
		Note:       m.Note,
		CreatedBy:  m.CreatedBy,
		CreatedAt:  m.CreatedAt,
	}
}

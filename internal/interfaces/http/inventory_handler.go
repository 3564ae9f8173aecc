package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// HeaderIdempotencyKey header opcional para registrar un movimiento una sola vez.
const HeaderIdempotencyKey = "Idempotency-Key"

// InventoryHandler maneja los movimientos y las consultas de stock (protegido).
type InventoryHandler struct {
	record  *inventory.RecordMovementUseCase
	journal *inventory.JournalUseCase
	stock   *inventory.StockUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(record *inventory.RecordMovementUseCase, journal *inventory.JournalUseCase, stock *inventory.StockUseCase) *InventoryHandler {
	return &InventoryHandler{record: record, journal: journal, stock: stock}
}

// RecordMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  Agrega una entrada o salida al diario. Con Idempotency-Key, repetir la misma solicitud
// @Description  devuelve el movimiento original con 200 y replayed=true.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Llave de idempotencia (máx. 200)"
// @Param        body  body  dto.RecordMovementRequest  true  "product_id, kind (ENTRY|EXIT), quantity > 0"
// @Success      201   {object}  dto.RecordMovementResponse
// @Success      200   {object}  dto.RecordMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.record.RecordMovement(c.UserContext(), inventory.RecordMovementInput{
		UserID:         GetUserID(c),
		ProductID:      in.ProductID,
		Kind:           in.Kind,
		Quantity:       in.Quantity,
		OccurredAt:     in.OccurredAt,
		Note:           in.Note,
		IdempotencyKey: c.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusCreated
	if out.Replayed {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(out)
}

// ListMovements godoc
// @Summary      Diario de movimientos de un producto
// @Description  Orden (occurred_at, inserción). Paginación por cursor: enviar next_cursor como cursor.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        kind    query  string  false  "ENTRY | EXIT"
// @Param        from    query  string  false  "RFC3339, inclusivo"
// @Param        to      query  string  false  "RFC3339, exclusivo"
// @Param        cursor  query  string  false  "Cursor de la página anterior"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Success      200  {object}  dto.MovementPageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	from, err := queryTime(c, "from")
	if err != nil {
		return respondError(c, err)
	}
	to, err := queryTime(c, "to")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.journal.ListMovementsPage(c.UserContext(), inventory.JournalQuery{
		ProductID: c.Params("id"),
		Kind:      c.Query("kind"),
		From:      from,
		To:        to,
	}, c.Query("cursor"), c.QueryInt("limit", 50))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetStock godoc
// @Summary      Stock actual de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockLevelResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	out, err := h.stock.GetStockLevel(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// VerifyStock godoc
// @Summary      Verificar stock contra el diario
// @Description  Compara el stock materializado con la suma del diario. Si difieren responde 500 INCONSISTENT.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockVerificationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock/verify [get]
func (h *InventoryHandler) VerifyStock(c *fiber.Ctx) error {
	out, err := h.stock.VerifyStock(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListLowStock godoc
// @Summary      Productos en stock bajo
// @Description  Stock <= mínimo, ordenados por stock ascendente y luego código.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Límite (1..500)"  default(50)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) ListLowStock(c *fiber.Ctx) error {
	list, total, err := h.stock.LowStockSnapshot(c.UserContext(), c.QueryInt("limit", 50))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total": total,
		"items": list,
	})
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	s := c.Query(key)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s debe ser RFC3339", domain.ErrInvalidInput, key)
	}
	return &t, nil
}

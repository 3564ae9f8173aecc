package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string // vacío = err.Error()
}

// Gana el primer target que coincide con errors.Is.
var errorMappings = []errorMapping{
	{domain.ErrTimeout, fiber.StatusServiceUnavailable, "DATA_UNAVAILABLE", "almacenamiento lento o no disponible, reintente"},
	{domain.ErrUnavailable, fiber.StatusServiceUnavailable, "DATA_UNAVAILABLE", "almacenamiento lento o no disponible, reintente"},
	{domain.ErrInconsistent, fiber.StatusInternalServerError, "INCONSISTENT", "el stock materializado no coincide con el diario"},
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY", ""},
	{domain.ErrInvalidThreshold, fiber.StatusBadRequest, "INVALID_THRESHOLD", ""},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", ""},
	{domain.ErrUnknownProduct, fiber.StatusNotFound, "UNKNOWN_PRODUCT", "producto no encontrado"},
	{domain.ErrUnknownCategory, fiber.StatusUnprocessableEntity, "UNKNOWN_CATEGORY", "categoría no encontrada"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrDuplicateCode, fiber.StatusConflict, "DUPLICATE_CODE", "ya existe un producto con ese código"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", "el recurso ya existe"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", ""},
	{domain.ErrProductHasMovements, fiber.StatusConflict, "PRODUCT_HAS_MOVEMENTS", "el producto tiene movimientos registrados"},
	{domain.ErrIdempotencyConflict, fiber.StatusUnprocessableEntity, "IDEMPOTENCY_CONFLICT", "la llave de idempotencia ya se usó con otros datos"},
	{domain.ErrRequestInFlight, fiber.StatusConflict, "REQUEST_IN_FLIGHT", "una petición con la misma llave está en proceso"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "no autorizado"},
	{analytics.ErrNoRenderer, fiber.StatusNotImplemented, "NOT_IMPLEMENTED", "reporte PDF no disponible"},
}

// respondError traduce un error de dominio a la respuesta HTTP.
func respondError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := m.message
		if msg == "" {
			msg = err.Error()
		}
		if m.status >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Path()).Str("code", m.code).Msg("error de almacenamiento")
		}
		return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: msg})
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

// ErrorHandler para fiber.Config: errores no manejados por los handlers.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
	}
	return respondError(c, err)
}

package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrInvalidQuantity     = errors.New("la cantidad debe ser mayor que cero")
	ErrUnknownProduct      = errors.New("producto inexistente")
	ErrUnknownCategory     = errors.New("categoría inexistente")
	ErrDuplicateCode       = errors.New("el código ya existe")
	ErrInvalidThreshold    = errors.New("el mínimo no puede ser negativo")
	ErrProductHasMovements = errors.New("el producto tiene movimientos registrados")
	ErrIdempotencyConflict = errors.New("la llave de idempotencia ya se usó con otro movimiento")
	ErrRequestInFlight     = errors.New("ya hay una solicitud en curso con la misma llave")

	// Fallas del almacenamiento: nunca implican que algo se haya registrado.
	ErrTimeout     = errors.New("el almacenamiento no respondió a tiempo")
	ErrUnavailable = errors.New("almacenamiento no disponible")

	// ErrInconsistent se reporta cuando el stock materializado no coincide con el diario.
	ErrInconsistent = errors.New("stock inconsistente con el diario de movimientos")
)

// IsStoreFailure indica si err proviene de un almacenamiento lento o caído.
func IsStoreFailure(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrUnavailable)
}

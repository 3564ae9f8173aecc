package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo.
// Code es único entre productos no eliminados y no cambia después de creado.
type Product struct {
	ID               string
	Code             string
	Name             string
	Unit             string          // etiqueta de unidad de medida (und, kg, caja...)
	MinimumThreshold decimal.Decimal // stock mínimo; en o por debajo se considera stock bajo
	CategoryID       string          // vacío si no tiene categoría
	Description      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

// IsDeleted indica si el producto fue dado de baja.
func (p *Product) IsDeleted() bool {
	return p.DeletedAt != nil
}

// ProductListing fila del listado de productos: el producto con su categoría y su stock vigente.
type ProductListing struct {
	Product
	CategoryName  string
	CategoryColor string
	CurrentStock  decimal.Decimal
}

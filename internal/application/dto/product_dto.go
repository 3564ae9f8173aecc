package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Code             string          `json:"code" validate:"required,min=1,max=64"`
	Name             string          `json:"name" validate:"required,min=1,max=200"`
	Unit             string          `json:"unit" validate:"required,max=32"`
	MinimumThreshold decimal.Decimal `json:"minimum_threshold"`
	CategoryID       string          `json:"category_id" validate:"omitempty,uuid"`
	Description      string          `json:"description" validate:"max=2000"`
}

// UpdateProductRequest actualización parcial. El código no se puede modificar.
type UpdateProductRequest struct {
	Name             *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Unit             *string          `json:"unit" validate:"omitempty,min=1,max=32"`
	MinimumThreshold *decimal.Decimal `json:"minimum_threshold"`
	CategoryID       *string          `json:"category_id" validate:"omitempty,max=64"` // "" quita la categoría
	Description      *string          `json:"description" validate:"omitempty,max=2000"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID               string          `json:"id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Unit             string          `json:"unit"`
	MinimumThreshold decimal.Decimal `json:"minimum_threshold"`
	CategoryID       string          `json:"category_id,omitempty"`
	Description      string          `json:"description"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ProductListItem producto del listado con su categoría y stock vigente.
type ProductListItem struct {
	ProductResponse
	CategoryName  string          `json:"category_name,omitempty"`
	CategoryColor string          `json:"category_color,omitempty"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	LowStock      bool            `json:"low_stock"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductListItem `json:"items"`
	Page  PageResponse      `json:"page"`
}

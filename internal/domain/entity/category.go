package entity

import "time"

// Category agrupa productos; solo es referencia (no es dueña de los productos).
type Category struct {
	ID        string
	Name      string
	Color     string // color de presentación, ej. "#22c55e"
	CreatedAt time.Time
}

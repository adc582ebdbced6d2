package entity

import "time"

// Product representa un producto del catálogo con su stock actual.
// Quantity nunca puede ser negativa y solo la muta el motor de movimientos,
// nunca el CRUD de productos.
type Product struct {
	ID          string
	Name        string
	Description string
	Quantity    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

package repository

import "github.com/tu-usuario/stock-ledger/internal/domain/entity"

// ProductRepository puerto de persistencia para productos.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	// GetForUpdate obtiene el producto bloqueando su fila (SELECT FOR UPDATE).
	// Solo tiene sentido dentro de una transacción.
	GetForUpdate(id string) (*entity.Product, error)
	Update(product *entity.Product) error
	// UpdateQuantity actualiza solo el stock (usado por el motor de movimientos).
	UpdateQuantity(id string, quantity int64) error
	// List devuelve los productos cuyo nombre contiene name (case-insensitive).
	// Con name vacío devuelve todos.
	List(name string) ([]*entity.Product, error)
	Delete(id string) error
}

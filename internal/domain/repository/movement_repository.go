package repository

import (
	"time"

	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// MovementWithProduct vista desnormalizada de un movimiento con los datos
// de su producto (join de lectura, no duplicación persistida).
type MovementWithProduct struct {
	Movement           entity.StockMovement
	ProductName        string
	ProductDescription string
}

// MovementRepository puerto de persistencia para movimientos de stock.
type MovementRepository interface {
	Create(movement *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	Update(movement *entity.StockMovement) error
	Delete(id string) error
	// ListWithProduct lista movimientos unidos con su producto. Los límites son
	// inclusivos y comparan por fecha calendario (se ignora la hora).
	ListWithProduct(from, to *time.Time) ([]*MovementWithProduct, error)
	// CountByProduct cuenta los movimientos que referencian un producto
	// (guarda referencial para el borrado).
	CountByProduct(productID string) (int64, error)
}

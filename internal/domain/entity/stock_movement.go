package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementTypeIN  = "IN"  // entrada
	MovementTypeOUT = "OUT" // salida
)

// StockMovement representa un movimiento (entrada o salida) sobre un producto.
type StockMovement struct {
	ID         string
	ProductID  string
	Type       string
	Date       time.Time // fecha del movimiento, la aporta el caller
	Quantity   int64     // siempre positiva; el signo lo da Type
	UnitValue  decimal.Decimal
	TotalValue decimal.Decimal // Quantity * UnitValue, siempre recalculado
	CreatedAt  time.Time
}

// SignedDelta devuelve el efecto del movimiento sobre el stock del producto:
// +Quantity en entrada, -Quantity en salida.
func (m *StockMovement) SignedDelta() int64 {
	if m.Type == MovementTypeOUT {
		return -m.Quantity
	}
	return m.Quantity
}

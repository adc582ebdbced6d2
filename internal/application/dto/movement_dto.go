package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementRequest body para crear o corregir un movimiento de stock.
// TotalValue nunca se acepta del caller: siempre se recalcula.
type MovementRequest struct {
	Type      string          `json:"type"` // IN | OUT
	ProductID string          `json:"product_id"`
	Date      time.Time       `json:"date"`
	Quantity  int64           `json:"quantity" validate:"gt=0"`
	UnitValue decimal.Decimal `json:"unit_value"`
}

// MovementResponse salida de un movimiento con los datos del producto
// desnormalizados para comodidad del caller.
type MovementResponse struct {
	ID                 string          `json:"id"`
	Type               string          `json:"type"`
	ProductID          string          `json:"product_id"`
	ProductName        string          `json:"product_name"`
	ProductDescription string          `json:"product_description"`
	Date               time.Time       `json:"date"`
	Quantity           int64           `json:"quantity"`
	UnitValue          decimal.Decimal `json:"unit_value"`
	TotalValue         decimal.Decimal `json:"total_value"`
}

// MovementListResponse lista de movimientos enriquecidos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Total int                `json:"total"`
}

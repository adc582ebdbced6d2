package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación de MovementRepository sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento de stock.
func (r *MovementRepo) Create(movement *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, product_id, type, date, quantity, unit_value, total_value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.ProductID, movement.Type, movement.Date,
		movement.Quantity, movement.UnitValue, movement.TotalValue, movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	query := `
		SELECT id, product_id, type, date, quantity, unit_value, total_value, created_at
		FROM stock_movements WHERE id = $1`
	var m entity.StockMovement
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&m.ID, &m.ProductID, &m.Type, &m.Date, &m.Quantity, &m.UnitValue, &m.TotalValue, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return &m, nil
}

// Update sobreescribe los campos de un movimiento existente.
func (r *MovementRepo) Update(movement *entity.StockMovement) error {
	query := `
		UPDATE stock_movements
		SET product_id = $2, type = $3, date = $4, quantity = $5, unit_value = $6, total_value = $7
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.ProductID, movement.Type, movement.Date,
		movement.Quantity, movement.UnitValue, movement.TotalValue,
	)
	if err != nil {
		return fmt.Errorf("update movement: %w", err)
	}
	return nil
}

// Delete elimina un movimiento por ID.
func (r *MovementRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM stock_movements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	return nil
}

// ListWithProduct lista movimientos unidos con su producto. Los límites son
// inclusivos y comparan por fecha calendario (date::date ignora la hora).
func (r *MovementRepo) ListWithProduct(from, to *time.Time) ([]*repository.MovementWithProduct, error) {
	query := `
		SELECT m.id, m.product_id, m.type, m.date, m.quantity, m.unit_value, m.total_value, m.created_at,
		       p.name, p.description
		FROM stock_movements m
		JOIN products p ON p.id = m.product_id`
	var conds []string
	var args []any
	if from != nil {
		args = append(args, *from)
		conds = append(conds, fmt.Sprintf("m.date::date >= $%d::date", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		conds = append(conds, fmt.Sprintf("m.date::date <= $%d::date", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY m.date DESC, m.id"

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*repository.MovementWithProduct
	for rows.Next() {
		var row repository.MovementWithProduct
		m := &row.Movement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Type, &m.Date, &m.Quantity,
			&m.UnitValue, &m.TotalValue, &m.CreatedAt,
			&row.ProductName, &row.ProductDescription); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &row)
	}
	return list, rows.Err()
}

// CountByProduct cuenta los movimientos que referencian un producto.
func (r *MovementRepo) CountByProduct(productID string) (int64, error) {
	var count int64
	err := r.q.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM stock_movements WHERE product_id = $1`, productID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count movements: %w", err)
	}
	return count, nil
}

package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stock-ledger/internal/application/dto"
	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MovementUseCase aplica, corrige y revierte movimientos de stock de forma
// transaccional, con bloqueo de fila (SELECT FOR UPDATE) sobre el producto.
// Invariante que mantiene: stock actual == stock inicial + suma con signo de
// todos los movimientos que referencian al producto.
type MovementUseCase struct {
	txRunner TxRunner
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(txRunner TxRunner) *MovementUseCase {
	return &MovementUseCase{txRunner: txRunner}
}

func validateDraft(in dto.MovementRequest) error {
	if in.Type != entity.MovementTypeIN && in.Type != entity.MovementTypeOUT {
		return domain.ErrInvalidInput
	}
	if in.ProductID == "" || in.Quantity <= 0 || in.Date.IsZero() {
		return domain.ErrInvalidInput
	}
	if in.UnitValue.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}

func totalValue(quantity int64, unitValue decimal.Decimal) decimal.Decimal {
	return unitValue.Mul(decimal.NewFromInt(quantity))
}

func signedDelta(movType string, quantity int64) int64 {
	if movType == entity.MovementTypeOUT {
		return -quantity
	}
	return quantity
}

// Register valida el borrador, bloquea la fila del producto, aplica el delta
// con signo y persiste movimiento + stock en la misma transacción.
func (uc *MovementUseCase) Register(ctx context.Context, in dto.MovementRequest) (*dto.MovementResponse, error) {
	if err := validateDraft(in); err != nil {
		return nil, err
	}
	tracer := otel.Tracer("stock-ledger.inventory")
	ctx, span := tracer.Start(ctx, "inventory.Register",
		trace.WithAttributes(attribute.String("movement.type", in.Type)))
	defer span.End()

	var resp *dto.MovementResponse
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error {
		// Bloquea la fila del producto para que dos operaciones concurrentes
		// no lean el mismo stock y se pisen (lost update).
		product, err := productRepo.GetForUpdate(in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if in.Type == entity.MovementTypeOUT && in.Quantity > product.Quantity {
			return domain.ErrInsufficientStock
		}
		product.Quantity += signedDelta(in.Type, in.Quantity)
		if err := productRepo.UpdateQuantity(product.ID, product.Quantity); err != nil {
			return err
		}
		mov := &entity.StockMovement{
			ID:         uuid.New().String(),
			ProductID:  product.ID,
			Type:       in.Type,
			Date:       in.Date,
			Quantity:   in.Quantity,
			UnitValue:  in.UnitValue,
			TotalValue: totalValue(in.Quantity, in.UnitValue),
			CreatedAt:  time.Now(),
		}
		if err := movRepo.Create(mov); err != nil {
			return err
		}
		resp = toMovementResponse(mov, product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Update corrige un movimiento existente: primero deshace el efecto del
// movimiento original sobre su producto y después valida y aplica el borrador
// nuevo sobre el producto destino (que puede ser otro). Revertir antes de
// aplicar evita el doble conteo en cambios de tipo o de producto.
func (uc *MovementUseCase) Update(ctx context.Context, id string, in dto.MovementRequest) (*dto.MovementResponse, error) {
	if err := validateDraft(in); err != nil {
		return nil, err
	}
	tracer := otel.Tracer("stock-ledger.inventory")
	ctx, span := tracer.Start(ctx, "inventory.Update",
		trace.WithAttributes(attribute.String("movement.id", id)))
	defer span.End()

	var resp *dto.MovementResponse
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error {
		mov, err := movRepo.GetByID(id)
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.ErrNotFound
		}

		oldProduct, newProduct, err := lockProducts(productRepo, mov.ProductID, in.ProductID)
		if err != nil {
			return err
		}

		// Reversa: deshace el delta original sobre el producto viejo.
		oldProduct.Quantity -= mov.SignedDelta()
		if oldProduct.Quantity < 0 {
			return fmt.Errorf("stock inconsistente al revertir movimiento %s sobre producto %s", mov.ID, oldProduct.ID)
		}
		// Valida el borrador contra el estado post-reversa del producto destino.
		if in.Type == entity.MovementTypeOUT && in.Quantity > newProduct.Quantity {
			return domain.ErrInsufficientStock
		}
		newProduct.Quantity += signedDelta(in.Type, in.Quantity)

		if oldProduct != newProduct {
			if err := productRepo.UpdateQuantity(oldProduct.ID, oldProduct.Quantity); err != nil {
				return err
			}
		}
		if err := productRepo.UpdateQuantity(newProduct.ID, newProduct.Quantity); err != nil {
			return err
		}

		mov.Type = in.Type
		mov.ProductID = in.ProductID
		mov.Date = in.Date
		mov.Quantity = in.Quantity
		mov.UnitValue = in.UnitValue
		mov.TotalValue = totalValue(in.Quantity, in.UnitValue)
		if err := movRepo.Update(mov); err != nil {
			return err
		}
		resp = toMovementResponse(mov, newProduct)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Delete revierte el efecto del movimiento sobre su producto y lo elimina,
// todo en la misma transacción. No requiere chequeo de stock: revertir una
// salida solo suma; revertir una entrada que dejaría stock negativo indica
// que el invariante ya estaba roto y se reporta como fallo interno.
func (uc *MovementUseCase) Delete(ctx context.Context, id string) error {
	tracer := otel.Tracer("stock-ledger.inventory")
	ctx, span := tracer.Start(ctx, "inventory.Delete",
		trace.WithAttributes(attribute.String("movement.id", id)))
	defer span.End()

	return uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error {
		mov, err := movRepo.GetByID(id)
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.ErrNotFound
		}
		product, err := productRepo.GetForUpdate(mov.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("movimiento %s referencia un producto inexistente %s", mov.ID, mov.ProductID)
		}
		product.Quantity -= mov.SignedDelta()
		if product.Quantity < 0 {
			return fmt.Errorf("stock inconsistente al revertir movimiento %s sobre producto %s", mov.ID, product.ID)
		}
		if err := productRepo.UpdateQuantity(product.ID, product.Quantity); err != nil {
			return err
		}
		return movRepo.Delete(mov.ID)
	})
}

// DeleteProduct elimina un producto solo si ningún movimiento lo referencia
// (guarda referencial, sin borrado en cascada).
func (uc *MovementUseCase) DeleteProduct(ctx context.Context, id string) error {
	tracer := otel.Tracer("stock-ledger.inventory")
	ctx, span := tracer.Start(ctx, "inventory.DeleteProduct",
		trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()

	return uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error {
		product, err := productRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		count, err := movRepo.CountByProduct(id)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrHasMovements
		}
		return productRepo.Delete(id)
	})
}

// lockProducts bloquea el producto original y el destino. Cuando difieren se
// bloquean en orden de ID para que dos correcciones cruzadas no se bloqueen
// mutuamente (deadlock).
func lockProducts(productRepo repository.ProductRepository, oldID, newID string) (oldProduct, newProduct *entity.Product, err error) {
	if oldID == newID {
		p, err := productRepo.GetForUpdate(oldID)
		if err != nil {
			return nil, nil, err
		}
		if p == nil {
			return nil, nil, fmt.Errorf("movimiento referencia un producto inexistente %s", oldID)
		}
		return p, p, nil
	}
	firstID, secondID := oldID, newID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}
	first, err := productRepo.GetForUpdate(firstID)
	if err != nil {
		return nil, nil, err
	}
	second, err := productRepo.GetForUpdate(secondID)
	if err != nil {
		return nil, nil, err
	}
	byID := map[string]*entity.Product{}
	if first != nil {
		byID[first.ID] = first
	}
	if second != nil {
		byID[second.ID] = second
	}
	oldProduct = byID[oldID]
	newProduct = byID[newID]
	if oldProduct == nil {
		return nil, nil, fmt.Errorf("movimiento referencia un producto inexistente %s", oldID)
	}
	if newProduct == nil {
		// El producto destino lo eligió el caller: es un 404, no un fallo interno.
		return nil, nil, domain.ErrNotFound
	}
	return oldProduct, newProduct, nil
}

func toMovementResponse(m *entity.StockMovement, p *entity.Product) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:                 m.ID,
		Type:               m.Type,
		ProductID:          m.ProductID,
		ProductName:        p.Name,
		ProductDescription: p.Description,
		Date:               m.Date,
		Quantity:           m.Quantity,
		UnitValue:          m.UnitValue,
		TotalValue:         m.TotalValue,
	}
}

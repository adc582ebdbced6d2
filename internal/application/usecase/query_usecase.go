package usecase

import (
	"time"

	"github.com/tu-usuario/stock-ledger/internal/application/dto"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

// QueryUseCase lecturas filtradas sobre los dos libros (productos y
// movimientos). Solo lectura, sin bloqueo: va directo a los repositorios.
type QueryUseCase struct {
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(productRepo repository.ProductRepository, movementRepo repository.MovementRepository) *QueryUseCase {
	return &QueryUseCase{productRepo: productRepo, movementRepo: movementRepo}
}

// ListMovements lista movimientos enriquecidos con su producto, acotados por
// fecha calendario inclusiva. Un resultado vacío es una respuesta válida
// (lista vacía), no un error.
func (uc *QueryUseCase) ListMovements(from, to *time.Time) (*dto.MovementListResponse, error) {
	rows, err := uc.movementRepo.ListWithProduct(from, to)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(rows))
	for _, row := range rows {
		m := row.Movement
		items = append(items, dto.MovementResponse{
			ID:                 m.ID,
			Type:               m.Type,
			ProductID:          m.ProductID,
			ProductName:        row.ProductName,
			ProductDescription: row.ProductDescription,
			Date:               m.Date,
			Quantity:           m.Quantity,
			UnitValue:          m.UnitValue,
			TotalValue:         m.TotalValue,
		})
	}
	return &dto.MovementListResponse{Items: items, Total: len(items)}, nil
}

// ListProducts lista productos filtrando por substring del nombre
// (case-insensitive). Con filtro vacío devuelve todos.
func (uc *QueryUseCase) ListProducts(name string) (*dto.ProductListResponse, error) {
	list, err := uc.productRepo.List(name)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{Items: items, Total: len(items)}, nil
}

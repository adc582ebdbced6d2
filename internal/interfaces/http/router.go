package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stock-ledger/internal/application/inventory"
	"github.com/tu-usuario/stock-ledger/internal/application/usecase"
	"github.com/tu-usuario/stock-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC  *usecase.ProductUseCase
	QueryUC    *usecase.QueryUseCase
	MovementUC *inventory.MovementUseCase
	Log        *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.QueryUC, deps.MovementUC, deps.Log)
	products.Get("/", productHandler.List)
	products.Post("/", productHandler.Create)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	movements := api.Group("/movements")
	movementHandler := NewMovementHandler(deps.MovementUC, deps.QueryUC, deps.Log)
	movements.Get("/", movementHandler.List)
	movements.Post("/", movementHandler.Create)
	movements.Put("/:id", movementHandler.Update)
	movements.Delete("/:id", movementHandler.Delete)
}

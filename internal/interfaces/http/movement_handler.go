package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stock-ledger/internal/application/dto"
	"github.com/tu-usuario/stock-ledger/internal/application/inventory"
	"github.com/tu-usuario/stock-ledger/internal/application/usecase"
	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/pkg/logger"
)

// MovementHandler maneja las peticiones HTTP de movimientos de stock.
type MovementHandler struct {
	uc  *inventory.MovementUseCase
	qry *usecase.QueryUseCase
	log *logger.Logger
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *inventory.MovementUseCase, qry *usecase.QueryUseCase, log *logger.Logger) *MovementHandler {
	return &MovementHandler{uc: uc, qry: qry, log: log}
}

// List godoc
// @Summary      Listar movimientos con datos del producto
// @Tags         movements
// @Produce      json
// @Param        from  query  string  false  "Fecha inicial inclusive (YYYY-MM-DD)"
// @Param        to    query  string  false  "Fecha final inclusive (YYYY-MM-DD)"
// @Success      200   {object}  dto.MovementListResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	from, err := parseDateQuery(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe tener formato YYYY-MM-DD"})
	}
	to, err := parseDateQuery(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe tener formato YYYY-MM-DD"})
	}
	out, err := h.qry.ListMovements(from, to)
	if err != nil {
		h.log.Error().Err(err).Msg("listar movimientos")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error al realizar la búsqueda"})
	}
	// Resultado vacío es una respuesta válida: 200 con lista vacía.
	return c.JSON(out)
}

// Create godoc
// @Summary      Registrar movimiento de stock (entrada o salida)
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "type (IN|OUT), product_id, date, quantity, unit_value"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Register(c.Context(), in)
	if err != nil {
		return h.mapMovementError(c, err, "registrar movimiento")
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Corregir un movimiento (revierte el efecto anterior y aplica el nuevo)
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del movimiento"
// @Param        body  body  dto.MovementRequest  true  "Borrador de reemplazo completo"
// @Success      200   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [put]
func (h *MovementHandler) Update(c *fiber.Ctx) error {
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return h.mapMovementError(c, err, "corregir movimiento")
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar un movimiento revirtiendo su efecto sobre el stock
// @Tags         movements
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [delete]
func (h *MovementHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		return h.mapMovementError(c, err, "eliminar movimiento")
	}
	return c.JSON(fiber.Map{"message": "movimiento eliminado"})
}

// mapMovementError traduce los errores clasificados del motor a estados HTTP.
// Los fallos no clasificados se loguean aquí y se devuelven opacos.
func (h *MovementHandler) mapMovementError(c *fiber.Ctx, err error, op string) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto o movimiento no encontrado"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	default:
		h.log.Error().Err(err).Msg(op)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}

func parseDateQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

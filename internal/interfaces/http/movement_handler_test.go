package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stock-ledger/internal/application/inventory"
	"github.com/tu-usuario/stock-ledger/internal/application/usecase"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
	apphttp "github.com/tu-usuario/stock-ledger/internal/interfaces/http"
	"github.com/tu-usuario/stock-ledger/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria para montar la app completa (router + usecases) sin BD.
// ──────────────────────────────────────────────────────────────────────────────

type memDB struct {
	products  map[string]*entity.Product
	movements map[string]*entity.StockMovement
}

type memProducts struct{ db *memDB }

func (r *memProducts) Create(p *entity.Product) error {
	cp := *p
	r.db.products[p.ID] = &cp
	return nil
}

func (r *memProducts) GetByID(id string) (*entity.Product, error) {
	p, ok := r.db.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProducts) GetForUpdate(id string) (*entity.Product, error) { return r.GetByID(id) }

func (r *memProducts) Update(p *entity.Product) error {
	cp := *p
	r.db.products[p.ID] = &cp
	return nil
}

func (r *memProducts) UpdateQuantity(id string, quantity int64) error {
	r.db.products[id].Quantity = quantity
	return nil
}

func (r *memProducts) List(name string) ([]*entity.Product, error) {
	var list []*entity.Product
	for _, p := range r.db.products {
		cp := *p
		list = append(list, &cp)
	}
	return list, nil
}

func (r *memProducts) Delete(id string) error {
	delete(r.db.products, id)
	return nil
}

type memMovements struct{ db *memDB }

func (r *memMovements) Create(m *entity.StockMovement) error {
	cm := *m
	r.db.movements[m.ID] = &cm
	return nil
}

func (r *memMovements) GetByID(id string) (*entity.StockMovement, error) {
	m, ok := r.db.movements[id]
	if !ok {
		return nil, nil
	}
	cm := *m
	return &cm, nil
}

func (r *memMovements) Update(m *entity.StockMovement) error {
	cm := *m
	r.db.movements[m.ID] = &cm
	return nil
}

func (r *memMovements) Delete(id string) error {
	delete(r.db.movements, id)
	return nil
}

func (r *memMovements) ListWithProduct(from, to *time.Time) ([]*repository.MovementWithProduct, error) {
	var list []*repository.MovementWithProduct
	for _, m := range r.db.movements {
		p := r.db.products[m.ProductID]
		list = append(list, &repository.MovementWithProduct{
			Movement: *m, ProductName: p.Name, ProductDescription: p.Description,
		})
	}
	return list, nil
}

func (r *memMovements) CountByProduct(productID string) (int64, error) {
	var n int64
	for _, m := range r.db.movements {
		if m.ProductID == productID {
			n++
		}
	}
	return n, nil
}

// memTx ejecuta el callback directamente sobre el store; suficiente para probar
// el mapeo HTTP (la atomicidad se prueba en el paquete inventory).
type memTx struct{ db *memDB }

func (r *memTx) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return fn(&memMovements{db: r.db}, &memProducts{db: r.db})
}

func buildTestApp(db *memDB) *fiber.App {
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	productRepo := &memProducts{db: db}
	movementRepo := &memMovements{db: db}

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:  usecase.NewProductUseCase(productRepo),
		QueryUC:    usecase.NewQueryUseCase(productRepo, movementRepo),
		MovementUC: inventory.NewMovementUseCase(&memTx{db: db}),
		Log:        log,
	})
	return app
}

func seedDB() *memDB {
	now := time.Now()
	return &memDB{
		products: map[string]*entity.Product{
			"prod-1": {ID: "prod-1", Name: "Tornillos", Description: "caja x100", Quantity: 100, CreatedAt: now, UpdatedAt: now},
		},
		movements: map[string]*entity.StockMovement{},
	}
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestPostMovement_Creado(t *testing.T) {
	db := seedDB()
	app := buildTestApp(db)

	resp := doJSON(t, app, http.MethodPost, "/api/movements", map[string]any{
		"type":       "IN",
		"product_id": "prod-1",
		"date":       "2024-01-15T10:30:00Z",
		"quantity":   20,
		"unit_value": 5.0,
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Tornillos", body["product_name"], "respuesta enriquecida con el producto")
	assert.Equal(t, "100", body["total_value"], "total = 20 * 5.0")
	assert.Equal(t, int64(120), db.products["prod-1"].Quantity)
}

func TestPostMovement_StockInsuficiente(t *testing.T) {
	db := seedDB()
	app := buildTestApp(db)

	resp := doJSON(t, app, http.MethodPost, "/api/movements", map[string]any{
		"type":       "OUT",
		"product_id": "prod-1",
		"date":       "2024-01-15T10:30:00Z",
		"quantity":   150,
		"unit_value": 1.0,
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	assert.Equal(t, int64(100), db.products["prod-1"].Quantity, "el stock no cambia")
}

func TestPostMovement_ProductoInexistente(t *testing.T) {
	app := buildTestApp(seedDB())

	resp := doJSON(t, app, http.MethodPost, "/api/movements", map[string]any{
		"type":       "IN",
		"product_id": "no-existe",
		"date":       "2024-01-15T10:30:00Z",
		"quantity":   1,
		"unit_value": 1.0,
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPostMovement_TipoInvalido(t *testing.T) {
	app := buildTestApp(seedDB())

	resp := doJSON(t, app, http.MethodPost, "/api/movements", map[string]any{
		"type":       "TRANSFER",
		"product_id": "prod-1",
		"date":       "2024-01-15T10:30:00Z",
		"quantity":   1,
		"unit_value": 1.0,
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetMovements_FechaMalFormada(t *testing.T) {
	app := buildTestApp(seedDB())

	req := httptest.NewRequest(http.MethodGet, "/api/movements?from=15-01-2024", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetMovements_VacioEs200ConListaVacia(t *testing.T) {
	app := buildTestApp(seedDB())

	req := httptest.NewRequest(http.MethodGet, "/api/movements", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	items, ok := body["items"].([]any)
	require.True(t, ok, "items debe ser una lista")
	assert.Empty(t, items)
}

func TestDeleteMovement_RevierteStock(t *testing.T) {
	db := seedDB()
	app := buildTestApp(db)

	resp := doJSON(t, app, http.MethodPost, "/api/movements", map[string]any{
		"type":       "OUT",
		"product_id": "prod-1",
		"date":       "2024-01-15T10:30:00Z",
		"quantity":   30,
		"unit_value": 2.0,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	resp.Body.Close()
	require.Equal(t, int64(70), db.products["prod-1"].Quantity)

	del := doJSON(t, app, http.MethodDelete, "/api/movements/"+created["id"].(string), nil)
	defer del.Body.Close()

	assert.Equal(t, http.StatusOK, del.StatusCode)
	assert.Equal(t, int64(100), db.products["prod-1"].Quantity)
	assert.Empty(t, db.movements)
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func TestDeleteProduct_ConMovimientosDevuelve409(t *testing.T) {
	db := seedDB()
	app := buildTestApp(db)

	resp := doJSON(t, app, http.MethodPost, "/api/movements", map[string]any{
		"type":       "IN",
		"product_id": "prod-1",
		"date":       "2024-01-15T10:30:00Z",
		"quantity":   1,
		"unit_value": 1.0,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	del := doJSON(t, app, http.MethodDelete, "/api/products/prod-1", nil)
	defer del.Body.Close()

	assert.Equal(t, http.StatusConflict, del.StatusCode)
	body := decodeBody(t, del)
	assert.Equal(t, "HAS_MOVEMENTS", body["code"])
	assert.Contains(t, db.products, "prod-1")
}

func TestDeleteProduct_SinMovimientos(t *testing.T) {
	db := seedDB()
	app := buildTestApp(db)

	del := doJSON(t, app, http.MethodDelete, "/api/products/prod-1", nil)
	defer del.Body.Close()

	assert.Equal(t, http.StatusOK, del.StatusCode)
	assert.NotContains(t, db.products, "prod-1")
}

func TestPostProduct_Creado(t *testing.T) {
	db := seedDB()
	app := buildTestApp(db)

	resp := doJSON(t, app, http.MethodPost, "/api/products", map[string]any{
		"name":        "Tuercas",
		"description": "bolsa x50",
		"quantity":    5,
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["id"])
	assert.Len(t, db.products, 2)
}

func TestPostProduct_NombreRequerido(t *testing.T) {
	app := buildTestApp(seedDB())

	resp := doJSON(t, app, http.MethodPost, "/api/products", map[string]any{"quantity": 5})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPutProduct_Inexistente(t *testing.T) {
	app := buildTestApp(seedDB())

	resp := doJSON(t, app, http.MethodPut, "/api/products/no-existe", map[string]any{"name": "X"})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

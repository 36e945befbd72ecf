package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/textil-ledger/internal/application/audit"
	"github.com/tu-usuario/textil-ledger/internal/application/inventory"
	"github.com/tu-usuario/textil-ledger/internal/application/ledgerview"
	"github.com/tu-usuario/textil-ledger/internal/application/orders"
	"github.com/tu-usuario/textil-ledger/internal/application/production"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ReceiveItem *inventory.ReceiveItemUseCase
	ItemQuery   *inventory.QueryUseCase
	ProcessRun  *production.ProcessRunUseCase
	SubmitOrder *orders.SubmitOrderUseCase
	CustomerUC  *orders.CustomerUseCase
	LedgerView  *ledgerview.ViewUseCase
	ValidateRun *audit.ValidateRunUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Items e inventario
	items := api.Group("/items")
	itemHandler := NewItemHandler(deps.ReceiveItem, deps.ItemQuery)
	items.Post("/", itemHandler.Receive)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Get("/:id/movements", itemHandler.Movements)

	// Corridas de producción (teñido)
	runs := api.Group("/production-runs")
	productionHandler := NewProductionHandler(deps.ProcessRun)
	runs.Post("/", productionHandler.Record)
	runs.Put("/:id", productionHandler.Update)
	runs.Get("/:id", productionHandler.GetByID)
	auditHandler := NewAuditHandler(deps.ValidateRun)
	runs.Get("/:id/validate", auditHandler.ValidateRun)

	// Órdenes
	ordersGroup := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.SubmitOrder)
	ordersGroup.Post("/", orderHandler.Submit)
	ordersGroup.Get("/:id", orderHandler.GetByID)

	// Clientes
	customers := api.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)

	// Vista genérica del libro
	ledger := api.Group("/ledger")
	ledgerHandler := NewLedgerHandler(deps.LedgerView)
	ledger.Get("/:kind/:id", ledgerHandler.GetEntry)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/acexpress/courier-api/internal/domain/entity"
)

// RouterDeps dependencias ya construidas que el router cablea a las rutas.
type RouterDeps struct {
	AuthHandler     *AuthHandler
	CustomerHandler *CustomerHandler
	ShipmentHandler *ShipmentHandler
	PaymentHandler  *PaymentHandler
	LedgerHandler   *LedgerHandler
	InvoiceHandler  *InvoiceHandler
	JWTSecret       string
}

// Router registra todas las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Rutas públicas
	auth := api.Group("/auth")
	auth.Post("/register", deps.AuthHandler.Register)
	auth.Post("/login", deps.AuthHandler.Login)

	// Rutas protegidas
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	mostrador := RequireRole(entity.RoleAdmin, entity.RoleOperador)
	contable := RequireRole(entity.RoleAdmin, entity.RoleContable)

	customers := protected.Group("/customers")
	customers.Post("/", mostrador, deps.CustomerHandler.Create)
	customers.Get("/", deps.CustomerHandler.List)
	customers.Get("/:id", deps.CustomerHandler.GetByID)
	customers.Get("/:id/statement", deps.CustomerHandler.Statement)

	shipments := protected.Group("/shipments")
	shipments.Post("/", mostrador, deps.ShipmentHandler.Create)
	shipments.Get("/", deps.ShipmentHandler.List)
	shipments.Get("/:id", deps.ShipmentHandler.GetByID)
	shipments.Put("/:id", mostrador, deps.ShipmentHandler.Update)
	shipments.Post("/:id/confirm", mostrador, deps.ShipmentHandler.Confirm)
	shipments.Put("/:id/airway-bill", mostrador, deps.ShipmentHandler.SetAirwayBill)
	shipments.Get("/:id/invoices", deps.ShipmentHandler.Invoices)
	shipments.Post("/:id/invoices", mostrador, deps.ShipmentHandler.Regenerate)
	shipments.Get("/:id/manifest", deps.ShipmentHandler.Manifest)

	payments := protected.Group("/payments")
	payments.Post("/", mostrador, deps.PaymentHandler.Record)

	ledger := protected.Group("/ledger")
	ledger.Get("/", contable, deps.LedgerHandler.List)
	ledger.Get("/summary", contable, deps.LedgerHandler.Summary)
	ledger.Get("/export.csv", contable, deps.LedgerHandler.ExportCSV)
	ledger.Post("/adjustments", contable, deps.LedgerHandler.PostAdjustment)

	invoices := protected.Group("/invoices")
	invoices.Get("/:id/pdf", deps.InvoiceHandler.DownloadPDF)
}

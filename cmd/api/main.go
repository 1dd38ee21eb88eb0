package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/acexpress/courier-api/internal/application/auth"
	"github.com/acexpress/courier-api/internal/application/billing"
	appshipment "github.com/acexpress/courier-api/internal/application/shipment"
	"github.com/acexpress/courier-api/internal/infrastructure/customs"
	infrapdf "github.com/acexpress/courier-api/internal/infrastructure/pdf"
	"github.com/acexpress/courier-api/internal/infrastructure/postgres"
	httpRouter "github.com/acexpress/courier-api/internal/interfaces/http"
	"github.com/acexpress/courier-api/pkg/config"
	"github.com/acexpress/courier-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if err := postgres.Migrate(cfg.DB.ConnectionString()); err != nil {
		log.Fatal().Err(err).Msg("migraciones de base de datos")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	shipmentRepo := postgres.NewShipmentRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	ledgerBackoff := time.Duration(cfg.Ledger.PostBackoffMS) * time.Millisecond

	customerUC := billing.NewCustomerUseCase(customerRepo)
	shipmentUC := appshipment.NewShipmentUseCase(shipmentRepo, customerRepo, log)
	invoiceGen := billing.NewInvoiceGenerator(txRunner, shipmentRepo, invoiceRepo, log)
	paymentRecorder := billing.NewPaymentRecorder(txRunner, customerRepo, cfg.Ledger.PostMaxRetries, ledgerBackoff, log)
	ledgerPoster := billing.NewLedgerPoster(txRunner, cfg.Ledger.PostMaxRetries, ledgerBackoff, log)
	ledgerQuery := billing.NewLedgerQuery(ledgerRepo)

	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	pdfUC := billing.NewPDFUseCase(invoiceRepo, shipmentRepo, customerRepo, pdfGenerator)
	manifestUC := appshipment.NewManifestUseCase(shipmentRepo, customerRepo, customs.NewManifestBuilder())

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "ACE Express Courier API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthHandler:     httpRouter.NewAuthHandler(authUC),
		CustomerHandler: httpRouter.NewCustomerHandler(customerUC, ledgerQuery),
		ShipmentHandler: httpRouter.NewShipmentHandler(shipmentUC, invoiceGen, manifestUC),
		PaymentHandler:  httpRouter.NewPaymentHandler(paymentRecorder),
		LedgerHandler:   httpRouter.NewLedgerHandler(ledgerQuery, ledgerPoster),
		InvoiceHandler:  httpRouter.NewInvoiceHandler(pdfUC),
		JWTSecret:       cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

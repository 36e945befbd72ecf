package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tu-usuario/textil-ledger/internal/application/audit"
	"github.com/tu-usuario/textil-ledger/internal/application/inventory"
	"github.com/tu-usuario/textil-ledger/internal/application/ledgerview"
	"github.com/tu-usuario/textil-ledger/internal/application/orders"
	"github.com/tu-usuario/textil-ledger/internal/application/production"
	"github.com/tu-usuario/textil-ledger/internal/domain/pricing"
	"github.com/tu-usuario/textil-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/textil-ledger/internal/interfaces/http"
	"github.com/tu-usuario/textil-ledger/pkg/config"
	"github.com/tu-usuario/textil-ledger/pkg/logger"
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

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	itemRepo := postgres.NewItemRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	productionRepo := postgres.NewProductionRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	txRunner := postgres.NewTxRunner(
		pool,
		time.Duration(cfg.Policy.StatementTimeoutSec)*time.Second,
		cfg.Policy.TxRetries,
	)

	policy := pricing.Policy{
		Tolerance:        cfg.Policy.SubtotalTolerance,
		AutoCorrectLimit: cfg.Policy.AutoCorrectLimit,
	}

	store := inventory.NewStore()
	receiveItemUC := inventory.NewReceiveItemUseCase(txRunner, store)
	itemQueryUC := inventory.NewQueryUseCase(itemRepo, ledgerRepo)
	processRunUC := production.NewProcessRunUseCase(
		txRunner, itemRepo, productionRepo, store, cfg.Policy.MinViableOutputPct, log,
	)
	submitOrderUC := orders.NewSubmitOrderUseCase(
		txRunner, orderRepo, customerRepo, itemRepo, productionRepo, ledgerRepo, policy, log,
	)
	customerUC := orders.NewCustomerUseCase(customerRepo)
	ledgerViewUC := ledgerview.NewViewUseCase(ledgerRepo, orderRepo, productionRepo, cfg.App.IsProduction())
	validateRunUC := audit.NewValidateRunUseCase(productionRepo, itemRepo, ledgerRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ReceiveItem: receiveItemUC,
		ItemQuery:   itemQueryUC,
		ProcessRun:  processRunUC,
		SubmitOrder: submitOrderUC,
		CustomerUC:  customerUC,
		LedgerView:  ledgerViewUC,
		ValidateRun: validateRunUC,
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

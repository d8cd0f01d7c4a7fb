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
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/orders"
	"github.com/jhoicas/Inventario-ledger/internal/application/reorder"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/catalogfile"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/Inventario-ledger/pkg/config"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

// stores puertos de persistencia elegidos por LEDGER_STORE.
type stores struct {
	txRunner repository.TxRunner
	catalog  repository.CatalogRepository
	settings repository.SettingsRepository
	seeder   catalogfile.Sink
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Ledger.Store).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer st.close()

	if cfg.Ledger.CatalogFile != "" {
		if err := seedCatalog(ctx, cfg.Ledger.CatalogFile, st.seeder, log); err != nil {
			log.Fatal().Err(err).Str("file", cfg.Ledger.CatalogFile).Msg("sembrar catálogo")
		}
	} else if cfg.Ledger.Store == config.StoreMemory {
		log.Warn().Msg("modo memoria sin LEDGER_CATALOG_FILE: el catálogo está vacío")
	}

	engineCfg := inventory.EngineConfig{
		Dimensions: entity.DimensionPolicy{
			PlacementRequired: cfg.Ledger.PlacementRequired,
			BatchRequired:     cfg.Ledger.BatchRequired,
		},
		Retry: inventory.RetryPolicy{
			MaxAttempts: cfg.Ledger.RetryMaxAttempts,
			BaseDelay:   cfg.Ledger.RetryBaseDelay,
			MaxDelay:    cfg.Ledger.RetryMaxDelay,
		},
		OperationTimeout: cfg.Ledger.OperationTimeout,
	}

	movementUC := inventory.NewMovementUseCase(st.txRunner, st.catalog, st.settings, engineCfg, log.Component("movements"))
	transferUC := inventory.NewTransferUseCase(st.txRunner, st.catalog, st.settings, engineCfg, log.Component("transfers"))
	queryUC := inventory.NewStockQueryUseCase(st.txRunner, log.Component("queries"))
	orderUC := orders.NewUseCase(st.txRunner, st.catalog, engineCfg.Retry, log.Component("orders"))
	reorderUC := reorder.NewUseCase(st.txRunner, st.catalog, orderUC, log.Component("reorder"))

	scanCtx, stopScanner := context.WithCancel(ctx)
	defer stopScanner()
	go reorder.NewScanner(reorderUC, cfg.Reorder.ScanInterval, log.Component("reorder-scanner")).Run(scanCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs (solo si existe docs/swagger.json)
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Inventario Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Ledger.Store})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Movements: movementUC,
		Transfers: transferUC,
		Queries:   queryUC,
		Orders:    orderUC,
		Reorder:   reorderUC,
		JWTSecret: cfg.JWT.Secret,
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
	stopScanner()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	if cfg.Ledger.Store == config.StoreMemory {
		store := memory.NewStore()
		return &stores{
			txRunner: store,
			catalog:  store.Catalog(),
			settings: store.Settings(),
			seeder:   store.Seeder(),
			close:    func() {},
		}, nil
	}

	if cfg.DB.AutoMigrate {
		version, err := postgres.Migrate(cfg.DB.ConnectionString())
		if err != nil {
			return nil, err
		}
		log.Info().Uint("version", version).Msg("migraciones aplicadas")
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &stores{
		txRunner: postgres.NewTxRunner(pool, cfg.DB.LockTimeout),
		catalog:  postgres.NewCatalogRepository(pool),
		settings: postgres.NewSettingsRepository(pool),
		seeder:   postgres.NewSeeder(pool),
		close:    pool.Close,
	}, nil
}

func seedCatalog(ctx context.Context, path string, sink catalogfile.Sink, log *logger.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cat, err := catalogfile.Parse(f)
	if err != nil {
		return err
	}
	n, err := cat.Apply(ctx, sink)
	if err != nil {
		return err
	}
	log.Info().
		Str("fingerprint", cat.Fingerprint).
		Int("tenants", n.Tenants).
		Int("products", n.Products).
		Int("locations", n.Locations).
		Int("placements", n.Placements).
		Int("batches", n.Batches).
		Msg("catálogo sembrado")
	return nil
}

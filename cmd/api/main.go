package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/Peajes-api/internal/application/history"
	"github.com/jhoicas/Peajes-api/internal/application/ingest"
	"github.com/jhoicas/Peajes-api/internal/application/settlement"
	"github.com/jhoicas/Peajes-api/internal/application/tags"
	"github.com/jhoicas/Peajes-api/internal/domain/repository"
	"github.com/jhoicas/Peajes-api/internal/infrastructure/memory"
	"github.com/jhoicas/Peajes-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Peajes-api/internal/infrastructure/notify"
	infrapdf "github.com/jhoicas/Peajes-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Peajes-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Peajes-api/internal/interfaces/http"
	"github.com/jhoicas/Peajes-api/pkg/config"
	"github.com/jhoicas/Peajes-api/pkg/logger"
)

// storage puertos de almacenamiento según STORAGE_DRIVER.
type storage struct {
	tollPoints   repository.TollPointRepository
	accounts     repository.AccountRepository
	tags         repository.TagRepository
	transactions repository.TransactionRepository
	invoices     repository.InvoiceRepository
	txRunner     settlement.TxRunner
	close        func()
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
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()
	if cfg.App.StorageDriver == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	}

	// Notificaciones y cola de cruces: Redis si hay REDIS_ADDR, si no solo log
	logPub := notify.NewLogPublisher(log)
	var (
		publisher settlement.Publisher = logPub
		sink      ingest.EventSink     = logPub
	)
	if cfg.Redis.Addr != "" {
		redisPub, err := notify.NewRedisPublisher(cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("publicador Redis")
		}
		defer redisPub.Close()
		publisher = redisPub
		sink = redisPub
	}

	rt := settlement.Runtime{
		Log:       log,
		Observer:  metrics.New(prometheus.DefaultRegisterer),
		Publisher: publisher,
	}
	policy := settlement.Policy{
		TaxRate:          cfg.Settlement.TaxRate,
		Currency:         cfg.Settlement.Currency,
		LateFeePerMinute: cfg.Settlement.LateFeePerMinute,
		MaxAttempts:      cfg.Settlement.MaxAttempts,
	}

	ingestUC := ingest.NewIngestUseCase(sink, log)
	classifyUC := settlement.NewClassifyPayerUseCase(store.accounts, store.tags, store.tollPoints, rt)
	chargeUC := settlement.NewCalculateChargeUseCase(store.tollPoints, policy, rt)
	debitUC := settlement.NewDebitTagUseCase(store.tags, policy, rt)
	recordUC := settlement.NewRecordSettlementUseCase(store.txRunner, policy, rt)
	completeUC := settlement.NewCompletePendingUseCase(store.txRunner, policy, rt)
	tagUC := tags.NewTagUseCase(store.tags, store.accounts, cfg.Settlement.MaxAttempts, log)

	// PDF: comprobante de pago del cruce
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)
	historyUC := history.NewHistoryUseCase(store.transactions, store.invoices, store.tollPoints, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		ServiceName: cfg.App.Name,
		Ingest:      ingestUC,
		Classify:    classifyUC,
		Charge:      chargeUC,
		Debit:       debitUC,
		Record:      recordUC,
		Complete:    completeUC,
		TagUC:       tagUC,
		HistoryUC:   historyUC,
		Gatherer:    prometheus.DefaultGatherer,
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

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.App.StorageDriver == config.StorageMemory {
		s := memory.NewStore()
		return &storage{
			tollPoints:   s.TollPoints(),
			accounts:     s.Accounts(),
			tags:         s.Tags(),
			transactions: s.Transactions(),
			invoices:     s.Invoices(),
			txRunner:     s,
			close:        func() {},
		}, nil
	}

	if cfg.DB.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DB.ConnectionString()); err != nil {
			return nil, err
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		tollPoints:   postgres.NewTollPointRepository(pool),
		accounts:     postgres.NewAccountRepository(pool),
		tags:         postgres.NewTagRepository(pool),
		transactions: postgres.NewTransactionRepository(pool),
		invoices:     postgres.NewInvoiceRepository(pool),
		txRunner:     postgres.NewTxRunner(pool),
		close:        pool.Close,
	}, nil
}

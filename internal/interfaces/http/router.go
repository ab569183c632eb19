package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Peajes-api/internal/application/history"
	"github.com/jhoicas/Peajes-api/internal/application/ingest"
	"github.com/jhoicas/Peajes-api/internal/application/settlement"
	"github.com/jhoicas/Peajes-api/internal/application/tags"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ServiceName string
	Ingest      *ingest.IngestUseCase
	Classify    *settlement.ClassifyPayerUseCase
	Charge      *settlement.CalculateChargeUseCase
	Debit       *settlement.DebitTagUseCase
	Record      *settlement.RecordSettlementUseCase
	Complete    *settlement.CompletePendingUseCase
	TagUC       *tags.TagUseCase
	HistoryUC   *history.HistoryUseCase
	// Gatherer origen de /metrics; nil deja la ruta sin registrar.
	Gatherer    prometheus.Gatherer
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	// Entrada de cruces desde las casetas
	ingestHandler := NewIngestHandler(deps.Ingest)
	api.Post("/webhook/toll", ingestHandler.Toll)

	// Pasos del motor (los invoca el orquestador en orden)
	settlementHandler := NewSettlementHandler(deps.Classify, deps.Charge, deps.Debit, deps.Record, deps.Complete)
	steps := api.Group("/settlement")
	steps.Post("/classify", settlementHandler.Classify)
	steps.Post("/charge", settlementHandler.Charge)
	steps.Post("/debit", settlementHandler.Debit)
	steps.Post("/record", settlementHandler.Record)
	api.Post("/transactions/:event_id/complete", settlementHandler.Complete)

	// Tags por placa
	tagHandler := NewTagHandler(deps.TagUC)
	users := api.Group("/users/:placa")
	users.Post("/tag", tagHandler.Issue)
	users.Get("/tag", tagHandler.Get)
	users.Delete("/tag", tagHandler.Deactivate)
	users.Post("/tag/topup", tagHandler.TopUp)

	// Historial y comprobantes
	historyHandler := NewHistoryHandler(deps.HistoryUC)
	hist := api.Group("/history/:placa")
	hist.Get("/transactions", historyHandler.Transactions)
	hist.Get("/invoices", historyHandler.Invoices)
	api.Get("/invoices/:id", historyHandler.Invoice)
	api.Get("/invoices/:id/pdf", historyHandler.ReceiptPDF)
}

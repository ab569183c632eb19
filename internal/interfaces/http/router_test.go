package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Peajes-api/internal/application/dto"
	"github.com/jhoicas/Peajes-api/internal/application/history"
	"github.com/jhoicas/Peajes-api/internal/application/ingest"
	"github.com/jhoicas/Peajes-api/internal/application/settlement"
	"github.com/jhoicas/Peajes-api/internal/application/tags"
	"github.com/jhoicas/Peajes-api/internal/domain/entity"
	"github.com/jhoicas/Peajes-api/internal/infrastructure/memory"
	"github.com/jhoicas/Peajes-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Peajes-api/internal/infrastructure/notify"
	"github.com/jhoicas/Peajes-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Peajes-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var t0 = time.Date(2025, 11, 17, 16, 35, 3, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// buildTestApp arma la API completa sobre almacenamiento en memoria con:
//   - peaje P-01 (base 5.00, tag 4.50)
//   - P-123ABC registrado con TAG-001 (saldo 100.00)
//   - P-456DEF registrado sin tag
func buildTestApp(t *testing.T) (*fiber.App, *testClock) {
	t.Helper()
	store := memory.NewStore()
	store.PutTollPoint(entity.TollPoint{
		ID:      "P-01",
		Name:    "Palín-Escuintla",
		BaseFee: dec("5.00"),
		TagFee:  decimal.NewNullDecimal(dec("4.50")),
	})
	store.PutAccount(entity.Account{Plate: "P-123ABC", RegistrationClass: entity.RegistrationRegistered, TagID: "TAG-001"})
	store.PutAccount(entity.Account{Plate: "P-456DEF", RegistrationClass: entity.RegistrationRegistered})
	require.NoError(t, store.Tags().Create(context.Background(), &entity.Tag{
		TagID: "TAG-001", Plate: "P-123ABC", Status: entity.TagStatusActive, Balance: dec("100.00"), CreatedAt: t0,
	}))

	clock := &testClock{t: t0}
	reg := prometheus.NewRegistry()
	rt := settlement.Runtime{Now: clock.Now, Observer: metrics.New(reg)}
	policy := settlement.DefaultPolicy()

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ServiceName: "peajes-test",
		Ingest:      ingest.NewIngestUseCase(notify.NewLogPublisher(nil), nil).WithClock(clock.Now),
		Classify:    settlement.NewClassifyPayerUseCase(store.Accounts(), store.Tags(), store.TollPoints(), rt),
		Charge:      settlement.NewCalculateChargeUseCase(store.TollPoints(), policy, rt),
		Debit:       settlement.NewDebitTagUseCase(store.Tags(), policy, rt),
		Record:      settlement.NewRecordSettlementUseCase(store, policy, rt),
		Complete:    settlement.NewCompletePendingUseCase(store, policy, rt),
		TagUC:       tags.NewTagUseCase(store.Tags(), store.Accounts(), policy.MaxAttempts, nil).WithClock(clock.Now),
		HistoryUC: history.NewHistoryUseCase(store.Transactions(), store.Invoices(), store.TollPoints(),
			pdf.NewMarotoPDFGenerator("Peajes de prueba")),
		Gatherer: reg,
	})
	return app, clock
}

// call ejecuta la petición y decodifica la respuesta en out (si no es nil).
func call(t *testing.T, app *fiber.App, method, path string, body any, out any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	if out != nil {
		defer resp.Body.Close()
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujos completos
// ──────────────────────────────────────────────────────────────────────────────

// Cruce con tag: clasificar → tasar → debitar → registrar; el reenvío del registro es idempotente.
func TestFlujoTag_FacturaInmediata(t *testing.T) {
	app, _ := buildTestApp(t)

	var cls dto.ClassifyResponse
	resp := call(t, app, http.MethodPost, "/api/settlement/classify",
		dto.ClassifyRequest{EventID: "evt-1", Plate: "P-123ABC", TagID: "TAG-001", TollPointID: "P-01"}, &cls)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "prepaid-tag", cls.PayerClass)
	require.NotNil(t, cls.Tag)
	require.NotNil(t, cls.TollPoint)

	var charge dto.ChargeResponse
	resp = call(t, app, http.MethodPost, "/api/settlement/charge",
		dto.ChargeRequest{EventID: "evt-1", PayerClass: cls.PayerClass, TollPointID: "P-01"}, &charge)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, dec("5.04").Equal(charge.Total), "total=%s", charge.Total)

	var debit dto.DebitResponse
	resp = call(t, app, http.MethodPost, "/api/settlement/debit",
		dto.DebitRequest{TagID: "TAG-001", Amount: charge.Total, TransactionID: "evt-1"}, &debit)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, dec("94.96").Equal(debit.NewBalance))
	assert.False(t, debit.HasDebt)

	record := dto.RecordRequest{
		EventID: "evt-1", Plate: "P-123ABC", TollPointID: "P-01", PayerClass: cls.PayerClass,
		Timestamp: &t0, Charge: charge, TagID: "TAG-001", Debit: &debit,
	}
	var rec dto.RecordResponse
	resp = call(t, app, http.MethodPost, "/api/settlement/record", record, &rec)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, entity.TransactionStatusCompleted, rec.Status)
	assert.False(t, rec.RequiresPayment)
	assert.NotEmpty(t, rec.InvoiceID)

	// reenvío del orquestador
	var again dto.RecordResponse
	resp = call(t, app, http.MethodPost, "/api/settlement/record", record, &again)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, again.Duplicate)
	assert.Equal(t, rec.InvoiceID, again.InvoiceID)

	var inv dto.InvoiceResponse
	resp = call(t, app, http.MethodGet, "/api/invoices/"+rec.InvoiceID, nil, &inv)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "evt-1", inv.EventID)
}

// No registrado: queda pendiente; al completarlo 3 minutos después se cobra mora y se factura.
func TestFlujoNoRegistrado_CompletarConMora(t *testing.T) {
	app, clock := buildTestApp(t)

	var cls dto.ClassifyResponse
	call(t, app, http.MethodPost, "/api/settlement/classify", dto.ClassifyRequest{Plate: "P-999ZZZ"}, &cls)
	assert.Equal(t, "unregistered", cls.PayerClass)

	var charge dto.ChargeResponse
	call(t, app, http.MethodPost, "/api/settlement/charge",
		dto.ChargeRequest{PayerClass: cls.PayerClass, TollPointID: "P-01"}, &charge)
	assert.True(t, dec("5.60").Equal(charge.Total), "total=%s", charge.Total)

	var rec dto.RecordResponse
	resp := call(t, app, http.MethodPost, "/api/settlement/record", dto.RecordRequest{
		EventID: "evt-2", Plate: "P-999ZZZ", TollPointID: "P-01", PayerClass: cls.PayerClass, Charge: charge,
	}, &rec)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, entity.TransactionStatusPending, rec.Status)
	assert.True(t, rec.RequiresPayment)
	assert.Empty(t, rec.InvoiceID)

	var pending dto.TransactionHistoryResponse
	resp = call(t, app, http.MethodGet, "/api/history/P-999ZZZ/transactions?requires_payment=true", nil, &pending)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, pending.Count)

	clock.Advance(3 * time.Minute)

	// sin cuerpo: método cash y hora del reloj
	var done dto.CompleteResponse
	resp = call(t, app, http.MethodPost, "/api/transactions/evt-2/complete", nil, &done)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(3), done.MinutesElapsed)
	assert.True(t, dec("3.00").Equal(done.LateFee))
	assert.True(t, dec("8.60").Equal(done.TotalWithLateFee), "total=%s", done.TotalWithLateFee)

	var errBody dto.ErrorResponse
	resp = call(t, app, http.MethodPost, "/api/transactions/evt-2/complete", nil, &errBody)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ALREADY_SETTLED", errBody.Code)
	assert.Contains(t, errBody.Message, done.InvoiceID)

	var invoices dto.InvoiceHistoryResponse
	call(t, app, http.MethodGet, "/api/history/P-999ZZZ/invoices", nil, &invoices)
	require.Equal(t, 1, invoices.Count)

	resp = call(t, app, http.MethodGet, "/api/invoices/"+done.InvoiceID+"/pdf", nil, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	raw, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestWebhook_EncolaCruce(t *testing.T) {
	app, _ := buildTestApp(t)

	var out dto.IngestResponse
	resp := call(t, app, http.MethodPost, "/api/webhook/toll",
		dto.IngestRequest{Plate: "P-123ABC", TollPointID: "P-01", Timestamp: &t0, TagID: "TAG-001"}, &out)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, ingest.StatusQueued, out.Status)
	assert.NotEmpty(t, out.EventID)

	var errBody dto.ErrorResponse
	resp = call(t, app, http.MethodPost, "/api/webhook/toll", dto.IngestRequest{Plate: "P-123ABC"}, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errBody.Code)
}

func TestTags_EmitirRecargarDesactivar(t *testing.T) {
	app, _ := buildTestApp(t)

	var issued dto.TagResponse
	resp := call(t, app, http.MethodPost, "/api/users/P-456DEF/tag",
		dto.IssueTagRequest{TagID: "TAG-NEW", Balance: dec("10.00")}, &issued)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, entity.TagStatusActive, issued.Status)

	var topped dto.TagResponse
	resp = call(t, app, http.MethodPost, "/api/users/P-456DEF/tag/topup", dto.TopUpRequest{Amount: dec("15.50")}, &topped)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, dec("25.50").Equal(topped.Balance))

	var off dto.TagResponse
	resp = call(t, app, http.MethodDelete, "/api/users/P-456DEF/tag", nil, &off)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.TagStatusInactive, off.Status)

	// recargar un tag inactivo es un conflicto de estado
	resp = call(t, app, http.MethodPost, "/api/users/P-456DEF/tag/topup", dto.TopUpRequest{Amount: dec("1.00")}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Traducción de errores
// ──────────────────────────────────────────────────────────────────────────────

func TestErrores_CodigosHTTP(t *testing.T) {
	app, _ := buildTestApp(t)

	cases := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"placa vacía", http.MethodPost, "/api/settlement/classify", dto.ClassifyRequest{}, http.StatusBadRequest, "VALIDATION"},
		{"tag de otra placa", http.MethodPost, "/api/settlement/classify",
			dto.ClassifyRequest{Plate: "P-456DEF", TagID: "TAG-001"}, http.StatusConflict, "INVALID_TAG"},
		{"peaje inexistente al clasificar", http.MethodPost, "/api/settlement/classify",
			dto.ClassifyRequest{Plate: "P-456DEF", TollPointID: "NOPE"}, http.StatusNotFound, "TOLL_POINT_NOT_FOUND"},
		{"peaje inexistente al tasar", http.MethodPost, "/api/settlement/charge",
			dto.ChargeRequest{PayerClass: "registered", TollPointID: "NOPE"}, http.StatusBadRequest, "INVALID_TOLL_POINT"},
		{"tipo de pagador inválido", http.MethodPost, "/api/settlement/charge",
			dto.ChargeRequest{PayerClass: "vip", TollPointID: "P-01"}, http.StatusBadRequest, "VALIDATION"},
		{"débito sin monto", http.MethodPost, "/api/settlement/debit",
			dto.DebitRequest{TagID: "TAG-001", TransactionID: "x"}, http.StatusBadRequest, "INVALID_AMOUNT"},
		{"débito tag inexistente", http.MethodPost, "/api/settlement/debit",
			dto.DebitRequest{TagID: "TAG-404", Amount: dec("1.00"), TransactionID: "x"}, http.StatusNotFound, "TAG_NOT_FOUND"},
		{"completar inexistente", http.MethodPost, "/api/transactions/evt-404/complete", nil, http.StatusNotFound, "TRANSACTION_NOT_FOUND"},
		{"factura inexistente", http.MethodGet, "/api/invoices/INV-404", nil, http.StatusNotFound, "NOT_FOUND"},
		{"status inválido", http.MethodGet, "/api/history/P-123ABC/transactions?status=paid", nil, http.StatusBadRequest, "VALIDATION"},
		{"requires_payment inválido", http.MethodGet, "/api/history/P-123ABC/transactions?requires_payment=quizas", nil, http.StatusBadRequest, "VALIDATION"},
		{"tag de placa sin cuenta", http.MethodPost, "/api/users/P-000000/tag",
			dto.IssueTagRequest{TagID: "TAG-X"}, http.StatusNotFound, "ACCOUNT_NOT_FOUND"},
		{"tag duplicado", http.MethodPost, "/api/users/P-456DEF/tag",
			dto.IssueTagRequest{TagID: "TAG-001"}, http.StatusConflict, "DUPLICATE"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body dto.ErrorResponse
			resp := call(t, app, tc.method, tc.path, tc.body, &body)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			assert.Equal(t, tc.wantCode, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestCuerpoInvalido(t *testing.T) {
	app, _ := buildTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/settlement/classify", strings.NewReader("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthYMetrics(t *testing.T) {
	app, _ := buildTestApp(t)

	var health map[string]string
	resp := call(t, app, http.MethodGet, "/health", nil, &health)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", health["status"])

	// genera al menos una serie
	call(t, app, http.MethodPost, "/api/settlement/debit",
		dto.DebitRequest{TagID: "TAG-001", Amount: dec("1.00"), TransactionID: "m-1"}, nil)

	resp = call(t, app, http.MethodGet, "/metrics", nil, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "peajes_tag_debits_total")
}

package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Peajes-api/internal/domain/entity"
	"github.com/jhoicas/Peajes-api/internal/infrastructure/metrics"
)

func TestSettlementMetrics_Contadores(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.SettlementRecorded(entity.PayerPrepaidTag, entity.TransactionStatusCompleted, false)
	m.SettlementRecorded(entity.PayerPrepaidTag, entity.TransactionStatusCompleted, false)
	m.SettlementRecorded(entity.PayerUnregistered, entity.TransactionStatusPending, true)
	m.TagDebited(true, false)
	m.UpdateConflict("debit_tag")
	m.NotificationFailed("settlement.recorded")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SettlementsTotal.WithLabelValues("prepaid-tag", "completed", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SettlementsTotal.WithLabelValues("unregistered", "pending", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TagDebitsTotal.WithLabelValues("true", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpdateConflicts.WithLabelValues("debit_tag")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsFailed.WithLabelValues("settlement.recorded")))
}

func TestSettlementMetrics_DeudaResuelta(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.DebtResolved(3, decimal.RequireFromString("3.00"))
	m.DebtResolved(0, decimal.Zero)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DebtsResolvedTotal))
	assert.InDelta(t, 3.0, testutil.ToFloat64(m.LateFeeAmountTotal), 1e-9)
	// el histograma aparece como una sola serie
	assert.Equal(t, 1, testutil.CollectAndCount(m.LateFeeMinutes))
}

func TestNew_RegistroDuplicadoFalla(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(reg)
	assert.Panics(t, func() { metrics.New(reg) })
}

// Package metrics expone en Prometheus los hechos del motor de liquidación.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Peajes-api/internal/application/settlement"
	"github.com/jhoicas/Peajes-api/internal/domain/entity"
)

var _ settlement.Observer = (*SettlementMetrics)(nil)

// SettlementMetrics agrupa las métricas del motor.
type SettlementMetrics struct {
	SettlementsTotal    *prometheus.CounterVec
	TagDebitsTotal      *prometheus.CounterVec
	UpdateConflicts     *prometheus.CounterVec
	DebtsResolvedTotal  prometheus.Counter
	LateFeeMinutes      prometheus.Histogram
	LateFeeAmountTotal  prometheus.Counter
	NotificationsFailed *prometheus.CounterVec
}

// New construye las métricas y las registra en reg.
func New(reg prometheus.Registerer) *SettlementMetrics {
	m := &SettlementMetrics{
		SettlementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "peajes_settlements_total",
				Help: "Liquidaciones registradas por clase de pagador y estado",
			},
			[]string{"payer_class", "status", "duplicate"},
		),
		TagDebitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "peajes_tag_debits_total",
				Help: "Débitos de tag aplicados",
			},
			[]string{"debt_created", "replayed"},
		),
		UpdateConflicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "peajes_update_conflicts_total",
				Help: "Conflictos de versión detectados por operación",
			},
			[]string{"operation"},
		),
		DebtsResolvedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peajes_debts_resolved_total",
			Help: "Transacciones pendientes completadas",
		}),
		LateFeeMinutes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "peajes_late_fee_minutes",
			Help:    "Minutos de mora al completar una transacción",
			Buckets: []float64{0, 1, 5, 15, 60, 240, 1440, 10080},
		}),
		LateFeeAmountTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peajes_late_fee_amount_total",
			Help: "Suma de mora cobrada",
		}),
		NotificationsFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "peajes_notifications_failed_total",
				Help: "Notificaciones que no se pudieron publicar",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(
		m.SettlementsTotal,
		m.TagDebitsTotal,
		m.UpdateConflicts,
		m.DebtsResolvedTotal,
		m.LateFeeMinutes,
		m.LateFeeAmountTotal,
		m.NotificationsFailed,
	)
	return m
}

func (m *SettlementMetrics) SettlementRecorded(class entity.PayerClass, status string, duplicate bool) {
	m.SettlementsTotal.WithLabelValues(string(class), status, strconv.FormatBool(duplicate)).Inc()
}

func (m *SettlementMetrics) TagDebited(debtCreated, replayed bool) {
	m.TagDebitsTotal.WithLabelValues(strconv.FormatBool(debtCreated), strconv.FormatBool(replayed)).Inc()
}

func (m *SettlementMetrics) UpdateConflict(operation string) {
	m.UpdateConflicts.WithLabelValues(operation).Inc()
}

func (m *SettlementMetrics) DebtResolved(minutesElapsed int64, lateFee decimal.Decimal) {
	m.DebtsResolvedTotal.Inc()
	m.LateFeeMinutes.Observe(float64(minutesElapsed))
	// InexactFloat64 basta para una métrica; el monto contable vive en decimal.
	m.LateFeeAmountTotal.Add(lateFee.InexactFloat64())
}

func (m *SettlementMetrics) NotificationFailed(kind string) {
	m.NotificationsFailed.WithLabelValues(kind).Inc()
}

package settlement

import (
	"time"

	"github.com/shopspring/decimal"
)

// LateFeePolicy mora plana por minuto transcurrido desde la creación de la transacción.
type LateFeePolicy struct {
	RatePerMinute decimal.Decimal
}

// LateFeeAssessment resultado de evaluar la mora.
type LateFeeAssessment struct {
	MinutesElapsed int64
	LateFee        decimal.Decimal
}

// Assess calcula minutos = floor(segundos/60) (nunca negativo) y mora = minutos * tasa.
func (p LateFeePolicy) Assess(createdAt, now time.Time) LateFeeAssessment {
	elapsed := now.Sub(createdAt)
	if elapsed < 0 {
		elapsed = 0
	}
	minutes := int64(elapsed / time.Minute)
	return LateFeeAssessment{
		MinutesElapsed: minutes,
		LateFee:        RoundMoney(p.RatePerMinute.Mul(decimal.NewFromInt(minutes))),
	}
}

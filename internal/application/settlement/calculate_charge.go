package settlement

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Peajes-api/internal/domain"
	"github.com/jhoicas/Peajes-api/internal/domain/entity"
	"github.com/jhoicas/Peajes-api/internal/domain/repository"
	domainsettlement "github.com/jhoicas/Peajes-api/internal/domain/settlement"
)

// CalculateChargeUseCase tasa un cruce a partir del catálogo.
type CalculateChargeUseCase struct {
	tollPointRepo repository.TollPointRepository
	calculator    domainsettlement.ChargeCalculator
	rt            Runtime
}

// NewCalculateChargeUseCase construye el caso de uso con la tasa de IVA y moneda de la política.
func NewCalculateChargeUseCase(tollPointRepo repository.TollPointRepository, policy Policy, rt Runtime) *CalculateChargeUseCase {
	return &CalculateChargeUseCase{
		tollPointRepo: tollPointRepo,
		calculator:    domainsettlement.NewChargeCalculator(policy.TaxRate, policy.Currency),
		rt:            rt.withDefaults("calculate_charge"),
	}
}

// CalculateCharge devuelve subtotal, IVA y total para el tipo de pagador en el peaje indicado.
// Un peaje inexistente o sin tarifa válida falla con ErrInvalidTollPoint.
func (uc *CalculateChargeUseCase) CalculateCharge(ctx context.Context, class entity.PayerClass, tollPointID string) (domainsettlement.Charge, error) {
	if !class.Valid() {
		return domainsettlement.Charge{}, fmt.Errorf("%w: tipo de pagador %q", domain.ErrInvalidInput, class)
	}
	tollPointID = strings.TrimSpace(tollPointID)
	if tollPointID == "" {
		return domainsettlement.Charge{}, fmt.Errorf("%w: peaje requerido", domain.ErrInvalidTollPoint)
	}
	tp, err := uc.tollPointRepo.GetByID(ctx, tollPointID)
	if err != nil {
		return domainsettlement.Charge{}, fmt.Errorf("calcular cargo: obtener peaje: %w", err)
	}
	if tp == nil {
		return domainsettlement.Charge{}, fmt.Errorf("%w: %w %s", domain.ErrInvalidTollPoint, domain.ErrTollPointNotFound, tollPointID)
	}

	charge, err := uc.calculator.Calculate(class, tp)
	if err != nil {
		return domainsettlement.Charge{}, err
	}

	uc.rt.Log.Debug().
		Str("peaje_id", tollPointID).
		Str("payer_class", class.String()).
		Str("total", charge.Total.StringFixed(2)).
		Msg("cargo calculado")
	return charge, nil
}

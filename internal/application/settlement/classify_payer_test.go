package settlement_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Peajes-api/internal/application/settlement"
	"github.com/jhoicas/Peajes-api/internal/domain"
	"github.com/jhoicas/Peajes-api/internal/domain/entity"
)

func TestClassifyPayer_Precedencia(t *testing.T) {
	f := newFixture()
	uc := f.classifier()
	ctx := context.Background()

	tests := []struct {
		name  string
		in    settlement.ClassifyInput
		class entity.PayerClass
	}{
		// Tag activo de la misma placa gana sobre la cuenta registrada
		{"tag válido", settlement.ClassifyInput{Plate: plateTag, TagID: "TAG-001"}, entity.PayerPrepaidTag},
		// Sin tag, la cuenta registrada decide
		{"cuenta registrada", settlement.ClassifyInput{Plate: plateRegistered}, entity.PayerRegistered},
		// La placa con tag pero sin tag en el evento cae a registrado
		{"placa con tag sin lectura", settlement.ClassifyInput{Plate: plateTag}, entity.PayerRegistered},
		// Placa desconocida
		{"sin cuenta", settlement.ClassifyInput{Plate: plateUnregistered}, entity.PayerUnregistered},
		// Cuenta existente marcada como no registrada
		{"cuenta no registrada", settlement.ClassifyInput{Plate: plateOptOut}, entity.PayerUnregistered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := uc.ClassifyPayer(ctx, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.class, out.PayerClass)
		})
	}
}

func TestClassifyPayer_TagInvalido(t *testing.T) {
	f := newFixture()
	uc := f.classifier()
	ctx := context.Background()

	for name, in := range map[string]settlement.ClassifyInput{
		"tag inactivo":      {Plate: plateTag, TagID: "TAG-OFF"},
		"tag inexistente":   {Plate: plateTag, TagID: "TAG-404"},
		"tag de otra placa": {Plate: plateRegistered, TagID: "TAG-001"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := uc.ClassifyPayer(ctx, in)
			assert.ErrorIs(t, err, domain.ErrInvalidTag)
		})
	}
}

func TestClassifyPayer_ResuelvePeaje(t *testing.T) {
	f := newFixture()
	uc := f.classifier()
	ctx := context.Background()

	out, err := uc.ClassifyPayer(ctx, settlement.ClassifyInput{Plate: plateTag, TagID: "TAG-001", TollPointID: tollPointID})
	require.NoError(t, err)
	require.NotNil(t, out.TollPoint)
	assert.Equal(t, tollPointID, out.TollPoint.ID)
	require.NotNil(t, out.Tag)
	assert.Equal(t, "TAG-001", out.Tag.TagID)

	_, err = uc.ClassifyPayer(ctx, settlement.ClassifyInput{Plate: plateTag, TollPointID: "P-99"})
	assert.ErrorIs(t, err, domain.ErrTollPointNotFound)
}

func TestClassifyPayer_PlacaVacia(t *testing.T) {
	f := newFixture()
	_, err := f.classifier().ClassifyPayer(context.Background(), settlement.ClassifyInput{Plate: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCalculateCharge_PorTipoDePagador(t *testing.T) {
	f := newFixture()
	uc := f.charger()
	ctx := context.Background()

	// Tag: tarifa 4.50, IVA 0.54, total 5.04
	c, err := uc.CalculateCharge(ctx, entity.PayerPrepaidTag, tollPointID)
	require.NoError(t, err)
	assert.Equal(t, "4.50", c.Subtotal.StringFixed(2))
	assert.Equal(t, "0.54", c.Tax.StringFixed(2))
	assert.Equal(t, "5.04", c.Total.StringFixed(2))
	assert.Equal(t, "GTQ", c.Currency)

	// No registrado sin tarifa propia: usa la base
	c, err = uc.CalculateCharge(ctx, entity.PayerUnregistered, tollPointID)
	require.NoError(t, err)
	assert.Equal(t, "5.60", c.Total.StringFixed(2))

	_, err = uc.CalculateCharge(ctx, entity.PayerRegistered, "P-99")
	assert.ErrorIs(t, err, domain.ErrInvalidTollPoint)
	assert.ErrorIs(t, err, domain.ErrTollPointNotFound)

	_, err = uc.CalculateCharge(ctx, entity.PayerClass("vip"), tollPointID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

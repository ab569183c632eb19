package tags_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Peajes-api/internal/application/dto"
	"github.com/jhoicas/Peajes-api/internal/application/tags"
	"github.com/jhoicas/Peajes-api/internal/domain"
	"github.com/jhoicas/Peajes-api/internal/domain/entity"
	"github.com/jhoicas/Peajes-api/internal/infrastructure/memory"
)

var fixedNow = time.Date(2025, 11, 17, 12, 0, 0, 0, time.UTC)

func newUseCase(t *testing.T) (*tags.TagUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.PutAccount(entity.Account{Plate: "P-123ABC", RegistrationClass: entity.RegistrationRegistered})
	uc := tags.NewTagUseCase(store.Tags(), store.Accounts(), 3, nil).
		WithClock(func() time.Time { return fixedNow })
	return uc, store
}

func TestTagUseCase_Emitir(t *testing.T) {
	uc, store := newUseCase(t)
	ctx := context.Background()

	tag, err := uc.Issue(ctx, "P-123ABC", dto.IssueTagRequest{TagID: "TAG-001", Balance: decimal.RequireFromString("50")})
	require.NoError(t, err)
	assert.Equal(t, entity.TagStatusActive, tag.Status)
	assert.Equal(t, "50.00", tag.Balance.StringFixed(2))
	assert.False(t, tag.HasDebt)

	// La cuenta queda vinculada
	acc, _ := store.Accounts().GetByPlate(ctx, "P-123ABC")
	assert.Equal(t, "TAG-001", acc.TagID)

	// tag_id duplicado
	_, err = uc.Issue(ctx, "P-123ABC", dto.IssueTagRequest{TagID: "TAG-001"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// Placa inexistente
	_, err = uc.Issue(ctx, "P-000", dto.IssueTagRequest{TagID: "TAG-002"})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	// Saldo negativo
	_, err = uc.Issue(ctx, "P-123ABC", dto.IssueTagRequest{TagID: "TAG-003", Balance: decimal.RequireFromString("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestTagUseCase_PorPlacaPrefiereActivo(t *testing.T) {
	uc, store := newUseCase(t)
	ctx := context.Background()
	require.NoError(t, store.Tags().Create(ctx, &entity.Tag{
		TagID: "TAG-OLD", Plate: "P-123ABC", Status: entity.TagStatusInactive, CreatedAt: fixedNow.Add(time.Hour),
	}))
	require.NoError(t, store.Tags().Create(ctx, &entity.Tag{
		TagID: "TAG-NEW", Plate: "P-123ABC", Status: entity.TagStatusActive, CreatedAt: fixedNow,
	}))

	tag, err := uc.GetByPlate(ctx, "P-123ABC")
	require.NoError(t, err)
	assert.Equal(t, "TAG-NEW", tag.TagID)

	_, err = uc.GetByPlate(ctx, "P-999")
	assert.ErrorIs(t, err, domain.ErrTagNotFound)
}

func TestTagUseCase_RecargarYDesactivar(t *testing.T) {
	uc, store := newUseCase(t)
	ctx := context.Background()
	_, err := uc.Issue(ctx, "P-123ABC", dto.IssueTagRequest{TagID: "TAG-001", Balance: decimal.RequireFromString("10.00")})
	require.NoError(t, err)

	tag, err := uc.TopUp(ctx, "P-123ABC", decimal.RequireFromString("25.50"))
	require.NoError(t, err)
	assert.Equal(t, "35.50", tag.Balance.StringFixed(2))

	_, err = uc.TopUp(ctx, "P-123ABC", decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	tag, err = uc.Deactivate(ctx, "P-123ABC")
	require.NoError(t, err)
	assert.Equal(t, entity.TagStatusInactive, tag.Status)

	// Nunca se borra: sigue consultable y conserva el saldo
	stored, err := store.Tags().GetByID(ctx, "TAG-001")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "35.50", stored.Balance.StringFixed(2))
	acc, _ := store.Accounts().GetByPlate(ctx, "P-123ABC")
	assert.Empty(t, acc.TagID)

	// Un tag inactivo no se recarga
	_, err = uc.TopUp(ctx, "P-123ABC", decimal.RequireFromString("1"))
	assert.ErrorIs(t, err, domain.ErrInvalidTag)
}

func TestTagUseCase_SinIntentosConfiguradosUsaDefault(t *testing.T) {
	store := memory.NewStore()
	store.PutAccount(entity.Account{Plate: "P-123ABC", RegistrationClass: entity.RegistrationRegistered})
	ctx := context.Background()

	for _, maxAttempts := range []int{0, -3} {
		uc := tags.NewTagUseCase(store.Tags(), store.Accounts(), maxAttempts, nil).
			WithClock(func() time.Time { return fixedNow })
		if maxAttempts == 0 {
			_, err := uc.Issue(ctx, "P-123ABC", dto.IssueTagRequest{TagID: "TAG-001", Balance: decimal.RequireFromString("1.00")})
			require.NoError(t, err)
		}

		// Al menos un intento: la recarga se aplica en lugar de reportar conflicto
		tag, err := uc.TopUp(ctx, "P-123ABC", decimal.RequireFromString("1.00"))
		require.NoError(t, err)
		assert.True(t, tag.Balance.IsPositive())
	}

	stored, err := store.Tags().GetByID(ctx, "TAG-001")
	require.NoError(t, err)
	assert.Equal(t, "3.00", stored.Balance.StringFixed(2))
}

package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Peajes-api/internal/domain"
	"github.com/jhoicas/Peajes-api/internal/domain/entity"
	"github.com/jhoicas/Peajes-api/internal/domain/repository"
	"github.com/jhoicas/Peajes-api/internal/infrastructure/memory"
)

var t0 = time.Date(2025, 11, 17, 16, 0, 0, 0, time.UTC)

func TestTagRepo_EscrituraCondicional(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	tags := store.Tags()

	require.NoError(t, tags.Create(ctx, &entity.Tag{TagID: "TAG-001", Plate: "P-123ABC", Status: entity.TagStatusActive}))
	assert.ErrorIs(t, tags.Create(ctx, &entity.Tag{TagID: "TAG-001"}), domain.ErrDuplicate)

	a, err := tags.GetByID(ctx, "TAG-001")
	require.NoError(t, err)
	b, err := tags.GetByID(ctx, "TAG-001")
	require.NoError(t, err)

	a.Balance = decimal.NewFromInt(10)
	require.NoError(t, tags.UpdateIfVersion(ctx, a, a.Version))
	assert.Equal(t, int64(2), a.Version)

	// b leyó la versión 1: su escritura debe perder.
	b.Balance = decimal.NewFromInt(99)
	assert.ErrorIs(t, tags.UpdateIfVersion(ctx, b, b.Version), domain.ErrVersionConflict)

	got, err := tags.GetByID(ctx, "TAG-001")
	require.NoError(t, err)
	assert.Equal(t, "10.00", got.Balance.StringFixed(2))
}

func TestTagRepo_ApplyDebitRegistraUnaVezPorTransaccion(t *testing.T) {
	ctx := context.Background()
	tags := memory.NewStore().Tags()
	require.NoError(t, tags.Create(ctx, &entity.Tag{TagID: "TAG-001", Plate: "P-123ABC", Balance: decimal.NewFromInt(10)}))

	tag, err := tags.GetByID(ctx, "TAG-001")
	require.NoError(t, err)
	tag.Balance = decimal.NewFromInt(7)
	receipt := &entity.DebitReceipt{TransactionID: "evt-A", Amount: decimal.NewFromInt(3), AppliedAt: t0}
	require.NoError(t, tags.ApplyDebit(ctx, tag, tag.Version, receipt))
	assert.Equal(t, int64(2), tag.Version)

	got, err := tags.GetDebit(ctx, "TAG-001", "evt-A")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "TAG-001", got.TagID)
	assert.Equal(t, "3", got.Amount.String())

	// Misma transacción con versión vigente: el registro existente gana y el tag no cambia.
	tag.Balance = decimal.NewFromInt(4)
	assert.ErrorIs(t, tags.ApplyDebit(ctx, tag, tag.Version, receipt), domain.ErrVersionConflict)
	current, err := tags.GetByID(ctx, "TAG-001")
	require.NoError(t, err)
	assert.Equal(t, "7", current.Balance.String())

	none, err := tags.GetDebit(ctx, "TAG-001", "evt-B")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestRunSettlement_RollbackAnteError(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Tags().Create(ctx, &entity.Tag{TagID: "TAG-001", Plate: "P-1"}))
	boom := errors.New("boom")

	err := store.RunSettlement(ctx, func(txnRepo repository.TransactionRepository, tagRepo repository.TagRepository, invoiceRepo repository.InvoiceRepository) error {
		_, err := txnRepo.CreateIfAbsent(ctx, &entity.Transaction{EventID: "evt-1", Plate: "P-1"})
		require.NoError(t, err)
		tag, err := tagRepo.GetByID(ctx, "TAG-001")
		require.NoError(t, err)
		tag.Debt = decimal.NewFromInt(5)
		require.NoError(t, tagRepo.UpdateIfVersion(ctx, tag, tag.Version))
		_, err = invoiceRepo.CreateIfAbsent(ctx, &entity.Invoice{InvoiceID: "INV-1", Plate: "P-1"})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	txn, err := store.Transactions().GetByEventID(ctx, "evt-1")
	require.NoError(t, err)
	assert.Nil(t, txn)
	inv, err := store.Invoices().GetByID(ctx, "INV-1")
	require.NoError(t, err)
	assert.Nil(t, inv)
	tag, err := store.Tags().GetByID(ctx, "TAG-001")
	require.NoError(t, err)
	assert.True(t, tag.Debt.IsZero())
	assert.Equal(t, int64(1), tag.Version)
}

func TestTransactionRepo_CreateIfAbsentYOrden(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Transactions()

	created, err := repo.CreateIfAbsent(ctx, &entity.Transaction{EventID: "evt-1", Plate: "P-1", CrossedAt: t0, Status: entity.TransactionStatusPending, RequiresPayment: true})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.CreateIfAbsent(ctx, &entity.Transaction{EventID: "evt-1", Plate: "P-1", CrossedAt: t0.Add(time.Hour)})
	require.NoError(t, err)
	assert.False(t, created, "el segundo insert con el mismo evento no escribe")

	_, err = repo.CreateIfAbsent(ctx, &entity.Transaction{EventID: "evt-2", Plate: "P-1", CrossedAt: t0.Add(time.Minute), Status: entity.TransactionStatusCompleted})
	require.NoError(t, err)
	_, err = repo.CreateIfAbsent(ctx, &entity.Transaction{EventID: "evt-3", Plate: "P-2", CrossedAt: t0})
	require.NoError(t, err)

	all, err := repo.ListByPlate(ctx, "P-1", repository.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "evt-2", all[0].EventID, "más reciente primero")
	assert.Equal(t, t0, all[1].CrossedAt)

	pending := true
	filtered, err := repo.ListByPlate(ctx, "P-1", repository.TransactionFilter{RequiresPayment: &pending})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "evt-1", filtered[0].EventID)
}

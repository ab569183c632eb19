package settlement_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Peajes-api/internal/application/settlement"
	"github.com/jhoicas/Peajes-api/internal/domain"
	"github.com/jhoicas/Peajes-api/internal/domain/entity"
	"github.com/jhoicas/Peajes-api/internal/domain/repository"
	"github.com/jhoicas/Peajes-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures compartidos
// ──────────────────────────────────────────────────────────────────────────────

const (
	plateTag          = "P-123ABC"
	plateRegistered   = "P-456DEF"
	plateUnregistered = "P-789GHI"
	plateOptOut       = "P-000XYZ"
	tollPointID       = "P-01"
)

var t0 = time.Date(2025, 11, 17, 16, 35, 3, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fakeClock reloj controlable por el test.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// recordingPublisher guarda lo publicado; si err != nil falla siempre.
type recordingPublisher struct {
	mu   sync.Mutex
	sent []settlement.Notification
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, n settlement.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
	return p.err
}

func (p *recordingPublisher) last() settlement.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.sent) == 0 {
		return settlement.Notification{}
	}
	return p.sent[len(p.sent)-1]
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

type fixture struct {
	store *memory.Store
	clock *fakeClock
	pub   *recordingPublisher
	rt    settlement.Runtime
}

// newFixture carga un peaje (base 5.00, tag 4.50), tres vehículos y un tag con saldo 100.00.
func newFixture() *fixture {
	store := memory.NewStore()
	store.PutTollPoint(entity.TollPoint{
		ID:            tollPointID,
		Name:          "Palín-Escuintla",
		Location:      "CA-9 km 38",
		BaseFee:       dec("5.00"),
		TagFee:        decimal.NewNullDecimal(dec("4.50")),
		RegisteredFee: decimal.NewNullDecimal(dec("5.00")),
	})
	store.PutAccount(entity.Account{Plate: plateTag, RegistrationClass: entity.RegistrationRegistered, TagID: "TAG-001"})
	store.PutAccount(entity.Account{Plate: plateRegistered, RegistrationClass: entity.RegistrationRegistered})
	store.PutAccount(entity.Account{Plate: plateOptOut, RegistrationClass: entity.RegistrationUnregistered})

	ctx := context.Background()
	mustCreateTag(ctx, store, &entity.Tag{TagID: "TAG-001", Plate: plateTag, Status: entity.TagStatusActive, Balance: dec("100.00"), CreatedAt: t0})
	mustCreateTag(ctx, store, &entity.Tag{TagID: "TAG-OFF", Plate: plateTag, Status: entity.TagStatusInactive, Balance: dec("50.00"), CreatedAt: t0})
	mustCreateTag(ctx, store, &entity.Tag{TagID: "TAG-EMPTY", Plate: plateTag, Status: entity.TagStatusActive, CreatedAt: t0})

	clock := &fakeClock{t: t0}
	pub := &recordingPublisher{}
	return &fixture{
		store: store,
		clock: clock,
		pub:   pub,
		rt:    settlement.Runtime{Now: clock.Now, Publisher: pub},
	}
}

func mustCreateTag(ctx context.Context, store *memory.Store, tag *entity.Tag) {
	if err := store.Tags().Create(ctx, tag); err != nil {
		panic(err)
	}
}

func (f *fixture) policy() settlement.Policy { return settlement.DefaultPolicy() }

func (f *fixture) classifier() *settlement.ClassifyPayerUseCase {
	return settlement.NewClassifyPayerUseCase(f.store.Accounts(), f.store.Tags(), f.store.TollPoints(), f.rt)
}

func (f *fixture) charger() *settlement.CalculateChargeUseCase {
	return settlement.NewCalculateChargeUseCase(f.store.TollPoints(), f.policy(), f.rt)
}

func (f *fixture) ledger() *settlement.DebitTagUseCase {
	return settlement.NewDebitTagUseCase(f.store.Tags(), f.policy(), f.rt)
}

func (f *fixture) recorder() *settlement.RecordSettlementUseCase {
	return settlement.NewRecordSettlementUseCase(f.store, f.policy(), f.rt)
}

func (f *fixture) resolver() *settlement.CompletePendingUseCase {
	return settlement.NewCompletePendingUseCase(f.store, f.policy(), f.rt)
}

// flakyTagRepo devuelve conflicto de versión en las primeras `conflicts` escrituras (-1 = siempre).
type flakyTagRepo struct {
	repository.TagRepository
	mu        sync.Mutex
	conflicts int
	calls     int
}

func (r *flakyTagRepo) UpdateIfVersion(ctx context.Context, tag *entity.Tag, expected int64) error {
	if r.fail() {
		return domain.ErrVersionConflict
	}
	return r.TagRepository.UpdateIfVersion(ctx, tag, expected)
}

func (r *flakyTagRepo) ApplyDebit(ctx context.Context, tag *entity.Tag, expected int64, receipt *entity.DebitReceipt) error {
	if r.fail() {
		return domain.ErrVersionConflict
	}
	return r.TagRepository.ApplyDebit(ctx, tag, expected, receipt)
}

func (r *flakyTagRepo) fail() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	fail := r.conflicts != 0
	if r.conflicts > 0 {
		r.conflicts--
	}
	return fail
}

// flakyRunner envuelve el TxRunner en memoria inyectando conflictos en el repositorio de tags.
type flakyRunner struct {
	inner *memory.Store
	tags  *flakyTagRepo
}

func (r *flakyRunner) RunSettlement(ctx context.Context, fn func(
	txnRepo repository.TransactionRepository,
	tagRepo repository.TagRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	return r.inner.RunSettlement(ctx, func(txnRepo repository.TransactionRepository, tagRepo repository.TagRepository, invoiceRepo repository.InvoiceRepository) error {
		r.tags.TagRepository = tagRepo
		return fn(txnRepo, r.tags, invoiceRepo)
	})
}

var errPublish = errors.New("redis caído")

package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Peajes-api/internal/domain"
	"github.com/jhoicas/Peajes-api/internal/domain/entity"
	"github.com/jhoicas/Peajes-api/internal/domain/repository"
)

var (
	_ repository.TollPointRepository   = (*TollPointRepo)(nil)
	_ repository.AccountRepository     = (*AccountRepo)(nil)
	_ repository.TagRepository         = (*TagRepo)(nil)
	_ repository.TransactionRepository = (*TransactionRepo)(nil)
	_ repository.InvoiceRepository     = (*InvoiceRepo)(nil)
)

// TollPointRepo catálogo en memoria.
type TollPointRepo struct{ v *view }

func (r *TollPointRepo) GetByID(ctx context.Context, id string) (*entity.TollPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.v.lock()()
	tp, ok := r.v.s.tollPoints[id]
	if !ok {
		return nil, nil
	}
	c := *tp
	return &c, nil
}

// AccountRepo vehículos en memoria.
type AccountRepo struct{ v *view }

func (r *AccountRepo) GetByPlate(ctx context.Context, plate string) (*entity.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.v.lock()()
	a, ok := r.v.s.accounts[plate]
	if !ok {
		return nil, nil
	}
	c := *a
	return &c, nil
}

func (r *AccountRepo) LinkTag(ctx context.Context, plate, tagID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer r.v.lock()()
	a, ok := r.v.s.accounts[plate]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.TagID = tagID
	return nil
}

// TagRepo tags en memoria con escritura condicional por versión.
type TagRepo struct{ v *view }

func (r *TagRepo) GetByID(ctx context.Context, tagID string) (*entity.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.v.lock()()
	t, ok := r.v.s.tags[tagID]
	if !ok {
		return nil, nil
	}
	return t.Clone(), nil
}

func (r *TagRepo) ListByPlate(ctx context.Context, plate string) ([]*entity.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.v.lock()()
	var out []*entity.Tag
	for _, t := range r.v.s.tags {
		if t.Plate == plate {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *TagRepo) Create(ctx context.Context, tag *entity.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer r.v.lock()()
	if _, ok := r.v.s.tags[tag.TagID]; ok {
		return domain.ErrDuplicate
	}
	tag.Version = 1
	r.v.s.tags[tag.TagID] = tag.Clone()
	id := tag.TagID
	r.v.record(func() { delete(r.v.s.tags, id) })
	return nil
}

func (r *TagRepo) UpdateIfVersion(ctx context.Context, tag *entity.Tag, expectedVersion int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer r.v.lock()()
	current, ok := r.v.s.tags[tag.TagID]
	if !ok {
		return domain.ErrTagNotFound
	}
	if current.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	tag.Version = expectedVersion + 1
	r.v.s.tags[tag.TagID] = tag.Clone()
	r.v.record(func() { r.v.s.tags[current.TagID] = current })
	return nil
}

func (r *TagRepo) GetDebit(ctx context.Context, tagID, transactionID string) (*entity.DebitReceipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.v.lock()()
	d, ok := r.v.s.debits[debitKey{tagID, transactionID}]
	if !ok {
		return nil, nil
	}
	c := *d
	return &c, nil
}

func (r *TagRepo) ApplyDebit(ctx context.Context, tag *entity.Tag, expectedVersion int64, receipt *entity.DebitReceipt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer r.v.lock()()
	current, ok := r.v.s.tags[tag.TagID]
	if !ok {
		return domain.ErrTagNotFound
	}
	key := debitKey{tag.TagID, receipt.TransactionID}
	if current.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	if _, dup := r.v.s.debits[key]; dup {
		return domain.ErrVersionConflict
	}
	tag.Version = expectedVersion + 1
	r.v.s.tags[tag.TagID] = tag.Clone()
	c := *receipt
	c.TagID = tag.TagID
	r.v.s.debits[key] = &c
	r.v.record(func() {
		r.v.s.tags[current.TagID] = current
		delete(r.v.s.debits, key)
	})
	return nil
}

// TransactionRepo transacciones en memoria indexadas por event_id.
type TransactionRepo struct{ v *view }

func (r *TransactionRepo) CreateIfAbsent(ctx context.Context, txn *entity.Transaction) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	defer r.v.lock()()
	if _, ok := r.v.s.txns[txn.EventID]; ok {
		return false, nil
	}
	txn.Version = 1
	r.v.s.txns[txn.EventID] = txn.Clone()
	id := txn.EventID
	r.v.record(func() { delete(r.v.s.txns, id) })
	return true, nil
}

func (r *TransactionRepo) GetByEventID(ctx context.Context, eventID string) (*entity.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.v.lock()()
	t, ok := r.v.s.txns[eventID]
	if !ok {
		return nil, nil
	}
	return t.Clone(), nil
}

func (r *TransactionRepo) UpdateIfVersion(ctx context.Context, txn *entity.Transaction, expectedVersion int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer r.v.lock()()
	current, ok := r.v.s.txns[txn.EventID]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	if current.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	txn.Version = expectedVersion + 1
	r.v.s.txns[txn.EventID] = txn.Clone()
	r.v.record(func() { r.v.s.txns[current.EventID] = current })
	return nil
}

func (r *TransactionRepo) ListByPlate(ctx context.Context, plate string, filter repository.TransactionFilter) ([]*entity.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.v.lock()()
	var out []*entity.Transaction
	for _, t := range r.v.s.txns {
		if t.Plate != plate {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.RequiresPayment != nil && t.RequiresPayment != *filter.RequiresPayment {
			continue
		}
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CrossedAt.Equal(out[j].CrossedAt) {
			return out[i].EventID > out[j].EventID
		}
		return out[i].CrossedAt.After(out[j].CrossedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// InvoiceRepo facturas en memoria.
type InvoiceRepo struct{ v *view }

func (r *InvoiceRepo) CreateIfAbsent(ctx context.Context, inv *entity.Invoice) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	defer r.v.lock()()
	if _, ok := r.v.s.invoices[inv.InvoiceID]; ok {
		return false, nil
	}
	c := *inv
	r.v.s.invoices[inv.InvoiceID] = &c
	id := inv.InvoiceID
	r.v.record(func() { delete(r.v.s.invoices, id) })
	return true, nil
}

func (r *InvoiceRepo) GetByID(ctx context.Context, invoiceID string) (*entity.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.v.lock()()
	inv, ok := r.v.s.invoices[invoiceID]
	if !ok {
		return nil, nil
	}
	c := *inv
	return &c, nil
}

func (r *InvoiceRepo) ListByPlate(ctx context.Context, plate string, limit int) ([]*entity.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.v.lock()()
	var out []*entity.Invoice
	for _, inv := range r.v.s.invoices {
		if inv.Plate == plate {
			c := *inv
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

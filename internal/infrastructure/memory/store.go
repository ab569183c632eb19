// Package memory implementa los puertos de almacenamiento en memoria con el mismo contrato que
// PostgreSQL: lecturas por clave, inserción "si no existe", escritura condicional por versión y
// consultas por placa en orden descendente. Se usa en tests y con STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Peajes-api/internal/application/settlement"
	"github.com/jhoicas/Peajes-api/internal/domain/entity"
	"github.com/jhoicas/Peajes-api/internal/domain/repository"
)

var _ settlement.TxRunner = (*Store)(nil)

// Store contiene todas las tablas. Los registros se guardan y entregan como copias.
type Store struct {
	mu         sync.Mutex
	tollPoints map[string]*entity.TollPoint
	accounts   map[string]*entity.Account
	tags       map[string]*entity.Tag
	debits     map[debitKey]*entity.DebitReceipt
	txns       map[string]*entity.Transaction
	invoices   map[string]*entity.Invoice
}

type debitKey struct{ tagID, txnID string }

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{
		tollPoints: make(map[string]*entity.TollPoint),
		accounts:   make(map[string]*entity.Account),
		tags:       make(map[string]*entity.Tag),
		debits:     make(map[debitKey]*entity.DebitReceipt),
		txns:       make(map[string]*entity.Transaction),
		invoices:   make(map[string]*entity.Invoice),
	}
}

// PutTollPoint carga un peaje en el catálogo (administración externa del catálogo).
func (s *Store) PutTollPoint(tp entity.TollPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tollPoints[tp.ID] = &tp
}

// PutAccount carga un vehículo registrado (registro externo).
func (s *Store) PutAccount(a entity.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.Plate] = &a
}

// TollPoints repositorio del catálogo.
func (s *Store) TollPoints() *TollPointRepo { return &TollPointRepo{v: s.view()} }

// Accounts repositorio de vehículos.
func (s *Store) Accounts() *AccountRepo { return &AccountRepo{v: s.view()} }

// Tags repositorio de tags.
func (s *Store) Tags() *TagRepo { return &TagRepo{v: s.view()} }

// Transactions repositorio de transacciones.
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{v: s.view()} }

// Invoices repositorio de facturas.
func (s *Store) Invoices() *InvoiceRepo { return &InvoiceRepo{v: s.view()} }

// RunSettlement ejecuta fn con el almacenamiento bloqueado; si fn falla se deshacen sus escrituras.
func (s *Store) RunSettlement(ctx context.Context, fn func(
	txnRepo repository.TransactionRepository,
	tagRepo repository.TagRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	v := &view{s: s, inTx: true}
	if err := fn(&TransactionRepo{v: v}, &TagRepo{v: v}, &InvoiceRepo{v: v}); err != nil {
		v.rollback()
		return err
	}
	return nil
}

// view es el acceso a las tablas: fuera de transacción bloquea por llamada; dentro, el lock ya
// lo tiene RunSettlement y cada escritura registra cómo deshacerse.
type view struct {
	s    *Store
	inTx bool
	undo []func()
}

func (s *Store) view() *view { return &view{s: s} }

func (v *view) lock() func() {
	if v.inTx {
		return func() {}
	}
	v.s.mu.Lock()
	return v.s.mu.Unlock
}

func (v *view) record(fn func()) {
	if v.inTx {
		v.undo = append(v.undo, fn)
	}
}

func (v *view) rollback() {
	for i := len(v.undo) - 1; i >= 0; i-- {
		v.undo[i]()
	}
	v.undo = nil
}

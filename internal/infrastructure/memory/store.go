// Package memory implementa todos los puertos de persistencia en memoria (pruebas y desarrollo local).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.TxRunner = (*Store)(nil)

type ruleKey struct {
	TenantID, ProductID, LocationID string
}

// state es todo lo mutable por transacciones.
type state struct {
	movements []*entity.MovementEntry
	nextID    int64
	stock     map[entity.StockKey]*entity.StockLevel
	orders    map[string]*entity.Order
	rules     map[ruleKey]*entity.ReorderRule
}

func newState() state {
	return state{
		nextID: 1,
		stock:  make(map[entity.StockKey]*entity.StockLevel),
		orders: make(map[string]*entity.Order),
		rules:  make(map[ruleKey]*entity.ReorderRule),
	}
}

// undo guarda la imagen previa de cada entrada tocada por la transacción, solo la primera vez.
// Un valor nil indica que la clave no existía. El libro solo crece: basta su longitud.
type undo struct {
	movements int
	nextID    int64
	stock     map[entity.StockKey]*entity.StockLevel
	orders    map[string]*entity.Order
	rules     map[ruleKey]*entity.ReorderRule
}

func newUndo(st *state) *undo {
	return &undo{
		movements: len(st.movements),
		nextID:    st.nextID,
		stock:     make(map[entity.StockKey]*entity.StockLevel),
		orders:    make(map[string]*entity.Order),
		rules:     make(map[ruleKey]*entity.ReorderRule),
	}
}

// rollback devuelve st al punto de inicio de la transacción.
func (u *undo) rollback(st *state) {
	clear(st.movements[u.movements:])
	st.movements = st.movements[:u.movements]
	st.nextID = u.nextID
	for k, prev := range u.stock {
		if prev == nil {
			delete(st.stock, k)
		} else {
			st.stock[k] = prev
		}
	}
	for k, prev := range u.orders {
		if prev == nil {
			delete(st.orders, k)
		} else {
			st.orders[k] = prev
		}
	}
	for k, prev := range u.rules {
		if prev == nil {
			delete(st.rules, k)
		} else {
			st.rules[k] = prev
		}
	}
}

func cloneOrder(o *entity.Order) *entity.Order {
	cp := *o
	cp.Lines = make([]*entity.OrderLine, len(o.Lines))
	for i, l := range o.Lines {
		line := *l
		cp.Lines[i] = &line
	}
	return &cp
}

// Store guarda libro, proyección, órdenes y reglas bajo un único candado de escritura:
// cada Run es serializable y todo-o-nada (diario de deshacer si fn falla).
type Store struct {
	mu    sync.RWMutex
	state state

	catalog  *Catalog
	settings *Settings
}

// NewStore crea un almacén vacío con catálogo y configuración por empresa vacíos.
func NewStore() *Store {
	return &Store{
		state:    newState(),
		catalog:  NewCatalog(),
		settings: NewSettings(),
	}
}

// Catalog devuelve el maestro en memoria asociado al almacén.
func (s *Store) Catalog() *Catalog { return s.catalog }

// Settings devuelve la configuración por empresa asociada al almacén.
func (s *Store) Settings() *Settings { return s.settings }

// Run ejecuta fn con repositorios sobre el estado vivo; si fn falla o el ctx se cancela, restaura.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u := newUndo(&s.state)
	err := fn(s.repos(u))
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		u.rollback(&s.state)
		return err
	}
	return nil
}

// RunReadOnly ejecuta fn bajo candado de lectura: ninguna escritura puede intercalarse.
func (s *Store) RunReadOnly(ctx context.Context, fn func(repos repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.repos(nil))
}

// repos sin diario es de solo lectura.
func (s *Store) repos(u *undo) repository.Repos {
	v := &view{st: &s.state, undo: u}
	return repository.Repos{
		Movements: &movementRepo{v},
		Stock:     &stockRepo{v},
		Orders:    &orderRepo{v},
		Rules:     &ruleRepo{v},
	}
}

// view es el acceso de los repositorios al estado durante una transacción.
type view struct {
	st   *state
	undo *undo
}

func (v *view) check(ctx context.Context, write bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if write && v.undo == nil {
		return domain.Internal("escritura en transacción de solo lectura", nil)
	}
	return nil
}

// Las funciones save* se llaman antes de mutar la entrada.

func (v *view) saveStock(k entity.StockKey) {
	if _, seen := v.undo.stock[k]; seen {
		return
	}
	var prev *entity.StockLevel
	if lvl, ok := v.st.stock[k]; ok {
		cp := *lvl
		prev = &cp
	}
	v.undo.stock[k] = prev
}

func (v *view) saveOrder(id string) {
	if _, seen := v.undo.orders[id]; seen {
		return
	}
	var prev *entity.Order
	if o, ok := v.st.orders[id]; ok {
		prev = cloneOrder(o)
	}
	v.undo.orders[id] = prev
}

func (v *view) saveRule(k ruleKey) {
	if _, seen := v.undo.rules[k]; seen {
		return
	}
	var prev *entity.ReorderRule
	if r, ok := v.st.rules[k]; ok {
		cp := *r
		prev = &cp
	}
	v.undo.rules[k] = prev
}

// Package memory implementa los puertos de stock en memoria del proceso.
// Sirve para desarrollo local (DB_DRIVER=memory) y para las pruebas de los casos de uso.
// Las transacciones se serializan entre sí y se deshacen ante error, pero las lecturas
// fuera de una transacción pueden ver escrituras aún no confirmadas.
package memory

import (
	"sync"

	"github.com/jhoicas/control-stock/internal/domain/entity"
)

// Store guarda todas las tablas del motor de stock.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	stocks    map[string]*entity.Stock // por ID
	stockKeys map[string]string        // ítem@ubicación → ID
	movements []*entity.StockMovement
	configs   map[string]*entity.StockConfig // producto|sucursal
	alerts    []*entity.StockAlert
	loads     map[string]*entity.BulkLoad
	loadItems map[string][]*entity.BulkLoadItem
	products  map[string]*entity.Product
	branches  map[string]*entity.Branch
	users     map[string]*entity.User
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		stocks:    make(map[string]*entity.Stock),
		stockKeys: make(map[string]string),
		configs:   make(map[string]*entity.StockConfig),
		loads:     make(map[string]*entity.BulkLoad),
		loadItems: make(map[string][]*entity.BulkLoadItem),
		products:  make(map[string]*entity.Product),
		branches:  make(map[string]*entity.Branch),
		users:     make(map[string]*entity.User),
	}
}

func stockKey(item entity.ItemRef, locationID string) string {
	return item.Key() + "@" + locationID
}

func pairKey(productID, branchID string) string {
	return productID + "|" + branchID
}

// Stocks devuelve el repositorio de saldos.
func (s *Store) Stocks() *StockRepo { return &StockRepo{s: s} }

// Movements devuelve el repositorio del libro de movimientos.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// Configs devuelve el repositorio de umbrales.
func (s *Store) Configs() *ConfigRepo { return &ConfigRepo{s: s} }

// Alerts devuelve el repositorio de alertas.
func (s *Store) Alerts() *AlertRepo { return &AlertRepo{s: s} }

// BulkLoads devuelve el repositorio de cargas masivas.
func (s *Store) BulkLoads() *BulkLoadRepo { return &BulkLoadRepo{s: s} }

// Products devuelve el catálogo de productos.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Branches devuelve el maestro de sucursales.
func (s *Store) Branches() *BranchRepo { return &BranchRepo{s: s} }

// Users devuelve el repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// PutProduct agrega o reemplaza un producto del catálogo.
func (s *Store) PutProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *p
	s.products[p.ID] = &c
}

// PutBranch agrega o reemplaza una sucursal.
func (s *Store) PutBranch(b *entity.Branch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *b
	s.branches[b.ID] = &c
}

// PutUser agrega o reemplaza un usuario.
func (s *Store) PutUser(u *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *u
	s.users[u.ID] = &c
}

// PutStock escribe un saldo tal cual, sin movimiento. Para importar datos y para pruebas.
func (s *Store) PutStock(st *entity.Stock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stocks[st.ID] = st.Clone()
	s.stockKeys[stockKey(st.Item, st.LocationID)] = st.ID
}

// PutMovement agrega un movimiento sin tocar el saldo.
func (s *Store) PutMovement(m *entity.StockMovement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *m
	s.movements = append(s.movements, &c)
}

type snapshot struct {
	stocks    map[string]*entity.Stock
	stockKeys map[string]string
	movements int
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{
		stocks:    make(map[string]*entity.Stock, len(s.stocks)),
		stockKeys: make(map[string]string, len(s.stockKeys)),
		movements: len(s.movements),
	}
	for id, st := range s.stocks {
		snap.stocks[id] = st.Clone()
	}
	for k, id := range s.stockKeys {
		snap.stockKeys[k] = id
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stocks = snap.stocks
	s.stockKeys = snap.stockKeys
	s.movements = s.movements[:snap.movements]
}

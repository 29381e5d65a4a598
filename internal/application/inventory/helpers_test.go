package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/control-stock/internal/application/inventory"
	"github.com/jhoicas/control-stock/internal/domain"
	"github.com/jhoicas/control-stock/internal/domain/entity"
	"github.com/jhoicas/control-stock/internal/domain/repository"
	"github.com/jhoicas/control-stock/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Datos de prueba
// ──────────────────────────────────────────────────────────────────────────────

const (
	branchCentro = "suc-centro"
	branchNorte  = "suc-norte"
	userAdmin    = "u-admin"
	userSeller   = "u-vendedor"

	prodDifusor = "p-difusor"
	prodVela    = "p-vela"
	prodJabon   = "p-jabon"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// assertQty compara decimales por valor (12 == 12.0).
func assertQty(t *testing.T, want float64, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, got.Equal(d(want)), "se esperaba %v y se obtuvo %s %v", want, got.String(), msgAndArgs)
}

type fixture struct {
	store   *memory.Store
	tx      *memory.TxRunner
	adjust  *inventory.AdjustStockUseCase
	auditor *inventory.ConsistencyAuditor
	configs *inventory.ThresholdConfigUseCase
	alerts  *inventory.AlertUseCase
	log     zerolog.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	s.PutBranch(&entity.Branch{ID: branchCentro, Name: "Centro", Type: entity.BranchTypeStore})
	s.PutBranch(&entity.Branch{ID: branchNorte, Name: "Norte", Type: entity.BranchTypeWarehouse})
	s.PutUser(&entity.User{ID: userAdmin, Name: "Ana", Role: entity.RoleAdmin, Status: "active"})
	s.PutUser(&entity.User{ID: userSeller, Name: "Luis", Role: entity.RoleVendedor, Status: "active"})
	s.PutProduct(&entity.Product{ID: prodDifusor, Name: "Difusor Bambú", Barcode: "7701001", DefaultMinStock: d(2), Active: true})
	s.PutProduct(&entity.Product{ID: prodVela, Name: "Vela Lavanda", Barcode: "7701002", DefaultMinStock: d(0), Active: true})
	s.PutProduct(&entity.Product{ID: prodJabon, Name: "Jabón de Avena", Barcode: "7701003", DefaultMinStock: d(4), Active: true})

	log := zerolog.Nop()
	tx := memory.NewTxRunner(s)
	auth := inventory.NewRoleAuthorizationProvider(s.Users(), log)
	return &fixture{
		store:   s,
		tx:      tx,
		adjust:  inventory.NewAdjustStockUseCase(tx, s.Stocks(), s.Movements(), s.Products(), s.Branches(), auth, log),
		auditor: inventory.NewConsistencyAuditor(tx, s.Stocks(), s.Movements(), decimal.Zero, log),
		configs: inventory.NewThresholdConfigUseCase(s.Configs(), s.Products(), s.Branches(), log),
		alerts:  inventory.NewAlertUseCase(s.Configs(), s.Stocks(), s.Products(), s.Alerts(), log),
		log:     log,
	}
}

// adjustOK aplica un ajuste sobre un producto que debe tener éxito.
func (f *fixture) adjustOK(t *testing.T, productID, branchID string, delta float64, actor string) *inventory.AdjustStockResult {
	t.Helper()
	res, err := f.adjust.AdjustStock(context.Background(), inventory.AdjustStockInput{
		Item:       entity.ProductItem(productID),
		LocationID: branchID,
		Delta:      d(delta),
		Reason:     "prueba",
		ActorID:    actor,
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) balance(t *testing.T, productID, branchID string) *entity.Stock {
	t.Helper()
	st, err := f.store.Stocks().Get(context.Background(), entity.ProductItem(productID), branchID)
	require.NoError(t, err)
	return st
}

func (f *fixture) movements(t *testing.T, stockID string) []*entity.StockMovement {
	t.Helper()
	movs, err := f.store.Movements().ListByStock(context.Background(), stockID, 1000, 0)
	require.NoError(t, err)
	return movs
}

func (f *fixture) upsertConfig(t *testing.T, productID, branchID string, maxQty, minQty, reorder float64) *entity.StockConfig {
	t.Helper()
	cfg, err := f.configs.Upsert(context.Background(), inventory.UpsertThresholdConfigInput{
		ProductID:    productID,
		BranchID:     branchID,
		StockMax:     d(maxQty),
		StockMin:     d(minQty),
		ReorderPoint: d(reorder),
		ActorID:      userAdmin,
	})
	require.NoError(t, err)
	return cfg
}

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba
// ──────────────────────────────────────────────────────────────────────────────

// MockAuthorizationProvider mock del chequeo de privilegios.
type MockAuthorizationProvider struct {
	mock.Mock
}

func (m *MockAuthorizationProvider) Privilege(ctx context.Context, actorID string) inventory.Privilege {
	args := m.Called(ctx, actorID)
	return args.Get(0).(inventory.Privilege)
}

// MockBranchAlertRecomputer mock del recálculo de alertas por sucursal.
type MockBranchAlertRecomputer struct {
	mock.Mock
}

func (m *MockBranchAlertRecomputer) RecomputeAlertsForBranch(ctx context.Context, branchID string) error {
	return m.Called(ctx, branchID).Error(0)
}

// MockDashboardInvalidator mock de la invalidación del tablero.
type MockDashboardInvalidator struct {
	mock.Mock
}

func (m *MockDashboardInvalidator) InvalidateAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// faultyTx envuelve el TxRunner en memoria y permite fallar UpdateQuantity a voluntad.
type faultyTx struct {
	inner *memory.TxRunner
	fail  func(stock *entity.Stock) error
}

func (f *faultyTx) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return f.inner.Run(ctx, func(stockRepo repository.StockRepository, movRepo repository.StockMovementRepository) error {
		return fn(&faultyStockRepo{StockRepository: stockRepo, fail: f.fail}, movRepo)
	})
}

type faultyStockRepo struct {
	repository.StockRepository
	fail func(stock *entity.Stock) error
}

func (r *faultyStockRepo) UpdateQuantity(ctx context.Context, stock *entity.Stock, expectedVersion int64) error {
	if err := r.fail(stock); err != nil {
		return err
	}
	return r.StockRepository.UpdateQuantity(ctx, stock, expectedVersion)
}

// fakeLocker bloqueo en proceso que registra las liberaciones.
type fakeLocker struct {
	mu       sync.Mutex
	held     bool
	released int
}

func (l *fakeLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (inventory.Unlock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return nil, domain.ErrLockNotObtained
	}
	l.held = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.held = false
		l.released++
		return nil
	}, nil
}

package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/jhoicas/control-stock/internal/application/analytics"
	"github.com/jhoicas/control-stock/internal/application/dto"
	"github.com/jhoicas/control-stock/internal/domain"
	"github.com/jhoicas/control-stock/internal/domain/entity"
	"github.com/jhoicas/control-stock/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func putStock(s *memory.Store, productID, branchID string, qty float64) {
	s.PutStock(&entity.Stock{
		ID:          productID + "@" + branchID,
		Item:        entity.ProductItem(productID),
		LocationID:  branchID,
		Quantity:    d(qty),
		Version:     1,
		LastUpdated: time.Now(),
	})
}

func putConfig(t *testing.T, s *memory.Store, productID, branchID string, maxQty, minQty, reorder float64) {
	t.Helper()
	require.NoError(t, s.Configs().Upsert(context.Background(), &entity.StockConfig{
		ID:           "cfg-" + productID + "-" + branchID,
		ProductID:    productID,
		BranchID:     branchID,
		StockMax:     d(maxQty),
		StockMin:     d(minQty),
		ReorderPoint: d(reorder),
		Active:       true,
	}))
}

// seedStore arma el escenario:
//
//	Zeta  (config)   cantidad 1  → critico, diff 9
//	Beta  (config)   cantidad 15 → exceso 5
//	Cera  (config)   cantidad 1  → normal, diff 9
//	alpha (inferido) cantidad 5  → normal, diff 10
//	Omega (sin config, cantidad 0) → excluido
//	alpha en Norte (inferido) cantidad 3
func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.NewStore()
	s.PutBranch(&entity.Branch{ID: "suc-centro", Name: "Centro", Type: entity.BranchTypeStore})
	s.PutBranch(&entity.Branch{ID: "suc-norte", Name: "Norte", Type: entity.BranchTypeWarehouse})
	for _, p := range []*entity.Product{
		{ID: "p-zeta", Name: "Zeta", Active: true},
		{ID: "p-alpha", Name: "alpha", Active: true},
		{ID: "p-beta", Name: "Beta", Active: true},
		{ID: "p-cera", Name: "Cera", Active: true},
		{ID: "p-omega", Name: "Omega", Active: true},
	} {
		s.PutProduct(p)
	}
	putStock(s, "p-zeta", "suc-centro", 1)
	putStock(s, "p-beta", "suc-centro", 15)
	putStock(s, "p-cera", "suc-centro", 1)
	putStock(s, "p-alpha", "suc-centro", 5)
	putStock(s, "p-omega", "suc-centro", 0)
	putStock(s, "p-alpha", "suc-norte", 3)
	putConfig(t, s, "p-zeta", "suc-centro", 10, 2, 4)
	putConfig(t, s, "p-beta", "suc-centro", 10, 2, 4)
	putConfig(t, s, "p-cera", "suc-centro", 10, 0, 0)
	return s
}

func newDashboard(s *memory.Store, cache analytics.DashboardCache) *analytics.StockDashboardUseCase {
	return analytics.NewStockDashboardUseCase(s.Configs(), s.Stocks(), s.Products(), s.Branches(), cache,
		analytics.DashboardOptions{TopN: 10, Locale: language.Spanish}, zerolog.Nop())
}

func names(rows []dto.StockAnalysisDTO) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ProductName)
	}
	return out
}

// MockDashboardCache mock del cache del tablero.
type MockDashboardCache struct {
	mock.Mock
}

func (m *MockDashboardCache) Get(ctx context.Context, branchID string) (*dto.StockDashboardDTO, bool, error) {
	args := m.Called(ctx, branchID)
	report, _ := args.Get(0).(*dto.StockDashboardDTO)
	return report, args.Bool(1), args.Error(2)
}

func (m *MockDashboardCache) Set(ctx context.Context, branchID string, report *dto.StockDashboardDTO) error {
	return m.Called(ctx, branchID, report).Error(0)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestBuildDashboard_OrdenAlfabeticoSinImportarConfiguracion(t *testing.T) {
	uc := newDashboard(seedStore(t), nil)

	report, err := uc.BuildDashboard(context.Background(), "suc-centro")
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "Beta", "Cera", "Zeta"}, names(report.FullAnalysis))
	assert.False(t, report.FullAnalysis[0].HasExplicitConfig, "alpha es inferido")
	assert.True(t, report.FullAnalysis[1].HasExplicitConfig)
}

func TestBuildDashboard_FilaInferidaUsaUmbralesDerivados(t *testing.T) {
	uc := newDashboard(seedStore(t), nil)

	report, err := uc.BuildDashboard(context.Background(), "suc-centro")
	require.NoError(t, err)

	alpha := report.FullAnalysis[0]
	assert.True(t, alpha.StockMax.Equal(d(15)), "max = 3×5")
	assert.True(t, alpha.StockMin.Equal(d(1)))
	assert.True(t, alpha.ReorderPoint.Equal(d(2)))
	assert.Equal(t, "normal", alpha.State)
}

func TestBuildDashboard_EstadisticasYTops(t *testing.T) {
	uc := newDashboard(seedStore(t), nil)

	report, err := uc.BuildDashboard(context.Background(), "suc-centro")
	require.NoError(t, err)

	assert.Equal(t, dto.DashboardStatsDTO{
		Total: 4, Critical: 1, Low: 0, Normal: 2, Excess: 1, Configured: 3, Inferred: 1,
	}, report.Stats)

	assert.Equal(t, []string{"alpha", "Cera", "Zeta"}, names(report.TopDeficit), "empates en orden alfabético")
	require.Len(t, report.TopExcess, 1)
	assert.Equal(t, "Beta", report.TopExcess[0].ProductName)
	assert.True(t, report.TopExcess[0].ExcessAmount.Equal(d(5)))

	require.Len(t, report.BranchSummaries, 1)
	assert.Equal(t, "Centro", report.BranchSummaries[0].BranchName)
	assert.Equal(t, 4, report.BranchSummaries[0].Total)
	assert.Equal(t, "suc-centro", report.BranchID)
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestBuildDashboard_Global(t *testing.T) {
	uc := newDashboard(seedStore(t), nil)

	report, err := uc.BuildDashboard(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 5, report.Stats.Total)
	assert.Equal(t, []string{"alpha", "alpha", "Beta", "Cera", "Zeta"}, names(report.FullAnalysis))
	assert.Equal(t, "Centro", report.FullAnalysis[0].BranchName, "desempate por sucursal")
	require.Len(t, report.BranchSummaries, 2)
	assert.Equal(t, "Norte", report.BranchSummaries[1].BranchName)
	assert.Equal(t, entity.BranchTypeWarehouse, report.BranchSummaries[1].BranchType)
}

func TestBuildDashboard_TopN(t *testing.T) {
	s := seedStore(t)
	uc := analytics.NewStockDashboardUseCase(s.Configs(), s.Stocks(), s.Products(), s.Branches(), nil,
		analytics.DashboardOptions{TopN: 2}, zerolog.Nop())

	report, err := uc.BuildDashboard(context.Background(), "suc-centro")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "Cera"}, names(report.TopDeficit))
}

func TestBuildDashboard_SucursalInexistente(t *testing.T) {
	uc := newDashboard(seedStore(t), nil)

	_, err := uc.BuildDashboard(context.Background(), "suc-nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBuildDashboard_UsaCache(t *testing.T) {
	s := seedStore(t)
	cached := &dto.StockDashboardDTO{BranchID: "suc-centro"}
	cache := new(MockDashboardCache)
	cache.On("Get", mock.Anything, "suc-centro").Return(cached, true, nil).Once()

	report, err := newDashboard(s, cache).BuildDashboard(context.Background(), "suc-centro")
	require.NoError(t, err)
	assert.Same(t, cached, report)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestBuildDashboard_GuardaEnCacheAlCalcular(t *testing.T) {
	s := seedStore(t)
	cache := new(MockDashboardCache)
	cache.On("Get", mock.Anything, "suc-centro").Return(nil, false, nil).Once()
	cache.On("Set", mock.Anything, "suc-centro", mock.AnythingOfType("*dto.StockDashboardDTO")).Return(nil).Once()

	report, err := newDashboard(s, cache).BuildDashboard(context.Background(), "suc-centro")
	require.NoError(t, err)
	assert.Len(t, report.FullAnalysis, 4)
	cache.AssertExpectations(t)
}

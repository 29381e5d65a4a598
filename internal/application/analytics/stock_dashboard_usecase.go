package analytics

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/jhoicas/control-stock/internal/application/dto"
	"github.com/jhoicas/control-stock/internal/domain"
	"github.com/jhoicas/control-stock/internal/domain/entity"
	"github.com/jhoicas/control-stock/internal/domain/repository"
	"github.com/jhoicas/control-stock/internal/domain/stock"
)

// DefaultTopN filas en cada top del tablero.
const DefaultTopN = 10

// DashboardCache guarda tableros ya calculados por sucursal ("" = global).
type DashboardCache interface {
	Get(ctx context.Context, branchID string) (*dto.StockDashboardDTO, bool, error)
	Set(ctx context.Context, branchID string, report *dto.StockDashboardDTO) error
}

// DashboardOptions parámetros del tablero.
type DashboardOptions struct {
	TopN   int
	Locale language.Tag // idioma del orden alfabético
}

// StockDashboardUseCase clasifica cada par (producto, sucursal) y arma el tablero de salud de stock.
//
// Une dos poblaciones:
//  1. pares con configuración explícita activa (cantidad 0 si no hay saldo)
//  2. pares con saldo > 0 y sin configuración, contra umbrales derivados
type StockDashboardUseCase struct {
	configs  repository.StockConfigRepository
	stocks   repository.StockRepository
	products repository.ProductRepository
	branches repository.BranchRepository
	cache    DashboardCache
	opts     DashboardOptions
	log      zerolog.Logger
	now      func() time.Time
}

// NewStockDashboardUseCase construye el caso de uso. cache puede ser nil.
func NewStockDashboardUseCase(
	configs repository.StockConfigRepository,
	stocks repository.StockRepository,
	products repository.ProductRepository,
	branches repository.BranchRepository,
	cache DashboardCache,
	opts DashboardOptions,
	log zerolog.Logger,
) *StockDashboardUseCase {
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.Locale == language.Und {
		opts.Locale = language.Spanish
	}
	return &StockDashboardUseCase{
		configs:  configs,
		stocks:   stocks,
		products: products,
		branches: branches,
		cache:    cache,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

// BuildDashboard arma el tablero de una sucursal o, con branchID vacío, de todas.
func (uc *StockDashboardUseCase) BuildDashboard(ctx context.Context, branchID string) (*dto.StockDashboardDTO, error) {
	if uc.cache != nil {
		cached, ok, err := uc.cache.Get(ctx, branchID)
		if err != nil {
			uc.log.Warn().Err(err).Msg("leer tablero cacheado")
		} else if ok {
			return cached, nil
		}
	}

	// ── Cuatro lecturas en paralelo ───────────────────────────────────────────
	var (
		configs  []*entity.StockConfig
		balances []*entity.Stock
		products []*entity.Product
		branches []*entity.Branch
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		configs, err = uc.configs.List(gctx, repository.StockConfigFilter{BranchID: branchID, ActiveOnly: true})
		if err != nil {
			return fmt.Errorf("dashboard: configuraciones: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		balances, err = uc.stocks.ListProductStocks(gctx, branchID)
		if err != nil {
			return fmt.Errorf("dashboard: saldos: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		products, err = uc.products.ListActive(gctx)
		if err != nil {
			return fmt.Errorf("dashboard: catálogo: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		branches, err = uc.branches.List(gctx)
		if err != nil {
			return fmt.Errorf("dashboard: sucursales: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	productByID := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}
	branchByID := make(map[string]*entity.Branch, len(branches))
	for _, b := range branches {
		branchByID[b.ID] = b
	}
	if branchID != "" && branchByID[branchID] == nil {
		return nil, fmt.Errorf("%w: sucursal %s", domain.ErrNotFound, branchID)
	}
	qty := make(map[string]decimal.Decimal, len(balances))
	for _, b := range balances {
		qty[pairKey(b.Item.ProductID, b.LocationID)] = b.Quantity
	}

	// ── Clasificación ─────────────────────────────────────────────────────────
	entries := make([]stock.ClassifiableEntry, 0, len(configs)+len(balances))
	configured := make(map[string]bool, len(configs))
	for _, cfg := range configs {
		key := pairKey(cfg.ProductID, cfg.BranchID)
		configured[key] = true
		entries = append(entries, stock.Configured(cfg, qty[key]))
	}
	for _, b := range balances {
		key := pairKey(b.Item.ProductID, b.LocationID)
		if configured[key] || !b.Quantity.IsPositive() {
			continue
		}
		catalogMin := decimal.Zero
		if p := productByID[b.Item.ProductID]; p != nil {
			catalogMin = p.DefaultMinStock
		}
		entries = append(entries, stock.Inferred(b.Item.ProductID, b.LocationID, b.Quantity, catalogMin))
	}

	rows := make([]dto.StockAnalysisDTO, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, toAnalysisRow(e, productByID[e.ProductID], branchByID[e.BranchID]))
	}
	stock.SortByName(rows, uc.opts.Locale,
		func(r dto.StockAnalysisDTO) string { return r.ProductName },
		func(a, b dto.StockAnalysisDTO) int {
			if a.BranchName != b.BranchName {
				return compareStrings(a.BranchName, b.BranchName)
			}
			if a.ProductID != b.ProductID {
				return compareStrings(a.ProductID, b.ProductID)
			}
			return compareStrings(a.BranchID, b.BranchID)
		})

	report := &dto.StockDashboardDTO{
		BranchID:        branchID,
		BranchSummaries: uc.branchSummaries(rows, branchByID),
		FullAnalysis:    rows,
		TopDeficit: topBy(rows, uc.opts.TopN, func(r dto.StockAnalysisDTO) decimal.Decimal {
			return r.Diff
		}),
		TopExcess: topBy(rows, uc.opts.TopN, func(r dto.StockAnalysisDTO) decimal.Decimal {
			return r.ExcessAmount
		}),
		GeneratedAt: uc.now(),
	}
	for _, r := range rows {
		count(&report.Stats, r)
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, branchID, report); err != nil {
			uc.log.Warn().Err(err).Msg("guardar tablero en cache")
		}
	}
	uc.log.Debug().Str("branch_id", branchID).Int("filas", len(rows)).Msg("tablero de stock generado")
	return report, nil
}

func pairKey(productID, branchID string) string { return productID + "|" + branchID }

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func toAnalysisRow(e stock.ClassifiableEntry, p *entity.Product, b *entity.Branch) dto.StockAnalysisDTO {
	c := e.Classify()
	t := e.Thresholds()
	row := dto.StockAnalysisDTO{
		ProductID:         e.ProductID,
		ProductName:       e.ProductID,
		BranchID:          e.BranchID,
		BranchName:        e.BranchID,
		Quantity:          c.Quantity,
		StockMax:          t.Max,
		StockMin:          t.Min,
		ReorderPoint:      t.ReorderPoint,
		Diff:              c.Diff,
		UtilizationPct:    c.UtilizationPct,
		State:             string(c.State),
		NeedsReorder:      c.NeedsReorder,
		CanLoadMore:       c.CanLoadMore,
		SuggestedQty:      c.SuggestedQty,
		HasExcess:         c.HasExcess,
		ExcessAmount:      c.ExcessAmount,
		RecommendedAction: c.RecommendedAction,
		HasExplicitConfig: e.HasExplicitConfig(),
	}
	if p != nil {
		row.ProductName = p.Name
		row.Barcode = p.Barcode
	}
	if b != nil {
		row.BranchName = b.Name
	}
	return row
}

func count(s *dto.DashboardStatsDTO, r dto.StockAnalysisDTO) {
	s.Total++
	switch stock.State(r.State) {
	case stock.StateCritical:
		s.Critical++
	case stock.StateLow:
		s.Low++
	case stock.StateExcess:
		s.Excess++
	default:
		s.Normal++
	}
	if r.HasExplicitConfig {
		s.Configured++
	} else {
		s.Inferred++
	}
}

func (uc *StockDashboardUseCase) branchSummaries(rows []dto.StockAnalysisDTO, branchByID map[string]*entity.Branch) []dto.BranchSummaryDTO {
	byBranch := make(map[string]*dto.BranchSummaryDTO)
	for _, r := range rows {
		s, ok := byBranch[r.BranchID]
		if !ok {
			s = &dto.BranchSummaryDTO{BranchID: r.BranchID, BranchName: r.BranchName}
			if b := branchByID[r.BranchID]; b != nil {
				s.BranchType = b.Type
			}
			byBranch[r.BranchID] = s
		}
		count(&s.DashboardStatsDTO, r)
	}
	out := make([]dto.BranchSummaryDTO, 0, len(byBranch))
	for _, s := range byBranch {
		out = append(out, *s)
	}
	stock.SortByName(out, uc.opts.Locale,
		func(s dto.BranchSummaryDTO) string { return s.BranchName },
		func(a, b dto.BranchSummaryDTO) int { return compareStrings(a.BranchID, b.BranchID) })
	return out
}

// topBy toma las n filas con mayor valor positivo. rows ya viene en orden alfabético
// y el ordenamiento es estable, así los empates quedan alfabéticos.
func topBy(rows []dto.StockAnalysisDTO, n int, value func(dto.StockAnalysisDTO) decimal.Decimal) []dto.StockAnalysisDTO {
	out := make([]dto.StockAnalysisDTO, 0, n)
	for _, r := range rows {
		if value(r).IsPositive() {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b dto.StockAnalysisDTO) int {
		return value(b).Cmp(value(a))
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

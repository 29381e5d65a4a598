package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/control-stock/internal/domain"
	"github.com/jhoicas/control-stock/internal/domain/entity"
	"github.com/jhoicas/control-stock/internal/domain/repository"
	"github.com/jhoicas/control-stock/internal/domain/stock"
)

// BulkLoadReasonPrefix prefijo del motivo de los ajustes escritos por una carga masiva.
const BulkLoadReasonPrefix = "bulk load: "

// StockAdjuster es la primitiva de ajuste que usa la carga masiva.
type StockAdjuster interface {
	AdjustStock(ctx context.Context, in AdjustStockInput) (*AdjustStockResult, error)
}

// BranchAlertRecomputer recalcula las alertas de una sucursal completa.
type BranchAlertRecomputer interface {
	RecomputeAlertsForBranch(ctx context.Context, branchID string) error
}

// BulkLoadLine es una línea del lote: al menos un identificador y una cantidad no negativa.
type BulkLoadLine struct {
	ProductID string
	Barcode   string
	Name      string
	Quantity  decimal.Decimal
}

// ProcessBulkLoadInput entrada de ProcessBatch.
type ProcessBulkLoadInput struct {
	Name        string
	Description string
	BranchID    string
	Mode        string
	Lines       []BulkLoadLine
	ActorID     string
}

// BulkLoadSummary contadores del lote.
type BulkLoadSummary struct {
	Total          int
	Processed      int
	Errors         int
	SuccessRatePct int64
}

// BulkLoadResult lote finalizado, resumen y resultado por línea.
type BulkLoadResult struct {
	Batch   *entity.BulkLoad
	Summary BulkLoadSummary
	Lines   []*entity.BulkLoadItem
}

// BulkLoadUseCase aplica conteos físicos o recepciones a una sucursal, línea por línea.
type BulkLoadUseCase struct {
	adjuster      StockAdjuster
	stocks        repository.StockRepository
	configs       repository.StockConfigRepository
	products      repository.ProductRepository
	branches      repository.BranchRepository
	loads         repository.BulkLoadRepository
	alerts        BranchAlertRecomputer
	dashboard     DashboardInvalidator
	allowNegative bool
	log           zerolog.Logger
	now           func() time.Time
}

// NewBulkLoadUseCase construye el procesador. allowNegative se pasa a cada ajuste.
func NewBulkLoadUseCase(
	adjuster StockAdjuster,
	stocks repository.StockRepository,
	configs repository.StockConfigRepository,
	products repository.ProductRepository,
	branches repository.BranchRepository,
	loads repository.BulkLoadRepository,
	alerts BranchAlertRecomputer,
	dashboard DashboardInvalidator,
	allowNegative bool,
	log zerolog.Logger,
) *BulkLoadUseCase {
	return &BulkLoadUseCase{
		adjuster:      adjuster,
		stocks:        stocks,
		configs:       configs,
		products:      products,
		branches:      branches,
		loads:         loads,
		alerts:        alerts,
		dashboard:     dashboard,
		allowNegative: allowNegative,
		log:           log,
		now:           time.Now,
	}
}

func validMode(mode string) bool {
	switch mode {
	case entity.BulkLoadModeIncrement, entity.BulkLoadModeSet, entity.BulkLoadModeDecrement:
		return true
	}
	return false
}

// ProcessBatch registra el lote en estado procesando, procesa las líneas en orden y lo finaliza.
// Los errores de resolución o de ajuste quedan en la línea y no abortan el lote.
// Reenviar el mismo lote vuelve a aplicar los deltas.
func (uc *BulkLoadUseCase) ProcessBatch(ctx context.Context, in ProcessBulkLoadInput) (*BulkLoadResult, error) {
	if in.Name == "" || in.BranchID == "" {
		return nil, fmt.Errorf("%w: nombre y sucursal son requeridos", domain.ErrInvalidInput)
	}
	if !validMode(in.Mode) {
		return nil, fmt.Errorf("%w: modo %q no soportado", domain.ErrInvalidInput, in.Mode)
	}
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: el lote no tiene líneas", domain.ErrInvalidInput)
	}
	branch, err := uc.branches.GetByID(ctx, in.BranchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, fmt.Errorf("%w: sucursal %s", domain.ErrNotFound, in.BranchID)
	}
	catalog, err := uc.products.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("cargar catálogo: %w", err)
	}

	batch := &entity.BulkLoad{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		BranchID:    in.BranchID,
		Mode:        in.Mode,
		Status:      entity.BulkLoadStatusProcessing,
		TotalItems:  len(in.Lines),
		CreatedBy:   in.ActorID,
		StartedAt:   uc.now(),
	}
	if err := uc.loads.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("crear carga masiva: %w", err)
	}
	log := uc.log.With().Str("bulk_load_id", batch.ID).Str("branch_id", batch.BranchID).Logger()
	log.Info().Str("modo", batch.Mode).Int("lineas", batch.TotalItems).Msg("carga masiva iniciada")

	results := make([]*entity.BulkLoadItem, 0, len(in.Lines))
	for i, line := range in.Lines {
		item := uc.processLine(ctx, log, batch, in.ActorID, i+1, line, catalog)
		if err := uc.loads.AddItem(ctx, item); err != nil {
			return nil, fmt.Errorf("registrar línea %d: %w", item.LineNumber, err)
		}
		if item.Status == entity.BulkLoadItemProcessed {
			batch.ProcessedItems++
		} else {
			batch.ErrorItems++
		}
		results = append(results, item)
	}

	batch.Status = entity.BulkLoadStatusCompleted
	if batch.ErrorItems > 0 {
		batch.Status = entity.BulkLoadStatusCompletedWithErrors
	}
	finished := uc.now()
	batch.FinishedAt = &finished
	if err := uc.loads.Finalize(ctx, batch); err != nil {
		return nil, fmt.Errorf("finalizar carga masiva: %w", err)
	}

	// Una sola pasada de alertas por lote.
	if err := uc.alerts.RecomputeAlertsForBranch(ctx, batch.BranchID); err != nil {
		log.Error().Err(err).Msg("recalcular alertas tras carga masiva")
	}
	if uc.dashboard != nil {
		if err := uc.dashboard.InvalidateAll(ctx); err != nil {
			log.Warn().Err(err).Msg("invalidar cache del tablero")
		}
	}

	summary := Summarize(batch)
	log.Info().Str("estado", batch.Status).Int("procesadas", summary.Processed).
		Int("errores", summary.Errors).Int64("exito_pct", summary.SuccessRatePct).Msg("carga masiva finalizada")
	return &BulkLoadResult{Batch: batch, Summary: summary, Lines: results}, nil
}

func (uc *BulkLoadUseCase) processLine(
	ctx context.Context,
	log zerolog.Logger,
	batch *entity.BulkLoad,
	actorID string,
	lineNumber int,
	line BulkLoadLine,
	catalog []*entity.Product,
) *entity.BulkLoadItem {
	item := &entity.BulkLoadItem{
		ID:         uuid.New().String(),
		BulkLoadID: batch.ID,
		LineNumber: lineNumber,
		ProductID:  line.ProductID,
		Barcode:    line.Barcode,
		Name:       line.Name,
		Quantity:   line.Quantity,
		CreatedAt:  uc.now(),
	}
	fail := func(err error) *entity.BulkLoadItem {
		item.Status = entity.BulkLoadItemError
		item.Error = err.Error()
		log.Warn().Err(err).Int("linea", lineNumber).Msg("línea de carga masiva con error")
		return item
	}

	if line.Quantity.IsNegative() {
		return fail(fmt.Errorf("%w: cantidad negativa", domain.ErrInvalidInput))
	}
	if line.ProductID == "" && line.Barcode == "" && line.Name == "" {
		return fail(fmt.Errorf("%w: la línea no identifica ningún producto", domain.ErrInvalidInput))
	}
	product, err := uc.resolve(ctx, line, catalog)
	if err != nil {
		return fail(err)
	}
	item.ResolvedProductID = product.ID

	ref := entity.ProductItem(product.ID)
	current, err := uc.stocks.Get(ctx, ref, batch.BranchID)
	if err != nil {
		return fail(err)
	}
	before := quantityOf(current)
	item.QuantityBefore = before

	var delta, expected decimal.Decimal
	switch batch.Mode {
	case entity.BulkLoadModeIncrement:
		delta = line.Quantity
		expected = before.Add(delta)
	case entity.BulkLoadModeSet:
		delta = line.Quantity.Sub(before)
		expected = line.Quantity
	case entity.BulkLoadModeDecrement:
		delta = line.Quantity.Neg()
		expected = decimal.Max(decimal.Zero, before.Add(delta))
	}

	if !delta.IsZero() {
		_, err := uc.adjuster.AdjustStock(ctx, AdjustStockInput{
			Item:          ref,
			LocationID:    batch.BranchID,
			Delta:         delta,
			Reason:        BulkLoadReasonPrefix + batch.ID,
			ActorID:       actorID,
			Correlation:   entity.MovementCorrelation{BulkLoadID: batch.ID},
			AllowNegative: uc.allowNegative,
		})
		if err != nil {
			return fail(err)
		}
	}

	// El saldo releído es el valor autoritativo, no el esperado.
	after, err := uc.stocks.Get(ctx, ref, batch.BranchID)
	if err != nil {
		return fail(err)
	}
	item.QuantityAfter = quantityOf(after)
	if item.QuantityAfter.IsNegative() {
		log.Warn().Str("product_id", product.ID).Str("cantidad", item.QuantityAfter.String()).
			Msg("carga masiva dejó saldo negativo")
	} else if !item.QuantityAfter.Equal(expected) {
		log.Debug().Str("product_id", product.ID).Str("esperado", expected.String()).
			Str("final", item.QuantityAfter.String()).Msg("saldo final difiere del esperado")
	}

	uc.provisionConfig(ctx, log, product, batch, actorID, item.QuantityAfter)
	item.Status = entity.BulkLoadItemProcessed
	return item
}

// resolve prueba en orden: id exacto, código de barras exacto y coincidencia por nombre.
func (uc *BulkLoadUseCase) resolve(ctx context.Context, line BulkLoadLine, catalog []*entity.Product) (*entity.Product, error) {
	if line.ProductID != "" {
		p, err := uc.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			return p, nil
		}
	}
	if line.Barcode != "" {
		p, err := uc.products.GetByBarcode(ctx, line.Barcode)
		if err != nil {
			return nil, err
		}
		if p != nil {
			return p, nil
		}
	}
	if line.Name != "" {
		if p, _ := stock.MatchByName(line.Name, catalog); p != nil {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: id=%q codigo=%q nombre=%q", domain.ErrResolution, line.ProductID, line.Barcode, line.Name)
}

func (uc *BulkLoadUseCase) provisionConfig(ctx context.Context, log zerolog.Logger, product *entity.Product, batch *entity.BulkLoad, actorID string, quantity decimal.Decimal) {
	t := stock.DefaultThresholds(product.DefaultMinStock, quantity)
	now := uc.now()
	created, err := uc.configs.CreateIfMissing(ctx, &entity.StockConfig{
		ID:           uuid.New().String(),
		ProductID:    product.ID,
		BranchID:     batch.BranchID,
		StockMax:     t.Max,
		StockMin:     t.Min,
		ReorderPoint: t.ReorderPoint,
		CreatedBy:    actorID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		log.Warn().Err(err).Str("product_id", product.ID).Msg("no se pudo autoaprovisionar la configuración")
		return
	}
	if created {
		log.Debug().Str("product_id", product.ID).Str("max", t.Max.String()).Msg("configuración autoaprovisionada")
	}
}

// Summarize calcula el resumen de un lote; SuccessRatePct = round(100 × procesadas / total).
func Summarize(b *entity.BulkLoad) BulkLoadSummary {
	s := BulkLoadSummary{Total: b.TotalItems, Processed: b.ProcessedItems, Errors: b.ErrorItems}
	if s.Total > 0 {
		s.SuccessRatePct = decimal.NewFromInt(int64(100 * s.Processed)).
			Div(decimal.NewFromInt(int64(s.Total))).Round(0).IntPart()
	}
	return s
}

// GetBulkLoad devuelve el lote y sus líneas; ErrNotFound si no existe.
func (uc *BulkLoadUseCase) GetBulkLoad(ctx context.Context, id string) (*entity.BulkLoad, []*entity.BulkLoadItem, error) {
	batch, err := uc.loads.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if batch == nil {
		return nil, nil, domain.ErrNotFound
	}
	items, err := uc.loads.ListItems(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return batch, items, nil
}

// ListBulkLoads lista los lotes de una sucursal (todas si branchID está vacío), más recientes primero.
func (uc *BulkLoadUseCase) ListBulkLoads(ctx context.Context, branchID string, limit, offset int) ([]*entity.BulkLoad, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.loads.ListByBranch(ctx, branchID, limit, offset)
}

package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/control-stock/internal/application/inventory"
	"github.com/jhoicas/control-stock/internal/domain"
	"github.com/jhoicas/control-stock/internal/domain/entity"
	"github.com/jhoicas/control-stock/internal/domain/repository"
)

func newBulkLoad(f *fixture, allowNegative bool, alerts inventory.BranchAlertRecomputer, dash inventory.DashboardInvalidator) *inventory.BulkLoadUseCase {
	if alerts == nil {
		alerts = f.alerts
	}
	return inventory.NewBulkLoadUseCase(f.adjust, f.store.Stocks(), f.store.Configs(), f.store.Products(),
		f.store.Branches(), f.store.BulkLoads(), alerts, dash, allowNegative, f.log)
}

func TestProcessBatch_ModoSetDifusorBambu(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.adjustOK(t, prodDifusor, branchCentro, 12, userSeller)
	uc := newBulkLoad(f, true, nil, nil)

	res, err := uc.ProcessBatch(ctx, inventory.ProcessBulkLoadInput{
		Name:     "Conteo semanal",
		BranchID: branchCentro,
		Mode:     entity.BulkLoadModeSet,
		Lines:    []inventory.BulkLoadLine{{Name: "Difusor Bambú", Quantity: d(20)}},
		ActorID:  userSeller,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.BulkLoadStatusCompleted, res.Batch.Status)
	require.NotNil(t, res.Batch.FinishedAt)
	require.Len(t, res.Lines, 1)
	line := res.Lines[0]
	assert.Equal(t, entity.BulkLoadItemProcessed, line.Status)
	assert.Equal(t, prodDifusor, line.ResolvedProductID)
	assertQty(t, 12, line.QuantityBefore)
	assertQty(t, 20, line.QuantityAfter)

	stored := f.balance(t, prodDifusor, branchCentro)
	assertQty(t, 20, stored.Quantity)
	movs := f.movements(t, stored.ID)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementDirectionEntry, movs[0].Direction)
	assertQty(t, 8, movs[0].Quantity)
	assert.Equal(t, inventory.BulkLoadReasonPrefix+res.Batch.ID, movs[0].Reason)
	assert.Equal(t, res.Batch.ID, movs[0].Correlation.BulkLoadID)

	assert.Equal(t, inventory.BulkLoadSummary{Total: 1, Processed: 1, Errors: 0, SuccessRatePct: 100}, res.Summary)
}

func TestProcessBatch_LineaNoResueltaNoAbortaElLote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := newBulkLoad(f, true, nil, nil)

	res, err := uc.ProcessBatch(ctx, inventory.ProcessBulkLoadInput{
		Name:     "Recepción",
		BranchID: branchCentro,
		Mode:     entity.BulkLoadModeIncrement,
		Lines: []inventory.BulkLoadLine{
			{ProductID: prodVela, Quantity: d(5)},
			{Name: "Incienso de Sándalo", Quantity: d(3)},
			{Barcode: "7701003", Quantity: d(7)},
		},
		ActorID: userSeller,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.BulkLoadStatusCompletedWithErrors, res.Batch.Status)
	assert.Equal(t, 2, res.Batch.ProcessedItems)
	assert.Equal(t, 1, res.Batch.ErrorItems)
	assert.Equal(t, int64(67), res.Summary.SuccessRatePct)

	assert.Equal(t, entity.BulkLoadItemError, res.Lines[1].Status)
	assert.Contains(t, res.Lines[1].Error, domain.ErrResolution.Error())
	assertQty(t, 5, f.balance(t, prodVela, branchCentro).Quantity)
	assertQty(t, 7, f.balance(t, prodJabon, branchCentro).Quantity)

	batch, items, err := uc.GetBulkLoad(ctx, res.Batch.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BulkLoadStatusCompletedWithErrors, batch.Status)
	require.Len(t, items, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{items[0].LineNumber, items[1].LineNumber, items[2].LineNumber})
}

func TestProcessBatch_ResolucionPorPalabrasYSubcadena(t *testing.T) {
	f := newFixture(t)
	uc := newBulkLoad(f, true, nil, nil)

	res, err := uc.ProcessBatch(context.Background(), inventory.ProcessBulkLoadInput{
		Name:     "Recepción",
		BranchID: branchCentro,
		Mode:     entity.BulkLoadModeIncrement,
		Lines: []inventory.BulkLoadLine{
			{Name: "avena jabon", Quantity: d(1)},
			{Name: "LAVAN", Quantity: d(1)},
		},
		ActorID: userSeller,
	})
	require.NoError(t, err)
	assert.Equal(t, prodJabon, res.Lines[0].ResolvedProductID)
	assert.Equal(t, prodVela, res.Lines[1].ResolvedProductID)
}

func TestProcessBatch_AutoaprovisionaConfiguracion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.upsertConfig(t, prodVela, branchCentro, 100, 10, 20)
	uc := newBulkLoad(f, true, nil, nil)

	_, err := uc.ProcessBatch(ctx, inventory.ProcessBulkLoadInput{
		Name:     "Conteo",
		BranchID: branchCentro,
		Mode:     entity.BulkLoadModeSet,
		Lines: []inventory.BulkLoadLine{
			{ProductID: prodDifusor, Quantity: d(20)},
			{ProductID: prodVela, Quantity: d(4)},
		},
		ActorID: userSeller,
	})
	require.NoError(t, err)

	cfg, err := f.store.Configs().Get(ctx, prodDifusor, branchCentro)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assertQty(t, 2, cfg.StockMin)
	assertQty(t, 60, cfg.StockMax)
	assertQty(t, 3, cfg.ReorderPoint)
	assert.Equal(t, userSeller, cfg.CreatedBy)

	existing, err := f.store.Configs().Get(ctx, prodVela, branchCentro)
	require.NoError(t, err)
	assertQty(t, 100, existing.StockMax, "una configuración existente no se pisa")

	alerts, err := f.alerts.ListAlerts(ctx, repository.AlertFilter{BranchID: branchCentro, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, alerts, 1, "la vela quedó en 4, bajo el mínimo 10")
	assert.Equal(t, entity.AlertKindCritical, alerts[0].Kind)
}

func TestProcessBatch_DecrementoConYSinOverride(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.adjustOK(t, prodVela, branchCentro, 3, userSeller)
	f.adjustOK(t, prodJabon, branchCentro, 3, userSeller)
	in := func(productID string) inventory.ProcessBulkLoadInput {
		return inventory.ProcessBulkLoadInput{
			Name:     "Mermas",
			BranchID: branchCentro,
			Mode:     entity.BulkLoadModeDecrement,
			Lines:    []inventory.BulkLoadLine{{ProductID: productID, Quantity: d(5)}},
			ActorID:  userSeller,
		}
	}

	res, err := newBulkLoad(f, true, nil, nil).ProcessBatch(ctx, in(prodVela))
	require.NoError(t, err)
	assert.Equal(t, entity.BulkLoadItemProcessed, res.Lines[0].Status)
	assertQty(t, -2, res.Lines[0].QuantityAfter, "el saldo releído manda sobre el esperado")

	res, err = newBulkLoad(f, false, nil, nil).ProcessBatch(ctx, in(prodJabon))
	require.NoError(t, err)
	assert.Equal(t, entity.BulkLoadItemError, res.Lines[0].Status)
	assert.Contains(t, res.Lines[0].Error, domain.ErrInsufficientStock.Error())
	assertQty(t, 3, f.balance(t, prodJabon, branchCentro).Quantity)
}

func TestProcessBatch_LineasInvalidasYDeltaCero(t *testing.T) {
	f := newFixture(t)
	f.adjustOK(t, prodVela, branchCentro, 4, userSeller)
	uc := newBulkLoad(f, true, nil, nil)

	res, err := uc.ProcessBatch(context.Background(), inventory.ProcessBulkLoadInput{
		Name:     "Conteo",
		BranchID: branchCentro,
		Mode:     entity.BulkLoadModeSet,
		Lines: []inventory.BulkLoadLine{
			{ProductID: prodJabon, Quantity: d(-1)},
			{Quantity: d(3)},
			{ProductID: prodVela, Quantity: d(4)},
		},
		ActorID: userSeller,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.BulkLoadItemError, res.Lines[0].Status)
	assert.Equal(t, entity.BulkLoadItemError, res.Lines[1].Status)
	assert.Equal(t, entity.BulkLoadItemProcessed, res.Lines[2].Status)

	stored := f.balance(t, prodVela, branchCentro)
	assert.Len(t, f.movements(t, stored.ID), 1, "delta cero no escribe movimiento")
}

func TestProcessBatch_EntradaInvalida(t *testing.T) {
	f := newFixture(t)
	uc := newBulkLoad(f, true, nil, nil)
	lines := []inventory.BulkLoadLine{{ProductID: prodVela, Quantity: d(1)}}
	ctx := context.Background()

	_, err := uc.ProcessBatch(ctx, inventory.ProcessBulkLoadInput{BranchID: branchCentro, Mode: entity.BulkLoadModeSet, Lines: lines})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.ProcessBatch(ctx, inventory.ProcessBulkLoadInput{Name: "x", BranchID: branchCentro, Mode: "reemplazar", Lines: lines})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.ProcessBatch(ctx, inventory.ProcessBulkLoadInput{Name: "x", BranchID: branchCentro, Mode: entity.BulkLoadModeSet})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.ProcessBatch(ctx, inventory.ProcessBulkLoadInput{Name: "x", BranchID: "suc-nada", Mode: entity.BulkLoadModeSet, Lines: lines})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	loads, err := uc.ListBulkLoads(ctx, "", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, loads)
}

func TestProcessBatch_AlertasYCacheUnaVezPorLote(t *testing.T) {
	f := newFixture(t)
	alerts := new(MockBranchAlertRecomputer)
	alerts.On("RecomputeAlertsForBranch", mock.Anything, branchCentro).Return(nil).Once()
	dash := new(MockDashboardInvalidator)
	dash.On("InvalidateAll", mock.Anything).Return(nil).Once()
	uc := newBulkLoad(f, true, alerts, dash)

	_, err := uc.ProcessBatch(context.Background(), inventory.ProcessBulkLoadInput{
		Name:     "Recepción",
		BranchID: branchCentro,
		Mode:     entity.BulkLoadModeIncrement,
		Lines: []inventory.BulkLoadLine{
			{ProductID: prodVela, Quantity: d(1)},
			{ProductID: prodJabon, Quantity: d(1)},
			{ProductID: prodDifusor, Quantity: d(1)},
		},
		ActorID: userSeller,
	})
	require.NoError(t, err)
	alerts.AssertExpectations(t)
	dash.AssertExpectations(t)
}

func TestListBulkLoads_PorSucursal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := newBulkLoad(f, true, nil, nil)
	for _, branch := range []string{branchCentro, branchNorte, branchCentro} {
		_, err := uc.ProcessBatch(ctx, inventory.ProcessBulkLoadInput{
			Name:     "Recepción",
			BranchID: branch,
			Mode:     entity.BulkLoadModeIncrement,
			Lines:    []inventory.BulkLoadLine{{ProductID: prodVela, Quantity: d(1)}},
			ActorID:  userSeller,
		})
		require.NoError(t, err)
	}

	centro, err := uc.ListBulkLoads(ctx, branchCentro, 10, 0)
	require.NoError(t, err)
	assert.Len(t, centro, 2)

	all, err := uc.ListBulkLoads(ctx, "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, _, err = uc.GetBulkLoad(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

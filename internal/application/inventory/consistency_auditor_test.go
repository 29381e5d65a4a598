package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/control-stock/internal/application/inventory"
	"github.com/jhoicas/control-stock/internal/domain"
	"github.com/jhoicas/control-stock/internal/domain/entity"
)

func putRawStock(f *fixture, id, productID string, qty float64, version int64) {
	f.store.PutStock(&entity.Stock{
		ID:          id,
		Item:        entity.ProductItem(productID),
		LocationID:  branchCentro,
		Quantity:    d(qty),
		Version:     version,
		LastUpdated: time.Now(),
	})
}

func kinds(findings []inventory.Inconsistency) []string {
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Kind)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Detección
// ──────────────────────────────────────────────────────────────────────────────

func TestDetectInconsistencies_SaldoSanoNoReporta(t *testing.T) {
	f := newFixture(t)
	f.adjustOK(t, prodVela, branchCentro, 10, userSeller)
	f.adjustOK(t, prodVela, branchCentro, -3, userSeller)

	findings, err := f.auditor.DetectInconsistencies(context.Background())
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestDetectInconsistencies_NegativoYDeriva(t *testing.T) {
	f := newFixture(t)
	putRawStock(f, "st-neg", prodVela, -5, 0)

	findings, err := f.auditor.DetectInconsistencies(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{inventory.InconsistencyNegativeBalance, inventory.InconsistencyLedgerDrift}, kinds(findings))
	for _, fnd := range findings {
		assert.Equal(t, "st-neg", fnd.StockID)
		assertQty(t, -5, fnd.Current)
		assertQty(t, 0, fnd.Computed)
		assertQty(t, -5, fnd.Delta)
	}
}

func TestDetectInconsistencies_ToleranciaEpsilon(t *testing.T) {
	f := newFixture(t)
	res := f.adjustOK(t, prodVela, branchCentro, 10, userSeller)
	putRawStock(f, res.Stock.ID, prodVela, 10.0005, res.Stock.Version)

	findings, err := f.auditor.DetectInconsistencies(context.Background())
	require.NoError(t, err)
	assert.Empty(t, findings, "una diferencia menor a 1e-3 no es deriva")
}

func TestDetectInconsistencies_EsSoloLectura(t *testing.T) {
	f := newFixture(t)
	putRawStock(f, "st-neg", prodVela, -5, 0)

	_, err := f.auditor.DetectInconsistencies(context.Background())
	require.NoError(t, err)

	assertQty(t, -5, f.balance(t, prodVela, branchCentro).Quantity)
	assert.Empty(t, f.movements(t, "st-neg"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Reparación
// ──────────────────────────────────────────────────────────────────────────────

func TestRepairInconsistencies_SaldoNegativoSinMovimientos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	putRawStock(f, "st-neg", prodVela, -5, 0)

	summary, err := f.auditor.RepairInconsistencies(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Repaired)
	assert.Equal(t, 1, summary.Skipped, "el negativo ya quedó resuelto al realinear")
	assert.Equal(t, 0, summary.Failed)

	assertQty(t, 0, f.balance(t, prodVela, branchCentro).Quantity)
	movs := f.movements(t, "st-neg")
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementDirectionEntry, movs[0].Direction)
	assertQty(t, 5, movs[0].Quantity)
	assert.Contains(t, movs[0].Reason, inventory.ReasonAutomaticCorrection)
	assert.Equal(t, inventory.SystemActorID, movs[0].ActorID)

	findings, err := f.auditor.DetectInconsistencies(ctx)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestRepairInconsistencies_NegativoConLibroConsistente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.adjustOK(t, prodVela, branchCentro, -4, userAdmin)

	summary, err := f.auditor.RepairInconsistencies(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Repaired)
	assert.Equal(t, inventory.RepairStatusRepaired, summary.Details[0].Status)

	stored := f.balance(t, prodVela, branchCentro)
	assertQty(t, 0, stored.Quantity)
	movs := f.movements(t, res.Stock.ID)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementKindCorrection, movs[0].Kind)
	assert.Equal(t, entity.MovementDirectionEntry, movs[0].Direction)
	assertQty(t, 4, movs[0].Quantity)

	sum, err := f.store.Movements().SumByStock(ctx, res.Stock.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(stored.Quantity), "la corrección mantiene el libro cuadrado")
}

func TestRepairInconsistencies_DerivaPositivaGeneraSalida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.adjustOK(t, prodVela, branchCentro, 10, userSeller)
	putRawStock(f, res.Stock.ID, prodVela, 13, res.Stock.Version)

	summary, err := f.auditor.RepairInconsistencies(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Repaired)
	assertQty(t, 3, summary.Details[0].Delta)

	stored := f.balance(t, prodVela, branchCentro)
	assertQty(t, 10, stored.Quantity)
	assert.Equal(t, res.Stock.Version+1, stored.Version)

	movs := f.movements(t, res.Stock.ID)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementKindReconciliation, movs[0].Kind)
	assert.Equal(t, entity.MovementDirectionExit, movs[0].Direction)
	assertQty(t, 3, movs[0].Quantity)
	assert.Equal(t, inventory.ReasonDriftCorrection, movs[0].Reason)

	findings, err := f.auditor.DetectInconsistencies(ctx)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestRepairInconsistencies_DerivaNegativaGeneraEntrada(t *testing.T) {
	f := newFixture(t)
	res := f.adjustOK(t, prodVela, branchCentro, 10, userSeller)
	putRawStock(f, res.Stock.ID, prodVela, 7.5, res.Stock.Version)

	_, err := f.auditor.RepairInconsistencies(context.Background())
	require.NoError(t, err)

	assertQty(t, 10, f.balance(t, prodVela, branchCentro).Quantity)
	movs := f.movements(t, res.Stock.ID)
	assert.Equal(t, entity.MovementDirectionEntry, movs[0].Direction)
	assertQty(t, 2.5, movs[0].Quantity)
}

func TestRepairInconsistencies_UnFalloNoDetieneAlResto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.adjustOK(t, prodVela, branchCentro, 10, userSeller)
	b := f.adjustOK(t, prodJabon, branchCentro, 10, userSeller)
	putRawStock(f, a.Stock.ID, prodVela, 12, a.Stock.Version)
	putRawStock(f, b.Stock.ID, prodJabon, 15, b.Stock.Version)

	tx := &faultyTx{inner: f.tx, fail: func(st *entity.Stock) error {
		if st.ID == a.Stock.ID {
			return errors.New("disco lleno")
		}
		return nil
	}}
	auditor := inventory.NewConsistencyAuditor(tx, f.store.Stocks(), f.store.Movements(), decimal.Zero, f.log)

	summary, err := auditor.RepairInconsistencies(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Repaired)
	assert.Equal(t, 1, summary.Failed)

	for _, det := range summary.Details {
		if det.StockID == a.Stock.ID {
			assert.Equal(t, inventory.RepairStatusFailed, det.Status)
			assert.Contains(t, det.Error, "disco lleno")
		} else {
			assert.Equal(t, inventory.RepairStatusRepaired, det.Status)
		}
	}
	assertQty(t, 12, f.balance(t, prodVela, branchCentro).Quantity, "el fallido queda intacto")
	assertQty(t, 10, f.balance(t, prodJabon, branchCentro).Quantity)
	assert.Len(t, f.movements(t, a.Stock.ID), 1, "rollback: sin movimiento de conciliación")
}

// ──────────────────────────────────────────────────────────────────────────────
// Planificador
// ──────────────────────────────────────────────────────────────────────────────

func TestAuditScheduler_RunOnceSoloDetecta(t *testing.T) {
	f := newFixture(t)
	putRawStock(f, "st-neg", prodVela, -5, 0)
	locker := &fakeLocker{}
	sched := inventory.NewAuditScheduler(f.auditor, locker, time.Minute, time.Minute, false, f.log)

	summary, err := sched.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 0, summary.Repaired)
	assertQty(t, -5, f.balance(t, prodVela, branchCentro).Quantity)
	assert.Equal(t, 1, locker.released)
}

func TestAuditScheduler_RunOnceConAutoReparacion(t *testing.T) {
	f := newFixture(t)
	putRawStock(f, "st-neg", prodVela, -5, 0)
	locker := &fakeLocker{}
	sched := inventory.NewAuditScheduler(f.auditor, locker, time.Minute, time.Minute, true, f.log)

	summary, err := sched.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Repaired)
	assertQty(t, 0, f.balance(t, prodVela, branchCentro).Quantity)
}

func TestAuditScheduler_RepairNowIgnoraAutoReparacion(t *testing.T) {
	f := newFixture(t)
	putRawStock(f, "st-neg", prodVela, -5, 0)
	locker := &fakeLocker{}
	sched := inventory.NewAuditScheduler(f.auditor, locker, time.Minute, time.Minute, false, f.log)

	summary, err := sched.RepairNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Repaired)
	assertQty(t, 0, f.balance(t, prodVela, branchCentro).Quantity)
	assert.Equal(t, 1, locker.released)
}

func TestAuditScheduler_AutoReparacionRefrescaAlertasYDashboard(t *testing.T) {
	f := newFixture(t)
	putRawStock(f, "st-neg", prodVela, -5, 0)
	alerts := new(MockBranchAlertRecomputer)
	dash := new(MockDashboardInvalidator)
	alerts.On("RecomputeAlertsForBranch", mock.Anything, branchCentro).Return(nil).Once()
	dash.On("InvalidateAll", mock.Anything).Return(nil).Once()
	sched := inventory.NewAuditScheduler(f.auditor, &fakeLocker{}, time.Minute, time.Minute, true, f.log).
		WithRepairHooks(alerts, dash)

	summary, err := sched.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Repaired)
	alerts.AssertExpectations(t)
	dash.AssertExpectations(t)
}

func TestAuditScheduler_SinReparacionesNoRefresca(t *testing.T) {
	f := newFixture(t)
	f.adjustOK(t, prodVela, branchCentro, 3, userSeller)
	alerts := new(MockBranchAlertRecomputer)
	dash := new(MockDashboardInvalidator)
	sched := inventory.NewAuditScheduler(f.auditor, &fakeLocker{}, time.Minute, time.Minute, true, f.log).
		WithRepairHooks(alerts, dash)

	summary, err := sched.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	alerts.AssertNotCalled(t, "RecomputeAlertsForBranch", mock.Anything, mock.Anything)
	dash.AssertNotCalled(t, "InvalidateAll", mock.Anything)
}

func TestAuditScheduler_FalloDelRefrescoNoAnulaLaReparacion(t *testing.T) {
	f := newFixture(t)
	putRawStock(f, "st-neg", prodVela, -5, 0)
	dash := new(MockDashboardInvalidator)
	dash.On("InvalidateAll", mock.Anything).Return(errors.New("redis caído")).Once()
	sched := inventory.NewAuditScheduler(f.auditor, &fakeLocker{}, time.Minute, time.Minute, false, f.log).
		WithRepairHooks(nil, dash)

	summary, err := sched.RepairNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Repaired)
	assertQty(t, 0, f.balance(t, prodVela, branchCentro).Quantity)
	dash.AssertExpectations(t)
}

func TestAuditScheduler_BloqueoTomado(t *testing.T) {
	f := newFixture(t)
	locker := &fakeLocker{held: true}
	sched := inventory.NewAuditScheduler(f.auditor, locker, time.Minute, time.Minute, true, f.log)

	_, err := sched.RunOnce(context.Background())
	assert.ErrorIs(t, err, domain.ErrLockNotObtained)
	assert.Equal(t, 0, locker.released)
}

func TestAuditScheduler_IntervaloCeroNoArranca(t *testing.T) {
	f := newFixture(t)
	sched := inventory.NewAuditScheduler(f.auditor, &fakeLocker{}, 0, time.Minute, true, f.log)

	done := make(chan struct{})
	go func() {
		sched.Start(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start debía retornar con intervalo 0")
	}
}

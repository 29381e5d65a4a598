package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/control-stock/internal/domain/entity"
	"github.com/jhoicas/control-stock/internal/domain/repository"
)

// Tipos de inconsistencia detectados por el auditor.
const (
	InconsistencyNegativeBalance = "negative_balance"
	InconsistencyLedgerDrift     = "ledger_drift"
)

// Resultado de cada reparación.
const (
	RepairStatusRepaired = "repaired"
	RepairStatusFailed   = "failed"
	RepairStatusSkipped  = "skipped"
)

// Motivos de los movimientos escritos por la reparación.
const (
	ReasonAutomaticCorrection = "automatic correction"
	ReasonDriftCorrection     = "automatic correction (ledger drift)"
)

// SystemActorID actor con el que se registran las correcciones automáticas.
const SystemActorID = "system"

// DefaultDriftEpsilon tolerancia por defecto entre saldo y libro.
var DefaultDriftEpsilon = decimal.NewFromFloat(0.001)

var errRepairNotNeeded = errors.New("la inconsistencia ya no se verifica")

// Inconsistency es un hallazgo sobre un saldo.
type Inconsistency struct {
	Kind       string
	StockID    string
	Item       entity.ItemRef
	LocationID string
	Current    decimal.Decimal // cantidad almacenada
	Computed   decimal.Decimal // Σ entradas − Σ salidas del libro
	Delta      decimal.Decimal // Current − Computed
}

// RepairDetail resultado de reparar un hallazgo.
type RepairDetail struct {
	Inconsistency
	Status string
	Error  string
}

// RepairSummary resumen de una pasada de reparación.
type RepairSummary struct {
	Total    int
	Repaired int
	Failed   int
	Skipped  int
	Details  []RepairDetail
}

// ConsistencyAuditor compara cada saldo contra su libro de movimientos y repara lo que no cuadra.
type ConsistencyAuditor struct {
	txRunner  TxRunner
	stocks    repository.StockRepository
	movements repository.StockMovementRepository
	epsilon   decimal.Decimal
	log       zerolog.Logger
	now       func() time.Time
}

// NewConsistencyAuditor construye el auditor; epsilon ≤ 0 usa DefaultDriftEpsilon.
func NewConsistencyAuditor(
	txRunner TxRunner,
	stocks repository.StockRepository,
	movements repository.StockMovementRepository,
	epsilon decimal.Decimal,
	log zerolog.Logger,
) *ConsistencyAuditor {
	if !epsilon.IsPositive() {
		epsilon = DefaultDriftEpsilon
	}
	return &ConsistencyAuditor{
		txRunner:  txRunner,
		stocks:    stocks,
		movements: movements,
		epsilon:   epsilon,
		log:       log,
		now:       time.Now,
	}
}

// DetectInconsistencies es de solo lectura: reporta saldos negativos y saldos cuya
// cantidad difiere del libro en más de epsilon. Un saldo puede aparecer en ambas listas.
func (a *ConsistencyAuditor) DetectInconsistencies(ctx context.Context) ([]Inconsistency, error) {
	negatives, err := a.stocks.ListNegative(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar saldos negativos: %w", err)
	}
	all, err := a.stocks.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar saldos: %w", err)
	}
	sums, err := a.movements.SumAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("sumar libro de movimientos: %w", err)
	}

	findings := make([]Inconsistency, 0, len(negatives))
	for _, s := range negatives {
		computed := sums[s.ID]
		findings = append(findings, Inconsistency{
			Kind:       InconsistencyNegativeBalance,
			StockID:    s.ID,
			Item:       s.Item,
			LocationID: s.LocationID,
			Current:    s.Quantity,
			Computed:   computed,
			Delta:      s.Quantity.Sub(computed),
		})
	}
	for _, s := range all {
		computed := sums[s.ID] // sin movimientos = 0
		delta := s.Quantity.Sub(computed)
		if delta.Abs().LessThanOrEqual(a.epsilon) {
			continue
		}
		findings = append(findings, Inconsistency{
			Kind:       InconsistencyLedgerDrift,
			StockID:    s.ID,
			Item:       s.Item,
			LocationID: s.LocationID,
			Current:    s.Quantity,
			Computed:   computed,
			Delta:      delta,
		})
	}

	a.log.Info().Int("negativos", len(negatives)).Int("hallazgos", len(findings)).Msg("auditoría de consistencia")
	return findings, nil
}

// RepairInconsistencies detecta y repara cada hallazgo en su propia transacción.
// Primero se realinean los saldos al libro; luego se compensan los negativos que queden.
// Cada hallazgo se revalida bajo bloqueo; si ya no aplica se informa como skipped.
// Un fallo individual no detiene el resto.
func (a *ConsistencyAuditor) RepairInconsistencies(ctx context.Context) (*RepairSummary, error) {
	findings, err := a.DetectInconsistencies(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Kind == InconsistencyLedgerDrift && findings[j].Kind != InconsistencyLedgerDrift
	})

	summary := &RepairSummary{Total: len(findings), Details: make([]RepairDetail, 0, len(findings))}
	for _, f := range findings {
		var rerr error
		if f.Kind == InconsistencyLedgerDrift {
			rerr = a.repairDrift(ctx, f.StockID)
		} else {
			rerr = a.repairNegative(ctx, f.StockID)
		}

		detail := RepairDetail{Inconsistency: f}
		switch {
		case rerr == nil:
			detail.Status = RepairStatusRepaired
			summary.Repaired++
		case errors.Is(rerr, errRepairNotNeeded):
			detail.Status = RepairStatusSkipped
			summary.Skipped++
		default:
			detail.Status = RepairStatusFailed
			detail.Error = rerr.Error()
			summary.Failed++
			a.log.Error().Err(rerr).Str("stock_id", f.StockID).Str("tipo", f.Kind).Msg("falló la reparación")
		}
		summary.Details = append(summary.Details, detail)
	}

	a.log.Info().Int("total", summary.Total).Int("reparados", summary.Repaired).
		Int("fallidos", summary.Failed).Int("omitidos", summary.Skipped).Msg("reparación de consistencia")
	return summary, nil
}

// repairDrift fija la cantidad al valor del libro y deja un movimiento de conciliación por la diferencia.
func (a *ConsistencyAuditor) repairDrift(ctx context.Context, stockID string) error {
	return a.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
	) error {
		s, err := stockRepo.GetByIDForUpdate(ctx, stockID)
		if err != nil {
			return err
		}
		if s == nil {
			return errRepairNotNeeded
		}
		computed, err := movRepo.SumByStock(ctx, s.ID)
		if err != nil {
			return err
		}
		delta := s.Quantity.Sub(computed)
		if delta.Abs().LessThanOrEqual(a.epsilon) {
			return errRepairNotNeeded
		}

		now := a.now()
		expected := s.Version
		s.Quantity = computed
		s.LastUpdated = now
		if err := stockRepo.UpdateQuantity(ctx, s, expected); err != nil {
			return err
		}
		// delta > 0: sobraba stock, la conciliación es una salida.
		return movRepo.Create(ctx, a.correctionMovement(s, entity.DirectionFor(delta.Neg()),
			entity.MovementKindReconciliation, delta.Abs(), ReasonDriftCorrection, now))
	})
}

// repairNegative lleva el saldo a cero y agrega una entrada por el valor faltante.
func (a *ConsistencyAuditor) repairNegative(ctx context.Context, stockID string) error {
	return a.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
	) error {
		s, err := stockRepo.GetByIDForUpdate(ctx, stockID)
		if err != nil {
			return err
		}
		if s == nil || !s.Quantity.IsNegative() {
			return errRepairNotNeeded
		}

		now := a.now()
		prior := s.Quantity
		expected := s.Version
		s.Quantity = decimal.Zero
		s.LastUpdated = now
		if err := stockRepo.UpdateQuantity(ctx, s, expected); err != nil {
			return err
		}
		return movRepo.Create(ctx, a.correctionMovement(s, entity.MovementDirectionEntry,
			entity.MovementKindCorrection, prior.Neg(), ReasonAutomaticCorrection, now))
	})
}

func (a *ConsistencyAuditor) correctionMovement(s *entity.Stock, direction, kind string, qty decimal.Decimal, reason string, now time.Time) *entity.StockMovement {
	return &entity.StockMovement{
		ID:         uuid.New().String(),
		StockID:    s.ID,
		Item:       s.Item,
		LocationID: s.LocationID,
		Direction:  direction,
		Kind:       kind,
		Quantity:   qty,
		Reason:     reason,
		ActorID:    SystemActorID,
		CreatedAt:  now,
	}
}

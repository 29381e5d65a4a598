package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/control-stock/internal/domain"
)

// AuditLockKey clave del bloqueo distribuido que evita auditorías simultáneas.
const AuditLockKey = "stock:audit"

// AuditScheduler ejecuta el auditor periódicamente. Con varias réplicas solo la que
// obtiene el bloqueo audita en cada tick.
type AuditScheduler struct {
	auditor    *ConsistencyAuditor
	locker     Locker
	interval   time.Duration
	lockTTL    time.Duration
	autoRepair bool
	alerts     BranchAlertRecomputer
	dashboard  DashboardInvalidator
	log        zerolog.Logger
}

// NewAuditScheduler construye el planificador.
func NewAuditScheduler(auditor *ConsistencyAuditor, locker Locker, interval, lockTTL time.Duration, autoRepair bool, log zerolog.Logger) *AuditScheduler {
	return &AuditScheduler{
		auditor:    auditor,
		locker:     locker,
		interval:   interval,
		lockTTL:    lockTTL,
		autoRepair: autoRepair,
		log:        log,
	}
}

// WithRepairHooks registra qué refrescar cuando una pasada repara saldos: las alertas
// de las sucursales afectadas y el cache del dashboard. Ambos son opcionales.
func (s *AuditScheduler) WithRepairHooks(alerts BranchAlertRecomputer, dashboard DashboardInvalidator) *AuditScheduler {
	s.alerts = alerts
	s.dashboard = dashboard
	return s
}

// Start bloquea hasta que ctx se cancele. interval ≤ 0 desactiva el planificador.
func (s *AuditScheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info().Msg("auditoría periódica desactivada")
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Dur("intervalo", s.interval).Bool("auto_reparar", s.autoRepair).Msg("auditoría periódica iniciada")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("auditoría periódica detenida")
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, domain.ErrLockNotObtained) {
				s.log.Error().Err(err).Msg("auditoría periódica")
			}
		}
	}
}

// RunOnce obtiene el bloqueo y ejecuta una pasada. Sin auto-reparación el resumen
// solo trae los hallazgos en Details y Total.
func (s *AuditScheduler) RunOnce(ctx context.Context) (*RepairSummary, error) {
	return s.runLocked(ctx, s.autoRepair)
}

// RepairNow repara bajo el mismo bloqueo que la pasada periódica, con o sin auto-reparación.
func (s *AuditScheduler) RepairNow(ctx context.Context) (*RepairSummary, error) {
	return s.runLocked(ctx, true)
}

func (s *AuditScheduler) runLocked(ctx context.Context, repair bool) (*RepairSummary, error) {
	unlock, err := s.locker.Obtain(ctx, AuditLockKey, s.lockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrLockNotObtained) {
			s.log.Debug().Msg("otra instancia está auditando")
		}
		return nil, err
	}
	defer func() {
		if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
			s.log.Warn().Err(uerr).Msg("no se pudo liberar el bloqueo de auditoría")
		}
	}()

	if repair {
		summary, err := s.auditor.RepairInconsistencies(ctx)
		if err != nil {
			return nil, err
		}
		if summary.Repaired > 0 {
			s.afterRepair(ctx, summary)
		}
		return summary, nil
	}

	findings, err := s.auditor.DetectInconsistencies(ctx)
	if err != nil {
		return nil, err
	}
	summary := &RepairSummary{Total: len(findings), Details: make([]RepairDetail, 0, len(findings))}
	for _, f := range findings {
		summary.Details = append(summary.Details, RepairDetail{Inconsistency: f})
	}
	return summary, nil
}

// afterRepair refresca alertas y dashboard. Los fallos solo se registran: la reparación ya quedó confirmada.
func (s *AuditScheduler) afterRepair(ctx context.Context, summary *RepairSummary) {
	if s.alerts != nil {
		seen := make(map[string]struct{})
		for _, d := range summary.Details {
			if d.Status != RepairStatusRepaired || !d.Item.IsProduct() {
				continue
			}
			if _, ok := seen[d.LocationID]; ok {
				continue
			}
			seen[d.LocationID] = struct{}{}
			if err := s.alerts.RecomputeAlertsForBranch(ctx, d.LocationID); err != nil {
				s.log.Warn().Err(err).Str("sucursal_id", d.LocationID).Msg("recalcular alertas tras reparación")
			}
		}
	}
	if s.dashboard != nil {
		if err := s.dashboard.InvalidateAll(ctx); err != nil {
			s.log.Warn().Err(err).Msg("invalidar cache de dashboard tras reparación")
		}
	}
}

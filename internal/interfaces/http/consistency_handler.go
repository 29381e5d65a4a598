package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/control-stock/internal/application/inventory"
)

// ConsistencyHandler expone la auditoría de saldos contra el libro (admin o bodeguero).
type ConsistencyHandler struct {
	auditor   *inventory.ConsistencyAuditor
	scheduler *inventory.AuditScheduler
	log       zerolog.Logger
}

// NewConsistencyHandler construye el handler. La reparación pasa por el planificador
// para compartir su bloqueo y sus refrescos con la pasada periódica.
func NewConsistencyHandler(auditor *inventory.ConsistencyAuditor, scheduler *inventory.AuditScheduler, log zerolog.Logger) *ConsistencyHandler {
	return &ConsistencyHandler{auditor: auditor, scheduler: scheduler, log: log}
}

// Detect godoc
// @Summary      Detectar inconsistencias
// @Description  Saldos negativos y saldos que no coinciden con su libro de movimientos. No modifica nada.
// @Tags         consistency
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.InconsistencyDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/stock/consistency [get]
func (h *ConsistencyHandler) Detect(c *fiber.Ctx) error {
	findings, err := h.auditor.DetectInconsistencies(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toInconsistencyDTOs(findings))
}

// Repair godoc
// @Summary      Reparar inconsistencias
// @Tags         consistency
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.RepairSummaryDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse  "auditoría en curso en otra instancia"
// @Router       /api/stock/consistency/repair [post]
func (h *ConsistencyHandler) Repair(c *fiber.Ctx) error {
	summary, err := h.scheduler.RepairNow(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.log.Info().Str("actor", GetUserID(c)).Int("reparadas", summary.Repaired).Int("fallidas", summary.Failed).Msg("reparación manual")
	return c.JSON(toRepairSummaryDTO(summary))
}

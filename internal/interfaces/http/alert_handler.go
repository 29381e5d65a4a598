package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/control-stock/internal/application/dto"
	"github.com/jhoicas/control-stock/internal/application/inventory"
	"github.com/jhoicas/control-stock/internal/domain/repository"
)

// AlertHandler consulta, reconoce y recalcula alertas de stock.
type AlertHandler struct {
	uc  *inventory.AlertUseCase
	log zerolog.Logger
}

func NewAlertHandler(uc *inventory.AlertUseCase, log zerolog.Logger) *AlertHandler {
	return &AlertHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar alertas
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Sucursal"
// @Param        tipo       query  string  false  "critico | bajo | exceso"
// @Param        active     query  bool    false  "Solo activas (true por defecto)"
// @Success      200  {array}   dto.StockAlertDTO
// @Router       /api/stock/alerts [get]
func (h *AlertHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.ListAlerts(c.Context(), repository.AlertFilter{
		BranchID:   c.Query("branch_id"),
		Kind:       c.Query("tipo"),
		ActiveOnly: c.QueryBool("active", true),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.StockAlertDTO, 0, len(list))
	for _, a := range list {
		out = append(out, toAlertDTO(a))
	}
	return c.JSON(out)
}

// Acknowledge godoc
// @Summary      Marcar alerta como vista
// @Tags         alerts
// @Security     Bearer
// @Param        id  path  string  true  "ID de la alerta"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/alerts/{id}/ack [post]
func (h *AlertHandler) Acknowledge(c *fiber.Ctx) error {
	if err := h.uc.AcknowledgeAlert(c.Context(), c.Params("id"), GetUserID(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Recompute godoc
// @Summary      Recalcular alertas de una sucursal
// @Tags         alerts
// @Security     Bearer
// @Param        branch_id  query  string  true  "Sucursal"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/alerts/recompute [post]
func (h *AlertHandler) Recompute(c *fiber.Ctx) error {
	branchID := c.Query("branch_id")
	if branchID == "" {
		return badRequest(c, "VALIDATION", "branch_id requerido")
	}
	if err := h.uc.RecomputeAlertsForBranch(c.Context(), branchID); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

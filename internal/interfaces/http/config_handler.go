package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/control-stock/internal/application/dto"
	"github.com/jhoicas/control-stock/internal/application/inventory"
	"github.com/jhoicas/control-stock/internal/domain/repository"
)

// StockConfigHandler maneja los umbrales por (producto, sucursal).
type StockConfigHandler struct {
	uc      *inventory.ThresholdConfigUseCase
	changed stockChanged
	log     zerolog.Logger
}

// NewStockConfigHandler construye el handler.
func NewStockConfigHandler(uc *inventory.ThresholdConfigUseCase, alerts AlertRecomputer, dashboard inventory.DashboardInvalidator, log zerolog.Logger) *StockConfigHandler {
	return &StockConfigHandler{uc: uc, changed: stockChanged{alerts: alerts, dashboard: dashboard, log: log}, log: log}
}

// Upsert godoc
// @Summary      Crear o actualizar umbrales
// @Tags         configs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.UpsertStockConfigRequest  true  "stock_maximo, stock_minimo, punto_reposicion"
// @Success      200   {object}  dto.StockConfigDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/stock/configs [put]
func (h *StockConfigHandler) Upsert(c *fiber.Ctx) error {
	var in dto.UpsertStockConfigRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	cfg, err := h.uc.Upsert(c.Context(), inventory.UpsertThresholdConfigInput{
		ProductID:    in.ProductID,
		BranchID:     in.BranchID,
		StockMax:     in.StockMax,
		StockMin:     in.StockMin,
		ReorderPoint: in.ReorderPoint,
		Active:       in.Active,
		ActorID:      GetUserID(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.changed.notify(c.Context(), cfg.ProductID, cfg.BranchID)
	return c.JSON(toConfigDTO(cfg))
}

// List godoc
// @Summary      Listar umbrales
// @Tags         configs
// @Security     Bearer
// @Produce      json
// @Param        branch_id   query  string  false  "Sucursal"
// @Param        product_id  query  string  false  "Producto"
// @Param        active      query  bool    false  "Solo activas"
// @Success      200  {array}   dto.StockConfigDTO
// @Router       /api/stock/configs [get]
func (h *StockConfigHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.Context(), repository.StockConfigFilter{
		BranchID:   c.Query("branch_id"),
		ProductID:  c.Query("product_id"),
		ActiveOnly: c.QueryBool("active", false),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.StockConfigDTO, 0, len(list))
	for _, cfg := range list {
		out = append(out, toConfigDTO(cfg))
	}
	return c.JSON(out)
}

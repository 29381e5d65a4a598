package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	appanalytics "github.com/jhoicas/control-stock/internal/application/analytics"
)

// DashboardHandler maneja el tablero de stock.
type DashboardHandler struct {
	uc  *appanalytics.StockDashboardUseCase
	log zerolog.Logger
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.StockDashboardUseCase, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{uc: uc, log: log}
}

// Get godoc
// @Summary      Tablero de stock
// @Description  Estadísticas, resumen por sucursal, análisis por producto y tops de déficit y exceso.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query     string  false  "Sucursal (todas si vacío)"
// @Success      200        {object}  dto.StockDashboardDTO
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /api/stock/dashboard [get]
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	dash, err := h.uc.BuildDashboard(c.Context(), c.Query("branch_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dash)
}

package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/control-stock/internal/application/dto"
	"github.com/jhoicas/control-stock/internal/application/inventory"
	"github.com/jhoicas/control-stock/internal/domain/entity"
)

// AlertRecomputer recalcula las alertas de un par (producto, sucursal).
type AlertRecomputer interface {
	RecomputeAlerts(ctx context.Context, productID, branchID string) error
}

// stockChanged recalcula alertas e invalida el dashboard tras una escritura.
// Sus fallas se registran pero no cambian la respuesta: la escritura ya quedó confirmada.
type stockChanged struct {
	alerts    AlertRecomputer
	dashboard inventory.DashboardInvalidator
	log       zerolog.Logger
}

func (s stockChanged) notify(ctx context.Context, productID, branchID string) {
	if s.alerts != nil && productID != "" {
		if err := s.alerts.RecomputeAlerts(ctx, productID, branchID); err != nil {
			s.log.Warn().Err(err).Str("product_id", productID).Str("branch_id", branchID).Msg("recalcular alertas")
		}
	}
	if s.dashboard != nil {
		if err := s.dashboard.InvalidateAll(ctx); err != nil {
			s.log.Warn().Err(err).Msg("invalidar cache de dashboard")
		}
	}
}

// StockHandler maneja ajustes, saldos y movimientos (protegido).
type StockHandler struct {
	uc      *inventory.AdjustStockUseCase
	changed stockChanged
	log     zerolog.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.AdjustStockUseCase, alerts AlertRecomputer, dashboard inventory.DashboardInvalidator, log zerolog.Logger) *StockHandler {
	return &StockHandler{uc: uc, changed: stockChanged{alerts: alerts, dashboard: dashboard, log: log}, log: log}
}

// Adjust godoc
// @Summary      Ajustar saldo
// @Description  Aplica un delta con signo al saldo (ítem, ubicación). allow_negative solo para admin o bodeguero.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.AdjustStockRequest  true  "product_id o insumo_id, location_id, delta, reason"
// @Success      201   {object}  dto.AdjustStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.AllowNegative && !hasRole(GetRole(c), writerRoles) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "allow_negative requiere rol admin o bodeguero"})
	}

	res, err := h.uc.AdjustStock(c.Context(), inventory.AdjustStockInput{
		Item:       entity.ItemRef{ProductID: in.ProductID, InsumoID: in.InsumoID},
		LocationID: in.LocationID,
		Delta:      in.Delta,
		Reason:     in.Reason,
		ActorID:    userID,
		Correlation: entity.MovementCorrelation{
			SaleID:            in.SaleID,
			ShipmentID:        in.ShipmentID,
			ProductionBatchID: in.ProductionBatchID,
		},
		AllowNegative: in.AllowNegative,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.changed.notify(c.Context(), in.ProductID, in.LocationID)

	return c.Status(fiber.StatusCreated).JSON(dto.AdjustStockResponse{
		Stock:    toStockDTO(res.Stock),
		Movement: toMovementDTO(res.Movement),
	})
}

// Balance godoc
// @Summary      Consultar saldo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id   query     string  false  "Producto (o insumo_id)"
// @Param        insumo_id    query     string  false  "Insumo (o product_id)"
// @Param        location_id  query     string  true   "Sucursal o depósito"
// @Success      200          {object}  dto.StockDTO
// @Failure      400          {object}  dto.ErrorResponse
// @Failure      404          {object}  dto.ErrorResponse
// @Router       /api/stock/balance [get]
func (h *StockHandler) Balance(c *fiber.Ctx) error {
	item, location := itemFromQuery(c)
	stock, err := h.uc.GetBalance(c.Context(), item, location)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if stock == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "el ítem no tiene saldo en la ubicación"})
	}
	return c.JSON(toStockDTO(stock))
}

// Movements godoc
// @Summary      Historial de movimientos de un saldo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id   query     string  false  "Producto (o insumo_id)"
// @Param        insumo_id    query     string  false  "Insumo (o product_id)"
// @Param        location_id  query     string  true   "Sucursal o depósito"
// @Param        limit        query     int     false  "Máximo de filas (50, tope 100)"
// @Param        offset       query     int     false  "Desplazamiento"
// @Success      200          {object}  dto.MovementListResponse
// @Failure      400          {object}  dto.ErrorResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	item, location := itemFromQuery(c)
	page := dto.NewPageRequest(c.QueryInt("limit"), c.QueryInt("offset"), 50)

	list, err := h.uc.ListMovements(c.Context(), item, location, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.MovementListResponse{
		Items: toMovementDTOs(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

func itemFromQuery(c *fiber.Ctx) (entity.ItemRef, string) {
	return entity.ItemRef{ProductID: c.Query("product_id"), InsumoID: c.Query("insumo_id")}, c.Query("location_id")
}

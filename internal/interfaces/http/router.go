package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	appanalytics "github.com/jhoicas/control-stock/internal/application/analytics"
	"github.com/jhoicas/control-stock/internal/application/inventory"
	"github.com/jhoicas/control-stock/internal/domain/entity"
)

// writerRoles pueden reparar, configurar umbrales, cargar lotes y forzar saldos negativos.
var writerRoles = []string{entity.RoleAdmin, entity.RoleBodeguero}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AdjustStock *inventory.AdjustStockUseCase
	Auditor     *inventory.ConsistencyAuditor
	Scheduler   *inventory.AuditScheduler
	Thresholds  *inventory.ThresholdConfigUseCase
	Alerts      *inventory.AlertUseCase
	BulkLoads   *inventory.BulkLoadUseCase
	Dashboard   *appanalytics.StockDashboardUseCase
	Invalidator inventory.DashboardInvalidator // nil = sin cache
	JWTSecret   string
	Log         zerolog.Logger
}

// Router registra las rutas de la API. Todo /api/stock requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	stock := app.Group("/api/stock", AuthMiddleware(deps.JWTSecret))
	writers := RequireRole(writerRoles...)

	var alerts AlertRecomputer
	if deps.Alerts != nil {
		alerts = deps.Alerts
	}

	stockHandler := NewStockHandler(deps.AdjustStock, alerts, deps.Invalidator, deps.Log.With().Str("handler", "stock").Logger())
	stock.Post("/adjustments", stockHandler.Adjust)
	stock.Get("/balance", stockHandler.Balance)
	stock.Get("/movements", stockHandler.Movements)

	consistencyHandler := NewConsistencyHandler(deps.Auditor, deps.Scheduler, deps.Log.With().Str("handler", "consistency").Logger())
	stock.Get("/consistency", writers, consistencyHandler.Detect)
	stock.Post("/consistency/repair", writers, consistencyHandler.Repair)

	configHandler := NewStockConfigHandler(deps.Thresholds, alerts, deps.Invalidator, deps.Log.With().Str("handler", "configs").Logger())
	stock.Get("/configs", configHandler.List)
	stock.Put("/configs", writers, configHandler.Upsert)

	alertHandler := NewAlertHandler(deps.Alerts, deps.Log.With().Str("handler", "alerts").Logger())
	stock.Get("/alerts", alertHandler.List)
	stock.Post("/alerts/recompute", writers, alertHandler.Recompute)
	stock.Post("/alerts/:id/ack", alertHandler.Acknowledge)

	bulkHandler := NewBulkLoadHandler(deps.BulkLoads, deps.Log.With().Str("handler", "bulk-loads").Logger())
	stock.Get("/bulk-loads", bulkHandler.List)
	stock.Post("/bulk-loads", writers, bulkHandler.Process)
	stock.Post("/bulk-loads/upload", writers, bulkHandler.Upload)
	stock.Get("/bulk-loads/:id", bulkHandler.Get)

	dashboardHandler := NewDashboardHandler(deps.Dashboard, deps.Log.With().Str("handler", "dashboard").Logger())
	stock.Get("/dashboard", dashboardHandler.Get)
}

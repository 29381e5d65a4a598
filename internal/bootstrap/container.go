// Package bootstrap arma el grafo de dependencias compartido por la API y stockctl.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	appanalytics "github.com/jhoicas/control-stock/internal/application/analytics"
	"github.com/jhoicas/control-stock/internal/application/inventory"
	"github.com/jhoicas/control-stock/internal/domain/repository"
	"github.com/jhoicas/control-stock/internal/infrastructure/cache"
	"github.com/jhoicas/control-stock/internal/infrastructure/memory"
	"github.com/jhoicas/control-stock/internal/infrastructure/postgres"
	"github.com/jhoicas/control-stock/pkg/config"
	"github.com/jhoicas/control-stock/pkg/logger"
)

// Repositories agrupa los adaptadores de persistencia de un driver.
type Repositories struct {
	Tx        inventory.TxRunner
	Stocks    repository.StockRepository
	Movements repository.StockMovementRepository
	Configs   repository.StockConfigRepository
	Alerts    repository.StockAlertRepository
	BulkLoads repository.BulkLoadRepository
	Products  repository.ProductRepository
	Branches  repository.BranchRepository
	Users     repository.UserRepository
}

// Container casos de uso listos para usar.
type Container struct {
	Repos       Repositories
	Memory      *memory.Store // solo con driver memory
	AdjustStock *inventory.AdjustStockUseCase
	Auditor     *inventory.ConsistencyAuditor
	Scheduler   *inventory.AuditScheduler
	Thresholds  *inventory.ThresholdConfigUseCase
	Alerts      *inventory.AlertUseCase
	BulkLoads   *inventory.BulkLoadUseCase
	Dashboard   *appanalytics.StockDashboardUseCase
	Invalidator inventory.DashboardInvalidator

	pool  *pgxpool.Pool
	redis *redis.Client
}

// New conecta los backends configurados y construye los casos de uso.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	c := &Container{}

	switch cfg.DB.Driver {
	case config.DriverMemory:
		c.Memory = memory.NewStore()
		c.Repos = memoryRepositories(c.Memory)
		log.Warn().Msg("driver memory: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		c.pool = pool
		c.Repos = postgresRepositories(pool)
	}

	dashCache := cache.DashboardCache(cache.NoopDashboardCache{})
	var locker inventory.Locker = cache.NewLocalLocker()
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("conexión a Redis: %w", err)
		}
		c.redis = client
		dashCache = cache.NewRedisDashboardCache(client, cfg.Redis.DashboardCacheTTL)
		locker = cache.NewRedisLocker(client)
	}
	c.Invalidator = dashCache

	r := c.Repos
	epsilon := decimal.NewFromFloat(cfg.Stock.DriftEpsilon)
	if !epsilon.IsPositive() {
		epsilon = inventory.DefaultDriftEpsilon
	}

	c.AdjustStock = inventory.NewAdjustStockUseCase(r.Tx, r.Stocks, r.Movements, r.Products, r.Branches,
		inventory.NewRoleAuthorizationProvider(r.Users, log.Component("authorization")),
		log.Component("adjust_stock"))
	c.Auditor = inventory.NewConsistencyAuditor(r.Tx, r.Stocks, r.Movements, epsilon, log.Component("consistency"))
	c.Thresholds = inventory.NewThresholdConfigUseCase(r.Configs, r.Products, r.Branches, log.Component("thresholds"))
	c.Alerts = inventory.NewAlertUseCase(r.Configs, r.Stocks, r.Products, r.Alerts, log.Component("alerts"))
	c.Scheduler = inventory.NewAuditScheduler(c.Auditor, locker, cfg.Audit.Interval, cfg.Audit.LockTTL,
		cfg.Audit.AutoRepair, log.Component("audit_scheduler")).
		WithRepairHooks(c.Alerts, c.Invalidator)
	c.BulkLoads = inventory.NewBulkLoadUseCase(c.AdjustStock, r.Stocks, r.Configs, r.Products, r.Branches,
		r.BulkLoads, c.Alerts, c.Invalidator, cfg.Stock.BulkLoadAllowNegative, log.Component("bulk_load"))
	c.Dashboard = appanalytics.NewStockDashboardUseCase(r.Configs, r.Stocks, r.Products, r.Branches, dashCache,
		appanalytics.DashboardOptions{
			TopN:   cfg.Stock.DashboardTopN,
			Locale: language.Make(cfg.Stock.CollationLocale),
		}, log.Component("dashboard"))
	return c, nil
}

// Close libera conexiones. Es seguro llamarlo más de una vez.
func (c *Container) Close() {
	if c.redis != nil {
		_ = c.redis.Close()
		c.redis = nil
	}
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
}

func memoryRepositories(s *memory.Store) Repositories {
	return Repositories{
		Tx:        memory.NewTxRunner(s),
		Stocks:    s.Stocks(),
		Movements: s.Movements(),
		Configs:   s.Configs(),
		Alerts:    s.Alerts(),
		BulkLoads: s.BulkLoads(),
		Products:  s.Products(),
		Branches:  s.Branches(),
		Users:     s.Users(),
	}
}

func postgresRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Tx:        postgres.NewTxRunner(pool),
		Stocks:    postgres.NewStockRepository(pool),
		Movements: postgres.NewStockMovementRepository(pool),
		Configs:   postgres.NewStockConfigRepository(pool),
		Alerts:    postgres.NewStockAlertRepository(pool),
		BulkLoads: postgres.NewBulkLoadRepository(pool),
		Products:  postgres.NewProductRepository(pool),
		Branches:  postgres.NewBranchRepository(pool),
		Users:     postgres.NewUserRepository(pool),
	}
}

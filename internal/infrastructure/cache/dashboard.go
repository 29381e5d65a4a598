package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/control-stock/internal/application/analytics"
	"github.com/jhoicas/control-stock/internal/application/dto"
	"github.com/jhoicas/control-stock/internal/application/inventory"
)

const (
	dashboardKeyPrefix  = "stock:dashboard:"
	dashboardAllKey     = "all"
	scanBatchSize       = 100
	defaultDashboardTTL = time.Minute
)

// DashboardCache es el cache del tablero más su invalidación.
type DashboardCache interface {
	analytics.DashboardCache
	inventory.DashboardInvalidator
}

var (
	_ DashboardCache = (*RedisDashboardCache)(nil)
	_ DashboardCache = NoopDashboardCache{}
)

// RedisDashboardCache guarda el tablero serializado en JSON, una clave por sucursal.
type RedisDashboardCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisDashboardCache construye el cache; ttl ≤ 0 usa un minuto.
func NewRedisDashboardCache(client redis.Cmdable, ttl time.Duration) *RedisDashboardCache {
	if ttl <= 0 {
		ttl = defaultDashboardTTL
	}
	return &RedisDashboardCache{client: client, ttl: ttl}
}

func dashboardKey(branchID string) string {
	if branchID == "" {
		return dashboardKeyPrefix + dashboardAllKey
	}
	return dashboardKeyPrefix + "branch:" + branchID
}

func (c *RedisDashboardCache) Get(ctx context.Context, branchID string) (*dto.StockDashboardDTO, bool, error) {
	payload, err := c.client.Get(ctx, dashboardKey(branchID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var report dto.StockDashboardDTO
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("decodificar tablero cacheado: %w", err)
	}
	return &report, true, nil
}

func (c *RedisDashboardCache) Set(ctx context.Context, branchID string, report *dto.StockDashboardDTO) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("codificar tablero: %w", err)
	}
	if err := c.client.Set(ctx, dashboardKey(branchID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// InvalidateAll borra todas las claves del tablero recorriendo con SCAN.
func (c *RedisDashboardCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, dashboardKeyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// NoopDashboardCache nunca guarda nada; se usa con Redis desactivado.
type NoopDashboardCache struct{}

func (NoopDashboardCache) Get(context.Context, string) (*dto.StockDashboardDTO, bool, error) {
	return nil, false, nil
}

func (NoopDashboardCache) Set(context.Context, string, *dto.StockDashboardDTO) error { return nil }

func (NoopDashboardCache) InvalidateAll(context.Context) error { return nil }

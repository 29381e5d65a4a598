package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración del servicio de stock (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App   AppConfig
	DB    DBConfig
	JWT   JWTConfig
	HTTP  HTTPConfig
	Redis RedisConfig
	Audit AuditConfig
	Stock StockConfig
	Log   LogConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// Drivers de almacenamiento soportados.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	Driver         string // postgres | memory
	DatabaseURL    string
	Host           string
	Port           int
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrateOnStart bool
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN arma el connection string; url.UserPassword escapa caracteres especiales de la contraseña.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig cache del tablero y bloqueo del auditor. Enabled=false usa implementaciones locales.
type RedisConfig struct {
	Enabled           bool
	Addr              string
	Password          string
	DB                int
	DashboardCacheTTL time.Duration
}

// AuditConfig auditoría periódica de consistencia. Interval 0 = desactivada.
type AuditConfig struct {
	Interval   time.Duration
	AutoRepair bool
	LockTTL    time.Duration
}

// StockConfig parámetros del motor de stock.
type StockConfig struct {
	DashboardTopN         int
	DriftEpsilon          float64
	CollationLocale       string
	BulkLoadAllowNegative bool
}

// LogConfig nivel del logger: trace, debug, info, warn, error.
type LogConfig struct {
	Level string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, REDIS_ADDR, AUDIT_INTERVAL_MINUTES, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: .env o config.env
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "control-stock"),
		},
		DB: DBConfig{
			Driver:         strings.ToLower(getString(v, "DB_DRIVER", DriverPostgres)),
			DatabaseURL:    getString(v, "DATABASE_URL", ""),
			Host:           getString(v, "DB_HOST", "localhost"),
			Port:           getInt(v, "DB_PORT", 5432),
			User:           getString(v, "DB_USER", "postgres"),
			Password:       getString(v, "DB_PASSWORD", ""),
			DBName:         getString(v, "DB_NAME", "control_stock"),
			SSLMode:        getString(v, "DB_SSLMODE", "disable"),
			MigrateOnStart: getBool(v, "MIGRATE_ON_START", false),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "control-stock"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Redis: RedisConfig{
			Enabled:           getBool(v, "REDIS_ENABLED", false),
			Addr:              getString(v, "REDIS_ADDR", "localhost:6379"),
			Password:          getString(v, "REDIS_PASSWORD", ""),
			DB:                getInt(v, "REDIS_DB", 0),
			DashboardCacheTTL: time.Duration(getInt(v, "DASHBOARD_CACHE_TTL_SECONDS", 60)) * time.Second,
		},
		Audit: AuditConfig{
			Interval:   time.Duration(getInt(v, "AUDIT_INTERVAL_MINUTES", 0)) * time.Minute,
			AutoRepair: getBool(v, "AUDIT_AUTO_REPAIR", false),
			LockTTL:    time.Duration(getInt(v, "AUDIT_LOCK_TTL_SECONDS", 300)) * time.Second,
		},
		Stock: StockConfig{
			DashboardTopN:         getInt(v, "DASHBOARD_TOP_N", 10),
			DriftEpsilon:          getFloat(v, "DRIFT_EPSILON", 0.001),
			CollationLocale:       getString(v, "COLLATION_LOCALE", "es"),
			BulkLoadAllowNegative: getBool(v, "BULK_LOAD_ALLOW_NEGATIVE", true),
		},
		Log: LogConfig{
			Level: getString(v, "LOG_LEVEL", "info"),
		},
	}

	if cfg.DB.Driver != DriverPostgres && cfg.DB.Driver != DriverMemory {
		return nil, fmt.Errorf("config: DB_DRIVER %q no soportado", cfg.DB.Driver)
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return def
		}
		return b
	}
	return def
}

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if v.IsSet(key) {
		f, err := strconv.ParseFloat(strings.TrimSpace(v.GetString(key)), 64)
		if err != nil {
			return def
		}
		return f
	}
	return def
}

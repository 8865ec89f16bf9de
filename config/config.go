package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del servicio de dispatch.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig controla el listener HTTP.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// StorageConfig controla dónde se persisten pedidos, pujas y agentes.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// RedisConfig apunta al estado efímero de dispatch. Con URL vacía se usa
// el store en memoria.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// DispatchConfig son los tiempos de la subasta en dos fases.
type DispatchConfig struct {
	Phase1WaitSecondsMin  int `yaml:"phase1_wait_seconds_min"`
	Phase1WaitSecondsMax  int `yaml:"phase1_wait_seconds_max"`
	Phase2WaitSeconds     int `yaml:"phase2_wait_seconds"`
	PollIntervalSeconds   int `yaml:"poll_interval_seconds"`
	RollingCloseSeconds   int `yaml:"rolling_close_seconds"`
	ReportIntervalSeconds int `yaml:"report_interval_seconds"`
}

// AuthConfig son los parámetros de sesión que el API gateway comparte.
type AuthConfig struct {
	AccessTokenExpireMinutes int `yaml:"access_token_expire_minutes"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del entorno sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// Phase1WaitMin devuelve el mínimo de espera de la fase 1 como time.Duration.
func (c *Config) Phase1WaitMin() time.Duration {
	return time.Duration(c.Dispatch.Phase1WaitSecondsMin) * time.Second
}

// Phase1WaitMax devuelve el máximo de espera de la fase 1.
func (c *Config) Phase1WaitMax() time.Duration {
	return time.Duration(c.Dispatch.Phase1WaitSecondsMax) * time.Second
}

// Phase2Wait devuelve la ventana de la fase 2.
func (c *Config) Phase2Wait() time.Duration {
	return time.Duration(c.Dispatch.Phase2WaitSeconds) * time.Second
}

// PollInterval devuelve el intervalo de polling del engine.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Dispatch.PollIntervalSeconds) * time.Second
}

// RollingClose devuelve la ventana de cierre rodante de la fase 2.
func (c *Config) RollingClose() time.Duration {
	return time.Duration(c.Dispatch.RollingCloseSeconds) * time.Second
}

// ReportInterval devuelve el intervalo del reporter de consola.
func (c *Config) ReportInterval() time.Duration {
	return time.Duration(c.Dispatch.ReportIntervalSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Auth.AccessTokenExpireMinutes = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "localbite.db"
	}
	if cfg.Dispatch.Phase1WaitSecondsMin <= 0 {
		cfg.Dispatch.Phase1WaitSecondsMin = 180
	}
	if cfg.Dispatch.Phase1WaitSecondsMax < cfg.Dispatch.Phase1WaitSecondsMin {
		cfg.Dispatch.Phase1WaitSecondsMax = 240
	}
	if cfg.Dispatch.Phase2WaitSeconds <= 0 {
		cfg.Dispatch.Phase2WaitSeconds = 180
	}
	if cfg.Dispatch.PollIntervalSeconds <= 0 {
		cfg.Dispatch.PollIntervalSeconds = 5
	}
	if cfg.Dispatch.RollingCloseSeconds <= 0 {
		cfg.Dispatch.RollingCloseSeconds = 60
	}
	if cfg.Dispatch.ReportIntervalSeconds <= 0 {
		cfg.Dispatch.ReportIntervalSeconds = 30
	}
	if cfg.Auth.AccessTokenExpireMinutes <= 0 {
		cfg.Auth.AccessTokenExpireMinutes = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	TableStoreREST  = "rest"
	TableStoreMySQL = "mysql"
)

type Config struct {
	App        AppConfig        `toml:"app"`
	Webhook    WebhookConfig    `toml:"webhook"`
	TableStore TableStoreConfig `toml:"table_store"`
	MySQL      MySQLConfig      `toml:"mysql"`
	Redis      RedisConfig      `toml:"redis"`
	RabbitMQ   RabbitMQConfig   `toml:"rabbitmq"`
	Auth       AuthConfig       `toml:"auth"`
	Log        LogConfig        `toml:"log"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	GinMode string `toml:"gin_mode"`
}

type WebhookConfig struct {
	ChatURL        string `toml:"chat_url"`
	UploadURL      string `toml:"upload_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UploadMaxBytes int64  `toml:"upload_max_bytes"`
}

// TableStoreConfig selects where document metadata rows are read from.
type TableStoreConfig struct {
	Driver string `toml:"driver"`
	URL    string `toml:"url"`
	APIKey string `toml:"api_key"`
	Table  string `toml:"table"`
}

type MySQLConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DB       string `toml:"db"`
	Params   string `toml:"params"`
}

type RedisConfig struct {
	Addr                string `toml:"addr"`
	Password            string `toml:"password"`
	DB                  int    `toml:"db"`
	DocumentsTTLSeconds int    `toml:"documents_ttl_seconds"`
}

type RabbitMQConfig struct {
	URL              string `toml:"url"`
	UploadEventQueue string `toml:"upload_event_queue"`
}

// AuthConfig enables bearer-token checks on the relay routes when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := getEnv("configs/config.toml", "CONFIG_FILE")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.MySQL.User,
		c.MySQL.Password,
		c.MySQL.Host,
		c.MySQL.Port,
		c.MySQL.DB,
		c.MySQL.Params,
	)
}

func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

func (c *Config) RabbitMQEnabled() bool {
	return c.RabbitMQ.URL != ""
}

func (c *Config) AuthEnabled() bool {
	return c.Auth.JWTSecret != ""
}

// Validate reports every missing or malformed setting the server cannot start without.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("app.port %d out of range", c.App.Port))
	}
	if err := validateHTTPURL("webhook.chat_url", c.Webhook.ChatURL); err != nil {
		errs = append(errs, err)
	}
	if err := validateHTTPURL("webhook.upload_url", c.Webhook.UploadURL); err != nil {
		errs = append(errs, err)
	}
	if c.Webhook.UploadMaxBytes <= 0 {
		errs = append(errs, errors.New("webhook.upload_max_bytes must be positive"))
	}
	if strings.TrimSpace(c.TableStore.Table) == "" {
		errs = append(errs, errors.New("table_store.table is required"))
	}

	switch c.TableStore.Driver {
	case TableStoreREST:
		if err := validateHTTPURL("table_store.url", c.TableStore.URL); err != nil {
			errs = append(errs, err)
		}
		if c.TableStore.APIKey == "" {
			errs = append(errs, errors.New("table_store.api_key is required"))
		}
	case TableStoreMySQL:
		if c.MySQL.Host == "" || c.MySQL.DB == "" {
			errs = append(errs, errors.New("mysql.host and mysql.db are required for the mysql table store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown table_store.driver %q", c.TableStore.Driver))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func validateHTTPURL(key, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", key)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is malformed: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", key, raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s has no host: %q", key, raw)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "docchat-relay",
			Env:     "dev",
			Host:    "0.0.0.0",
			Port:    8080,
			GinMode: "release",
		},
		Webhook: WebhookConfig{
			TimeoutSeconds: 120,
			UploadMaxBytes: 50 << 20,
		},
		TableStore: TableStoreConfig{
			Driver: TableStoreREST,
			Table:  "documents",
		},
		MySQL: MySQLConfig{
			Port:   3306,
			User:   "root",
			Params: "parseTime=true&loc=Local&charset=utf8mb4",
		},
		Redis: RedisConfig{
			DocumentsTTLSeconds: 10,
		},
		RabbitMQ: RabbitMQConfig{
			UploadEventQueue: "docchat.upload.events",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv(cfg.App.Name, "APP_NAME")
	cfg.App.Env = getEnv(cfg.App.Env, "APP_ENV")
	cfg.App.Host = getEnv(cfg.App.Host, "APP_HOST")
	cfg.App.Port = getEnvAsInt(cfg.App.Port, "APP_PORT")
	cfg.App.GinMode = getEnv(cfg.App.GinMode, "GIN_MODE")

	cfg.Webhook.ChatURL = getEnv(cfg.Webhook.ChatURL, "WEBHOOK_URL")
	cfg.Webhook.UploadURL = getEnv(cfg.Webhook.UploadURL, "UPLOAD_WEBHOOK_URL")
	cfg.Webhook.TimeoutSeconds = getEnvAsInt(cfg.Webhook.TimeoutSeconds, "WEBHOOK_TIMEOUT_SECONDS")
	cfg.Webhook.UploadMaxBytes = int64(getEnvAsInt(int(cfg.Webhook.UploadMaxBytes), "UPLOAD_MAX_BYTES"))

	cfg.TableStore.Driver = strings.ToLower(getEnv(cfg.TableStore.Driver, "TABLE_STORE_DRIVER"))
	cfg.TableStore.Table = getEnv(cfg.TableStore.Table, "TABLE_STORE_TABLE")
	cfg.TableStore.URL = getEnv(cfg.TableStore.URL, "NEXT_PUBLIC_SUPABASE_URL", "SUPABASE_URL")
	cfg.TableStore.APIKey = getEnv(cfg.TableStore.APIKey, "NEXT_PUBLIC_SUPABASE_ANON_KEY", "SUPABASE_ANON_KEY")

	cfg.MySQL.Host = getEnv(cfg.MySQL.Host, "MYSQL_HOST")
	cfg.MySQL.Port = getEnvAsInt(cfg.MySQL.Port, "MYSQL_PORT")
	cfg.MySQL.User = getEnv(cfg.MySQL.User, "MYSQL_USER")
	cfg.MySQL.Password = getEnv(cfg.MySQL.Password, "MYSQL_PASSWORD")
	cfg.MySQL.DB = getEnv(cfg.MySQL.DB, "MYSQL_DB")
	cfg.MySQL.Params = getEnv(cfg.MySQL.Params, "MYSQL_PARAMS")

	cfg.Redis.Addr = getEnv(cfg.Redis.Addr, "REDIS_ADDR")
	cfg.Redis.Password = getEnv(cfg.Redis.Password, "REDIS_PASSWORD")
	cfg.Redis.DB = getEnvAsInt(cfg.Redis.DB, "REDIS_DB")
	cfg.Redis.DocumentsTTLSeconds = getEnvAsInt(cfg.Redis.DocumentsTTLSeconds, "REDIS_DOCUMENTS_TTL_SECONDS")

	cfg.RabbitMQ.URL = getEnv(cfg.RabbitMQ.URL, "RABBITMQ_URL")
	cfg.RabbitMQ.UploadEventQueue = getEnv(cfg.RabbitMQ.UploadEventQueue, "RABBITMQ_UPLOAD_EVENT_QUEUE")

	cfg.Auth.JWTSecret = getEnv(cfg.Auth.JWTSecret, "JWT_SECRET")

	cfg.Log.Level = getEnv(cfg.Log.Level, "LOG_LEVEL")
	cfg.Log.File = getEnv(cfg.Log.File, "LOG_FILE")

	// values from the TOML file get the same trimming as the environment
	cfg.Webhook.ChatURL = strings.TrimSpace(cfg.Webhook.ChatURL)
	cfg.Webhook.UploadURL = strings.TrimSpace(cfg.Webhook.UploadURL)
	cfg.TableStore.URL = strings.TrimSpace(cfg.TableStore.URL)
	cfg.TableStore.APIKey = strings.TrimSpace(cfg.TableStore.APIKey)
}

// getEnv returns the first non-blank value among keys, trimmed, or fallback.
func getEnv(fallback string, keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return fallback
}

func getEnvAsInt(fallback int, keys ...string) int {
	raw := getEnv("", keys...)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

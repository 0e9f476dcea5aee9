// Package config loads the service configuration from YAML, a .env file
// and DINEHUB_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreNATS     = "nats"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	NATS     NATSConfig     `yaml:"nats"`
	Store    StoreConfig    `yaml:"store"`
	Auth     AuthConfig     `yaml:"auth"`
	Orders   OrdersConfig   `yaml:"orders"`
	Outlets  OutletsConfig  `yaml:"outlets"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	MaxConns int32  `yaml:"max_conns"`
}

type RabbitMQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Prefetch int    `yaml:"prefetch"`
}

type NATSConfig struct {
	URL           string `yaml:"url"`
	OrdersBucket  string `yaml:"orders_bucket"`
	CounterBucket string `yaml:"counter_bucket"`
}

// StoreConfig selects the order store: memory, postgres or nats.
type StoreConfig struct {
	Driver string `yaml:"driver"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	Issuer    string        `yaml:"issuer"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type OrdersConfig struct {
	DefaultWaitMinutes  int `yaml:"default_wait_minutes"`
	PerOrderWaitMinutes int `yaml:"per_order_wait_minutes"`
	ListLimit           int `yaml:"list_limit"`
}

type OutletsConfig struct {
	File  string `yaml:"file"`
	Watch bool   `yaml:"watch"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "dinehub",
			Database: "dinehub",
			MaxConns: 10,
		},
		RabbitMQ: RabbitMQConfig{
			Host: "localhost",
			Port:     5672,
			User:     "guest",
			Prefetch: 1,
		},
		NATS: NATSConfig{
			URL:           "nats://localhost:4222",
			OrdersBucket:  "DINEHUB_ORDERS",
			CounterBucket: "DINEHUB_COUNTERS",
		},
		Store: StoreConfig{Driver: StoreMemory},
		Auth: AuthConfig{
			Issuer:   "dinehub",
			TokenTTL: 24 * time.Hour,
		},
		Orders: OrdersConfig{
			DefaultWaitMinutes:  20,
			PerOrderWaitMinutes: 3,
			ListLimit:           50,
		},
		Outlets: OutletsConfig{File: "outlets.yaml"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path on top of DefaultConfig. A missing .env is fine; a
// missing config file is not.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults without consulting the environment.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strVars := map[string]*string{
		"DINEHUB_DB_HOST":           &c.Database.Host,
		"DINEHUB_DB_USER":           &c.Database.User,
		"DINEHUB_DB_PASSWORD":       &c.Database.Password,
		"DINEHUB_DB_NAME":           &c.Database.Database,
		"DINEHUB_RABBITMQ_HOST":     &c.RabbitMQ.Host,
		"DINEHUB_RABBITMQ_USER":     &c.RabbitMQ.User,
		"DINEHUB_RABBITMQ_PASSWORD": &c.RabbitMQ.Password,
		"DINEHUB_NATS_URL":          &c.NATS.URL,
		"DINEHUB_STORE_DRIVER":      &c.Store.Driver,
		"DINEHUB_JWT_SECRET":        &c.Auth.JWTSecret,
		"DINEHUB_OUTLETS_FILE":      &c.Outlets.File,
		"DINEHUB_LOG_LEVEL":         &c.Logging.Level,
	}
	for key, dst := range strVars {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	intVars := map[string]*int{
		"DINEHUB_PORT":          &c.Server.Port,
		"DINEHUB_DB_PORT":       &c.Database.Port,
		"DINEHUB_RABBITMQ_PORT": &c.RabbitMQ.Port,
	}
	for key, dst := range intVars {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreMemory, StorePostgres, StoreNATS:
	default:
		return fmt.Errorf("store.driver must be one of memory, postgres, nats; got %q", c.Store.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.Orders.DefaultWaitMinutes <= 0 {
		return errors.New("orders.default_wait_minutes must be positive")
	}
	if c.Orders.PerOrderWaitMinutes < 0 {
		return errors.New("orders.per_order_wait_minutes must not be negative")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	return nil
}

// DatabaseURL returns a PostgreSQL connection URL
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database)
}

// RabbitMQURL returns an AMQP connection URL
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}

// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Default ports and service names, used when the environment leaves them unset.
const (
	DefaultVehiclePort  = 8080
	DefaultCustomerPort = 8081

	VehicleServiceName  = "vehicle-service"
	CustomerServiceName = "customer-service"
)

// Config holds the settings shared by both services.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns  int32  `env:"DB_MIN_CONNS" envDefault:"2"`

	// Service registry (Redis)
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	// Discovery: name and URL this instance registers under.
	// AdvertiseURL defaults to http://localhost:<port>.
	ServiceName  string        `env:"SERVICE_NAME"`
	AdvertiseURL string        `env:"ADVERTISE_URL"`
	RegistryTTL  time.Duration `env:"REGISTRY_TTL" envDefault:"30s"`
}

// VehicleConfig configures the vehicle service.
type VehicleConfig struct {
	Config

	// Customer service location. A non-empty URL bypasses the registry.
	CustomerServiceName string `env:"CUSTOMER_SERVICE_NAME" envDefault:"customer-service"`
	CustomerServiceURL  string `env:"CUSTOMER_SERVICE_URL"`

	// Customer service call timeouts
	CustomerConnectTimeout time.Duration `env:"CUSTOMER_CONNECT_TIMEOUT" envDefault:"5s"`
	CustomerReadTimeout    time.Duration `env:"CUSTOMER_READ_TIMEOUT" envDefault:"5s"`
}

// CustomerConfig configures the customer service.
type CustomerConfig struct {
	Config

	// Insert sample customers on startup when the table is empty
	SeedSampleData bool `env:"SEED_SAMPLE_DATA" envDefault:"false"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// UsesStaticCustomerURL reports whether the customer service URL is fixed
// rather than resolved through the registry.
func (c *VehicleConfig) UsesStaticCustomerURL() bool {
	return c.CustomerServiceURL != ""
}

// LoadVehicle parses environment variables for the vehicle service.
// Returns an error if required variables are missing.
func LoadVehicle() (*VehicleConfig, error) {
	cfg := &VehicleConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults(VehicleServiceName, DefaultVehiclePort)
	cfg.CustomerServiceURL = strings.TrimSuffix(cfg.CustomerServiceURL, "/")

	if cfg.CustomerConnectTimeout <= 0 || cfg.CustomerReadTimeout <= 0 {
		return nil, errors.New("customer service timeouts must be positive")
	}
	if !cfg.UsesStaticCustomerURL() && cfg.CustomerServiceName == "" {
		return nil, errors.New("either CUSTOMER_SERVICE_URL or CUSTOMER_SERVICE_NAME must be set")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadCustomer parses environment variables for the customer service.
// Returns an error if required variables are missing.
func LoadCustomer() (*CustomerConfig, error) {
	cfg := &CustomerConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults(CustomerServiceName, DefaultCustomerPort)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults(serviceName string, port int) {
	if c.AppPort == 0 {
		c.AppPort = port
	}
	if c.ServiceName == "" {
		c.ServiceName = serviceName
	}
	if c.AdvertiseURL == "" {
		c.AdvertiseURL = fmt.Sprintf("http://localhost:%d", c.AppPort)
	}
	c.AdvertiseURL = strings.TrimSuffix(c.AdvertiseURL, "/")
}

func (c *Config) validate() error {
	if c.AppPort < 1 || c.AppPort > 65535 {
		return fmt.Errorf("APP_PORT out of range: %d", c.AppPort)
	}
	if c.DBMaxConns < 1 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("invalid pool size: DB_MIN_CONNS=%d DB_MAX_CONNS=%d", c.DBMinConns, c.DBMaxConns)
	}
	if c.RegistryTTL < time.Second {
		return fmt.Errorf("REGISTRY_TTL must be at least 1s, got %s", c.RegistryTTL)
	}
	return nil
}

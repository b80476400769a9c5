package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/tournevent/upslink/pkg/shipper/ups"
	"github.com/tournevent/upslink/pkg/shipper/ups/document"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// UPS
	UPSEnabled         bool          `envconfig:"UPS_ENABLED" default:"true"`
	UPSTestMode        bool          `envconfig:"UPS_TEST_MODE" default:"false"`
	UPSBaseURL         string        `envconfig:"UPS_BASE_URL"`
	UPSAPIGeneration   string        `envconfig:"UPS_API_GENERATION" default:"json"`
	UPSAccountNumber   string        `envconfig:"UPS_ACCOUNT_NUMBER"`
	UPSClientID        string        `envconfig:"UPS_CLIENT_ID"`
	UPSClientSecret    string        `envconfig:"UPS_CLIENT_SECRET"`
	UPSLicenseNumber   string        `envconfig:"UPS_LICENSE_NUMBER"`
	UPSUserID          string        `envconfig:"UPS_USER_ID"`
	UPSPassword        string        `envconfig:"UPS_PASSWORD"`
	UPSDimensionLength int           `envconfig:"UPS_DIMENSION_LENGTH"`
	UPSUseMock         bool          `envconfig:"UPS_USE_MOCK" default:"false"`
	UPSTimeout         time.Duration `envconfig:"UPS_TIMEOUT" default:"30s"`

	// Mock carrier
	MockCarrierEnabled bool `envconfig:"MOCK_CARRIER_ENABLED" default:"false"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"upslink"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables. Values from the
// given dotenv files (".env" when none) are loaded first without
// overriding variables that are already set; missing files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if _, err := cfg.Generation(); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Generation returns the configured UPS API generation.
func (c *Config) Generation() (document.Generation, error) {
	return document.ParseGeneration(c.UPSAPIGeneration)
}

// UPS returns the UPS client configuration.
func (c *Config) UPS() ups.Config {
	generation, _ := c.Generation()
	return ups.Config{
		AccountNumber:   c.UPSAccountNumber,
		ClientID:        c.UPSClientID,
		ClientSecret:    c.UPSClientSecret,
		LicenseNumber:   c.UPSLicenseNumber,
		UserID:          c.UPSUserID,
		Password:        c.UPSPassword,
		BaseURL:         c.UPSBaseURL,
		TestMode:        c.UPSTestMode,
		Generation:      generation,
		DimensionLength: c.UPSDimensionLength,
		Timeout:         c.UPSTimeout,
		UseMock:         c.UPSUseMock,
	}
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("ups.enabled", c.UPSEnabled),
		attribute.Bool("ups.test_mode", c.UPSTestMode),
		attribute.Bool("ups.use_mock", c.UPSUseMock),
		attribute.String("ups.api_generation", c.UPSAPIGeneration),
		attribute.Bool("mock_carrier.enabled", c.MockCarrierEnabled),
	}
}

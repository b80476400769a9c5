package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/upslink/internal/config"
	"github.com/tournevent/upslink/pkg/shipper/ups/document"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))

	require.NoError(t, err)
	assert.Equal(t, 80, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.UPSEnabled)
	assert.Equal(t, 30*time.Second, cfg.UPSTimeout)
	assert.Equal(t, "upslink", cfg.ServiceName)

	generation, err := cfg.Generation()
	require.NoError(t, err)
	assert.Equal(t, document.JSON, generation)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("UPS_API_GENERATION", "xml")
	t.Setenv("UPS_LICENSE_NUMBER", "LICENSE")
	t.Setenv("UPS_DIMENSION_LENGTH", "6")
	t.Setenv("UPS_TIMEOUT", "5s")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	upsCfg := cfg.UPS()
	assert.Equal(t, document.XML, upsCfg.Generation)
	assert.Equal(t, "LICENSE", upsCfg.LicenseNumber)
	assert.Equal(t, 6, upsCfg.DimensionLength)
	assert.Equal(t, 5*time.Second, upsCfg.Timeout)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("UPS_ACCOUNT_NUMBER=A1B2C3\nUPS_CLIENT_ID=from-file\n"), 0o600))
	t.Setenv("UPS_ACCOUNT_NUMBER", "")
	t.Setenv("UPS_CLIENT_ID", "from-env")
	os.Unsetenv("UPS_ACCOUNT_NUMBER")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "A1B2C3", cfg.UPSAccountNumber)
	assert.Equal(t, "from-env", cfg.UPSClientID)
}

func TestLoad_InvalidGeneration(t *testing.T) {
	t.Setenv("UPS_API_GENERATION", "soap")

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "soap")
}

func TestConfig_Attributes(t *testing.T) {
	cfg := &config.Config{ServiceName: "upslink", Version: "1.0.0", UPSEnabled: true, UPSAPIGeneration: "json"}

	attrs := cfg.Attributes()

	values := make(map[string]string, len(attrs))
	for _, a := range attrs {
		values[string(a.Key)] = a.Value.Emit()
	}
	assert.Equal(t, "upslink", values["service.name"])
	assert.Equal(t, "true", values["ups.enabled"])
	assert.Equal(t, "json", values["ups.api_generation"])
}

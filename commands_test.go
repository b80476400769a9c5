package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/upslink/internal/config"
)

func TestConnectionFlags_ApplyOnlyChanged(t *testing.T) {
	flags := &connectionFlags{}
	fs := flags.flagSet()
	require.NoError(t, fs.Parse([]string{"--account-number", "X9Y8Z7", "--api", "xml", "--timeout", "5s"}))

	cfg := &config.Config{
		UPSAPIGeneration: "json",
		UPSClientID:      "from-env",
		UPSTimeout:       30 * time.Second,
	}
	require.NoError(t, flags.apply(cfg))

	assert.Equal(t, "X9Y8Z7", cfg.UPSAccountNumber)
	assert.Equal(t, "xml", cfg.UPSAPIGeneration)
	assert.Equal(t, 5*time.Second, cfg.UPSTimeout)
	assert.Equal(t, "from-env", cfg.UPSClientID)
	assert.False(t, cfg.UPSUseMock)
}

func TestConnectionFlags_InvalidGeneration(t *testing.T) {
	flags := &connectionFlags{}
	fs := flags.flagSet()
	require.NoError(t, fs.Parse([]string{"--api", "soap"}))

	err := flags.apply(&config.Config{UPSAPIGeneration: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--api")
}

func TestConnectionFlags_NoFlagSet(t *testing.T) {
	cfg := &config.Config{UPSAPIGeneration: "json"}
	assert.NoError(t, (&connectionFlags{}).apply(cfg))
}

func TestTrackCommand_Mock(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"track", "--mock", "1Z12345E0205271688"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), `"1Z12345E0205271688"`)
}

func TestReadRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"TrackingNumber":"1Z999"}`), 0o600))

	var req struct{ TrackingNumber string }
	require.NoError(t, readRequest(path, &req))
	assert.Equal(t, "1Z999", req.TrackingNumber)
}

func TestReadRequest_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))

	var req struct{}
	err := readRequest(path, &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding request")
}

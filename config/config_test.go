package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9090\"\n"), 0o600))

	require.NoError(t, InitConfig(path))
	cfg := GetConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Engine.CacheTTL)
	assert.Equal(t, 0.7, cfg.Engine.DefaultRiskThreshold)
	assert.Equal(t, 0.8, cfg.Audit.AlertCeiling)
	assert.Equal(t, 30*time.Minute, cfg.Session.Timeout)
	assert.Equal(t, "v1", cfg.Risk.Weights.Version)
	assert.InDelta(t, 1.0,
		cfg.Risk.Weights.User+cfg.Risk.Weights.Action+cfg.Risk.Weights.Resource+
			cfg.Risk.Weights.Contextual+cfg.Risk.Weights.Time+cfg.Risk.Weights.Location, 1e-9)
	assert.Equal(t, 0.6, cfg.Engine.RoleRiskThresholds["analyst"])
}

func TestInitConfig_EnvironmentOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("audit:\n  alertCeiling: 0.85\n"), 0o600))
	t.Setenv("QPDE_ENGINE_CACHETTL", "90s")
	t.Setenv("QPDE_SESSION_RISKCEILING", "0.95")

	require.NoError(t, InitConfig(path))
	cfg := GetConfig()

	assert.Equal(t, 90*time.Second, cfg.Engine.CacheTTL)
	assert.Equal(t, 0.95, cfg.Session.RiskCeiling)
	assert.Equal(t, 0.85, cfg.Audit.AlertCeiling)
	assert.Equal(t, 0.95, GetFloat64("session.riskCeiling"))
}

func TestInitConfig_MissingExplicitFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	err := InitConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

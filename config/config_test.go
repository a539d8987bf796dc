package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "budgetd.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogJSON)
	assert.Equal(t, "5 0 * * *", cfg.CronSpec)
	assert.True(t, cfg.SchedulerEnabled)

	assert.InDelta(t, 0.5, cfg.Simulator.SpendAllMultiplier, 0.001)
	assert.InDelta(t, 1.0, cfg.Simulator.NormalMultiplier, 0.001)
	assert.InDelta(t, 1.5, cfg.Simulator.SevereMultiplier, 0.001)
	assert.InDelta(t, 70, cfg.Simulator.YellowThreshold, 0.001)
	assert.InDelta(t, 90, cfg.Simulator.RedThreshold, 0.001)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BUDGETD_PORT", "9090")
	t.Setenv("BUDGETD_DB_PATH", "/tmp/test.db")
	t.Setenv("BUDGETD_SCHEDULER_ENABLED", "false")
	t.Setenv("BUDGETD_SIMULATOR_SEVERE_MULTIPLIER", "2.0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.False(t, cfg.SchedulerEnabled)
	assert.InDelta(t, 2.0, cfg.Simulator.SevereMultiplier, 0.001)
}

func TestPlannerConfig_Conversion(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	pc := cfg.PlannerConfig()
	assert.True(t, pc.SpendAllMultiplier.Equal(decimal.NewFromFloat(0.5)))
	assert.True(t, pc.NormalMultiplier.Equal(decimal.NewFromInt(1)))
	assert.True(t, pc.SevereMultiplier.Equal(decimal.NewFromFloat(1.5)))
	assert.True(t, pc.Thresholds.Yellow.Equal(decimal.NewFromInt(70)))
	assert.True(t, pc.Thresholds.Red.Equal(decimal.NewFromInt(90)))
	assert.NoError(t, pc.Thresholds.Validate())
}

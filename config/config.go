/*
config.go - Server configuration

PURPOSE:
  Loads server settings from environment variables and an optional config
  file, with sane defaults for local development. Settings cover the HTTP
  server, the database path, the scheduler, logging, and the simulator's
  policy constants.

SOURCES (highest precedence first):
  1. Environment variables, prefixed BUDGETD_ (e.g. BUDGETD_PORT)
  2. budgetd.yaml in the working directory, if present
  3. Built-in defaults

SEE ALSO:
  - cmd/budgetd/main.go: Consumes the loaded config at startup
  - engine/planner.go: PlannerConfig the simulator section feeds
*/
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/warp/budget-engine/engine"
)

// Config is the full server configuration.
type Config struct {
	Port     int    `mapstructure:"port"`
	DBPath   string `mapstructure:"db_path"`
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`

	// CronSpec drives the rollover and overdue-sweep jobs.
	CronSpec         string `mapstructure:"cron_spec"`
	SchedulerEnabled bool   `mapstructure:"scheduler_enabled"`

	Simulator SimulatorConfig `mapstructure:"simulator"`
}

// SimulatorConfig carries the planner's policy constants.
type SimulatorConfig struct {
	SpendAllMultiplier float64 `mapstructure:"spend_all_multiplier"`
	NormalMultiplier   float64 `mapstructure:"normal_multiplier"`
	SevereMultiplier   float64 `mapstructure:"severe_multiplier"`
	AdherenceTolerance float64 `mapstructure:"adherence_tolerance"`
	YellowThreshold    float64 `mapstructure:"yellow_threshold"`
	RedThreshold       float64 `mapstructure:"red_threshold"`
}

// Load reads configuration from the environment and optional config file.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("port", 8080)
	v.SetDefault("db_path", "budgetd.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
	v.SetDefault("cron_spec", "5 0 * * *")
	v.SetDefault("scheduler_enabled", true)

	defaults := engine.DefaultPlannerConfig()
	v.SetDefault("simulator.spend_all_multiplier", toFloat(defaults.SpendAllMultiplier))
	v.SetDefault("simulator.normal_multiplier", toFloat(defaults.NormalMultiplier))
	v.SetDefault("simulator.severe_multiplier", toFloat(defaults.SevereMultiplier))
	v.SetDefault("simulator.adherence_tolerance", toFloat(defaults.AdherenceTolerance))
	v.SetDefault("simulator.yellow_threshold", toFloat(defaults.Thresholds.Yellow))
	v.SetDefault("simulator.red_threshold", toFloat(defaults.Thresholds.Red))

	v.SetConfigName("budgetd")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("BUDGETD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// PlannerConfig converts the simulator section into the engine's form.
func (c Config) PlannerConfig() engine.PlannerConfig {
	cfg := engine.DefaultPlannerConfig()
	cfg.SpendAllMultiplier = decimal.NewFromFloat(c.Simulator.SpendAllMultiplier)
	cfg.NormalMultiplier = decimal.NewFromFloat(c.Simulator.NormalMultiplier)
	cfg.SevereMultiplier = decimal.NewFromFloat(c.Simulator.SevereMultiplier)
	cfg.AdherenceTolerance = decimal.NewFromFloat(c.Simulator.AdherenceTolerance)
	cfg.Thresholds = engine.RiskThresholds{
		Yellow: decimal.NewFromFloat(c.Simulator.YellowThreshold),
		Red:    decimal.NewFromFloat(c.Simulator.RedThreshold),
	}
	return cfg
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

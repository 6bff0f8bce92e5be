// Package config loads application configuration from config.yaml and the
// environment and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Inputs  InputsConfig  `yaml:"inputs" mapstructure:"inputs"`
	Outputs OutputsConfig `yaml:"outputs" mapstructure:"outputs"`
	Stats   StatsConfig   `yaml:"stats" mapstructure:"stats"`
	Altseek AltseekConfig `yaml:"altseek" mapstructure:"altseek"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// InputsConfig locates the source files the estimator reads.
type InputsConfig struct {
	PayItems        string `yaml:"pay_items" mapstructure:"pay_items"`
	HistoryWorkbook string `yaml:"history_workbook" mapstructure:"history_workbook"`
	HistoryDir      string `yaml:"history_dir" mapstructure:"history_dir"`
	Aliases         string `yaml:"aliases" mapstructure:"aliases"`
}

// OutputsConfig locates the files the estimator writes or mutates in place.
type OutputsConfig struct {
	EstimateXlsx  string `yaml:"estimate_xlsx" mapstructure:"estimate_xlsx"`
	EstimateSheet string `yaml:"estimate_sheet" mapstructure:"estimate_sheet"`
	AuditCSV      string `yaml:"audit_csv" mapstructure:"audit_csv"`
	MappingCSV    string `yaml:"mapping_csv" mapstructure:"mapping_csv"`
}

// StatsConfig tunes the price statistics.
type StatsConfig struct {
	// SinglePointCV is the coefficient of variation assumed for items with
	// exactly one data point, where spread is undefined.
	SinglePointCV float64 `yaml:"single_point_cv" mapstructure:"single_point_cv"`
}

// AltseekConfig configures the LLM-backed alternate price lookup.
type AltseekConfig struct {
	Disabled          bool   `yaml:"disabled" mapstructure:"disabled"`
	Key               string `yaml:"key" mapstructure:"key"`
	Model             string `yaml:"model" mapstructure:"model"`
	MinSamples        int    `yaml:"min_samples" mapstructure:"min_samples"`
	MaxCandidates     int    `yaml:"max_candidates" mapstructure:"max_candidates"`
	RequestsPerMinute int    `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks that the fields required by the given command mode are
// set. Modes: "estimate" (full run), "stats" (single-item spot check from
// loaded history), "sources" (input inventory). The read-only modes need
// only a history source.
func (c *Config) Validate(mode string) error {
	var missing []string

	requireHistory := func() {
		if c.Inputs.HistoryWorkbook == "" && c.Inputs.HistoryDir == "" {
			missing = append(missing, "inputs.history_workbook or inputs.history_dir is required")
		}
	}

	switch mode {
	case "estimate":
		if c.Inputs.PayItems == "" {
			missing = append(missing, "inputs.pay_items is required")
		}
		requireHistory()
		if c.Outputs.EstimateXlsx == "" {
			missing = append(missing, "outputs.estimate_xlsx is required")
		}
		if !c.Altseek.Disabled && c.Altseek.Key == "" {
			missing = append(missing, "altseek.key is required unless altseek.disabled is set")
		}
	case "stats", "sources":
		requireHistory()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Stats.SinglePointCV < 0 {
		missing = append(missing, "stats.single_point_cv must be >= 0")
	}
	if c.Altseek.MinSamples < 0 {
		missing = append(missing, "altseek.min_samples must be >= 0")
	}

	if len(missing) > 0 {
		return eris.New("config: " + strings.Join(missing, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("COSTEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("outputs.estimate_sheet", "Estimate")
	v.SetDefault("stats.single_point_cv", 0.25)
	v.SetDefault("altseek.model", "claude-sonnet-4-5")
	v.SetDefault("altseek.min_samples", 3)
	v.SetDefault("altseek.max_candidates", 5)
	v.SetDefault("altseek.requests_per_minute", 20)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

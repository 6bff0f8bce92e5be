package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "Estimate", cfg.Outputs.EstimateSheet)
	assert.InDelta(t, 0.25, cfg.Stats.SinglePointCV, 0.001)
	assert.Equal(t, "claude-sonnet-4-5", cfg.Altseek.Model)
	assert.Equal(t, 3, cfg.Altseek.MinSamples)
	assert.Equal(t, 5, cfg.Altseek.MaxCandidates)
	assert.Equal(t, 20, cfg.Altseek.RequestsPerMinute)
	assert.False(t, cfg.Altseek.Disabled)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
inputs:
  pay_items: data/pay_items.xlsx
  history_workbook: data/history.xlsx
outputs:
  estimate_xlsx: out/estimate.xlsx
  estimate_sheet: Sheet1
log:
  level: debug
  format: console
stats:
  single_point_cv: 0.4
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/pay_items.xlsx", cfg.Inputs.PayItems)
	assert.Equal(t, "data/history.xlsx", cfg.Inputs.HistoryWorkbook)
	assert.Equal(t, "Sheet1", cfg.Outputs.EstimateSheet)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.InDelta(t, 0.4, cfg.Stats.SinglePointCV, 0.001)
	// Defaults still apply for unset values
	assert.Equal(t, 3, cfg.Altseek.MinSamples)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
altseek:
  model: claude-haiku-4-5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("COSTEST_LOG_LEVEL", "warn")
	t.Setenv("COSTEST_ALTSEEK_MODEL", "claude-opus-4-6")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "claude-opus-4-6", cfg.Altseek.Model)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("COSTEST_ALTSEEK_MIN_SAMPLES", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Altseek.MinSamples)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validEstimate returns a Config that passes estimate-mode validation.
func validEstimate() *Config {
	return &Config{
		Inputs: InputsConfig{
			PayItems:        "pay_items.xlsx",
			HistoryWorkbook: "history.xlsx",
		},
		Outputs: OutputsConfig{
			EstimateXlsx:  "estimate.xlsx",
			EstimateSheet: "Estimate",
		},
		Altseek: AltseekConfig{Disabled: true},
	}
}

func TestValidateEstimate_AllPresent(t *testing.T) {
	assert.NoError(t, validEstimate().Validate("estimate"))
}

func TestValidateEstimate_MissingFields(t *testing.T) {
	cfg := &Config{Altseek: AltseekConfig{Disabled: true}}

	err := cfg.Validate("estimate")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "inputs.pay_items is required")
	assert.Contains(t, err.Error(), "inputs.history_workbook or inputs.history_dir is required")
	assert.Contains(t, err.Error(), "outputs.estimate_xlsx is required")
}

func TestValidateEstimate_AltseekNeedsKey(t *testing.T) {
	cfg := validEstimate()
	cfg.Altseek.Disabled = false

	err := cfg.Validate("estimate")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "altseek.key")

	cfg.Altseek.Key = "sk-ant-key"
	assert.NoError(t, cfg.Validate("estimate"))
}

func TestValidateStats(t *testing.T) {
	// Spot-check mode needs history only, never the pay-item list.
	cfg := &Config{Inputs: InputsConfig{HistoryDir: "history/"}}
	assert.NoError(t, cfg.Validate("stats"))

	cfg.Inputs.HistoryDir = ""
	assert.Error(t, cfg.Validate("stats"))
}

func TestValidateSources(t *testing.T) {
	cfg := &Config{Inputs: InputsConfig{HistoryWorkbook: "history.xlsx"}}
	assert.NoError(t, cfg.Validate("sources"))

	cfg.Inputs.HistoryWorkbook = ""
	assert.Error(t, cfg.Validate("sources"))
}

func TestValidateUnknownMode(t *testing.T) {
	err := validEstimate().Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateBounds(t *testing.T) {
	cfg := validEstimate()
	cfg.Stats.SinglePointCV = -0.1

	err := cfg.Validate("estimate")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "single_point_cv")

	cfg.Stats.SinglePointCV = 0.25
	cfg.Altseek.MinSamples = -1
	err = cfg.Validate("estimate")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "min_samples")
}

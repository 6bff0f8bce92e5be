package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/costest-cli/internal/altseek"
	"github.com/sells-group/costest-cli/internal/pipeline"
	anthropicpkg "github.com/sells-group/costest-cli/pkg/anthropic"
)

var (
	estimatePayItems        string
	estimateHistoryWorkbook string
	estimateHistoryDir      string
	estimateXlsx            string
	estimateSheet           string
	estimateAuditCSV        string
	estimateMappingCSV      string
	estimateDryRun          bool
	estimateNoAltseek       bool
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Run the full estimate pipeline",
	Long:  "Reads historical bid tabs and the project pay-item list, computes per-item price statistics and confidence, then updates the estimate workbook, the audit CSV, and the mapping debug report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		applyEstimateFlags()

		if err := cfg.Validate("estimate"); err != nil {
			return err
		}

		result, err := pipeline.Run(ctx, cfg, pipeline.Options{
			Seeker: buildSeeker(),
			DryRun: estimateDryRun,
		})
		if err != nil {
			return eris.Wrap(err, "estimate run")
		}

		zap.L().Info("estimate complete",
			zap.String("run_id", result.RunID),
			zap.Int("items", result.Items),
			zap.Int("matched", result.Matched),
			zap.Int("zero_data", result.ZeroData),
			zap.Int("records", result.Read.Records),
		)
		return nil
	},
}

// applyEstimateFlags lets command-line flags override config file values.
func applyEstimateFlags() {
	if estimatePayItems != "" {
		cfg.Inputs.PayItems = estimatePayItems
	}
	if estimateHistoryWorkbook != "" {
		cfg.Inputs.HistoryWorkbook = estimateHistoryWorkbook
	}
	if estimateHistoryDir != "" {
		cfg.Inputs.HistoryDir = estimateHistoryDir
	}
	if estimateXlsx != "" {
		cfg.Outputs.EstimateXlsx = estimateXlsx
	}
	if estimateSheet != "" {
		cfg.Outputs.EstimateSheet = estimateSheet
	}
	if estimateAuditCSV != "" {
		cfg.Outputs.AuditCSV = estimateAuditCSV
	}
	if estimateMappingCSV != "" {
		cfg.Outputs.MappingCSV = estimateMappingCSV
	}
	if estimateNoAltseek {
		cfg.Altseek.Disabled = true
	}
}

// buildSeeker selects the alternate-price lookup: disabled unless
// configured with an API key.
func buildSeeker() altseek.Seeker {
	if cfg.Altseek.Disabled || cfg.Altseek.Key == "" {
		return altseek.Disabled{}
	}
	return altseek.NewLLMSeeker(anthropicpkg.NewClient(cfg.Altseek.Key), altseek.Options{
		Model:             cfg.Altseek.Model,
		MaxCandidates:     cfg.Altseek.MaxCandidates,
		RequestsPerMinute: cfg.Altseek.RequestsPerMinute,
	})
}

func init() {
	estimateCmd.Flags().StringVar(&estimatePayItems, "pay-items", "", "project pay-item list (xlsx or csv)")
	estimateCmd.Flags().StringVar(&estimateHistoryWorkbook, "history-workbook", "", "sheet-per-item historical price workbook")
	estimateCmd.Flags().StringVar(&estimateHistoryDir, "history-dir", "", "directory of historical bid-tab CSV exports")
	estimateCmd.Flags().StringVar(&estimateXlsx, "estimate-xlsx", "", "estimate workbook to update in place")
	estimateCmd.Flags().StringVar(&estimateSheet, "estimate-sheet", "", "estimate sheet name (default from config)")
	estimateCmd.Flags().StringVar(&estimateAuditCSV, "audit-csv", "", "audit CSV to update in place")
	estimateCmd.Flags().StringVar(&estimateMappingCSV, "mapping-csv", "", "mapping debug report to write")
	estimateCmd.Flags().BoolVar(&estimateDryRun, "dry-run", false, "compute statistics but write no files")
	estimateCmd.Flags().BoolVar(&estimateNoAltseek, "disable-altseek", false, "skip the LLM alternate-price lookup")
	rootCmd.AddCommand(estimateCmd)
}

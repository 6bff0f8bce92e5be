package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/costest-cli/internal/bidtab"
	"github.com/sells-group/costest-cli/internal/match"
	"github.com/sells-group/costest-cli/internal/pipeline"
	"github.com/sells-group/costest-cli/internal/stats"
)

var (
	statsHistoryWorkbook string
	statsHistoryDir      string
)

var statsCmd = &cobra.Command{
	Use:   "stats <item-code>",
	Short: "Print the price statistics for one pay-item code",
	Long:  "Loads the configured historical sources, matches the given item code, and prints the computed statistics. Spot-check tool for estimators.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemCode := args[0]

		if statsHistoryWorkbook != "" {
			cfg.Inputs.HistoryWorkbook = statsHistoryWorkbook
		}
		if statsHistoryDir != "" {
			cfg.Inputs.HistoryDir = statsHistoryDir
		}

		if err := cfg.Validate("stats"); err != nil {
			return err
		}

		aliases := bidtab.DefaultAliases()
		if cfg.Inputs.Aliases != "" {
			a, err := bidtab.LoadAliases(cfg.Inputs.Aliases)
			if err != nil {
				return err
			}
			aliases = a
		}

		records, _, err := pipeline.LoadSources(cfg, aliases)
		if err != nil {
			return eris.Wrap(err, "load sources")
		}

		matcher := match.NewMatcher(records)
		res := matcher.Match(itemCode)
		summary := stats.Compute(res.Prices(), stats.Options{SinglePointCV: cfg.Stats.SinglePointCV})

		fmt.Printf("item code:    %s\n", itemCode)
		fmt.Printf("normalized:   %s\n", bidtab.NormalizeKey(itemCode))
		fmt.Printf("match status: %s\n", res.Status)
		fmt.Printf("sources:      %d\n", len(res.Sources))
		for _, src := range res.Sources {
			fmt.Printf("  - %s\n", src)
		}
		fmt.Printf("data points:  %d\n", summary.DataPoints)
		fmt.Printf("mean:         %.4f\n", summary.Mean)
		fmt.Printf("std dev:      %s\n", summary.FormatStdDev())
		fmt.Printf("coef var:     %s\n", summary.FormatCoefVar())
		fmt.Printf("confidence:   %.4f\n", summary.Confidence)
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsHistoryWorkbook, "history-workbook", "", "sheet-per-item historical price workbook")
	statsCmd.Flags().StringVar(&statsHistoryDir, "history-dir", "", "directory of historical bid-tab CSV exports")
	rootCmd.AddCommand(statsCmd)
}

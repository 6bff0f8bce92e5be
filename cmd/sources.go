package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/costest-cli/internal/bidtab"
	"github.com/sells-group/costest-cli/internal/match"
	"github.com/sells-group/costest-cli/internal/pipeline"
)

var (
	sourcesHistoryWorkbook string
	sourcesHistoryDir      string
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Inventory the loaded historical price sources",
	Long:  "Loads every configured historical source and prints each normalized item code with its record count, for auditing what history a run would see.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if sourcesHistoryWorkbook != "" {
			cfg.Inputs.HistoryWorkbook = sourcesHistoryWorkbook
		}
		if sourcesHistoryDir != "" {
			cfg.Inputs.HistoryDir = sourcesHistoryDir
		}

		if err := cfg.Validate("sources"); err != nil {
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

		records, readStats, err := pipeline.LoadSources(cfg, aliases)
		if err != nil {
			return eris.Wrap(err, "load sources")
		}

		matcher := match.NewMatcher(records)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ITEM_CODE\tRECORDS")
		for _, kc := range matcher.Keys() {
			fmt.Fprintf(w, "%s\t%d\n", kc.Key, kc.Records)
		}
		if err := w.Flush(); err != nil {
			return eris.Wrap(err, "flush output")
		}

		fmt.Printf("\n%d sources, %d records, %d rows skipped\n",
			readStats.Sources, readStats.Records, readStats.Skipped)
		return nil
	},
}

func init() {
	sourcesCmd.Flags().StringVar(&sourcesHistoryWorkbook, "history-workbook", "", "sheet-per-item historical price workbook")
	sourcesCmd.Flags().StringVar(&sourcesHistoryDir, "history-dir", "", "directory of historical bid-tab CSV exports")
	rootCmd.AddCommand(sourcesCmd)
}

// Package pipeline orchestrates a full estimate run: read sources, match
// pay items, compute statistics, then update the estimate workbook, the
// audit CSV, and the mapping debug report.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/costest-cli/internal/altseek"
	"github.com/sells-group/costest-cli/internal/bidtab"
	"github.com/sells-group/costest-cli/internal/config"
	"github.com/sells-group/costest-cli/internal/geometry"
	"github.com/sells-group/costest-cli/internal/match"
	"github.com/sells-group/costest-cli/internal/mutate"
	"github.com/sells-group/costest-cli/internal/report"
	"github.com/sells-group/costest-cli/internal/stats"
)

// Options tunes a single run beyond what config carries.
type Options struct {
	// Seeker proposes substitute prices for thin items. Nil means
	// altseek.Disabled.
	Seeker altseek.Seeker

	// DryRun computes everything but writes no files.
	DryRun bool
}

// Result summarizes a run for command-level logging.
type Result struct {
	RunID    string
	Items    int
	Matched  int
	ZeroData int
	Read     bidtab.ReadStats
}

// Run executes the full pipeline. Source-read failures are fatal; per-item
// anomalies degrade to zero-data rows and keep the run alive.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID))

	seeker := opts.Seeker
	if seeker == nil {
		seeker = altseek.Disabled{}
	}

	aliases, err := loadAliases(cfg)
	if err != nil {
		return nil, err
	}

	records, readStats, err := LoadSources(cfg, aliases)
	if err != nil {
		return nil, err
	}
	log.Info("historical sources loaded",
		zap.Int("sources", readStats.Sources),
		zap.Int("records", readStats.Records),
		zap.Int("skipped", readStats.Skipped))

	payItems, err := bidtab.ReadPayItems(cfg.Inputs.PayItems, aliases)
	if err != nil {
		return nil, err
	}
	log.Info("pay items loaded", zap.Int("items", len(payItems)))

	matcher := match.NewMatcher(records)
	statsOpts := stats.Options{SinglePointCV: cfg.Stats.SinglePointCV}

	byCode := make(map[string]stats.Summary, len(payItems))
	rows := make([]report.Row, 0, len(payItems))
	result := &Result{RunID: runID, Items: len(payItems), Read: readStats}

	for _, item := range payItems {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res := matcher.Match(item.ItemCode)
		summary := stats.Compute(res.Prices(), statsOpts)

		key := bidtab.NormalizeKey(item.ItemCode)
		if key != "" {
			byCode[key] = summary
		}

		if res.Status == match.StatusMatched {
			result.Matched++
		}
		if summary.DataPoints == 0 {
			result.ZeroData++
		}

		note := seekAlternate(ctx, seeker, cfg.Altseek.MinSamples, item, summary)

		rows = append(rows, report.Row{
			ItemCode:           item.ItemCode,
			NormalizedCode:     key,
			Description:        item.Description,
			Status:             res.Status,
			SourceNames:        sourceNames(res.Sources),
			SourceKinds:        sourceKinds(res.Sources),
			MatchedSourceCount: len(res.Sources),
			DataPoints:         summary.DataPoints,
			Mean:               summary.Mean,
			StdDev:             summary.StdDev,
			CoefVar:            summary.CoefVar,
			Confidence:         summary.Confidence,
			Note:               note,
		})
	}

	log.Info("statistics computed",
		zap.Int("items", result.Items),
		zap.Int("matched", result.Matched),
		zap.Int("zero_data", result.ZeroData))

	if opts.DryRun {
		log.Info("dry run, skipping writers")
		return result, nil
	}

	if err := runWriters(ctx, cfg, runID, byCode, rows); err != nil {
		return nil, err
	}

	log.Info("run complete")
	return result, nil
}

// LoadSources reads every configured historical source. A configured
// source that cannot be read at all is fatal; sources that exist but hold
// no records are not, the run proceeds and every item scores zero
// confidence.
func LoadSources(cfg *config.Config, aliases bidtab.Aliases) ([]bidtab.Record, bidtab.ReadStats, error) {
	var records []bidtab.Record
	var readStats bidtab.ReadStats

	if cfg.Inputs.HistoryWorkbook != "" {
		recs, rs, err := bidtab.ReadWorkbook(cfg.Inputs.HistoryWorkbook, aliases)
		if err != nil {
			return nil, readStats, err
		}
		records = append(records, recs...)
		readStats.Merge(rs)
	}

	if cfg.Inputs.HistoryDir != "" {
		recs, rs, err := bidtab.ReadCSVDir(cfg.Inputs.HistoryDir, aliases)
		if err != nil {
			return nil, readStats, err
		}
		records = append(records, recs...)
		readStats.Merge(rs)
	}

	if readStats.Records == 0 {
		zap.L().Warn("pipeline: no historical records loaded, every item will score zero confidence")
	}

	return records, readStats, nil
}

// loadAliases resolves the column-alias set, with optional YAML overrides.
func loadAliases(cfg *config.Config) (bidtab.Aliases, error) {
	if cfg.Inputs.Aliases == "" {
		return bidtab.DefaultAliases(), nil
	}
	return bidtab.LoadAliases(cfg.Inputs.Aliases)
}

// seekAlternate asks the seeker for a substitute price when the item's
// history is thinner than minSamples. The substitute never changes the
// computed statistics; it is surfaced as a note in the mapping report.
func seekAlternate(ctx context.Context, seeker altseek.Seeker, minSamples int, item bidtab.PayItem, summary stats.Summary) string {
	if summary.DataPoints >= minSamples {
		return ""
	}

	alt, err := seeker.Seek(ctx, altseek.Request{
		ItemCode:    item.ItemCode,
		Description: item.Description,
		Geometry:    geometry.Parse(item.Description),
	})
	if err != nil {
		if !errors.Is(err, altseek.ErrNoAlternate) {
			zap.L().Warn("alternate seek error",
				zap.String("item_code", item.ItemCode), zap.Error(err))
		}
		return ""
	}

	return fmt.Sprintf("alternate unit price %.2f (%s)", alt.UnitPrice, alt.Provenance)
}

// runWriters updates the three output artifacts concurrently. The files
// are disjoint, so one writer's structural failure does not corrupt the
// others; the first error decides the exit status.
func runWriters(ctx context.Context, cfg *config.Config, runID string, byCode map[string]stats.Summary, rows []report.Row) error {
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		return mutate.UpdateWorkbook(cfg.Outputs.EstimateXlsx, cfg.Outputs.EstimateSheet, byCode)
	})

	if cfg.Outputs.AuditCSV != "" {
		g.Go(func() error {
			return mutate.UpdateAuditCSV(cfg.Outputs.AuditCSV, byCode)
		})
	}

	if cfg.Outputs.MappingCSV != "" {
		g.Go(func() error {
			return report.WriteMapping(cfg.Outputs.MappingCSV, runID, rows)
		})
	}

	return g.Wait()
}

func sourceNames(ids []bidtab.SourceID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Name
	}
	return out
}

func sourceKinds(ids []bidtab.SourceID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Kind
	}
	return out
}

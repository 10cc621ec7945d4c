// Package pipeline runs the stages in order: merge, rates, adjust, cohort,
// then percentile and composite per cohort.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/pable/go-fbref-scout/internal/adjust"
	"github.com/pable/go-fbref-scout/internal/cohort"
	"github.com/pable/go-fbref-scout/internal/composite"
	"github.com/pable/go-fbref-scout/internal/config"
	"github.com/pable/go-fbref-scout/internal/ingest"
	"github.com/pable/go-fbref-scout/internal/merge"
	"github.com/pable/go-fbref-scout/internal/metrics"
	"github.com/pable/go-fbref-scout/internal/model"
	"github.com/pable/go-fbref-scout/internal/percentile"
	"github.com/pable/go-fbref-scout/internal/rates"
)

// Result is one completed run.
type Result struct {
	RunID     string
	Season    string
	CreatedAt time.Time

	// All holds every merged record after context adjustment, before the
	// minutes filter. Issues are read from here.
	All *model.Table
	// Cohorts are the ranked, scored position groups; Table is their union.
	Cohorts []cohort.Cohort
	Table   *model.Table
	Metrics []string
}

// Build loads the inputs from dir and runs the pipeline.
func Build(ctx context.Context, dir string, cfg *config.Config, rec *metrics.Recorder) (*Result, error) {
	in, err := ingest.LoadDir(dir, cfg)
	if err != nil {
		return nil, fmt.Errorf("load inputs: %w", err)
	}
	return Run(ctx, in, cfg, rec)
}

// Run executes every stage over in. rec may be nil.
func Run(ctx context.Context, in *ingest.Inputs, cfg *config.Config, rec *metrics.Recorder) (*Result, error) {
	if rec == nil {
		rec = metrics.NewRecorder()
	}
	res := &Result{RunID: uuid.NewString(), Season: cfg.Season, CreatedAt: time.Now().UTC()}
	logger := log.With().Str("run", res.RunID).Logger()

	for name, t := range in.Players {
		rec.Ingested(name, len(t.Rows))
	}

	done := rec.Stage(merge.Stage)
	merged, err := merge.Players(in.Players, cfg.Merge)
	if err != nil {
		return nil, fmt.Errorf("merge players: %w", err)
	}
	teams, err := merge.Teams(in.SquadStandard, in.SquadPossession, in.SquadPossessionAgainst, cfg.Teams)
	if err != nil {
		return nil, fmt.Errorf("merge teams: %w", err)
	}
	var positions map[string]string
	if in.Positions != nil {
		positions, err = merge.Positions(*in.Positions, cfg.Inputs.PositionsPlayerColumn, cfg.Inputs.PositionsColumn)
		if err != nil {
			return nil, fmt.Errorf("positions: %w", err)
		}
	}
	done()
	logger.Info().Int("players", len(merged.Records)).Int("squads", len(teams)).Msg("merged")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	done = rec.Stage(rates.Stage)
	normalized := rates.Normalize(merged)
	done()

	done = rec.Stage(adjust.Stage)
	adjusted := adjust.Apply(normalized, teams, cfg.Adjust.Possession)
	done()

	done = rec.Stage("cohort")
	res.All = cohort.Assign(adjusted, positions, cfg.Cohort)
	cohorts := cohort.Build(res.All, cfg.Cohort)
	done()
	countIssues(rec, res.All)
	if len(cohorts) == 0 {
		logger.Warn().Float64("min_share", cfg.Cohort.MinMinutesShare).Msg("no player meets the minutes threshold")
	}

	res.Metrics = cfg.Percentile.Metrics
	if len(res.Metrics) == 0 {
		res.Metrics = percentile.Select(res.All, cfg.Percentile.Extra, cfg.Percentile.Exclude)
	}
	traits := composite.FromConfig(cfg.Composites)

	done = rec.Stage("score")
	res.Cohorts = make([]cohort.Cohort, len(cohorts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for i, c := range cohorts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ranked := percentile.Rank(c.Table, res.Metrics)
			res.Cohorts[i] = cohort.Cohort{Group: c.Group, Table: composite.Aggregate(ranked, traits)}
			rec.CohortSize(c.Group, len(c.Table.Records))
			logger.Debug().Str("group", c.Group).Int("players", len(c.Table.Records)).Msg("cohort scored")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	done()

	res.Table = cohort.Combine(res.Cohorts)
	countUndefined(rec, res.Table)
	logger.Info().Int("cohorts", len(res.Cohorts)).Int("players", len(res.Table.Records)).
		Int("metrics", len(res.Metrics)).Msg("pipeline complete")
	return res, nil
}

// Issues returns every record issue of the run, keyed by identity.
func (r *Result) Issues() map[model.Identity][]model.Issue {
	out := make(map[model.Identity][]model.Issue)
	for _, rec := range r.All.Records {
		if len(rec.Issues) > 0 {
			out[rec.Identity] = append(out[rec.Identity], rec.Issues...)
		}
	}
	return out
}

func countIssues(rec *metrics.Recorder, t *model.Table) {
	byStage := make(map[string]int)
	for _, r := range t.Records {
		for _, is := range r.Issues {
			byStage[is.Stage]++
			log.Debug().Str("player", r.Identity.String()).Str("stage", is.Stage).
				Str("column", is.Column).Msg(is.Message)
		}
	}
	for stage, n := range byStage {
		rec.Issues(stage, n)
	}
}

func countUndefined(rec *metrics.Recorder, t *model.Table) {
	byKind := make(map[string]int)
	for _, c := range t.Columns {
		for _, r := range t.Records {
			if !r.Get(c.Name).IsDefined() {
				byKind[c.Kind.String()]++
			}
		}
	}
	for kind, n := range byKind {
		rec.Undefined(kind, n)
	}
}

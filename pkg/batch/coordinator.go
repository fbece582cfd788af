// Package batch fans a set of risk-research jobs out over a bounded worker
// pool and joins the results behind a single barrier, the way a task-queue
// chord would.
package batch

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/quantrisk/riskscan/pkg/research"
)

// RiskJob is one entry of a submitted batch: a risk query plus the display
// metadata carried through to the aggregate.
type RiskJob struct {
	RiskName       string `json:"risk_name"`
	RiskDefinition string `json:"risk_definition"`
	Sector         string `json:"sector"`
	Organization   string `json:"organization"`
}

// Query builds the research query for this job.
func (j RiskJob) Query() research.RiskQuery {
	return research.RiskQuery{
		Sector:       j.Sector,
		Organization: j.Organization,
		Risk:         j.RiskName,
	}
}

// RiskResult is one slot of the aggregate. Exactly one of Results and Error
// is set: a failed run contributes its failure marker, not a result.
type RiskResult struct {
	RiskName       string                  `json:"risk_name"`
	RiskDefinition string                  `json:"risk_definition"`
	Results        *research.ResearchState `json:"results,omitempty"`
	Error          string                  `json:"error,omitempty"`
}

// Failed reports whether this slot holds a failure marker.
func (r RiskResult) Failed() bool {
	return r.Error != ""
}

// Runner executes one research workflow. *research.Engine satisfies it.
type Runner interface {
	Run(ctx context.Context, q research.RiskQuery) (*research.ResearchState, error)
}

// Coordinator runs batches of research jobs concurrently. Runs are mutually
// independent: one run failing never cancels its siblings.
type Coordinator struct {
	Runner  Runner
	Workers int
	Logger  *slog.Logger
}

// NewCoordinator returns a coordinator capped at the given number of
// concurrent runs. A cap below one falls back to 8 workers.
func NewCoordinator(runner Runner, workers int, logger *slog.Logger) *Coordinator {
	if workers < 1 {
		workers = 8
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{Runner: runner, Workers: workers, Logger: logger}
}

// Run launches one workflow per job and blocks until every run has reported,
// success or failure. The returned slice has one slot per job, in submission
// order. Returning is the barrier: callers invoke their aggregation logic on
// the return value, which therefore fires exactly once and never before all
// runs complete.
func (c *Coordinator) Run(ctx context.Context, jobs []RiskJob) []RiskResult {
	results := make([]RiskResult, len(jobs))

	g := &errgroup.Group{}
	g.SetLimit(c.Workers)

	for i, job := range jobs {
		g.Go(func() error {
			result := RiskResult{
				RiskName:       job.RiskName,
				RiskDefinition: job.RiskDefinition,
			}

			state, err := c.Runner.Run(ctx, job.Query())
			if err != nil {
				c.Logger.Error("research run failed", "risk", job.RiskName, "error", err)
				result.Error = err.Error()
			} else {
				result.Results = state
			}

			results[i] = result
			return nil
		})
	}

	// Workers never return errors; failures live in their result slots.
	_ = g.Wait()

	c.Logger.Info("batch complete", "jobs", len(jobs), "failed", countFailed(results))
	return results
}

func countFailed(results []RiskResult) int {
	n := 0
	for _, r := range results {
		if r.Failed() {
			n++
		}
	}
	return n
}

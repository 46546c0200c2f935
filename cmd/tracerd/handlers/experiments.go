package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	apierr "github.com/ANUcybernetics/trajectory-tracer/pkg/api/types/errors"
	apiexp "github.com/ANUcybernetics/trajectory-tracer/pkg/api/types/experiments"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/engine"
)

// ExperimentRunner drives a batch of runs. *engine.Orchestrator
// implements it; tests pass fakes.
type ExperimentRunner interface {
	RunExperiment(ctx context.Context, cfg domain.ExperimentConfig) (engine.Report, error)
}

// RunExperimentHandler accepts an experiment and executes it in the
// background: runs can take hours, so the response only acknowledges
// admission. Progress is observable through the runs API.
func RunExperimentHandler(runner ExperimentRunner) echo.HandlerFunc {

	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")

		spec := apiexp.Spec{}
		if err := c.Bind(&spec); err != nil {
			return apierr.BadRequest("experiment spec is not a valid json", err)
		}

		cfg := spec.ToConfig()
		if err := cfg.Validate(); err != nil {
			return apierr.BadRequest(err.Error(), err)
		}
		runs, err := cfg.ExpandRuns()
		if err != nil {
			return apierr.BadRequest(err.Error(), err)
		}

		logger := c.Logger()
		go func() {
			// detached from the request context on purpose:
			// the experiment outlives the submission.
			report, err := runner.RunExperiment(context.Background(), cfg)
			if err != nil {
				logger.Errorf("experiment failed: %s", err)
				return
			}
			logger.Infof(
				"experiment done: %d runs completed, %d failed, %d diagrams",
				report.RunsCompleted, report.RunsFailed, report.Diagrams,
			)
		}()

		return c.JSON(http.StatusAccepted, apiexp.Receipt{Runs: len(runs)})
	}
}

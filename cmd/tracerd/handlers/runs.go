package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apierr "github.com/ANUcybernetics/trajectory-tracer/pkg/api/types/errors"
	apirun "github.com/ANUcybernetics/trajectory-tracer/pkg/api/types/runs"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/db"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	kstrings "github.com/ANUcybernetics/trajectory-tracer/pkg/utils/strings"
)

func FindRunHandler(dbRun db.RunInterface) echo.HandlerFunc {

	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")

		query := db.RunFindQuery{
			Model: c.QueryParam("model"),
		}
		for _, p := range kstrings.SplitIfNotEmpty(c.QueryParam("status"), ",") {
			switch s := domain.RunStatus(p); s {
			case domain.Pending, domain.Running, domain.Completed, domain.Failed:
				query.Status = append(query.Status, s)
			default:
				return apierr.BadRequest(
					`"status" should be one of "pending", "running", "completed" or "failed"`,
					nil,
				)
			}
		}

		ctx := c.Request().Context()

		runIds, err := dbRun.Find(ctx, query)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		result, err := dbRun.Get(ctx, runIds)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		resp := make([]apirun.Summary, 0, len(result))
		for _, r := range runIds {
			resp = append(resp, apirun.ComposeSummary(result[r]))
		}

		return c.JSON(http.StatusOK, resp)
	}
}

func GetRunHandler(dbRun db.RunInterface) echo.HandlerFunc {

	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")

		runId, err := uuid.Parse(c.Param("runId"))
		if err != nil {
			return apierr.BadRequest(`"runId" should be a uuid`, err)
		}
		ctx := c.Request().Context()

		runs, err := dbRun.Get(ctx, []uuid.UUID{runId})
		if err != nil {
			return apierr.InternalServerError(err)
		}

		run, ok := runs[runId]
		if !ok {
			return apierr.NotFound()
		}

		return c.JSON(http.StatusOK, apirun.ComposeDetail(run))
	}
}

func GetDiagramsHandler(dbRun db.RunInterface, dbDiagram db.DiagramInterface) echo.HandlerFunc {

	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")

		runId, err := uuid.Parse(c.Param("runId"))
		if err != nil {
			return apierr.BadRequest(`"runId" should be a uuid`, err)
		}
		ctx := c.Request().Context()

		runs, err := dbRun.Get(ctx, []uuid.UUID{runId})
		if err != nil {
			return apierr.InternalServerError(err)
		}
		if _, ok := runs[runId]; !ok {
			return apierr.NotFound()
		}

		diagrams, err := dbDiagram.ByRun(ctx, runId)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		resp := make([]apirun.Diagram, 0, len(diagrams))
		for _, pd := range diagrams {
			resp = append(resp, apirun.ComposeDiagram(pd))
		}

		return c.JSON(http.StatusOK, resp)
	}
}

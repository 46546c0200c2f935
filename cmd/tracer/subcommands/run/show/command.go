package show

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/youta-t/flarc"

	"github.com/ANUcybernetics/trajectory-tracer/cmd/tracer/subcommands/common"
	apirun "github.com/ANUcybernetics/trajectory-tracer/pkg/api/types/runs"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/configs/server"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/db"
)

type Flags struct {
	Diagrams bool `flag:"diagrams" help:"show the persistence diagrams of the Run instead of its detail"`
}

const ARG_RUNID = "RUN_ID"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Return the Run information for the specified Run Id.",
		Flags{},
		flarc.Args{
			{
				Name: ARG_RUNID, Required: true,
				Help: "Id of the Run to be shown",
			},
		},
		common.NewTask(Task),
		flarc.WithDescription(`
Return the Run information for the specified Run Id as json.

when --diagrams is passed, it prints the persistence diagrams derived
from the Run's embedding trajectories instead.
`),
	)
}

func Task(
	ctx context.Context,
	logger *log.Logger,
	conf server.Config,
	cl flarc.Commandline[Flags],
	params []any,
) error {
	runId, err := uuid.Parse(cl.Args()[ARG_RUNID][0])
	if err != nil {
		return fmt.Errorf("%w: RUN_ID should be a uuid", flarc.ErrUsage)
	}

	database, err := common.OpenDatabase(ctx, conf)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.Runs().Get(ctx, []uuid.UUID{runId})
	if err != nil {
		return err
	}
	run, ok := runs[runId]
	if !ok {
		return fmt.Errorf("%w: Run Id:%s", db.ErrMissing, runId)
	}

	enc := json.NewEncoder(cl.Stdout())
	enc.SetIndent("", "    ")

	if cl.Flags().Diagrams {
		diagrams, err := database.Diagrams().ByRun(ctx, runId)
		if err != nil {
			return err
		}
		resp := make([]apirun.Diagram, 0, len(diagrams))
		for _, pd := range diagrams {
			resp = append(resp, apirun.ComposeDiagram(pd))
		}
		return enc.Encode(resp)
	}

	return enc.Encode(apirun.ComposeDetail(run))
}

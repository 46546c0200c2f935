package find

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/youta-t/flarc"

	"github.com/ANUcybernetics/trajectory-tracer/cmd/tracer/subcommands/common"
	apirun "github.com/ANUcybernetics/trajectory-tracer/pkg/api/types/runs"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/configs/server"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/db"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	kstrings "github.com/ANUcybernetics/trajectory-tracer/pkg/utils/strings"
)

type Flags struct {
	Status string `flag:"status" alias:"s" help:"comma-separated status filter: pending|running|completed|failed"`
	Model  string `flag:"model" alias:"m" help:"only runs whose network contains this model"`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Find Runs matching the filters.",
		Flags{},
		flarc.Args{},
		common.NewTask(Task),
		flarc.WithDescription(`
Find Runs and print their summaries as json, oldest first.

Example:

	{{ .Command }} --status completed --model SDXLTurbo
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
	query := db.RunFindQuery{Model: cl.Flags().Model}
	for _, p := range kstrings.SplitIfNotEmpty(cl.Flags().Status, ",") {
		switch s := domain.RunStatus(p); s {
		case domain.Pending, domain.Running, domain.Completed, domain.Failed:
			query.Status = append(query.Status, s)
		default:
			return fmt.Errorf("%w: unknown status: %s", flarc.ErrUsage, p)
		}
	}

	database, err := common.OpenDatabase(ctx, conf)
	if err != nil {
		return err
	}
	defer database.Close()

	runIds, err := database.Runs().Find(ctx, query)
	if err != nil {
		return err
	}
	runs, err := database.Runs().Get(ctx, runIds)
	if err != nil {
		return err
	}

	summaries := make([]apirun.Summary, 0, len(runIds))
	for _, id := range runIds {
		summaries = append(summaries, apirun.ComposeSummary(runs[id]))
	}

	enc := json.NewEncoder(cl.Stdout())
	enc.SetIndent("", "    ")
	return enc.Encode(summaries)
}

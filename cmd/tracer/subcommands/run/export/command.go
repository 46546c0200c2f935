package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/youta-t/flarc"

	"github.com/ANUcybernetics/trajectory-tracer/cmd/tracer/subcommands/common"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/configs/server"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/db"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
)

type Flags struct {
	Dest string `flag:"dest" alias:"d" help:"directory to write images into"`
}

const ARG_RUNID = "RUN_ID"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Export the image outputs of a Run as png files.",
		Flags{Dest: "."},
		flarc.Args{
			{
				Name: ARG_RUNID, Required: true,
				Help: "Id of the Run whose images are exported",
			},
		},
		common.NewTask(Task),
		flarc.WithDescription(`
Export the image outputs of a Run.

Each image invocation becomes <sequence>_<model>.png in the
destination directory, next to a metadata.json describing the run and
the exported files.
`),
	)
}

type metadata struct {
	RunId         string        `json:"runId"`
	Network       []string      `json:"network"`
	Seed          int           `json:"seed"`
	InitialPrompt string        `json:"initialPrompt"`
	Images        []imageRecord `json:"images"`
}

type imageRecord struct {
	File           string `json:"file"`
	InvocationId   string `json:"invocationId"`
	Model          string `json:"model"`
	SequenceNumber int    `json:"sequenceNumber"`
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

	dest := cl.Flags().Dest
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}

	meta := metadata{
		RunId:         run.ID.String(),
		Network:       []string(run.Network),
		Seed:          run.Seed,
		InitialPrompt: run.InitialPrompt,
		Images:        []imageRecord{},
	}
	for _, inv := range run.Invocations {
		if inv.Output.Modality != domain.Image {
			continue
		}
		name := fmt.Sprintf("%05d_%s.png", inv.SequenceNumber, inv.Model)
		if err := os.WriteFile(filepath.Join(dest, name), inv.Output.Image, 0o644); err != nil {
			return err
		}
		meta.Images = append(meta.Images, imageRecord{
			File:           name,
			InvocationId:   inv.ID.String(),
			Model:          inv.Model,
			SequenceNumber: inv.SequenceNumber,
		})
		logger.Printf("exported %s", name)
	}

	encoded, err := json.MarshalIndent(meta, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dest, "metadata.json"), encoded, 0o644)
}

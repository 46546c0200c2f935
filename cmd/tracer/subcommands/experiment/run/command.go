package run

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/youta-t/flarc"
	"gopkg.in/yaml.v3"

	"github.com/ANUcybernetics/trajectory-tracer/cmd/tracer/subcommands/common"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/analysis"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/analysis/homology"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/configs/server"
	kdb "github.com/ANUcybernetics/trajectory-tracer/pkg/db"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/engine"
)

type Flags struct {
	DryRun bool `flag:"dry-run" help:"execute runs without persisting anything"`
}

const ARG_EXPERIMENT = "EXPERIMENT_FILE"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Execute an experiment: the cartesian product of its networks, seeds and prompts.",
		Flags{},
		flarc.Args{
			{
				Name: ARG_EXPERIMENT, Required: true,
				Help: "experiment file (yaml: networks, seeds, prompts, embedding_models, run_length)",
			},
		},
		common.NewTask(Task),
		flarc.WithDescription(`
Execute every run of the experiment and store invocations, embeddings
and persistence diagrams in the database.

Each run walks its network cyclically, feeding each model's output to
the next, until an output repeats or run_length is reached. Failed runs
are reported and do not stop the experiment.

Example experiment file:

	networks:
	  - ["SDXLTurbo", "Moondream"]
	seeds: [1, 2, 3]
	prompts: ["a red panda"]
	embedding_models: ["NomicEmbed"]
	run_length: 100
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
	content, err := os.ReadFile(cl.Args()[ARG_EXPERIMENT][0])
	if err != nil {
		return err
	}
	cfg := domain.ExperimentConfig{}
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	registry, err := conf.BuildRegistry()
	if err != nil {
		return err
	}

	recorder := engine.Recorder(engine.Discard{})
	if !cl.Flags().DryRun {
		database, err := common.OpenDatabase(ctx, conf)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.Schema().Ensure(ctx); err != nil {
			return err
		}
		recorder = kdb.NewRecorder(database)
	}

	options := []engine.OrchestratorOption{engine.WithLogger(logger)}
	if 0 < conf.RunConcurrency {
		options = append(options, engine.WithRunConcurrency(conf.RunConcurrency))
	}
	if 0 < conf.StepTimeout {
		options = append(options, engine.WithStepTimeout(time.Duration(conf.StepTimeout)))
	}
	if h := conf.Homology; h != nil {
		builderOptions := []analysis.BuilderOption{}
		if 0 < h.MaxDimension {
			builderOptions = append(builderOptions, analysis.WithMaxDimension(h.MaxDimension))
		}
		options = append(options, engine.WithDiagramBuilder(analysis.NewBuilder(
			homology.CommandComputer{Path: h.Command, Args: h.Args},
			builderOptions...,
		)))
	}

	report, err := engine.NewOrchestrator(registry, recorder, options...).
		RunExperiment(ctx, cfg)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cl.Stdout())
	enc.SetIndent("", "    ")
	return enc.Encode(report)
}

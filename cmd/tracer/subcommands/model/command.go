package model

import (
	"context"
	"encoding/json"
	"log"

	"github.com/youta-t/flarc"

	"github.com/ANUcybernetics/trajectory-tracer/cmd/tracer/subcommands/common"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/configs/server"
)

type Flags struct{}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"List the models configured for this installation.",
		Flags{},
		flarc.Args{},
		common.NewTask(Task),
		flarc.WithDescription(`
List the generator and embedder models from the configuration file,
with the modality each generator emits.

Experiment files may only name models listed here.
`),
	)
}

type catalogue struct {
	Generators []generator `json:"generators"`
	Embedders  []string    `json:"embedders"`
}

type generator struct {
	Name     string `json:"name"`
	Modality string `json:"modality"`
}

func Task(
	ctx context.Context,
	logger *log.Logger,
	conf server.Config,
	cl flarc.Commandline[Flags],
	params []any,
) error {
	registry, err := conf.BuildRegistry()
	if err != nil {
		return err
	}

	cat := catalogue{
		Generators: []generator{},
		Embedders:  registry.EmbedderNames(),
	}
	for _, name := range registry.GeneratorNames() {
		modality, _ := registry.OutputModality(name)
		cat.Generators = append(cat.Generators, generator{
			Name: name, Modality: string(modality),
		})
	}

	enc := json.NewEncoder(cl.Stdout())
	enc.SetIndent("", "    ")
	return enc.Encode(cat)
}

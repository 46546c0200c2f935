package experiment

import (
	experiment_run "github.com/ANUcybernetics/trajectory-tracer/cmd/tracer/subcommands/experiment/run"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {

	run, err := experiment_run.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Execute experiments.",
		struct{}{},
		flarc.WithSubcommand("run", run),
	)
}

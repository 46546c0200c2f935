package run

import (
	run_export "github.com/ANUcybernetics/trajectory-tracer/cmd/tracer/subcommands/run/export"
	run_find "github.com/ANUcybernetics/trajectory-tracer/cmd/tracer/subcommands/run/find"
	run_show "github.com/ANUcybernetics/trajectory-tracer/cmd/tracer/subcommands/run/show"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {

	find, err := run_find.New()
	if err != nil {
		return nil, err
	}
	show, err := run_show.New()
	if err != nil {
		return nil, err
	}
	export, err := run_export.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Inspect stored Runs.",
		struct{}{},
		flarc.WithSubcommand("find", find),
		flarc.WithSubcommand("show", show),
		flarc.WithSubcommand("export-images", export),
	)
}

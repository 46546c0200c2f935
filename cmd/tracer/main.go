package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path"

	"github.com/ANUcybernetics/trajectory-tracer/cmd/tracer/subcommands/common"
	subexperiment "github.com/ANUcybernetics/trajectory-tracer/cmd/tracer/subcommands/experiment"
	submodel "github.com/ANUcybernetics/trajectory-tracer/cmd/tracer/subcommands/model"
	subrun "github.com/ANUcybernetics/trajectory-tracer/cmd/tracer/subcommands/run"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/utils/try"
	"github.com/youta-t/flarc"
)

func main() {
	name := path.Base(os.Args[0])
	logger := log.Default()
	logger.SetPrefix(fmt.Sprintf("[%s] ", name))

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill,
	)
	defer cancel()

	experiment := try.To(subexperiment.New()).OrFatal(logger)
	run := try.To(subrun.New()).OrFatal(logger)
	model := try.To(submodel.New()).OrFatal(logger)

	tracer := try.To(
		flarc.NewCommandGroup(
			"Trajectory Tracer commandline interface",
			common.Flags(),
			flarc.WithSubcommand("experiment", experiment),
			flarc.WithSubcommand("run", run),
			flarc.WithSubcommand("model", model),
		),
	).OrFatal(logger)

	os.Exit(flarc.Run(ctx, tracer, flarc.WithHelp(true)))
}

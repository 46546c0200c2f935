package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	_ "go.uber.org/automaxprocs"

	"github.com/ANUcybernetics/trajectory-tracer/cmd/tracerd/handlers"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/analysis"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/analysis/homology"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/auth"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/configs/server"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/db"
	kpg "github.com/ANUcybernetics/trajectory-tracer/pkg/db/postgres"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/engine"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/utils/echoutil"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/utils/filewatch"
)

func main() {

	configPath := flag.String("config-path", "/etc/tracerd/tracerd.yaml", "server config path")
	loglevel := flag.String("loglevel", "", "log level. debug|info|warn|error|off (overrides config)")
	flag.Parse()

	conf, err := server.Load(*configPath)
	if err != nil {
		log.Fatalf("can not read configuration: %s", err)
	}
	if *loglevel == "" {
		*loglevel = conf.Loglevel
	}

	e := echo.New()
	echoutil.SetLevel(e, *loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}
	e.Use(echoutil.LogHandlerFunc)

	// model registry changes only through the config file.
	// restart (by the supervisor) picks updates up.
	ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), *configPath)
	if err != nil {
		log.Fatalf("can not watch configuration: %s", err)
	}
	defer cancel()
	context.AfterFunc(ctx, func() {
		log.Println("config file is updated. quit to restart server.")
		graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := e.Shutdown(graceful); err != nil {
			log.Printf("error on shutdown by config update: %s", err)
		}
	})

	database, err := kpg.New(ctx, conf.Database)
	if err != nil {
		log.Fatalf("can not connect to database: %s", err)
	}
	defer database.Close()
	if err := database.Schema().Ensure(ctx); err != nil {
		log.Fatalf("can not prepare database schema: %s", err)
	}

	registry, err := conf.BuildRegistry()
	if err != nil {
		log.Fatalf("can not build model registry: %s", err)
	}

	options := []engine.OrchestratorOption{}
	if 0 < conf.RunConcurrency {
		options = append(options, engine.WithRunConcurrency(conf.RunConcurrency))
	}
	if 0 < conf.StepTimeout {
		options = append(options, engine.WithStepTimeout(time.Duration(conf.StepTimeout)))
	}
	if h := conf.Homology; h != nil {
		computer := homology.CommandComputer{Path: h.Command, Args: h.Args}
		builderOptions := []analysis.BuilderOption{}
		if 0 < h.MaxDimension {
			builderOptions = append(builderOptions, analysis.WithMaxDimension(h.MaxDimension))
		}
		options = append(options, engine.WithDiagramBuilder(
			analysis.NewBuilder(computer, builderOptions...),
		))
	}
	orchestrator := engine.NewOrchestrator(
		registry, db.NewRecorder(database), options...,
	)

	// handlers
	{
		e.GET("/api/runs", handlers.FindRunHandler(database.Runs()))
		e.GET("/api/runs/:runId", handlers.GetRunHandler(database.Runs()))
		e.GET("/api/runs/:runId/diagrams", handlers.GetDiagramsHandler(
			database.Runs(), database.Diagrams(),
		))

		submit := handlers.RunExperimentHandler(orchestrator)
		if key, err := conf.TokenKeyBytes(); err != nil {
			log.Fatalf("can not decode token key: %s", err)
		} else if key != nil {
			signer := auth.NewSigner(key, 24*time.Hour)
			e.POST("/api/experiments", submit, auth.Middleware(signer))
		} else {
			e.POST("/api/experiments", submit)
		}
	}

	if err := e.Start(fmt.Sprintf(":%d", conf.Port)); err != nil {
		log.Fatal(err)
	}
}

package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/youta-t/flarc"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/configs/server"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/db"
	kpg "github.com/ANUcybernetics/trajectory-tracer/pkg/db/postgres"
)

// Task is a leaf command body with the loaded config injected.
type Task[T any] func(
	ctx context.Context,
	logger *log.Logger,
	conf server.Config,
	cl flarc.Commandline[T],
	params []any,
) error

// NewTask picks the CommonFlags the command group passes down,
// loads the config file and hands both to the task.
func NewTask[T any](task Task[T]) flarc.Task[T] {
	return func(ctx context.Context, cl flarc.Commandline[T], pos []any) error {
		var commonFlag CommonFlags
		found := false
		newpos := make([]any, 0, len(pos))
		for _, p := range pos {
			switch v := p.(type) {
			case CommonFlags:
				found = true
				commonFlag = v
			default:
				newpos = append(newpos, p)
			}
		}
		if !found {
			return errors.New("programming error: common flags not found")
		}

		logger := log.New(cl.Stderr(), "", log.LstdFlags)
		logger.SetPrefix(fmt.Sprintf("[%s] ", cl.Fullname()))
		switch commonFlag.Loglevel {
		case "debug", "info":
			// progress messages stay on stderr
		default:
			logger.SetOutput(io.Discard)
		}

		conf, err := server.Load(commonFlag.Config)
		if err != nil {
			return fmt.Errorf(
				"%w: can not read tracer config (%s). set --config or TRACER_CONFIG",
				err, commonFlag.Config,
			)
		}

		return task(ctx, logger, conf, cl, newpos)
	}
}

// OpenDatabase connects to the database named in the config.
func OpenDatabase(ctx context.Context, conf server.Config) (db.Database, error) {
	if conf.Database == "" {
		return nil, errors.New(`"database" is not set in the tracer config`)
	}
	return kpg.New(ctx, conf.Database)
}

package run

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/db"
	kpgerr "github.com/ANUcybernetics/trajectory-tracer/pkg/db/postgres/errors"
	kpool "github.com/ANUcybernetics/trajectory-tracer/pkg/db/postgres/pool"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	xe "github.com/ANUcybernetics/trajectory-tracer/pkg/errors"
)

type pgRun struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) db.RunInterface {
	return &pgRun{pool: pool}
}

func (r *pgRun) Register(ctx context.Context, run domain.Run) error {
	var stopReason *string
	var loopLength *int
	if run.StopReason != nil {
		kind := string(run.StopReason.Kind)
		stopReason = &kind
		length := run.StopReason.LoopLength
		loopLength = &length
	}

	_, err := r.pool.Exec(
		ctx,
		`
		insert into "run" (
			"run_id", "network", "seed", "max_length", "initial_prompt",
			"status", "stop_reason", "loop_length", "error"
		) values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
		run.ID.String(), []string(run.Network), run.Seed, run.MaxLength,
		run.InitialPrompt, string(run.Status), stopReason, loopLength, run.Error,
	)
	if err != nil {
		return xe.Wrap(kpgerr.AsConflict(err, "run", run.ID.String()))
	}
	return nil
}

func (r *pgRun) AddInvocation(ctx context.Context, inv domain.Invocation) error {
	var outputText *string
	var outputImage []byte
	switch inv.Output.Modality {
	case domain.Text:
		text := inv.Output.Text
		outputText = &text
	case domain.Image:
		outputImage = inv.Output.Image
	}

	_, err := r.pool.Exec(
		ctx,
		`
		insert into "invocation" (
			"invocation_id", "run_id", "model", "sequence_number", "seed",
			"modality", "output_text", "output_image", "started_at", "completed_at"
		) values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
		inv.ID.String(), inv.RunID.String(), inv.Model, inv.SequenceNumber,
		inv.Seed, string(inv.Output.Modality), outputText, outputImage,
		inv.StartedAt, inv.CompletedAt,
	)
	if err != nil {
		return xe.Wrap(kpgerr.AsConflict(err, "invocation", inv.ID.String()))
	}
	return nil
}

func (r *pgRun) Finish(ctx context.Context, run domain.Run) error {
	var stopReason *string
	var loopLength *int
	if run.StopReason != nil {
		kind := string(run.StopReason.Kind)
		stopReason = &kind
		length := run.StopReason.LoopLength
		loopLength = &length
	}

	tag, err := r.pool.Exec(
		ctx,
		`
		update "run"
		set "status" = $2, "stop_reason" = $3, "loop_length" = $4,
			"error" = $5, "updated_at" = now()
		where "run_id" = $1
		`,
		run.ID.String(), string(run.Status), stopReason, loopLength, run.Error,
	)
	if err != nil {
		return xe.Wrap(err)
	}
	if tag.RowsAffected() != 1 {
		return kpgerr.Missing{Table: "run", Identity: run.ID.String()}
	}
	return nil
}

func (r *pgRun) Get(ctx context.Context, runIds []uuid.UUID) (map[uuid.UUID]domain.Run, error) {
	ids := make([]string, len(runIds))
	for i, id := range runIds {
		ids[i] = id.String()
	}

	runs := map[uuid.UUID]domain.Run{}
	{
		rows, err := r.pool.Query(
			ctx,
			`
			select
				"run_id", "network", "seed", "max_length", "initial_prompt",
				"status", "stop_reason", "loop_length", "error"
			from "run"
			where "run_id" = any($1::uuid[])
			`,
			ids,
		)
		if err != nil {
			return nil, xe.Wrap(err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				rawId      string
				network    []string
				stopReason *string
				loopLength *int
				run        domain.Run
				status     string
			)
			if err := rows.Scan(
				&rawId, &network, &run.Seed, &run.MaxLength, &run.InitialPrompt,
				&status, &stopReason, &loopLength, &run.Error,
			); err != nil {
				return nil, xe.Wrap(err)
			}
			run.ID, err = uuid.Parse(rawId)
			if err != nil {
				return nil, xe.Wrap(err)
			}
			run.Network = domain.Network(network)
			run.Status = domain.RunStatus(status)
			if stopReason != nil {
				reason := domain.StopReason{Kind: domain.StopReasonKind(*stopReason)}
				if loopLength != nil {
					reason.LoopLength = *loopLength
				}
				run.StopReason = &reason
			}
			runs[run.ID] = run
		}
		if err := rows.Err(); err != nil {
			return nil, xe.Wrap(err)
		}
	}

	rows, err := r.pool.Query(
		ctx,
		`
		select
			"invocation_id", "run_id", "model", "sequence_number", "seed",
			"modality", "output_text", "output_image", "started_at", "completed_at"
		from "invocation"
		where "run_id" = any($1::uuid[])
		order by "run_id", "sequence_number"
		`,
		ids,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rawId       string
			rawRunId    string
			modality    string
			outputText  *string
			outputImage []byte
			inv         domain.Invocation
		)
		if err := rows.Scan(
			&rawId, &rawRunId, &inv.Model, &inv.SequenceNumber, &inv.Seed,
			&modality, &outputText, &outputImage, &inv.StartedAt, &inv.CompletedAt,
		); err != nil {
			return nil, xe.Wrap(err)
		}
		if inv.ID, err = uuid.Parse(rawId); err != nil {
			return nil, xe.Wrap(err)
		}
		if inv.RunID, err = uuid.Parse(rawRunId); err != nil {
			return nil, xe.Wrap(err)
		}
		switch domain.Modality(modality) {
		case domain.Text:
			text := ""
			if outputText != nil {
				text = *outputText
			}
			inv.Output = domain.TextOutput(text)
		case domain.Image:
			inv.Output = domain.ImageOutput(outputImage)
		default:
			return nil, xe.New(fmt.Sprintf("unknown modality is stored: %s", modality))
		}

		run, ok := runs[inv.RunID]
		if !ok {
			continue
		}
		run.Invocations = append(run.Invocations, inv)
		runs[inv.RunID] = run
	}
	if err := rows.Err(); err != nil {
		return nil, xe.Wrap(err)
	}

	return runs, nil
}

func (r *pgRun) Find(ctx context.Context, query db.RunFindQuery) ([]uuid.UUID, error) {
	conditions := []string{"true"}
	args := []interface{}{}

	if 0 < len(query.Status) {
		status := make([]string, len(query.Status))
		for i, s := range query.Status {
			status[i] = string(s)
		}
		args = append(args, status)
		conditions = append(conditions, fmt.Sprintf(`"status" = any($%d::varchar[])`, len(args)))
	}
	if query.Model != "" {
		args = append(args, query.Model)
		conditions = append(conditions, fmt.Sprintf(`$%d = any("network")`, len(args)))
	}

	sql := `select "run_id" from "run" where ` + conditions[0]
	for _, c := range conditions[1:] {
		sql += " and " + c
	}
	sql += ` order by "created_at", "run_id"`

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var rawId string
		if err := rows.Scan(&rawId); err != nil {
			return nil, xe.Wrap(err)
		}
		id, err := uuid.Parse(rawId)
		if err != nil {
			return nil, xe.Wrap(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, xe.Wrap(err)
	}
	return ids, nil
}

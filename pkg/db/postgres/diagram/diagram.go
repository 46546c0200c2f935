package diagram

import (
	"context"

	"github.com/google/uuid"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/db"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/db/postgres/marshal"
	kpool "github.com/ANUcybernetics/trajectory-tracer/pkg/db/postgres/pool"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	xe "github.com/ANUcybernetics/trajectory-tracer/pkg/errors"
)

type pgDiagram struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) db.DiagramInterface {
	return &pgDiagram{pool: pool}
}

func (d *pgDiagram) Register(ctx context.Context, pd domain.PersistenceDiagram) error {
	generators, err := marshal.GeneratorsToJSON(pd.Generators)
	if err != nil {
		return err
	}
	entropy, err := marshal.EntropyToJSON(pd.Entropy)
	if err != nil {
		return err
	}

	// diagrams are derived: recomputation for the same
	// (run, embedding model) pair overwrites
	_, err = d.pool.Exec(
		ctx,
		`
		insert into "persistence_diagram" (
			"diagram_id", "run_id", "embedding_model", "generators", "entropy",
			"started_at", "completed_at"
		) values ($1, $2, $3, $4, $5, $6, $7)
		on conflict ("run_id", "embedding_model") do update
		set "diagram_id" = excluded."diagram_id",
			"generators" = excluded."generators",
			"entropy" = excluded."entropy",
			"started_at" = excluded."started_at",
			"completed_at" = excluded."completed_at"
		`,
		pd.ID.String(), pd.RunID.String(), pd.EmbeddingModel,
		generators, entropy, pd.StartedAt, pd.CompletedAt,
	)
	if err != nil {
		return xe.Wrap(err)
	}
	return nil
}

func (d *pgDiagram) ByRun(ctx context.Context, runId uuid.UUID) ([]domain.PersistenceDiagram, error) {
	rows, err := d.pool.Query(
		ctx,
		`
		select
			"diagram_id", "run_id", "embedding_model", "generators", "entropy",
			"started_at", "completed_at"
		from "persistence_diagram"
		where "run_id" = $1
		order by "embedding_model"
		`,
		runId.String(),
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	diagrams := []domain.PersistenceDiagram{}
	for rows.Next() {
		var (
			rawId      string
			rawRunId   string
			generators []byte
			entropy    []byte
			pd         domain.PersistenceDiagram
		)
		if err := rows.Scan(
			&rawId, &rawRunId, &pd.EmbeddingModel, &generators, &entropy,
			&pd.StartedAt, &pd.CompletedAt,
		); err != nil {
			return nil, xe.Wrap(err)
		}
		if pd.ID, err = uuid.Parse(rawId); err != nil {
			return nil, xe.Wrap(err)
		}
		if pd.RunID, err = uuid.Parse(rawRunId); err != nil {
			return nil, xe.Wrap(err)
		}
		if pd.Generators, err = marshal.GeneratorsFromJSON(generators); err != nil {
			return nil, err
		}
		if pd.Entropy, err = marshal.EntropyFromJSON(entropy); err != nil {
			return nil, err
		}
		diagrams = append(diagrams, pd)
	}
	if err := rows.Err(); err != nil {
		return nil, xe.Wrap(err)
	}
	return diagrams, nil
}

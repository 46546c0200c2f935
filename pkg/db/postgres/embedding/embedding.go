package embedding

import (
	"context"

	"github.com/google/uuid"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/db"
	kpgerr "github.com/ANUcybernetics/trajectory-tracer/pkg/db/postgres/errors"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/db/postgres/marshal"
	kpool "github.com/ANUcybernetics/trajectory-tracer/pkg/db/postgres/pool"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	xe "github.com/ANUcybernetics/trajectory-tracer/pkg/errors"
)

type pgEmbedding struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) db.EmbeddingInterface {
	return &pgEmbedding{pool: pool}
}

func (e *pgEmbedding) Register(ctx context.Context, emb domain.Embedding) error {
	_, err := e.pool.Exec(
		ctx,
		`
		insert into "embedding" (
			"embedding_id", "invocation_id", "embedding_model", "vector",
			"started_at", "completed_at"
		) values ($1, $2, $3, $4, $5, $6)
		`,
		emb.ID.String(), emb.InvocationID.String(), emb.EmbeddingModel,
		marshal.VectorToBytes(emb.Vector), emb.StartedAt, emb.CompletedAt,
	)
	if err != nil {
		return xe.Wrap(kpgerr.AsConflict(err, "embedding", emb.ID.String()))
	}
	return nil
}

func (e *pgEmbedding) ByRun(ctx context.Context, runId uuid.UUID) ([]domain.Embedding, error) {
	rows, err := e.pool.Query(
		ctx,
		`
		select
			"e"."embedding_id", "e"."invocation_id", "e"."embedding_model",
			"e"."vector", "e"."started_at", "e"."completed_at"
		from "embedding" as "e"
		inner join "invocation" as "i"
			on "i"."invocation_id" = "e"."invocation_id"
		where "i"."run_id" = $1
		order by "i"."sequence_number", "e"."embedding_model"
		`,
		runId.String(),
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	embeddings := []domain.Embedding{}
	for rows.Next() {
		var (
			rawId           string
			rawInvocationId string
			packed          []byte
			emb             domain.Embedding
		)
		if err := rows.Scan(
			&rawId, &rawInvocationId, &emb.EmbeddingModel,
			&packed, &emb.StartedAt, &emb.CompletedAt,
		); err != nil {
			return nil, xe.Wrap(err)
		}
		if emb.ID, err = uuid.Parse(rawId); err != nil {
			return nil, xe.Wrap(err)
		}
		if emb.InvocationID, err = uuid.Parse(rawInvocationId); err != nil {
			return nil, xe.Wrap(err)
		}
		if emb.Vector, err = marshal.VectorFromBytes(packed); err != nil {
			return nil, err
		}
		embeddings = append(embeddings, emb)
	}
	if err := rows.Err(); err != nil {
		return nil, xe.Wrap(err)
	}
	return embeddings, nil
}

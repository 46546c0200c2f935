package db_test

import (
	"context"
	"testing"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/db"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/db/mocks"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/utils/try"
)

func TestRecorder(t *testing.T) {
	ctx := context.Background()

	t.Run("a started run is registered as running", func(t *testing.T) {
		database := mocks.NewDatabase()
		database.RunsMock.Impl.Register = func(context.Context, domain.Run) error { return nil }

		recorder := db.NewRecorder(database)
		run := try.To(domain.NewRun(domain.Network{"gen"}, 1, "p", 3)).OrFatal(t)

		if err := recorder.RecordRunStarted(ctx, run); err != nil {
			t.Fatal(err)
		}

		if database.RunsMock.Calls.Register.Times() != 1 {
			t.Fatal("Register should be called once")
		}
		if got := database.RunsMock.Calls.Register[0]; got.Status != domain.Running {
			t.Errorf("registered status: got %s, want %s", got.Status, domain.Running)
		}
	})

	t.Run("a finished run lands in Finish with its terminal state", func(t *testing.T) {
		database := mocks.NewDatabase()
		database.RunsMock.Impl.Finish = func(context.Context, domain.Run) error { return nil }

		recorder := db.NewRecorder(database)
		run := try.To(domain.NewRun(domain.Network{"gen"}, 1, "p", 3)).OrFatal(t)
		run.Status = domain.Completed
		run.StopReason = &domain.StopReason{Kind: domain.StopDuplicate, LoopLength: 1}

		if err := recorder.RecordRunFinished(ctx, run); err != nil {
			t.Fatal(err)
		}

		got := database.RunsMock.Calls.Finish[0]
		if got.Status != domain.Completed || got.StopReason == nil ||
			got.StopReason.Kind != domain.StopDuplicate {
			t.Errorf("finished run: got %+v", got)
		}
	})

	t.Run("invocations, embeddings and diagrams pass through", func(t *testing.T) {
		database := mocks.NewDatabase()
		database.RunsMock.Impl.AddInvocation = func(context.Context, domain.Invocation) error { return nil }
		database.EmbeddingsMock.Impl.Register = func(context.Context, domain.Embedding) error { return nil }
		database.DiagramsMock.Impl.Register = func(context.Context, domain.PersistenceDiagram) error { return nil }

		recorder := db.NewRecorder(database)

		if err := recorder.RecordInvocation(ctx, domain.Invocation{}); err != nil {
			t.Fatal(err)
		}
		if err := recorder.RecordEmbedding(ctx, domain.Embedding{}); err != nil {
			t.Fatal(err)
		}
		if err := recorder.RecordDiagram(ctx, domain.PersistenceDiagram{}); err != nil {
			t.Fatal(err)
		}

		if database.RunsMock.Calls.AddInvocation.Times() != 1 ||
			database.EmbeddingsMock.Calls.Register.Times() != 1 ||
			database.DiagramsMock.Calls.Register.Times() != 1 {
			t.Error("each record should hit its table once")
		}
	})
}

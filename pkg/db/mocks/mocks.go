// Package mocks has hand-written fakes of the db interfaces.
//
// Assign the behaviour under test to Impl.<Method>; calls without an
// Impl panic so a test never silently passes through an unexpected
// code path. Arguments of every call are appended to Calls.<Method>.
package mocks

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/db"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
)

type CallLog[T any] []T

func (c CallLog[T]) Times() int { return len(c) }

type RunInterface struct {
	Impl struct {
		Register      func(ctx context.Context, run domain.Run) error
		AddInvocation func(ctx context.Context, inv domain.Invocation) error
		Finish        func(ctx context.Context, run domain.Run) error
		Get           func(ctx context.Context, runIds []uuid.UUID) (map[uuid.UUID]domain.Run, error)
		Find          func(ctx context.Context, query db.RunFindQuery) ([]uuid.UUID, error)
	}

	Calls struct {
		Register      CallLog[domain.Run]
		AddInvocation CallLog[domain.Invocation]
		Finish        CallLog[domain.Run]
		Get           CallLog[[]uuid.UUID]
		Find          CallLog[db.RunFindQuery]
	}
}

func NewRunInterface() *RunInterface {
	return &RunInterface{}
}

var _ db.RunInterface = &RunInterface{}

func (m *RunInterface) Register(ctx context.Context, run domain.Run) error {
	m.Calls.Register = append(m.Calls.Register, run)
	if m.Impl.Register != nil {
		return m.Impl.Register(ctx, run)
	}
	panic(errors.New("it should not be called"))
}

func (m *RunInterface) AddInvocation(ctx context.Context, inv domain.Invocation) error {
	m.Calls.AddInvocation = append(m.Calls.AddInvocation, inv)
	if m.Impl.AddInvocation != nil {
		return m.Impl.AddInvocation(ctx, inv)
	}
	panic(errors.New("it should not be called"))
}

func (m *RunInterface) Finish(ctx context.Context, run domain.Run) error {
	m.Calls.Finish = append(m.Calls.Finish, run)
	if m.Impl.Finish != nil {
		return m.Impl.Finish(ctx, run)
	}
	panic(errors.New("it should not be called"))
}

func (m *RunInterface) Get(ctx context.Context, runIds []uuid.UUID) (map[uuid.UUID]domain.Run, error) {
	m.Calls.Get = append(m.Calls.Get, runIds)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, runIds)
	}
	panic(errors.New("it should not be called"))
}

func (m *RunInterface) Find(ctx context.Context, query db.RunFindQuery) ([]uuid.UUID, error) {
	m.Calls.Find = append(m.Calls.Find, query)
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx, query)
	}
	panic(errors.New("it should not be called"))
}

type EmbeddingInterface struct {
	Impl struct {
		Register func(ctx context.Context, emb domain.Embedding) error
		ByRun    func(ctx context.Context, runId uuid.UUID) ([]domain.Embedding, error)
	}

	Calls struct {
		Register CallLog[domain.Embedding]
		ByRun    CallLog[uuid.UUID]
	}
}

func NewEmbeddingInterface() *EmbeddingInterface {
	return &EmbeddingInterface{}
}

var _ db.EmbeddingInterface = &EmbeddingInterface{}

func (m *EmbeddingInterface) Register(ctx context.Context, emb domain.Embedding) error {
	m.Calls.Register = append(m.Calls.Register, emb)
	if m.Impl.Register != nil {
		return m.Impl.Register(ctx, emb)
	}
	panic(errors.New("it should not be called"))
}

func (m *EmbeddingInterface) ByRun(ctx context.Context, runId uuid.UUID) ([]domain.Embedding, error) {
	m.Calls.ByRun = append(m.Calls.ByRun, runId)
	if m.Impl.ByRun != nil {
		return m.Impl.ByRun(ctx, runId)
	}
	panic(errors.New("it should not be called"))
}

type DiagramInterface struct {
	Impl struct {
		Register func(ctx context.Context, pd domain.PersistenceDiagram) error
		ByRun    func(ctx context.Context, runId uuid.UUID) ([]domain.PersistenceDiagram, error)
	}

	Calls struct {
		Register CallLog[domain.PersistenceDiagram]
		ByRun    CallLog[uuid.UUID]
	}
}

func NewDiagramInterface() *DiagramInterface {
	return &DiagramInterface{}
}

var _ db.DiagramInterface = &DiagramInterface{}

func (m *DiagramInterface) Register(ctx context.Context, pd domain.PersistenceDiagram) error {
	m.Calls.Register = append(m.Calls.Register, pd)
	if m.Impl.Register != nil {
		return m.Impl.Register(ctx, pd)
	}
	panic(errors.New("it should not be called"))
}

func (m *DiagramInterface) ByRun(ctx context.Context, runId uuid.UUID) ([]domain.PersistenceDiagram, error) {
	m.Calls.ByRun = append(m.Calls.ByRun, runId)
	if m.Impl.ByRun != nil {
		return m.Impl.ByRun(ctx, runId)
	}
	panic(errors.New("it should not be called"))
}

type SchemaInterface struct {
	Impl struct {
		Ensure func(ctx context.Context) error
	}
	Calls struct {
		Ensure CallLog[struct{}]
	}
}

func NewSchemaInterface() *SchemaInterface {
	return &SchemaInterface{}
}

var _ db.SchemaInterface = &SchemaInterface{}

func (m *SchemaInterface) Ensure(ctx context.Context) error {
	m.Calls.Ensure = append(m.Calls.Ensure, struct{}{})
	if m.Impl.Ensure != nil {
		return m.Impl.Ensure(ctx)
	}
	panic(errors.New("it should not be called"))
}

// Database bundles the interface mocks into one db.Database.
type Database struct {
	RunsMock       *RunInterface
	EmbeddingsMock *EmbeddingInterface
	DiagramsMock   *DiagramInterface
	SchemaMock     *SchemaInterface
}

func NewDatabase() *Database {
	return &Database{
		RunsMock:       NewRunInterface(),
		EmbeddingsMock: NewEmbeddingInterface(),
		DiagramsMock:   NewDiagramInterface(),
		SchemaMock:     NewSchemaInterface(),
	}
}

var _ db.Database = &Database{}

func (m *Database) Runs() db.RunInterface             { return m.RunsMock }
func (m *Database) Embeddings() db.EmbeddingInterface { return m.EmbeddingsMock }
func (m *Database) Diagrams() db.DiagramInterface     { return m.DiagramsMock }
func (m *Database) Schema() db.SchemaInterface        { return m.SchemaMock }
func (m *Database) Close() error                      { return nil }

// Package domain holds the entities of the trajectory tracer:
// runs of generative-model invocations over a cyclic network,
// embeddings of their outputs, and persistence diagrams derived
// from embedding trajectories.
package domain

import (
	"time"

	"github.com/google/uuid"

	xe "github.com/ANUcybernetics/trajectory-tracer/pkg/errors"
)

// Modality is the kind of content a model emits.
type Modality string

const (
	Text  Modality = "text"
	Image Modality = "image"
)

// Network is an ordered sequence of model names, interpreted cyclically:
// the model invoked at sequence number N is Network[N mod len(Network)].
type Network []string

func (n Network) ModelAt(sequenceNumber int) string {
	return n[sequenceNumber%len(n)]
}

// Output is the content produced by one invocation.
// Exactly one of Text or Image is set, selected by Modality.
// Image holds encoded image bytes (PNG for stored outputs).
type Output struct {
	Modality Modality
	Text     string
	Image    []byte
}

// TextOutput wraps a string as a text Output.
func TextOutput(text string) Output {
	return Output{Modality: Text, Text: text}
}

// ImageOutput wraps encoded image bytes as an image Output.
func ImageOutput(encoded []byte) Output {
	return Output{Modality: Image, Image: encoded}
}

// Invocation is one model call within a Run, at a specific sequence position.
//
// Its input is the Run's initial prompt when SequenceNumber == 0,
// and the output of the invocation at SequenceNumber - 1 otherwise.
type Invocation struct {
	ID             uuid.UUID
	RunID          uuid.UUID
	Model          string
	SequenceNumber int
	Seed           int
	Output         Output
	StartedAt      time.Time
	CompletedAt    time.Time
}

func (i Invocation) Duration() time.Duration {
	if i.StartedAt.IsZero() || i.CompletedAt.IsZero() {
		return 0
	}
	return i.CompletedAt.Sub(i.StartedAt)
}

// RunStatus is the lifecycle state of a Run.
type RunStatus string

const (
	Pending   RunStatus = "pending"
	Running   RunStatus = "running"
	Completed RunStatus = "completed"
	Failed    RunStatus = "failed"
)

// StopReasonKind tells why a Run stopped advancing.
type StopReasonKind string

const (
	// StopLengthExhausted: the run reached its maximum length
	// without repeating an output.
	StopLengthExhausted StopReasonKind = "length"

	// StopDuplicate: an output hash repeated one seen earlier in the
	// same run. LoopLength is the distance to the first occurrence.
	StopDuplicate StopReasonKind = "duplicate"
)

type StopReason struct {
	Kind       StopReasonKind
	LoopLength int
}

// Run is one trajectory of invocations over a cyclic model network,
// starting from one prompt and seed.
type Run struct {
	ID            uuid.UUID
	Network       Network
	Seed          int
	MaxLength     int
	InitialPrompt string
	Status        RunStatus
	StopReason    *StopReason
	Error         string
	Invocations   []Invocation
}

// NewRun validates parameters and returns a pending Run with a fresh id.
func NewRun(network Network, seed int, initialPrompt string, maxLength int) (Run, error) {
	if len(network) == 0 {
		return Run{}, xe.New("network cannot be empty")
	}
	if maxLength <= 0 {
		return Run{}, xe.New("run max length must be greater than 0")
	}
	return Run{
		ID:            uuid.New(),
		Network:       network,
		Seed:          seed,
		MaxLength:     maxLength,
		InitialPrompt: initialPrompt,
		Status:        Pending,
	}, nil
}

// IsComplete reports whether the Run has finished:
// either its final invocation (at MaxLength - 1) carries output,
// or it stopped early on a detected duplicate.
func (r Run) IsComplete() bool {
	if r.StopReason != nil && r.StopReason.Kind == StopDuplicate {
		return true
	}
	for _, inv := range r.Invocations {
		if inv.SequenceNumber == r.MaxLength-1 {
			return inv.Output.Text != "" || len(inv.Output.Image) != 0
		}
	}
	return false
}

// Embedding is a fixed-length vector computed over one text invocation's
// output by a named embedding model.
type Embedding struct {
	ID             uuid.UUID
	InvocationID   uuid.UUID
	EmbeddingModel string
	Vector         []float32
	StartedAt      time.Time
	CompletedAt    time.Time
}

func (e Embedding) Dimension() int {
	return len(e.Vector)
}

func (e Embedding) Duration() time.Duration {
	if e.StartedAt.IsZero() || e.CompletedAt.IsZero() {
		return 0
	}
	return e.CompletedAt.Sub(e.StartedAt)
}

// BirthDeath is one generator of a persistence diagram:
// the birth and death coordinates of a topological feature.
// Death may be +Inf for essential classes.
type BirthDeath struct {
	Birth float64
	Death float64
}

func (g BirthDeath) Persistence() float64 {
	return g.Death - g.Birth
}

// PersistenceDiagram summarizes the topology of one (Run, embedding model)
// trajectory. Generators and Entropy are keyed by homology dimension;
// a dimension is absent from Entropy when entropy is undefined there.
//
// A diagram is derived and read-only once computed: it can be recomputed
// at any time from the stored embedding trajectory.
type PersistenceDiagram struct {
	ID             uuid.UUID
	RunID          uuid.UUID
	EmbeddingModel string
	Generators     map[int][]BirthDeath
	Entropy        map[int]float64
	StartedAt      time.Time
	CompletedAt    time.Time
}

package runs

import (
	"math"
	"time"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/utils/cmp"
)

type StopReason struct {
	Kind       string `json:"kind"`
	LoopLength int    `json:"loopLength,omitempty"`
}

func (s *StopReason) Equal(o *StopReason) bool {
	if s == nil || o == nil {
		return (s == nil) && (o == nil)
	}
	return s.Kind == o.Kind && s.LoopLength == o.LoopLength
}

type Summary struct {
	RunId         string      `json:"runId"`
	Network       []string    `json:"network"`
	Seed          int         `json:"seed"`
	MaxLength     int         `json:"maxLength"`
	InitialPrompt string      `json:"initialPrompt"`
	Status        string      `json:"status"`
	StopReason    *StopReason `json:"stopReason,omitempty"`
	Error         string      `json:"error,omitempty"`
}

func ComposeSummary(r domain.Run) Summary {
	var stopReason *StopReason
	if sr := r.StopReason; sr != nil {
		stopReason = &StopReason{
			Kind:       string(sr.Kind),
			LoopLength: sr.LoopLength,
		}
	}
	return Summary{
		RunId:         r.ID.String(),
		Network:       []string(r.Network),
		Seed:          r.Seed,
		MaxLength:     r.MaxLength,
		InitialPrompt: r.InitialPrompt,
		Status:        string(r.Status),
		StopReason:    stopReason,
		Error:         r.Error,
	}
}

func (s *Summary) Equal(o *Summary) bool {
	if s == nil || o == nil {
		return s == nil && o == nil
	}
	return s.RunId == o.RunId &&
		cmp.SliceEq(s.Network, o.Network) &&
		s.Seed == o.Seed &&
		s.MaxLength == o.MaxLength &&
		s.InitialPrompt == o.InitialPrompt &&
		s.Status == o.Status &&
		s.StopReason.Equal(o.StopReason) &&
		s.Error == o.Error
}

type Invocation struct {
	InvocationId   string    `json:"invocationId"`
	Model          string    `json:"model"`
	SequenceNumber int       `json:"sequenceNumber"`
	Modality       string    `json:"modality"`
	OutputText     string    `json:"outputText,omitempty"`
	StartedAt      time.Time `json:"startedAt"`
	CompletedAt    time.Time `json:"completedAt"`
}

// ComposeInvocation carries text outputs inline. Image bytes stay out
// of the JSON surface; fetch them via the image export.
func ComposeInvocation(i domain.Invocation) Invocation {
	text := ""
	if i.Output.Modality == domain.Text {
		text = i.Output.Text
	}
	return Invocation{
		InvocationId:   i.ID.String(),
		Model:          i.Model,
		SequenceNumber: i.SequenceNumber,
		Modality:       string(i.Output.Modality),
		OutputText:     text,
		StartedAt:      i.StartedAt,
		CompletedAt:    i.CompletedAt,
	}
}

func (i *Invocation) Equal(o *Invocation) bool {
	if i == nil || o == nil {
		return (i == nil) && (o == nil)
	}
	return i.InvocationId == o.InvocationId &&
		i.Model == o.Model &&
		i.SequenceNumber == o.SequenceNumber &&
		i.Modality == o.Modality &&
		i.OutputText == o.OutputText &&
		i.StartedAt.Equal(o.StartedAt) &&
		i.CompletedAt.Equal(o.CompletedAt)
}

type Detail struct {
	Summary
	Invocations []Invocation `json:"invocations"`
}

func ComposeDetail(r domain.Run) Detail {
	invocations := make([]Invocation, 0, len(r.Invocations))
	for _, i := range r.Invocations {
		invocations = append(invocations, ComposeInvocation(i))
	}
	return Detail{
		Summary:     ComposeSummary(r),
		Invocations: invocations,
	}
}

func (d *Detail) Equal(o *Detail) bool {
	if d == nil || o == nil {
		return (d == nil) && (o == nil)
	}
	return d.Summary.Equal(&o.Summary) &&
		cmp.SliceEqWith(d.Invocations, o.Invocations, func(a, b Invocation) bool {
			return a.Equal(&b)
		})
}

type Generator struct {
	Birth float64 `json:"birth"`
	// Death is null for essential classes.
	Death *float64 `json:"death"`
}

type Diagram struct {
	RunId          string              `json:"runId"`
	EmbeddingModel string              `json:"embeddingModel"`
	Generators     map[int][]Generator `json:"generators"`
	Entropy        map[int]float64     `json:"entropy"`
}

func ComposeDiagram(pd domain.PersistenceDiagram) Diagram {
	generators := map[int][]Generator{}
	for dim, gens := range pd.Generators {
		out := make([]Generator, 0, len(gens))
		for _, g := range gens {
			gen := Generator{Birth: g.Birth}
			if !math.IsInf(g.Death, 1) {
				death := g.Death
				gen.Death = &death
			}
			out = append(out, gen)
		}
		generators[dim] = out
	}
	return Diagram{
		RunId:          pd.RunID.String(),
		EmbeddingModel: pd.EmbeddingModel,
		Generators:     generators,
		Entropy:        pd.Entropy,
	}
}

package experiments

import (
	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
)

// Spec is the request body of an experiment submission.
// It mirrors the config file format of the CLI.
type Spec struct {
	Networks        [][]string `json:"networks"`
	Seeds           []int      `json:"seeds"`
	Prompts         []string   `json:"prompts"`
	EmbeddingModels []string   `json:"embedding_models"`
	RunLength       int        `json:"run_length"`
}

func (s Spec) ToConfig() domain.ExperimentConfig {
	networks := make([]domain.Network, 0, len(s.Networks))
	for _, n := range s.Networks {
		networks = append(networks, domain.Network(n))
	}
	return domain.ExperimentConfig{
		Networks:        networks,
		Seeds:           s.Seeds,
		Prompts:         s.Prompts,
		EmbeddingModels: s.EmbeddingModels,
		RunLength:       s.RunLength,
	}
}

// Receipt acknowledges an accepted experiment.
type Receipt struct {
	Runs int `json:"runs"`
}

// Report is the terminal summary of a finished experiment.
type Report struct {
	RunsCompleted  int      `json:"runsCompleted"`
	RunsFailed     int      `json:"runsFailed"`
	FailedRuns     []string `json:"failedRuns,omitempty"`
	Embeddings     int      `json:"embeddings"`
	EmbeddingsLost int      `json:"embeddingsLost"`
	Diagrams       int      `json:"diagrams"`
	DiagramsAbsent int      `json:"diagramsAbsent"`
}

package domain

import (
	"github.com/ANUcybernetics/trajectory-tracer/pkg/utils/combination"
	xe "github.com/ANUcybernetics/trajectory-tracer/pkg/errors"
)

// ExperimentConfig drives a batch of Runs: one Run per
// (network, seed, prompt) combination, each of RunLength invocations
// at most, embedded with every listed embedding model.
type ExperimentConfig struct {
	Networks        []Network `yaml:"networks" json:"networks"`
	Seeds           []int     `yaml:"seeds" json:"seeds"`
	Prompts         []string  `yaml:"prompts" json:"prompts"`
	EmbeddingModels []string  `yaml:"embedding_models" json:"embedding_models"`
	RunLength       int       `yaml:"run_length" json:"run_length"`
}

func (c ExperimentConfig) Validate() error {
	if len(c.Networks) == 0 {
		return xe.New("networks cannot be empty")
	}
	for _, n := range c.Networks {
		if len(n) == 0 {
			return xe.New("a network cannot be empty")
		}
	}
	if len(c.Seeds) == 0 {
		return xe.New("seeds cannot be empty")
	}
	if len(c.Prompts) == 0 {
		return xe.New("prompts cannot be empty")
	}
	if len(c.EmbeddingModels) == 0 {
		return xe.New("embedding_models cannot be empty")
	}
	if c.RunLength <= 0 {
		return xe.New("run_length must be greater than 0")
	}
	return nil
}

const (
	dimNetwork = "network"
	dimSeed    = "seed"
	dimPrompt  = "prompt"
)

// ExpandRuns generates the pending Runs of the experiment:
// the cartesian product of networks × seeds × prompts.
func (c ExperimentConfig) ExpandRuns() ([]Run, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	basis := map[string][]any{
		dimNetwork: {},
		dimSeed:    {},
		dimPrompt:  {},
	}
	for _, n := range c.Networks {
		basis[dimNetwork] = append(basis[dimNetwork], n)
	}
	for _, s := range c.Seeds {
		basis[dimSeed] = append(basis[dimSeed], s)
	}
	for _, p := range c.Prompts {
		basis[dimPrompt] = append(basis[dimPrompt], p)
	}

	runs := make([]Run, 0, len(c.Networks)*len(c.Seeds)*len(c.Prompts))
	for _, point := range combination.MapCartesian(basis) {
		run, err := NewRun(
			point[dimNetwork].(Network),
			point[dimSeed].(int),
			point[dimPrompt].(string),
			c.RunLength,
		)
		if err != nil {
			return nil, xe.Wrap(err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

package domain_test

import (
	"testing"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/utils/cmp"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/utils/try"
)

func TestExperimentConfig(t *testing.T) {
	valid := domain.ExperimentConfig{
		Networks:        []domain.Network{{"t2i", "i2t"}, {"echo"}},
		Seeds:           []int{1, 2, 3},
		Prompts:         []string{"a duck", "a goose"},
		EmbeddingModels: []string{"embedder"},
		RunLength:       5,
	}

	t.Run("it expands one run per (network, seed, prompt)", func(t *testing.T) {
		runs := try.To(valid.ExpandRuns()).OrFatal(t)

		if len(runs) != 2*3*2 {
			t.Fatalf("unexpected number of runs: %d (expected 12)", len(runs))
		}

		type key struct {
			network string
			seed    int
			prompt  string
		}
		seen := map[key]int{}
		for _, run := range runs {
			if run.MaxLength != valid.RunLength {
				t.Errorf("run has wrong max length: %d", run.MaxLength)
			}
			if run.Status != domain.Pending {
				t.Errorf("expanded run is not pending: %s", run.Status)
			}
			k := key{network: run.Network[0], seed: run.Seed, prompt: run.InitialPrompt}
			seen[k] += 1
		}
		for k, n := range seen {
			if n != 1 {
				t.Errorf("combination %v expanded %d times", k, n)
			}
		}
	})

	t.Run("it keeps network ordering in expanded runs", func(t *testing.T) {
		runs := try.To(valid.ExpandRuns()).OrFatal(t)
		for _, run := range runs {
			if len(run.Network) == 2 && !cmp.SliceEq(run.Network, domain.Network{"t2i", "i2t"}) {
				t.Errorf("network order is broken: %v", run.Network)
			}
		}
	})

	t.Run("it rejects invalid configs", func(t *testing.T) {
		for name, breakIt := range map[string]func(c domain.ExperimentConfig) domain.ExperimentConfig{
			"no networks": func(c domain.ExperimentConfig) domain.ExperimentConfig {
				c.Networks = nil
				return c
			},
			"empty network": func(c domain.ExperimentConfig) domain.ExperimentConfig {
				c.Networks = []domain.Network{{}}
				return c
			},
			"no seeds": func(c domain.ExperimentConfig) domain.ExperimentConfig {
				c.Seeds = nil
				return c
			},
			"no prompts": func(c domain.ExperimentConfig) domain.ExperimentConfig {
				c.Prompts = nil
				return c
			},
			"no embedding models": func(c domain.ExperimentConfig) domain.ExperimentConfig {
				c.EmbeddingModels = nil
				return c
			},
			"zero run length": func(c domain.ExperimentConfig) domain.ExperimentConfig {
				c.RunLength = 0
				return c
			},
		} {
			t.Run(name, func(t *testing.T) {
				broken := breakIt(valid)
				if _, err := broken.ExpandRuns(); err == nil {
					t.Error("invalid config is accepted")
				}
			})
		}
	})
}

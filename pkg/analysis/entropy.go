package analysis

import (
	"math"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
)

// PersistenceEntropy is the Shannon entropy of the persistence
// distribution of generators: with L_i the persistence (death - birth)
// of the i-th finite generator and S their sum, it is
//
//	-sum( (L_i / S) * ln(L_i / S) )
//
// Infinite-persistence generators are skipped. The second return is
// false when entropy is undefined for the dimension, that is when no
// finite generator has positive total persistence.
//
// A diagram with a single finite generator has entropy 0.
func PersistenceEntropy(generators []domain.BirthDeath) (float64, bool) {
	finite := []float64{}
	total := 0.0
	for _, g := range generators {
		p := g.Persistence()
		if math.IsInf(p, 1) {
			continue
		}
		finite = append(finite, p)
		total += p
	}

	if total <= 0 {
		return 0, false
	}

	entropy := 0.0
	for _, p := range finite {
		if p <= 0 {
			continue
		}
		ratio := p / total
		entropy -= ratio * math.Log(ratio)
	}
	return entropy, true
}

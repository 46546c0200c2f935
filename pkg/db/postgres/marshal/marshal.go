// Package marshal converts domain values to and from their stored
// representations: embedding vectors as packed little-endian float32
// and diagram generators as jsonb.
package marshal

import (
	"encoding/binary"
	"encoding/json"
	"math"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	xe "github.com/ANUcybernetics/trajectory-tracer/pkg/errors"
)

// VectorToBytes packs a vector as consecutive little-endian float32.
func VectorToBytes(vector []float32) []byte {
	packed := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(packed[4*i:], math.Float32bits(v))
	}
	return packed
}

// VectorFromBytes unpacks a vector packed by VectorToBytes.
func VectorFromBytes(packed []byte) ([]float32, error) {
	if len(packed)%4 != 0 {
		return nil, xe.New("stored vector is corrupt: length is not a multiple of 4")
	}
	vector := make([]float32, len(packed)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(packed[4*i:]))
	}
	return vector, nil
}

// storedGenerator carries one birth/death pair in jsonb.
// Death is null for essential classes since json has no Inf.
type storedGenerator struct {
	Birth float64  `json:"birth"`
	Death *float64 `json:"death"`
}

// GeneratorsToJSON encodes generators-per-dimension for a jsonb column.
func GeneratorsToJSON(generators map[int][]domain.BirthDeath) ([]byte, error) {
	stored := map[int][]storedGenerator{}
	for dim, gens := range generators {
		out := make([]storedGenerator, 0, len(gens))
		for _, g := range gens {
			sg := storedGenerator{Birth: g.Birth}
			if !math.IsInf(g.Death, 1) {
				death := g.Death
				sg.Death = &death
			}
			out = append(out, sg)
		}
		stored[dim] = out
	}
	encoded, err := json.Marshal(stored)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return encoded, nil
}

// GeneratorsFromJSON decodes a jsonb column written by GeneratorsToJSON.
func GeneratorsFromJSON(encoded []byte) (map[int][]domain.BirthDeath, error) {
	stored := map[int][]storedGenerator{}
	if err := json.Unmarshal(encoded, &stored); err != nil {
		return nil, xe.Wrap(err)
	}
	generators := map[int][]domain.BirthDeath{}
	for dim, gens := range stored {
		out := make([]domain.BirthDeath, 0, len(gens))
		for _, sg := range gens {
			death := math.Inf(1)
			if sg.Death != nil {
				death = *sg.Death
			}
			out = append(out, domain.BirthDeath{Birth: sg.Birth, Death: death})
		}
		generators[dim] = out
	}
	return generators, nil
}

// EntropyToJSON encodes the per-dimension entropy map for a jsonb column.
func EntropyToJSON(entropy map[int]float64) ([]byte, error) {
	encoded, err := json.Marshal(entropy)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return encoded, nil
}

// EntropyFromJSON decodes a jsonb column written by EntropyToJSON.
func EntropyFromJSON(encoded []byte) (map[int]float64, error) {
	entropy := map[int]float64{}
	if err := json.Unmarshal(encoded, &entropy); err != nil {
		return nil, xe.Wrap(err)
	}
	return entropy, nil
}

package marshal_test

import (
	"math"
	"testing"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/db/postgres/marshal"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/utils/cmp"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/utils/try"
)

func TestVectorCodec(t *testing.T) {
	t.Run("round-trips a vector", func(t *testing.T) {
		vector := []float32{0, 1.5, -2.25, float32(math.Pi)}

		packed := marshal.VectorToBytes(vector)
		if len(packed) != 4*len(vector) {
			t.Errorf("packed length: got %d, want %d", len(packed), 4*len(vector))
		}

		got := try.To(marshal.VectorFromBytes(packed)).OrFatal(t)
		if !cmp.SliceEq(got, vector) {
			t.Errorf("vector: got %v, want %v", got, vector)
		}
	})

	t.Run("an empty vector packs to no bytes", func(t *testing.T) {
		if packed := marshal.VectorToBytes(nil); len(packed) != 0 {
			t.Errorf("packed: got %v", packed)
		}
	})

	t.Run("a truncated blob is corrupt", func(t *testing.T) {
		if _, err := marshal.VectorFromBytes([]byte{1, 2, 3}); err == nil {
			t.Error("an error should be reported")
		}
	})
}

func TestGeneratorsCodec(t *testing.T) {
	t.Run("round-trips generators, infinite death included", func(t *testing.T) {
		generators := map[int][]domain.BirthDeath{
			0: {
				{Birth: 0, Death: 1.5},
				{Birth: 0, Death: math.Inf(1)},
			},
			1: {},
		}

		encoded := try.To(marshal.GeneratorsToJSON(generators)).OrFatal(t)
		got := try.To(marshal.GeneratorsFromJSON(encoded)).OrFatal(t)

		if !cmp.MapEqWith(got, generators, func(a, b []domain.BirthDeath) bool {
			return cmp.SliceEq(a, b)
		}) {
			t.Errorf("generators: got %+v, want %+v", got, generators)
		}
	})
}

func TestEntropyCodec(t *testing.T) {
	entropy := map[int]float64{0: math.Log(2), 2: 0}

	encoded := try.To(marshal.EntropyToJSON(entropy)).OrFatal(t)
	got := try.To(marshal.EntropyFromJSON(encoded)).OrFatal(t)

	if !cmp.MapEq(got, entropy) {
		t.Errorf("entropy: got %v, want %v", got, entropy)
	}
}

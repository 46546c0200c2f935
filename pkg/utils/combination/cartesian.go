package combination

import "github.com/ANUcybernetics/trajectory-tracer/pkg/utils/slices"

// MapCartesian chooses one item per key from map[K][]V and generates
// the cartesian product.
//
// # Example:
//
//	MapCartesian(map[string][]string{
//		"prompt": {"a duck", "a goose"},
//		"seed":   {"1", "2"},
//	})
//
// generates ("prompt" × "seed"):
//
//	[]map[string]string{
//		{"prompt": "a duck", "seed": "1"},
//		{"prompt": "a duck", "seed": "2"},
//		{"prompt": "a goose", "seed": "1"},
//		{"prompt": "a goose", "seed": "2"},
//	}
//
// # Args
//
// - basis : basis of cartesian product.
//
// # Returns
//
// - []map[K]V : Each item has the same keys as basis.
// For each key of each item, the value is one of basis[key].
// When any dimension is empty, the whole product is empty.
func MapCartesian[K comparable, V any](basis map[K][]V) []map[K]V {
	dims := len(basis)
	if dims == 0 {
		return []map[K]V{}
	}

	keys := make([]K, 0, dims)
	for k, p := range basis {
		if len(p) == 0 {
			// a zero-width dimension makes the whole space empty.
			return []map[K]V{}
		}
		keys = append(keys, k)
	}

	var cartesian func(known []map[K]V, rem []K) []map[K]V
	cartesian = func(known []map[K]V, rem []K) []map[K]V {
		if len(rem) <= 0 {
			return known
		}

		topic := rem[0]
		grown := []map[K]V{}

		for _, item := range basis[topic] {
			clone := slices.Map(known, mapCopy[K, V])
			for i := range clone {
				clone[i][topic] = item
			}
			grown = append(grown, clone...)
		}

		return cartesian(grown, rem[1:])
	}

	seed := keys[0]
	known := slices.Map(basis[seed], func(item V) map[K]V {
		return map[K]V{seed: item}
	})

	return cartesian(known, keys[1:])
}

func mapCopy[K comparable, V any](base map[K]V) map[K]V {
	clone := make(map[K]V, len(base))
	for k := range base {
		clone[k] = base[k]
	}
	return clone
}

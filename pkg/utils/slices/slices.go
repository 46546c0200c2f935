package slices

// Map applies mapper to each element in sli.
//
// # Args
//
// - sli : slice of `T`s
//
// - mapper : mapping function from T to R
//
// # Returns
//
// slice of `R`s. The element indexed `N` is `mapper(sli[N])`.
func Map[T any, R any](sli []T, mapper func(v T) R) []R {
	ret := make([]R, len(sli))
	for nth, v := range sli {
		ret[nth] = mapper(v)
	}
	return ret
}

// MapUntilError maps over sli with mapper.
//
// If mapper causes error, it returns (nil, error) at once.
// Otherwise, it returns (mapping result, nil).
func MapUntilError[T any, R any](sli []T, mapper func(v T) (R, error)) ([]R, error) {
	ret := make([]R, len(sli))
	for nth, v := range sli {
		mapped, err := mapper(v)
		if err != nil {
			return nil, err
		}
		ret[nth] = mapped
	}
	return ret, nil
}

// Filter returns elements which predicate matches, keeping their order.
func Filter[T any](sli []T, predicate func(v T) bool) []T {
	ret := []T{}
	for _, v := range sli {
		if predicate(v) {
			ret = append(ret, v)
		}
	}
	return ret
}

// First returns the first element matching predicate.
//
// When no elements match, it returns (zero value, false).
func First[T any](sli []T, predicate func(v T) bool) (T, bool) {
	for _, v := range sli {
		if predicate(v) {
			return v, true
		}
	}
	return *new(T), false
}

// KeysOf returns keys of the map m. Ordering is not deterministic.
func KeysOf[K comparable, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

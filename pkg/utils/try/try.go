package try

// something having method `Fatal`.
//
// For example in standard libraries: *testing.T, log.Logger
type Fataler interface {
	Fatal(...any)
}

// Either is a wrapper of a pair (T, error).
//
// When error is nil, the Either is "ok" and its T value is valid.
// Otherwise it is "no good" and the T value must not be used.
type Either[T any] interface {
	// Get returns the wrapped pair.
	//
	// If the Either has value, it returns (value, nil).
	// Otherwise, (zero-value, error).
	Get() (T, error)

	// OrFatal returns the T value when the Either is "ok".
	//
	// Otherwise, it calls ftl.Fatal(err).
	// If ftl has a "Helper()" method (like *testing.T), that is called
	// before Fatal.
	OrFatal(ftl Fataler) T

	// OrDefault returns the T value when the Either is "ok",
	// or the given default otherwise.
	OrDefault(T) T
}

type tryOk[T any] struct {
	val T
}

func (o tryOk[T]) Get() (T, error)   { return o.val, nil }
func (o tryOk[T]) OrFatal(Fataler) T { return o.val }
func (o tryOk[T]) OrDefault(T) T     { return o.val }

type tryNg[T any] struct {
	err error
}

func (n tryNg[T]) Get() (T, error) { return *new(T), n.err }

type helper interface {
	Helper()
}

func (n tryNg[T]) OrFatal(ftl Fataler) T {
	if h, ok := ftl.(helper); ok {
		h.Helper()
	}
	ftl.Fatal(n.err)
	return *new(T)
}

func (n tryNg[T]) OrDefault(def T) T { return def }

// To wraps a (value, error) pair into Either.
//
//	value := try.To(os.Open(filepath)).OrFatal(t)
func To[T any](val T, err error) Either[T] {
	if err != nil {
		return tryNg[T]{err: err}
	}
	return tryOk[T]{val: val}
}

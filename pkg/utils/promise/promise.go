package promise

// Result is a pair of value and error, sent over a Promise.
type Result[T any] struct {
	Value T
	Err   error
}

// Get unwraps the Result into a (value, error) pair,
// composable with try.To.
func (r Result[T]) Get() (T, error) {
	return r.Value, r.Err
}

// Promise is a channel which will receive exactly one Result and then close.
type Promise[T any] <-chan Result[T]

// Ok returns a resolved Promise holding value.
func Ok[T any](value T) Promise[T] {
	ch := make(chan Result[T], 1)
	ch <- Result[T]{Value: value}
	close(ch)
	return ch
}

// Failed returns a resolved Promise holding err.
func Failed[T any](err error) Promise[T] {
	ch := make(chan Result[T], 1)
	ch <- Result[T]{Err: err}
	close(ch)
	return ch
}

// Go runs f in a new goroutine and returns a Promise of its result.
func Go[T any](f func() (T, error)) Promise[T] {
	ch := make(chan Result[T], 1)
	go func() {
		defer close(ch)
		value, err := f()
		ch <- Result[T]{Value: value, Err: err}
	}()
	return ch
}

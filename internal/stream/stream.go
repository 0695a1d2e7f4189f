// Package stream provides lazy, pull-based sequences used for entity
// targeting and filtering. A Stream is single pass and never looks more
// than one element ahead of its consumer.
package stream

import "iter"

// Stream is a single-pass, non-restartable sequence of T.
//
// Streams are not safe for concurrent use and must not be retained
// across simulation steps.
type Stream[T any] struct {
	fetch   func() (T, bool)
	release func()

	next    T
	fetched bool
	has     bool
	closed  bool
}

// FromFunc creates a stream that pulls elements from fetch until it reports
// false. release, if non-nil, is called once when the stream is closed.
func FromFunc[T any](fetch func() (T, bool), release func()) *Stream[T] {
	return &Stream[T]{fetch: fetch, release: release}
}

// FromSlice creates a stream over the elements of s in order.
// The slice is read lazily and must not be mutated while the stream is open.
func FromSlice[T any](s []T) *Stream[T] {
	i := 0
	return FromFunc(func() (T, bool) {
		if i >= len(s) {
			var zero T
			return zero, false
		}
		v := s[i]
		i++
		return v, true
	}, nil)
}

// Empty returns a stream with no elements.
func Empty[T any]() *Stream[T] {
	return FromSlice[T](nil)
}

// HasNext reports whether Next will return an element.
// It pulls at most one element from the source.
func (s *Stream[T]) HasNext() bool {
	if s.closed {
		return false
	}
	if !s.fetched {
		s.next, s.has = s.fetch()
		s.fetched = true
	}
	return s.has
}

// Next returns the next element. Calling Next when HasNext is false is a
// contract violation and panics.
func (s *Stream[T]) Next() T {
	if !s.HasNext() {
		panic("stream: Next called on exhausted stream")
	}
	v := s.next
	var zero T
	s.next = zero
	s.fetched = false
	return v
}

// Close releases the source. It is idempotent.
func (s *Stream[T]) Close() {
	if s.closed {
		return
	}
	s.closed = true
	var zero T
	s.next = zero
	s.has = false
	if s.release != nil {
		s.release()
	}
}

// Filter returns a stream of the elements that satisfy pred.
// Closing the result closes s.
func (s *Stream[T]) Filter(pred func(T) bool) *Stream[T] {
	return FromFunc(func() (T, bool) {
		for s.HasNext() {
			v := s.Next()
			if pred(v) {
				return v, true
			}
		}
		var zero T
		return zero, false
	}, s.Close)
}

// Cast narrows the element type of s. Every element must be a U; callers
// filter by type tag first. A mismatching element panics.
func Cast[T, U any](s *Stream[T]) *Stream[U] {
	return FromFunc(func() (U, bool) {
		if !s.HasNext() {
			var zero U
			return zero, false
		}
		return any(s.Next()).(U), true
	}, s.Close)
}

// Map transforms each element lazily.
func Map[T, U any](s *Stream[T], fn func(T) U) *Stream[U] {
	return FromFunc(func() (U, bool) {
		if !s.HasNext() {
			var zero U
			return zero, false
		}
		return fn(s.Next()), true
	}, s.Close)
}

// Min consumes the stream and returns the element with the smallest metric.
// Ties keep the element seen first. ok is false for an empty stream.
func (s *Stream[T]) Min(metric func(T) float64) (T, bool) {
	return s.best(metric, func(a, b float64) bool { return a < b })
}

// Max consumes the stream and returns the element with the largest metric.
// Ties keep the element seen first.
func (s *Stream[T]) Max(metric func(T) float64) (T, bool) {
	return s.best(metric, func(a, b float64) bool { return a > b })
}

func (s *Stream[T]) best(metric func(T) float64, better func(a, b float64) bool) (T, bool) {
	defer s.Close()

	var result T
	var bestValue float64
	found := false
	for s.HasNext() {
		v := s.Next()
		m := metric(v)
		if !found || better(m, bestValue) {
			result, bestValue, found = v, m, true
		}
	}
	return result, found
}

// First returns the first element and closes the stream.
func (s *Stream[T]) First() (T, bool) {
	defer s.Close()
	if !s.HasNext() {
		var zero T
		return zero, false
	}
	return s.Next(), true
}

// Count consumes the stream and returns the number of elements.
func (s *Stream[T]) Count() int {
	defer s.Close()
	n := 0
	for s.HasNext() {
		s.Next()
		n++
	}
	return n
}

// ToSlice consumes the stream into a new slice.
func (s *Stream[T]) ToSlice() []T {
	defer s.Close()
	var out []T
	for s.HasNext() {
		out = append(out, s.Next())
	}
	return out
}

// All adapts the stream to a range-over-func iterator. Breaking out of the
// loop closes the stream.
func (s *Stream[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		defer s.Close()
		for s.HasNext() {
			if !yield(s.Next()) {
				return
			}
		}
	}
}

package indicator

import (
	"github.com/moznion/go-optional"
)

// Series is one numeric output of an indicator, aligned bar-for-bar with the
// input sequence. Bars inside the warm-up window are represented as
// not-yet-available rather than zero.
type Series []optional.Option[float64]

// NewSeries returns a Series of length n with every value unavailable.
func NewSeries(n int) Series {
	s := make(Series, n)
	for i := range s {
		s[i] = optional.None[float64]()
	}

	return s
}

// Set marks index i as available with value v.
func (s Series) Set(i int, v float64) {
	s[i] = optional.Some(v)
}

// Valid reports whether index i holds an available value.
func (s Series) Valid(i int) bool {
	return i >= 0 && i < len(s) && s[i].IsSome()
}

// Value returns the value at index i and whether it is available.
func (s Series) Value(i int) (float64, bool) {
	if !s.Valid(i) {
		return 0, false
	}

	return s[i].Unwrap(), true
}

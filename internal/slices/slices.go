package slices

// Number captures the numeric types used throughout the optimisation code.
type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// Fill returns a slice of length n with all elements equal to v.
func Fill[T any](v T, n int) []T {
	rv := make([]T, n)
	for i := range rv {
		rv[i] = v
	}
	return rv
}

// Zeros returns a slice of length n with all elements equal to zero.
func Zeros[T Number](n int) []T {
	return make([]T, n)
}

// Ones returns a slice of length n with all elements equal to one.
func Ones[T Number](n int) []T {
	return Fill[T](1, n)
}

// Map returns the slice obtained by applying f to each element of s.
func Map[S ~[]E, E any, R any](s S, f func(E) R) []R {
	rv := make([]R, len(s))
	for i, e := range s {
		rv[i] = f(e)
	}
	return rv
}

package generic

import "math/rand"

// Filter returns the elements of s for which f is true.
func Filter[T any](s []T, f func(T) bool) []T {
	var res []T

	for _, v := range s {
		if f(v) {
			res = append(res, v)
		}
	}

	return res
}

// Shuffle permutes s in place.
func Shuffle[T any](s []T) {
	rand.Shuffle(len(s), func(i, j int) {
		s[i], s[j] = s[j], s[i]
	})
}

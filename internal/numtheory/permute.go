package numtheory

import (
	"fmt"
	"io"
)

// Permute shuffles the first n elements of seq in place with Fisher-Yates.
func Permute[T any](src io.Reader, n int, seq []T) error {
	if n < 0 || n > len(seq) {
		return fmt.Errorf("permute: n=%d out of range for length %d", n, len(seq))
	}
	for i := n - 1; i > 0; i-- {
		j, err := Index(src, i+1)
		if err != nil {
			return err
		}
		seq[i], seq[j] = seq[j], seq[i]
	}
	return nil
}

// Permutation returns a uniformly random permutation of 0..n-1.
func Permutation(src io.Reader, n int) ([]int, error) {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	if err := Permute(src, n, perm); err != nil {
		return nil, err
	}
	return perm, nil
}

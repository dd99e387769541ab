// Package lotto draws lottery number sets.
package lotto

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

const (
	DefaultCount = 6
	DefaultMax   = 45
)

// Pick draws count distinct numbers from [1,max], ascending.
func Pick(r *rand.Rand, count, max int) ([]int, error) {
	if count <= 0 || max <= 0 {
		return nil, fmt.Errorf("lotto: count and max must be positive (got %d of %d)", count, max)
	}
	if count > max {
		return nil, fmt.Errorf("lotto: cannot draw %d distinct numbers from %d", count, max)
	}
	pool := r.Perm(max)[:count]
	out := make([]int, count)
	for i, n := range pool {
		out[i] = n + 1
	}
	slices.Sort(out)
	return out, nil
}

// Sets draws n independent default sets.
func Sets(r *rand.Rand, n int) ([][]int, error) {
	if n <= 0 {
		return nil, fmt.Errorf("lotto: set count must be positive (got %d)", n)
	}
	out := make([][]int, 0, n)
	for range n {
		s, err := Pick(r, DefaultCount, DefaultMax)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Bucket returns the colour band of a ball: 0 for 1-10, 1 for 11-20, up to
// 4 for 41 and above.
func Bucket(n int) int {
	if n <= 0 {
		return 0
	}
	b := (n - 1) / 10
	if b > 4 {
		b = 4
	}
	return b
}

// NewRand returns a generator seeded from the runtime's entropy.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

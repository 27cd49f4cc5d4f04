package dice

import (
	"math/rand"
	"sync"
)

// randomRoller implements Roller using math/rand with its own source so
// concurrent draft sessions do not contend on the global lock
type randomRoller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomRoller creates a new random roller seeded from the given seed
func NewRandomRoller(seed int64) Roller {
	return &randomRoller{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Intn implements Roller.Intn
func (r *randomRoller) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// Float64 implements Roller.Float64
func (r *randomRoller) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// Perm implements Roller.Perm
func (r *randomRoller) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Perm(n)
}

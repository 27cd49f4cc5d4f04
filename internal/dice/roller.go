package dice

// Roller provides an interface for all randomness used by pack generation
// and draft bots
// This allows us to inject deterministic implementations for testing
type Roller interface {
	// Intn returns a uniform int in [0, n)
	Intn(n int) int

	// Float64 returns a uniform float in [0.0, 1.0)
	Float64() float64

	// Perm returns a random permutation of [0, n)
	Perm(n int) []int
}

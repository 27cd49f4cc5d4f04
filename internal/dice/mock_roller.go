package dice

import (
	"sync"
)

// MockRoller implements Roller for testing with predetermined results
type MockRoller struct {
	mu         sync.Mutex
	ints       []int
	intIndex   int
	floats     []float64
	floatIndex int
}

// NewMockRoller creates a new mock roller
func NewMockRoller() *MockRoller {
	return &MockRoller{}
}

// SetNextIntn queues the next Intn result
func (m *MockRoller) SetNextIntn(v int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ints = append(m.ints, v)
}

// SetNextFloat64 queues the next Float64 result
func (m *MockRoller) SetNextFloat64(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.floats = append(m.floats, v)
}

// Intn returns the next queued value clamped to [0, n); when the queue is
// exhausted it returns 0
func (m *MockRoller) Intn(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.intIndex >= len(m.ints) {
		return 0
	}

	v := m.ints[m.intIndex]
	m.intIndex++
	if v >= n {
		v = n - 1
	}
	return v
}

// Float64 returns the next queued value; when the queue is exhausted it
// returns 0.99 so that probability checks default to "no upgrade"
func (m *MockRoller) Float64() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.floatIndex >= len(m.floats) {
		return 0.99
	}

	v := m.floats[m.floatIndex]
	m.floatIndex++
	return v
}

// Perm returns the identity permutation so that mocked shuffles preserve
// input order
func (m *MockRoller) Perm(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

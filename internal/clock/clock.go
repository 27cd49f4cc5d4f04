package clock

import "time"

//go:generate mockgen -destination=mock/mock_time_provider.go -package=mockclock -source=clock.go

// TimeProvider abstracts the wall clock so that pick timeouts and pause
// accounting can be tested deterministically
type TimeProvider interface {
	Now() time.Time
}

type realClock struct{}

// New returns a TimeProvider backed by time.Now
func New() TimeProvider {
	return &realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

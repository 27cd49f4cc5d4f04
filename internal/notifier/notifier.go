package notifier

//go:generate mockgen -destination=mock/mock_notifier.go -package=mocknotifier -source=notifier.go

import (
	"context"
)

// Notifier is the push channel draft mutations announce themselves on.
// Broadcast is best-effort: it supplements the versioned poll, never
// replaces it, and callers swallow its errors off the critical path.
type Notifier interface {
	Broadcast(ctx context.Context, podID string, version int64) error
}

// Noop discards all broadcasts
type Noop struct{}

// NewNoop creates a Notifier that does nothing
func NewNoop() *Noop {
	return &Noop{}
}

// Broadcast implements Notifier
func (n *Noop) Broadcast(_ context.Context, _ string, _ int64) error {
	return nil
}

// Package uuid hides ID generation behind a small interface so tests can
// pin the pod IDs and lock tokens a flow produces.
package uuid

import (
	"github.com/google/uuid"
)

// Generator mints unique string IDs
type Generator interface {
	New() string
}

// GoogleUUIDGenerator mints random v4 UUIDs
type GoogleUUIDGenerator struct{}

// New returns a fresh UUID string
func (g *GoogleUUIDGenerator) New() string {
	return uuid.New().String()
}

// NewGoogleUUIDGenerator creates a generator backed by google/uuid
func NewGoogleUUIDGenerator() *GoogleUUIDGenerator {
	return &GoogleUUIDGenerator{}
}

package pods

//go:generate mockgen -destination=mock/mock_repository.go -package=mockpods -source=repository.go

import (
	"context"
	"time"

	"github.com/galaxydraft/draft-server/internal/entities"
)

// Repository defines the interface for draft pod storage.
//
// SavePod is a compare-and-set on the pod's state version: the caller
// bumps pod.StateVersion and passes the version it read; a mismatch with
// the stored version fails with a Conflict error and writes nothing.
// State transitions that touch player rows go through SavePodWithPlayers
// so the rows and the pod commit or fail together.
//
// The resolution lock is the system's only hard mutual exclusion: a
// token-owned, TTL-bounded advisory lock that resolution passes acquire
// before applying staged picks.
type Repository interface {
	// CreatePod stores a new pod and its share-id index entry
	CreatePod(ctx context.Context, pod *entities.DraftPod) error

	// GetPod retrieves a pod by ID
	GetPod(ctx context.Context, id string) (*entities.DraftPod, error)

	// GetPodByShareID retrieves a pod by its share ID
	GetPodByShareID(ctx context.Context, shareID string) (*entities.DraftPod, error)

	// SavePod writes the pod if the stored state version still equals
	// expectedVersion
	SavePod(ctx context.Context, pod *entities.DraftPod, expectedVersion int64) error

	// SavePodWithPlayers commits the pod together with player row upserts
	// and seat removals as one atomic write, gated on expectedVersion like
	// SavePod. A conflict writes nothing.
	SavePodWithPlayers(ctx context.Context, pod *entities.DraftPod, upserts []*entities.DraftPodPlayer, removeSeats []int, expectedVersion int64) error

	// DeletePod removes the pod, its players, and its indexes
	DeletePod(ctx context.Context, id string) error

	// GetPlayers returns the pod's players ordered by seat
	GetPlayers(ctx context.Context, podID string) ([]*entities.DraftPodPlayer, error)

	// GetPlayer returns one player by user ID
	GetPlayer(ctx context.Context, podID, userID string) (*entities.DraftPodPlayer, error)

	// SavePlayer upserts one player row
	SavePlayer(ctx context.Context, player *entities.DraftPodPlayer) error

	// StageSelection rewrites only the staged-choice fields of the player
	// row at the given seat, re-reading the stored row so the rest of it
	// is never clobbered by a racing writer
	StageSelection(ctx context.Context, podID string, seat int, cardID string, status entities.PickStatus) error

	// DeletePlayer removes the player row at the given seat
	DeletePlayer(ctx context.Context, podID string, seat int) error

	// AcquireResolutionLock attempts to take the pod's resolution lock for
	// the given owner token; returns false when another owner holds it
	AcquireResolutionLock(ctx context.Context, podID, token string, ttl time.Duration) (bool, error)

	// ReleaseResolutionLock releases the lock if the token still owns it
	ReleaseResolutionLock(ctx context.Context, podID, token string) error
}

package pods

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/galaxydraft/draft-server/internal/clock"
	"github.com/galaxydraft/draft-server/internal/entities"
	apperr "github.com/galaxydraft/draft-server/internal/errors"
)

type memLock struct {
	token     string
	expiresAt time.Time
}

// inMemoryRepository implements Repository using in-memory storage. It
// honors the same compare-and-set and lock contracts as the Redis
// implementation, which makes it the harness for the concurrency tests.
type inMemoryRepository struct {
	mu       sync.Mutex
	pods     map[string]*entities.DraftPod
	shareIDs map[string]string // shareID -> podID
	players  map[string]map[int]*entities.DraftPodPlayer
	locks    map[string]memLock
	clock    clock.TimeProvider
}

// NewInMemoryRepository creates a new in-memory pod repository
func NewInMemoryRepository(timeProvider clock.TimeProvider) Repository {
	if timeProvider == nil {
		timeProvider = clock.New()
	}
	return &inMemoryRepository{
		pods:     make(map[string]*entities.DraftPod),
		shareIDs: make(map[string]string),
		players:  make(map[string]map[int]*entities.DraftPodPlayer),
		locks:    make(map[string]memLock),
		clock:    timeProvider,
	}
}

// clonePod deep-copies via JSON so callers never share memory with the store
func clonePod(pod *entities.DraftPod) *entities.DraftPod {
	data, _ := json.Marshal(pod)
	var out entities.DraftPod
	_ = json.Unmarshal(data, &out)
	return &out
}

func clonePlayer(p *entities.DraftPodPlayer) *entities.DraftPodPlayer {
	data, _ := json.Marshal(p)
	var out entities.DraftPodPlayer
	_ = json.Unmarshal(data, &out)
	return &out
}

func (r *inMemoryRepository) CreatePod(_ context.Context, pod *entities.DraftPod) error {
	if pod == nil {
		return apperr.InvalidArgument("pod cannot be nil")
	}
	if pod.ID == "" {
		return apperr.InvalidArgument("pod ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pods[pod.ID]; exists {
		return apperr.AlreadyExists("pod " + pod.ID + " already exists")
	}

	r.pods[pod.ID] = clonePod(pod)
	if pod.ShareID != "" {
		r.shareIDs[pod.ShareID] = pod.ID
	}
	r.players[pod.ID] = make(map[int]*entities.DraftPodPlayer)

	return nil
}

func (r *inMemoryRepository) GetPod(_ context.Context, id string) (*entities.DraftPod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pod, exists := r.pods[id]
	if !exists {
		return nil, apperr.NotFoundf("pod not found: %s", id)
	}
	return clonePod(pod), nil
}

func (r *inMemoryRepository) GetPodByShareID(_ context.Context, shareID string) (*entities.DraftPod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	podID, exists := r.shareIDs[shareID]
	if !exists {
		return nil, apperr.NotFoundf("no pod with share ID: %s", shareID)
	}
	pod, exists := r.pods[podID]
	if !exists {
		return nil, apperr.NotFoundf("pod not found: %s", podID)
	}
	return clonePod(pod), nil
}

func (r *inMemoryRepository) SavePod(_ context.Context, pod *entities.DraftPod, expectedVersion int64) error {
	if pod == nil {
		return apperr.InvalidArgument("pod cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.pods[pod.ID]
	if !exists {
		return apperr.NotFoundf("pod not found: %s", pod.ID)
	}
	if current.StateVersion != expectedVersion {
		return apperr.Conflictf("pod %s at version %d, expected %d",
			pod.ID, current.StateVersion, expectedVersion)
	}

	r.pods[pod.ID] = clonePod(pod)
	return nil
}

func (r *inMemoryRepository) SavePodWithPlayers(_ context.Context, pod *entities.DraftPod, upserts []*entities.DraftPodPlayer, removeSeats []int, expectedVersion int64) error {
	if pod == nil {
		return apperr.InvalidArgument("pod cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.pods[pod.ID]
	if !exists {
		return apperr.NotFoundf("pod not found: %s", pod.ID)
	}
	if current.StateVersion != expectedVersion {
		return apperr.Conflictf("pod %s at version %d, expected %d",
			pod.ID, current.StateVersion, expectedVersion)
	}

	r.pods[pod.ID] = clonePod(pod)
	rows := r.players[pod.ID]
	for _, p := range upserts {
		rows[p.Seat] = clonePlayer(p)
	}
	for _, seat := range removeSeats {
		delete(rows, seat)
	}
	return nil
}

func (r *inMemoryRepository) DeletePod(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pod, exists := r.pods[id]
	if !exists {
		return apperr.NotFoundf("pod not found: %s", id)
	}

	delete(r.pods, id)
	delete(r.players, id)
	delete(r.locks, id)
	if pod.ShareID != "" {
		delete(r.shareIDs, pod.ShareID)
	}
	return nil
}

func (r *inMemoryRepository) GetPlayers(_ context.Context, podID string) ([]*entities.DraftPodPlayer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, exists := r.players[podID]
	if !exists {
		return nil, apperr.NotFoundf("pod not found: %s", podID)
	}

	players := make([]*entities.DraftPodPlayer, 0, len(rows))
	for _, p := range rows {
		players = append(players, clonePlayer(p))
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].Seat < players[j].Seat
	})
	return players, nil
}

func (r *inMemoryRepository) GetPlayer(ctx context.Context, podID, userID string) (*entities.DraftPodPlayer, error) {
	players, err := r.GetPlayers(ctx, podID)
	if err != nil {
		return nil, err
	}
	for _, p := range players {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, apperr.NotFoundf("player %s not in pod %s", userID, podID)
}

func (r *inMemoryRepository) SavePlayer(_ context.Context, player *entities.DraftPodPlayer) error {
	if player == nil {
		return apperr.InvalidArgument("player cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rows, exists := r.players[player.PodID]
	if !exists {
		return apperr.NotFoundf("pod not found: %s", player.PodID)
	}
	rows[player.Seat] = clonePlayer(player)
	return nil
}

// StageSelection touches only the staged-choice fields of the stored row
func (r *inMemoryRepository) StageSelection(_ context.Context, podID string, seat int, cardID string, status entities.PickStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, exists := r.players[podID]
	if !exists {
		return apperr.NotFoundf("pod not found: %s", podID)
	}
	p, exists := rows[seat]
	if !exists {
		return apperr.NotFoundf("no player at seat %d in pod %s", seat, podID)
	}

	p.SelectedCardID = cardID
	p.PickStatus = status
	return nil
}

func (r *inMemoryRepository) DeletePlayer(_ context.Context, podID string, seat int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, exists := r.players[podID]
	if !exists {
		return apperr.NotFoundf("pod not found: %s", podID)
	}
	delete(rows, seat)
	return nil
}

func (r *inMemoryRepository) AcquireResolutionLock(_ context.Context, podID, token string, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	if held, exists := r.locks[podID]; exists && now.Before(held.expiresAt) {
		return false, nil
	}

	r.locks[podID] = memLock{token: token, expiresAt: now.Add(ttl)}
	return true, nil
}

func (r *inMemoryRepository) ReleaseResolutionLock(_ context.Context, podID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if held, exists := r.locks[podID]; exists && held.token == token {
		delete(r.locks, podID)
	}
	return nil
}

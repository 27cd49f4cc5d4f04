package draft

//go:generate mockgen -destination=mock/mock_service.go -package=mockdraft -source=service.go

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"strings"
	"time"

	"github.com/galaxydraft/draft-server/internal/catalog"
	"github.com/galaxydraft/draft-server/internal/clock"
	"github.com/galaxydraft/draft-server/internal/dice"
	"github.com/galaxydraft/draft-server/internal/entities"
	apperr "github.com/galaxydraft/draft-server/internal/errors"
	"github.com/galaxydraft/draft-server/internal/notifier"
	"github.com/galaxydraft/draft-server/internal/repositories/pods"
	"github.com/galaxydraft/draft-server/internal/uuid"
)

// Repository is an alias for the pod repository interface
type Repository = pods.Repository

// Resolution lock tuning. The lock is advisory; losers back off with
// jitter and leave resolution to the winner, so worst-case blocking stays
// inside the bounded retry window.
const (
	resolutionLockTTL  = 2 * time.Second
	resolveAttempts    = 3
	resolveBackoffBase = 50 * time.Millisecond
	resolveBackoffSpan = 100 * time.Millisecond

	versionSaveAttempts = 5
)

// Service is the draft orchestration surface
type Service interface {
	// CreatePod opens a lobby with the host seated
	CreatePod(ctx context.Context, input *CreatePodInput) (*entities.DraftPod, error)

	// GetPod returns the pod and its players
	GetPod(ctx context.Context, podID string) (*Snapshot, error)

	// GetPodByShareID resolves a share code to a snapshot
	GetPodByShareID(ctx context.Context, shareID string) (*Snapshot, error)

	// Join seats a user in a waiting pod
	Join(ctx context.Context, podID, userID string) error

	// Leave removes a user from a waiting pod
	Leave(ctx context.Context, podID, userID string) error

	// AddBots fills seats with bot players (host only)
	AddBots(ctx context.Context, podID, hostID string, count int) error

	// RandomizeSeats shuffles the seat order (host only)
	RandomizeSeats(ctx context.Context, podID, hostID string) error

	// Start generates every seat's packs and leader pool up front and
	// opens the leader draft (host only)
	Start(ctx context.Context, podID, hostID string) error

	// Select stages a clearable choice for the caller's seat; an empty
	// cardID clears the staged choice
	Select(ctx context.Context, podID, userID, cardID string) error

	// Pick is the legacy finalize path: stage and attempt resolution in
	// one call
	Pick(ctx context.Context, podID, userID, cardID string) error

	// Pause freezes pick timers (host only)
	Pause(ctx context.Context, podID, hostID string) error

	// Resume re-arms timers and re-checks pending resolution (host only)
	Resume(ctx context.Context, podID, hostID string) error

	// DeletePod cancels the pod unconditionally (host only)
	DeletePod(ctx context.Context, podID, hostID string) error

	// Poll returns a snapshot, enforcing timeouts and nudging bots along
	// the way
	Poll(ctx context.Context, input *PollInput) (*PollOutput, error)

	// TriggerBots forces a bot processing pass (host only)
	TriggerBots(ctx context.Context, podID, hostID string) error
}

// CreatePodInput contains data for opening a lobby
type CreatePodInput struct {
	HostID   string
	SetCode  string
	Settings *entities.PodSettings // Optional, defaults when nil
}

// PollInput is a versioned state read
type PollInput struct {
	PodID        string
	SinceVersion int64
}

// Snapshot is a consistent read of the pod aggregate
type Snapshot struct {
	Pod     *entities.DraftPod
	Players []*entities.DraftPodPlayer
}

// PollOutput carries a snapshot plus whether it is newer than the
// caller's last observed version
type PollOutput struct {
	Snapshot
	Changed bool
}

// CompletionHook runs after a draft completes, off the resolution's
// critical path. Failures are logged and swallowed.
type CompletionHook interface {
	PodCompleted(ctx context.Context, pod *entities.DraftPod, players []*entities.DraftPodPlayer) error
}

type noopHook struct{}

func (noopHook) PodCompleted(context.Context, *entities.DraftPod, []*entities.DraftPodPlayer) error {
	return nil
}

// service implements the Service interface
type service struct {
	repo          Repository
	catalog       catalog.Provider
	notifier      notifier.Notifier
	clock         clock.TimeProvider
	roller        dice.Roller
	uuidGenerator uuid.Generator
	hook          CompletionHook
	defaults      *entities.PodSettings
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Repository     Repository       // Required
	Catalog        catalog.Provider // Required
	Notifier       notifier.Notifier
	TimeProvider   clock.TimeProvider
	Roller         dice.Roller
	UUIDGenerator  uuid.Generator
	CompletionHook CompletionHook

	// DefaultSettings seeds pods created without explicit settings
	DefaultSettings *entities.PodSettings
}

// NewService creates a new draft service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Repository == nil {
		panic("repository is required")
	}
	if cfg.Catalog == nil {
		panic("catalog provider is required")
	}

	svc := &service{
		repo:          cfg.Repository,
		catalog:       cfg.Catalog,
		notifier:      cfg.Notifier,
		clock:         cfg.TimeProvider,
		roller:        cfg.Roller,
		uuidGenerator: cfg.UUIDGenerator,
		hook:          cfg.CompletionHook,
		defaults:      cfg.DefaultSettings,
	}

	if svc.notifier == nil {
		svc.notifier = notifier.NewNoop()
	}
	if svc.clock == nil {
		svc.clock = clock.New()
	}
	if svc.roller == nil {
		svc.roller = dice.NewRandomRoller(time.Now().UnixNano())
	}
	if svc.uuidGenerator == nil {
		svc.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}
	if svc.hook == nil {
		svc.hook = noopHook{}
	}
	if svc.defaults == nil {
		svc.defaults = entities.DefaultPodSettings()
	}

	return svc
}

// CreatePod opens a lobby with the host seated
func (s *service) CreatePod(ctx context.Context, input *CreatePodInput) (*entities.DraftPod, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input cannot be nil")
	}
	if strings.TrimSpace(input.HostID) == "" {
		return nil, apperr.InvalidArgument("host ID is required")
	}
	if strings.TrimSpace(input.SetCode) == "" {
		return nil, apperr.InvalidArgument("set code is required")
	}

	// Fail early on unknown sets rather than at start
	if _, err := s.catalog.GetSet(input.SetCode); err != nil {
		return nil, apperr.Wrapf(err, "cannot create pod for set '%s'", input.SetCode)
	}

	pod := entities.NewDraftPod(s.uuidGenerator.New(), generateShareID(), input.HostID, input.SetCode)
	if input.Settings != nil {
		pod.Settings = input.Settings
	} else {
		// Copy so pods never share a mutable settings struct
		settings := *s.defaults
		pod.Settings = &settings
	}

	if err := s.repo.CreatePod(ctx, pod); err != nil {
		return nil, apperr.Wrap(err, "failed to create pod").
			WithMeta("set_code", input.SetCode)
	}

	host := entities.NewDraftPodPlayer(pod.ID, input.HostID, 0)
	if err := s.repo.SavePlayer(ctx, host); err != nil {
		return nil, apperr.Wrap(err, "failed to seat host").
			WithMeta("pod_id", pod.ID)
	}

	return pod, nil
}

// GetPod returns the pod with its players
func (s *service) GetPod(ctx context.Context, podID string) (*Snapshot, error) {
	if strings.TrimSpace(podID) == "" {
		return nil, apperr.InvalidArgument("pod ID is required")
	}
	pod, err := s.repo.GetPod(ctx, podID)
	if err != nil {
		return nil, err
	}
	players, err := s.repo.GetPlayers(ctx, podID)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Pod: pod, Players: players}, nil
}

// GetPodByShareID resolves a share code to a snapshot
func (s *service) GetPodByShareID(ctx context.Context, shareID string) (*Snapshot, error) {
	if strings.TrimSpace(shareID) == "" {
		return nil, apperr.InvalidArgument("share ID is required")
	}
	pod, err := s.repo.GetPodByShareID(ctx, shareID)
	if err != nil {
		return nil, err
	}
	return s.GetPod(ctx, pod.ID)
}

// Join seats a user in a waiting pod. The seat reservation and the player
// row commit together; a lost race against another join re-reads the pod
// and takes the next open seat.
func (s *service) Join(ctx context.Context, podID, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperr.InvalidArgument("user ID is required")
	}

	var err error
	for attempt := 0; attempt < versionSaveAttempts; attempt++ {
		err = s.joinOnce(ctx, podID, userID)
		if err == nil || !apperr.IsConflict(err) {
			return err
		}
	}
	return err
}

func (s *service) joinOnce(ctx context.Context, podID, userID string) error {
	pod, err := s.repo.GetPod(ctx, podID)
	if err != nil {
		return err
	}
	if pod.Status != entities.PodStatusWaiting {
		return apperr.Validation("pod is not accepting players")
	}
	if len(pod.Seats) >= pod.Settings.MaxSeats {
		return apperr.Validation("pod is full")
	}
	if pod.SeatOf(userID) >= 0 {
		return apperr.AlreadyExists("already seated in this pod")
	}

	seat := len(pod.Seats)
	pod.Seats = append(pod.Seats, userID)
	pod.Bump()

	player := entities.NewDraftPodPlayer(pod.ID, userID, seat)
	if err := s.repo.SavePodWithPlayers(ctx, pod, []*entities.DraftPodPlayer{player}, nil, pod.StateVersion-1); err != nil {
		return apperr.Wrap(err, "failed to seat player")
	}

	s.broadcast(pod.ID, pod.StateVersion)
	return nil
}

// Leave removes a user from a waiting pod. The last player leaving
// deletes the pod; a departing host hands the pod to the next seat.
func (s *service) Leave(ctx context.Context, podID, userID string) error {
	var err error
	for attempt := 0; attempt < versionSaveAttempts; attempt++ {
		err = s.leaveOnce(ctx, podID, userID)
		if err == nil || !apperr.IsConflict(err) {
			return err
		}
	}
	return err
}

func (s *service) leaveOnce(ctx context.Context, podID, userID string) error {
	pod, err := s.repo.GetPod(ctx, podID)
	if err != nil {
		return err
	}
	if pod.Status != entities.PodStatusWaiting {
		return apperr.Validation("cannot leave a draft in progress")
	}
	seat := pod.SeatOf(userID)
	if seat < 0 {
		return apperr.NotFoundf("player %s not in pod %s", userID, podID)
	}

	pod.Seats = append(pod.Seats[:seat], pod.Seats[seat+1:]...)
	if len(pod.Seats) == 0 {
		return s.repo.DeletePod(ctx, podID)
	}
	if pod.IsHost(userID) {
		pod.HostID = pod.Seats[0]
	}
	pod.Bump()

	// Reseat the remaining players densely
	players, err := s.repo.GetPlayers(ctx, podID)
	if err != nil {
		return err
	}
	remaining := make([]*entities.DraftPodPlayer, 0, len(players)-1)
	for _, p := range players {
		if p.UserID == userID {
			continue
		}
		p.Seat = pod.SeatOf(p.UserID)
		remaining = append(remaining, p)
	}
	if err := s.repo.SavePodWithPlayers(ctx, pod, remaining, []int{len(pod.Seats)}, pod.StateVersion-1); err != nil {
		return apperr.Wrap(err, "failed to reseat players")
	}

	s.broadcast(pod.ID, pod.StateVersion)
	return nil
}

// AddBots fills seats with bot players
func (s *service) AddBots(ctx context.Context, podID, hostID string, count int) error {
	if count <= 0 {
		return apperr.InvalidArgument("bot count must be positive")
	}

	pod, err := s.repo.GetPod(ctx, podID)
	if err != nil {
		return err
	}
	if !pod.IsHost(hostID) {
		return apperr.Forbidden("only the host can add bots")
	}
	if pod.Status != entities.PodStatusWaiting {
		return apperr.Validation("pod is not accepting players")
	}
	if len(pod.Seats)+count > pod.Settings.MaxSeats {
		return apperr.Validationf("pod only has %d open seats", pod.Settings.MaxSeats-len(pod.Seats))
	}

	bots := make([]*entities.DraftPodPlayer, 0, count)
	for i := 0; i < count; i++ {
		seat := len(pod.Seats)
		botID := "bot-" + s.uuidGenerator.New()[:8]
		pod.Seats = append(pod.Seats, botID)
		bots = append(bots, entities.NewBotPlayer(pod.ID, botID, seat, pod.Settings.BotBehavior))
	}
	pod.Bump()

	if err := s.repo.SavePodWithPlayers(ctx, pod, bots, nil, pod.StateVersion-1); err != nil {
		return apperr.Wrap(err, "failed to seat bots")
	}

	s.broadcast(pod.ID, pod.StateVersion)
	return nil
}

// RandomizeSeats shuffles the seat order
func (s *service) RandomizeSeats(ctx context.Context, podID, hostID string) error {
	pod, err := s.repo.GetPod(ctx, podID)
	if err != nil {
		return err
	}
	if !pod.IsHost(hostID) {
		return apperr.Forbidden("only the host can randomize seats")
	}
	if pod.Status != entities.PodStatusWaiting {
		return apperr.Validation("seats are locked once the draft starts")
	}

	perm := s.roller.Perm(len(pod.Seats))
	shuffled := make([]string, len(pod.Seats))
	for i, j := range perm {
		shuffled[i] = pod.Seats[j]
	}
	pod.Seats = shuffled
	pod.Bump()

	players, err := s.repo.GetPlayers(ctx, podID)
	if err != nil {
		return err
	}
	for _, p := range players {
		p.Seat = pod.SeatOf(p.UserID)
	}
	if err := s.repo.SavePodWithPlayers(ctx, pod, players, nil, pod.StateVersion-1); err != nil {
		return apperr.Wrap(err, "failed to reseat players")
	}

	s.broadcast(pod.ID, pod.StateVersion)
	return nil
}

// Pause freezes pick timers
func (s *service) Pause(ctx context.Context, podID, hostID string) error {
	pod, err := s.repo.GetPod(ctx, podID)
	if err != nil {
		return err
	}
	if !pod.IsHost(hostID) {
		return apperr.Forbidden("only the host can pause")
	}
	if pod.Status != entities.PodStatusActive {
		return apperr.Validation("only an active draft can be paused")
	}

	now := s.clock.Now()
	pod.Status = entities.PodStatusPaused
	pod.State.PausedAt = &now
	pod.Bump()

	if err := s.repo.SavePod(ctx, pod, pod.StateVersion-1); err != nil {
		return apperr.Wrap(err, "failed to pause pod")
	}

	s.broadcast(pod.ID, pod.StateVersion)
	return nil
}

// Resume re-arms timers; an all-selected state that accumulated while
// paused resolves immediately.
func (s *service) Resume(ctx context.Context, podID, hostID string) error {
	pod, err := s.repo.GetPod(ctx, podID)
	if err != nil {
		return err
	}
	if !pod.IsHost(hostID) {
		return apperr.Forbidden("only the host can resume")
	}
	if pod.Status != entities.PodStatusPaused {
		return apperr.Validation("pod is not paused")
	}

	now := s.clock.Now()
	if pod.State.PausedAt != nil {
		pod.State.PausedDuration += now.Sub(*pod.State.PausedAt)
		pod.State.PausedAt = nil
	}
	pod.Status = entities.PodStatusActive
	pod.Bump()

	if err := s.repo.SavePod(ctx, pod, pod.StateVersion-1); err != nil {
		return apperr.Wrap(err, "failed to resume pod")
	}

	s.broadcast(pod.ID, pod.StateVersion)

	if err := s.maybeResolve(ctx, podID); err != nil {
		log.Printf("resume: resolution check for pod %s: %v", podID, err)
	}
	s.processBots(ctx, podID)
	return nil
}

// DeletePod cancels the pod unconditionally and cascades to its players
func (s *service) DeletePod(ctx context.Context, podID, hostID string) error {
	pod, err := s.repo.GetPod(ctx, podID)
	if err != nil {
		return err
	}
	if !pod.IsHost(hostID) {
		return apperr.Forbidden("only the host can delete the pod")
	}

	if err := s.repo.DeletePod(ctx, podID); err != nil {
		return err
	}

	s.broadcast(podID, pod.StateVersion+1)
	return nil
}

// broadcast pushes a change notification without blocking the caller;
// push failures are logged and swallowed because the versioned poll is
// the source of truth.
func (s *service) broadcast(podID string, version int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.notifier.Broadcast(ctx, podID, version); err != nil {
			log.Printf("broadcast failed for pod %s: %v", podID, err)
		}
	}()
}

// bumpVersion increments the pod version so pollers observe a change.
// Content fields are untouched; concurrent bumps simply retry on top of
// the newest version.
func (s *service) bumpVersion(ctx context.Context, podID string) {
	for i := 0; i < versionSaveAttempts; i++ {
		pod, err := s.repo.GetPod(ctx, podID)
		if err != nil {
			return
		}
		expected := pod.StateVersion
		pod.Bump()
		err = s.repo.SavePod(ctx, pod, expected)
		if err == nil {
			s.broadcast(podID, pod.StateVersion)
			return
		}
		if !apperr.IsConflict(err) {
			log.Printf("version bump failed for pod %s: %v", podID, err)
			return
		}
	}
}

// generateShareID creates a short code for inviting players to a pod
func generateShareID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(b)
}

package entities

import (
	"time"
)

// PodStatus represents the lifecycle state of a draft pod
type PodStatus string

const (
	PodStatusWaiting  PodStatus = "waiting"  // Lobby, accepting seats
	PodStatusActive   PodStatus = "active"   // Draft in progress
	PodStatusPaused   PodStatus = "paused"   // Timers frozen by the host
	PodStatusComplete PodStatus = "complete" // All picks resolved
	PodStatusDeleted  PodStatus = "deleted"  // Host cancellation
)

// DraftPhase tracks which part of the draft the pod is in
type DraftPhase string

const (
	PhaseLobby       DraftPhase = "lobby"
	PhaseLeaderDraft DraftPhase = "leader_draft"
	PhasePackDraft   DraftPhase = "pack_draft"
)

// PassDirection is the rotation policy for packs and leader pools between
// picks
type PassDirection string

const (
	// PassAlternating passes left on odd pack numbers and right on even ones
	PassAlternating PassDirection = "alternating"
	PassLeft        PassDirection = "left"
	PassRight       PassDirection = "right"
)

// Draft structure constants
const (
	LeaderRounds   = 3  // leader_draft rounds
	PacksPerSeat   = 3  // pack_draft rounds
	PicksPerPack   = 14 // draftable cards per 16-card pack
	LeaderPoolSize = 6  // leaders dealt to each seat at start
	PackSize       = 16
	CommonsPerPack = 9
)

// DraftState holds the turn counters for an active draft
type DraftState struct {
	Phase       DraftPhase `json:"phase"`
	LeaderRound int        `json:"leader_round"` // 1..3 during leader_draft
	PackNumber  int        `json:"pack_number"`  // 1..3 during pack_draft
	PickInPack  int        `json:"pick_in_pack"` // 1..14 during pack_draft

	// TimerStartedAt marks the start of the current pick for timeout
	// enforcement; PausedDuration accumulates time spent paused during the
	// current pick
	TimerStartedAt *time.Time    `json:"timer_started_at,omitempty"`
	PausedAt       *time.Time    `json:"paused_at,omitempty"`
	PausedDuration time.Duration `json:"paused_duration"`
}

// PodSettings holds host-configurable options for a pod
type PodSettings struct {
	MaxSeats      int           `json:"max_seats"`
	PickTimeout   time.Duration `json:"pick_timeout"`
	PassDirection PassDirection `json:"pass_direction"`
	BotBehavior   string        `json:"bot_behavior"` // default behavior key for added bots
}

// DefaultPodSettings returns the default pod configuration
func DefaultPodSettings() *PodSettings {
	return &PodSettings{
		MaxSeats:      8,
		PickTimeout:   120 * time.Second,
		PassDirection: PassAlternating,
		BotBehavior:   "popular-leader",
	}
}

// DraftPod is the shared aggregate every request path reads and writes.
// StateVersion increases on every externally visible change; persistence
// enforces compare-and-set on it.
type DraftPod struct {
	ID      string `json:"id"`
	ShareID string `json:"share_id"`
	HostID  string `json:"host_id"`
	SetCode string `json:"set_code"`

	Status   PodStatus    `json:"status"`
	Settings *PodSettings `json:"settings"`

	// Seats holds user IDs in seat order
	Seats []string `json:"seats"`

	State        DraftState `json:"state"`
	StateVersion int64      `json:"state_version"`

	// AllPacks[seat][packNumber-1] is generated once at start and drained
	// as packs are distributed
	AllPacks [][]*GeneratedPack `json:"all_packs,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewDraftPod creates a pod in the lobby state with the host seated
func NewDraftPod(id, shareID, hostID, setCode string) *DraftPod {
	return &DraftPod{
		ID:        id,
		ShareID:   shareID,
		HostID:    hostID,
		SetCode:   setCode,
		Status:    PodStatusWaiting,
		Settings:  DefaultPodSettings(),
		Seats:     []string{hostID},
		State:     DraftState{Phase: PhaseLobby},
		CreatedAt: time.Now(),
	}
}

// IsHost reports whether the given user is the pod host
func (p *DraftPod) IsHost(userID string) bool {
	return p.HostID == userID
}

// SeatOf returns the seat index of the given user, or -1
func (p *DraftPod) SeatOf(userID string) int {
	for i, id := range p.Seats {
		if id == userID {
			return i
		}
	}
	return -1
}

// CanJoin reports whether a new seat can be added
func (p *DraftPod) CanJoin() bool {
	return p.Status == PodStatusWaiting && len(p.Seats) < p.Settings.MaxSeats
}

// PassOffset returns the seat offset the current pick's packs travel:
// +1 for left, -1 for right, per the pod's pass direction policy.
func (p *DraftPod) PassOffset() int {
	dir := p.Settings.PassDirection
	if dir == PassAlternating {
		// Leader rounds and odd packs pass left, even packs pass right
		if p.State.Phase == PhasePackDraft && p.State.PackNumber%2 == 0 {
			return -1
		}
		return 1
	}
	if dir == PassRight {
		return -1
	}
	return 1
}

// Bump increments the state version; every mutator must call it before a
// compare-and-set save
func (p *DraftPod) Bump() {
	p.StateVersion++
}

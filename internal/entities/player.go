package entities

import (
	"time"
)

// PickStatus is a seat's turn state. It only flows
// picking -> selected -> picked -> picking (next turn).
type PickStatus string

const (
	PickStatusWaiting  PickStatus = "waiting"  // No turn in progress (lobby / complete)
	PickStatusPicking  PickStatus = "picking"  // Seat owes a pick
	PickStatusSelected PickStatus = "selected" // Staged, clearable choice
	PickStatusPicked   PickStatus = "picked"   // Resolved this turn
)

// DraftPodPlayer is the per-seat row of the pod aggregate
type DraftPodPlayer struct {
	PodID  string `json:"pod_id"`
	Seat   int    `json:"seat"`
	UserID string `json:"user_id"`

	IsBot       bool   `json:"is_bot"`
	BotBehavior string `json:"bot_behavior,omitempty"`

	PickStatus     PickStatus `json:"pick_status"`
	SelectedCardID string     `json:"selected_card_id,omitempty"`

	// Leaders is the leader pool currently in front of the seat;
	// CurrentPack is the pack currently in front of it
	Leaders     []*Card      `json:"leaders,omitempty"`
	CurrentPack []*PackEntry `json:"current_pack,omitempty"`

	// Drafted collections are append-only
	DraftedLeaders []*Card      `json:"drafted_leaders,omitempty"`
	DraftedCards   []*PackEntry `json:"drafted_cards,omitempty"`

	LastPickAt *time.Time `json:"last_pick_at,omitempty"`
}

// NewDraftPodPlayer seats a user in a pod
func NewDraftPodPlayer(podID, userID string, seat int) *DraftPodPlayer {
	return &DraftPodPlayer{
		PodID:      podID,
		Seat:       seat,
		UserID:     userID,
		PickStatus: PickStatusWaiting,
	}
}

// NewBotPlayer seats a bot in a pod
func NewBotPlayer(podID, userID string, seat int, behavior string) *DraftPodPlayer {
	p := NewDraftPodPlayer(podID, userID, seat)
	p.IsBot = true
	p.BotBehavior = behavior
	return p
}

// LeaderByID returns the leader with the given card ID from the seat's
// current pool, or nil
func (p *DraftPodPlayer) LeaderByID(cardID string) *Card {
	for _, l := range p.Leaders {
		if l.ID == cardID {
			return l
		}
	}
	return nil
}

// PackEntryByID returns the entry with the given card ID from the seat's
// current pack, or nil
func (p *DraftPodPlayer) PackEntryByID(cardID string) *PackEntry {
	for _, e := range p.CurrentPack {
		if e.Card.ID == cardID {
			return e
		}
	}
	return nil
}

// RemoveLeader removes the leader with the given card ID from the pool and
// returns it, or nil if absent
func (p *DraftPodPlayer) RemoveLeader(cardID string) *Card {
	for i, l := range p.Leaders {
		if l.ID == cardID {
			p.Leaders = append(p.Leaders[:i], p.Leaders[i+1:]...)
			return l
		}
	}
	return nil
}

// RemovePackEntry removes the entry with the given card ID from the current
// pack and returns it, or nil if absent
func (p *DraftPodPlayer) RemovePackEntry(cardID string) *PackEntry {
	for i, e := range p.CurrentPack {
		if e.Card.ID == cardID {
			p.CurrentPack = append(p.CurrentPack[:i], p.CurrentPack[i+1:]...)
			return e
		}
	}
	return nil
}

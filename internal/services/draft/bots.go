package draft

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/galaxydraft/draft-server/internal/entities"
	apperr "github.com/galaxydraft/draft-server/internal/errors"
)

// TriggerBots forces a synchronous bot processing pass
func (s *service) TriggerBots(ctx context.Context, podID, hostID string) error {
	pod, err := s.repo.GetPod(ctx, podID)
	if err != nil {
		return err
	}
	if !pod.IsHost(hostID) {
		return apperr.Forbidden("only the host can trigger bots")
	}

	s.processBots(ctx, podID)
	return nil
}

// processBotsAsync runs a bot pass off the caller's critical path
func (s *service) processBotsAsync(podID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.processBots(ctx, podID)
	}()
}

// processBots stages a pick for every bot seat still in the picking state
// and then attempts resolution. Idempotent: bot seats already past
// picking are untouched, so the pass can run after every human action and
// on every poll.
func (s *service) processBots(ctx context.Context, podID string) {
	pod, err := s.repo.GetPod(ctx, podID)
	if err != nil {
		return
	}
	if pod.Status != entities.PodStatusActive {
		return
	}
	players, err := s.repo.GetPlayers(ctx, podID)
	if err != nil {
		return
	}

	cfg, err := s.catalog.GetSet(pod.SetCode)
	if err != nil {
		log.Printf("bot pass: unknown set for pod %s: %v", podID, err)
		return
	}

	staged := false
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range players {
		if !p.IsBot || p.PickStatus != entities.PickStatusPicking {
			continue
		}

		player := p
		cardID := s.botChoice(pod, cfg, player)
		if cardID == "" {
			// Empty pool or pack; nothing legal to stage
			continue
		}

		staged = true
		g.Go(func() error {
			return s.repo.StageSelection(gctx, podID, player.Seat, cardID, entities.PickStatusSelected)
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("bot pass: staging failed for pod %s: %v", podID, err)
		return
	}
	if !staged {
		return
	}

	s.bumpVersion(ctx, podID)
	if err := s.maybeResolve(ctx, podID); err != nil {
		log.Printf("bot pass: resolution failed for pod %s: %v", podID, err)
	}
}

// botChoice asks the seat's behavior strategy for a pick
func (s *service) botChoice(pod *entities.DraftPod, cfg *entities.SetConfig, player *entities.DraftPodPlayer) string {
	behavior := NewBehavior(player.BotBehavior)
	bctx := &BehaviorContext{
		Set:    cfg,
		Player: player,
		Roller: s.roller,
	}

	switch pod.State.Phase {
	case entities.PhaseLeaderDraft:
		if leader := behavior.SelectLeader(player.Leaders, bctx); leader != nil {
			return leader.ID
		}
	case entities.PhasePackDraft:
		if entry := behavior.SelectCard(player.CurrentPack, bctx); entry != nil {
			return entry.Card.ID
		}
	}
	return ""
}

package draft

import (
	"context"

	"github.com/galaxydraft/draft-server/internal/entities"
	apperr "github.com/galaxydraft/draft-server/internal/errors"
	"github.com/galaxydraft/draft-server/internal/generator"
)

// Start generates every pack and leader pool for every seat up front,
// then opens leader draft round 1 with all seats picking.
func (s *service) Start(ctx context.Context, podID, hostID string) error {
	pod, err := s.repo.GetPod(ctx, podID)
	if err != nil {
		return err
	}
	if !pod.IsHost(hostID) {
		return apperr.Forbidden("only the host can start the draft")
	}
	if pod.Status != entities.PodStatusWaiting {
		return apperr.Validation("draft has already started")
	}
	if len(pod.Seats) < 2 {
		return apperr.Validation("at least 2 players are required")
	}

	cfg, err := s.catalog.GetSet(pod.SetCode)
	if err != nil {
		return err
	}
	pools, err := s.catalog.Pools(pod.SetCode)
	if err != nil {
		return err
	}

	// One generation session owns the belts for the whole pod
	engine, err := generator.NewEngine(cfg, pools, s.roller)
	if err != nil {
		return apperr.Wrap(err, "failed to build generation engine")
	}

	players, err := s.repo.GetPlayers(ctx, podID)
	if err != nil {
		return err
	}
	if len(players) != len(pod.Seats) {
		return apperr.Internalf("pod %s has %d seats but %d players", podID, len(pod.Seats), len(players))
	}

	now := s.clock.Now()
	pod.AllPacks = make([][]*entities.GeneratedPack, len(pod.Seats))
	for _, p := range players {
		packs, err := engine.GeneratePacks(entities.PacksPerSeat)
		if err != nil {
			return apperr.Wrap(err, "failed to generate packs").
				WithMeta("seat", p.Seat)
		}
		pod.AllPacks[p.Seat] = packs

		pool, err := engine.GenerateLeaderPool(entities.LeaderPoolSize)
		if err != nil {
			return apperr.Wrap(err, "failed to generate leader pool").
				WithMeta("seat", p.Seat)
		}
		p.Leaders = pool
		p.PickStatus = entities.PickStatusPicking
	}

	pod.Status = entities.PodStatusActive
	pod.StartedAt = &now
	pod.State = entities.DraftState{
		Phase:          entities.PhaseLeaderDraft,
		LeaderRound:    1,
		TimerStartedAt: &now,
	}
	pod.Bump()

	if err := s.repo.SavePodWithPlayers(ctx, pod, players, nil, pod.StateVersion-1); err != nil {
		return apperr.Wrap(err, "failed to start pod")
	}

	s.broadcast(pod.ID, pod.StateVersion)
	s.processBotsAsync(pod.ID)
	return nil
}

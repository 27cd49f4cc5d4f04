package draft

import (
	"context"
	"log"
	"strings"

	"github.com/galaxydraft/draft-server/internal/entities"
	apperr "github.com/galaxydraft/draft-server/internal/errors"
)

// Poll is the versioned state read clients drive the draft with. It is
// also where timeouts are enforced and bots are nudged: both are
// opportunistic, and their failures never block the read.
func (s *service) Poll(ctx context.Context, input *PollInput) (*PollOutput, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input cannot be nil")
	}
	if strings.TrimSpace(input.PodID) == "" {
		return nil, apperr.InvalidArgument("pod ID is required")
	}

	pod, err := s.repo.GetPod(ctx, input.PodID)
	if err != nil {
		return nil, err
	}

	if pod.Status == entities.PodStatusActive {
		if err := s.enforceTimeout(ctx, pod); err != nil {
			log.Printf("poll: timeout enforcement for pod %s: %v", input.PodID, err)
		}
		s.processBots(ctx, input.PodID)

		// Re-read: enforcement or bots may have advanced the state
		pod, err = s.repo.GetPod(ctx, input.PodID)
		if err != nil {
			return nil, err
		}
	}

	players, err := s.repo.GetPlayers(ctx, input.PodID)
	if err != nil {
		return nil, err
	}

	return &PollOutput{
		Snapshot: Snapshot{Pod: pod, Players: players},
		Changed:  pod.StateVersion > input.SinceVersion,
	}, nil
}

// enforceTimeout force-selects a uniformly random legal option for every
// seat that outlived the pod's pick timeout, then triggers the same
// resolution path as a normal all-selected event. Pausing freezes the
// clock via the accumulated paused duration.
func (s *service) enforceTimeout(ctx context.Context, pod *entities.DraftPod) error {
	if pod.State.TimerStartedAt == nil || pod.Settings.PickTimeout <= 0 {
		return nil
	}

	elapsed := s.clock.Now().Sub(*pod.State.TimerStartedAt) - pod.State.PausedDuration
	if elapsed <= pod.Settings.PickTimeout {
		return nil
	}

	players, err := s.repo.GetPlayers(ctx, pod.ID)
	if err != nil {
		return err
	}

	forced := false
	for _, p := range players {
		if p.PickStatus != entities.PickStatusPicking {
			continue
		}

		cardID := s.randomLegalChoice(pod, p)
		if cardID == "" {
			continue
		}

		if err := s.repo.StageSelection(ctx, pod.ID, p.Seat, cardID, entities.PickStatusSelected); err != nil {
			return apperr.Wrap(err, "failed to force-select").
				WithMeta("seat", p.Seat)
		}
		forced = true
	}

	if !forced {
		return nil
	}

	s.bumpVersion(ctx, pod.ID)
	return s.maybeResolve(ctx, pod.ID)
}

// randomLegalChoice picks uniformly from the seat's current pool or pack
func (s *service) randomLegalChoice(pod *entities.DraftPod, p *entities.DraftPodPlayer) string {
	switch pod.State.Phase {
	case entities.PhaseLeaderDraft:
		if len(p.Leaders) == 0 {
			return ""
		}
		return p.Leaders[s.roller.Intn(len(p.Leaders))].ID
	case entities.PhasePackDraft:
		if len(p.CurrentPack) == 0 {
			return ""
		}
		return p.CurrentPack[s.roller.Intn(len(p.CurrentPack))].Card.ID
	default:
		return ""
	}
}

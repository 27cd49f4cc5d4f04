package draft

import (
	"context"
	"strings"

	"github.com/galaxydraft/draft-server/internal/entities"
	apperr "github.com/galaxydraft/draft-server/internal/errors"
)

// Select stages a non-final choice for the caller's seat. The staged pick
// is validated against the seat's current pool or pack, visible to other
// seats, and clearable by passing an empty cardID. When the last seat
// stages, the idempotent resolution path runs.
func (s *service) Select(ctx context.Context, podID, userID, cardID string) error {
	if err := s.stage(ctx, podID, userID, cardID); err != nil {
		return err
	}

	s.bumpVersion(ctx, podID)
	if err := s.maybeResolve(ctx, podID); err != nil {
		return apperr.Wrap(err, "resolution failed")
	}
	return nil
}

// Pick is the legacy finalize path: a non-clearable selection that stages
// and immediately attempts resolution
func (s *service) Pick(ctx context.Context, podID, userID, cardID string) error {
	if strings.TrimSpace(cardID) == "" {
		return apperr.InvalidArgument("card ID is required")
	}
	return s.Select(ctx, podID, userID, cardID)
}

// stage validates and records the selection for the caller's seat. The
// write touches only the staged-choice fields, so a stage landing after a
// racing resolution commit cannot roll back the row's drafted cards or
// resurrect its pre-resolution pool. A Conflict from the store means the
// row moved mid-write; re-validate against the fresh state and retry.
func (s *service) stage(ctx context.Context, podID, userID, cardID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperr.InvalidArgument("user ID is required")
	}

	var err error
	for attempt := 0; attempt < versionSaveAttempts; attempt++ {
		err = s.stageOnce(ctx, podID, userID, cardID)
		if err == nil || !apperr.IsConflict(err) {
			return err
		}
	}
	return err
}

func (s *service) stageOnce(ctx context.Context, podID, userID, cardID string) error {
	pod, err := s.repo.GetPod(ctx, podID)
	if err != nil {
		return err
	}
	switch pod.Status {
	case entities.PodStatusActive:
		// proceed
	case entities.PodStatusPaused:
		return apperr.Validation("pod is paused")
	case entities.PodStatusComplete:
		return apperr.Validation("draft is complete")
	default:
		return apperr.Validation("draft is not in progress")
	}

	player, err := s.repo.GetPlayer(ctx, podID, userID)
	if err != nil {
		return err
	}
	if player.PickStatus == entities.PickStatusPicked {
		return apperr.Validation("pick already resolved for this turn")
	}

	if cardID == "" {
		// Clear the staged choice
		return s.repo.StageSelection(ctx, podID, player.Seat, "", entities.PickStatusPicking)
	}

	switch pod.State.Phase {
	case entities.PhaseLeaderDraft:
		if player.LeaderByID(cardID) == nil {
			return apperr.Validationf("leader '%s' is not available", cardID)
		}
	case entities.PhasePackDraft:
		if player.PackEntryByID(cardID) == nil {
			return apperr.Validationf("card '%s' is not available", cardID)
		}
	default:
		return apperr.Validation("no pick in progress")
	}

	// Last write wins for concurrent selects on the same seat
	return s.repo.StageSelection(ctx, podID, player.Seat, cardID, entities.PickStatusSelected)
}

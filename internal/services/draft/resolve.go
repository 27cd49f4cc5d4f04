package draft

import (
	"context"
	"log"
	"time"

	"github.com/galaxydraft/draft-server/internal/entities"
	apperr "github.com/galaxydraft/draft-server/internal/errors"
)

// maybeResolve runs the resolution pass if every seat has staged a pick.
// Any caller may invoke it (the pick path, the poll path, the bot
// processor, the timeout enforcer) and racing invocations are harmless:
// only the holder of the pod's resolution lock applies picks, and it
// re-reads fresh state after acquiring, so the pass runs exactly once per
// all-selected transition.
func (s *service) maybeResolve(ctx context.Context, podID string) error {
	pod, err := s.repo.GetPod(ctx, podID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil
		}
		return err
	}
	players, err := s.repo.GetPlayers(ctx, podID)
	if err != nil {
		return err
	}
	if !allSelected(pod, players) {
		return nil
	}

	token := s.uuidGenerator.New()
	acquired := false
	for attempt := 1; attempt <= resolveAttempts; attempt++ {
		ok, err := s.repo.AcquireResolutionLock(ctx, podID, token, resolutionLockTTL)
		if err != nil {
			return apperr.Wrap(err, "failed to acquire resolution lock")
		}
		if ok {
			acquired = true
			break
		}
		if attempt < resolveAttempts {
			s.backoff(ctx)
		}
	}
	if !acquired {
		// A concurrent caller holds the lock and will resolve
		return nil
	}
	defer func() {
		if err := s.repo.ReleaseResolutionLock(ctx, podID, token); err != nil {
			log.Printf("failed to release resolution lock for pod %s: %v", podID, err)
		}
	}()

	return s.resolveLocked(ctx, podID)
}

// backoff sleeps a jittered interval before the next lock attempt
func (s *service) backoff(ctx context.Context) {
	delay := resolveBackoffBase + time.Duration(s.roller.Intn(int(resolveBackoffSpan)))
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// allSelected reports whether the pod is resolvable: active, seated, and
// every seat staged
func allSelected(pod *entities.DraftPod, players []*entities.DraftPodPlayer) bool {
	if pod.Status != entities.PodStatusActive || len(players) == 0 {
		return false
	}
	for _, p := range players {
		if p.PickStatus != entities.PickStatusSelected {
			return false
		}
	}
	return true
}

// resolveLocked applies the staged picks under the resolution lock. The
// pod and every player row commit in one compare-and-set write, so a
// half-applied resolution cannot be observed and the same staged picks
// can never advance the counters twice. A conflict (a version-only bump,
// a host pause, a re-stage landing mid-commit) refreshes and retries
// while the pod stays active and all-selected.
func (s *service) resolveLocked(ctx context.Context, podID string) error {
	for attempt := 0; attempt < versionSaveAttempts; attempt++ {
		pod, err := s.repo.GetPod(ctx, podID)
		if err != nil {
			if apperr.IsNotFound(err) {
				return nil
			}
			return err
		}
		players, err := s.repo.GetPlayers(ctx, podID)
		if err != nil {
			return err
		}
		if !allSelected(pod, players) {
			// Someone else already resolved this turn
			return nil
		}

		completed := s.applyPicks(pod, players)

		expected := pod.StateVersion
		pod.Bump()
		if err := s.repo.SavePodWithPlayers(ctx, pod, players, nil, expected); err != nil {
			if apperr.IsConflict(err) {
				continue
			}
			return apperr.Wrap(err, "failed to commit resolution")
		}

		s.broadcast(podID, pod.StateVersion)
		if completed {
			if err := s.hook.PodCompleted(ctx, pod, players); err != nil {
				log.Printf("completion hook failed for pod %s: %v", podID, err)
			}
		} else {
			s.processBotsAsync(podID)
		}
		return nil
	}

	return apperr.Conflictf("pod %s kept moving during resolution", podID)
}

// applyPicks moves every staged card to its seat's drafted pile, advances
// the turn counters, and rotates or distributes packs. Returns true when
// the draft completed.
func (s *service) applyPicks(pod *entities.DraftPod, players []*entities.DraftPodPlayer) bool {
	now := s.clock.Now()
	completed := false

	switch pod.State.Phase {
	case entities.PhaseLeaderDraft:
		for _, p := range players {
			card := p.RemoveLeader(p.SelectedCardID)
			if card == nil && len(p.Leaders) > 0 {
				// Stale selection; substitute a random legal leader
				card = p.Leaders[s.roller.Intn(len(p.Leaders))]
				p.RemoveLeader(card.ID)
			}
			if card != nil {
				p.DraftedLeaders = append(p.DraftedLeaders, card)
			}
			finishTurn(p, &now)
		}

		if pod.State.LeaderRound < entities.LeaderRounds {
			s.rotateLeaders(pod, players)
			pod.State.LeaderRound++
		} else {
			// Leader draft done; open pack 1
			pod.State.Phase = entities.PhasePackDraft
			pod.State.PackNumber = 1
			pod.State.PickInPack = 1
			for _, p := range players {
				p.Leaders = nil
			}
			s.distributePacks(pod, players)
		}

	case entities.PhasePackDraft:
		for _, p := range players {
			entry := p.RemovePackEntry(p.SelectedCardID)
			if entry == nil && len(p.CurrentPack) > 0 {
				entry = p.CurrentPack[s.roller.Intn(len(p.CurrentPack))]
				p.RemovePackEntry(entry.Card.ID)
			}
			if entry != nil {
				p.DraftedCards = append(p.DraftedCards, entry)
			}
			finishTurn(p, &now)
		}

		switch {
		case pod.State.PickInPack < entities.PicksPerPack:
			s.rotatePacks(pod, players)
			pod.State.PickInPack++
		case pod.State.PackNumber < entities.PacksPerSeat:
			pod.State.PackNumber++
			pod.State.PickInPack = 1
			s.distributePacks(pod, players)
		default:
			completed = true
		}
	}

	if completed {
		pod.Status = entities.PodStatusComplete
		pod.CompletedAt = &now
		pod.State.TimerStartedAt = nil
		for _, p := range players {
			p.PickStatus = entities.PickStatusWaiting
		}
	} else {
		pod.State.TimerStartedAt = &now
		pod.State.PausedDuration = 0
		for _, p := range players {
			p.PickStatus = entities.PickStatusPicking
		}
	}

	return completed
}

func finishTurn(p *entities.DraftPodPlayer, now *time.Time) {
	p.SelectedCardID = ""
	p.LastPickAt = now
	p.PickStatus = entities.PickStatusPicked
}

// rotateLeaders passes the remaining leader pools around the table
func (s *service) rotateLeaders(pod *entities.DraftPod, players []*entities.DraftPodPlayer) {
	n := len(players)
	offset := pod.PassOffset()
	pools := make([][]*entities.Card, n)
	for _, p := range players {
		pools[p.Seat] = p.Leaders
	}
	for _, p := range players {
		src := ((p.Seat-offset)%n + n) % n
		p.Leaders = pools[src]
	}
}

// rotatePacks passes the remaining pack contents around the table
func (s *service) rotatePacks(pod *entities.DraftPod, players []*entities.DraftPodPlayer) {
	n := len(players)
	offset := pod.PassOffset()
	packs := make([][]*entities.PackEntry, n)
	for _, p := range players {
		packs[p.Seat] = p.CurrentPack
	}
	for _, p := range players {
		src := ((p.Seat-offset)%n + n) % n
		p.CurrentPack = packs[src]
	}
}

// distributePacks opens the current pack number for every seat. The
// leader and base slots go straight to the drafted pile; the 14
// draftable entries become the seat's current pack.
func (s *service) distributePacks(pod *entities.DraftPod, players []*entities.DraftPodPlayer) {
	idx := pod.State.PackNumber - 1
	for _, p := range players {
		if p.Seat >= len(pod.AllPacks) || idx >= len(pod.AllPacks[p.Seat]) {
			continue
		}
		pack := pod.AllPacks[p.Seat][idx]
		if pack == nil {
			continue
		}
		p.CurrentPack = pack.DraftableEntries()
		p.DraftedCards = append(p.DraftedCards, pack.FixedEntries()...)
		pod.AllPacks[p.Seat][idx] = nil
	}
}

package pods_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	mockclock "github.com/galaxydraft/draft-server/internal/clock/mock"
	"github.com/galaxydraft/draft-server/internal/entities"
	apperr "github.com/galaxydraft/draft-server/internal/errors"
	"github.com/galaxydraft/draft-server/internal/repositories/pods"
)

type InMemoryRepositoryTestSuite struct {
	suite.Suite
	ctx  context.Context
	repo pods.Repository
}

func (s *InMemoryRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = pods.NewInMemoryRepository(nil)
}

func (s *InMemoryRepositoryTestSuite) newPod(id string) *entities.DraftPod {
	pod := entities.NewDraftPod(id, "share-"+id, "host-1", "SPK")
	s.Require().NoError(s.repo.CreatePod(s.ctx, pod))
	return pod
}

func (s *InMemoryRepositoryTestSuite) TestCreateAndGetPod() {
	pod := s.newPod("pod-1")

	got, err := s.repo.GetPod(s.ctx, "pod-1")
	s.Require().NoError(err)
	s.Equal(pod.ID, got.ID)
	s.Equal(pod.HostID, got.HostID)
	s.Equal(entities.PodStatusWaiting, got.Status)

	byShare, err := s.repo.GetPodByShareID(s.ctx, "share-pod-1")
	s.Require().NoError(err)
	s.Equal(pod.ID, byShare.ID)
}

func (s *InMemoryRepositoryTestSuite) TestCreateDuplicateFails() {
	s.newPod("pod-1")

	err := s.repo.CreatePod(s.ctx, entities.NewDraftPod("pod-1", "other", "host-2", "SPK"))
	s.Require().Error(err)
	s.True(apperr.IsAlreadyExists(err))
}

func (s *InMemoryRepositoryTestSuite) TestGetPodNotFound() {
	_, err := s.repo.GetPod(s.ctx, "missing")
	s.Require().Error(err)
	s.True(apperr.IsNotFound(err))
}

func (s *InMemoryRepositoryTestSuite) TestSavePodCompareAndSet() {
	pod := s.newPod("pod-1")

	pod.Bump()
	s.Require().NoError(s.repo.SavePod(s.ctx, pod, 0))

	// Stale writer still holds version 0
	stale := entities.NewDraftPod("pod-1", "share-pod-1", "host-1", "SPK")
	stale.Bump()
	err := s.repo.SavePod(s.ctx, stale, 0)
	s.Require().Error(err)
	s.True(apperr.IsConflict(err))

	got, err := s.repo.GetPod(s.ctx, "pod-1")
	s.Require().NoError(err)
	s.Equal(int64(1), got.StateVersion)
}

func (s *InMemoryRepositoryTestSuite) TestSavePodWithPlayersAtomic() {
	pod := s.newPod("pod-1")
	s.Require().NoError(s.repo.SavePlayer(s.ctx, entities.NewDraftPodPlayer(pod.ID, "host-1", 0)))

	pod.Seats = append(pod.Seats, "user-b")
	pod.Bump()
	joined := entities.NewDraftPodPlayer(pod.ID, "user-b", 1)

	// A stale version writes neither the pod nor the row
	err := s.repo.SavePodWithPlayers(s.ctx, pod, []*entities.DraftPodPlayer{joined}, nil, 5)
	s.Require().Error(err)
	s.True(apperr.IsConflict(err))

	players, err := s.repo.GetPlayers(s.ctx, pod.ID)
	s.Require().NoError(err)
	s.Len(players, 1)
	got, err := s.repo.GetPod(s.ctx, pod.ID)
	s.Require().NoError(err)
	s.Equal(int64(0), got.StateVersion)
	s.Equal([]string{"host-1"}, got.Seats)

	s.Require().NoError(s.repo.SavePodWithPlayers(s.ctx, pod, []*entities.DraftPodPlayer{joined}, nil, 0))
	players, err = s.repo.GetPlayers(s.ctx, pod.ID)
	s.Require().NoError(err)
	s.Len(players, 2)
}

func (s *InMemoryRepositoryTestSuite) TestSavePodWithPlayersRemovesSeats() {
	pod := s.newPod("pod-1")
	s.Require().NoError(s.repo.SavePlayer(s.ctx, entities.NewDraftPodPlayer(pod.ID, "host-1", 0)))
	s.Require().NoError(s.repo.SavePlayer(s.ctx, entities.NewDraftPodPlayer(pod.ID, "user-b", 1)))

	pod.Seats = []string{"host-1"}
	pod.Bump()
	s.Require().NoError(s.repo.SavePodWithPlayers(s.ctx, pod, nil, []int{1}, 0))

	players, err := s.repo.GetPlayers(s.ctx, pod.ID)
	s.Require().NoError(err)
	s.Require().Len(players, 1)
	s.Equal("host-1", players[0].UserID)
}

func (s *InMemoryRepositoryTestSuite) TestStageSelectionLeavesRowIntact() {
	pod := s.newPod("pod-1")
	p := entities.NewDraftPodPlayer(pod.ID, "user-a", 0)
	p.PickStatus = entities.PickStatusPicking
	p.DraftedLeaders = []*entities.Card{{ID: "ldr-1"}}
	s.Require().NoError(s.repo.SavePlayer(s.ctx, p))

	s.Require().NoError(s.repo.StageSelection(s.ctx, pod.ID, 0, "ldr-2", entities.PickStatusSelected))

	got, err := s.repo.GetPlayer(s.ctx, pod.ID, "user-a")
	s.Require().NoError(err)
	s.Equal("ldr-2", got.SelectedCardID)
	s.Equal(entities.PickStatusSelected, got.PickStatus)
	s.Require().Len(got.DraftedLeaders, 1)
	s.Equal("ldr-1", got.DraftedLeaders[0].ID)
}

func (s *InMemoryRepositoryTestSuite) TestStageSelectionMissingSeat() {
	pod := s.newPod("pod-1")

	err := s.repo.StageSelection(s.ctx, pod.ID, 7, "ldr-2", entities.PickStatusSelected)
	s.Require().Error(err)
	s.True(apperr.IsNotFound(err))
}

func (s *InMemoryRepositoryTestSuite) TestGetPodReturnsCopy() {
	s.newPod("pod-1")

	first, err := s.repo.GetPod(s.ctx, "pod-1")
	s.Require().NoError(err)
	first.Status = entities.PodStatusActive

	second, err := s.repo.GetPod(s.ctx, "pod-1")
	s.Require().NoError(err)
	s.Equal(entities.PodStatusWaiting, second.Status)
}

func (s *InMemoryRepositoryTestSuite) TestDeletePodCascades() {
	pod := s.newPod("pod-1")
	s.Require().NoError(s.repo.SavePlayer(s.ctx, entities.NewDraftPodPlayer(pod.ID, "host-1", 0)))

	s.Require().NoError(s.repo.DeletePod(s.ctx, "pod-1"))

	_, err := s.repo.GetPod(s.ctx, "pod-1")
	s.True(apperr.IsNotFound(err))
	_, err = s.repo.GetPodByShareID(s.ctx, "share-pod-1")
	s.True(apperr.IsNotFound(err))
	_, err = s.repo.GetPlayers(s.ctx, "pod-1")
	s.True(apperr.IsNotFound(err))
}

func (s *InMemoryRepositoryTestSuite) TestPlayersOrderedBySeat() {
	pod := s.newPod("pod-1")

	s.Require().NoError(s.repo.SavePlayer(s.ctx, entities.NewDraftPodPlayer(pod.ID, "user-c", 2)))
	s.Require().NoError(s.repo.SavePlayer(s.ctx, entities.NewDraftPodPlayer(pod.ID, "user-a", 0)))
	s.Require().NoError(s.repo.SavePlayer(s.ctx, entities.NewDraftPodPlayer(pod.ID, "user-b", 1)))

	players, err := s.repo.GetPlayers(s.ctx, pod.ID)
	s.Require().NoError(err)
	s.Require().Len(players, 3)
	s.Equal("user-a", players[0].UserID)
	s.Equal("user-b", players[1].UserID)
	s.Equal("user-c", players[2].UserID)
}

func (s *InMemoryRepositoryTestSuite) TestGetPlayer() {
	pod := s.newPod("pod-1")
	s.Require().NoError(s.repo.SavePlayer(s.ctx, entities.NewDraftPodPlayer(pod.ID, "user-a", 0)))

	got, err := s.repo.GetPlayer(s.ctx, pod.ID, "user-a")
	s.Require().NoError(err)
	s.Equal(0, got.Seat)

	_, err = s.repo.GetPlayer(s.ctx, pod.ID, "user-b")
	s.True(apperr.IsNotFound(err))
}

func (s *InMemoryRepositoryTestSuite) TestDeletePlayerFreesSeat() {
	pod := s.newPod("pod-1")
	s.Require().NoError(s.repo.SavePlayer(s.ctx, entities.NewDraftPodPlayer(pod.ID, "user-a", 0)))
	s.Require().NoError(s.repo.SavePlayer(s.ctx, entities.NewDraftPodPlayer(pod.ID, "user-b", 1)))

	s.Require().NoError(s.repo.DeletePlayer(s.ctx, pod.ID, 1))

	players, err := s.repo.GetPlayers(s.ctx, pod.ID)
	s.Require().NoError(err)
	s.Require().Len(players, 1)
	s.Equal("user-a", players[0].UserID)
}

func (s *InMemoryRepositoryTestSuite) TestResolutionLockMutualExclusion() {
	pod := s.newPod("pod-1")

	ok, err := s.repo.AcquireResolutionLock(s.ctx, pod.ID, "token-a", time.Second)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.repo.AcquireResolutionLock(s.ctx, pod.ID, "token-b", time.Second)
	s.Require().NoError(err)
	s.False(ok)

	// Release by a non-owner is a no-op
	s.Require().NoError(s.repo.ReleaseResolutionLock(s.ctx, pod.ID, "token-b"))
	ok, err = s.repo.AcquireResolutionLock(s.ctx, pod.ID, "token-b", time.Second)
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.repo.ReleaseResolutionLock(s.ctx, pod.ID, "token-a"))
	ok, err = s.repo.AcquireResolutionLock(s.ctx, pod.ID, "token-b", time.Second)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *InMemoryRepositoryTestSuite) TestResolutionLockExpires() {
	ctrl := gomock.NewController(s.T())
	timeProvider := mockclock.NewMockTimeProvider(ctrl)
	repo := pods.NewInMemoryRepository(timeProvider)

	pod := entities.NewDraftPod("pod-1", "share-1", "host-1", "SPK")
	s.Require().NoError(repo.CreatePod(s.ctx, pod))

	base := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	timeProvider.EXPECT().Now().Return(base)
	ok, err := repo.AcquireResolutionLock(s.ctx, pod.ID, "token-a", 2*time.Second)
	s.Require().NoError(err)
	s.True(ok)

	// Still held one second in
	timeProvider.EXPECT().Now().Return(base.Add(time.Second))
	ok, err = repo.AcquireResolutionLock(s.ctx, pod.ID, "token-b", 2*time.Second)
	s.Require().NoError(err)
	s.False(ok)

	// Expired after the TTL passes
	timeProvider.EXPECT().Now().Return(base.Add(3 * time.Second))
	ok, err = repo.AcquireResolutionLock(s.ctx, pod.ID, "token-b", 2*time.Second)
	s.Require().NoError(err)
	s.True(ok)
}

func TestInMemoryRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(InMemoryRepositoryTestSuite))
}

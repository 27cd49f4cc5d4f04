package pods_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/galaxydraft/draft-server/internal/entities"
	apperr "github.com/galaxydraft/draft-server/internal/errors"
	"github.com/galaxydraft/draft-server/internal/repositories/pods"
)

const testPodTTL = 48 * time.Hour

type RedisRepositoryTestSuite struct {
	suite.Suite
	ctx  context.Context
	mock redismock.ClientMock
	repo pods.Repository
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()

	var client *redis.Client
	client, s.mock = redismock.NewClientMock()
	s.repo = pods.NewRedisRepository(&pods.RedisRepoConfig{Client: client})
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RedisRepositoryTestSuite) marshal(v interface{}) []byte {
	data, err := json.Marshal(v)
	s.Require().NoError(err)
	return data
}

func (s *RedisRepositoryTestSuite) TestCreatePod() {
	pod := entities.NewDraftPod("pod-1", "abc123", "host-1", "SPK")
	data := s.marshal(pod)

	s.mock.ExpectSetNX("pod:pod-1", data, testPodTTL).SetVal(true)
	s.mock.ExpectSet("podshare:abc123", "pod-1", testPodTTL).SetVal("OK")

	s.NoError(s.repo.CreatePod(s.ctx, pod))
}

func (s *RedisRepositoryTestSuite) TestCreatePodAlreadyExists() {
	pod := entities.NewDraftPod("pod-1", "abc123", "host-1", "SPK")

	s.mock.ExpectSetNX("pod:pod-1", s.marshal(pod), testPodTTL).SetVal(false)

	err := s.repo.CreatePod(s.ctx, pod)
	s.Require().Error(err)
	s.True(apperr.IsAlreadyExists(err))
}

func (s *RedisRepositoryTestSuite) TestGetPod() {
	pod := entities.NewDraftPod("pod-1", "abc123", "host-1", "SPK")

	s.mock.ExpectGet("pod:pod-1").SetVal(string(s.marshal(pod)))

	got, err := s.repo.GetPod(s.ctx, "pod-1")
	s.Require().NoError(err)
	s.Equal("pod-1", got.ID)
	s.Equal("host-1", got.HostID)
	s.Equal([]string{"host-1"}, got.Seats)
}

func (s *RedisRepositoryTestSuite) TestGetPodNotFound() {
	s.mock.ExpectGet("pod:missing").RedisNil()

	_, err := s.repo.GetPod(s.ctx, "missing")
	s.Require().Error(err)
	s.True(apperr.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestGetPodByShareID() {
	pod := entities.NewDraftPod("pod-1", "abc123", "host-1", "SPK")

	s.mock.ExpectGet("podshare:abc123").SetVal("pod-1")
	s.mock.ExpectGet("pod:pod-1").SetVal(string(s.marshal(pod)))

	got, err := s.repo.GetPodByShareID(s.ctx, "abc123")
	s.Require().NoError(err)
	s.Equal("pod-1", got.ID)
}

func (s *RedisRepositoryTestSuite) TestSavePod() {
	current := entities.NewDraftPod("pod-1", "abc123", "host-1", "SPK")
	updated := *current
	updated.Bump()

	s.mock.ExpectWatch("pod:pod-1")
	s.mock.ExpectGet("pod:pod-1").SetVal(string(s.marshal(current)))
	s.mock.ExpectTxPipeline()
	s.mock.ExpectSet("pod:pod-1", s.marshal(&updated), testPodTTL).SetVal("OK")
	s.mock.ExpectTxPipelineExec()

	s.NoError(s.repo.SavePod(s.ctx, &updated, 0))
}

func (s *RedisRepositoryTestSuite) TestSavePodVersionConflict() {
	current := entities.NewDraftPod("pod-1", "abc123", "host-1", "SPK")
	current.StateVersion = 5
	updated := *current
	updated.Bump()

	s.mock.ExpectWatch("pod:pod-1")
	s.mock.ExpectGet("pod:pod-1").SetVal(string(s.marshal(current)))

	// A writer still holding version 3 must lose
	err := s.repo.SavePod(s.ctx, &updated, 3)
	s.Require().Error(err)
	s.True(apperr.IsConflict(err))
}

func (s *RedisRepositoryTestSuite) TestDeletePod() {
	pod := entities.NewDraftPod("pod-1", "abc123", "host-1", "SPK")

	s.mock.ExpectGet("pod:pod-1").SetVal(string(s.marshal(pod)))
	s.mock.ExpectTxPipeline()
	s.mock.ExpectDel("pod:pod-1").SetVal(1)
	s.mock.ExpectDel("pod:pod-1:players").SetVal(1)
	s.mock.ExpectDel("pod:pod-1:resolution-lock").SetVal(0)
	s.mock.ExpectDel("podshare:abc123").SetVal(1)
	s.mock.ExpectTxPipelineExec()

	s.NoError(s.repo.DeletePod(s.ctx, "pod-1"))
}

func (s *RedisRepositoryTestSuite) TestGetPlayersSortedBySeat() {
	p0 := entities.NewDraftPodPlayer("pod-1", "user-a", 0)
	p1 := entities.NewDraftPodPlayer("pod-1", "user-b", 1)

	s.mock.ExpectHGetAll("pod:pod-1:players").SetVal(map[string]string{
		"1": string(s.marshal(p1)),
		"0": string(s.marshal(p0)),
	})

	players, err := s.repo.GetPlayers(s.ctx, "pod-1")
	s.Require().NoError(err)
	s.Require().Len(players, 2)
	s.Equal("user-a", players[0].UserID)
	s.Equal("user-b", players[1].UserID)
}

func (s *RedisRepositoryTestSuite) TestSavePlayer() {
	player := entities.NewDraftPodPlayer("pod-1", "user-a", 2)

	s.mock.ExpectHSet("pod:pod-1:players", "2", s.marshal(player)).SetVal(1)

	s.NoError(s.repo.SavePlayer(s.ctx, player))
}

func (s *RedisRepositoryTestSuite) TestSavePodWithPlayers() {
	current := entities.NewDraftPod("pod-1", "abc123", "host-1", "SPK")
	updated := *current
	updated.Seats = append(updated.Seats, "user-b")
	updated.Bump()
	joined := entities.NewDraftPodPlayer("pod-1", "user-b", 1)

	// Pod write and player writes commit in the same transaction
	s.mock.ExpectWatch("pod:pod-1", "pod:pod-1:players")
	s.mock.ExpectGet("pod:pod-1").SetVal(string(s.marshal(current)))
	s.mock.ExpectTxPipeline()
	s.mock.ExpectSet("pod:pod-1", s.marshal(&updated), testPodTTL).SetVal("OK")
	s.mock.ExpectHSet("pod:pod-1:players", "1", s.marshal(joined)).SetVal(1)
	s.mock.ExpectTxPipelineExec()

	s.NoError(s.repo.SavePodWithPlayers(s.ctx, &updated,
		[]*entities.DraftPodPlayer{joined}, nil, 0))
}

func (s *RedisRepositoryTestSuite) TestSavePodWithPlayersVersionConflict() {
	current := entities.NewDraftPod("pod-1", "abc123", "host-1", "SPK")
	current.StateVersion = 5
	updated := *current
	updated.Bump()
	joined := entities.NewDraftPodPlayer("pod-1", "user-b", 1)

	s.mock.ExpectWatch("pod:pod-1", "pod:pod-1:players")
	s.mock.ExpectGet("pod:pod-1").SetVal(string(s.marshal(current)))

	// No pipeline issued: the stale writer leaves both keys untouched
	err := s.repo.SavePodWithPlayers(s.ctx, &updated,
		[]*entities.DraftPodPlayer{joined}, nil, 3)
	s.Require().Error(err)
	s.True(apperr.IsConflict(err))
}

func (s *RedisRepositoryTestSuite) TestSavePodWithPlayersRemovesSeat() {
	current := entities.NewDraftPod("pod-1", "abc123", "host-1", "SPK")
	updated := *current
	updated.Bump()

	s.mock.ExpectWatch("pod:pod-1", "pod:pod-1:players")
	s.mock.ExpectGet("pod:pod-1").SetVal(string(s.marshal(current)))
	s.mock.ExpectTxPipeline()
	s.mock.ExpectSet("pod:pod-1", s.marshal(&updated), testPodTTL).SetVal("OK")
	s.mock.ExpectHDel("pod:pod-1:players", "2").SetVal(1)
	s.mock.ExpectTxPipelineExec()

	s.NoError(s.repo.SavePodWithPlayers(s.ctx, &updated, nil, []int{2}, 0))
}

func (s *RedisRepositoryTestSuite) TestStageSelection() {
	stored := entities.NewDraftPodPlayer("pod-1", "user-a", 0)
	stored.PickStatus = entities.PickStatusPicking
	staged := *stored
	staged.SelectedCardID = "card-9"
	staged.PickStatus = entities.PickStatusSelected

	// Read-modify-write of the one row, rest of it preserved as stored
	s.mock.ExpectWatch("pod:pod-1:players")
	s.mock.ExpectHGet("pod:pod-1:players", "0").SetVal(string(s.marshal(stored)))
	s.mock.ExpectTxPipeline()
	s.mock.ExpectHSet("pod:pod-1:players", "0", s.marshal(&staged)).SetVal(0)
	s.mock.ExpectTxPipelineExec()

	s.NoError(s.repo.StageSelection(s.ctx, "pod-1", 0, "card-9", entities.PickStatusSelected))
}

func (s *RedisRepositoryTestSuite) TestStageSelectionMissingSeat() {
	s.mock.ExpectWatch("pod:pod-1:players")
	s.mock.ExpectHGet("pod:pod-1:players", "4").RedisNil()

	err := s.repo.StageSelection(s.ctx, "pod-1", 4, "card-9", entities.PickStatusSelected)
	s.Require().Error(err)
	s.True(apperr.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestDeletePlayer() {
	s.mock.ExpectHDel("pod:pod-1:players", "3").SetVal(1)

	s.NoError(s.repo.DeletePlayer(s.ctx, "pod-1", 3))
}

func (s *RedisRepositoryTestSuite) TestAcquireResolutionLock() {
	s.mock.ExpectSetNX("pod:pod-1:resolution-lock", "token-a", 2*time.Second).SetVal(true)

	ok, err := s.repo.AcquireResolutionLock(s.ctx, "pod-1", "token-a", 2*time.Second)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *RedisRepositoryTestSuite) TestAcquireResolutionLockHeld() {
	s.mock.ExpectSetNX("pod:pod-1:resolution-lock", "token-b", 2*time.Second).SetVal(false)

	ok, err := s.repo.AcquireResolutionLock(s.ctx, "pod-1", "token-b", 2*time.Second)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *RedisRepositoryTestSuite) TestReleaseResolutionLockOwner() {
	s.mock.ExpectGet("pod:pod-1:resolution-lock").SetVal("token-a")
	s.mock.ExpectDel("pod:pod-1:resolution-lock").SetVal(1)

	s.NoError(s.repo.ReleaseResolutionLock(s.ctx, "pod-1", "token-a"))
}

func (s *RedisRepositoryTestSuite) TestReleaseResolutionLockNonOwner() {
	s.mock.ExpectGet("pod:pod-1:resolution-lock").SetVal("token-a")

	s.NoError(s.repo.ReleaseResolutionLock(s.ctx, "pod-1", "token-b"))
}

func (s *RedisRepositoryTestSuite) TestReleaseResolutionLockExpired() {
	s.mock.ExpectGet("pod:pod-1:resolution-lock").RedisNil()

	s.NoError(s.repo.ReleaseResolutionLock(s.ctx, "pod-1", "token-a"))
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

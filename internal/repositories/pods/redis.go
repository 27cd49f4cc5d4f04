package pods

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/galaxydraft/draft-server/internal/entities"
	apperr "github.com/galaxydraft/draft-server/internal/errors"
)

const (
	podKeyPrefix   = "pod:"
	shareKeyPrefix = "podshare:"

	// TTL keeps abandoned pods from accumulating (2 days)
	defaultPodTTL = 48 * time.Hour
)

func podKey(id string) string {
	return podKeyPrefix + id
}

func shareKey(shareID string) string {
	return shareKeyPrefix + shareID
}

func playersKey(podID string) string {
	return fmt.Sprintf("pod:%s:players", podID)
}

func lockKey(podID string) string {
	return fmt.Sprintf("pod:%s:resolution-lock", podID)
}

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient
	PodTTL time.Duration
}

// redisRepository implements Repository using Redis
type redisRepository struct {
	client redis.UniversalClient
	podTTL time.Duration
}

// NewRedisRepository creates a new Redis-backed pod repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg.Client == nil {
		panic("redis client is required")
	}

	ttl := cfg.PodTTL
	if ttl == 0 {
		ttl = defaultPodTTL
	}

	return &redisRepository{
		client: cfg.Client,
		podTTL: ttl,
	}
}

// CreatePod stores a new pod
func (r *redisRepository) CreatePod(ctx context.Context, pod *entities.DraftPod) error {
	if pod == nil {
		return apperr.InvalidArgument("pod cannot be nil")
	}
	if pod.ID == "" {
		return apperr.InvalidArgument("pod ID cannot be empty")
	}

	data, err := json.Marshal(pod)
	if err != nil {
		return apperr.Wrap(err, "failed to serialize pod")
	}

	ok, err := r.client.SetNX(ctx, podKey(pod.ID), data, r.podTTL).Result()
	if err != nil {
		return apperr.Wrap(err, "failed to create pod")
	}
	if !ok {
		return apperr.AlreadyExists(fmt.Sprintf("pod %s already exists", pod.ID))
	}

	if pod.ShareID != "" {
		if err := r.client.Set(ctx, shareKey(pod.ShareID), pod.ID, r.podTTL).Err(); err != nil {
			return apperr.Wrap(err, "failed to index share ID")
		}
	}

	return nil
}

// GetPod retrieves a pod by ID
func (r *redisRepository) GetPod(ctx context.Context, id string) (*entities.DraftPod, error) {
	data, err := r.client.Get(ctx, podKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperr.NotFoundf("pod not found: %s", id)
		}
		return nil, apperr.Wrap(err, "failed to get pod")
	}

	var pod entities.DraftPod
	if err := json.Unmarshal(data, &pod); err != nil {
		return nil, apperr.Wrap(err, "failed to deserialize pod")
	}

	return &pod, nil
}

// GetPodByShareID retrieves a pod by its share ID
func (r *redisRepository) GetPodByShareID(ctx context.Context, shareID string) (*entities.DraftPod, error) {
	podID, err := r.client.Get(ctx, shareKey(shareID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, apperr.NotFoundf("no pod with share ID: %s", shareID)
		}
		return nil, apperr.Wrap(err, "failed to resolve share ID")
	}

	return r.GetPod(ctx, podID)
}

// checkVersion reads and version-checks the pod inside a WATCH callback
func checkVersion(ctx context.Context, tx *redis.Tx, podID string, expectedVersion int64) error {
	data, err := tx.Get(ctx, podKey(podID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return apperr.NotFoundf("pod not found: %s", podID)
		}
		return apperr.Wrap(err, "failed to read pod for save")
	}

	var current entities.DraftPod
	if err := json.Unmarshal(data, &current); err != nil {
		return apperr.Wrap(err, "failed to deserialize pod")
	}

	if current.StateVersion != expectedVersion {
		return apperr.Conflictf("pod %s at version %d, expected %d",
			podID, current.StateVersion, expectedVersion)
	}
	return nil
}

// SavePod writes the pod under optimistic concurrency control: the write
// goes through only if the stored version still equals expectedVersion.
func (r *redisRepository) SavePod(ctx context.Context, pod *entities.DraftPod, expectedVersion int64) error {
	if pod == nil {
		return apperr.InvalidArgument("pod cannot be nil")
	}

	key := podKey(pod.ID)

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		if err := checkVersion(ctx, tx, pod.ID, expectedVersion); err != nil {
			return err
		}

		payload, err := json.Marshal(pod)
		if err != nil {
			return apperr.Wrap(err, "failed to serialize pod")
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.podTTL)
			return nil
		})
		return err
	}, key)

	if err == redis.TxFailedErr {
		return apperr.Conflictf("pod %s was modified concurrently", pod.ID)
	}
	return err
}

// SavePodWithPlayers commits the pod and its player row changes in one
// transaction so a pick resolution or seat change is all-or-nothing. Both
// the pod key and the players hash are watched: a staging write landing
// mid-commit aborts the transaction and surfaces as a Conflict.
func (r *redisRepository) SavePodWithPlayers(ctx context.Context, pod *entities.DraftPod, upserts []*entities.DraftPodPlayer, removeSeats []int, expectedVersion int64) error {
	if pod == nil {
		return apperr.InvalidArgument("pod cannot be nil")
	}

	payload, err := json.Marshal(pod)
	if err != nil {
		return apperr.Wrap(err, "failed to serialize pod")
	}
	fields := make([]interface{}, 0, len(upserts)*2)
	for _, p := range upserts {
		data, err := json.Marshal(p)
		if err != nil {
			return apperr.Wrap(err, "failed to serialize player")
		}
		fields = append(fields, fmt.Sprintf("%d", p.Seat), data)
	}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		if err := checkVersion(ctx, tx, pod.ID, expectedVersion); err != nil {
			return err
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, podKey(pod.ID), payload, r.podTTL)
			if len(fields) > 0 {
				pipe.HSet(ctx, playersKey(pod.ID), fields...)
			}
			for _, seat := range removeSeats {
				pipe.HDel(ctx, playersKey(pod.ID), fmt.Sprintf("%d", seat))
			}
			return nil
		})
		return err
	}, podKey(pod.ID), playersKey(pod.ID))

	if err == redis.TxFailedErr {
		return apperr.Conflictf("pod %s was modified concurrently", pod.ID)
	}
	return err
}

// DeletePod removes the pod, its players, and its indexes
func (r *redisRepository) DeletePod(ctx context.Context, id string) error {
	pod, err := r.GetPod(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, podKey(id))
	pipe.Del(ctx, playersKey(id))
	pipe.Del(ctx, lockKey(id))
	if pod.ShareID != "" {
		pipe.Del(ctx, shareKey(pod.ShareID))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Wrap(err, "failed to delete pod")
	}

	return nil
}

// GetPlayers returns the pod's players ordered by seat
func (r *redisRepository) GetPlayers(ctx context.Context, podID string) ([]*entities.DraftPodPlayer, error) {
	rows, err := r.client.HGetAll(ctx, playersKey(podID)).Result()
	if err != nil {
		return nil, apperr.Wrap(err, "failed to get players")
	}

	players := make([]*entities.DraftPodPlayer, 0, len(rows))
	for _, raw := range rows {
		var p entities.DraftPodPlayer
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, apperr.Wrap(err, "failed to deserialize player")
		}
		players = append(players, &p)
	}

	sort.Slice(players, func(i, j int) bool {
		return players[i].Seat < players[j].Seat
	})

	return players, nil
}

// GetPlayer returns one player by user ID
func (r *redisRepository) GetPlayer(ctx context.Context, podID, userID string) (*entities.DraftPodPlayer, error) {
	players, err := r.GetPlayers(ctx, podID)
	if err != nil {
		return nil, err
	}
	for _, p := range players {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, apperr.NotFoundf("player %s not in pod %s", userID, podID)
}

// SavePlayer upserts one player row keyed by seat
func (r *redisRepository) SavePlayer(ctx context.Context, player *entities.DraftPodPlayer) error {
	if player == nil {
		return apperr.InvalidArgument("player cannot be nil")
	}

	data, err := json.Marshal(player)
	if err != nil {
		return apperr.Wrap(err, "failed to serialize player")
	}

	field := fmt.Sprintf("%d", player.Seat)
	if err := r.client.HSet(ctx, playersKey(player.PodID), field, data).Err(); err != nil {
		return apperr.Wrap(err, "failed to save player")
	}

	return nil
}

// StageSelection updates only the staged-choice fields on the stored row.
// The read-modify-write runs under WATCH of the players hash, so a racing
// resolution commit aborts it with a Conflict instead of letting this
// write resurrect the row's pre-resolution pool or pack.
func (r *redisRepository) StageSelection(ctx context.Context, podID string, seat int, cardID string, status entities.PickStatus) error {
	key := playersKey(podID)
	field := fmt.Sprintf("%d", seat)

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, key, field).Result()
		if err != nil {
			if err == redis.Nil {
				return apperr.NotFoundf("no player at seat %d in pod %s", seat, podID)
			}
			return apperr.Wrap(err, "failed to read player for staging")
		}

		var p entities.DraftPodPlayer
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return apperr.Wrap(err, "failed to deserialize player")
		}

		p.SelectedCardID = cardID
		p.PickStatus = status

		data, err := json.Marshal(&p)
		if err != nil {
			return apperr.Wrap(err, "failed to serialize player")
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, field, data)
			return nil
		})
		return err
	}, key)

	if err == redis.TxFailedErr {
		return apperr.Conflictf("player at seat %d in pod %s was modified concurrently", seat, podID)
	}
	return err
}

// DeletePlayer removes the player row at the given seat
func (r *redisRepository) DeletePlayer(ctx context.Context, podID string, seat int) error {
	if err := r.client.HDel(ctx, playersKey(podID), fmt.Sprintf("%d", seat)).Err(); err != nil {
		return apperr.Wrap(err, "failed to delete player")
	}
	return nil
}

// AcquireResolutionLock takes the lock with SET NX PX semantics
func (r *redisRepository) AcquireResolutionLock(ctx context.Context, podID, token string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, lockKey(podID), token, ttl).Result()
	if err != nil {
		return false, apperr.Wrap(err, "failed to acquire resolution lock")
	}
	return ok, nil
}

// ReleaseResolutionLock deletes the lock only if the token still owns it.
// A non-owner release is a no-op; an expired lock simply reads as absent.
func (r *redisRepository) ReleaseResolutionLock(ctx context.Context, podID, token string) error {
	owner, err := r.client.Get(ctx, lockKey(podID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		return apperr.Wrap(err, "failed to read resolution lock")
	}
	if owner != token {
		return nil
	}

	if err := r.client.Del(ctx, lockKey(podID)).Err(); err != nil {
		return apperr.Wrap(err, "failed to release resolution lock")
	}
	return nil
}

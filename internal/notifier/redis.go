package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	apperr "github.com/galaxydraft/draft-server/internal/errors"
)

// ChannelPrefix prefixes the per-pod pub/sub channel names; subscribers
// match "pod-events:*" and strip the prefix to recover the pod ID
const ChannelPrefix = "pod-events:"

// Event is the payload published for every pod state change
type Event struct {
	PodID   string `json:"pod_id"`
	Version int64  `json:"version"`
}

// redisNotifier broadcasts pod changes over Redis pub/sub
type redisNotifier struct {
	client redis.UniversalClient
}

// NewRedisNotifier creates a Notifier over Redis pub/sub
func NewRedisNotifier(client redis.UniversalClient) Notifier {
	if client == nil {
		panic("redis client is required")
	}
	return &redisNotifier{client: client}
}

// Broadcast implements Notifier
func (n *redisNotifier) Broadcast(ctx context.Context, podID string, version int64) error {
	payload, err := json.Marshal(Event{PodID: podID, Version: version})
	if err != nil {
		return apperr.Wrap(err, "failed to serialize pod event")
	}

	channel := fmt.Sprintf("%s%s", ChannelPrefix, podID)
	if err := n.client.Publish(ctx, channel, payload).Err(); err != nil {
		return apperr.Wrap(err, "failed to publish pod event")
	}
	return nil
}

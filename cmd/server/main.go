package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/galaxydraft/draft-server/internal/catalog"
	"github.com/galaxydraft/draft-server/internal/config"
	"github.com/galaxydraft/draft-server/internal/entities"
	"github.com/galaxydraft/draft-server/internal/notifier"
	"github.com/galaxydraft/draft-server/internal/repositories/pods"
	"github.com/galaxydraft/draft-server/internal/services/draft"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, err)
	}
	log.Printf("Connected to Redis at %s", cfg.Redis.Addr)

	repo := pods.NewRedisRepository(&pods.RedisRepoConfig{
		Client: redisClient,
	})

	provider := catalog.NewDemoProvider()

	svc := draft.NewService(&draft.ServiceConfig{
		Repository: repo,
		Catalog:    provider,
		Notifier:   notifier.NewRedisNotifier(redisClient),
		DefaultSettings: &entities.PodSettings{
			MaxSeats:      cfg.Draft.MaxSeats,
			PickTimeout:   cfg.Draft.PickTimeout,
			PassDirection: entities.PassDirection(cfg.Draft.PassDirection),
			BotBehavior:   cfg.Draft.BotBehavior,
		},
	})

	log.Printf("Draft service ready (pick timeout %s, max seats %d, pass %s, default sets: %v)",
		cfg.Draft.PickTimeout, cfg.Draft.MaxSeats, cfg.Draft.PassDirection, setCodes(catalog.BuiltinSets()))

	keeperCtx, stopKeeper := context.WithCancel(context.Background())
	defer stopKeeper()
	go newKeeper(svc).run(keeperCtx, redisClient)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down")
	stopKeeper()
	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}
}

// keeper drives timeouts and bot turns for pods whose clients are not
// polling. A pub/sub event marks a pod live; the keeper polls each live
// pod on a fixed cadence until it completes or goes quiet.
type keeper struct {
	svc draft.Service

	mu   sync.Mutex
	live map[string]time.Time // podID -> last event seen
}

const (
	keeperSweepInterval = 5 * time.Second
	keeperIdleCutoff    = time.Hour
)

func newKeeper(svc draft.Service) *keeper {
	return &keeper{svc: svc, live: make(map[string]time.Time)}
}

func (k *keeper) run(ctx context.Context, client redis.UniversalClient) {
	pubsub := client.PSubscribe(ctx, notifier.ChannelPrefix+"*")
	defer pubsub.Close()

	ticker := time.NewTicker(keeperSweepInterval)
	defer ticker.Stop()

	events := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			k.mark(strings.TrimPrefix(msg.Channel, notifier.ChannelPrefix))
		case <-ticker.C:
			k.sweep(ctx)
		}
	}
}

func (k *keeper) mark(podID string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.live[podID] = time.Now()
}

func (k *keeper) drop(podID string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.live, podID)
}

// sweep polls every live pod once; Poll enforces pick timeouts and moves
// bot seats along as a side effect
func (k *keeper) sweep(ctx context.Context) {
	k.mu.Lock()
	ids := make([]string, 0, len(k.live))
	for id, seen := range k.live {
		if time.Since(seen) > keeperIdleCutoff {
			delete(k.live, id)
			continue
		}
		ids = append(ids, id)
	}
	k.mu.Unlock()

	for _, id := range ids {
		out, err := k.svc.Poll(ctx, &draft.PollInput{PodID: id})
		if err != nil {
			k.drop(id)
			continue
		}
		if out.Pod.Status == entities.PodStatusComplete {
			k.drop(id)
		}
	}
}

func setCodes(sets map[string]*entities.SetConfig) []string {
	codes := make([]string, 0, len(sets))
	for code := range sets {
		codes = append(codes, code)
	}
	return codes
}

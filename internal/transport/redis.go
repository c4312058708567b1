// Package transport moves occupancy snapshots into the planner and planned
// paths out of it.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pdrpinto/gridplanner/internal/msgs"
)

// ErrNoLatchedPath is returned by Latest when no path has been latched.
var ErrNoLatchedPath = errors.New("no latched path")

// RedisSubscriber receives JSON occupancy grids from a pub/sub channel.
type RedisSubscriber struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisSubscriber creates a subscriber on channel.
func NewRedisSubscriber(client *redis.Client, channel string, logger *zap.Logger) *RedisSubscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSubscriber{client: client, channel: channel, logger: logger}
}

// Subscribe starts receiving. The returned channel closes when ctx is done or
// the subscription ends. Malformed payloads are logged and dropped.
func (s *RedisSubscriber) Subscribe(ctx context.Context) (<-chan msgs.OccupancyGrid, error) {
	pubsub := s.client.Subscribe(ctx, s.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", s.channel, err)
	}
	s.logger.Info("Subscribed", zap.String("channel", s.channel))

	out := make(chan msgs.OccupancyGrid)
	go func() {
		defer close(out)
		defer pubsub.Close()
		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case message, ok := <-messages:
				if !ok {
					return
				}
				grid, err := msgs.DecodeOccupancyGrid([]byte(message.Payload))
				if err != nil {
					s.logger.Warn("Dropping malformed snapshot", zap.String("channel", message.Channel), zap.Error(err))
					continue
				}
				select {
				case out <- grid:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// redisWriter is the subset of *redis.Client used for publishing.
type redisWriter interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisPublisher publishes paths as JSON on a channel. With a latch key set,
// the last path is also stored under that key so late consumers can fetch it.
type RedisPublisher struct {
	client   redisWriter
	channel  string
	latchKey string
	latchTTL time.Duration
}

// NewRedisPublisher creates a publisher. An empty latchKey disables latching.
func NewRedisPublisher(client *redis.Client, channel string, latchKey string, latchTTL time.Duration) *RedisPublisher {
	return newRedisPublisher(client, channel, latchKey, latchTTL)
}

func newRedisPublisher(client redisWriter, channel string, latchKey string, latchTTL time.Duration) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel, latchKey: latchKey, latchTTL: latchTTL}
}

func (p *RedisPublisher) Publish(ctx context.Context, path msgs.Path) error {
	payload, err := json.Marshal(path)
	if err != nil {
		return fmt.Errorf("encode path: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", p.channel, err)
	}
	if p.latchKey == "" {
		return nil
	}
	if err := p.client.Set(ctx, p.latchKey, payload, p.latchTTL).Err(); err != nil {
		return fmt.Errorf("latch %s: %w", p.latchKey, err)
	}
	return nil
}

// Latest returns the latched path.
func (p *RedisPublisher) Latest(ctx context.Context) (msgs.Path, error) {
	if p.latchKey == "" {
		return msgs.Path{}, ErrNoLatchedPath
	}
	payload, err := p.client.Get(ctx, p.latchKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return msgs.Path{}, ErrNoLatchedPath
	}
	if err != nil {
		return msgs.Path{}, fmt.Errorf("read latch %s: %w", p.latchKey, err)
	}
	var path msgs.Path
	if err := json.Unmarshal(payload, &path); err != nil {
		return msgs.Path{}, fmt.Errorf("decode latched path: %w", err)
	}
	return path, nil
}

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultStream is the Redis stream notifications are appended to.
const DefaultStream = "sla_notifications"

// RedisStreamSink appends notifications to a Redis stream. Delivery workers
// (email, SMS, push) consume the stream out of process.
type RedisStreamSink struct {
	client *redis.Client
	stream string
	maxLen int64
}

// ConnectRedis creates a Redis client from a URL.
func ConnectRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

func NewRedisStreamSink(client *redis.Client, stream string) *RedisStreamSink {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisStreamSink{client: client, stream: stream, maxLen: 100_000}
}

func (s *RedisStreamSink) Send(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]any{
			"id":           n.ID,
			"kind":         string(n.Kind),
			"work_item_id": n.WorkItemID,
			"rule_id":      n.RuleID,
			"severity":     n.Severity,
			"recipients":   strings.Join(n.Recipients, ","),
			"created_at":   n.CreatedAt.UTC().Format(time.RFC3339),
			"payload":      string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("push notification: %w", err)
	}
	return nil
}

// Ping checks connectivity so startup can fall back to the log sink.
func (s *RedisStreamSink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

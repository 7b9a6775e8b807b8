// Package queue runs membership follow-up actions through Redis lists.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/siteforge/siteforge/internal/shared/logger"
)

const DefaultPrefix = "siteforge:queue"

// Task is the envelope stored in a queue list.
type Task struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// RedisQueue is the producer side: one list per action, filled with LPUSH.
type RedisQueue struct {
	client *redis.Client
	prefix string
	logger logger.Interface
}

func NewRedisQueue(client *redis.Client, prefix string, logger logger.Interface) *RedisQueue {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisQueue{
		client: client,
		prefix: strings.TrimSuffix(prefix, ":"),
		logger: logger,
	}
}

// Key returns the list holding tasks for action.
func (q *RedisQueue) Key(action string) string {
	return q.prefix + ":" + action
}

// Enqueue pushes one task for action.
func (q *RedisQueue) Enqueue(ctx context.Context, action string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", action, err)
	}
	body, err := json.Marshal(Task{Action: action, Payload: raw})
	if err != nil {
		return fmt.Errorf("failed to encode %s task: %w", action, err)
	}

	if err := q.client.LPush(ctx, q.Key(action), body).Err(); err != nil {
		q.logger.Errorw("failed to enqueue task",
			"action", action,
			"error", err,
		)
		return fmt.Errorf("failed to enqueue %s: %w", action, err)
	}

	q.logger.Debugw("task enqueued", "action", action)
	return nil
}

// Len reports how many tasks are waiting for action.
func (q *RedisQueue) Len(ctx context.Context, action string) (int64, error) {
	return q.client.LLen(ctx, q.Key(action)).Result()
}

package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"

	"github.com/siteforge/siteforge/internal/shared/goroutine"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

// HandlerFunc processes the raw payload of one task.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

// Handle adapts a typed action handler. The bool result of the membership
// actions is logged only.
func Handle[T any](fn func(ctx context.Context, task T) (bool, error)) HandlerFunc {
	return func(ctx context.Context, payload json.RawMessage) error {
		var task T
		if err := json.Unmarshal(payload, &task); err != nil {
			return &decodeError{err: err}
		}
		_, err := fn(ctx, task)
		return err
	}
}

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "invalid task payload: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// Consumer pops tasks with BRPOP and runs the registered handler.
type Consumer struct {
	queue       *RedisQueue
	handlers    map[string]HandlerFunc
	pollTimeout time.Duration
	newBackOff  func() backoff.BackOff
	logger      logger.Interface
}

func NewConsumer(queue *RedisQueue, pollTimeout time.Duration, logger logger.Interface) *Consumer {
	if pollTimeout <= 0 {
		pollTimeout = 5 * time.Second
	}
	return &Consumer{
		queue:       queue,
		handlers:    make(map[string]HandlerFunc),
		pollTimeout: pollTimeout,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxInterval = 30 * time.Second
			return b
		},
		logger: logger,
	}
}

// Register binds handler to action. It must be called before Run.
func (c *Consumer) Register(action string, handler HandlerFunc) {
	c.handlers[action] = handler
}

// Run consumes until ctx is cancelled. Redis errors back off and retry.
func (c *Consumer) Run(ctx context.Context) error {
	if len(c.handlers) == 0 {
		return fmt.Errorf("queue consumer has no handlers")
	}

	keys := make([]string, 0, len(c.handlers))
	actions := make(map[string]string, len(c.handlers))
	for action := range c.handlers {
		key := c.queue.Key(action)
		keys = append(keys, key)
		actions[key] = action
	}

	c.logger.Infow("queue consumer started", "queues", strings.Join(keys, ","))
	bo := c.newBackOff()

	for {
		if ctx.Err() != nil {
			c.logger.Infow("queue consumer stopped", "reason", ctx.Err())
			return nil
		}

		res, err := c.queue.client.BRPop(ctx, c.pollTimeout, keys...).Result()
		switch {
		case errors.Is(err, redis.Nil):
			bo.Reset()
			continue
		case err != nil:
			if ctx.Err() != nil {
				continue
			}
			wait := bo.NextBackOff()
			if wait == backoff.Stop {
				wait = 30 * time.Second
			}
			c.logger.Warnw("queue pop failed, retrying",
				"error", err,
				"backoff", wait,
			)
			select {
			case <-ctx.Done():
			case <-time.After(wait):
			}
			continue
		}

		bo.Reset()
		c.process(ctx, actions[res[0]], res[1])
	}
}

// Start runs the consumer in a goroutine guarded against panics.
func (c *Consumer) Start(ctx context.Context) {
	goroutine.SafeGo(c.logger, "queue-consumer", func() {
		_ = c.Run(ctx)
	})
}

func (c *Consumer) process(ctx context.Context, action, body string) {
	defer goroutine.Recover(c.logger, "queue-task:"+action)

	var task Task
	if err := json.Unmarshal([]byte(body), &task); err != nil {
		c.logger.Warnw("dropping undecodable task", "action", action, "error", err)
		return
	}

	handler, ok := c.handlers[task.Action]
	if !ok {
		c.logger.Warnw("dropping task without handler", "action", task.Action)
		return
	}

	if err := handler(ctx, task.Payload); err != nil {
		var de *decodeError
		if errors.As(err, &de) {
			c.logger.Warnw("dropping undecodable task", "action", task.Action, "error", err)
			return
		}
		c.logger.Errorw("queue task failed",
			"action", task.Action,
			"error", err,
		)
		return
	}

	c.logger.Debugw("queue task processed", "action", task.Action)
}

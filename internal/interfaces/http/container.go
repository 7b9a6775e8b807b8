package http

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	membershipUsecases "github.com/siteforge/siteforge/internal/application/membership/usecases"
	"github.com/siteforge/siteforge/internal/domain/shared/events"
	"github.com/siteforge/siteforge/internal/infrastructure/config"
	"github.com/siteforge/siteforge/internal/infrastructure/queue"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

// Container holds all infrastructure components, repositories, use cases and
// handlers. The HTTP server and the background worker share it.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	repos *repositories
	svcs  *services
	ucs   *allUseCases
	hdlrs *allHandlers
}

// NewContainer creates a new Container with all dependencies wired together.
// It connects to Redis with the configured address.
func NewContainer(db *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	return NewContainerWithRedis(db, initRedis(cfg, log), cfg, log)
}

// NewContainerWithRedis wires the container around an existing Redis client.
func NewContainerWithRedis(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
		redis:  redisClient,
	}

	// Section 1: Repositories and shared services
	c.repos = newRepositories(db, log)
	if err := c.initServices(); err != nil {
		return nil, err
	}

	// Section 2: Use cases and the event subscriptions they rely on
	c.initUseCases()
	if err := c.subscribeNotifications(); err != nil {
		return nil, err
	}

	// Section 3: HTTP handlers
	c.initHandlers()

	if err := c.svcs.dispatcher.Start(); err != nil {
		return nil, fmt.Errorf("failed to start event dispatcher: %w", err)
	}
	log.Infow("event dispatcher started")

	return c, nil
}

// EventPublisher returns the in-process event bus.
func (c *Container) EventPublisher() events.EventPublisher {
	return c.svcs.dispatcher
}

// Queue returns the Redis action queue.
func (c *Container) Queue() *queue.RedisQueue {
	return c.svcs.queue
}

// CheckMemberships returns the sweep that enqueues renewals and expirations.
func (c *Container) CheckMemberships() *membershipUsecases.CheckMembershipsUseCase {
	return c.ucs.checkMemberships
}

// CreateRenewalPayment returns the handler for queued renewal actions.
func (c *Container) CreateRenewalPayment() *membershipUsecases.CreateRenewalPaymentUseCase {
	return c.ucs.createRenewal
}

// MarkMembershipExpired returns the handler for queued expiration actions.
func (c *Container) MarkMembershipExpired() *membershipUsecases.MarkMembershipExpiredUseCase {
	return c.ucs.markExpired
}

// Config returns the loaded configuration.
func (c *Container) Config() *config.Config {
	return c.cfg
}

// Shutdown stops the event dispatcher and closes the Redis client.
func (c *Container) Shutdown() {
	if c.svcs != nil && c.svcs.dispatcher != nil {
		if err := c.svcs.dispatcher.Stop(); err != nil {
			c.log.Errorw("failed to stop event dispatcher", "error", err)
		}
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Errorw("failed to close Redis client", "error", err)
		}
	}
}

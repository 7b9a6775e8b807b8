package http

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/siteforge/siteforge/internal/application/checkout"
	"github.com/siteforge/siteforge/internal/application/payment/paymentgateway"
	settingUsecases "github.com/siteforge/siteforge/internal/application/setting/usecases"
	"github.com/siteforge/siteforge/internal/domain/shared/events"
	"github.com/siteforge/siteforge/internal/infrastructure/auth"
	"github.com/siteforge/siteforge/internal/infrastructure/cache"
	"github.com/siteforge/siteforge/internal/infrastructure/config"
	"github.com/siteforge/siteforge/internal/infrastructure/email"
	infraPayment "github.com/siteforge/siteforge/internal/infrastructure/payment"
	"github.com/siteforge/siteforge/internal/infrastructure/queue"
	"github.com/siteforge/siteforge/internal/infrastructure/ratelimit"
	shareddb "github.com/siteforge/siteforge/internal/shared/db"
	"github.com/siteforge/siteforge/internal/shared/logger"
	"github.com/siteforge/siteforge/internal/shared/money"
	"github.com/siteforge/siteforge/internal/shared/services/markdown"
)

const (
	eventBufferSize    = 256
	rateLimitKeyPrefix = "siteforge:ratelimit"
)

// services holds the infrastructure services shared by use cases.
type services struct {
	txMgr      *shareddb.TransactionManager
	dispatcher *events.InMemoryEventDispatcher
	queue      *queue.RedisQueue
	limiter    *ratelimit.RedisRateLimiter
	products   *cache.ProductCache
	carts      *checkout.Builder
	gateways   *paymentgateway.Registry
	webhooks   []paymentgateway.WebhookVerifier
	tokens     *auth.InvoiceTokenService
	hasher     *auth.PasswordHasher
	settings   *settingUsecases.SettingProvider
	renderer   *markdown.Renderer
	formatter  *money.Formatter
	mailer     *email.SMTPSender
}

// initRedis creates and tests the Redis client connection.
func initRedis(cfg *config.Config, log logger.Interface) *redis.Client {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalw("failed to connect to Redis", "error", err)
	}
	log.Infow("Redis connection established successfully", "address", cfg.Redis.GetAddr())

	return redisClient
}

// initServices builds the services every process needs. Redis and the
// repositories must already be set.
func (c *Container) initServices() error {
	cfg := c.cfg
	s := &services{
		txMgr:      shareddb.NewTransactionManager(c.db),
		dispatcher: events.NewInMemoryEventDispatcher(eventBufferSize, c.log),
		queue:      queue.NewRedisQueue(c.redis, cfg.Queue.Prefix, c.log),
		limiter:    ratelimit.NewRedisRateLimiter(c.redis, rateLimitKeyPrefix),
		products:   cache.NewProductCache(c.repos.productRepo, cfg.Billing.ProductCacheSize),
		hasher:     auth.NewPasswordHasher(0),
		renderer:   markdown.NewRenderer(),
		formatter:  money.NewFormatter(cfg.Billing.Locale),
	}

	s.settings = settingUsecases.NewSettingProvider(c.repos.settingRepo, cfg.Billing, c.log)
	s.carts = checkout.NewBuilder(
		s.products,
		c.repos.discountRepo,
		checkout.ConfigTaxRates(cfg.Billing.TaxRates),
		cfg.Billing.Currency,
		c.log,
	)

	tokens, err := auth.NewInvoiceTokenService(cfg.API.InvoiceSecret, cfg.API.InvoiceLinkTTL)
	if err != nil {
		return fmt.Errorf("failed to create invoice token service: %w", err)
	}
	s.tokens = tokens

	if err := s.initGateways(cfg, c.repos, c.log); err != nil {
		return err
	}

	mailer, err := email.NewSMTPSender(cfg.Email, c.log)
	if err != nil {
		c.log.Warnw("billing emails disabled", "error", err)
	} else {
		s.mailer = mailer
	}

	c.svcs = s
	return nil
}

// initGateways registers the manual gateway and, when configured, Stripe.
func (s *services) initGateways(cfg *config.Config, repos *repositories, log logger.Interface) error {
	store := paymentgateway.NewRepositoryStore(repos.paymentRepo, repos.membershipRepo)
	s.gateways = paymentgateway.NewRegistry()

	if cfg.Gateways.Manual.Enabled {
		s.gateways.Register(paymentgateway.NewManualGateway(store, cfg.Gateways.Manual.Instructions, s.renderer, log))
	}

	if cfg.Gateways.Stripe.Enabled {
		stripeGateway, err := infraPayment.NewStripeGateway(cfg.Gateways.Stripe, store, log)
		if err != nil {
			return fmt.Errorf("failed to initialize stripe gateway: %w", err)
		}
		s.gateways.Register(stripeGateway)
		s.webhooks = append(s.webhooks, stripeGateway)
	}

	log.Infow("payment gateways registered", "gateways", s.gateways.IDs())
	return nil
}

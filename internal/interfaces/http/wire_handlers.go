package http

import (
	"context"

	"github.com/siteforge/siteforge/internal/interfaces/http/handlers"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	healthHandler       *handlers.HealthHandler
	registrationHandler *handlers.RegistrationHandler
	paymentHandler      *handlers.PaymentHandler
	webhookHandler      *handlers.WebhookHandler
	membershipHandler   *handlers.MembershipHandler
	noteHandler         *handlers.NoteHandler
	settingHandler      *handlers.SettingHandler
}

func (c *Container) initHandlers() {
	ucs, log := c.ucs, c.log

	c.hdlrs = &allHandlers{
		healthHandler: handlers.NewHealthHandler(map[string]handlers.HealthCheckFunc{
			"database": c.pingDatabase,
			"redis": func(ctx context.Context) error {
				return c.redis.Ping(ctx).Err()
			},
		}, log),
		registrationHandler: handlers.NewRegistrationHandler(ucs.register, ucs.getSettings, log),
		paymentHandler: handlers.NewPaymentHandler(
			ucs.getPayment, ucs.refundPayment, ucs.checkout, ucs.invoiceLink, ucs.viewInvoice, log,
		),
		webhookHandler:    handlers.NewWebhookHandler(ucs.handleWebhook, log),
		membershipHandler: handlers.NewMembershipHandler(ucs.getMembership, ucs.cancelMembership, log),
		noteHandler:       handlers.NewNoteHandler(ucs.addNote, ucs.listNotes, ucs.deleteNotes, log),
		settingHandler:    handlers.NewSettingHandler(ucs.getSettings, ucs.updateSettings, log),
	}
}

func (c *Container) pingDatabase(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

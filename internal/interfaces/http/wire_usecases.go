package http

import (
	"fmt"

	membershipUsecases "github.com/siteforge/siteforge/internal/application/membership/usecases"
	noteUsecases "github.com/siteforge/siteforge/internal/application/note/usecases"
	notificationUsecases "github.com/siteforge/siteforge/internal/application/notification/usecases"
	paymentUsecases "github.com/siteforge/siteforge/internal/application/payment/usecases"
	registrationUsecases "github.com/siteforge/siteforge/internal/application/registration/usecases"
	settingUsecases "github.com/siteforge/siteforge/internal/application/setting/usecases"
	"github.com/siteforge/siteforge/internal/domain/notification"
	"github.com/siteforge/siteforge/internal/domain/site"
)

// allUseCases holds all use case instances used by the application.
type allUseCases struct {
	// Registration
	register *registrationUsecases.RegisterUseCase

	// Payment
	getPayment    *paymentUsecases.GetPaymentUseCase
	refundPayment *paymentUsecases.RefundPaymentUseCase
	checkout      *paymentUsecases.ProcessCheckoutUseCase
	invoiceLink   *paymentUsecases.GetInvoiceLinkUseCase
	viewInvoice   *paymentUsecases.ViewInvoiceUseCase
	handleWebhook *paymentUsecases.HandleWebhookUseCase

	// Membership
	getMembership    *membershipUsecases.GetMembershipUseCase
	cancelMembership *membershipUsecases.CancelMembershipUseCase
	checkMemberships *membershipUsecases.CheckMembershipsUseCase
	createRenewal    *membershipUsecases.CreateRenewalPaymentUseCase
	markExpired      *membershipUsecases.MarkMembershipExpiredUseCase

	// Notes
	addNote     *noteUsecases.AddNoteUseCase
	listNotes   *noteUsecases.ListNotesUseCase
	deleteNotes *noteUsecases.DeleteNotesUseCase

	// Settings
	getSettings    *settingUsecases.GetSettingsUseCase
	updateSettings *settingUsecases.UpdateSettingsUseCase

	// Notifications
	notifyRenewal *notificationUsecases.NotifyRenewalPaymentUseCase
	notifyReceipt *notificationUsecases.NotifyPaymentReceiptUseCase
}

func (c *Container) initUseCases() {
	r, s, cfg, log := c.repos, c.svcs, c.cfg, c.log
	ucs := &allUseCases{}

	ucs.register = registrationUsecases.NewRegisterUseCase(
		s.txMgr, r.customerRepo, r.membershipRepo, r.paymentRepo, r.siteRepo, r.noteRepo,
		s.carts, r.discountRepo, s.settings, s.hasher,
		site.Network{Domain: cfg.Network.Domain, Subdomain: cfg.Network.Subdomain},
		log,
	)

	ucs.getPayment = paymentUsecases.NewGetPaymentUseCase(r.paymentRepo, s.settings, log)
	ucs.refundPayment = paymentUsecases.NewRefundPaymentUseCase(
		s.txMgr, r.paymentRepo, r.membershipRepo, r.customerRepo, r.noteRepo,
		s.gateways, s.settings, s.dispatcher, log,
	)
	ucs.checkout = paymentUsecases.NewProcessCheckoutUseCase(
		s.txMgr, r.paymentRepo, r.membershipRepo, r.customerRepo,
		s.carts, s.gateways, s.settings, log,
	)
	ucs.invoiceLink = paymentUsecases.NewGetInvoiceLinkUseCase(r.paymentRepo, s.tokens, cfg.Server.BaseURL, log)
	ucs.viewInvoice = paymentUsecases.NewViewInvoiceUseCase(r.paymentRepo, r.customerRepo, s.tokens, s.settings, s.formatter, log)
	ucs.handleWebhook = paymentUsecases.NewHandleWebhookUseCase(
		s.txMgr, r.paymentRepo, r.membershipRepo, r.siteRepo,
		s.settings, s.dispatcher, log, s.webhooks...,
	)

	ucs.getMembership = membershipUsecases.NewGetMembershipUseCase(r.membershipRepo, log)
	ucs.cancelMembership = membershipUsecases.NewCancelMembershipUseCase(s.txMgr, r.membershipRepo, r.customerRepo, s.gateways, log)
	ucs.checkMemberships = membershipUsecases.NewCheckMembershipsUseCase(r.membershipRepo, s.queue, membershipUsecases.CheckConfig{
		RenewalDaysBeforeExpiring: cfg.Billing.RenewalDaysBeforeExpiring,
		TrialCheckOffset:          cfg.Billing.TrialCheckOffset,
		GracePeriodDays:           cfg.Billing.GracePeriodDays,
	}, log)
	ucs.createRenewal = membershipUsecases.NewCreateRenewalPaymentUseCase(
		s.txMgr, r.membershipRepo, r.paymentRepo, s.carts, s.settings, s.dispatcher, log,
	)
	ucs.markExpired = membershipUsecases.NewMarkMembershipExpiredUseCase(r.membershipRepo, log)

	ucs.addNote = noteUsecases.NewAddNoteUseCase(r.noteRepo, s.renderer, log)
	ucs.listNotes = noteUsecases.NewListNotesUseCase(r.noteRepo, log)
	ucs.deleteNotes = noteUsecases.NewDeleteNotesUseCase(r.noteRepo, log)

	ucs.getSettings = settingUsecases.NewGetSettingsUseCase(s.settings, log)
	ucs.updateSettings = settingUsecases.NewUpdateSettingsUseCase(r.settingRepo, log)

	if s.mailer != nil {
		templates := notification.Defaults()
		ucs.notifyRenewal = notificationUsecases.NewNotifyRenewalPaymentUseCase(
			r.paymentRepo, r.customerRepo, s.mailer,
			templates[notification.KindRenewalPayment], s.renderer, s.formatter, log,
		)
		ucs.notifyReceipt = notificationUsecases.NewNotifyPaymentReceiptUseCase(
			r.paymentRepo, r.customerRepo, s.mailer, s.settings, ucs.invoiceLink,
			templates[notification.KindPaymentReceipt], s.renderer, s.formatter, log,
		)
	}

	c.ucs = ucs
}

// subscribeNotifications attaches the billing emails to the event bus.
func (c *Container) subscribeNotifications() error {
	if c.ucs.notifyRenewal == nil {
		c.log.Warnw("no mailer configured, billing emails will not be sent")
		return nil
	}
	if err := notificationUsecases.Subscribe(c.svcs.dispatcher, c.ucs.notifyRenewal, c.ucs.notifyReceipt); err != nil {
		return fmt.Errorf("failed to subscribe billing notifications: %w", err)
	}
	return nil
}

package usecases

import (
	"context"
	"fmt"

	"github.com/siteforge/siteforge/internal/domain/payment"
	"github.com/siteforge/siteforge/internal/domain/shared/events"
)

// Subscribe registers the billing emails on the event bus. receipt may be nil.
func Subscribe(sub events.EventSubscriber, renewal *NotifyRenewalPaymentUseCase, receipt *NotifyPaymentReceiptUseCase) error {
	err := sub.Subscribe(payment.EventTypeRenewalPaymentCreated, events.NewSimpleEventHandler(
		payment.EventTypeRenewalPaymentCreated,
		func(ctx context.Context, event events.DomainEvent) error {
			e, ok := event.(*payment.RenewalPaymentCreatedEvent)
			if !ok {
				return fmt.Errorf("unexpected event payload %T", event)
			}
			return renewal.Execute(ctx, RenewalPaymentNotice{
				PaymentHash: e.PaymentHash,
				PaymentURL:  e.DefaultPaymentURL,
			})
		},
	))
	if err != nil {
		return fmt.Errorf("failed to subscribe renewal notifications: %w", err)
	}

	if receipt == nil {
		return nil
	}
	err = sub.Subscribe(payment.EventTypePaymentCompleted, events.NewSimpleEventHandler(
		payment.EventTypePaymentCompleted,
		func(ctx context.Context, event events.DomainEvent) error {
			e, ok := event.(*payment.PaymentCompletedEvent)
			if !ok {
				return fmt.Errorf("unexpected event payload %T", event)
			}
			return receipt.Execute(ctx, e.PaymentID)
		},
	))
	if err != nil {
		return fmt.Errorf("failed to subscribe receipt notifications: %w", err)
	}
	return nil
}

package email

import (
	"context"
	"errors"
	"net/textproto"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/siteforge/siteforge/internal/application/notification/usecases"
	"github.com/siteforge/siteforge/internal/shared/config"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

type flakyDialer struct {
	failures []error
	calls    int
	sent     []*gomail.Message
}

func (d *flakyDialer) DialAndSend(msgs ...*gomail.Message) error {
	d.calls++
	if len(d.failures) > 0 {
		err := d.failures[0]
		d.failures = d.failures[1:]
		return err
	}
	d.sent = append(d.sent, msgs...)
	return nil
}

func newTestSender(d Dialer, retries uint) *SMTPSender {
	s := newSMTPSender(d, config.EmailConfig{
		FromAddress: "billing@example.com",
		FromName:    "SiteForge Billing",
		MaxRetries:  retries,
	}, logger.NewNop())
	s.newBackOff = func() backoff.BackOff { return backoff.NewConstantBackOff(time.Millisecond) }
	return s
}

var message = usecases.Message{
	To:      "jane@example.com",
	ToName:  "janedoe",
	Subject: "Payment received",
	Text:    "Thanks",
	HTML:    "<p>Thanks</p>",
}

func TestSMTPSender_RetriesTransientFailures(t *testing.T) {
	d := &flakyDialer{failures: []error{errors.New("dial tcp: connection refused"), errors.New("EOF")}}
	s := newTestSender(d, 3)

	require.NoError(t, s.Send(context.Background(), message))
	assert.Equal(t, 3, d.calls)
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{`"janedoe" <jane@example.com>`}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Payment received"}, d.sent[0].GetHeader("Subject"))
}

func TestSMTPSender_GivesUpAfterMaxTries(t *testing.T) {
	d := &flakyDialer{failures: []error{errors.New("a"), errors.New("b"), errors.New("c")}}
	s := newTestSender(d, 1)

	assert.Error(t, s.Send(context.Background(), message))
	assert.Equal(t, 2, d.calls)
}

func TestSMTPSender_PermanentFailureIsNotRetried(t *testing.T) {
	d := &flakyDialer{failures: []error{&textproto.Error{Code: 550, Msg: "mailbox unavailable"}}}
	s := newTestSender(d, 3)

	err := s.Send(context.Background(), message)
	require.Error(t, err)
	assert.Equal(t, 1, d.calls)
}

func TestSMTPSender_Validation(t *testing.T) {
	_, err := NewSMTPSender(config.EmailConfig{FromAddress: "a@example.com"}, logger.NewNop())
	assert.Error(t, err)

	s := newTestSender(&flakyDialer{}, 0)
	assert.Equal(t, uint(defaultMaxTries), s.maxTries)
	assert.Error(t, s.Send(context.Background(), usecases.Message{Subject: "x"}))
}

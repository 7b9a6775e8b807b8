package email

import (
	"context"
	"errors"
	"fmt"
	"net/textproto"
	"time"

	"github.com/cenkalti/backoff/v5"
	"gopkg.in/gomail.v2"

	"github.com/siteforge/siteforge/internal/application/notification/usecases"
	"github.com/siteforge/siteforge/internal/shared/config"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

const defaultMaxTries = 3

// Dialer delivers composed messages. *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender sends billing emails over SMTP, retrying transient failures.
type SMTPSender struct {
	dialer      Dialer
	fromAddress string
	fromName    string
	maxTries    uint
	newBackOff  func() backoff.BackOff
	logger      logger.Interface
}

var _ usecases.EmailSender = (*SMTPSender)(nil)

func NewSMTPSender(cfg config.EmailConfig, logger logger.Interface) (*SMTPSender, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("from address is required")
	}
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	return newSMTPSender(dialer, cfg, logger), nil
}

func newSMTPSender(dialer Dialer, cfg config.EmailConfig, logger logger.Interface) *SMTPSender {
	tries := cfg.MaxRetries + 1
	if cfg.MaxRetries == 0 {
		tries = defaultMaxTries
	}
	return &SMTPSender{
		dialer:      dialer,
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		maxTries:    tries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxInterval = 30 * time.Second
			return b
		},
		logger: logger,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg usecases.Message) error {
	if msg.To == "" {
		return fmt.Errorf("recipient is required")
	}

	m := gomail.NewMessage()
	if s.fromName != "" {
		m.SetAddressHeader("From", s.fromAddress, s.fromName)
	} else {
		m.SetHeader("From", s.fromAddress)
	}
	if msg.ToName != "" {
		m.SetAddressHeader("To", msg.To, msg.ToName)
	} else {
		m.SetHeader("To", msg.To)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := s.dialer.DialAndSend(m)
		if err == nil {
			return struct{}{}, nil
		}
		if isPermanent(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		s.logger.Warnw("email delivery failed, retrying",
			"to", msg.To,
			"attempt", attempt,
			"error", err,
		)
		return struct{}{}, err
	},
		backoff.WithBackOff(s.newBackOff()),
		backoff.WithMaxTries(s.maxTries),
	)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Debugw("email sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

// 5xx replies mean the server rejected the message for good.
func isPermanent(err error) bool {
	var protoErr *textproto.Error
	return errors.As(err, &protoErr) && protoErr.Code >= 500
}

package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gopkg.in/mail.v2"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/config"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
)

const maxBackoff = 30 * time.Second

var ErrNoProviders = errors.New("no mail providers configured")

// errRoundFailed marks a round in which every provider refused the message.
var errRoundFailed = errors.New("every provider failed")

// transport is the part of *mail.Dialer the sender needs.
type transport interface {
	DialAndSend(m ...*mail.Message) error
}

type provider struct {
	name string
	t    transport
}

// SettingsSource supplies the store branding used in mail.
type SettingsSource interface {
	Get(ctx context.Context) (models.Settings, error)
}

// Sender delivers rendered mail over SMTP. Each round tries every provider
// in order and rounds are separated by an exponential backoff.
type Sender struct {
	from      string
	providers []provider
	timeout   time.Duration
	attempts  int
	backoff   time.Duration
	settings  SettingsSource
	logger    *zap.Logger
	now       func() time.Time
	// timer paces the retry rounds; nil uses a real timer.
	timer backoff.Timer
}

func NewSender(cfg config.MailConfig, settings SettingsSource, logger *zap.Logger) *Sender {
	providers := make([]provider, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		d := mail.NewDialer(p.Host, p.Port, p.Username, p.Password)
		d.SSL = p.SSL
		if cfg.Timeout > 0 {
			d.Timeout = cfg.Timeout
		}
		name := p.Name
		if name == "" {
			name = p.Host
		}
		providers = append(providers, provider{name: name, t: d})
	}
	return newSender(cfg, providers, settings, logger)
}

func newSender(cfg config.MailConfig, providers []provider, settings SettingsSource, logger *zap.Logger) *Sender {
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}
	return &Sender{
		from:      cfg.From,
		providers: providers,
		timeout:   cfg.Timeout,
		attempts:  attempts,
		backoff:   cfg.Backoff,
		settings:  settings,
		logger:    logger.Named("mail"),
		now:       time.Now,
	}
}

// retryPolicy doubles the wait between rounds from the configured backoff up
// to maxBackoff, and allows attempts rounds in total.
func (s *Sender) retryPolicy(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(s.backoff),
		backoff.WithRandomizationFactor(0),
		backoff.WithMultiplier(2),
		backoff.WithMaxInterval(maxBackoff),
		backoff.WithMaxElapsedTime(0),
	)
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.attempts-1)), ctx)
}

// Send delivers msg through the first provider that accepts it.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	if len(s.providers) == 0 {
		return ErrNoProviders
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	var errs []error
	round := 0
	err := backoff.RetryNotifyWithTimer(func() error {
		round++
		for _, p := range s.providers {
			err := s.attempt(ctx, p, m)
			if err == nil {
				s.logger.Info("mail sent",
					zap.String("to", msg.To),
					zap.String("subject", msg.Subject),
					zap.String("provider", p.name),
					zap.Int("round", round))
				return nil
			}
			s.logger.Warn("mail attempt failed",
				zap.String("to", msg.To),
				zap.String("provider", p.name),
				zap.Int("round", round),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", p.name, err))
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
		}
		return errRoundFailed
	}, s.retryPolicy(ctx), nil, s.timer)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, errRoundFailed):
	case len(errs) == 0 || !errors.Is(errs[len(errs)-1], err):
		// cancelled while waiting for the next round
		errs = append(errs, err)
	}
	return fmt.Errorf("send mail to %s: %w", msg.To, errors.Join(errs...))
}

// attempt bounds one DialAndSend by the per-attempt timeout. A slow relay
// keeps its goroutine until the dialer gives up on its own.
func (s *Sender) attempt(ctx context.Context, p provider, m *mail.Message) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() { done <- p.t.DialAndSend(m) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sender) storeSettings(ctx context.Context) models.Settings {
	if s.settings == nil {
		return models.DefaultSettings()
	}
	st, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Warn("falling back to default store settings", zap.Error(err))
		return models.DefaultSettings()
	}
	return st
}

func (s *Sender) SendVerificationCode(ctx context.Context, email, code string) error {
	msg, err := VerificationCode(email, code, s.storeSettings(ctx), s.now())
	if err != nil {
		return err
	}
	return s.Send(ctx, msg)
}

func (s *Sender) SendPasswordResetCode(ctx context.Context, email, code string) error {
	msg, err := PasswordResetCode(email, code, s.storeSettings(ctx), s.now())
	if err != nil {
		return err
	}
	return s.Send(ctx, msg)
}

func (s *Sender) SendPasswordChangeCode(ctx context.Context, email, name, code string) error {
	msg, err := PasswordChangeCode(email, name, code, s.storeSettings(ctx), s.now())
	if err != nil {
		return err
	}
	return s.Send(ctx, msg)
}

// SendOrderConfirmation uses the settings captured at checkout.
func (s *Sender) SendOrderConfirmation(ctx context.Context, order models.Order, settings models.Settings, email, name string) error {
	msg, err := OrderConfirmation(order, settings, email, name, s.now())
	if err != nil {
		return err
	}
	return s.Send(ctx, msg)
}

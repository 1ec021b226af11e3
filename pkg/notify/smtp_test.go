package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/mail.v2"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/config"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
)

type fakeTransport struct {
	mu    sync.Mutex
	fails int
	err   error
	block chan struct{}
	sent  []*mail.Message
	calls int
}

func (f *fakeTransport) DialAndSend(m ...*mail.Message) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.fails {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func (f *fakeTransport) count() (calls, sent int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, len(f.sent)
}

type staticSettings struct {
	s   models.Settings
	err error
}

func (s staticSettings) Get(context.Context) (models.Settings, error) { return s.s, s.err }

// recordingTimer fires immediately and remembers every requested wait.
type recordingTimer struct {
	waits []time.Duration
	c     chan time.Time
	start func(time.Duration)
}

func (t *recordingTimer) Start(d time.Duration) {
	t.waits = append(t.waits, d)
	if t.start != nil {
		t.start(d)
		return
	}
	t.c <- time.Time{}
}

func (t *recordingTimer) Stop() {}

func (t *recordingTimer) C() <-chan time.Time { return t.c }

func testSender(cfg config.MailConfig, settings SettingsSource, transports ...*fakeTransport) (*Sender, *[]time.Duration) {
	providers := make([]provider, len(transports))
	for i, tr := range transports {
		providers[i] = provider{name: string(rune('a' + i)), t: tr}
	}
	s := newSender(cfg, providers, settings, zap.NewNop())
	s.now = func() time.Time { return now }
	timer := &recordingTimer{c: make(chan time.Time, 1)}
	s.timer = timer
	return s, &timer.waits
}

func TestSendFallsBackToNextProvider(t *testing.T) {
	refused := errors.New("connection refused")
	primary := &fakeTransport{fails: 10, err: refused}
	backup := &fakeTransport{}
	s, slept := testSender(config.MailConfig{From: "store@example.com", Attempts: 3}, nil, primary, backup)

	require.NoError(t, s.SendVerificationCode(context.Background(), "asha@example.com", "123456"))

	_, sent := backup.count()
	assert.Equal(t, 1, sent)
	calls, _ := primary.count()
	assert.Equal(t, 1, calls)
	assert.Empty(t, *slept)
	assert.Equal(t, []string{"Email Verification Code - Pujnam Store"}, backup.sent[0].GetHeader("Subject"))
	assert.Equal(t, []string{"store@example.com"}, backup.sent[0].GetHeader("From"))
}

func TestSendRetriesWithBoundedBackoff(t *testing.T) {
	flaky := &fakeTransport{fails: 3, err: errors.New("451 try again")}
	s, slept := testSender(config.MailConfig{Attempts: 5, Backoff: 20 * time.Second}, nil, flaky)

	require.NoError(t, s.Send(context.Background(), Message{To: "a@example.com", Subject: "x", HTML: "<p>x</p>"}))

	calls, sent := flaky.count()
	assert.Equal(t, 4, calls)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []time.Duration{20 * time.Second, 30 * time.Second, 30 * time.Second}, *slept)
}

func TestSendReportsEveryFailure(t *testing.T) {
	first := errors.New("auth failed")
	second := errors.New("tls handshake")
	s, slept := testSender(config.MailConfig{Attempts: 2, Backoff: time.Second},
		nil, &fakeTransport{fails: 9, err: first}, &fakeTransport{fails: 9, err: second})

	err := s.Send(context.Background(), Message{To: "a@example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
	assert.Contains(t, err.Error(), "send mail to a@example.com")
	assert.Len(t, *slept, 1)
}

func TestSendStopsWhenCancelledBetweenRounds(t *testing.T) {
	down := &fakeTransport{fails: 9, err: errors.New("connection reset")}
	s, _ := testSender(config.MailConfig{Attempts: 4, Backoff: time.Minute}, nil, down)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	timer := s.timer.(*recordingTimer)
	timer.start = func(time.Duration) { cancel() }

	err := s.Send(ctx, Message{To: "a@example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, down.err)
	calls, _ := down.count()
	assert.Equal(t, 1, calls)
	assert.Equal(t, []time.Duration{time.Minute}, timer.waits)
}

func TestSendAttemptTimeout(t *testing.T) {
	stuck := &fakeTransport{block: make(chan struct{})}
	defer close(stuck.block)
	s, _ := testSender(config.MailConfig{Attempts: 1, Timeout: 20 * time.Millisecond}, nil, stuck)

	err := s.Send(context.Background(), Message{To: "a@example.com"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSendWithoutProviders(t *testing.T) {
	s, _ := testSender(config.MailConfig{}, nil)
	assert.ErrorIs(t, s.Send(context.Background(), Message{}), ErrNoProviders)
}

func TestSenderUsesStoreSettings(t *testing.T) {
	custom := models.DefaultSettings()
	custom.StoreName = "Pujnam Kashi"
	tr := &fakeTransport{}
	s, _ := testSender(config.MailConfig{}, staticSettings{s: custom}, tr)

	require.NoError(t, s.SendPasswordResetCode(context.Background(), "a@example.com", "999000"))
	assert.Equal(t, []string{"Password Reset OTP - Pujnam Kashi"}, tr.sent[0].GetHeader("Subject"))

	broken, _ := testSender(config.MailConfig{}, staticSettings{err: errors.New("mongo down")}, tr)
	require.NoError(t, broken.SendPasswordChangeCode(context.Background(), "a@example.com", "Asha", "1"))
	assert.Equal(t, []string{"Password Change OTP - Pujnam Store"}, tr.sent[1].GetHeader("Subject"))
}

func TestNewSenderBuildsDialers(t *testing.T) {
	s := NewSender(config.MailConfig{
		Timeout: 5 * time.Second,
		Providers: []config.MailProviderConfig{
			{Name: "primary", Host: "smtp.example.com", Port: 465, SSL: true},
			{Host: "relay.example.com", Port: 587},
		},
	}, nil, zap.NewNop())

	require.Len(t, s.providers, 2)
	assert.Equal(t, 1, s.attempts)
	assert.Equal(t, "relay.example.com", s.providers[1].name)
	d, ok := s.providers[0].t.(*mail.Dialer)
	require.True(t, ok)
	assert.True(t, d.SSL)
	assert.Equal(t, 5*time.Second, d.Timeout)
}

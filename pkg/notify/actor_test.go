package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
)

type recordingMailer struct {
	mu       sync.Mutex
	fail     error
	emails   []string
	deadline bool
}

func (m *recordingMailer) SendOrderConfirmation(ctx context.Context, _ models.Order, _ models.Settings, email, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, m.deadline = ctx.Deadline()
	m.emails = append(m.emails, email)
	return m.fail
}

func (m *recordingMailer) sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.emails...)
}

func TestNotifierDeliversInOrder(t *testing.T) {
	mailer := &recordingMailer{}
	n, err := NewNotifier(actor.NewActorSystem(), mailer, time.Second, zap.NewNop())
	require.NoError(t, err)

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		n.OrderPlaced(models.Order{}, models.DefaultSettings(), email, "")
	}
	n.Stop()

	assert.Equal(t, []string{"a@example.com", "b@example.com", "c@example.com"}, mailer.sent())
	assert.True(t, mailer.deadline)
}

func TestNotifierLogsFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	mailer := &recordingMailer{fail: errors.New("smtp down")}
	n, err := NewNotifier(actor.NewActorSystem(), mailer, 0, zap.New(core))
	require.NoError(t, err)
	defer n.Stop()

	n.OrderPlaced(models.Order{}, models.Settings{}, "a@example.com", "Asha")

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("Order confirmation not sent").Len() == 1
	}, time.Second, 10*time.Millisecond)
}

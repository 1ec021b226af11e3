package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
)

const defaultNotifyTimeout = time.Minute

// OrderMailer delivers the confirmation for a placed order.
type OrderMailer interface {
	SendOrderConfirmation(ctx context.Context, order models.Order, settings models.Settings, email, name string) error
}

// Messages
type orderPlaced struct {
	Order    models.Order
	Settings models.Settings
	Email    string
	Name     string
}

// notificationActor sends order mail one message at a time.
type notificationActor struct {
	mailer  OrderMailer
	timeout time.Duration
	logger  *zap.Logger
}

func (a *notificationActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *orderPlaced:
		orderID := msg.Order.ID.Hex()
		sendCtx, cancel := context.WithTimeout(context.Background(), a.timeout)
		err := a.mailer.SendOrderConfirmation(sendCtx, msg.Order, msg.Settings, msg.Email, msg.Name)
		cancel()
		if err != nil {
			a.logger.Warn("Order confirmation not sent",
				zap.String("order_id", orderID),
				zap.String("recipient", msg.Email),
				zap.Error(err))
			return
		}
		a.logger.Info("Order confirmation sent",
			zap.String("order_id", orderID),
			zap.String("recipient", msg.Email))

	case *actor.Started:
		a.logger.Info("Notification actor started")

	case *actor.Stopping:
		a.logger.Info("Notification actor stopping")
	}
}

// Notifier hands placed orders to the notification actor. OrderPlaced never
// blocks the caller; failures are only logged.
type Notifier struct {
	root   *actor.RootContext
	pid    *actor.PID
	logger *zap.Logger
}

func NewNotifier(system *actor.ActorSystem, mailer OrderMailer, timeout time.Duration, logger *zap.Logger) (*Notifier, error) {
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	logger = logger.Named("notifier")

	props := actor.PropsFromProducer(func() actor.Actor {
		return &notificationActor{mailer: mailer, timeout: timeout, logger: logger}
	})
	pid, err := system.Root.SpawnNamed(props, "notification-actor")
	if err != nil {
		return nil, fmt.Errorf("failed to spawn notification actor: %w", err)
	}
	return &Notifier{root: system.Root, pid: pid, logger: logger}, nil
}

func (n *Notifier) OrderPlaced(order models.Order, settings models.Settings, email, name string) {
	n.root.Send(n.pid, &orderPlaced{Order: order, Settings: settings, Email: email, Name: name})
}

// Stop drains queued notifications and stops the actor.
func (n *Notifier) Stop() {
	if err := n.root.PoisonFuture(n.pid).Wait(); err != nil {
		n.logger.Warn("Notification actor did not stop cleanly", zap.Error(err))
	}
}

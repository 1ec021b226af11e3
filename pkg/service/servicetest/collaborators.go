package servicetest

import (
	"context"
	"sync"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
)

type Audit struct {
	mu      sync.Mutex
	entries []repository.AuditLog
}

func (a *Audit) CreateAuditLog(_ context.Context, log *repository.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, *log)
	return nil
}

func (a *Audit) GetAuditLogs(_ context.Context, entityID string, limit int64) ([]*repository.AuditLog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := []*repository.AuditLog{}
	for i := len(a.entries) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if a.entries[i].EntityID == entityID {
			e := a.entries[i]
			out = append(out, &e)
		}
	}
	return out, nil
}

// Actions lists the recorded actions for entityID, oldest first.
func (a *Audit) Actions(entityID string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, e := range a.entries {
		if e.EntityID == entityID {
			out = append(out, e.Action)
		}
	}
	return out
}

type Placed struct {
	Order    models.Order
	Settings models.Settings
	Email    string
	Name     string
}

// Notifier records placed orders.
type Notifier struct {
	mu     sync.Mutex
	placed []Placed
}

func (n *Notifier) OrderPlaced(order models.Order, settings models.Settings, email, name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.placed = append(n.placed, Placed{Order: order, Settings: settings, Email: email, Name: name})
}

func (n *Notifier) Placed() []Placed {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Placed(nil), n.placed...)
}

type Sent struct {
	Kind  string
	Email string
	Name  string
	Code  string
}

// Mailer records every message. Err, when set, fails every send.
type Mailer struct {
	mu   sync.Mutex
	sent []Sent
	Err  error
}

func (m *Mailer) record(s Sent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, s)
	return nil
}

func (m *Mailer) SendVerificationCode(_ context.Context, email, code string) error {
	return m.record(Sent{Kind: "verification", Email: email, Code: code})
}

func (m *Mailer) SendPasswordResetCode(_ context.Context, email, code string) error {
	return m.record(Sent{Kind: "reset", Email: email, Code: code})
}

func (m *Mailer) SendPasswordChangeCode(_ context.Context, email, name, code string) error {
	return m.record(Sent{Kind: "change", Email: email, Name: name, Code: code})
}

// Last returns the newest message, or the zero Sent when none went out.
func (m *Mailer) Last() Sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return Sent{}
	}
	return m.sent[len(m.sent)-1]
}

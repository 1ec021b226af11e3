package servicetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
)

type Users struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.User

	// Orders backs Customers when set.
	Orders *Orders
}

func NewUsers(users ...models.User) *Users {
	s := &Users{byID: map[primitive.ObjectID]models.User{}}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		u.Email = models.NormalizeEmail(u.Email)
		s.byID[u.ID] = u
	}
	return s
}

func (s *Users) Get(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Addresses = append([]models.SavedAddress(nil), u.Addresses...)
	return &u, nil
}

func (s *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	s.mu.Lock()
	var id primitive.ObjectID
	for _, u := range s.byID {
		if u.Email == email {
			id = u.ID
		}
	}
	s.mu.Unlock()
	if id.IsZero() {
		return nil, repository.ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *Users) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	s.byID[u.ID] = *u
	return nil
}

func (s *Users) UpdateProfile(_ context.Context, id primitive.ObjectID, patch repository.ProfilePatch) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&u)
	s.byID[id] = u
	return &u, nil
}

func (s *Users) update(id primitive.ObjectID, fn func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&u)
	s.byID[id] = u
	return nil
}

func (s *Users) SetPassword(_ context.Context, id primitive.ObjectID, hash string) error {
	return s.update(id, func(u *models.User) { u.Password = hash })
}

func (s *Users) SetAddresses(_ context.Context, id primitive.ObjectID, addresses []models.SavedAddress) error {
	return s.update(id, func(u *models.User) {
		u.Addresses = append([]models.SavedAddress(nil), addresses...)
	})
}

func (s *Users) Customers(ctx context.Context) ([]models.CustomerStats, error) {
	s.mu.Lock()
	users := make([]models.User, 0, len(s.byID))
	for _, u := range s.byID {
		if u.Role != models.RoleAdmin {
			users = append(users, u)
		}
	}
	s.mu.Unlock()
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })

	out := make([]models.CustomerStats, 0, len(users))
	for _, u := range users {
		c := models.CustomerStats{
			ID:        u.ID,
			Email:     u.Email,
			Name:      u.Name,
			Phone:     u.Phone,
			Address:   u.Address,
			CreatedAt: u.CreatedAt,
		}
		if s.Orders != nil {
			orders, _ := s.Orders.ListByUser(ctx, u.ID)
			for _, o := range orders {
				c.TotalOrders++
				c.TotalSpent += o.Total
				if c.LastOrderAt == nil || o.CreatedAt.After(*c.LastOrderAt) {
					at := o.CreatedAt
					c.LastOrderAt = &at
				}
			}
		}
		out = append(out, c)
	}
	return out, nil
}

type otpEntry struct {
	code    string
	expires time.Time
}

// OTPs keeps pending registrations and codes in memory. Codes past their
// TTL read as missing, like expired Redis keys.
type OTPs struct {
	mu      sync.Mutex
	pending map[string]models.PendingRegistration
	codes   map[string]otpEntry
}

func NewOTPs() *OTPs {
	return &OTPs{pending: map[string]models.PendingRegistration{}, codes: map[string]otpEntry{}}
}

func (s *OTPs) SavePending(_ context.Context, p *models.PendingRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[p.Email] = *p
	return nil
}

func (s *OTPs) GetPending(_ context.Context, email string) (*models.PendingRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (s *OTPs) DeletePending(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, email)
	return nil
}

func codeKey(purpose, email string) string {
	return purpose + ":" + email
}

func (s *OTPs) SaveCode(_ context.Context, purpose, email, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[codeKey(purpose, email)] = otpEntry{code: code, expires: time.Now().Add(ttl)}
	return nil
}

func (s *OTPs) GetCode(_ context.Context, purpose, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.codes[codeKey(purpose, email)]
	if !ok || time.Now().After(e.expires) {
		return "", repository.ErrNotFound
	}
	return e.code, nil
}

func (s *OTPs) DeleteCode(_ context.Context, purpose, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, codeKey(purpose, email))
	return nil
}

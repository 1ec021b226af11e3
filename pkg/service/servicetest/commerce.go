package servicetest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
)

type Coupons struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Coupon
}

func NewCoupons(coupons ...models.Coupon) *Coupons {
	s := &Coupons{byID: map[primitive.ObjectID]models.Coupon{}}
	for _, c := range coupons {
		if c.ID.IsZero() {
			c.ID = primitive.NewObjectID()
		}
		c.Code = models.NormalizeCode(c.Code)
		s.byID[c.ID] = c
	}
	return s
}

// UsedCount reports the counter of code, or -1 when it is absent.
func (s *Coupons) UsedCount(code string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.byCode(code); ok {
		return c.UsedCount
	}
	return -1
}

func (s *Coupons) byCode(code string) (models.Coupon, bool) {
	code = models.NormalizeCode(code)
	for _, c := range s.byID {
		if c.Code == code {
			return c, true
		}
	}
	return models.Coupon{}, false
}

func (s *Coupons) Get(_ context.Context, id primitive.ObjectID) (*models.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (s *Coupons) GetByCode(_ context.Context, code string) (*models.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byCode(code)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (s *Coupons) list(keep func(models.Coupon) bool) []models.Coupon {
	s.mu.Lock()
	out := []models.Coupon{}
	for _, c := range s.byID {
		if keep(c) {
			out = append(out, c)
		}
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Coupons) List(_ context.Context) ([]models.Coupon, error) {
	return s.list(func(models.Coupon) bool { return true }), nil
}

func (s *Coupons) ListUsable(_ context.Context, now time.Time) ([]models.Coupon, error) {
	return s.list(func(c models.Coupon) bool { return c.State(now) == models.CouponUsable }), nil
}

func (s *Coupons) Create(_ context.Context, c *models.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byCode(c.Code); taken {
		return repository.ErrDuplicate
	}
	s.byID[c.ID] = *c
	return nil
}

func (s *Coupons) Update(_ context.Context, id primitive.ObjectID, patch repository.CouponPatch) (*models.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&c)
	if other, taken := s.byCode(c.Code); taken && other.ID != id {
		return nil, repository.ErrDuplicate
	}
	s.byID[id] = c
	return &c, nil
}

func (s *Coupons) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *Coupons) Consume(_ context.Context, code string, now time.Time) (*models.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byCode(code)
	if !ok || c.State(now) != models.CouponUsable {
		return nil, repository.ErrCouponUnusable
	}
	c.UsedCount++
	s.byID[c.ID] = c
	return &c, nil
}

func (s *Coupons) Release(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byCode(code)
	if !ok {
		return repository.ErrNotFound
	}
	if c.UsedCount > 0 {
		c.UsedCount--
		s.byID[c.ID] = c
	}
	return nil
}

type Orders struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Order

	// CreateErr, when set, is returned by Create.
	CreateErr error
}

func NewOrders() *Orders {
	return &Orders{byID: map[primitive.ObjectID]models.Order{}}
}

func (s *Orders) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *Orders) Create(_ context.Context, o *models.Order) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[o.ID] = *o
	return nil
}

func (s *Orders) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

func (s *Orders) Get(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func owned(o models.Order, userID primitive.ObjectID) bool {
	return o.User != nil && *o.User == userID
}

func (s *Orders) GetForUser(_ context.Context, id, userID primitive.ObjectID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byID[id]
	if !ok || !owned(o, userID) {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (s *Orders) filter(keep func(models.Order) bool) []models.Order {
	s.mu.Lock()
	out := []models.Order{}
	for _, o := range s.byID {
		if keep(o) {
			out = append(out, o)
		}
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Orders) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.filter(func(o models.Order) bool { return owned(o, userID) }), nil
}

func (s *Orders) List(_ context.Context, f repository.OrderFilter) ([]models.Order, int64, error) {
	all := s.filter(func(o models.Order) bool { return f.Status == "" || o.OrderStatus == f.Status })
	return paginate(all, f.Page), int64(len(all)), nil
}

func (s *Orders) Cancel(_ context.Context, id, userID primitive.ObjectID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byID[id]
	if !ok || !owned(o, userID) {
		return nil, repository.ErrNotFound
	}
	if !o.Cancellable() {
		return nil, repository.ErrNotCancellable
	}
	o.OrderStatus = models.OrderCancelled
	o.UpdatedAt = time.Now()
	s.byID[id] = o
	return &o, nil
}

func (s *Orders) UpdateStatus(_ context.Context, id primitive.ObjectID, patch repository.StatusPatch) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.OrderStatus != nil {
		o.OrderStatus = *patch.OrderStatus
	}
	if patch.PaymentStatus != nil {
		o.PaymentStatus = *patch.PaymentStatus
	}
	o.UpdatedAt = time.Now()
	s.byID[id] = o
	return &o, nil
}

type Carts struct {
	mu     sync.Mutex
	byUser map[primitive.ObjectID]models.Cart
}

func NewCarts() *Carts {
	return &Carts{byUser: map[primitive.ObjectID]models.Cart{}}
}

func (s *Carts) Get(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byUser[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.Items = append([]models.CartItem(nil), c.Items...)
	return &c, nil
}

func (s *Carts) Save(_ context.Context, c *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	stored := *c
	stored.Items = append([]models.CartItem(nil), c.Items...)
	s.byUser[c.User] = stored
	return nil
}

func (s *Carts) Delete(_ context.Context, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUser, userID)
	return nil
}

type Settings struct {
	mu  sync.Mutex
	doc *models.Settings
}

func NewSettings() *Settings {
	return &Settings{}
}

func (s *Settings) Get(_ context.Context) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		d := models.DefaultSettings()
		d.ID = primitive.NewObjectID()
		d.CreatedAt = time.Now()
		d.UpdatedAt = d.CreatedAt
		s.doc = &d
	}
	return *s.doc, nil
}

func (s *Settings) Save(_ context.Context, doc models.Settings) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.ID.IsZero() {
		return models.Settings{}, errors.New("settings without id")
	}
	doc.UpdatedAt = time.Now()
	s.doc = &doc
	return doc, nil
}

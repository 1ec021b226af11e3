package service

import (
	"context"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
)

// Store ports. The Mongo and Redis implementations live in pkg/repository;
// in-memory ones in pkg/service/servicetest. Implementations report misses
// with repository.ErrNotFound and the other repository sentinels.

type ProductStore interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	List(ctx context.Context, f repository.ProductFilter) ([]models.Product, int64, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, id primitive.ObjectID, patch repository.ProductPatch) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DecrementStock(ctx context.Context, id primitive.ObjectID, n int) error
	IncrementStock(ctx context.Context, id primitive.ObjectID, n int) error
	FindByNameKeys(ctx context.Context, keys []string) ([]models.Product, error)
	MarkBestsellers(ctx context.Context, names []string) (int64, error)
}

type CategoryStore interface {
	List(ctx context.Context, activeOnly bool) ([]models.Category, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Category, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, id primitive.ObjectID, patch repository.CategoryPatch) (*models.Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type CouponStore interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Coupon, error)
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	ListUsable(ctx context.Context, now time.Time) ([]models.Coupon, error)
	Create(ctx context.Context, c *models.Coupon) error
	Update(ctx context.Context, id primitive.ObjectID, patch repository.CouponPatch) (*models.Coupon, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Consume(ctx context.Context, code string, now time.Time) (*models.Coupon, error)
	Release(ctx context.Context, code string) error
}

type OrderStore interface {
	Create(ctx context.Context, o *models.Order) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	GetForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	List(ctx context.Context, f repository.OrderFilter) ([]models.Order, int64, error)
	Cancel(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, patch repository.StatusPatch) (*models.Order, error)
}

type CartStore interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	Save(ctx context.Context, c *models.Cart) error
	Delete(ctx context.Context, userID primitive.ObjectID) error
}

type SettingsStore interface {
	Get(ctx context.Context) (models.Settings, error)
	Save(ctx context.Context, s models.Settings) (models.Settings, error)
}

type UserStore interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, patch repository.ProfilePatch) (*models.User, error)
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
	SetAddresses(ctx context.Context, id primitive.ObjectID, addresses []models.SavedAddress) error
	Customers(ctx context.Context) ([]models.CustomerStats, error)
}

// OTPStore keeps pending registrations and one-time codes until they expire.
type OTPStore interface {
	SavePending(ctx context.Context, p *models.PendingRegistration) error
	GetPending(ctx context.Context, email string) (*models.PendingRegistration, error)
	DeletePending(ctx context.Context, email string) error
	SaveCode(ctx context.Context, purpose, email, code string, ttl time.Duration) error
	GetCode(ctx context.Context, purpose, email string) (string, error)
	DeleteCode(ctx context.Context, purpose, email string) error
}

type ContentStore[T any] interface {
	List(ctx context.Context, q repository.ContentQuery) ([]T, error)
	Get(ctx context.Context, id primitive.ObjectID) (*T, error)
	Create(ctx context.Context, doc *T) error
	Replace(ctx context.Context, id primitive.ObjectID, doc *T) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type MediaStore interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (primitive.ObjectID, error)
	Open(ctx context.Context, id primitive.ObjectID) (*repository.MediaObject, error)
}

type AuditLogger interface {
	CreateAuditLog(ctx context.Context, log *repository.AuditLog) error
	GetAuditLogs(ctx context.Context, entityID string, limit int64) ([]*repository.AuditLog, error)
}

// Notifier receives placed orders for best-effort confirmation mail. It
// must not block.
type Notifier interface {
	OrderPlaced(order models.Order, settings models.Settings, email, name string)
}

// Mailer sends transactional mail synchronously; sign-up and password flows
// need to know whether the code reached the user.
type Mailer interface {
	SendVerificationCode(ctx context.Context, email, code string) error
	SendPasswordResetCode(ctx context.Context, email, code string) error
	SendPasswordChangeCode(ctx context.Context, email, name, code string) error
}

// Clock is injected so tests can pin coupon windows and OTP expiry.
type Clock func() time.Time

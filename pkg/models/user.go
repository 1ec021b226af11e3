package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode string `bson:"zipCode,omitempty" json:"zipCode,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

type AddressType string

const (
	AddressHome  AddressType = "home"
	AddressWork  AddressType = "work"
	AddressOther AddressType = "other"
)

func (t AddressType) Valid() bool {
	return t == AddressHome || t == AddressWork || t == AddressOther
}

type SavedAddress struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Phone        string             `bson:"phone" json:"phone"`
	Email        string             `bson:"email,omitempty" json:"email,omitempty"`
	AddressLine1 string             `bson:"addressLine1" json:"addressLine1"`
	AddressLine2 string             `bson:"addressLine2,omitempty" json:"addressLine2,omitempty"`
	Landmark     string             `bson:"landmark,omitempty" json:"landmark,omitempty"`
	City         string             `bson:"city" json:"city"`
	State        string             `bson:"state" json:"state"`
	Pincode      string             `bson:"pincode" json:"pincode"`
	Country      string             `bson:"country" json:"country"`
	AddressType  AddressType        `bson:"addressType" json:"addressType"`
	IsDefault    bool               `bson:"isDefault" json:"isDefault"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email         string             `bson:"email" json:"email"`
	Password      string             `bson:"password" json:"-"`
	Name          string             `bson:"name" json:"name"`
	Phone         string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Address       Address            `bson:"address" json:"address"`
	Addresses     []SavedAddress     `bson:"addresses" json:"addresses"`
	Role          Role               `bson:"role" json:"role"`
	EmailVerified bool               `bson:"emailVerified" json:"emailVerified"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

func (User) CollectionName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PendingRegistration holds sign-up data until the emailed code is confirmed.
// It lives in Redis, never in the users collection.
type PendingRegistration struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Code         string    `json:"code"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// CustomerStats is the admin view of a user with their order totals.
type CustomerStats struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Email       string             `bson:"email" json:"email"`
	Name        string             `bson:"name" json:"name"`
	Phone       string             `bson:"phone" json:"phone"`
	Address     Address            `bson:"address" json:"address"`
	TotalOrders int                `bson:"totalOrders" json:"total_orders"`
	TotalSpent  float64            `bson:"totalSpent" json:"total_spent"`
	CreatedAt   time.Time          `bson:"createdAt" json:"created_at"`
	LastOrderAt *time.Time         `bson:"lastOrderAt,omitempty" json:"last_order_at"`
}

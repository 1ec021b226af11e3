package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

func (t DiscountType) Valid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

type Coupon struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code          string             `bson:"code" json:"code"`
	DiscountType  DiscountType       `bson:"discount_type" json:"discount_type"`
	DiscountValue float64            `bson:"discount_value" json:"discount_value"`
	MinOrderValue float64            `bson:"min_order_value" json:"min_order_value"`
	MaxDiscount   *float64           `bson:"max_discount,omitempty" json:"max_discount,omitempty"`
	ValidFrom     time.Time          `bson:"valid_from" json:"valid_from"`
	ValidUntil    time.Time          `bson:"valid_until" json:"valid_until"`
	UsageLimit    *int               `bson:"usage_limit,omitempty" json:"usage_limit,omitempty"`
	UsedCount     int                `bson:"used_count" json:"used_count"`
	IsActive      bool               `bson:"is_active" json:"is_active"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

func (Coupon) CollectionName() string {
	return "coupons"
}

// NormalizeCode is the canonical stored form of a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type CouponState int

const (
	CouponUsable CouponState = iota
	CouponInactive
	CouponNotStarted
	CouponExpired
	CouponExhausted
)

// Limited reports whether a usage limit applies. A zero limit counts as
// unset.
func (c *Coupon) Limited() bool {
	return c.UsageLimit != nil && *c.UsageLimit > 0
}

// State evaluates the usable predicate at now.
func (c *Coupon) State(now time.Time) CouponState {
	switch {
	case !c.IsActive:
		return CouponInactive
	case now.Before(c.ValidFrom):
		return CouponNotStarted
	case now.After(c.ValidUntil):
		return CouponExpired
	case c.Limited() && c.UsedCount >= *c.UsageLimit:
		return CouponExhausted
	default:
		return CouponUsable
	}
}

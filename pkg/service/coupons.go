package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/apperr"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/pricing"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
)

const invalidCoupon = "Invalid or expired coupon"

// couponError explains why c cannot be applied at now, or returns nil.
func couponError(c *models.Coupon, now time.Time) error {
	switch c.State(now) {
	case models.CouponUsable:
		return nil
	case models.CouponExpired:
		return apperr.NotFound(apperr.CodeCouponExpired, invalidCoupon)
	case models.CouponExhausted:
		return apperr.Conflict(apperr.CodeCouponLimitReached, "Coupon usage limit reached")
	default:
		return apperr.NotFound(apperr.CodeCouponNotFound, invalidCoupon)
	}
}

func minOrderError(c *models.Coupon, subtotal float64) error {
	if c.MinOrderValue > 0 && subtotal < c.MinOrderValue {
		return apperr.Conflict(apperr.CodeCouponMinOrder,
			fmt.Sprintf("Minimum order value of ₹%s required for this coupon",
				decimal.NewFromFloat(c.MinOrderValue).StringFixed(2)))
	}
	return nil
}

type CouponService struct {
	coupons CouponStore
	logger  *zap.Logger
	now     Clock
}

func NewCouponService(coupons CouponStore, logger *zap.Logger, clock Clock) *CouponService {
	return &CouponService{coupons: coupons, logger: logger.Named("coupons"), now: clockOrDefault(clock)}
}

type CouponCheck struct {
	Coupon   *models.Coupon `json:"coupon"`
	Discount *float64       `json:"discount,omitempty"`
}

// Validate reports whether code is usable now. When subtotal is given the
// minimum order value is enforced and the discount it would earn is
// returned.
func (s *CouponService) Validate(ctx context.Context, code string, subtotal *float64) (*CouponCheck, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperr.Validation("Coupon code is required")
	}
	c, err := s.coupons.GetByCode(ctx, code)
	if err != nil {
		return nil, notFound(err, apperr.CodeCouponNotFound, invalidCoupon)
	}
	if err := couponError(c, s.now()); err != nil {
		return nil, err
	}

	check := &CouponCheck{Coupon: c}
	if subtotal != nil {
		if err := minOrderError(c, *subtotal); err != nil {
			return nil, err
		}
		sub := decimal.NewFromFloat(*subtotal)
		d := decimal.Min(pricing.Discount(c, sub), sub).InexactFloat64()
		check.Discount = &d
	}
	return check, nil
}

func (s *CouponService) ListActive(ctx context.Context) ([]models.Coupon, error) {
	return s.coupons.ListUsable(ctx, s.now())
}

func (s *CouponService) List(ctx context.Context) ([]models.Coupon, error) {
	return s.coupons.List(ctx)
}

func (s *CouponService) Get(ctx context.Context, idHex string) (*models.Coupon, error) {
	id, err := parseID(idHex, "coupon")
	if err != nil {
		return nil, err
	}
	c, err := s.coupons.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, apperr.CodeCouponNotFound, "Coupon not found")
	}
	return c, nil
}

type CouponInput struct {
	Code          string              `json:"code"`
	DiscountType  models.DiscountType `json:"discount_type"`
	DiscountValue float64             `json:"discount_value"`
	MinOrderValue float64             `json:"min_order_value"`
	MaxDiscount   *float64            `json:"max_discount"`
	ValidFrom     time.Time           `json:"valid_from"`
	ValidUntil    time.Time           `json:"valid_until"`
	UsageLimit    *int                `json:"usage_limit"`
	IsActive      *bool               `json:"is_active"`
}

func validateCouponFields(c *models.Coupon) error {
	switch {
	case c.Code == "":
		return apperr.Validation("Coupon code is required")
	case !c.DiscountType.Valid():
		return apperr.Validationf("Invalid discount type: %s", c.DiscountType)
	case c.DiscountValue < 0:
		return apperr.Validation("Discount value must not be negative")
	case c.DiscountType == models.DiscountPercentage && c.DiscountValue > 100:
		return apperr.Validation("Percentage discount cannot exceed 100")
	case c.MinOrderValue < 0:
		return apperr.Validation("Minimum order value must not be negative")
	case c.MaxDiscount != nil && *c.MaxDiscount < 0:
		return apperr.Validation("Maximum discount must not be negative")
	case c.ValidFrom.IsZero() || c.ValidUntil.IsZero():
		return apperr.Validation("Validity window is required")
	case c.ValidUntil.Before(c.ValidFrom):
		return apperr.Validation("valid_until must not be before valid_from")
	case c.UsageLimit != nil && *c.UsageLimit < 0:
		return apperr.Validation("Usage limit must not be negative")
	}
	return nil
}

func (s *CouponService) Create(ctx context.Context, in CouponInput) (*models.Coupon, error) {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	c := &models.Coupon{
		ID:            primitive.NewObjectID(),
		Code:          models.NormalizeCode(in.Code),
		DiscountType:  in.DiscountType,
		DiscountValue: in.DiscountValue,
		MinOrderValue: in.MinOrderValue,
		MaxDiscount:   in.MaxDiscount,
		ValidFrom:     in.ValidFrom,
		ValidUntil:    in.ValidUntil,
		UsageLimit:    in.UsageLimit,
		IsActive:      active,
		CreatedAt:     s.now(),
	}
	if err := validateCouponFields(c); err != nil {
		return nil, err
	}
	if err := s.coupons.Create(ctx, c); err != nil {
		if errorsIsDuplicate(err) {
			return nil, apperr.Conflict(apperr.CodeCouponExists, "Coupon code already exists")
		}
		return nil, err
	}
	s.logger.Info("coupon created", zap.String("code", c.Code))
	return c, nil
}

func (s *CouponService) Update(ctx context.Context, idHex string, patch repository.CouponPatch) (*models.Coupon, error) {
	current, err := s.Get(ctx, idHex)
	if err != nil {
		return nil, err
	}
	merged := *current
	patch.Apply(&merged)
	if err := validateCouponFields(&merged); err != nil {
		return nil, err
	}

	c, err := s.coupons.Update(ctx, current.ID, patch)
	if err != nil {
		if errorsIsDuplicate(err) {
			return nil, apperr.Conflict(apperr.CodeCouponExists, "Coupon code already exists")
		}
		return nil, notFound(err, apperr.CodeCouponNotFound, "Coupon not found")
	}
	return c, nil
}

func (s *CouponService) Delete(ctx context.Context, idHex string) error {
	id, err := parseID(idHex, "coupon")
	if err != nil {
		return err
	}
	if err := s.coupons.Delete(ctx, id); err != nil {
		return notFound(err, apperr.CodeCouponNotFound, "Coupon not found")
	}
	return nil
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/apperr"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/service/servicetest"
)

func ptr[T any](v T) *T { return &v }

func newCouponService(coupons ...models.Coupon) (*CouponService, *servicetest.Coupons) {
	store := servicetest.NewCoupons(coupons...)
	return NewCouponService(store, zap.NewNop(), fixedClock), store
}

func window(c models.Coupon) models.Coupon {
	c.ValidFrom = fixedNow.Add(-time.Hour)
	c.ValidUntil = fixedNow.Add(time.Hour)
	return c
}

func TestCouponValidate(t *testing.T) {
	svc, _ := newCouponService(
		window(models.Coupon{Code: "DIWALI10", DiscountType: models.DiscountPercentage, DiscountValue: 10, MaxDiscount: ptr(25.0), IsActive: true}),
		window(models.Coupon{Code: "MIN500", DiscountType: models.DiscountFixed, DiscountValue: 50, MinOrderValue: 500, IsActive: true}),
		window(models.Coupon{Code: "FULL", DiscountType: models.DiscountFixed, DiscountValue: 5, UsageLimit: ptr(3), UsedCount: 3, IsActive: true}),
		window(models.Coupon{Code: "OFF", DiscountType: models.DiscountFixed, DiscountValue: 5}),
		models.Coupon{Code: "PAST", DiscountType: models.DiscountFixed, DiscountValue: 5, IsActive: true,
			ValidFrom: fixedNow.Add(-48 * time.Hour), ValidUntil: fixedNow.Add(-24 * time.Hour)},
		models.Coupon{Code: "SOON", DiscountType: models.DiscountFixed, DiscountValue: 5, IsActive: true,
			ValidFrom: fixedNow.Add(time.Hour), ValidUntil: fixedNow.Add(48 * time.Hour)},
	)
	ctx := context.Background()

	tests := []struct {
		name     string
		code     string
		subtotal *float64
		want     string
		discount float64
	}{
		{"percentage capped", "diwali10", ptr(400.0), "", 25},
		{"percentage under cap", "DIWALI10", ptr(100.0), "", 10},
		{"minimum met", "MIN500", ptr(500.0), "", 50},
		{"minimum missed", "MIN500", ptr(499.0), apperr.CodeCouponMinOrder, 0},
		{"no subtotal skips minimum", "MIN500", nil, "", 0},
		{"exhausted", "FULL", nil, apperr.CodeCouponLimitReached, 0},
		{"inactive", "OFF", nil, apperr.CodeCouponNotFound, 0},
		{"expired", "PAST", nil, apperr.CodeCouponExpired, 0},
		{"not started", "SOON", nil, apperr.CodeCouponNotFound, 0},
		{"unknown", "NOPE", nil, apperr.CodeCouponNotFound, 0},
		{"blank", "  ", nil, apperr.CodeValidation, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check, err := svc.Validate(ctx, tt.code, tt.subtotal)
			if tt.want != "" {
				assert.Equal(t, tt.want, apperr.CodeOf(err))
				return
			}
			require.NoError(t, err)
			if tt.subtotal == nil {
				assert.Nil(t, check.Discount)
				return
			}
			require.NotNil(t, check.Discount)
			assert.Equal(t, tt.discount, *check.Discount)
		})
	}
}

func TestCouponMinOrderMessage(t *testing.T) {
	svc, _ := newCouponService(window(models.Coupon{Code: "MIN500", DiscountType: models.DiscountFixed, DiscountValue: 50, MinOrderValue: 500, IsActive: true}))
	_, err := svc.Validate(context.Background(), "MIN500", ptr(10.0))
	require.Error(t, err)
	assert.Equal(t, "Minimum order value of ₹500.00 required for this coupon", apperr.From(err).Message)
}

func TestCouponListActive(t *testing.T) {
	svc, _ := newCouponService(
		window(models.Coupon{Code: "A", DiscountType: models.DiscountFixed, DiscountValue: 5, IsActive: true}),
		window(models.Coupon{Code: "B", DiscountType: models.DiscountFixed, DiscountValue: 5}),
	)
	active, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "A", active[0].Code)

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCouponCreate(t *testing.T) {
	svc, store := newCouponService()
	ctx := context.Background()
	in := CouponInput{
		Code:          " holi20 ",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: 20,
		ValidFrom:     fixedNow,
		ValidUntil:    fixedNow.Add(72 * time.Hour),
	}

	c, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "HOLI20", c.Code)
	assert.True(t, c.IsActive)
	assert.Equal(t, 0, store.UsedCount("HOLI20"))

	_, err = svc.Create(ctx, in)
	assert.Equal(t, apperr.CodeCouponExists, apperr.CodeOf(err))

	bad := in
	bad.Code = "BAD"
	bad.DiscountValue = 120
	_, err = svc.Create(ctx, bad)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	bad = in
	bad.Code = "BACKWARDS"
	bad.ValidUntil = fixedNow.Add(-time.Hour)
	_, err = svc.Create(ctx, bad)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}

func TestCouponUpdateAndDelete(t *testing.T) {
	svc, _ := newCouponService()
	ctx := context.Background()
	base := CouponInput{DiscountType: models.DiscountFixed, DiscountValue: 10, ValidFrom: fixedNow, ValidUntil: fixedNow.Add(time.Hour)}

	first := base
	first.Code = "FIRST"
	a, err := svc.Create(ctx, first)
	require.NoError(t, err)
	second := base
	second.Code = "SECOND"
	_, err = svc.Create(ctx, second)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, a.ID.Hex(), repository.CouponPatch{DiscountValue: ptr(15.0)})
	require.NoError(t, err)
	assert.Equal(t, 15.0, updated.DiscountValue)

	_, err = svc.Update(ctx, a.ID.Hex(), repository.CouponPatch{Code: ptr("SECOND")})
	assert.Equal(t, apperr.CodeCouponExists, apperr.CodeOf(err))

	dt := models.DiscountType("bogo")
	_, err = svc.Update(ctx, a.ID.Hex(), repository.CouponPatch{DiscountType: &dt})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	require.NoError(t, svc.Delete(ctx, a.ID.Hex()))
	_, err = svc.Get(ctx, a.ID.Hex())
	assert.Equal(t, apperr.CodeCouponNotFound, apperr.CodeOf(err))
	assert.Equal(t, apperr.CodeCouponNotFound, apperr.CodeOf(svc.Delete(ctx, a.ID.Hex())))
}

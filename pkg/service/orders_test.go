package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/apperr"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/config"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/service/servicetest"
)

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type orderFixture struct {
	t        *testing.T
	svc      *OrderService
	products *servicetest.Products
	coupons  *servicetest.Coupons
	orders   *servicetest.Orders
	carts    *servicetest.Carts
	users    *servicetest.Users
	audit    *servicetest.Audit
	notifier *servicetest.Notifier
	settings models.Settings
}

func newOrderFixture(t *testing.T, checkout config.CheckoutConfig) *orderFixture {
	t.Helper()
	f := &orderFixture{
		t:        t,
		products: servicetest.NewProducts(),
		coupons:  servicetest.NewCoupons(),
		orders:   servicetest.NewOrders(),
		carts:    servicetest.NewCarts(),
		users:    servicetest.NewUsers(),
		audit:    &servicetest.Audit{},
		notifier: &servicetest.Notifier{},
	}
	f.settings = models.DefaultSettings()
	f.settings.TaxRate = 18
	f.settings.ShippingCost = 50
	f.settings.FreeShippingThreshold = 500

	f.svc = NewOrderService(OrderDeps{
		Products: f.products,
		Coupons:  f.coupons,
		Orders:   f.orders,
		Carts:    f.carts,
		Users:    f.users,
		Audit:    f.audit,
		Notifier: f.notifier,
		Logger:   zap.NewNop(),
		Clock:    fixedClock,
	}, checkout)
	return f
}

func (f *orderFixture) product(name string, price float64, stock int) primitive.ObjectID {
	return f.products.Put(models.Product{Name: name, Price: price, Stock: stock, IsActive: true})
}

func (f *orderFixture) coupon(code string, kind models.DiscountType, value float64, limit *int) {
	c := models.Coupon{
		ID:            primitive.NewObjectID(),
		Code:          code,
		DiscountType:  kind,
		DiscountValue: value,
		ValidFrom:     fixedNow.Add(-24 * time.Hour),
		ValidUntil:    fixedNow.Add(24 * time.Hour),
		UsageLimit:    limit,
		IsActive:      true,
	}
	require.NoError(f.t, f.coupons.Create(context.Background(), &c))
}

func (f *orderFixture) user(email string) primitive.ObjectID {
	u := models.User{ID: primitive.NewObjectID(), Email: email, Name: "Asha", Role: models.RoleUser, EmailVerified: true}
	require.NoError(f.t, f.users.Create(context.Background(), &u))
	return u.ID
}

func line(id primitive.ObjectID, qty int) OrderLine {
	return OrderLine{ProductID: id.Hex(), Quantity: qty}
}

func guestOrder(lines ...OrderLine) PlaceOrderRequest {
	return PlaceOrderRequest{
		Items: lines,
		ShippingAddress: ShippingInput{
			Name: "Ravi", Address: "12 Temple Road", City: "Varanasi", State: "UP",
			Pincode: "221001", Phone: "9876500000", Email: "ravi@example.com",
		},
	}
}

func TestPlaceOrderWithoutCoupon(t *testing.T) {
	f := newOrderFixture(t, config.CheckoutConfig{})
	id := f.product("Brass Diya", 100, 5)

	order, err := f.svc.PlaceOrder(context.Background(), f.settings, guestOrder(line(id, 3)))
	require.NoError(t, err)

	assert.Equal(t, 300.0, order.Subtotal)
	assert.Equal(t, 50.0, order.ShippingCost)
	assert.Equal(t, 54.0, order.Tax)
	assert.Equal(t, 404.0, order.Total)
	assert.Equal(t, 0.0, order.CouponDiscount)
	assert.Equal(t, models.OrderConfirmed, order.OrderStatus)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.Equal(t, models.PaymentCOD, order.PaymentMethod)
	assert.True(t, order.IsGuest())
	assert.Equal(t, 2, f.products.Stock(id))

	require.Len(t, order.Items, 1)
	assert.Equal(t, models.OrderItem{Product: id, Name: "Brass Diya", Price: 100, Quantity: 3}, order.Items[0])
	assert.Equal(t, "12 Temple Road", order.ShippingAddress.Street)
	assert.Equal(t, "221001", order.ShippingAddress.ZipCode)

	placed := f.notifier.Placed()
	require.Len(t, placed, 1)
	assert.Equal(t, "ravi@example.com", placed[0].Email)
	assert.Equal(t, "Ravi", placed[0].Name)
	assert.Equal(t, order.ID, placed[0].Order.ID)

	assert.Eventually(t, func() bool {
		actions := f.audit.Actions(order.ID.Hex())
		return len(actions) == 1 && actions[0] == ActionOrderCreated
	}, time.Second, 10*time.Millisecond)
}

func TestPlaceOrderWithFixedCoupon(t *testing.T) {
	f := newOrderFixture(t, config.CheckoutConfig{})
	id := f.product("Brass Diya", 100, 5)
	f.coupon("SAVE50", models.DiscountFixed, 50, nil)

	req := guestOrder(line(id, 3))
	req.CouponCode = " save50 "
	order, err := f.svc.PlaceOrder(context.Background(), f.settings, req)
	require.NoError(t, err)

	assert.Equal(t, 300.0, order.Subtotal)
	assert.Equal(t, 50.0, order.CouponDiscount)
	assert.Equal(t, 50.0, order.ShippingCost)
	assert.Equal(t, 45.0, order.Tax)
	assert.Equal(t, 345.0, order.Total)
	assert.Equal(t, "SAVE50", order.CouponCode)
	assert.Equal(t, 1, f.coupons.UsedCount("SAVE50"))
}

func TestPlaceOrderFreeShippingAboveThreshold(t *testing.T) {
	f := newOrderFixture(t, config.CheckoutConfig{})
	id := f.product("Puja Thali", 501, 2)

	order, err := f.svc.PlaceOrder(context.Background(), f.settings, guestOrder(line(id, 1)))
	require.NoError(t, err)
	assert.Equal(t, 0.0, order.ShippingCost)
	assert.Equal(t, 90.0, order.Tax)
	assert.Equal(t, 591.0, order.Total)
}

func TestCancelRestoresStockOnce(t *testing.T) {
	f := newOrderFixture(t, config.CheckoutConfig{})
	ctx := context.Background()
	userID := f.user("asha@example.com")
	id := f.product("Brass Diya", 100, 5)
	f.coupon("SAVE50", models.DiscountFixed, 50, nil)

	req := guestOrder(line(id, 3))
	req.UserID = &userID
	req.CouponCode = "SAVE50"
	order, err := f.svc.PlaceOrder(ctx, f.settings, req)
	require.NoError(t, err)
	require.Equal(t, 2, f.products.Stock(id))

	cancelled, err := f.svc.Cancel(ctx, userID, order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.OrderStatus)
	assert.Equal(t, 5, f.products.Stock(id))
	assert.Equal(t, 1, f.coupons.UsedCount("SAVE50"), "slot stays consumed by default")

	_, err = f.svc.Cancel(ctx, userID, order.ID.Hex())
	assert.Equal(t, apperr.CodeOrderNotCancellable, apperr.CodeOf(err))
	assert.Equal(t, 5, f.products.Stock(id))
}

func TestCancelReleasesCouponWhenConfigured(t *testing.T) {
	f := newOrderFixture(t, config.CheckoutConfig{ReleaseCouponOnCancel: true})
	ctx := context.Background()
	userID := f.user("asha@example.com")
	id := f.product("Brass Diya", 100, 5)
	f.coupon("SAVE50", models.DiscountFixed, 50, nil)

	req := guestOrder(line(id, 1))
	req.UserID = &userID
	req.CouponCode = "SAVE50"
	order, err := f.svc.PlaceOrder(ctx, f.settings, req)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, userID, order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 0, f.coupons.UsedCount("SAVE50"))
}

func TestCancelRejectsOtherUsersAndShippedOrders(t *testing.T) {
	f := newOrderFixture(t, config.CheckoutConfig{})
	ctx := context.Background()
	owner := f.user("asha@example.com")
	id := f.product("Brass Diya", 100, 5)

	req := guestOrder(line(id, 1))
	req.UserID = &owner
	order, err := f.svc.PlaceOrder(ctx, f.settings, req)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, primitive.NewObjectID(), order.ID.Hex())
	assert.Equal(t, apperr.CodeOrderNotFound, apperr.CodeOf(err))

	shipped := models.OrderShipped
	_, err = f.svc.UpdateStatus(ctx, "admin", order.ID.Hex(), repository.StatusPatch{OrderStatus: &shipped})
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, owner, order.ID.Hex())
	assert.Equal(t, apperr.CodeOrderNotCancellable, apperr.CodeOf(err))
	assert.Equal(t, 4, f.products.Stock(id))
}

func TestPlaceOrderStockBoundary(t *testing.T) {
	f := newOrderFixture(t, config.CheckoutConfig{})
	ctx := context.Background()

	over := f.product("Incense", 20, 5)
	_, err := f.svc.PlaceOrder(ctx, f.settings, guestOrder(line(over, 6)))
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInsufficientStock, apperr.CodeOf(err))
	assert.Equal(t, "Insufficient stock for Incense. Available: 5, Requested: 6", apperr.From(err).Message)
	assert.Equal(t, 5, f.products.Stock(over))
	assert.Equal(t, 0, f.orders.Len())

	_, err = f.svc.PlaceOrder(ctx, f.settings, guestOrder(line(over, 5)))
	require.NoError(t, err)
	assert.Equal(t, 0, f.products.Stock(over))
}

func TestPlaceOrderValidationOrder(t *testing.T) {
	f := newOrderFixture(t, config.CheckoutConfig{})
	ctx := context.Background()
	active := f.product("Kalash", 250, 1)
	inactive := f.products.Put(models.Product{Name: "Old Bell", Price: 90, Stock: 10})

	tests := []struct {
		name  string
		lines []OrderLine
		code  string
	}{
		{"missing product first", []OrderLine{line(primitive.NewObjectID(), 1), line(inactive, 1)}, apperr.CodeProductNotFound},
		{"inactive before stock", []OrderLine{line(inactive, 1), line(active, 9)}, apperr.CodeProductUnavailable},
		{"stock", []OrderLine{line(active, 2)}, apperr.CodeInsufficientStock},
		{"repeated lines add up", []OrderLine{line(active, 1), line(active, 1)}, apperr.CodeInsufficientStock},
		{"malformed id", []OrderLine{{ProductID: "nope", Quantity: 1}}, apperr.CodeValidation},
		{"zero quantity", []OrderLine{line(active, 0)}, apperr.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.PlaceOrder(ctx, f.settings, guestOrder(tt.lines...))
			assert.Equal(t, tt.code, apperr.CodeOf(err))
		})
	}

	_, err := f.svc.PlaceOrder(ctx, f.settings, guestOrder(line(primitive.NewObjectID(), 1)))
	assert.Equal(t, 404, apperr.From(err).Kind.Status())
	assert.Equal(t, 1, f.products.Stock(active))
	assert.Equal(t, 0, f.orders.Len())
}

func TestPlaceOrderCouponUsageLimit(t *testing.T) {
	f := newOrderFixture(t, config.CheckoutConfig{})
	ctx := context.Background()
	id := f.product("Camphor", 40, 100)
	limit := 2
	f.coupon("TWICE", models.DiscountPercentage, 10, &limit)

	for i := 0; i < limit; i++ {
		req := guestOrder(line(id, 1))
		req.CouponCode = "TWICE"
		_, err := f.svc.PlaceOrder(ctx, f.settings, req)
		require.NoError(t, err, "application %d", i+1)
	}

	req := guestOrder(line(id, 1))
	req.CouponCode = "TWICE"
	_, err := f.svc.PlaceOrder(ctx, f.settings, req)
	assert.Equal(t, apperr.CodeCouponLimitReached, apperr.CodeOf(err))
	assert.Equal(t, 2, f.coupons.UsedCount("TWICE"))
	assert.Equal(t, 98, f.products.Stock(id))
}

func TestPlaceOrderRejectsUnusableCoupons(t *testing.T) {
	f := newOrderFixture(t, config.CheckoutConfig{})
	ctx := context.Background()
	id := f.product("Camphor", 40, 100)

	expired := models.Coupon{
		ID: primitive.NewObjectID(), Code: "OLD", DiscountType: models.DiscountFixed, DiscountValue: 5,
		ValidFrom: fixedNow.Add(-48 * time.Hour), ValidUntil: fixedNow.Add(-time.Hour), IsActive: true,
	}
	minOrder := models.Coupon{
		ID: primitive.NewObjectID(), Code: "BIG", DiscountType: models.DiscountFixed, DiscountValue: 5,
		MinOrderValue: 1000, ValidFrom: fixedNow.Add(-time.Hour), ValidUntil: fixedNow.Add(time.Hour), IsActive: true,
	}
	require.NoError(t, f.coupons.Create(ctx, &expired))
	require.NoError(t, f.coupons.Create(ctx, &minOrder))

	tests := map[string]string{
		"OLD":     apperr.CodeCouponExpired,
		"BIG":     apperr.CodeCouponMinOrder,
		"MISSING": apperr.CodeCouponNotFound,
	}
	for code, want := range tests {
		t.Run(code, func(t *testing.T) {
			req := guestOrder(line(id, 1))
			req.CouponCode = code
			_, err := f.svc.PlaceOrder(ctx, f.settings, req)
			assert.Equal(t, want, apperr.CodeOf(err))
		})
	}
	assert.Equal(t, 100, f.products.Stock(id))
	assert.Equal(t, 0, f.orders.Len())
}

func TestConcurrentOrdersForLastUnit(t *testing.T) {
	f := newOrderFixture(t, config.CheckoutConfig{})
	id := f.product("Rudraksha Mala", 1100, 1)

	const buyers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		codes   []string
	)
	start := make(chan struct{})
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.svc.PlaceOrder(context.Background(), f.settings, guestOrder(line(id, 1)))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				success++
				return
			}
			codes = append(codes, apperr.CodeOf(err))
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, success)
	require.Len(t, codes, buyers-1)
	for _, c := range codes {
		assert.Equal(t, apperr.CodeInsufficientStock, c)
	}
	assert.Equal(t, 0, f.products.Stock(id))
	assert.Equal(t, 1, f.orders.Len())
}

func TestPlaceOrderCompensatesOnFailure(t *testing.T) {
	f := newOrderFixture(t, config.CheckoutConfig{})
	ctx := context.Background()
	first := f.product("Ghee Lamp", 60, 4)
	second := f.product("Cotton Wicks", 10, 4)
	f.coupon("SAVE10", models.DiscountFixed, 10, nil)

	boom := errors.New("write conflict")
	f.products.DecrementHook = func(id primitive.ObjectID, _ int) error {
		if id == second {
			return boom
		}
		return nil
	}

	req := guestOrder(line(first, 2), line(second, 1))
	req.CouponCode = "SAVE10"
	_, err := f.svc.PlaceOrder(ctx, f.settings, req)
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 4, f.products.Stock(first))
	assert.Equal(t, 4, f.products.Stock(second))
	assert.Equal(t, 0, f.coupons.UsedCount("SAVE10"))
	assert.Equal(t, 0, f.orders.Len())
	assert.Empty(t, f.notifier.Placed())
}

func TestPlaceOrderFailedInsertTouchesNothing(t *testing.T) {
	f := newOrderFixture(t, config.CheckoutConfig{})
	id := f.product("Ghee Lamp", 60, 4)
	f.orders.CreateErr = errors.New("mongo down")

	_, err := f.svc.PlaceOrder(context.Background(), f.settings, guestOrder(line(id, 1)))
	require.Error(t, err)
	assert.Equal(t, 4, f.products.Stock(id))
}

func TestPlaceOrderFromCart(t *testing.T) {
	f := newOrderFixture(t, config.CheckoutConfig{})
	ctx := context.Background()
	userID := f.user("asha@example.com")
	id := f.product("Brass Diya", 100, 5)
	require.NoError(t, f.carts.Save(ctx, &models.Cart{User: userID, Items: []models.CartItem{{Product: id, Quantity: 2}}}))

	order, err := f.svc.PlaceOrder(ctx, f.settings, PlaceOrderRequest{
		UserID:          &userID,
		ShippingAddress: ShippingInput{Street: "5 Ghat Lane", City: "Ujjain"},
	})
	require.NoError(t, err)
	assert.Equal(t, userID, *order.User)
	assert.Equal(t, 200.0, order.Subtotal)
	assert.Equal(t, 3, f.products.Stock(id))

	_, err = f.carts.Get(ctx, userID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	placed := f.notifier.Placed()
	require.Len(t, placed, 1)
	assert.Equal(t, "asha@example.com", placed[0].Email, "falls back to the account email")
	assert.Equal(t, "Asha", placed[0].Name)
}

func TestPlaceOrderExplicitItemsKeepCart(t *testing.T) {
	f := newOrderFixture(t, config.CheckoutConfig{})
	ctx := context.Background()
	userID := f.user("asha@example.com")
	inCart := f.product("Brass Diya", 100, 5)
	explicit := f.product("Kumkum", 30, 5)
	require.NoError(t, f.carts.Save(ctx, &models.Cart{User: userID, Items: []models.CartItem{{Product: inCart, Quantity: 1}}}))

	req := guestOrder(line(explicit, 1))
	req.UserID = &userID
	order, err := f.svc.PlaceOrder(ctx, f.settings, req)
	require.NoError(t, err)
	assert.Equal(t, explicit, order.Items[0].Product)
	assert.Equal(t, 5, f.products.Stock(inCart))

	cart, err := f.carts.Get(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestPlaceOrderWithoutItems(t *testing.T) {
	f := newOrderFixture(t, config.CheckoutConfig{})
	ctx := context.Background()

	_, err := f.svc.PlaceOrder(ctx, f.settings, PlaceOrderRequest{})
	assert.Equal(t, apperr.CodeEmptyOrder, apperr.CodeOf(err))
	assert.Equal(t, "No items provided and no cart found", apperr.From(err).Message)

	userID := f.user("asha@example.com")
	_, err = f.svc.PlaceOrder(ctx, f.settings, PlaceOrderRequest{UserID: &userID})
	assert.Equal(t, apperr.CodeEmptyOrder, apperr.CodeOf(err))
	assert.Equal(t, "Cart is empty", apperr.From(err).Message)
}

func TestPlaceOrderWithoutEmailSkipsNotification(t *testing.T) {
	f := newOrderFixture(t, config.CheckoutConfig{})
	id := f.product("Brass Diya", 100, 5)

	req := guestOrder(line(id, 1))
	req.ShippingAddress.Email = ""
	_, err := f.svc.PlaceOrder(context.Background(), f.settings, req)
	require.NoError(t, err)
	assert.Empty(t, f.notifier.Placed())
}

func TestPlaceOrderRejectsUnknownPaymentMethod(t *testing.T) {
	f := newOrderFixture(t, config.CheckoutConfig{})
	id := f.product("Brass Diya", 100, 5)

	req := guestOrder(line(id, 1))
	req.PaymentMethod = "card"
	_, err := f.svc.PlaceOrder(context.Background(), f.settings, req)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}

func TestUpdateStatus(t *testing.T) {
	f := newOrderFixture(t, config.CheckoutConfig{})
	ctx := context.Background()
	id := f.product("Brass Diya", 100, 5)
	order, err := f.svc.PlaceOrder(ctx, f.settings, guestOrder(line(id, 2)))
	require.NoError(t, err)

	delivered, pending := models.OrderDelivered, models.OrderPending
	paid := models.PaymentPaid
	bogus := models.OrderStatus("lost")

	got, err := f.svc.UpdateStatus(ctx, "admin", order.ID.Hex(), repository.StatusPatch{OrderStatus: &delivered, PaymentStatus: &paid})
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, got.OrderStatus)
	assert.Equal(t, models.PaymentPaid, got.PaymentStatus)

	got, err = f.svc.UpdateStatus(ctx, "admin", order.ID.Hex(), repository.StatusPatch{OrderStatus: &pending})
	require.NoError(t, err, "no transition table")
	assert.Equal(t, models.OrderPending, got.OrderStatus)
	assert.Equal(t, 3, f.products.Stock(id))

	_, err = f.svc.UpdateStatus(ctx, "admin", order.ID.Hex(), repository.StatusPatch{OrderStatus: &bogus})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	_, err = f.svc.UpdateStatus(ctx, "admin", order.ID.Hex(), repository.StatusPatch{})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	_, err = f.svc.UpdateStatus(ctx, "admin", primitive.NewObjectID().Hex(), repository.StatusPatch{OrderStatus: &pending})
	assert.Equal(t, apperr.CodeOrderNotFound, apperr.CodeOf(err))
}

func TestOrderReads(t *testing.T) {
	f := newOrderFixture(t, config.CheckoutConfig{})
	ctx := context.Background()
	userID := f.user("asha@example.com")
	id := f.product("Camphor", 40, 100)

	for i := 0; i < 3; i++ {
		req := guestOrder(line(id, 1))
		req.UserID = &userID
		_, err := f.svc.PlaceOrder(ctx, f.settings, req)
		require.NoError(t, err)
	}
	_, err := f.svc.PlaceOrder(ctx, f.settings, guestOrder(line(id, 1)))
	require.NoError(t, err)

	mine, err := f.svc.ListMine(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	_, err = f.svc.GetMine(ctx, primitive.NewObjectID(), mine[0].ID.Hex())
	assert.Equal(t, apperr.CodeOrderNotFound, apperr.CodeOf(err))

	page, err := f.svc.ListAll(ctx, "", repository.Page{Number: 1, Size: 3})
	require.NoError(t, err)
	assert.Len(t, page.Orders, 3)
	assert.Equal(t, int64(4), page.Pagination.Total)
	assert.Equal(t, int64(2), page.Pagination.Pages)

	page, err = f.svc.ListAll(ctx, models.OrderConfirmed, repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, 20, page.Pagination.Limit)
	assert.Len(t, page.Orders, 4)

	_, err = f.svc.ListAll(ctx, "lost", repository.Page{})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}

func TestOrderReadsResolveProducts(t *testing.T) {
	f := newOrderFixture(t, config.CheckoutConfig{})
	ctx := context.Background()
	userID := f.user("asha@example.com")
	diya := f.products.Put(models.Product{Name: "Brass Diya", Price: 100, Stock: 5, Images: []string{"/uploads/diya.jpg"}, IsActive: true})
	mala := f.product("Rudraksha Mala", 250, 2)

	req := guestOrder(line(diya, 1), line(mala, 1))
	req.UserID = &userID
	placed, err := f.svc.PlaceOrder(ctx, f.settings, req)
	require.NoError(t, err)
	require.NoError(t, f.products.Delete(ctx, mala))

	got, err := f.svc.GetMine(ctx, userID, placed.ID.Hex())
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	require.NotNil(t, got.Items[0].ProductInfo)
	assert.Equal(t, "Brass Diya", got.Items[0].ProductInfo.Name)
	assert.Equal(t, []string{"/uploads/diya.jpg"}, got.Items[0].ProductInfo.Images)
	assert.Equal(t, 100.0, got.Items[0].ProductInfo.Price)
	assert.Nil(t, got.Items[1].ProductInfo)
	assert.Equal(t, "Rudraksha Mala", got.Items[1].Name)

	mine, err := f.svc.ListMine(ctx, userID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Items[0].ProductInfo)
	assert.Equal(t, diya, mine[0].Items[0].ProductInfo.ID)

	page, err := f.svc.ListAll(ctx, "", repository.Page{})
	require.NoError(t, err)
	require.NotNil(t, page.Orders[0].Items[0].ProductInfo)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/apperr"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/config"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/pricing"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/saga"
)

const (
	auditService = "order-service"
	auditTimeout = 5 * time.Second

	ActionOrderCreated   = "create_order"
	ActionOrderCancelled = "cancel_order"
	ActionStatusUpdated  = "update_status"
)

type OrderDeps struct {
	Products ProductStore
	Coupons  CouponStore
	Orders   OrderStore
	Carts    CartStore
	Users    UserStore
	Audit    AuditLogger
	Notifier Notifier
	Logger   *zap.Logger
	Clock    Clock
}

type OrderService struct {
	products ProductStore
	coupons  CouponStore
	orders   OrderStore
	carts    CartStore
	users    UserStore
	audit    AuditLogger
	notifier Notifier
	checkout config.CheckoutConfig
	logger   *zap.Logger
	now      Clock
}

func NewOrderService(deps OrderDeps, checkout config.CheckoutConfig) *OrderService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		products: deps.Products,
		coupons:  deps.Coupons,
		orders:   deps.Orders,
		carts:    deps.Carts,
		users:    deps.Users,
		audit:    deps.Audit,
		notifier: deps.Notifier,
		checkout: checkout,
		logger:   logger.Named("orders"),
		now:      clockOrDefault(deps.Clock),
	}
}

type OrderLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// ShippingInput accepts both the storefront field names and the legacy
// address/pincode aliases.
type ShippingInput struct {
	Name    string `json:"name"`
	Street  string `json:"street"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func (in ShippingInput) address() models.ShippingAddress {
	return models.ShippingAddress{
		Name:    firstNonEmpty(in.Name),
		Street:  firstNonEmpty(in.Address, in.Street),
		City:    strings.TrimSpace(in.City),
		State:   strings.TrimSpace(in.State),
		ZipCode: firstNonEmpty(in.Pincode, in.ZipCode),
		Phone:   strings.TrimSpace(in.Phone),
		Email:   strings.TrimSpace(in.Email),
	}
}

type PlaceOrderRequest struct {
	// UserID is set from the bearer token, never from the body.
	UserID          *primitive.ObjectID  `json:"-"`
	Items           []OrderLine          `json:"items"`
	ShippingAddress ShippingInput        `json:"shippingAddress"`
	PaymentMethod   models.PaymentMethod `json:"paymentMethod"`
	CouponCode      string               `json:"couponCode"`
	Notes           string               `json:"notes"`
}

// checkoutLine is a validated line with the product it was priced from.
type checkoutLine struct {
	product  models.Product
	quantity int
}

// PlaceOrder validates req against the catalog and coupon ledger, prices it
// under settings and persists it. Stock and coupon usage are taken with
// atomic conditional updates; when one of them fails the steps already done
// are undone and the typed error is returned.
func (s *OrderService) PlaceOrder(ctx context.Context, settings models.Settings, req PlaceOrderRequest) (*models.Order, error) {
	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentCOD
	}
	if !req.PaymentMethod.Valid() {
		return nil, apperr.Validationf("Invalid payment method: %s", req.PaymentMethod)
	}

	var user *models.User
	if req.UserID != nil {
		u, err := s.users.Get(ctx, *req.UserID)
		switch {
		case err == nil:
			user = u
		case errors.Is(err, repository.ErrNotFound):
			// a token for a deleted account checks out as a guest
			req.UserID = nil
		default:
			return nil, err
		}
	}

	requested, fromCart, err := s.requestedLines(ctx, req)
	if err != nil {
		return nil, err
	}
	lines, err := s.validateLines(ctx, requested)
	if err != nil {
		return nil, err
	}

	priced := make([]pricing.Line, len(lines))
	items := make([]models.OrderItem, len(lines))
	for i, l := range lines {
		priced[i] = pricing.Line{Price: l.product.Price, Quantity: l.quantity}
		items[i] = models.OrderItem{
			Product:  l.product.ID,
			Name:     l.product.Name,
			Price:    l.product.Price,
			Quantity: l.quantity,
		}
	}

	now := s.now()
	var coupon *models.Coupon
	if code := models.NormalizeCode(req.CouponCode); code != "" {
		coupon, err = s.checkCoupon(ctx, code, pricing.Subtotal(priced).InexactFloat64(), now)
		if err != nil {
			return nil, err
		}
	}
	totals := pricing.Compute(priced, coupon, pricing.RatesFrom(settings))

	order := &models.Order{
		ID:              primitive.NewObjectID(),
		User:            req.UserID,
		Items:           items,
		ShippingAddress: req.ShippingAddress.address(),
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   models.PaymentPending,
		OrderStatus:     models.OrderConfirmed,
		Subtotal:        totals.Subtotal,
		ShippingCost:    totals.ShippingCost,
		Tax:             totals.Tax,
		Total:           totals.Total,
		CouponDiscount:  totals.Discount,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if coupon != nil {
		order.CouponCode = coupon.Code
	}
	email, name := order.ShippingAddress.Email, order.ShippingAddress.Name
	if user != nil {
		email = firstNonEmpty(email, user.Email)
		name = firstNonEmpty(name, user.Name)
		order.ShippingAddress.Email = email
	}

	if err := s.persist(ctx, order, lines, now); err != nil {
		return nil, err
	}

	if fromCart {
		if err := s.carts.Delete(ctx, *req.UserID); err != nil {
			s.logger.Warn("failed to delete cart after order",
				zap.String("order_id", order.ID.Hex()), zap.Error(err))
		}
	}

	s.record(ActionOrderCreated, order.ID, actorOf(order.User), bson.M{
		"total":       order.Total,
		"items":       len(order.Items),
		"coupon_code": order.CouponCode,
		"guest":       order.IsGuest(),
	})

	s.logger.Info("order placed",
		zap.String("order_id", order.ID.Hex()),
		zap.Bool("guest", order.IsGuest()),
		zap.Float64("total", order.Total),
	)

	if email != "" && s.notifier != nil {
		s.notifier.OrderPlaced(*order, settings, email, name)
	} else {
		s.logger.Debug("no email for order confirmation", zap.String("order_id", order.ID.Hex()))
	}
	return order, nil
}

// requestedLines picks the line source: explicit items win, otherwise the
// signed-in user's cart.
func (s *OrderService) requestedLines(ctx context.Context, req PlaceOrderRequest) ([]OrderLine, bool, error) {
	if len(req.Items) > 0 {
		return req.Items, false, nil
	}
	if req.UserID == nil {
		return nil, false, apperr.New(apperr.KindValidation, apperr.CodeEmptyOrder, "No items provided and no cart found")
	}

	cart, err := s.carts.Get(ctx, *req.UserID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, false, apperr.New(apperr.KindValidation, apperr.CodeEmptyOrder, "Cart is empty")
	}
	lines := make([]OrderLine, len(cart.Items))
	for i, it := range cart.Items {
		lines[i] = OrderLine{ProductID: it.Product.Hex(), Quantity: it.Quantity}
	}
	return lines, true, nil
}

// validateLines checks each line in order and stops at the first failure.
// Stock is checked against the running total requested per product.
func (s *OrderService) validateLines(ctx context.Context, requested []OrderLine) ([]checkoutLine, error) {
	lines := make([]checkoutLine, 0, len(requested))
	cumulative := map[primitive.ObjectID]int{}

	for _, r := range requested {
		if strings.TrimSpace(r.ProductID) == "" {
			return nil, apperr.Validation("Product ID is required for all items")
		}
		id, err := parseID(r.ProductID, "product")
		if err != nil {
			return nil, err
		}
		if r.Quantity < 1 {
			return nil, apperr.Validation("Quantity must be at least 1")
		}

		p, err := s.products.Get(ctx, id)
		if err != nil {
			return nil, notFound(err, apperr.CodeProductNotFound, "Product not found: "+r.ProductID)
		}
		if !p.IsActive {
			return nil, apperr.Conflict(apperr.CodeProductUnavailable,
				fmt.Sprintf("Product %s is not available", p.Name))
		}
		cumulative[id] += r.Quantity
		if p.Stock < cumulative[id] {
			return nil, stockError(p.Name, p.Stock, cumulative[id])
		}
		lines = append(lines, checkoutLine{product: *p, quantity: r.Quantity})
	}
	return lines, nil
}

func stockError(name string, available, requested int) error {
	return apperr.Conflict(apperr.CodeInsufficientStock,
		fmt.Sprintf("Insufficient stock for %s. Available: %d, Requested: %d", name, available, requested))
}

func (s *OrderService) checkCoupon(ctx context.Context, code string, subtotal float64, now time.Time) (*models.Coupon, error) {
	c, err := s.coupons.GetByCode(ctx, code)
	if err != nil {
		return nil, notFound(err, apperr.CodeCouponNotFound, invalidCoupon)
	}
	if err := couponError(c, now); err != nil {
		return nil, err
	}
	if err := minOrderError(c, subtotal); err != nil {
		return nil, err
	}
	return c, nil
}

// persist writes the order, consumes the coupon and reserves stock as one
// saga.
func (s *OrderService) persist(ctx context.Context, order *models.Order, lines []checkoutLine, now time.Time) error {
	orch := saga.NewOrchestrator(s.logger.With(zap.String("order_id", order.ID.Hex())))

	orch.Add(saga.Func{
		StepName: "create_order",
		DoFn: func(ctx context.Context) error {
			return s.orders.Create(ctx, order)
		},
		UndoFn: func(ctx context.Context) error {
			return s.orders.Delete(ctx, order.ID)
		},
	})

	if order.CouponCode != "" {
		code := order.CouponCode
		orch.Add(saga.Func{
			StepName: "consume_coupon",
			DoFn: func(ctx context.Context) error {
				_, err := s.coupons.Consume(ctx, code, now)
				if errors.Is(err, repository.ErrCouponUnusable) {
					return s.unusableCoupon(ctx, code, now)
				}
				return err
			},
			UndoFn: func(ctx context.Context) error {
				return s.coupons.Release(ctx, code)
			},
		})
	}

	for _, l := range lines {
		orch.Add(saga.Func{
			StepName: "reserve_stock:" + l.product.ID.Hex(),
			DoFn: func(ctx context.Context) error {
				err := s.products.DecrementStock(ctx, l.product.ID, l.quantity)
				if errors.Is(err, repository.ErrInsufficientStock) {
					available := 0
					if p, gerr := s.products.Get(ctx, l.product.ID); gerr == nil {
						available = p.Stock
					}
					return stockError(l.product.Name, available, l.quantity)
				}
				return notFound(err, apperr.CodeProductNotFound, "Product not found: "+l.product.ID.Hex())
			},
			UndoFn: func(ctx context.Context) error {
				return s.products.IncrementStock(ctx, l.product.ID, l.quantity)
			},
		})
	}

	err := orch.Run(ctx)
	var cerr *saga.CompensationError
	if errors.As(err, &cerr) {
		s.logger.Error("order rollback incomplete",
			zap.String("order_id", order.ID.Hex()),
			zap.Errors("failures", cerr.Failed),
		)
	}
	return err
}

// unusableCoupon explains a lost race on the usage counter.
func (s *OrderService) unusableCoupon(ctx context.Context, code string, now time.Time) error {
	c, err := s.coupons.GetByCode(ctx, code)
	if err != nil {
		return notFound(err, apperr.CodeCouponNotFound, invalidCoupon)
	}
	if err := couponError(c, now); err != nil {
		return err
	}
	return apperr.Conflict(apperr.CodeCouponLimitReached, "Coupon usage limit reached")
}

// Cancel cancels the user's order from pending or confirmed and puts the
// stock back. The coupon slot is returned only when configured.
func (s *OrderService) Cancel(ctx context.Context, userID primitive.ObjectID, idHex string) (*models.Order, error) {
	id, err := parseID(idHex, "order")
	if err != nil {
		return nil, err
	}

	order, err := s.orders.Cancel(ctx, id, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperr.NotFound(apperr.CodeOrderNotFound, "Order not found")
	case errors.Is(err, repository.ErrNotCancellable):
		return nil, apperr.Conflict(apperr.CodeOrderNotCancellable, "Cannot cancel this order")
	case err != nil:
		return nil, err
	}

	log := s.logger.With(zap.String("order_id", order.ID.Hex()))
	for _, it := range order.Items {
		if err := s.products.IncrementStock(ctx, it.Product, it.Quantity); err != nil {
			log.Error("failed to restore stock",
				zap.String("product_id", it.Product.Hex()),
				zap.Int("quantity", it.Quantity),
				zap.Error(err),
			)
		}
	}

	if order.CouponCode != "" && s.checkout.ReleaseCouponOnCancel {
		if err := s.coupons.Release(ctx, order.CouponCode); err != nil {
			log.Warn("failed to release coupon", zap.String("code", order.CouponCode), zap.Error(err))
		}
	}

	s.record(ActionOrderCancelled, order.ID, userID.Hex(), bson.M{"items": len(order.Items)})
	log.Info("order cancelled")
	return order, nil
}

// UpdateStatus overwrites the status fields. Any value in the enums is
// accepted from any state.
func (s *OrderService) UpdateStatus(ctx context.Context, actor, idHex string, patch repository.StatusPatch) (*models.Order, error) {
	id, err := parseID(idHex, "order")
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, apperr.Validation("orderStatus or paymentStatus is required")
	}
	if patch.OrderStatus != nil && !patch.OrderStatus.Valid() {
		return nil, apperr.Validationf("Invalid order status: %s", *patch.OrderStatus)
	}
	if patch.PaymentStatus != nil && !patch.PaymentStatus.Valid() {
		return nil, apperr.Validationf("Invalid payment status: %s", *patch.PaymentStatus)
	}

	order, err := s.orders.UpdateStatus(ctx, id, patch)
	if err != nil {
		return nil, notFound(err, apperr.CodeOrderNotFound, "Order not found")
	}
	s.record(ActionStatusUpdated, order.ID, actor, bson.M{
		"orderStatus":   order.OrderStatus,
		"paymentStatus": order.PaymentStatus,
	})
	return order, nil
}

func (s *OrderService) ListMine(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.expandItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *OrderService) GetMine(ctx context.Context, userID primitive.ObjectID, idHex string) (*models.Order, error) {
	id, err := parseID(idHex, "order")
	if err != nil {
		return nil, err
	}
	o, err := s.orders.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, notFound(err, apperr.CodeOrderNotFound, "Order not found")
	}
	one := []models.Order{*o}
	if err := s.expandItems(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// expandItems attaches the current product to every order line with one
// catalog lookup. Lines whose product is gone keep only their snapshot.
func (s *OrderService) expandItems(ctx context.Context, orders []models.Order) error {
	var ids []primitive.ObjectID
	for _, o := range orders {
		for _, it := range o.Items {
			ids = append(ids, it.Product)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	found, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[primitive.ObjectID]models.ProductRef, len(found))
	for i := range found {
		byID[found[i].ID] = found[i].Ref()
	}
	for i := range orders {
		for j := range orders[i].Items {
			if ref, ok := byID[orders[i].Items[j].Product]; ok {
				orders[i].Items[j].ProductInfo = &ref
			}
		}
	}
	return nil
}

type OrderPage struct {
	Orders     []models.Order `json:"orders"`
	Pagination Pagination     `json:"pagination"`
}

func (s *OrderService) ListAll(ctx context.Context, status models.OrderStatus, page repository.Page) (*OrderPage, error) {
	if status != "" && !status.Valid() {
		return nil, apperr.Validationf("Invalid order status: %s", status)
	}
	page = page.Normalize(20)
	orders, total, err := s.orders.List(ctx, repository.OrderFilter{Status: status, Page: page})
	if err != nil {
		return nil, err
	}
	if err := s.expandItems(ctx, orders); err != nil {
		return nil, err
	}
	return &OrderPage{Orders: orders, Pagination: newPagination(page, total)}, nil
}

// History returns the newest audit entries for an order.
func (s *OrderService) History(ctx context.Context, idHex string, limit int64) ([]*repository.AuditLog, error) {
	id, err := parseID(idHex, "order")
	if err != nil {
		return nil, err
	}
	if s.audit == nil {
		return []*repository.AuditLog{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.audit.GetAuditLogs(ctx, id.Hex(), limit)
}

func actorOf(user *primitive.ObjectID) string {
	if user == nil {
		return "guest"
	}
	return user.Hex()
}

// record writes an audit entry in the background.
func (s *OrderService) record(action string, orderID primitive.ObjectID, actor string, data bson.M) {
	if s.audit == nil {
		return
	}
	entry := &repository.AuditLog{
		Service:   auditService,
		Action:    action,
		EntityID:  orderID.Hex(),
		Actor:     actor,
		Data:      data,
		CreatedAt: s.now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()
		if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
			s.logger.Warn("failed to write audit log",
				zap.String("action", action),
				zap.String("order_id", entry.EntityID),
				zap.Error(err),
			)
		}
	}()
}

package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/apperr"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
)

// CartLine is a cart item with its product resolved. Product is nil when
// the product no longer exists.
type CartLine struct {
	Product   *models.ProductRef `json:"product"`
	ProductID primitive.ObjectID `json:"productId"`
	Quantity  int                `json:"quantity"`
}

type CartView struct {
	ID    primitive.ObjectID `json:"id,omitempty"`
	User  primitive.ObjectID `json:"user,omitempty"`
	Items []CartLine         `json:"items"`
	Total float64            `json:"total"`
}

type CartService struct {
	carts    CartStore
	products ProductStore
	logger   *zap.Logger
	now      Clock
}

func NewCartService(carts CartStore, products ProductStore, logger *zap.Logger, clock Clock) *CartService {
	return &CartService{carts: carts, products: products, logger: logger.Named("cart"), now: clockOrDefault(clock)}
}

// Get returns the user's cart, or an empty one when none is stored.
func (s *CartService) Get(ctx context.Context, userID primitive.ObjectID) (*CartView, error) {
	c, err := s.carts.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return &CartView{Items: []CartLine{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// view resolves products and totals the lines at their current price.
func (s *CartService) view(ctx context.Context, c *models.Cart) (*CartView, error) {
	ids := make([]primitive.ObjectID, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.Product)
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	v := &CartView{ID: c.ID, User: c.User, Items: make([]CartLine, 0, len(c.Items))}
	total := decimal.Zero
	for _, it := range c.Items {
		line := CartLine{ProductID: it.Product, Quantity: it.Quantity}
		if p, ok := byID[it.Product]; ok {
			ref := p.Ref()
			line.Product = &ref
			total = total.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		v.Items = append(v.Items, line)
	}
	v.Total = total.InexactFloat64()
	return v, nil
}

func (s *CartService) product(ctx context.Context, idHex string) (*models.Product, error) {
	id, err := parseID(idHex, "product")
	if err != nil {
		return nil, err
	}
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, apperr.CodeProductNotFound, "Product not found")
	}
	return p, nil
}

func insufficientStock() error {
	return apperr.Conflict(apperr.CodeInsufficientStock, "Insufficient stock")
}

// Add puts quantity units of the product in the cart, merging with an
// existing line. Stock is checked against the merged quantity. A zero
// quantity means one.
func (s *CartService) Add(ctx context.Context, userID primitive.ObjectID, productID string, quantity int) (*CartView, error) {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, apperr.Validation("Quantity must be at least 1")
	}
	p, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}

	c, err := s.carts.Get(ctx, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c = &models.Cart{User: userID, CreatedAt: s.now()}
	case err != nil:
		return nil, err
	}

	merged := quantity
	i, found := c.Find(p.ID)
	if found {
		merged += c.Items[i].Quantity
	}
	if p.Stock < merged {
		return nil, insufficientStock()
	}

	if found {
		c.Items[i].Quantity = merged
	} else {
		c.Items = append(c.Items, models.CartItem{Product: p.ID, Quantity: quantity})
	}
	c.UpdatedAt = s.now()
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

func (s *CartService) Update(ctx context.Context, userID primitive.ObjectID, productID string, quantity int) (*CartView, error) {
	if quantity < 1 {
		return nil, apperr.Validation("Quantity must be at least 1")
	}
	id, err := parseID(productID, "product")
	if err != nil {
		return nil, err
	}
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, notFound(err, apperr.CodeCartNotFound, "Cart not found")
	}
	i, ok := c.Find(id)
	if !ok {
		return nil, apperr.NotFound(apperr.CodeCartItemNotFound, "Item not in cart")
	}

	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, apperr.CodeProductNotFound, "Product not found")
	}
	if p.Stock < quantity {
		return nil, insufficientStock()
	}

	c.Items[i].Quantity = quantity
	c.UpdatedAt = s.now()
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

func (s *CartService) Remove(ctx context.Context, userID primitive.ObjectID, productID string) (*CartView, error) {
	id, err := parseID(productID, "product")
	if err != nil {
		return nil, err
	}
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, notFound(err, apperr.CodeCartNotFound, "Cart not found")
	}
	c.Remove(id)
	c.UpdatedAt = s.now()
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

func (s *CartService) Clear(ctx context.Context, userID primitive.ObjectID) error {
	return s.carts.Delete(ctx, userID)
}

package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/apperr"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
)

type CatalogService struct {
	products   ProductStore
	categories CategoryStore
	logger     *zap.Logger
	now        Clock
}

func NewCatalogService(products ProductStore, categories CategoryStore, logger *zap.Logger, clock Clock) *CatalogService {
	return &CatalogService{
		products:   products,
		categories: categories,
		logger:     logger.Named("catalog"),
		now:        clockOrDefault(clock),
	}
}

// ProductInput is the body of a product create. IsActive defaults to true.
type ProductInput struct {
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	Price          float64            `json:"price"`
	OriginalPrice  *float64           `json:"originalPrice"`
	Category       primitive.ObjectID `json:"category"`
	Images         []string           `json:"images"`
	Stock          int                `json:"stock"`
	Featured       bool               `json:"featured"`
	IsBestseller   bool               `json:"isBestseller"`
	IsActive       *bool              `json:"isActive"`
	Specifications map[string]string  `json:"specifications"`
}

func (in ProductInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return apperr.Validation("Product name is required")
	case in.Price < 0:
		return apperr.Validation("Price must not be negative")
	case in.OriginalPrice != nil && *in.OriginalPrice < 0:
		return apperr.Validation("Original price must not be negative")
	case in.Stock < 0:
		return apperr.Validation("Stock must not be negative")
	case in.Category.IsZero():
		return apperr.Validation("Category is required")
	}
	return nil
}

func (s *CatalogService) newProduct(in ProductInput) *models.Product {
	now := s.now()
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	images := in.Images
	if images == nil {
		images = []string{}
	}
	return &models.Product{
		ID:             primitive.NewObjectID(),
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		Price:          in.Price,
		OriginalPrice:  in.OriginalPrice,
		Category:       in.Category,
		Images:         images,
		Stock:          in.Stock,
		Featured:       in.Featured,
		IsBestseller:   in.IsBestseller,
		IsActive:       active,
		Specifications: in.Specifications,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func validatePatch(p repository.ProductPatch) error {
	switch {
	case p.Name != nil && strings.TrimSpace(*p.Name) == "":
		return apperr.Validation("Product name is required")
	case p.Price != nil && *p.Price < 0:
		return apperr.Validation("Price must not be negative")
	case p.OriginalPrice != nil && *p.OriginalPrice < 0:
		return apperr.Validation("Original price must not be negative")
	case p.Stock != nil && *p.Stock < 0:
		return apperr.Validation("Stock must not be negative")
	case p.Category != nil && p.Category.IsZero():
		return apperr.Validation("Category is required")
	}
	return nil
}

type ProductPage struct {
	Products   []models.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

func (s *CatalogService) ListProducts(ctx context.Context, f repository.ProductFilter) (*ProductPage, error) {
	f.Page = f.Page.Normalize(12)
	products, total, err := s.products.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := s.attachCategories(ctx, products); err != nil {
		return nil, err
	}
	return &ProductPage{Products: products, Pagination: newPagination(f.Page, total)}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, idHex string) (*models.Product, error) {
	id, err := parseID(idHex, "product")
	if err != nil {
		return nil, err
	}
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, apperr.CodeProductNotFound, "Product not found")
	}
	products := []models.Product{*p}
	if err := s.attachCategories(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// attachCategories fills CategoryInfo with one category lookup per page.
func (s *CatalogService) attachCategories(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	seen := map[primitive.ObjectID]bool{}
	ids := make([]primitive.ObjectID, 0, len(products))
	for _, p := range products {
		if !p.Category.IsZero() && !seen[p.Category] {
			seen[p.Category] = true
			ids = append(ids, p.Category)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	categories, err := s.categories.GetMany(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[primitive.ObjectID]*models.CategoryRef, len(categories))
	for i := range categories {
		byID[categories[i].ID] = categories[i].Ref()
	}
	for i := range products {
		products[i].CategoryInfo = byID[products[i].Category]
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := s.newProduct(in)
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("product created", zap.String("product_id", p.ID.Hex()), zap.String("name", p.Name))
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, idHex string, patch repository.ProductPatch) (*models.Product, error) {
	id, err := parseID(idHex, "product")
	if err != nil {
		return nil, err
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}
	p, err := s.products.Update(ctx, id, patch)
	if err != nil {
		return nil, notFound(err, apperr.CodeProductNotFound, "Product not found")
	}
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, idHex string) error {
	id, err := parseID(idHex, "product")
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return notFound(err, apperr.CodeProductNotFound, "Product not found")
	}
	s.logger.Info("product deleted", zap.String("product_id", id.Hex()))
	return nil
}

// MarkBestsellers resets the bestseller flag and sets it on names.
func (s *CatalogService) MarkBestsellers(ctx context.Context, names []string) (int64, error) {
	if len(names) == 0 {
		return 0, apperr.Validation("No product names provided")
	}
	n, err := s.products.MarkBestsellers(ctx, names)
	if err != nil {
		return 0, err
	}
	s.logger.Info("bestsellers updated", zap.Int64("modified", n), zap.Int("requested", len(names)))
	return n, nil
}

const (
	BulkCreated      = "created"
	BulkUpdatedStock = "updated_stock"
	BulkDuplicate    = "duplicate"
	BulkError        = "error"
)

type BulkItemResult struct {
	Index         int                 `json:"index"`
	Status        string              `json:"status"`
	ID            *primitive.ObjectID `json:"id,omitempty"`
	Name          string              `json:"name,omitempty"`
	Price         *float64            `json:"price,omitempty"`
	PreviousStock *int                `json:"previousStock,omitempty"`
	NewStock      *int                `json:"newStock,omitempty"`
	ExistingStock *int                `json:"existingStock,omitempty"`
	IncomingStock *int                `json:"incomingStock,omitempty"`
	StockChanged  *bool               `json:"stockChanged,omitempty"`
	Error         string              `json:"error,omitempty"`
}

type BulkResult struct {
	Results      []BulkItemResult `json:"results"`
	Created      int              `json:"created"`
	UpdatedStock int              `json:"updatedStock"`
	Duplicates   int              `json:"duplicates"`
	Errors       int              `json:"errors"`
}

func (r *BulkResult) Summary() string {
	return fmt.Sprintf("Bulk process finished. Created: %d, Stock Updated: %d, Duplicates: %d, Errors: %d",
		r.Created, r.UpdatedStock, r.Duplicates, r.Errors)
}

func (r *BulkResult) add(item BulkItemResult) {
	r.Results = append(r.Results, item)
	switch item.Status {
	case BulkCreated:
		r.Created++
	case BulkUpdatedStock:
		r.UpdatedStock++
	case BulkDuplicate:
		r.Duplicates++
	default:
		r.Errors++
	}
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func bulkKey(name string, price float64) string {
	return nameKey(name) + "::" + strconv.FormatFloat(price, 'f', -1, 64)
}

type bulkExisting struct {
	product models.Product
	stocks  []int
}

func (e *bulkExisting) stockDiffers(incoming int) bool {
	for _, s := range e.stocks {
		if s != incoming {
			return true
		}
	}
	return false
}

// BulkCreateProducts inserts items, treating an existing product with the
// same trimmed lowercase name and price as a duplicate. With
// updateStockOnDuplicate a duplicate whose stock differs gets the incoming
// stock instead.
func (s *CatalogService) BulkCreateProducts(ctx context.Context, items []ProductInput, updateStockOnDuplicate bool) (*BulkResult, error) {
	if len(items) == 0 {
		return nil, apperr.Validation("No products provided")
	}

	keys := make([]string, 0, len(items))
	seen := map[string]bool{}
	for _, in := range items {
		if k := nameKey(in.Name); k != "" && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	found, err := s.products.FindByNameKeys(ctx, keys)
	if err != nil {
		return nil, err
	}

	// found is newest first, so the first product per key is the one kept.
	existing := map[string]*bulkExisting{}
	for _, p := range found {
		k := bulkKey(p.Name, p.Price)
		if e, ok := existing[k]; ok {
			e.stocks = append(e.stocks, p.Stock)
			continue
		}
		existing[k] = &bulkExisting{product: p, stocks: []int{p.Stock}}
	}

	result := &BulkResult{Results: make([]BulkItemResult, 0, len(items))}
	for i, in := range items {
		if nameKey(in.Name) == "" {
			result.add(BulkItemResult{Index: i, Status: BulkError, Error: "Product name is required"})
			continue
		}
		k := bulkKey(in.Name, in.Price)

		if dup, ok := existing[k]; ok {
			result.add(s.bulkDuplicate(ctx, i, in, dup, updateStockOnDuplicate))
			continue
		}

		if err := in.validate(); err != nil {
			result.add(BulkItemResult{Index: i, Status: BulkError, Error: apperr.From(err).Message})
			continue
		}
		p := s.newProduct(in)
		if err := s.products.Create(ctx, p); err != nil {
			result.add(BulkItemResult{Index: i, Status: BulkError, Error: err.Error()})
			continue
		}
		existing[k] = &bulkExisting{product: *p, stocks: []int{p.Stock}}
		id := p.ID
		result.add(BulkItemResult{Index: i, Status: BulkCreated, ID: &id})
	}

	s.logger.Info("bulk product import",
		zap.Int("items", len(items)),
		zap.Int("created", result.Created),
		zap.Int("updated_stock", result.UpdatedStock),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("errors", result.Errors),
	)
	return result, nil
}

func (s *CatalogService) bulkDuplicate(ctx context.Context, i int, in ProductInput, dup *bulkExisting, update bool) BulkItemResult {
	id := dup.product.ID
	previous := dup.product.Stock
	incoming := in.Stock
	changed := dup.stockDiffers(incoming)

	if !changed || !update {
		price := dup.product.Price
		return BulkItemResult{
			Index:         i,
			Status:        BulkDuplicate,
			ID:            &id,
			Name:          dup.product.Name,
			Price:         &price,
			ExistingStock: &previous,
			IncomingStock: &incoming,
			StockChanged:  &changed,
		}
	}

	if incoming < 0 {
		return BulkItemResult{Index: i, Status: BulkError, Error: "Stock must not be negative"}
	}
	active := incoming > 0
	if active && in.IsActive != nil {
		active = *in.IsActive
	}
	updated, err := s.products.Update(ctx, id, repository.ProductPatch{Stock: &incoming, IsActive: &active})
	if err != nil {
		return BulkItemResult{Index: i, Status: BulkError, Error: "Duplicate found but failed to update stock"}
	}

	dup.product = *updated
	dup.stocks = []int{updated.Stock}
	newStock := updated.Stock
	return BulkItemResult{
		Index:         i,
		Status:        BulkUpdatedStock,
		ID:            &id,
		Name:          updated.Name,
		PreviousStock: &previous,
		NewStock:      &newStock,
	}
}

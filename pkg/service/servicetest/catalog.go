// Package servicetest provides in-memory implementations of the service
// store ports. Every store is safe for concurrent use and hands out copies,
// so callers never alias stored state.
package servicetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
)

type Products struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Product

	// DecrementHook, when set, runs before each stock decrement. A non-nil
	// return fails the decrement.
	DecrementHook func(id primitive.ObjectID, n int) error
}

func NewProducts(products ...models.Product) *Products {
	s := &Products{byID: map[primitive.ObjectID]models.Product{}}
	for _, p := range products {
		s.Put(p)
	}
	return s
}

// Put stores p as is, assigning an id when it has none.
func (s *Products) Put(p models.Product) primitive.ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.byID[p.ID] = p
	return p.ID
}

// Stock reports the stored stock of id, or -1 when it is absent.
func (s *Products) Stock(id primitive.ObjectID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return -1
	}
	return p.Stock
}

func (s *Products) Get(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (s *Products) GetMany(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Product{}
	seen := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		if p, ok := s.byID[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Products) List(_ context.Context, f repository.ProductFilter) ([]models.Product, int64, error) {
	s.mu.Lock()
	matched := []models.Product{}
	search := strings.ToLower(f.Search)
	for _, p := range s.byID {
		switch {
		case !f.IncludeInactive && !p.IsActive,
			f.Category != nil && p.Category != *f.Category,
			f.Featured && !p.Featured,
			f.Bestseller && !p.IsBestseller,
			search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
				!strings.Contains(strings.ToLower(p.Description), search):
			continue
		}
		matched = append(matched, p)
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.Hex() > matched[j].ID.Hex()
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	return paginate(matched, f.Page), total, nil
}

func paginate[T any](items []T, p repository.Page) []T {
	if p.Size <= 0 {
		return items
	}
	start := int(p.Skip())
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func (s *Products) Create(_ context.Context, p *models.Product) error {
	s.Put(*p)
	return nil
}

func (s *Products) Update(_ context.Context, id primitive.ObjectID, patch repository.ProductPatch) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&p)
	p.UpdatedAt = time.Now()
	s.byID[id] = p
	return &p, nil
}

func (s *Products) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *Products) DecrementStock(_ context.Context, id primitive.ObjectID, n int) error {
	if s.DecrementHook != nil {
		if err := s.DecrementHook(id, n); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok || p.Stock < n {
		return repository.ErrInsufficientStock
	}
	p.Stock -= n
	s.byID[id] = p
	return nil
}

func (s *Products) IncrementStock(_ context.Context, id primitive.ObjectID, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Stock += n
	s.byID[id] = p
	return nil
}

func (s *Products) FindByNameKeys(_ context.Context, keys []string) ([]models.Product, error) {
	want := map[string]bool{}
	for _, k := range keys {
		want[k] = true
	}
	s.mu.Lock()
	out := []models.Product{}
	for _, p := range s.byID {
		if want[strings.ToLower(strings.TrimSpace(p.Name))] {
			out = append(out, p)
		}
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *Products) MarkBestsellers(_ context.Context, names []string) (int64, error) {
	want := map[string]bool{}
	for _, n := range names {
		want[n] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var modified int64
	for id, p := range s.byID {
		p.IsBestseller = want[p.Name]
		if p.IsBestseller {
			modified++
		}
		s.byID[id] = p
	}
	return modified, nil
}

type Categories struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Category
}

func NewCategories(categories ...models.Category) *Categories {
	s := &Categories{byID: map[primitive.ObjectID]models.Category{}}
	for _, c := range categories {
		if c.ID.IsZero() {
			c.ID = primitive.NewObjectID()
		}
		s.byID[c.ID] = c
	}
	return s
}

func (s *Categories) List(_ context.Context, activeOnly bool) ([]models.Category, error) {
	s.mu.Lock()
	out := []models.Category{}
	for _, c := range s.byID {
		if !activeOnly || c.IsActive {
			out = append(out, c)
		}
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Categories) GetMany(_ context.Context, ids []primitive.ObjectID) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Category{}
	for _, id := range ids {
		if c, ok := s.byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Categories) Get(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (s *Categories) slugTaken(slug string, except primitive.ObjectID) bool {
	for id, c := range s.byID {
		if id != except && c.Slug == slug {
			return true
		}
	}
	return false
}

func (s *Categories) Create(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slugTaken(c.Slug, c.ID) {
		return repository.ErrDuplicate
	}
	s.byID[c.ID] = *c
	return nil
}

func (s *Categories) Update(_ context.Context, id primitive.ObjectID, patch repository.CategoryPatch) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Slug != nil && s.slugTaken(*patch.Slug, id) {
		return nil, repository.ErrDuplicate
	}
	patch.Apply(&c)
	s.byID[id] = c
	return &c, nil
}

func (s *Categories) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

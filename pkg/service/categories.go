package service

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/apperr"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
)

type CategoryInput struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Image       string              `json:"image"`
	Parent      *primitive.ObjectID `json:"parent"`
}

// ListCategories returns active categories by name with parents resolved
// one level deep.
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.List(ctx, true)
	if err != nil {
		return nil, err
	}
	if err := s.attachParents(ctx, categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, idHex string) (*models.Category, error) {
	id, err := parseID(idHex, "category")
	if err != nil {
		return nil, err
	}
	c, err := s.categories.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, apperr.CodeCategoryNotFound, "Category not found")
	}
	categories := []models.Category{*c}
	if err := s.attachParents(ctx, categories); err != nil {
		return nil, err
	}
	return &categories[0], nil
}

func (s *CatalogService) attachParents(ctx context.Context, categories []models.Category) error {
	var ids []primitive.ObjectID
	for _, c := range categories {
		if c.Parent != nil {
			ids = append(ids, *c.Parent)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	parents, err := s.categories.GetMany(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[primitive.ObjectID]*models.CategoryRef, len(parents))
	for i := range parents {
		byID[parents[i].ID] = parents[i].Ref()
	}
	for i := range categories {
		if categories[i].Parent != nil {
			categories[i].ParentInfo = byID[*categories[i].Parent]
		}
	}
	return nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("Category name is required")
	}
	if err := s.checkParent(ctx, primitive.NilObjectID, in.Parent); err != nil {
		return nil, err
	}

	c := &models.Category{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Slug:        models.Slug(name),
		Description: in.Description,
		Image:       in.Image,
		Parent:      in.Parent,
		IsActive:    true,
		CreatedAt:   s.now(),
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, s.categoryWriteError(err)
	}
	s.logger.Info("category created", zap.String("category_id", c.ID.Hex()), zap.String("slug", c.Slug))
	return c, nil
}

// UpdateCategory applies patch, recomputing the slug when the name changes.
func (s *CatalogService) UpdateCategory(ctx context.Context, idHex string, patch repository.CategoryPatch) (*models.Category, error) {
	id, err := parseID(idHex, "category")
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.Validation("Category name is required")
		}
		slug := models.Slug(name)
		patch.Name, patch.Slug = &name, &slug
	}
	if err := s.checkParent(ctx, id, patch.Parent); err != nil {
		return nil, err
	}

	c, err := s.categories.Update(ctx, id, patch)
	if err != nil {
		return nil, s.categoryWriteError(notFound(err, apperr.CodeCategoryNotFound, "Category not found"))
	}
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, idHex string) error {
	id, err := parseID(idHex, "category")
	if err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return notFound(err, apperr.CodeCategoryNotFound, "Category not found")
	}
	return nil
}

func (s *CatalogService) checkParent(ctx context.Context, self primitive.ObjectID, parent *primitive.ObjectID) error {
	if parent == nil {
		return nil
	}
	if *parent == self {
		return apperr.Validation("A category cannot be its own parent")
	}
	if _, err := s.categories.Get(ctx, *parent); err != nil {
		return notFound(err, apperr.CodeCategoryNotFound, "Parent category not found")
	}
	return nil
}

func (s *CatalogService) categoryWriteError(err error) error {
	if errorsIsDuplicate(err) {
		return apperr.Conflict(apperr.CodeValidation, "A category with this name already exists")
	}
	return err
}

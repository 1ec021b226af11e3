package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
)

type CategoryPatch struct {
	Name        *string             `json:"name"`
	Slug        *string             `json:"-"`
	Description *string             `json:"description"`
	Image       *string             `json:"image"`
	Parent      *primitive.ObjectID `json:"parent"`
	IsActive    *bool               `json:"isActive"`
}

func (p CategoryPatch) set() bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Slug != nil {
		set["slug"] = *p.Slug
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Image != nil {
		set["image"] = *p.Image
	}
	if p.Parent != nil {
		set["parent"] = *p.Parent
	}
	if p.IsActive != nil {
		set["isActive"] = *p.IsActive
	}
	return set
}

func (p CategoryPatch) Apply(c *models.Category) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Slug != nil {
		c.Slug = *p.Slug
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Image != nil {
		c.Image = *p.Image
	}
	if p.Parent != nil {
		parent := *p.Parent
		c.Parent = &parent
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
}

type CategoryRepository struct {
	coll *mongo.Collection
}

func NewCategoryRepository(m *MongoRepository) *CategoryRepository {
	return &CategoryRepository{coll: m.collection(models.Category{})}
}

func (r *CategoryRepository) List(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	filter := bson.M{}
	if activeOnly {
		filter["isActive"] = true
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *CategoryRepository) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Category, error) {
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *CategoryRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Category, error) {
	cursor, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var c models.Category
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	_, err := r.coll.InsertOne(ctx, c)
	return translate(err)
}

func (r *CategoryRepository) Update(ctx context.Context, id primitive.ObjectID, patch CategoryPatch) (*models.Category, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.Category
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": patch.set()}, opts).Decode(&c)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

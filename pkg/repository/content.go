package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
)

// Document is any model stored in its own collection.
type Document interface {
	CollectionName() string
}

type ContentQuery struct {
	ActiveOnly bool
	Position   string
}

// ContentRepository stores storefront content blocks of one kind.
type ContentRepository[T Document] struct {
	coll        *mongo.Collection
	activeField string
	sort        bson.D
}

func NewContentRepository[T Document](m *MongoRepository, activeField string, sort bson.D) *ContentRepository[T] {
	var zero T
	return &ContentRepository[T]{
		coll:        m.database.Collection(zero.CollectionName()),
		activeField: activeField,
		sort:        sort,
	}
}

func NewBannerRepository(m *MongoRepository) *ContentRepository[models.Banner] {
	return NewContentRepository[models.Banner](m, "is_active", bson.D{{Key: "display_order", Value: 1}})
}

func NewFestivalRepository(m *MongoRepository) *ContentRepository[models.Festival] {
	return NewContentRepository[models.Festival](m, "isActive",
		bson.D{{Key: "displayOrder", Value: 1}, {Key: "createdAt", Value: -1}})
}

func NewPromoBlockRepository(m *MongoRepository) *ContentRepository[models.PromoBlock] {
	return NewContentRepository[models.PromoBlock](m, "is_active",
		bson.D{{Key: "display_order", Value: 1}, {Key: "createdAt", Value: -1}})
}

func NewSectionVideoRepository(m *MongoRepository) *ContentRepository[models.SectionVideo] {
	return NewContentRepository[models.SectionVideo](m, "is_active",
		bson.D{{Key: "display_order", Value: 1}, {Key: "createdAt", Value: -1}})
}

func (r *ContentRepository[T]) List(ctx context.Context, q ContentQuery) ([]T, error) {
	filter := bson.M{}
	if q.ActiveOnly {
		filter[r.activeField] = true
	}
	if q.Position != "" {
		filter["position"] = q.Position
	}

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(r.sort))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := []T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *ContentRepository[T]) Get(ctx context.Context, id primitive.ObjectID) (*T, error) {
	var doc T
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return &doc, nil
}

func (r *ContentRepository[T]) Create(ctx context.Context, doc *T) error {
	_, err := r.coll.InsertOne(ctx, doc)
	return translate(err)
}

func (r *ContentRepository[T]) Replace(ctx context.Context, id primitive.ObjectID, doc *T) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ContentRepository[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

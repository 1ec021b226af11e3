package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
)

type CartRepository struct {
	coll *mongo.Collection
}

func NewCartRepository(m *MongoRepository) *CartRepository {
	return &CartRepository{coll: m.collection(models.Cart{})}
}

func (r *CartRepository) Get(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var c models.Cart
	if err := r.coll.FindOne(ctx, bson.M{"user": userID}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// Save upserts the cart keyed by its owner.
func (r *CartRepository) Save(ctx context.Context, c *models.Cart) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := r.coll.ReplaceOne(ctx, bson.M{"user": c.User}, c, options.Replace().SetUpsert(true))
	return translate(err)
}

// Delete removes the user's cart. A missing cart is not an error.
func (r *CartRepository) Delete(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"user": userID})
	return err
}

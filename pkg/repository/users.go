package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
)

type ProfilePatch struct {
	Name    *string         `json:"name"`
	Phone   *string         `json:"phone"`
	Address *models.Address `json:"address"`
}

func (p ProfilePatch) Apply(u *models.User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
}

type UserRepository struct {
	coll   *mongo.Collection
	orders string
}

func NewUserRepository(m *MongoRepository) *UserRepository {
	return &UserRepository{
		coll:   m.collection(models.User{}),
		orders: models.Order{}.CollectionName(),
	}
}

func (r *UserRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": models.NormalizeEmail(email)})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	_, err := r.coll.InsertOne(ctx, u)
	return translate(err)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, patch ProfilePatch) (*models.User, error) {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Phone != nil {
		set["phone"] = *patch.Phone
	}
	if patch.Address != nil {
		set["address"] = *patch.Address
	}
	if len(set) == 0 {
		return r.Get(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return r.setFields(ctx, id, bson.M{"password": hash})
}

// SetAddresses replaces the saved address book.
func (r *UserRepository) SetAddresses(ctx context.Context, id primitive.ObjectID, addresses []models.SavedAddress) error {
	return r.setFields(ctx, id, bson.M{"addresses": addresses})
}

func (r *UserRepository) setFields(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Customers lists every non-admin user with order counts and spend,
// newest account first.
func (r *UserRepository) Customers(ctx context.Context) ([]models.CustomerStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"role": models.RoleUser}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         r.orders,
			"localField":   "_id",
			"foreignField": "user",
			"as":           "orders",
		}}},
		{{Key: "$project", Value: bson.M{
			"email":       1,
			"name":        1,
			"phone":       1,
			"address":     1,
			"createdAt":   1,
			"totalOrders": bson.M{"$size": "$orders"},
			"totalSpent":  bson.M{"$sum": "$orders.total"},
			"lastOrderAt": bson.M{"$max": "$orders.createdAt"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	customers := []models.CustomerStats{}
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

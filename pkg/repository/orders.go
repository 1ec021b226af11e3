package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
)

type OrderFilter struct {
	Status models.OrderStatus
	Page   Page
}

// StatusPatch is the admin overwrite of an order's status fields.
type StatusPatch struct {
	OrderStatus   *models.OrderStatus   `json:"orderStatus"`
	PaymentStatus *models.PaymentStatus `json:"paymentStatus"`
}

func (p StatusPatch) Empty() bool {
	return p.OrderStatus == nil && p.PaymentStatus == nil
}

type OrderRepository struct {
	coll *mongo.Collection
}

func NewOrderRepository(m *MongoRepository) *OrderRepository {
	return &OrderRepository{coll: m.collection(models.Order{})}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	_, err := r.coll.InsertOne(ctx, o)
	return translate(err)
}

func (r *OrderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *OrderRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetForUser only returns the order when userID owns it.
func (r *OrderRepository) GetForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error) {
	return r.findOne(ctx, bson.M{"_id": id, "user": userID})
}

func (r *OrderRepository) findOne(ctx context.Context, filter bson.M) (*models.Order, error) {
	var o models.Order
	if err := r.coll.FindOne(ctx, filter).Decode(&o); err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return r.find(ctx, bson.M{"user": userID}, options.Find().SetSort(newestFirst))
}

func (r *OrderRepository) List(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	q := bson.M{}
	if f.Status != "" {
		q["orderStatus"] = f.Status
	}
	page := f.Page.Normalize(20)

	opts := options.Find().SetSort(newestFirst).SetSkip(page.Skip()).SetLimit(int64(page.Size))
	orders, err := r.find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.coll.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Order, error) {
	cursor, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Cancel moves an order owned by userID to cancelled, only from a
// cancellable status. Of two concurrent cancels exactly one matches.
func (r *OrderRepository) Cancel(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error) {
	filter := bson.M{
		"_id":         id,
		"user":        userID,
		"orderStatus": bson.M{"$in": models.CancellableStatuses},
	}
	update := bson.M{"$set": bson.M{"orderStatus": models.OrderCancelled, "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o models.Order
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&o)
	if err == nil {
		return &o, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id, "user": userID})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrNotCancellable
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, patch StatusPatch) (*models.Order, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.OrderStatus != nil {
		set["orderStatus"] = *patch.OrderStatus
	}
	if patch.PaymentStatus != nil {
		set["paymentStatus"] = *patch.PaymentStatus
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var o models.Order
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&o); err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

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

type CouponPatch struct {
	Code          *string              `json:"code"`
	DiscountType  *models.DiscountType `json:"discount_type"`
	DiscountValue *float64             `json:"discount_value"`
	MinOrderValue *float64             `json:"min_order_value"`
	MaxDiscount   *float64             `json:"max_discount"`
	ValidFrom     *time.Time           `json:"valid_from"`
	ValidUntil    *time.Time           `json:"valid_until"`
	UsageLimit    *int                 `json:"usage_limit"`
	IsActive      *bool                `json:"is_active"`
}

func (p CouponPatch) set() bson.M {
	set := bson.M{}
	if p.Code != nil {
		set["code"] = models.NormalizeCode(*p.Code)
	}
	if p.DiscountType != nil {
		set["discount_type"] = *p.DiscountType
	}
	if p.DiscountValue != nil {
		set["discount_value"] = *p.DiscountValue
	}
	if p.MinOrderValue != nil {
		set["min_order_value"] = *p.MinOrderValue
	}
	if p.MaxDiscount != nil {
		set["max_discount"] = *p.MaxDiscount
	}
	if p.ValidFrom != nil {
		set["valid_from"] = *p.ValidFrom
	}
	if p.ValidUntil != nil {
		set["valid_until"] = *p.ValidUntil
	}
	if p.UsageLimit != nil {
		set["usage_limit"] = *p.UsageLimit
	}
	if p.IsActive != nil {
		set["is_active"] = *p.IsActive
	}
	return set
}

func (p CouponPatch) Apply(c *models.Coupon) {
	if p.Code != nil {
		c.Code = models.NormalizeCode(*p.Code)
	}
	if p.DiscountType != nil {
		c.DiscountType = *p.DiscountType
	}
	if p.DiscountValue != nil {
		c.DiscountValue = *p.DiscountValue
	}
	if p.MinOrderValue != nil {
		c.MinOrderValue = *p.MinOrderValue
	}
	if p.MaxDiscount != nil {
		v := *p.MaxDiscount
		c.MaxDiscount = &v
	}
	if p.ValidFrom != nil {
		c.ValidFrom = *p.ValidFrom
	}
	if p.ValidUntil != nil {
		c.ValidUntil = *p.ValidUntil
	}
	if p.UsageLimit != nil {
		v := *p.UsageLimit
		c.UsageLimit = &v
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
}

// usableFilter matches coupons that may be applied at now. A missing, null
// or non-positive usage_limit means unlimited.
func usableFilter(now time.Time) bson.M {
	return bson.M{
		"is_active":   true,
		"valid_from":  bson.M{"$lte": now},
		"valid_until": bson.M{"$gte": now},
		"$or": bson.A{
			bson.M{"usage_limit": nil},
			bson.M{"usage_limit": bson.M{"$lte": 0}},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$used_count", "$usage_limit"}}},
		},
	}
}

type CouponRepository struct {
	coll *mongo.Collection
}

func NewCouponRepository(m *MongoRepository) *CouponRepository {
	return &CouponRepository{coll: m.collection(models.Coupon{})}
}

func (r *CouponRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Coupon, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	return r.findOne(ctx, bson.M{"code": models.NormalizeCode(code)})
}

func (r *CouponRepository) findOne(ctx context.Context, filter bson.M) (*models.Coupon, error) {
	var c models.Coupon
	if err := r.coll.FindOne(ctx, filter).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CouponRepository) List(ctx context.Context) ([]models.Coupon, error) {
	return r.find(ctx, bson.M{})
}

func (r *CouponRepository) ListUsable(ctx context.Context, now time.Time) ([]models.Coupon, error) {
	return r.find(ctx, usableFilter(now))
}

func (r *CouponRepository) find(ctx context.Context, filter bson.M) ([]models.Coupon, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	coupons := []models.Coupon{}
	if err := cursor.All(ctx, &coupons); err != nil {
		return nil, err
	}
	return coupons, nil
}

func (r *CouponRepository) Create(ctx context.Context, c *models.Coupon) error {
	_, err := r.coll.InsertOne(ctx, c)
	return translate(err)
}

func (r *CouponRepository) Update(ctx context.Context, id primitive.ObjectID, patch CouponPatch) (*models.Coupon, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.Coupon
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": patch.set()}, opts).Decode(&c)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CouponRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Consume takes one usage slot. The usable predicate is part of the update
// filter, so the limit holds under concurrent checkouts.
func (r *CouponRepository) Consume(ctx context.Context, code string, now time.Time) (*models.Coupon, error) {
	filter := usableFilter(now)
	filter["code"] = models.NormalizeCode(code)

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.Coupon
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$inc": bson.M{"used_count": 1}}, opts).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrCouponUnusable
		}
		return nil, err
	}
	return &c, nil
}

// Release gives one slot back. used_count never drops below zero.
func (r *CouponRepository) Release(ctx context.Context, code string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"code": models.NormalizeCode(code), "used_count": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"used_count": -1}},
	)
	return err
}

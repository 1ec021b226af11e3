package repository

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
)

type ProductFilter struct {
	Category        *primitive.ObjectID
	IncludeInactive bool
	Featured        bool
	Bestseller      bool
	Search          string
	Sort            string
	Page            Page
}

var productSorts = map[string]bool{
	"createdAt":       true,
	"updatedAt":       true,
	"price":           true,
	"name":            true,
	"stock":           true,
	"ratings.average": true,
}

func (f ProductFilter) query() bson.M {
	q := bson.M{}
	if !f.IncludeInactive {
		q["isActive"] = true
	}
	if f.Category != nil {
		q["category"] = *f.Category
	}
	if f.Featured {
		q["featured"] = true
	}
	if f.Bestseller {
		q["isBestseller"] = true
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}
	return q
}

// ProductPatch carries the fields of a partial product update. Nil fields
// are left untouched.
type ProductPatch struct {
	Name           *string             `json:"name"`
	Description    *string             `json:"description"`
	Price          *float64            `json:"price"`
	OriginalPrice  *float64            `json:"originalPrice"`
	Category       *primitive.ObjectID `json:"category"`
	Images         *[]string           `json:"images"`
	Stock          *int                `json:"stock"`
	Featured       *bool               `json:"featured"`
	IsBestseller   *bool               `json:"isBestseller"`
	IsActive       *bool               `json:"isActive"`
	Specifications *map[string]string  `json:"specifications"`
}

func (p ProductPatch) set() bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.OriginalPrice != nil {
		set["originalPrice"] = *p.OriginalPrice
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Images != nil {
		set["images"] = *p.Images
	}
	if p.Stock != nil {
		set["stock"] = *p.Stock
	}
	if p.Featured != nil {
		set["featured"] = *p.Featured
	}
	if p.IsBestseller != nil {
		set["isBestseller"] = *p.IsBestseller
	}
	if p.IsActive != nil {
		set["isActive"] = *p.IsActive
	}
	if p.Specifications != nil {
		set["specifications"] = *p.Specifications
	}
	return set
}

// Apply writes the non-nil fields of p onto prod.
func (p ProductPatch) Apply(prod *models.Product) {
	if p.Name != nil {
		prod.Name = *p.Name
	}
	if p.Description != nil {
		prod.Description = *p.Description
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
	if p.OriginalPrice != nil {
		v := *p.OriginalPrice
		prod.OriginalPrice = &v
	}
	if p.Category != nil {
		prod.Category = *p.Category
	}
	if p.Images != nil {
		prod.Images = *p.Images
	}
	if p.Stock != nil {
		prod.Stock = *p.Stock
	}
	if p.Featured != nil {
		prod.Featured = *p.Featured
	}
	if p.IsBestseller != nil {
		prod.IsBestseller = *p.IsBestseller
	}
	if p.IsActive != nil {
		prod.IsActive = *p.IsActive
	}
	if p.Specifications != nil {
		prod.Specifications = *p.Specifications
	}
}

type ProductRepository struct {
	coll *mongo.Collection
}

func NewProductRepository(m *MongoRepository) *ProductRepository {
	return &ProductRepository{coll: m.collection(models.Product{})}
}

func (r *ProductRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *ProductRepository) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	q := f.query()
	page := f.Page.Normalize(12)

	opts := options.Find().
		SetSort(sortDoc(f.Sort, productSorts, bson.D{{Key: "createdAt", Value: -1}})).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Size))

	products, err := r.find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.coll.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Product, error) {
	cursor, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	_, err := r.coll.InsertOne(ctx, p)
	return translate(err)
}

func (r *ProductRepository) Update(ctx context.Context, id primitive.ObjectID, patch ProductPatch) (*models.Product, error) {
	set := patch.set()
	set["updatedAt"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Product
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&p)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementStock takes n units only if at least n are left. The check and
// the write are one update, so concurrent orders cannot oversell.
func (r *ProductRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, n int) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": n}},
		bson.M{
			"$inc": bson.M{"stock": -n},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *ProductRepository) IncrementStock(ctx context.Context, id primitive.ObjectID, n int) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"stock": n},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByNameKeys returns products whose trimmed, lowercased name is one of
// keys, most recently updated first.
func (r *ProductRepository) FindByNameKeys(ctx context.Context, keys []string) ([]models.Product, error) {
	if len(keys) == 0 {
		return []models.Product{}, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"$expr": bson.M{"$in": bson.A{
				bson.M{"$toLower": bson.M{"$trim": bson.M{"input": "$name"}}},
				keys,
			}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "updatedAt", Value: -1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// MarkBestsellers clears the bestseller flag everywhere, then sets it on the
// products named exactly in names.
func (r *ProductRepository) MarkBestsellers(ctx context.Context, names []string) (int64, error) {
	now := time.Now()
	if _, err := r.coll.UpdateMany(ctx, bson.M{}, bson.M{"$set": bson.M{"isBestseller": false, "updatedAt": now}}); err != nil {
		return 0, err
	}
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"name": bson.M{"$in": names}},
		bson.M{"$set": bson.M{"isBestseller": true, "updatedAt": now}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

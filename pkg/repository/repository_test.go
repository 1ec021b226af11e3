package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(mongo.ErrNoDocuments), ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("decode: %w", mongo.ErrNoDocuments)), ErrNotFound)

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, translate(dup), ErrDuplicate)

	other := errors.New("socket closed")
	assert.Same(t, other, translate(other))
}

func TestPageNormalize(t *testing.T) {
	tests := []struct {
		in   Page
		want Page
		skip int64
	}{
		{Page{}, Page{Number: 1, Size: 12}, 0},
		{Page{Number: 3, Size: 10}, Page{Number: 3, Size: 10}, 20},
		{Page{Number: -1, Size: 1000}, Page{Number: 1, Size: 100}, 0},
	}
	for _, tt := range tests {
		got := tt.in.Normalize(12)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.skip, got.Skip())
	}
}

func TestSortDoc(t *testing.T) {
	fallback := bson.D{{Key: "createdAt", Value: -1}}

	assert.Equal(t, bson.D{{Key: "price", Value: 1}}, sortDoc("price", productSorts, fallback))
	assert.Equal(t, bson.D{{Key: "price", Value: -1}}, sortDoc("-price", productSorts, fallback))
	assert.Equal(t, fallback, sortDoc("-password", productSorts, fallback))
	assert.Equal(t, fallback, sortDoc("", productSorts, fallback))
}

func TestProductFilterQuery(t *testing.T) {
	cat := primitive.NewObjectID()

	q := ProductFilter{Category: &cat, Featured: true, Search: "diya (brass)"}.query()
	assert.Equal(t, true, q["isActive"])
	assert.Equal(t, cat, q["category"])
	assert.Equal(t, true, q["featured"])
	assert.NotContains(t, q, "isBestseller")

	or, ok := q["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)
	re := or[0].(bson.M)["name"].(primitive.Regex)
	assert.Equal(t, `diya \(brass\)`, re.Pattern)
	assert.Equal(t, "i", re.Options)

	all := ProductFilter{IncludeInactive: true}.query()
	assert.Empty(t, all)
}

func TestProductPatch(t *testing.T) {
	name := "Brass Diya"
	stock := 0
	active := false
	patch := ProductPatch{Name: &name, Stock: &stock, IsActive: &active}

	assert.Equal(t, bson.M{"name": name, "stock": 0, "isActive": false}, patch.set())

	p := models.Product{Name: "old", Price: 99, Stock: 4, IsActive: true}
	patch.Apply(&p)
	assert.Equal(t, "Brass Diya", p.Name)
	assert.Equal(t, 99.0, p.Price)
	assert.Equal(t, 0, p.Stock)
	assert.False(t, p.IsActive)
}

func TestCouponPatchNormalizesCode(t *testing.T) {
	code := " diwali25 "
	patch := CouponPatch{Code: &code}
	assert.Equal(t, "DIWALI25", patch.set()["code"])

	var c models.Coupon
	patch.Apply(&c)
	assert.Equal(t, "DIWALI25", c.Code)
}

func TestUsableFilter(t *testing.T) {
	now := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	f := usableFilter(now)

	assert.Equal(t, true, f["is_active"])
	assert.Equal(t, bson.M{"$lte": now}, f["valid_from"])
	assert.Equal(t, bson.M{"$gte": now}, f["valid_until"])
	assert.Len(t, f["$or"], 3)
}

func TestStatusPatchEmpty(t *testing.T) {
	assert.True(t, StatusPatch{}.Empty())
	shipped := models.OrderShipped
	assert.False(t, StatusPatch{OrderStatus: &shipped}.Empty())
}

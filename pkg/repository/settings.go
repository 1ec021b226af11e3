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

type SettingsRepository struct {
	coll *mongo.Collection
}

func NewSettingsRepository(m *MongoRepository) *SettingsRepository {
	return &SettingsRepository{coll: m.collection(models.Settings{})}
}

// Get returns the settings document, inserting the defaults when the
// collection is empty.
func (r *SettingsRepository) Get(ctx context.Context) (models.Settings, error) {
	now := time.Now()
	defaults := models.DefaultSettings()
	defaults.CreatedAt = now
	defaults.UpdatedAt = now

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var s models.Settings
	err := r.coll.FindOneAndUpdate(ctx, bson.M{}, bson.M{"$setOnInsert": defaults}, opts).Decode(&s)
	if err != nil {
		return models.Settings{}, translate(err)
	}
	return s, nil
}

func (r *SettingsRepository) Save(ctx context.Context, s models.Settings) (models.Settings, error) {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	s.UpdatedAt = time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = s.UpdatedAt
	}

	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": s.ID}, s, options.Replace().SetUpsert(true))
	if err != nil {
		return models.Settings{}, err
	}
	return s, nil
}

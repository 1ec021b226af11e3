package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/config"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
)

type MongoRepository struct {
	client   *mongo.Client
	database *mongo.Database
	config   *config.MongoDBConfig
}

func NewMongoRepository(ctx context.Context, cfg *config.MongoDBConfig) (*MongoRepository, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoRepository{
		client:   client,
		database: client.Database(cfg.Database),
		config:   cfg,
	}, nil
}

func (m *MongoRepository) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoRepository) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *MongoRepository) collection(doc interface{ CollectionName() string }) *mongo.Collection {
	return m.database.Collection(doc.CollectionName())
}

// EnsureIndexes creates the indexes the stores rely on. Unique indexes back
// ErrDuplicate for coupon codes, emails and carts.
func (m *MongoRepository) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		models.Product{}.CollectionName(): {
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "isActive", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		models.Category{}.CollectionName(): {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		models.Coupon{}.CollectionName(): {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		models.Order{}.CollectionName(): {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "orderStatus", Value: 1}}},
		},
		models.Cart{}.CollectionName(): {
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		models.User{}.CollectionName(): {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		models.Festival{}.CollectionName(): {
			{Keys: bson.D{{Key: "slug", Value: 1}}},
		},
		m.config.AuditLog: {
			{Keys: bson.D{{Key: "entity_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for name, idx := range specs {
		if _, err := m.database.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps the page to sane values, using size when Size is unset.
func (p Page) Normalize(size int) Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = size
	}
	if p.Size > 100 {
		p.Size = 100
	}
	return p
}

func (p Page) Skip() int64 {
	return int64((p.Number - 1) * p.Size)
}

// ParseSort reads a "-field" / "field" sort key into a field name and
// direction.
func ParseSort(s string) (field string, desc bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		return s[1:], true
	}
	return s, false
}

func sortDoc(s string, allowed map[string]bool, fallback bson.D) bson.D {
	field, desc := ParseSort(s)
	if !allowed[field] {
		return fallback
	}
	dir := 1
	if desc {
		dir = -1
	}
	return bson.D{{Key: field, Value: dir}}
}

// AuditLog is one entry in the order activity trail.
type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Service   string             `bson:"service" json:"service"`
	Action    string             `bson:"action" json:"action"`
	EntityID  string             `bson:"entity_id" json:"entityId"`
	Actor     string             `bson:"actor,omitempty" json:"actor,omitempty"`
	Data      bson.M             `bson:"data" json:"data"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

func (m *MongoRepository) CreateAuditLog(ctx context.Context, log *AuditLog) error {
	collection := m.database.Collection(m.config.AuditLog)
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	_, err := collection.InsertOne(ctx, log)
	return err
}

func (m *MongoRepository) GetAuditLogs(ctx context.Context, entityID string, limit int64) ([]*AuditLog, error) {
	collection := m.database.Collection(m.config.AuditLog)

	filter := bson.M{"entity_id": entityID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	logs := []*AuditLog{}
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}

	return logs, nil
}

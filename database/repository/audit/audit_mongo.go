package auditRepo

import (
	"context"
	"fmt"
	"time"

	"companify/database"
	"companify/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditRepository is the append-only trail of availability mutations and
// ownership violations. There are deliberately no update or delete methods;
// retention is an operational concern.
type AuditRepository interface {
	Append(ctx context.Context, entry *models.AuditEntry) error
	ListByProvider(ctx context.Context, providerID string, limit int64) ([]models.AuditEntry, error)
	EnsureIndexes() error
}

// MongoAuditRepo implements AuditRepository using MongoDB.
type MongoAuditRepo struct {
	coll *mongo.Collection
}

// NewMongoAuditRepo constructs a new instance of MongoAuditRepo.
func NewMongoAuditRepo() AuditRepository {
	db := database.MongoClient.Database("companify")
	return &MongoAuditRepo{
		coll: db.Collection("audit_log"),
	}
}

func (repo *MongoAuditRepo) Append(ctx context.Context, entry *models.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("error appending audit entry: %w", err)
	}
	return nil
}

func (repo *MongoAuditRepo) ListByProvider(ctx context.Context, providerID string, limit int64) ([]models.AuditEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 500 {
		limit = 100
	}
	filter := bson.M{"provider_id": providerID}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(limit)
	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing audit entries for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)

	var entries []models.AuditEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("error decoding audit entries: %w", err)
	}
	return entries, nil
}

// EnsureIndexes creates the necessary indexes on the audit_log collection.
func (repo *MongoAuditRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "provider_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("provider_timestamp_idx"),
		},
	}

	_, err := repo.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create audit indexes: %w", err)
	}
	return nil
}

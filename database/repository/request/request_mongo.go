package requestRepo

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

// MongoRequestRepo implements RequestRepository using MongoDB.
type MongoRequestRepo struct {
	coll *mongo.Collection
}

// NewMongoRequestRepo constructs a new instance of MongoRequestRepo.
func NewMongoRequestRepo() RequestRepository {
	db := database.MongoClient.Database("companify")
	return &MongoRequestRepo{
		coll: db.Collection("booking_requests"),
	}
}

func (repo *MongoRequestRepo) Create(ctx context.Context, req *models.BookingRequest) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctx, req); err != nil {
		return fmt.Errorf("error creating booking request: %w", err)
	}
	return nil
}

func (repo *MongoRequestRepo) GetByID(ctx context.Context, id string) (*models.BookingRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var req models.BookingRequest
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&req); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking request %s: %w", id, err)
	}
	return &req, nil
}

func (repo *MongoRequestRepo) ListForActor(ctx context.Context, actorID string) ([]models.BookingRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"$or": bson.A{
		bson.M{"client_id": actorID},
		bson.M{"provider_id": actorID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing booking requests for actor %s: %w", actorID, err)
	}
	defer cursor.Close(ctx)

	var reqs []models.BookingRequest
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, fmt.Errorf("error decoding booking requests: %w", err)
	}
	return reqs, nil
}

func (repo *MongoRequestRepo) UpdateFromStatus(ctx context.Context, req *models.BookingRequest, expectStatus string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": req.ID, "status": expectStatus}
	update := bson.M{"$set": bson.M{
		"status":               req.Status,
		"counter":              req.Counter,
		"reject_reason":        req.RejectReason,
		"resulting_booking_id": req.ResultingBookingID,
		"updated_at":           req.UpdatedAt,
	}}
	res, err := repo.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error updating booking request %s: %w", req.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrStaleStatus
	}
	return nil
}

func (repo *MongoRequestRepo) MarkExpired(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.RequestPending}
	update := bson.M{"$set": bson.M{"status": models.RequestExpired, "updated_at": time.Now().UTC()}}
	res, err := repo.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error expiring booking request %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrStaleStatus
	}
	return nil
}

func (repo *MongoRequestRepo) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"status":     models.RequestPending,
		"expires_at": bson.M{"$lte": now},
	}
	update := bson.M{"$set": bson.M{"status": models.RequestExpired, "updated_at": now.UTC()}}
	res, err := repo.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("error expiring overdue booking requests: %w", err)
	}
	return res.ModifiedCount, nil
}

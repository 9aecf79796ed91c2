package availabilityRepo

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

// MongoAvailabilityRepo implements AvailabilityRepository using MongoDB.
type MongoAvailabilityRepo struct {
	coll *mongo.Collection
}

// NewMongoAvailabilityRepo constructs a new instance of MongoAvailabilityRepo.
func NewMongoAvailabilityRepo() AvailabilityRepository {
	db := database.MongoClient.Database("companify")
	return &MongoAvailabilityRepo{
		coll: db.Collection("availability_windows"),
	}
}

func (repo *MongoAvailabilityRepo) GetWindowsForDay(ctx context.Context, providerID string, weekday time.Weekday) ([]models.WeeklyWindow, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"provider_id": providerID, "weekday": weekday}
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching windows for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)

	var windows []models.WeeklyWindow
	if err := cursor.All(ctx, &windows); err != nil {
		return nil, fmt.Errorf("error decoding windows: %w", err)
	}
	return windows, nil
}

func (repo *MongoAvailabilityRepo) GetWeeklyTemplate(ctx context.Context, providerID string) ([]models.WeeklyWindow, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"provider_id": providerID}
	opts := options.Find().SetSort(bson.D{{Key: "weekday", Value: 1}, {Key: "start", Value: 1}})
	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching weekly template for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)

	var windows []models.WeeklyWindow
	if err := cursor.All(ctx, &windows); err != nil {
		return nil, fmt.Errorf("error decoding weekly template: %w", err)
	}
	return windows, nil
}

// ReplaceDayWindows performs the delete-then-insert swap for the affected
// weekdays inside one transaction, so a partial write is never visible.
func (repo *MongoAvailabilityRepo) ReplaceDayWindows(ctx context.Context, providerID string, days map[time.Weekday][]models.WeeklyWindow) ([]models.WeeklyWindow, error) {
	client := repo.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	weekdays := make([]time.Weekday, 0, len(days))
	var docs []interface{}
	for wd, windows := range days {
		weekdays = append(weekdays, wd)
		for i := range windows {
			docs = append(docs, windows[i])
		}
	}
	filter := bson.M{"provider_id": providerID, "weekday": bson.M{"$in": weekdays}}

	var superseded []models.WeeklyWindow
	txnFn := func(sc mongo.SessionContext) error {
		cursor, err := repo.coll.Find(sc, filter)
		if err != nil {
			return fmt.Errorf("fetch superseded windows failed: %w", err)
		}
		if err := cursor.All(sc, &superseded); err != nil {
			return fmt.Errorf("decode superseded windows failed: %w", err)
		}
		if _, err := repo.coll.DeleteMany(sc, filter); err != nil {
			return fmt.Errorf("delete old windows failed: %w", err)
		}
		if len(docs) > 0 {
			if _, err := repo.coll.InsertMany(sc, docs); err != nil {
				return fmt.Errorf("insert new windows failed: %w", err)
			}
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return nil, fmt.Errorf("template replace transaction failed: %w", err)
	}

	return superseded, nil
}

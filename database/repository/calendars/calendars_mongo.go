package calendarsRepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/primego-bg/sites-by-appointments/database"
	"github.com/primego-bg/sites-by-appointments/models"
)

type mongoCalendarRepo struct {
	coll *mongo.Collection
}

// NewMongoCalendarRepo returns a CalendarRepository backed by the
// "calendars" collection.
func NewMongoCalendarRepo() CalendarRepository {
	return &mongoCalendarRepo{coll: database.DB().Collection("calendars")}
}

func (r *mongoCalendarRepo) GetByID(ctx context.Context, id string) (*models.Calendar, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var cal models.Calendar
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&cal)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cal, nil
}

func (r *mongoCalendarRepo) GetByBusinessID(ctx context.Context, businessID string) (*models.Calendar, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var cal models.Calendar
	err := r.coll.FindOne(ctx, bson.M{"businessId": businessID}).Decode(&cal)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cal, nil
}

func (r *mongoCalendarRepo) ListSyncable(ctx context.Context) ([]models.Calendar, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"status": bson.M{"$ne": models.CalendarStatusDeleted}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var cals []models.Calendar
	if err := cursor.All(ctx, &cals); err != nil {
		return nil, err
	}
	return cals, nil
}

func (r *mongoCalendarRepo) SetStatus(ctx context.Context, id, status string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoCalendarRepo) MarkSynchronized(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":           models.CalendarStatusActive,
		"lastSynchronized": at,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

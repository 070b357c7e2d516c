package eventsRepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/primego-bg/sites-by-appointments/database"
)

// EnsureEventIndexes creates the indexes the booking and sync paths rely on.
// The unique (subCalendarIds, start) index closes the concurrent-booking
// race: the second insert for the same sub-calendar and start instant fails
// with a duplicate-key error instead of double-booking.
func EnsureEventIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	coll := database.DB().Collection("events")
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "subCalendarIds", Value: 1},
				{Key: "start", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "calendarId", Value: 1},
				{Key: "providerEventId", Value: 1},
			},
		},
	})
	return err
}

package eventsRepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/primego-bg/sites-by-appointments/database"
	"github.com/primego-bg/sites-by-appointments/models"
)

type mongoEventRepo struct {
	coll *mongo.Collection
}

// NewMongoEventRepo returns an EventRepository backed by the "events"
// collection.
func NewMongoEventRepo() EventRepository {
	return &mongoEventRepo{coll: database.DB().Collection("events")}
}

func (r *mongoEventRepo) GetByCalendar(ctx context.Context, calendarID string) ([]models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"calendarId": calendarID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *mongoEventRepo) GetByCalendarAndSubCalendar(ctx context.Context, calendarID, subCalendarID string) ([]models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// subCalendarIds is an array field; equality matches any element.
	filter := bson.M{"calendarId": calendarID, "subCalendarIds": subCalendarID}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *mongoEventRepo) GetByProviderID(ctx context.Context, calendarID, providerEventID string) (*models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var event models.Event
	err := r.coll.FindOne(ctx, bson.M{"calendarId": calendarID, "providerEventId": providerEventID}).Decode(&event)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *mongoEventRepo) Insert(ctx context.Context, event *models.Event) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	_, err := r.coll.InsertOne(ctx, event)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateSlot
	}
	return err
}

func (r *mongoEventRepo) UpsertByProviderID(ctx context.Context, event *models.Event) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	filter := bson.M{"calendarId": event.CalendarID, "providerEventId": event.ProviderEventID}
	update := bson.M{"$set": bson.M{
		"subCalendarIds": event.SubCalendarIDs,
		"title":          event.Title,
		"description":    event.Description,
		"start":          event.Start,
		"end":            event.End,
		"allDay":         event.AllDay,
		"rrule":          event.RecurrenceRule,
	}, "$setOnInsert": bson.M{"id": event.ID}}

	_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *mongoEventRepo) UpdateBounds(ctx context.Context, calendarID, providerEventID string, start, end time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"calendarId": calendarID, "providerEventId": providerEventID}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"start": start, "end": end}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoEventRepo) SetProviderID(ctx context.Context, eventID, providerEventID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": eventID}, bson.M{"$set": bson.M{"providerEventId": providerEventID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoEventRepo) DeleteByID(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.DeleteOne(ctx, bson.M{"id": eventID})
	return err
}

func (r *mongoEventRepo) DeleteByProviderID(ctx context.Context, calendarID, providerEventID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.DeleteMany(ctx, bson.M{"calendarId": calendarID, "providerEventId": providerEventID})
	return err
}

func (r *mongoEventRepo) DeleteByProviderIDPrefix(ctx context.Context, calendarID, prefix string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"calendarId":      calendarID,
		"providerEventId": primitive.Regex{Pattern: "^" + escapeRegex(prefix)},
	}
	res, err := r.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *mongoEventRepo) DeleteAbsent(ctx context.Context, calendarID string, observed map[string]struct{}) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ids := make([]string, 0, len(observed))
	for id := range observed {
		ids = append(ids, id)
	}
	filter := bson.M{
		"calendarId":      calendarID,
		"providerEventId": bson.M{"$nin": ids, "$ne": ""},
	}
	res, err := r.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// escapeRegex neutralizes regex metacharacters so provider ids are matched
// literally.
func escapeRegex(s string) string {
	const meta = `\.+*?()|[]{}^$`
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		for j := 0; j < len(meta); j++ {
			if s[i] == meta[j] {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, s[i])
	}
	return string(out)
}

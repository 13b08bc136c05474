package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/parceltrax/tracking-system/internal/core/domain"
	"github.com/parceltrax/tracking-system/internal/core/ports"
)

const collectionEvents = "tracking_events"

// EventRepository stores the de-duplicated event history. The unique index
// over (package_id, location, details, occurred_at) enforces the 4-tuple
// de-duplication key at the database level as well.
type EventRepository struct {
	col *mongo.Collection
}

var _ ports.EventRepository = (*EventRepository)(nil)

func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{col: db.Collection(collectionEvents)}
}

func (r *EventRepository) Insert(ctx context.Context, e *domain.PersistedTrackingEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"package_id":  e.PackageID,
		"location":    e.Location,
		"details":     e.Details,
		"occurred_at": e.OccurredAt,
		"recorded_at": e.RecordedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		// A concurrent poll already inserted the same tuple; the row exists,
		// which is all the caller needs.
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		e.ID = oid.Hex()
	}
	return nil
}

func (r *EventRepository) Exists(ctx context.Context, packageID, location, details string, occurredAt *time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"package_id":  packageID,
		"location":    location,
		"details":     details,
		"occurred_at": occurredAt,
	}
	count, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *EventRepository) LatestByPackage(ctx context.Context, packageID string) (*domain.PersistedTrackingEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "occurred_at", Value: -1}})
	var doc eventDoc
	if err := r.col.FindOne(ctx, bson.M{"package_id": packageID}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *EventRepository) ListByPackage(ctx context.Context, packageID string) ([]*domain.PersistedTrackingEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"package_id": packageID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*domain.PersistedTrackingEvent
	for cursor.Next(ctx) {
		var doc eventDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		events = append(events, doc.toDomain())
	}
	return events, cursor.Err()
}

// EnsureIndexes creates the 4-tuple uniqueness index and the latest-event
// lookup index.
func (r *EventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "package_id", Value: 1},
				{Key: "location", Value: 1},
				{Key: "details", Value: 1},
				{Key: "occurred_at", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "package_id", Value: 1}, {Key: "occurred_at", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

type eventDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	PackageID  string             `bson:"package_id"`
	Location   string             `bson:"location"`
	Details    string             `bson:"details"`
	OccurredAt *time.Time         `bson:"occurred_at"`
	RecordedAt time.Time          `bson:"recorded_at"`
}

func (d eventDoc) toDomain() *domain.PersistedTrackingEvent {
	return &domain.PersistedTrackingEvent{
		ID:         d.ID.Hex(),
		PackageID:  d.PackageID,
		Location:   d.Location,
		Details:    d.Details,
		OccurredAt: d.OccurredAt,
		RecordedAt: d.RecordedAt,
	}
}

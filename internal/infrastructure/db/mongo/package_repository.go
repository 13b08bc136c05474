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
)

const collectionPackages = "packages"

type PackageRepository struct {
	col *mongo.Collection
}

func NewPackageRepository(db *mongo.Database) *PackageRepository {
	return &PackageRepository{col: db.Collection(collectionPackages)}
}

// Create inserts a new package document and backfills the generated ID.
func (r *PackageRepository) Create(ctx context.Context, p *domain.TrackedPackage) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"tracking_number": p.TrackingNumber,
		"courier_service": p.CourierService,
		"description":     p.Description,
		"current_status":  p.CurrentStatus,
		"created_at":      p.CreatedAt,
		"updated_at":      p.UpdatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicatePackage
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}
	return nil
}

func (r *PackageRepository) FindByID(ctx context.Context, id string) (*domain.TrackedPackage, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrPackageNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *PackageRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.TrackedPackage, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.findOne(ctx, bson.M{"tracking_number": trackingNumber})
}

func (r *PackageRepository) findOne(ctx context.Context, filter bson.M) (*domain.TrackedPackage, error) {
	var doc packageDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPackageNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// List returns a page of packages ordered oldest-first by creation time.
func (r *PackageRepository) List(ctx context.Context, offset, limit int) ([]*domain.TrackedPackage, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	return decodePackages(ctx, cursor)
}

// ListActive returns every package not yet in the terminal state.
func (r *PackageRepository) ListActive(ctx context.Context) ([]*domain.TrackedPackage, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, bson.M{"current_status": bson.M{"$ne": domain.StatusDelivered}})
	if err != nil {
		return nil, err
	}
	return decodePackages(ctx, cursor)
}

func (r *PackageRepository) Update(ctx context.Context, p *domain.TrackedPackage) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"courier_service":    p.CourierService,
		"current_status":     p.CurrentStatus,
		"estimated_delivery": p.EstimatedDelivery,
		"updated_at":         p.UpdatedAt,
	}}
	res, err := r.col.UpdateOne(ctx, bson.M{"tracking_number": p.TrackingNumber}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrPackageNotFound
	}
	return nil
}

func (r *PackageRepository) Delete(ctx context.Context, trackingNumber string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"tracking_number": trackingNumber})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrPackageNotFound
	}
	return nil
}

// EnsureIndexes creates the indexes the repository relies on; the unique
// tracking-number index is what makes duplicate registration race-safe.
func (r *PackageRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tracking_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "current_status", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

type packageDoc struct {
	ID                primitive.ObjectID `bson:"_id"`
	TrackingNumber    string             `bson:"tracking_number"`
	CourierService    string             `bson:"courier_service"`
	Description       string             `bson:"description"`
	CurrentStatus     string             `bson:"current_status"`
	EstimatedDelivery *time.Time         `bson:"estimated_delivery,omitempty"`
	CreatedAt         time.Time          `bson:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at"`
}

func (d packageDoc) toDomain() *domain.TrackedPackage {
	return &domain.TrackedPackage{
		ID:                d.ID.Hex(),
		TrackingNumber:    d.TrackingNumber,
		CourierService:    d.CourierService,
		Description:       d.Description,
		CurrentStatus:     d.CurrentStatus,
		EstimatedDelivery: d.EstimatedDelivery,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func decodePackages(ctx context.Context, cursor *mongo.Cursor) ([]*domain.TrackedPackage, error) {
	defer cursor.Close(ctx)

	var packages []*domain.TrackedPackage
	for cursor.Next(ctx) {
		var doc packageDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		packages = append(packages, doc.toDomain())
	}
	return packages, cursor.Err()
}

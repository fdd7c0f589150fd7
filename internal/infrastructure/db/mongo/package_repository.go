package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/cargo-transport-api/internal/core/domain"
)

const (
	collectionPackages = "packages"
	collectionCounters = "counters"
	packageSequence    = "packages"
)

// PackageRepository stores packages with sequential integer ids drawn from a
// counters document.
type PackageRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewPackageRepository(db *mongo.Database) *PackageRepository {
	return &PackageRepository{
		col:      db.Collection(collectionPackages),
		counters: db.Collection(collectionCounters),
	}
}

type mongoPackage struct {
	ID          int64     `bson:"_id"`
	Client      string    `bson:"client"`
	Weight      float64   `bson:"weight"`
	Origin      string    `bson:"origin"`
	Destination string    `bson:"destination"`
	Date        string    `bson:"date"`
	CreatedBy   string    `bson:"created_by,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
}

type counter struct {
	Seq int64 `bson:"seq"`
}

// Create inserts a new package document and sets p.ID.
func (r *PackageRepository) Create(ctx context.Context, p *domain.Package) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}

	doc := mongoPackage{
		ID:          id,
		Client:      p.Client,
		Weight:      p.Weight,
		Origin:      p.Origin,
		Destination: p.Destination,
		Date:        p.Date.Format(domain.DateLayout),
		CreatedBy:   p.CreatedBy,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert package: %w", err)
	}

	p.ID = id
	return nil
}

// CountByDate counts packages shipping on day.
func (r *PackageRepository) CountByDate(ctx context.Context, day time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"date": day.Format(domain.DateLayout)})
	if err != nil {
		return 0, fmt.Errorf("count packages: %w", err)
	}
	return int(n), nil
}

// EnsureIndexes creates necessary indexes on the packages collection.
func (r *PackageRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "client", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// nextID atomically increments and returns the package sequence.
func (r *PackageRepository) nextID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var c counter
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": packageSequence},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("next package id: %w", err)
	}
	return c.Seq, nil
}

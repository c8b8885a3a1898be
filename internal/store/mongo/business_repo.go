package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"hyperlens/internal/domain"
)

type BusinessRepo struct {
	db *mongo.Database
}

func NewBusinessRepo(db *mongo.Database) *BusinessRepo {
	return &BusinessRepo{db: db}
}

var _ domain.BusinessRepository = (*BusinessRepo)(nil)

func (r *BusinessRepo) Create(ctx context.Context, b *domain.Business) error {
	if b.ID == "" {
		b.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.db.Collection(businessCollection).InsertOne(ctx, b)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert business: %w", err)
	}
	return nil
}

func (r *BusinessRepo) GetByID(ctx context.Context, id string) (*domain.Business, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *BusinessRepo) GetByOwner(ctx context.Context, ownerID string) (*domain.Business, error) {
	return r.findOne(ctx, bson.M{"owner_id": ownerID})
}

// FindNearby runs a $near query against the 2dsphere index on location.
// Results come back nearest first; $maxDistance is inclusive at the boundary.
func (r *BusinessRepo) FindNearby(ctx context.Context, lat, lng, radiusMeters float64) ([]*domain.Business, error) {
	filter := bson.M{
		"location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{lng, lat},
				},
				"$maxDistance": radiusMeters,
			},
		},
	}

	cursor, err := r.db.Collection(businessCollection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find nearby businesses: %w", err)
	}
	defer cursor.Close(ctx)

	var businesses []*domain.Business
	if err := cursor.All(ctx, &businesses); err != nil {
		return nil, fmt.Errorf("decode nearby businesses: %w", err)
	}
	return businesses, nil
}

func (r *BusinessRepo) findOne(ctx context.Context, filter bson.M) (*domain.Business, error) {
	b := &domain.Business{}
	err := r.db.Collection(businessCollection).FindOne(ctx, filter).Decode(b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get business: %w", err)
	}
	return b, nil
}

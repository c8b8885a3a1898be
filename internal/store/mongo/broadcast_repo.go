package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hyperlens/internal/domain"
)

type BroadcastRepo struct {
	db *mongo.Database
}

func NewBroadcastRepo(db *mongo.Database) *BroadcastRepo {
	return &BroadcastRepo{db: db}
}

var _ domain.BroadcastRepository = (*BroadcastRepo)(nil)

func (r *BroadcastRepo) Create(ctx context.Context, b *domain.Broadcast) error {
	if b.ID == "" {
		b.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.db.Collection(broadcastCollection).InsertOne(ctx, b)
	if err != nil {
		return fmt.Errorf("insert broadcast: %w", err)
	}
	return nil
}

// ListForBusiness returns every broadcast of the business, expired ones
// included, newest first.
func (r *BroadcastRepo) ListForBusiness(ctx context.Context, businessID string) ([]*domain.Broadcast, error) {
	return r.find(ctx, bson.M{"business_id": businessID})
}

// ListActiveForBusinesses returns unexpired broadcasts belonging to any of the
// given businesses, newest first.
func (r *BroadcastRepo) ListActiveForBusinesses(ctx context.Context, businessIDs []string, now time.Time) ([]*domain.Broadcast, error) {
	if len(businessIDs) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{
		"business_id": bson.M{"$in": businessIDs},
		"expires_at":  bson.M{"$gt": now},
	})
}

// DeleteExpired removes every broadcast whose expiry lies before the given
// instant and reports how many were deleted.
func (r *BroadcastRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.Collection(broadcastCollection).DeleteMany(ctx, bson.M{
		"expires_at": bson.M{"$lt": before},
	})
	if err != nil {
		return 0, fmt.Errorf("delete expired broadcasts: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *BroadcastRepo) find(ctx context.Context, filter bson.M) ([]*domain.Broadcast, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.db.Collection(broadcastCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find broadcasts: %w", err)
	}
	defer cursor.Close(ctx)

	var broadcasts []*domain.Broadcast
	if err := cursor.All(ctx, &broadcasts); err != nil {
		return nil, fmt.Errorf("decode broadcasts: %w", err)
	}
	return broadcasts, nil
}

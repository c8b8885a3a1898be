package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hyperlens/internal/domain"
)

type ChatRepo struct {
	db *mongo.Database
}

func NewChatRepo(db *mongo.Database) *ChatRepo {
	return &ChatRepo{db: db}
}

var _ domain.ChatRepository = (*ChatRepo)(nil)

func (r *ChatRepo) Create(ctx context.Context, t *domain.ChatThread) error {
	if t.ID == "" {
		t.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.db.Collection(chatCollection).InsertOne(ctx, t)
	if err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}
	return nil
}

func (r *ChatRepo) GetByID(ctx context.Context, id string) (*domain.ChatThread, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ChatRepo) FindByBusinessAndParticipants(ctx context.Context, businessID string, participantIDs []string) (*domain.ChatThread, error) {
	return r.findOne(ctx, bson.M{
		"business_id":  businessID,
		"participants": bson.M{"$all": participantIDs},
	})
}

func (r *ChatRepo) ListForUser(ctx context.Context, userID string) ([]*domain.ChatThread, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := r.db.Collection(chatCollection).Find(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer cursor.Close(ctx)

	var threads []*domain.ChatThread
	if err := cursor.All(ctx, &threads); err != nil {
		return nil, fmt.Errorf("decode chats: %w", err)
	}
	return threads, nil
}

// RecordMessage applies a sent message to the thread document in a single
// update: last-message snapshot, atomic $inc of the recipients' unread
// counters, and the updated_at bump. $inc keeps concurrent sends from losing
// counter updates.
func (r *ChatRepo) RecordMessage(ctx context.Context, chatID string, last domain.LastMessage, incrementFor []string) error {
	inc := bson.M{}
	for _, uid := range incrementFor {
		inc["unread_count."+uid] = 1
	}
	update := bson.M{
		"$set": bson.M{
			"last_message": last,
			"updated_at":   time.Now().UTC(),
		},
	}
	if len(inc) > 0 {
		update["$inc"] = inc
	}

	res, err := r.db.Collection(chatCollection).UpdateByID(ctx, chatID, update)
	if err != nil {
		return fmt.Errorf("record message on chat: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ChatRepo) ResetUnread(ctx context.Context, chatID, userID string) error {
	_, err := r.db.Collection(chatCollection).UpdateByID(ctx, chatID, bson.M{
		"$set": bson.M{"unread_count." + userID: 0},
	})
	if err != nil {
		return fmt.Errorf("reset unread: %w", err)
	}
	return nil
}

func (r *ChatRepo) Delete(ctx context.Context, chatID string) error {
	_, err := r.db.Collection(chatCollection).DeleteOne(ctx, bson.M{"_id": chatID})
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	return nil
}

func (r *ChatRepo) findOne(ctx context.Context, filter bson.M) (*domain.ChatThread, error) {
	t := &domain.ChatThread{}
	err := r.db.Collection(chatCollection).FindOne(ctx, filter).Decode(t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	return t, nil
}

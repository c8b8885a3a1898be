package domain

import (
	"context"
	"time"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// BusinessRepository defines persistence operations and geospatial lookup for
// businesses. FindNearby answers "within radiusMeters of (lat, lng)" against
// a spherical index; the boundary is inclusive.
type BusinessRepository interface {
	Create(ctx context.Context, b *Business) error
	GetByID(ctx context.Context, id string) (*Business, error)
	GetByOwner(ctx context.Context, ownerID string) (*Business, error)
	FindNearby(ctx context.Context, lat, lng, radiusMeters float64) ([]*Business, error)
}

// BroadcastRepository defines persistence operations for broadcasts.
type BroadcastRepository interface {
	Create(ctx context.Context, b *Broadcast) error
	ListForBusiness(ctx context.Context, businessID string) ([]*Broadcast, error)
	ListActiveForBusinesses(ctx context.Context, businessIDs []string, now time.Time) ([]*Broadcast, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// ChatRepository defines persistence operations for chat threads. Unread
// counters must be incremented atomically at the store layer; read-modify-write
// of the whole document loses updates under concurrent sends.
type ChatRepository interface {
	Create(ctx context.Context, t *ChatThread) error
	GetByID(ctx context.Context, id string) (*ChatThread, error)
	FindByBusinessAndParticipants(ctx context.Context, businessID string, participantIDs []string) (*ChatThread, error)
	ListForUser(ctx context.Context, userID string) ([]*ChatThread, error)
	// RecordMessage updates the thread's last-message snapshot, atomically
	// increments the unread counter of every id in incrementFor, and bumps
	// the thread's updated_at.
	RecordMessage(ctx context.Context, chatID string, last LastMessage, incrementFor []string) error
	ResetUnread(ctx context.Context, chatID, userID string) error
	Delete(ctx context.Context, chatID string) error
}

// MessageRepository defines persistence operations for chat messages.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	// ListForChat returns up to limit most recent messages, newest first.
	ListForChat(ctx context.Context, chatID string, limit int) ([]*Message, error)
	DeleteForChat(ctx context.Context, chatID string) (int64, error)
}

package memory

import (
	"context"
	"sort"
	"sync"

	"hyperlens/internal/domain"
)

type MessageRepo struct {
	mu       sync.RWMutex
	messages map[string]*domain.Message
}

func NewMessageRepo() *MessageRepo {
	return &MessageRepo{messages: make(map[string]*domain.Message)}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID == "" {
		m.ID = newID()
	}
	cp := *m
	r.messages[m.ID] = &cp
	return nil
}

func (r *MessageRepo) ListForChat(ctx context.Context, chatID string, limit int) ([]*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Message
	for _, m := range r.messages {
		if m.ChatID == chatID {
			cp := *m
			result = append(result, &cp)
		}
	}
	// Newest first; ids break ties for messages created within the same tick.
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *MessageRepo) DeleteForChat(ctx context.Context, chatID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, m := range r.messages {
		if m.ChatID == chatID {
			delete(r.messages, id)
			deleted++
		}
	}
	return deleted, nil
}

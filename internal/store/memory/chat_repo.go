package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"hyperlens/internal/domain"
)

type ChatRepo struct {
	mu      sync.RWMutex
	threads map[string]*domain.ChatThread
}

func NewChatRepo() *ChatRepo {
	return &ChatRepo{threads: make(map[string]*domain.ChatThread)}
}

var _ domain.ChatRepository = (*ChatRepo)(nil)

func (r *ChatRepo) Create(ctx context.Context, t *domain.ChatThread) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.ID == "" {
		t.ID = newID()
	}
	r.threads[t.ID] = copyThread(t)
	return nil
}

func (r *ChatRepo) GetByID(ctx context.Context, id string) (*domain.ChatThread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, ok := r.threads[id]; ok {
		return copyThread(t), nil
	}
	return nil, nil
}

func (r *ChatRepo) FindByBusinessAndParticipants(ctx context.Context, businessID string, participantIDs []string) (*domain.ChatThread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.threads {
		if t.BusinessID != businessID {
			continue
		}
		all := true
		for _, pid := range participantIDs {
			if !t.HasParticipant(pid) {
				all = false
				break
			}
		}
		if all {
			return copyThread(t), nil
		}
	}
	return nil, nil
}

func (r *ChatRepo) ListForUser(ctx context.Context, userID string) ([]*domain.ChatThread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.ChatThread
	for _, t := range r.threads {
		if t.HasParticipant(userID) {
			result = append(result, copyThread(t))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

// RecordMessage increments recipients' counters under the store lock, the
// in-memory equivalent of mongo's atomic $inc.
func (r *ChatRepo) RecordMessage(ctx context.Context, chatID string, last domain.LastMessage, incrementFor []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.threads[chatID]
	if !ok {
		return domain.ErrNotFound
	}
	t.LastMessage = last
	for _, uid := range incrementFor {
		t.UnreadCount[uid]++
	}
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *ChatRepo) ResetUnread(ctx context.Context, chatID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.threads[chatID]; ok {
		t.UnreadCount[userID] = 0
	}
	return nil
}

func (r *ChatRepo) Delete(ctx context.Context, chatID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.threads, chatID)
	return nil
}

func copyThread(t *domain.ChatThread) *domain.ChatThread {
	cp := *t
	cp.Participants = append([]string(nil), t.Participants...)
	cp.UnreadCount = make(map[string]int, len(t.UnreadCount))
	for k, v := range t.UnreadCount {
		cp.UnreadCount[k] = v
	}
	return &cp
}

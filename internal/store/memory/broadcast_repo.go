package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"hyperlens/internal/domain"
)

type BroadcastRepo struct {
	mu         sync.RWMutex
	broadcasts map[string]*domain.Broadcast
}

func NewBroadcastRepo() *BroadcastRepo {
	return &BroadcastRepo{broadcasts: make(map[string]*domain.Broadcast)}
}

var _ domain.BroadcastRepository = (*BroadcastRepo)(nil)

func (r *BroadcastRepo) Create(ctx context.Context, b *domain.Broadcast) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b.ID == "" {
		b.ID = newID()
	}
	cp := *b
	r.broadcasts[b.ID] = &cp
	return nil
}

func (r *BroadcastRepo) ListForBusiness(ctx context.Context, businessID string) ([]*domain.Broadcast, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Broadcast
	for _, b := range r.broadcasts {
		if b.BusinessID == businessID {
			cp := *b
			result = append(result, &cp)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (r *BroadcastRepo) ListActiveForBusinesses(ctx context.Context, businessIDs []string, now time.Time) ([]*domain.Broadcast, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make(map[string]struct{}, len(businessIDs))
	for _, id := range businessIDs {
		ids[id] = struct{}{}
	}

	var result []*domain.Broadcast
	for _, b := range r.broadcasts {
		if _, ok := ids[b.BusinessID]; !ok {
			continue
		}
		if !b.Active(now) {
			continue
		}
		cp := *b
		result = append(result, &cp)
	}
	sortNewestFirst(result)
	return result, nil
}

func (r *BroadcastRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, b := range r.broadcasts {
		if b.ExpiresAt.Before(before) {
			delete(r.broadcasts, id)
			deleted++
		}
	}
	return deleted, nil
}

func sortNewestFirst(broadcasts []*domain.Broadcast) {
	sort.Slice(broadcasts, func(i, j int) bool {
		return broadcasts[i].CreatedAt.After(broadcasts[j].CreatedAt)
	})
}
